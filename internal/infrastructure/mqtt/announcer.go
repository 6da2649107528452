package mqtt

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/pixelforge/ledmatrixd/internal/infrastructure/config"
)

// StatusTopic is where display status snapshots are published, retained.
const StatusTopic = "ledmatrix/status"

const (
	connectTimeout    = 10 * time.Second
	publishTimeout    = 5 * time.Second
	disconnectQuiesce = 1000 // milliseconds
	keepAlive         = 60 * time.Second
)

// Logger defines the logging interface for the announcer.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any) {}
func (noopLogger) Warn(string, ...any) {}

// Announcer publishes display status to an MQTT broker.
// All methods are safe for concurrent use.
type Announcer struct {
	client pahomqtt.Client
	cfg    config.MQTTConfig
	logger Logger

	connMu    sync.RWMutex
	connected bool
}

// Connect establishes the broker connection, configures auto-reconnect
// with backoff and registers a Last Will marking the service offline on
// unexpected disconnect.
func Connect(cfg config.MQTTConfig, logger Logger) (*Announcer, error) {
	if logger == nil {
		logger = noopLogger{}
	}

	a := &Announcer{cfg: cfg, logger: logger}

	opts := buildClientOptions(cfg)
	opts.SetWill(StatusTopic, offlinePayload(cfg.Broker.ClientID, "unexpected_disconnect"), byte(cfg.QoS), true)
	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		a.connMu.Lock()
		a.connected = true
		a.connMu.Unlock()
		a.logger.Info("mqtt connected", "broker", cfg.Broker.Host)
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		a.connMu.Lock()
		a.connected = false
		a.connMu.Unlock()
		a.logger.Warn("mqtt connection lost", "error", err)
	})

	a.client = pahomqtt.NewClient(opts)
	token := a.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// The OnConnect handler runs asynchronously; mark connected here so
	// IsConnected is correct immediately after Connect returns.
	a.connMu.Lock()
	a.connected = true
	a.connMu.Unlock()

	return a, nil
}

// buildClientOptions creates paho options from the MQTT configuration.
func buildClientOptions(cfg config.MQTTConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port))
	opts.SetClientID(cfg.Broker.ClientID)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(time.Duration(cfg.Reconnect.InitialDelay) * time.Second)
	opts.SetMaxReconnectInterval(time.Duration(cfg.Reconnect.MaxDelay) * time.Second)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetKeepAlive(keepAlive)

	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	return opts
}

// AnnounceStatus publishes a status snapshot, retained, so late
// subscribers see the current state immediately.
func (a *Announcer) AnnounceStatus(status any) error {
	if !a.IsConnected() {
		return ErrNotConnected
	}

	payload, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("marshalling status: %w", err)
	}

	token := a.client.Publish(StatusTopic, byte(a.cfg.QoS), true, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("%w: %s", ErrPublishTimeout, StatusTopic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", StatusTopic, err)
	}
	return nil
}

// HealthCheck reports whether the broker connection is alive.
func (a *Announcer) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("mqtt health check: %w", ctx.Err())
	default:
	}
	if !a.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected returns the last known connection state.
func (a *Announcer) IsConnected() bool {
	a.connMu.RLock()
	defer a.connMu.RUnlock()
	return a.connected && a.client.IsConnected()
}

// Close publishes a graceful offline status, distinct from the LWT crash
// payload, then disconnects.
func (a *Announcer) Close() error {
	if a.client == nil {
		return nil
	}

	if a.IsConnected() {
		token := a.client.Publish(StatusTopic, byte(a.cfg.QoS), true,
			offlinePayload(a.cfg.Broker.ClientID, "graceful_shutdown"))
		token.WaitTimeout(publishTimeout)
	}

	a.client.Disconnect(disconnectQuiesce)

	a.connMu.Lock()
	a.connected = false
	a.connMu.Unlock()

	return nil
}

// offlinePayload builds the offline status JSON for the LWT and for
// graceful shutdown.
func offlinePayload(clientID, reason string) string {
	return fmt.Sprintf(
		`{"online":false,"client_id":"%s","reason":"%s","timestamp":"%s"}`,
		clientID, reason, time.Now().UTC().Format(time.RFC3339),
	)
}
