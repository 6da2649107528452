package mqtt

import (
	"strings"
	"testing"

	"github.com/pixelforge/ledmatrixd/internal/infrastructure/config"
)

func testMQTTConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Enabled: true,
		Broker: config.MQTTBrokerConfig{
			Host:     "broker.local",
			Port:     1883,
			ClientID: "ledmatrixd-test",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     60,
		},
	}
}

func TestBuildClientOptions(t *testing.T) {
	opts := buildClientOptions(testMQTTConfig())

	if len(opts.Servers) != 1 {
		t.Fatalf("got %d brokers, want 1", len(opts.Servers))
	}
	if got := opts.Servers[0].String(); got != "tcp://broker.local:1883" {
		t.Errorf("broker URL = %q, want tcp://broker.local:1883", got)
	}
	if opts.ClientID != "ledmatrixd-test" {
		t.Errorf("client ID = %q", opts.ClientID)
	}
	if !opts.AutoReconnect {
		t.Error("auto-reconnect should be enabled")
	}
}

func TestBuildClientOptions_TLS(t *testing.T) {
	cfg := testMQTTConfig()
	cfg.Broker.TLS = true
	cfg.Broker.Port = 8883

	opts := buildClientOptions(cfg)

	if got := opts.Servers[0].Scheme; got != "ssl" {
		t.Errorf("broker scheme = %q, want ssl", got)
	}
	if opts.TLSConfig == nil {
		t.Fatal("TLS config not set")
	}
}

func TestBuildClientOptions_Auth(t *testing.T) {
	cfg := testMQTTConfig()
	cfg.Auth.Username = "matrix"
	cfg.Auth.Password = "secret"

	opts := buildClientOptions(cfg)

	if opts.Username != "matrix" {
		t.Errorf("username = %q, want matrix", opts.Username)
	}
	if opts.Password != "secret" {
		t.Error("password not carried into options")
	}
}

func TestOfflinePayload(t *testing.T) {
	payload := offlinePayload("ledmatrixd", "graceful_shutdown")

	for _, want := range []string{`"online":false`, `"client_id":"ledmatrixd"`, `"reason":"graceful_shutdown"`} {
		if !strings.Contains(payload, want) {
			t.Errorf("payload %q missing %q", payload, want)
		}
	}
}

func TestAnnouncer_NotConnected(t *testing.T) {
	a := &Announcer{cfg: testMQTTConfig()}

	if err := a.AnnounceStatus(map[string]bool{"running": true}); err != ErrNotConnected {
		t.Errorf("AnnounceStatus() error = %v, want ErrNotConnected", err)
	}
}
