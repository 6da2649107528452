package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for ledmatrixd.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Display   DisplayConfig   `yaml:"display"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DisplayConfig contains settings for the supervised display process and
// the asset directory it renders from.
type DisplayConfig struct {
	// AssetDir is the directory scanned for displayable GIF files.
	AssetDir string `yaml:"asset_dir"`

	// ViewerBinary is the path to the led-image-viewer executable.
	ViewerBinary string `yaml:"viewer_binary"`

	// Rows and Cols describe the fixed LED matrix geometry.
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`

	// DefaultBrightness is the brightness percentage used until a caller
	// sets one. Must be within [1,100].
	DefaultBrightness int `yaml:"default_brightness"`

	// GracePeriodSeconds is how long Stop waits for the viewer to exit
	// after SIGTERM before escalating to SIGKILL.
	GracePeriodSeconds int `yaml:"grace_period_seconds"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	MaxMessageSize int `yaml:"max_message_size"`
	PingInterval   int `yaml:"ping_interval"`
	PongTimeout    int `yaml:"pong_timeout"`
}

// DatabaseConfig contains SQLite settings for the playback history store.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains settings for the optional status announcer.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: LEDMATRIXD_SECTION_KEY
// For example: LEDMATRIXD_DISPLAY_ASSET_DIR, LEDMATRIXD_API_HOST
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
// The display defaults mirror a 64x64 HUB75 panel driven by the
// rpi-rgb-led-matrix utilities.
func defaultConfig() *Config {
	return &Config{
		Display: DisplayConfig{
			AssetDir:           "/data/gifs",
			ViewerBinary:       "/opt/rpi-rgb-led-matrix/utils/led-image-viewer",
			Rows:               64,
			Cols:               64,
			DefaultBrightness:  100,
			GracePeriodSeconds: 5,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Database: DatabaseConfig{
			Path:        "./data/ledmatrixd.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Enabled: false,
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "ledmatrixd",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: LEDMATRIXD_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Display
	if v := os.Getenv("LEDMATRIXD_DISPLAY_ASSET_DIR"); v != "" {
		cfg.Display.AssetDir = v
	}
	if v := os.Getenv("LEDMATRIXD_DISPLAY_VIEWER_BINARY"); v != "" {
		cfg.Display.ViewerBinary = v
	}

	// API
	if v := os.Getenv("LEDMATRIXD_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("LEDMATRIXD_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	// Database
	if v := os.Getenv("LEDMATRIXD_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("LEDMATRIXD_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("LEDMATRIXD_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("LEDMATRIXD_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	// Display validation
	if c.Display.AssetDir == "" {
		errs = append(errs, "display.asset_dir is required")
	}
	if c.Display.ViewerBinary == "" {
		errs = append(errs, "display.viewer_binary is required")
	}
	if c.Display.Rows < 1 {
		errs = append(errs, "display.rows must be positive")
	}
	if c.Display.Cols < 1 {
		errs = append(errs, "display.cols must be positive")
	}
	if c.Display.DefaultBrightness < 1 || c.Display.DefaultBrightness > 100 {
		errs = append(errs, "display.default_brightness must be between 1 and 100")
	}
	if c.Display.GracePeriodSeconds < 1 {
		errs = append(errs, "display.grace_period_seconds must be positive")
	}

	// API validation
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	// MQTT validation (only meaningful when enabled)
	if c.MQTT.Enabled {
		if c.MQTT.Broker.Host == "" {
			errs = append(errs, "mqtt.broker.host is required when mqtt is enabled")
		}
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, "mqtt.qos must be 0, 1, or 2")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GracePeriod returns the Stop grace period as a Duration.
func (c *Config) GracePeriod() time.Duration {
	return time.Duration(c.Display.GracePeriodSeconds) * time.Second
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
