package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
display:
  asset_dir: "/tmp/gifs"
  viewer_binary: "/usr/local/bin/led-image-viewer"
  rows: 32
  cols: 64
  default_brightness: 80
  grace_period_seconds: 3
api:
  host: "127.0.0.1"
  port: 9090
database:
  path: "/tmp/test.db"
logging:
  level: debug
  format: text
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Display.AssetDir != "/tmp/gifs" {
		t.Errorf("Display.AssetDir = %q, want %q", cfg.Display.AssetDir, "/tmp/gifs")
	}
	if cfg.Display.Rows != 32 {
		t.Errorf("Display.Rows = %d, want 32", cfg.Display.Rows)
	}
	if cfg.Display.DefaultBrightness != 80 {
		t.Errorf("Display.DefaultBrightness = %d, want 80", cfg.Display.DefaultBrightness)
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port = %d, want 9090", cfg.API.Port)
	}
	if cfg.GracePeriod() != 3*time.Second {
		t.Errorf("GracePeriod() = %v, want 3s", cfg.GracePeriod())
	}
}

func TestLoad_Defaults(t *testing.T) {
	// A minimal file should still produce a fully usable config.
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("{}\n"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Display.Rows != 64 || cfg.Display.Cols != 64 {
		t.Errorf("default geometry = %dx%d, want 64x64", cfg.Display.Rows, cfg.Display.Cols)
	}
	if cfg.Display.DefaultBrightness != 100 {
		t.Errorf("default brightness = %d, want 100", cfg.Display.DefaultBrightness)
	}
	if cfg.Display.GracePeriodSeconds != 5 {
		t.Errorf("default grace period = %d, want 5", cfg.Display.GracePeriodSeconds)
	}
	if cfg.MQTT.Enabled {
		t.Error("MQTT should be disabled by default")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("{}\n"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("LEDMATRIXD_DISPLAY_ASSET_DIR", "/srv/animations")
	t.Setenv("LEDMATRIXD_API_PORT", "8123")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Display.AssetDir != "/srv/animations" {
		t.Errorf("Display.AssetDir = %q, want env override", cfg.Display.AssetDir)
	}
	if cfg.API.Port != 8123 {
		t.Errorf("API.Port = %d, want 8123", cfg.API.Port)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config { return defaultConfig() }

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid defaults",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing asset dir",
			mutate:  func(c *Config) { c.Display.AssetDir = "" },
			wantErr: true,
		},
		{
			name:    "missing viewer binary",
			mutate:  func(c *Config) { c.Display.ViewerBinary = "" },
			wantErr: true,
		},
		{
			name:    "zero rows",
			mutate:  func(c *Config) { c.Display.Rows = 0 },
			wantErr: true,
		},
		{
			name:    "brightness too low",
			mutate:  func(c *Config) { c.Display.DefaultBrightness = 0 },
			wantErr: true,
		},
		{
			name:    "brightness too high",
			mutate:  func(c *Config) { c.Display.DefaultBrightness = 101 },
			wantErr: true,
		},
		{
			name:    "invalid api port",
			mutate:  func(c *Config) { c.API.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: true,
		},
		{
			name: "mqtt enabled with bad qos",
			mutate: func(c *Config) {
				c.MQTT.Enabled = true
				c.MQTT.QoS = 3
			},
			wantErr: true,
		},
		{
			name:    "mqtt disabled ignores bad qos",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
