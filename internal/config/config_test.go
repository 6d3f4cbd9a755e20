package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, int64(10), cfg.Timing.PollMs)
	assert.Equal(t, int64(2000), cfg.Timing.SensorIntervalMs)
	assert.Equal(t, int64(500), cfg.Timing.DisplayMs)
	assert.Equal(t, int64(5*60*1000), cfg.Timing.GreenThresholdMs)
	assert.Equal(t, int64(50), cfg.Timing.DebounceMs)
	assert.Equal(t, int64(2000), cfg.Timing.OverlayMs)
	assert.Len(t, cfg.Presets, 3)
	assert.Equal(t, "Normal", cfg.Presets[0].Label)
	assert.Equal(t, int64(60*1000), cfg.Presets[0].OnDurationMs)
	assert.Equal(t, int64(30*60*1000), cfg.Presets[0].CycleIntervalMs)
	assert.Equal(t, 4, cfg.Pins.Relay)
	assert.True(t, cfg.I2C.SensorEnabled)
	assert.True(t, cfg.I2C.DisplayEnabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, int64(10), cfg.Timing.PollMs)
}

func TestLoad_ValidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlContent := `
timing:
  poll_ms: 20
  sensor_interval_ms: 5000

presets:
  - label: "Only one"
    on_duration_ms: 30000
    cycle_interval_ms: 600000

pins:
  relay: 5
  button: 27
  button_enabled: false

mqtt:
  broker: "tcp://10.0.0.5:1883"
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(20), cfg.Timing.PollMs)
	assert.Equal(t, int64(5000), cfg.Timing.SensorIntervalMs)
	// Fields absent from the file keep their defaults.
	assert.Equal(t, int64(500), cfg.Timing.DisplayMs)
	require.Len(t, cfg.Presets, 1)
	assert.Equal(t, "Only one", cfg.Presets[0].Label)
	assert.Equal(t, 5, cfg.Pins.Relay)
	assert.False(t, cfg.Pins.ButtonEnabled)
	assert.Equal(t, "tcp://10.0.0.5:1883", cfg.MQTT.Broker)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timing: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no presets", func(c *Config) { c.Presets = nil }},
		{"long label", func(c *Config) {
			c.Presets[0].Label = "seventeen chars!!"
		}},
		{"zero on duration", func(c *Config) { c.Presets[0].OnDurationMs = 0 }},
		{"negative cycle interval", func(c *Config) { c.Presets[0].CycleIntervalMs = -1 }},
		{"zero poll", func(c *Config) { c.Timing.PollMs = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Timing.PollMs = 25
	cfg.MQTT.Broker = ""
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
