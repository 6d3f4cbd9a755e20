// Package config loads the controller configuration from a YAML file.
// A missing file yields the defaults; a malformed file is an error.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the daemon configuration.
type Config struct {
	Timing  TimingConfig   `yaml:"timing"`
	Presets []PresetConfig `yaml:"presets"`
	Pins    PinsConfig     `yaml:"pins"`
	I2C     I2CConfig      `yaml:"i2c"`
	Storage StorageConfig  `yaml:"storage"`
	MQTT    MQTTConfig     `yaml:"mqtt"`
	HTTP    HTTPConfig     `yaml:"http"`
}

// TimingConfig contains the fixed intervals and thresholds, in milliseconds.
type TimingConfig struct {
	PollMs           int64 `yaml:"poll_ms"`            // scheduler pass interval
	SensorIntervalMs int64 `yaml:"sensor_interval_ms"` // sensor sample interval
	DisplayMs        int64 `yaml:"display_ms"`         // display refresh interval
	GreenThresholdMs int64 `yaml:"green_threshold_ms"` // green backlight window
	DebounceMs       int64 `yaml:"debounce_ms"`        // button debounce window
	OverlayMs        int64 `yaml:"overlay_ms"`         // preset overlay window
}

// PresetConfig is one schedule preset. The first preset is the boot default
// when no index has been persisted.
type PresetConfig struct {
	Label           string `yaml:"label"`
	OnDurationMs    int64  `yaml:"on_duration_ms"`
	CycleIntervalMs int64  `yaml:"cycle_interval_ms"`
}

// PinsConfig contains GPIO pin assignments (BCM numbering).
type PinsConfig struct {
	Relay         int  `yaml:"relay"`
	Button        int  `yaml:"button"`
	ButtonEnabled bool `yaml:"button_enabled"`
}

// I2CConfig contains I2C bus and device configuration.
type I2CConfig struct {
	Bus            string `yaml:"bus"` // empty = first available bus
	SensorAddr     uint16 `yaml:"sensor_addr"`
	SensorEnabled  bool   `yaml:"sensor_enabled"`
	LCDAddr        uint16 `yaml:"lcd_addr"`
	RGBAddr        uint16 `yaml:"rgb_addr"`
	DisplayEnabled bool   `yaml:"display_enabled"`
}

// StorageConfig contains preset persistence configuration.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// MQTTConfig contains event publishing configuration.
type MQTTConfig struct {
	Broker string `yaml:"broker"` // empty = publishing disabled
}

// HTTPConfig contains the status server configuration.
type HTTPConfig struct {
	Addr string `yaml:"addr"` // empty = server disabled
}

// Default returns the configuration matching the original controller board.
func Default() *Config {
	return &Config{
		Timing: TimingConfig{
			PollMs:           10,
			SensorIntervalMs: 2000,
			DisplayMs:        500,
			GreenThresholdMs: 5 * 60 * 1000,
			DebounceMs:       50,
			OverlayMs:        2000,
		},
		Presets: []PresetConfig{
			{Label: "Normal", OnDurationMs: 60 * 1000, CycleIntervalMs: 30 * 60 * 1000},
			{Label: "Wet season", OnDurationMs: 120 * 1000, CycleIntervalMs: 10 * 60 * 1000},
			{Label: "Dry season", OnDurationMs: 30 * 1000, CycleIntervalMs: 2 * 60 * 60 * 1000},
		},
		Pins: PinsConfig{
			Relay:         4,
			Button:        17,
			ButtonEnabled: true,
		},
		I2C: I2CConfig{
			SensorAddr:     0x38,
			SensorEnabled:  true,
			LCDAddr:        0x3E,
			RGBAddr:        0x62,
			DisplayEnabled: true,
		},
		Storage: StorageConfig{
			Path: "/var/lib/cellarpump/preset",
		},
		MQTT: MQTTConfig{
			Broker: "tcp://192.168.1.200:1883",
		},
		HTTP: HTTPConfig{
			Addr: ":80",
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist it
// returns the defaults; fields missing from the file keep their defaults.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the constraints the selector and store rely on.
func (c *Config) Validate() error {
	if len(c.Presets) == 0 {
		return fmt.Errorf("config: at least one preset is required")
	}
	if len(c.Presets) > 255 {
		return fmt.Errorf("config: at most 255 presets (index is persisted as one byte)")
	}
	for i, p := range c.Presets {
		if len(p.Label) > 16 {
			return fmt.Errorf("config: preset %d label %q exceeds 16 characters", i, p.Label)
		}
		if p.OnDurationMs <= 0 {
			return fmt.Errorf("config: preset %d on_duration_ms must be positive", i)
		}
		if p.CycleIntervalMs <= 0 {
			return fmt.Errorf("config: preset %d cycle_interval_ms must be positive", i)
		}
	}
	if c.Timing.PollMs <= 0 {
		return fmt.Errorf("config: poll_ms must be positive")
	}
	return nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
