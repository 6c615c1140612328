// services/config/config.go

// Package config loads the daemon configuration from a JSON file with
// environment overrides for deploy-time tweaks.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type Config struct {
	// Bus is the I²C bus the sensor sits on, e.g. "/dev/i2c-1".
	Bus string `json:"bus"`
	// Addr overrides the sensor's 7-bit address; 0 keeps the default.
	Addr uint16 `json:"addr"`
	// AlertPin names the GPIO wired to the sensor's interrupt output.
	// Empty disables alert wiring.
	AlertPin string `json:"alert_pin"`
	// DebounceMS coalesces alert edges closer together than this.
	DebounceMS int `json:"debounce_ms"`
	// PollInterval between scheduled light measurements.
	PollInterval time.Duration `json:"poll_interval"`
	// HTTPPort for the control and export API.
	HTTPPort string `json:"http_port"`
	// DBPath is the sqlite file holding recorded readings.
	DBPath string `json:"db_path"`
}

func Default() Config {
	return Config{
		Bus:          "/dev/i2c-1",
		AlertPin:     "GPIO4",
		DebounceMS:   5,
		PollInterval: 30 * time.Second,
		HTTPPort:     "8080",
		DBPath:       "lightmeter.db",
	}
}

// Load reads path if it exists and overlays it on the defaults. A missing
// file is not an error so fresh installs run on defaults alone.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return applyEnv(cfg), nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	var file fileConfig
	if err := json.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	file.overlay(&cfg)
	return applyEnv(cfg), nil
}

// fileConfig uses pointers so absent keys keep their defaults, and carries
// the poll interval in seconds for hand-edited files.
type fileConfig struct {
	Bus         *string `json:"bus"`
	Addr        *uint16 `json:"addr"`
	AlertPin    *string `json:"alert_pin"`
	DebounceMS  *int    `json:"debounce_ms"`
	PollSeconds *int    `json:"poll_seconds"`
	HTTPPort    *string `json:"http_port"`
	DBPath      *string `json:"db_path"`
}

func (f fileConfig) overlay(cfg *Config) {
	if f.Bus != nil {
		cfg.Bus = *f.Bus
	}
	if f.Addr != nil {
		cfg.Addr = *f.Addr
	}
	if f.AlertPin != nil {
		cfg.AlertPin = *f.AlertPin
	}
	if f.DebounceMS != nil {
		cfg.DebounceMS = *f.DebounceMS
	}
	if f.PollSeconds != nil && *f.PollSeconds > 0 {
		cfg.PollInterval = time.Duration(*f.PollSeconds) * time.Second
	}
	if f.HTTPPort != nil {
		cfg.HTTPPort = *f.HTTPPort
	}
	if f.DBPath != nil {
		cfg.DBPath = *f.DBPath
	}
}

func applyEnv(cfg Config) Config {
	if v := os.Getenv("LIGHTMETER_BUS"); v != "" {
		cfg.Bus = v
	}
	if v := os.Getenv("LIGHTMETER_ALERT_PIN"); v != "" {
		cfg.AlertPin = v
	}
	if v := os.Getenv("LIGHTMETER_HTTP_PORT"); v != "" {
		cfg.HTTPPort = v
	}
	if v := os.Getenv("LIGHTMETER_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	return cfg
}
