// services/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadOverlaysPresentKeysOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	data := `{"bus":"/dev/i2c-0","poll_seconds":5,"alert_pin":""}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Bus != "/dev/i2c-0" {
		t.Fatalf("Bus = %q", cfg.Bus)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Fatalf("PollInterval = %v", cfg.PollInterval)
	}
	if cfg.AlertPin != "" {
		t.Fatalf("AlertPin = %q, want cleared", cfg.AlertPin)
	}
	// Untouched keys keep defaults.
	if cfg.DBPath != Default().DBPath {
		t.Fatalf("DBPath = %q", cfg.DBPath)
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	if err := os.WriteFile(path, []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("want parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LIGHTMETER_HTTP_PORT", "9999")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPPort != "9999" {
		t.Fatalf("HTTPPort = %q", cfg.HTTPPort)
	}
}
