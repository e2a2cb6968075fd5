package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestInitConfigToPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	if err := InitConfigToPath(path, false); err != nil {
		t.Fatalf("InitConfigToPath failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Generated config does not load: %v", err)
	}
	if len(cfg.Domains) != 3 {
		t.Errorf("Expected 3 default domains, got %d", len(cfg.Domains))
	}
	if cfg.Domains[1].Label != "AD Kostroma" {
		t.Errorf("Expected label 'AD Kostroma', got %q", cfg.Domains[1].Label)
	}

	err = InitConfigToPath(path, false)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("Expected 'already exists' error, got %v", err)
	}

	if err := InitConfigToPath(path, true); err != nil {
		t.Errorf("Force overwrite failed: %v", err)
	}
}

func TestInitConfigDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path, err := InitConfig(false)
	if err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}
	if path != GetDefaultConfigPath() {
		t.Errorf("Expected %s, got %s", GetDefaultConfigPath(), path)
	}
	if !DefaultConfigExists() {
		t.Error("Expected default config to exist after init")
	}
	if _, err := MustLoad(""); err != nil {
		t.Errorf("MustLoad of the default config failed: %v", err)
	}
}
