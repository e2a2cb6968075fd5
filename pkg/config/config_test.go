package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/marmos91/idrecon/internal/bytesize"
	"github.com/marmos91/idrecon/pkg/recon/classify"
	"github.com/marmos91/idrecon/pkg/store"
)

// yamlSafePath converts a filesystem path to a YAML-safe representation.
// On Windows, backslashes in double-quoted YAML strings are interpreted as
// escape sequences (e.g. \U -> Unicode escape), causing parse errors.
func yamlSafePath(p string) string {
	return filepath.ToSlash(p)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoad_DefaultConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := writeConfig(t, `
logging:
  level: "info"

database:
  type: sqlite
  sqlite:
    path: "`+yamlSafePath(tmpDir)+`/idrecon.db"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected normalized level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown_timeout 30s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("Expected API port 8080, got %d", cfg.API.Port)
	}
	if len(cfg.Domains) != 3 || cfg.Domains[0].Key != "izhevsk" {
		t.Errorf("Expected the three default domains, got %+v", cfg.Domains)
	}
	if cfg.Classification.DefaultType != classify.TypeUnknown {
		t.Errorf("Expected default type %q, got %q", classify.TypeUnknown, cfg.Classification.DefaultType)
	}
	if cfg.Audit.InactiveDays != 90 || cfg.Audit.StalePasswordDays != 180 {
		t.Errorf("Expected audit defaults 90/180, got %+v", cfg.Audit)
	}
	if cfg.Ingest.MaxUploadSize != 50*bytesize.MiB {
		t.Errorf("Expected max upload size 50Mi, got %v", cfg.Ingest.MaxUploadSize)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	// Loading with no config file returns a valid default config.
	nonExistentPath := filepath.Join(t.TempDir(), "nonexistent.yaml")

	cfg, err := Load(nonExistentPath)
	if err != nil {
		t.Fatalf("Expected no error when loading default config, got: %v", err)
	}
	if cfg == nil {
		t.Fatal("Expected default config to be returned")
	}
	if cfg.Database.Type != store.DatabaseTypeSQLite {
		t.Errorf("Expected sqlite database, got %q", cfg.Database.Type)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := writeConfig(t, `
logging:
  level: "WARN"
  format: json
shutdown_timeout: 5s

database:
  sqlite:
    path: "`+yamlSafePath(tmpDir)+`/recon.db"

api:
  port: 9000
  read_timeout: 15s

domains:
  - key: Paris
    dn_suffix: "DC=paris,DC=local"
  - key: moscow
    label: "AD Moscow"
    ldap:
      server: dc1.msk.local
      use_ssl: true
      bind_dn: "CN=svc,DC=msk"
      password: secret
      search_base: "DC=msk"

classification:
  default_type: Unknown

audit:
  inactive_days: 30

ingest:
  max_upload_size: 10Mi

export:
  s3:
    enabled: true
    bucket: reports
    prefix: recon/
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Format != "json" {
		t.Errorf("Expected json format, got %q", cfg.Logging.Format)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("Expected shutdown_timeout 5s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.API.Port != 9000 || cfg.API.ReadTimeout != 15*time.Second {
		t.Errorf("Expected api port 9000 and read timeout 15s, got %d %v", cfg.API.Port, cfg.API.ReadTimeout)
	}
	if len(cfg.Domains) != 2 {
		t.Fatalf("Expected 2 domains, got %d", len(cfg.Domains))
	}
	if cfg.Domains[0].Key != "paris" || cfg.Domains[0].Label != "paris" {
		t.Errorf("Expected key and label 'paris', got %+v", cfg.Domains[0])
	}
	ldapCfg := cfg.Domains[1].LDAP
	if ldapCfg.Port != 636 {
		t.Errorf("Expected ldaps port 636, got %d", ldapCfg.Port)
	}
	if ldapCfg.PageSize != 1000 {
		t.Errorf("Expected page size 1000, got %d", ldapCfg.PageSize)
	}
	if cfg.Classification.DefaultType != "Unknown" {
		t.Errorf("Expected default type 'Unknown', got %q", cfg.Classification.DefaultType)
	}
	if cfg.Audit.InactiveDays != 30 || cfg.Audit.StalePasswordDays != 180 {
		t.Errorf("Expected audit 30/180, got %+v", cfg.Audit)
	}
	if cfg.Ingest.MaxUploadSize != 10*bytesize.MiB {
		t.Errorf("Expected 10Mi, got %v", cfg.Ingest.MaxUploadSize)
	}
	if !cfg.Export.S3.Enabled || cfg.Export.S3.Bucket != "reports" {
		t.Errorf("Expected s3 export to reports, got %+v", cfg.Export.S3)
	}

	domains := cfg.ReconcilerDomains()
	if domains[1].Label != "AD Moscow" || domains[0].DNSuffix != "DC=paris,DC=local" {
		t.Errorf("Unexpected reconciler domains: %+v", domains)
	}
	if !cfg.SyncEnabled() {
		t.Error("Expected sync to be enabled")
	}
	if _, ok := cfg.LDAPDomains()["paris"]; !ok {
		t.Error("Expected every domain in LDAPDomains")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := writeConfig(t, `
logging:
  level: "INFO"
database:
  sqlite:
    path: "`+yamlSafePath(tmpDir)+`/recon.db"
`)
	t.Setenv("IDRECON_LOGGING_LEVEL", "debug")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected env override 'DEBUG', got %q", cfg.Logging.Level)
	}
}

func TestLoad_EnvOverrideWithoutFile(t *testing.T) {
	t.Setenv("IDRECON_API_PORT", "9100")
	t.Setenv("IDRECON_INGEST_MAX_UPLOAD_SIZE", "5Mi")
	t.Setenv("IDRECON_TELEMETRY_PROFILING_PROFILE_TYPES", "cpu,goroutines")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.API.Port != 9100 {
		t.Errorf("Expected port from environment, got %d", cfg.API.Port)
	}
	if cfg.Ingest.MaxUploadSize != 5*bytesize.MiB {
		t.Errorf("Expected 5Mi from environment, got %v", cfg.Ingest.MaxUploadSize)
	}
	if got := strings.Join(cfg.Telemetry.Profiling.ProfileTypes, ","); got != "cpu,goroutines" {
		t.Errorf("Expected profile types from environment, got %q", got)
	}
}

func TestLoad_PartialSectionKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "audit:\n  inactive_days: 30\n"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Audit.InactiveDays != 30 || cfg.Audit.StalePasswordDays != 180 {
		t.Errorf("Expected 30/180, got %+v", cfg.Audit)
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad log level", "logging:\n  level: LOUD\n", "oneof"},
		{"bad default type", "classification:\n  default_type: Robot\n", "oneof"},
		{"duplicate domains", "domains:\n  - key: a\n  - key: A\n", "duplicate key"},
		{"ldap without search base", "domains:\n  - key: a\n    ldap:\n      server: dc\n      bind_dn: x\n", "search_base"},
		{"s3 without bucket", "export:\n  s3:\n    enabled: true\n", "bucket"},
		{"bad duration", "shutdown_timeout: soon\n", "unmarshal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got: %v", tt.want, err)
			}
		})
	}
}

func TestMustLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")
	_, err := MustLoad(path)
	if err == nil {
		t.Fatal("Expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "idrecon config init") {
		t.Errorf("Expected init hint in error, got: %v", err)
	}
}

func TestMustLoad_NoDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	if DefaultConfigExists() {
		t.Fatal("Expected no default config in a fresh XDG dir")
	}
	if _, err := MustLoad(""); err == nil {
		t.Fatal("Expected error without a default config")
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := GetDefaultConfig()
	cfg.Database.SQLite.Path = filepath.Join(tmpDir, "recon.db")
	cfg.API.Port = 9100
	cfg.Domains[2].LDAP.Server = "dc1.msk.local"
	cfg.Domains[2].LDAP.BindDN = "CN=svc"
	cfg.Domains[2].LDAP.SearchBase = "DC=msk"

	path := filepath.Join(tmpDir, "nested", "config.yaml")
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected 0600 permissions, got %v", info.Mode().Perm())
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load of saved config failed: %v", err)
	}
	if loaded.API.Port != 9100 {
		t.Errorf("Expected port 9100, got %d", loaded.API.Port)
	}
	if loaded.Domains[2].LDAP.Port != 389 {
		t.Errorf("Expected ldap port 389, got %d", loaded.Domains[2].LDAP.Port)
	}
	if loaded.Ingest.MaxUploadSize != cfg.Ingest.MaxUploadSize {
		t.Errorf("Expected max upload size %v, got %v", cfg.Ingest.MaxUploadSize, loaded.Ingest.MaxUploadSize)
	}
}

func TestGetConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := GetConfigDir(); got != filepath.Join("/tmp/xdg", "idrecon") {
		t.Errorf("Expected /tmp/xdg/idrecon, got %q", got)
	}
	if got := GetDefaultConfigPath(); got != filepath.Join("/tmp/xdg", "idrecon", "config.yaml") {
		t.Errorf("Unexpected default path %q", got)
	}
}

func TestLoadDotEnv(t *testing.T) {
	if err := loadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("Missing .env should be ignored, got: %v", err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("IDRECON_TEST_DOTENV=loaded\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("IDRECON_TEST_DOTENV") })
	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv failed: %v", err)
	}
	if got := os.Getenv("IDRECON_TEST_DOTENV"); got != "loaded" {
		t.Errorf("Expected variable from .env, got %q", got)
	}
}

func TestDefaultTypeMatchesClassifierFallback(t *testing.T) {
	cfg := GetDefaultConfig()
	if got, want := cfg.Classification.DefaultType, classify.New(nil, "").Default; got != want {
		t.Errorf("Expected configured default type %q to match the classifier fallback %q", got, want)
	}
}
