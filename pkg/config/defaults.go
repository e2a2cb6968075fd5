package config

import (
	"strings"
	"time"

	"github.com/marmos91/idrecon/pkg/recon/audit"
	"github.com/marmos91/idrecon/pkg/recon/classify"
	"github.com/marmos91/idrecon/pkg/store"
)

// Defaults of settings without a package of their own.
const (
	DefaultShutdownTimeout   = 30 * time.Second
	DefaultTracingEndpoint   = "localhost:4317"
	DefaultProfilingEndpoint = "http://localhost:4040"
)

// DefaultProfileTypes covers CPU, heap and goroutines. Mutex and block
// profiles cost extra runtime sampling and are opt-in.
var DefaultProfileTypes = []string{
	"cpu", "alloc_objects", "alloc_space", "inuse_objects", "inuse_space", "goroutines",
}

// ApplyDefaults fills zero values in place and normalizes the log level and
// domain keys. Explicit values are kept.
func ApplyDefaults(cfg *Config) {
	l := &cfg.Logging
	l.Level = strings.ToUpper(orDefault(l.Level, "INFO"))
	l.Format = orDefault(l.Format, "text")
	l.Output = orDefault(l.Output, "stdout")

	t := &cfg.Telemetry
	t.Endpoint = orDefault(t.Endpoint, DefaultTracingEndpoint)
	if t.SampleRate == 0 {
		t.SampleRate = 1
	}
	t.Profiling.Endpoint = orDefault(t.Profiling.Endpoint, DefaultProfilingEndpoint)
	if len(t.Profiling.ProfileTypes) == 0 {
		t.Profiling.ProfileTypes = append([]string(nil), DefaultProfileTypes...)
	}

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}

	cfg.Database.ApplyDefaults()
	cfg.API.ApplyDefaults()
	cfg.Ingest.ApplyDefaults()

	if len(cfg.Domains) == 0 {
		cfg.Domains = DefaultDomains()
	}
	for i := range cfg.Domains {
		d := &cfg.Domains[i]
		d.Key = strings.ToLower(strings.TrimSpace(d.Key))
		d.Label = orDefault(d.Label, d.Key)
		if d.LDAP.Configured() {
			d.LDAP.ApplyDefaults()
		}
	}

	cfg.Classification.DefaultType = orDefault(cfg.Classification.DefaultType, classify.TypeUnknown)

	if cfg.Audit.InactiveDays == 0 {
		cfg.Audit.InactiveDays = audit.DefaultInactiveDays
	}
	if cfg.Audit.StalePasswordDays == 0 {
		cfg.Audit.StalePasswordDays = audit.DefaultStalePasswordDays
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// DefaultDomains returns the three stock directory domains.
func DefaultDomains() []DomainConfig {
	return []DomainConfig{
		{Key: "izhevsk", Label: "AD Izhevsk", DNSuffix: "DC=local,DC=htc-cs,DC=com"},
		{Key: "kostroma", Label: "AD Kostroma", DNSuffix: "DC=ad,DC=local"},
		{Key: "moscow", Label: "AD Moscow", DNSuffix: "DC=aplana,DC=com"},
	}
}

// GetDefaultConfig returns a complete configuration backed by SQLite. It is
// the base layer of Load and the content of `idrecon config init`.
func GetDefaultConfig() *Config {
	cfg := &Config{Database: store.Config{Type: store.DatabaseTypeSQLite}}
	ApplyDefaults(cfg)
	return cfg
}
