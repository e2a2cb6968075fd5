package config

import (
	"github.com/marmos91/idrecon/internal/logger"
	"github.com/marmos91/idrecon/internal/telemetry"
	"github.com/marmos91/idrecon/pkg/dirsync"
	"github.com/marmos91/idrecon/pkg/reconciler"
)

// ReconcilerDomains returns the configured domains in display order.
func (c *Config) ReconcilerDomains() []reconciler.Domain {
	out := make([]reconciler.Domain, 0, len(c.Domains))
	for _, d := range c.Domains {
		out = append(out, reconciler.Domain{Key: d.Key, Label: d.Label, DNSuffix: d.DNSuffix})
	}
	return out
}

// LDAPDomains returns the LDAP settings keyed by domain.
func (c *Config) LDAPDomains() map[string]dirsync.LDAPConfig {
	out := make(map[string]dirsync.LDAPConfig, len(c.Domains))
	for _, d := range c.Domains {
		out[d.Key] = d.LDAP
	}
	return out
}

// SyncEnabled reports whether any domain has an LDAP server.
func (c *Config) SyncEnabled() bool {
	for _, d := range c.Domains {
		if d.LDAP.Configured() {
			return true
		}
	}
	return false
}

// LoggerConfig converts the logging section.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:  c.Logging.Level,
		Format: c.Logging.Format,
		Output: c.Logging.Output,
	}
}

// TelemetryConfig converts the telemetry section for the given build version.
func (c *Config) TelemetryConfig(version string) telemetry.Config {
	return telemetry.Config{
		Enabled:        c.Telemetry.Enabled,
		ServiceName:    telemetry.ServiceName,
		ServiceVersion: version,
		Endpoint:       c.Telemetry.Endpoint,
		Insecure:       c.Telemetry.Insecure,
		SampleRate:     c.Telemetry.SampleRate,
	}
}

// ProfilingConfig converts the profiling section for the given build version.
func (c *Config) ProfilingConfig(version string) telemetry.ProfilingConfig {
	return telemetry.ProfilingConfig{
		Enabled:        c.Telemetry.Profiling.Enabled,
		ServiceName:    telemetry.ServiceName,
		ServiceVersion: version,
		Endpoint:       c.Telemetry.Profiling.Endpoint,
		ProfileTypes:   c.Telemetry.Profiling.ProfileTypes,
	}
}
