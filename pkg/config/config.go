package config

import (
	"time"

	"github.com/marmos91/idrecon/pkg/api"
	"github.com/marmos91/idrecon/pkg/dirsync"
	"github.com/marmos91/idrecon/pkg/export"
	"github.com/marmos91/idrecon/pkg/ingest"
	"github.com/marmos91/idrecon/pkg/recon/audit"
	"github.com/marmos91/idrecon/pkg/store"
)

// Config is the server configuration. See Load for how it is assembled.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// ShutdownTimeout bounds the drain of in-flight requests and the final
	// span flush.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// Database keeps uploaded sources and settings.
	Database store.Config  `mapstructure:"database" yaml:"database"`
	Metrics  MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	API      api.Config `mapstructure:"api" yaml:"api"`

	// Domains lists the directory domain sources in display order.
	Domains []DomainConfig `mapstructure:"domains" validate:"required,min=1,dive" yaml:"domains"`

	Classification ClassificationConfig `mapstructure:"classification" yaml:"classification"`
	Audit          audit.Config         `mapstructure:"audit" yaml:"audit"`
	Ingest         ingest.Config        `mapstructure:"ingest" yaml:"ingest"`
	Export         ExportConfig         `mapstructure:"export" yaml:"export"`
}

// LoggingConfig selects level, format and destination of the server log.
type LoggingConfig struct {
	// Level is normalized to upper case on load.
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output is stdout, stderr or a file path.
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig is the tracing section. It maps onto telemetry.Config.
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the host:port of an OTLP/gRPC collector.
	Endpoint   string  `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure   bool    `mapstructure:"insecure" yaml:"insecure"`
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig is the Pyroscope section.
type ProfilingConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the Pyroscope server URL.
	Endpoint     string   `mapstructure:"endpoint" yaml:"endpoint"`
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// MetricsConfig controls Prometheus metrics. When enabled, metrics are
// served on the API server at /metrics.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// DomainConfig describes one directory domain source.
type DomainConfig struct {
	// Key identifies the domain in uploads, stats and rules (e.g. "izhevsk").
	Key string `mapstructure:"key" validate:"required" yaml:"key"`

	// Label is the display name. Default: the key.
	Label string `mapstructure:"label" yaml:"label"`

	// DNSuffix limits imports to accounts under this DN suffix.
	DNSuffix string `mapstructure:"dn_suffix" yaml:"dn_suffix,omitempty"`

	// LDAP enables `idrecon sync` for the domain when its server is set.
	LDAP dirsync.LDAPConfig `mapstructure:"ldap" yaml:"ldap,omitempty"`
}

// ClassificationConfig controls account type assignment.
type ClassificationConfig struct {
	// DefaultType is assigned when no OU rule matches.
	// Default: "User"
	DefaultType string `mapstructure:"default_type" validate:"omitempty,oneof=User Contractor Disabled Service Test Unknown" yaml:"default_type"`
}

// ExportConfig configures report archiving.
type ExportConfig struct {
	S3 export.S3Config `mapstructure:"s3" yaml:"s3"`
}
