package telemetry

import (
	"errors"
	"fmt"
)

// ServiceName identifies idrecon in trace and profile backends.
const ServiceName = "idrecon"

// Config configures span export.
type Config struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string

	// Endpoint is a host:port of an OTLP/gRPC collector, e.g. "localhost:4317".
	Endpoint string
	Insecure bool

	// SampleRate is the share of new root traces recorded, in [0, 1].
	// Children follow the sampling decision of their parent.
	SampleRate float64
}

// DefaultConfig has tracing off, pointed at a collector on localhost.
func DefaultConfig() Config {
	return Config{
		ServiceName:    ServiceName,
		ServiceVersion: "dev",
		Endpoint:       "localhost:4317",
		Insecure:       true,
		SampleRate:     1,
	}
}

// Validate reports settings Init would reject or silently misuse.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Endpoint == "" {
		return errors.New("telemetry: endpoint is required when tracing is enabled")
	}
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("telemetry: sample rate %v outside [0, 1]", c.SampleRate)
	}
	return nil
}

// ProfilingConfig configures continuous profiling with Pyroscope.
type ProfilingConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string

	// Endpoint is the Pyroscope server URL, e.g. "http://localhost:4040".
	Endpoint string

	// ProfileTypes lists what to collect. Empty means cpu plus the heap
	// profiles, which cover the consolidation and export paths.
	ProfileTypes []string
}
