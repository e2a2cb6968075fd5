package api

import (
	"net"
	"strconv"
	"time"
)

// Defaults for the HTTP server. Exports of large rosters are written in one
// response, hence the long write timeout.
const (
	DefaultPort           = 8080
	DefaultReadTimeout    = 60 * time.Second
	DefaultWriteTimeout   = 120 * time.Second
	DefaultIdleTimeout    = 60 * time.Second
	DefaultRequestTimeout = 90 * time.Second
)

// Config configures the REST API server.
type Config struct {
	// Enabled is a pointer so an omitted key keeps the server on.
	Enabled *bool `mapstructure:"enabled" yaml:"enabled"`

	// Bind is the listen address; empty listens on every interface.
	Bind string `mapstructure:"bind" validate:"omitempty,ip" yaml:"bind,omitempty"`
	Port int    `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`

	// ReadTimeout covers the whole request, uploaded file included.
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`

	// RequestTimeout cancels the context of slow handlers.
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
}

// IsEnabled reports whether the server should start.
func (c *Config) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Address is the host:port the server listens on.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Bind, strconv.Itoa(c.Port))
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	setDefault(&c.ReadTimeout, DefaultReadTimeout)
	setDefault(&c.WriteTimeout, DefaultWriteTimeout)
	setDefault(&c.IdleTimeout, DefaultIdleTimeout)
	setDefault(&c.RequestTimeout, DefaultRequestTimeout)
	if c.Port <= 0 {
		c.Port = DefaultPort
	}
}

func setDefault(d *time.Duration, v time.Duration) {
	if *d <= 0 {
		*d = v
	}
}
