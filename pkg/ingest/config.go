package ingest

import "github.com/marmos91/idrecon/internal/bytesize"

// DefaultMaxUploadSize bounds a single uploaded export.
const DefaultMaxUploadSize = 50 * bytesize.MiB

// Config controls file intake.
type Config struct {
	// MaxUploadSize is the largest accepted upload, e.g. "50Mi".
	MaxUploadSize bytesize.ByteSize `mapstructure:"max_upload_size" yaml:"max_upload_size"`
}

// ApplyDefaults fills in zero values.
func (c *Config) ApplyDefaults() {
	if c.MaxUploadSize == 0 {
		c.MaxUploadSize = DefaultMaxUploadSize
	}
}
