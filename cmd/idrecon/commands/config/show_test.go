package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marmos91/idrecon/pkg/config"
)

func TestRedact(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Database.Postgres.Password = "pg-secret"
	cfg.Export.S3.SecretAccessKey = "s3-secret"
	cfg.Domains[0].LDAP.Password = "bind-secret"

	out := redact(cfg)

	assert.Equal(t, redacted, out.Database.Postgres.Password)
	assert.Equal(t, redacted, out.Export.S3.SecretAccessKey)
	assert.Equal(t, redacted, out.Domains[0].LDAP.Password)
	assert.Empty(t, out.Domains[1].LDAP.Password, "unset secrets stay empty")

	assert.Equal(t, "bind-secret", cfg.Domains[0].LDAP.Password, "the original is untouched")
	assert.Equal(t, "pg-secret", cfg.Database.Postgres.Password)
}
