//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/marmos91/idrecon/pkg/recon/model"
	"github.com/marmos91/idrecon/pkg/recon/normalize"
)

func startPostgres(t *testing.T) *Config {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("idrecon_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategyAndDeadline(60*time.Second,
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return &Config{
		Type: DatabaseTypePostgres,
		Postgres: PostgresConfig{
			Host:     host,
			Port:     port.Int(),
			Database: "idrecon_test",
			User:     "test",
			Password: "test",
			SSLMode:  "disable",
		},
	}
}

func TestPostgresStore(t *testing.T) {
	cfg := startPostgres(t)
	ctx := context.Background()

	s, err := New(ctx, cfg)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Healthcheck(ctx))

	last := time.Date(2026, 1, 15, 8, 30, 0, 0, time.UTC)
	_, err = s.ReplaceDirectory(ctx, "izhevsk", []model.DirectoryAccount{
		{Login: "ivanov", Enabled: normalize.True, Groups: []string{"VPN"}, LastLogon: &last},
		{Login: "petrov", Enabled: normalize.False},
	}, "izh.csv")
	require.NoError(t, err)

	_, err = s.ReplaceMFA(ctx, []model.MfaEnrollment{{Identity: "ivanov", IsEnrolled: normalize.True}}, "mfa.csv")
	require.NoError(t, err)
	_, err = s.ReplaceHR(ctx, []model.HrRecord{{EmployeeID: "E1", HRBusinessPartner: "bp"}}, "hr.csv")
	require.NoError(t, err)

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Directory, 2)
	assert.Equal(t, "ivanov", snap.Directory[0].Login)
	assert.Equal(t, []string{"VPN"}, snap.Directory[0].Groups)
	require.NotNil(t, snap.Directory[0].LastLogon)
	assert.True(t, last.Equal(*snap.Directory[0].LastLogon))
	assert.Len(t, snap.Mfa, 1)
	assert.Equal(t, "bp", snap.Hr[0].HRBusinessPartner)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.DirectoryByDomain["izhevsk"])
	assert.Equal(t, "izh.csv", st.LastUploads["directory:izhevsk"].Filename)

	require.NoError(t, s.SetSetting(ctx, "k", "v"))
	v, err := s.GetSetting(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	// re-running migrations on an up-to-date schema is a no-op
	state, err := Migrate(ctx, cfg)
	require.NoError(t, err)
	assert.False(t, state.Changed)
	assert.False(t, state.Dirty)
	assert.EqualValues(t, 1, state.Version)
}
