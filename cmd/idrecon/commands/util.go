package commands

import (
	"context"
	"fmt"

	"github.com/marmos91/idrecon/internal/logger"
	"github.com/marmos91/idrecon/pkg/config"
	"github.com/marmos91/idrecon/pkg/dirsync"
	"github.com/marmos91/idrecon/pkg/metrics"
	"github.com/marmos91/idrecon/pkg/reconciler"
	"github.com/marmos91/idrecon/pkg/store"
)

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	if err := logger.Init(cfg.LoggerConfig()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// getConfigSource returns a description of where the config was loaded from.
func getConfigSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}

// loadLocal loads configuration for one-shot commands. Unlike start, a
// missing configuration file falls back to the defaults.
func loadLocal() (*config.Config, error) {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return nil, err
	}
	if err := InitLogger(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openService opens the store and builds the reconciliation service over
// it. The caller closes the returned store.
func openService(ctx context.Context, cfg *config.Config, m metrics.ReconMetrics) (*store.GORMStore, *reconciler.Service, error) {
	st, err := store.New(ctx, &cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}

	var syncer *dirsync.Syncer
	if cfg.SyncEnabled() {
		syncer = dirsync.New(cfg.LDAPDomains())
	}

	svc := reconciler.New(st, reconciler.Options{
		Domains:            cfg.ReconcilerDomains(),
		DefaultAccountType: cfg.Classification.DefaultType,
		Audit:              cfg.Audit,
		Syncer:             syncer,
		Metrics:            m,
	})
	return st, svc, nil
}
