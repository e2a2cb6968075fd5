package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marmos91/idrecon/internal/logger"
	"github.com/marmos91/idrecon/internal/telemetry"
	"github.com/marmos91/idrecon/pkg/api"
	"github.com/marmos91/idrecon/pkg/config"
	"github.com/marmos91/idrecon/pkg/export"
	"github.com/marmos91/idrecon/pkg/metrics"
	promMetrics "github.com/marmos91/idrecon/pkg/metrics/prometheus"
)

var pidFile string

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the idrecon server",
	Long: `Start the idrecon API server in the foreground.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/idrecon/config.yaml.

Examples:
  # Start with the default config
  idrecon start

  # Start with a custom config file
  idrecon start --config /etc/idrecon/config.yaml

  # Start with environment variable overrides
  IDRECON_LOGGING_LEVEL=DEBUG idrecon start`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVar(&pidFile, "pid-file", "", "Write the process ID to this file")
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}
	if !cfg.API.IsEnabled() {
		return fmt.Errorf("api.enabled is false: nothing to serve")
	}

	// SIGINT or SIGTERM cancels ctx, which drains the API server.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("idrecon starting", "version", Version,
		"config", getConfigSource(GetConfigFile()),
		"log_level", cfg.Logging.Level, "log_format", cfg.Logging.Format)

	stopObservability, err := startObservability(ctx, cfg)
	if err != nil {
		return err
	}
	defer stopObservability()

	st, svc, err := openService(ctx, cfg, promMetrics.NewReconMetrics())
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	for _, d := range svc.Domains() {
		logger.Info("Domain configured", logger.Domain(d.Key), "label", d.Label, "ldap_sync", d.Sync)
	}

	opts := api.RouterOptions{
		MaxUploadSize:  cfg.Ingest.MaxUploadSize.Int64(),
		RequestTimeout: cfg.API.RequestTimeout,
		Metrics:        promMetrics.NewHTTPMetrics(),
	}
	if cfg.Export.S3.Enabled {
		opts.Archiver, err = export.NewArchiverFromConfig(ctx, cfg.Export.S3, promMetrics.NewArchiveMetrics())
		if err != nil {
			return fmt.Errorf("failed to configure report archive: %w", err)
		}
		logger.Info("Report archive enabled", logger.Bucket(cfg.Export.S3.Bucket), "prefix", cfg.Export.S3.Prefix)
	}

	if pidFile != "" {
		if err := os.WriteFile(pidFile, []byte(strconv.Itoa(os.Getpid())+"\n"), 0644); err != nil {
			return fmt.Errorf("failed to write PID file: %w", err)
		}
		defer func() { _ = os.Remove(pidFile) }()
	}

	server := api.NewServer(cfg.API, svc, opts).WithShutdownTimeout(cfg.ShutdownTimeout)
	logger.Info("Server is running. Press Ctrl+C to stop.", "port", cfg.API.Port)

	// Start returns once ctx is cancelled and in-flight requests are drained,
	// or earlier when the listener fails.
	if err := server.Start(ctx); err != nil {
		logger.Error("Server stopped with error", logger.Err(err))
		return err
	}
	return nil
}

// startObservability brings up tracing, profiling and the metrics registry.
// The registry must exist before any collector or the router is built. The
// returned function flushes and stops what was started.
func startObservability(ctx context.Context, cfg *config.Config) (func(), error) {
	shutdownTracing, err := telemetry.Init(ctx, cfg.TelemetryConfig(Version))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	stopProfiling, err := telemetry.InitProfiling(cfg.ProfilingConfig(Version))
	if err != nil {
		_ = shutdownTracing(context.Background())
		return nil, fmt.Errorf("failed to initialize profiling: %w", err)
	}

	logger.Info("Observability",
		"tracing", telemetry.IsEnabled(), "tracing_endpoint", cfg.Telemetry.Endpoint,
		"profiling", telemetry.IsProfilingEnabled(), "profile_types", cfg.Telemetry.Profiling.ProfileTypes,
		"metrics", cfg.Metrics.Enabled)
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	return func() {
		// ctx is already cancelled here, the flush needs its own deadline.
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error("Telemetry shutdown failed", logger.Err(err))
		}
		if err := stopProfiling(); err != nil {
			logger.Error("Profiling shutdown failed", logger.Err(err))
		}
	}, nil
}
