package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/marmos91/idrecon/pkg/api/handlers"
	"github.com/marmos91/idrecon/pkg/api/middleware"
	"github.com/marmos91/idrecon/pkg/export"
	"github.com/marmos91/idrecon/pkg/ingest"
	"github.com/marmos91/idrecon/pkg/metrics"
	"github.com/marmos91/idrecon/pkg/reconciler"
)

// RouterOptions carries the settings the router needs beyond the service.
type RouterOptions struct {
	// MaxUploadSize bounds uploaded files in bytes.
	// Default: ingest.DefaultMaxUploadSize
	MaxUploadSize int64

	// RequestTimeout cancels slow handlers.
	// Default: 90s
	RequestTimeout time.Duration

	// Metrics records per-route request counters. May be nil.
	Metrics metrics.HTTPMetrics

	// Archiver stores reports in the report bucket. Nil disables
	// POST /api/v1/consolidated/archive.
	Archiver *export.Archiver
}

// NewRouter creates the chi router with all middleware and routes.
//
// Routes:
//   - GET /health, /health/ready - liveness and readiness checks
//   - GET /metrics - Prometheus metrics, when enabled
//   - /api/v1/... - uploads, views, settings and sync
func NewRouter(svc *reconciler.Service, opts RouterOptions) http.Handler {
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = ingest.DefaultMaxUploadSize.Int64()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 90 * time.Second
	}

	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Tracing)
	r.Use(middleware.LogContext)
	r.Use(middleware.RequestLogger(opts.Metrics))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(opts.RequestTimeout))

	healthHandler := handlers.NewHealthHandler(svc)
	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	uploadHandler := handlers.NewUploadHandler(svc, opts.MaxUploadSize)
	reconHandler := handlers.NewReconHandler(svc, opts.Archiver)
	browseHandler := handlers.NewBrowseHandler(svc)
	settingsHandler := handlers.NewSettingsHandler(svc)
	syncHandler := handlers.NewSyncHandler(svc)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/upload", func(r chi.Router) {
			r.Post("/directory", uploadHandler.Directory)
			r.Post("/mfa", uploadHandler.MFA)
			r.Post("/hr", uploadHandler.HR)
		})

		r.Get("/stats", reconHandler.Stats)
		r.Get("/domains", reconHandler.Domains)
		r.Get("/consolidated", reconHandler.Consolidated)
		r.Post("/consolidated/archive", reconHandler.Archive)

		r.Route("/identities", func(r chi.Router) {
			r.Get("/", reconHandler.Identities)
			r.Get("/{key}", reconHandler.Identity)
			r.Get("/{key}/duplicates", reconHandler.IdentityDuplicates)
		})

		r.Get("/duplicates/logins", browseHandler.LoginDuplicates)
		r.Get("/security/findings", reconHandler.Security)

		r.Get("/groups/tree", browseHandler.GroupsTree)
		r.Get("/groups/members", browseHandler.GroupMembers)
		r.Get("/org/tree", browseHandler.OrgTree)
		r.Get("/org/members", browseHandler.OrgMembers)
		r.Get("/structure/tree", browseHandler.StructureTree)
		r.Get("/structure/members", browseHandler.StructureMembers)

		r.Route("/settings/ou-rules", func(r chi.Router) {
			r.Get("/", settingsHandler.GetOURules)
			r.Put("/", settingsHandler.PutOURules)
			r.Post("/reset", settingsHandler.ResetOURules)
		})

		r.Post("/sync/{domain}", syncHandler.Sync)
	})

	// Root redirect to health for convenience
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	return r
}
