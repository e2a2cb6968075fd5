package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/idrecon/internal/logger"
	"github.com/marmos91/idrecon/pkg/reconciler"
)

// SyncHandler triggers LDAP pulls.
type SyncHandler struct {
	svc *reconciler.Service
}

// NewSyncHandler creates a sync handler.
func NewSyncHandler(svc *reconciler.Service) *SyncHandler {
	return &SyncHandler{svc: svc}
}

// Sync handles POST /api/v1/sync/{domain}. It replaces the domain's
// accounts with the directory's current state.
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	domain := chi.URLParam(r, "domain")
	ctx := logger.Annotate(r.Context(), logger.OperationField("sync"), logger.SourceField("directory", domain))
	result, err := h.svc.Sync(ctx, domain)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, result)
}
