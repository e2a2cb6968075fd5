package handlers

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/idrecon/internal/logger"
	"github.com/marmos91/idrecon/pkg/export"
	"github.com/marmos91/idrecon/pkg/reconciler"
)

// ReconHandler serves the reconciliation views.
type ReconHandler struct {
	svc      *reconciler.Service
	archiver *export.Archiver
	now      func() time.Time
}

// NewReconHandler creates a reconciliation view handler. archiver may be nil
// when no report bucket is configured.
func NewReconHandler(svc *reconciler.Service, archiver *export.Archiver) *ReconHandler {
	return &ReconHandler{svc: svc, archiver: archiver, now: time.Now}
}

// Stats handles GET /api/v1/stats.
func (h *ReconHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, stats)
}

// Domains handles GET /api/v1/domains.
func (h *ReconHandler) Domains(w http.ResponseWriter, r *http.Request) {
	writeOK(w, h.svc.Domains())
}

// Consolidated handles GET /api/v1/consolidated. Without a format the rows
// are returned as JSON; ?format=xlsx or ?format=csv returns a download.
func (h *ReconHandler) Consolidated(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("format")
	if raw == "" || raw == "json" {
		rows, err := h.svc.Consolidated(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, rows)
		return
	}

	format, err := export.ParseFormat(raw)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Rendered in full first so a failure still yields a problem response.
	buf, err := h.render(r, format)
	if err != nil {
		writeError(w, r, err)
		return
	}

	filename := format.Filename("consolidated", h.now())
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// Archive handles POST /api/v1/consolidated/archive. The report is
// rendered in ?format (xlsx by default) and stored in the report bucket.
func (h *ReconHandler) Archive(w http.ResponseWriter, r *http.Request) {
	if h.archiver == nil {
		writeError(w, r, export.ErrArchiveDisabled)
		return
	}

	raw := r.URL.Query().Get("format")
	if raw == "" {
		raw = string(export.FormatXLSX)
	}
	format, err := export.ParseFormat(raw)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx := logger.Annotate(r.Context(), logger.OperationField("archive"))
	r = r.WithContext(ctx)

	buf, err := h.render(r, format)
	if err != nil {
		writeError(w, r, err)
		return
	}

	size := buf.Len()
	key, err := h.archiver.Upload(ctx, format.Filename("consolidated", h.now()), format, buf.Bytes())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCreated(w, export.ArchivedReport{Bucket: h.archiver.Bucket(), Key: key, Format: format, Size: size})
}

func (h *ReconHandler) render(r *http.Request, format export.Format) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if err := h.svc.Export(r.Context(), &buf, format); err != nil {
		return nil, err
	}
	return &buf, nil
}

// Identities handles GET /api/v1/identities.
func (h *ReconHandler) Identities(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Identities(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, list)
}

// Identity handles GET /api/v1/identities/{key}. An unknown key yields an
// empty card, not a 404.
func (h *ReconHandler) Identity(w http.ResponseWriter, r *http.Request) {
	card, err := h.svc.IdentityCard(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, card)
}

// IdentityDuplicates handles GET /api/v1/identities/{key}/duplicates.
func (h *ReconHandler) IdentityDuplicates(w http.ResponseWriter, r *http.Request) {
	matches, err := h.svc.IdentityDuplicates(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, matches)
}

// Security handles GET /api/v1/security/findings.
func (h *ReconHandler) Security(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.SecurityReport(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, report)
}
