package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/marmos91/idrecon/internal/logger"
	"github.com/marmos91/idrecon/pkg/dirsync"
	"github.com/marmos91/idrecon/pkg/export"
	"github.com/marmos91/idrecon/pkg/ingest"
	"github.com/marmos91/idrecon/pkg/recon/classify"
	"github.com/marmos91/idrecon/pkg/reconciler"
	"github.com/marmos91/idrecon/pkg/store"
)

// statusFor maps a service error to a response status. The second result
// tells whether the error text is safe to show the client.
func statusFor(err error) (int, bool) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, dirsync.ErrDomainNotConfigured):
		return http.StatusNotFound, true
	case errors.Is(err, ingest.ErrUnsupportedFormat),
		errors.Is(err, ingest.ErrNoHeader),
		errors.Is(err, export.ErrUnsupportedFormat),
		errors.Is(err, classify.ErrInvalidRules),
		errors.Is(err, reconciler.ErrUnknownDomain):
		return http.StatusBadRequest, true
	case errors.Is(err, export.ErrArchiveDisabled):
		return http.StatusConflict, true
	case errors.Is(err, dirsync.ErrUnavailable):
		return http.StatusBadGateway, true
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, true
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, false
	}
	return http.StatusInternalServerError, false
}

// writeError answers r with the problem matching err. Errors without a
// mapping are logged and reported without their text.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, public := statusFor(err)
	switch {
	case public:
		writeProblem(w, r, status, err.Error())
	case status == http.StatusServiceUnavailable:
		writeProblem(w, r, status, "request timed out")
	default:
		logger.ErrorCtx(r.Context(), "Request failed", logger.Err(err))
		writeProblem(w, r, status, "internal error")
	}
}
