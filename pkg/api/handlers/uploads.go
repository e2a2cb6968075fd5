package handlers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/marmos91/idrecon/internal/logger"
	"github.com/marmos91/idrecon/pkg/reconciler"
)

// multipartMemory is the part of a multipart form kept in memory; larger
// files spill to temporary files.
const multipartMemory = 8 << 20

// fileField is the multipart field carrying the uploaded export.
const fileField = "file"

// UploadHandler accepts directory, MFA and HR exports.
type UploadHandler struct {
	svc     *reconciler.Service
	maxSize int64
}

// NewUploadHandler creates an upload handler. Requests larger than maxSize
// are rejected with 413.
func NewUploadHandler(svc *reconciler.Service, maxSize int64) *UploadHandler {
	return &UploadHandler{svc: svc, maxSize: maxSize}
}

// Directory handles POST /api/v1/upload/directory?domain=&dn_suffix=.
func (h *UploadHandler) Directory(w http.ResponseWriter, r *http.Request) {
	domain := r.URL.Query().Get("domain")
	if domain == "" {
		badRequest(w, r, "domain is required")
		return
	}
	dnSuffix := r.URL.Query().Get("dn_suffix")

	r = withSource(r, "directory", domain)
	h.handle(w, r, func(ctx context.Context, f io.Reader, name string) (*reconciler.ImportResult, error) {
		return h.svc.ImportDirectory(ctx, domain, f, name, dnSuffix)
	})
}

// MFA handles POST /api/v1/upload/mfa.
func (h *UploadHandler) MFA(w http.ResponseWriter, r *http.Request) {
	h.handle(w, withSource(r, "mfa", ""), h.svc.ImportMFA)
}

// HR handles POST /api/v1/upload/hr.
func (h *UploadHandler) HR(w http.ResponseWriter, r *http.Request) {
	h.handle(w, withSource(r, "hr", ""), h.svc.ImportHR)
}

func withSource(r *http.Request, source, domain string) *http.Request {
	ctx := logger.Annotate(r.Context(), logger.OperationField("upload"), logger.SourceField(source, domain))
	return r.WithContext(ctx)
}

type importFunc func(ctx context.Context, r io.Reader, filename string) (*reconciler.ImportResult, error)

func (h *UploadHandler) handle(w http.ResponseWriter, r *http.Request, fn importFunc) {
	file, header, ok := h.formFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	result, err := fn(r.Context(), file, header.Filename)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCreated(w, result)
}

// formFile reads the uploaded file, writing a problem response on failure.
func (h *UploadHandler) formFile(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, bool) {
	if r.ContentLength > h.maxSize {
		writeProblem(w, r, http.StatusRequestEntityTooLarge, "file exceeds the upload limit")
		return nil, nil, false
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			writeProblem(w, r, http.StatusRequestEntityTooLarge, "file exceeds the upload limit")
			return nil, nil, false
		}
		badRequest(w, r, "expected a multipart/form-data body")
		return nil, nil, false
	}
	// net/http removes spilled temporary files after the handler returns.

	file, header, err := r.FormFile(fileField)
	if err != nil {
		badRequest(w, r, `missing "file" field`)
		return nil, nil, false
	}
	return file, header, true
}
