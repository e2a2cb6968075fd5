package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/marmos91/idrecon/pkg/recon/classify"
	"github.com/marmos91/idrecon/pkg/reconciler"
)

// maxRulesBody bounds a PUT of the OU rule table.
const maxRulesBody = 1 << 20

// SettingsHandler reads and replaces the OU classification rules.
type SettingsHandler struct {
	svc *reconciler.Service
}

// NewSettingsHandler creates a settings handler.
func NewSettingsHandler(svc *reconciler.Service) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

// GetOURules handles GET /api/v1/settings/ou-rules.
func (h *SettingsHandler) GetOURules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.svc.OURules(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, rules)
}

// PutOURules handles PUT /api/v1/settings/ou-rules. The body is the full
// rule table keyed by domain; it replaces the stored one.
func (h *SettingsHandler) PutOURules(w http.ResponseWriter, r *http.Request) {
	var rules classify.RuleSet
	if !decodeJSONBody(w, r, &rules) {
		return
	}
	if err := h.svc.SetOURules(r.Context(), rules); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, rules)
}

// ResetOURules handles POST /api/v1/settings/ou-rules/reset.
func (h *SettingsHandler) ResetOURules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.svc.ResetOURules(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, rules)
}

// decodeJSONBody decodes a JSON request body into the provided pointer.
// Returns true if successful, false if decoding fails (error response is written automatically).
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRulesBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		badRequest(w, r, "Invalid request body")
		return false
	}
	return true
}
