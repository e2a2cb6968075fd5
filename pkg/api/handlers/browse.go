package handlers

import (
	"net/http"

	"github.com/marmos91/idrecon/pkg/reconciler"
)

// BrowseHandler serves the group, org and OU trees and their members.
type BrowseHandler struct {
	svc *reconciler.Service
}

// NewBrowseHandler creates a browse handler.
func NewBrowseHandler(svc *reconciler.Service) *BrowseHandler {
	return &BrowseHandler{svc: svc}
}

// LoginDuplicates handles GET /api/v1/duplicates/logins.
func (h *BrowseHandler) LoginDuplicates(w http.ResponseWriter, r *http.Request) {
	dups, err := h.svc.LoginDuplicates(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, dups)
}

// GroupsTree handles GET /api/v1/groups/tree.
func (h *BrowseHandler) GroupsTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.svc.GroupsTree(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, tree)
}

// GroupMembers handles GET /api/v1/groups/members?domain=&group=.
func (h *BrowseHandler) GroupMembers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	domain, group := q.Get("domain"), q.Get("group")
	if domain == "" || group == "" {
		badRequest(w, r, "domain and group are required")
		return
	}
	members, err := h.svc.GroupMembers(r.Context(), domain, group)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, members)
}

// OrgTree handles GET /api/v1/org/tree.
func (h *BrowseHandler) OrgTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.svc.OrgTree(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, tree)
}

// OrgMembers handles GET /api/v1/org/members?company=&department=.
// An empty filter matches every account.
func (h *BrowseHandler) OrgMembers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	members, err := h.svc.OrgMembers(r.Context(), q.Get("company"), q.Get("department"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, members)
}

// StructureTree handles GET /api/v1/structure/tree.
func (h *BrowseHandler) StructureTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.svc.StructureTree(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, tree)
}

// StructureMembers handles GET /api/v1/structure/members?domain=&path=.
func (h *BrowseHandler) StructureMembers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	domain := q.Get("domain")
	if domain == "" {
		badRequest(w, r, "domain is required")
		return
	}
	members, err := h.svc.StructureMembers(r.Context(), domain, q.Get("path"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, members)
}
