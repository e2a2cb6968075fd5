package apiclient

import (
	"io"

	"github.com/marmos91/idrecon/pkg/export"
	"github.com/marmos91/idrecon/pkg/recon/audit"
	"github.com/marmos91/idrecon/pkg/recon/model"
	"github.com/marmos91/idrecon/pkg/reconciler"
	"github.com/marmos91/idrecon/pkg/store"
)

// Stats returns record counts and the last upload per source.
func (c *Client) Stats() (*store.Stats, error) {
	return getResource[store.Stats](c, "/api/v1/stats")
}

// Domains lists the configured directory domains.
func (c *Client) Domains() ([]reconciler.Domain, error) {
	return listResources[reconciler.Domain](c, "/api/v1/domains")
}

// Consolidated returns the reconciliation table.
func (c *Client) Consolidated() ([]model.ConsolidatedRow, error) {
	return listResources[model.ConsolidatedRow](c, "/api/v1/consolidated")
}

// ExportConsolidated writes the reconciliation table in format ("xlsx" or
// "csv") to w and returns the filename suggested by the server.
func (c *Client) ExportConsolidated(format string, w io.Writer) (string, error) {
	return c.download(withQuery("/api/v1/consolidated", map[string]string{"format": format}), w)
}

// ArchiveConsolidated asks the server to store the reconciliation table in
// its report bucket.
func (c *Client) ArchiveConsolidated(format string) (*export.ArchivedReport, error) {
	var report export.ArchivedReport
	path := withQuery("/api/v1/consolidated/archive", map[string]string{"format": format})
	if err := c.post(path, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Identities lists identity summaries.
func (c *Client) Identities() ([]model.IdentitySummary, error) {
	return listResources[model.IdentitySummary](c, "/api/v1/identities")
}

// Identity returns the card for key. An unknown key yields an empty card.
func (c *Client) Identity(key string) (*model.IdentityCard, error) {
	return getResource[model.IdentityCard](c, resourcePath("/api/v1/identities/%s", key))
}

// IdentityDuplicates returns weak matches for key.
func (c *Client) IdentityDuplicates(key string) ([]model.DuplicateMatch, error) {
	return listResources[model.DuplicateMatch](c, resourcePath("/api/v1/identities/%s/duplicates", key))
}

// SecurityFindings runs the security audit.
func (c *Client) SecurityFindings() (*audit.Report, error) {
	return getResource[audit.Report](c, "/api/v1/security/findings")
}

// Sync pulls domain from its LDAP server.
func (c *Client) Sync(domain string) (*reconciler.SyncResult, error) {
	var result reconciler.SyncResult
	if err := c.post(resourcePath("/api/v1/sync/%s", domain), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
