package apiclient

import (
	"io"

	"github.com/marmos91/idrecon/pkg/reconciler"
)

// UploadDirectory replaces the accounts of domain with an AD export. An
// empty dnSuffix uses the domain's configured suffix.
func (c *Client) UploadDirectory(domain, dnSuffix, filename string, r io.Reader) (*reconciler.ImportResult, error) {
	path := withQuery("/api/v1/upload/directory", map[string]string{"domain": domain, "dn_suffix": dnSuffix})
	return uploadResource(c, path, filename, r)
}

// UploadMFA replaces the MFA enrollments.
func (c *Client) UploadMFA(filename string, r io.Reader) (*reconciler.ImportResult, error) {
	return uploadResource(c, "/api/v1/upload/mfa", filename, r)
}

// UploadHR replaces the HR roster.
func (c *Client) UploadHR(filename string, r io.Reader) (*reconciler.ImportResult, error) {
	return uploadResource(c, "/api/v1/upload/hr", filename, r)
}

func uploadResource(c *Client, path, filename string, r io.Reader) (*reconciler.ImportResult, error) {
	var result reconciler.ImportResult
	if err := c.upload(path, filename, r, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
