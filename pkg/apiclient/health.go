package apiclient

import "time"

// HealthStatus is the body of the health endpoints.
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Data      map[string]string `json:"data,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// Ready queries the readiness endpoint. An unreachable store is reported as an
// *APIError with status 503.
func (c *Client) Ready() (*HealthStatus, error) {
	return getResource[HealthStatus](c, "/health/ready")
}
