package dto

// HealthCheckRequest represents request for health check
type HealthCheckRequest struct{}

// HealthCheckResponse represents response for health check
type HealthCheckResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}
