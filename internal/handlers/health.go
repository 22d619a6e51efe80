package handlers

import (
	"net/http"
)

// HealthResponse represents the health check response structure.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HealthCheck handles GET /health
// Returns the server's health status for monitoring and load balancer checks.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Message: "roomline dev server is running",
	})
}
