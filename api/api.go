package api

import (
	"encoding/json"
	"net/http"

	"github.com/linesmerrill/rider-safety-api/models"
)

// HealthCheckHandler reports liveness
func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(models.HealthCheckResponse{Alive: true})
}
