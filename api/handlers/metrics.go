package handlers

import (
	"net/http"
	"strconv"

	"github.com/linesmerrill/rider-safety-api/api"
	"github.com/linesmerrill/rider-safety-api/moderation"
)

// Metrics exported for testing purposes
type Metrics struct {
	Collector *api.MetricsCollector
}

// formatRouteMetrics converts duration fields to milliseconds for JSON serialization
func formatRouteMetrics(routes []api.RouteMetrics) []map[string]interface{} {
	result := make([]map[string]interface{}, len(routes))
	for i, route := range routes {
		result[i] = map[string]interface{}{
			"method":      route.Method,
			"path":        route.Path,
			"count":       route.Count,
			"errorCount":  route.ErrorCount,
			"avgTime":     route.AvgTime.Milliseconds(),
			"maxTime":     route.MaxTime.Milliseconds(),
			"lastRequest": route.LastRequest,
		}
	}
	return result
}

// MetricsHandler returns per-route timings, slowest first. limit caps the
// number of routes returned.
func (m Metrics) MetricsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity(w, r)
	if !ok {
		return
	}
	if !actor.IsModerator() {
		writeServiceError("", w, moderation.ErrNotAuthorized)
		return
	}

	routes := m.Collector.Routes()
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 && limit < len(routes) {
		routes = routes[:limit]
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"routes": formatRouteMetrics(routes),
		"count":  len(routes),
	})
}
