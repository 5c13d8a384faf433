package handlers

import (
	"net/http"
)

// MonitoringHandler exposes the live affect read for the learner's
// current activity.
type MonitoringHandler struct {
	registry *Registry
}

// NewMonitoringHandler creates a new monitoring handler
func NewMonitoringHandler(registry *Registry) *MonitoringHandler {
	return &MonitoringHandler{registry: registry}
}

// ResetMonitoring zeroes the monitoring stats at an activity boundary.
func (h *MonitoringHandler) ResetMonitoring(w http.ResponseWriter, r *http.Request) {
	learnerID := LearnerFromContext(r.Context())

	device := h.registry.Session(learnerID)
	device.monitor.ResetSession()

	respondWithJSON(w, http.StatusOK, newMonitoringView(device.monitor))
}

// GetMonitoring returns the current engagement and frustration read.
func (h *MonitoringHandler) GetMonitoring(w http.ResponseWriter, r *http.Request) {
	learnerID := LearnerFromContext(r.Context())

	device := h.registry.Session(learnerID)
	respondWithJSON(w, http.StatusOK, newMonitoringView(device.monitor))
}
