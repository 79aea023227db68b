package handlers

import (
	"net/http"
)

// GetDashboardMetricsHandler godoc
// @Summary Catalog dashboard metrics
// @Tags metrics
// @Produce json
// @Success 200 {object} MetricsEnvelope
// @Failure 500 {object} ErrorEnvelope
// @Router /api/metrics/dashboard [get]
func GetDashboardMetricsHandler(w http.ResponseWriter, r *http.Request) {
	m, err := metricsRepo.GetDashboardMetrics(r.Context())
	if err != nil {
		respondInternal(w, r, err, "dashboard metrics")
		return
	}
	respond(w, r, http.StatusOK, Envelope{
		Status:  true,
		Message: "Métricas do catálogo",
		Data:    m,
	})
}
