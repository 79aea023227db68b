package handlers

import (
	"net/http"
)

// HealthHandler godoc
// @Summary Liveness and dependency check
// @Tags health
// @Produce json
// @Success 200 {object} HealthEnvelope
// @Failure 503 {object} HealthEnvelope
// @Router /healthz [get]
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"storage": "ok", "cache": "disabled"}
	healthy := true

	if err := productService.Ping(r.Context()); err != nil {
		checks["storage"] = err.Error()
		healthy = false
	}
	if redisService != nil {
		checks["cache"] = "ok"
		if err := redisService.Ping(r.Context()); err != nil {
			// The cache is optional; report it without failing the check.
			checks["cache"] = err.Error()
		}
	}

	status, message := http.StatusOK, "ok"
	if !healthy {
		status, message = http.StatusServiceUnavailable, "indisponível"
	}
	respond(w, r, status, Envelope{Status: healthy, Message: message, Data: checks})
}
