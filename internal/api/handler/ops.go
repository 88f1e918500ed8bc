// Package handler provides HTTP handlers for the SpareHour API.
package handler

import (
	"net/http"
	"time"

	"github.com/sparehour/sparehour/internal/api/models"
	"github.com/sparehour/sparehour/internal/api/response"
	"github.com/sparehour/sparehour/internal/provider/resilience"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
}

// NewOpsHandler creates a new OpsHandler. The registry may be nil when
// no provider clients are configured.
func NewOpsHandler(version, buildTime string, registry *resilience.Registry) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		registry:  registry,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. The
// service is ready as soon as it can serve fallback recommendations,
// so readiness never depends on provider health.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - provider health from the
// resilience registry. Degraded when any circuit is open.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	now := models.Timestamp(time.Now())
	status := models.SystemStatus{
		Status: models.HealthStatusOK,
		Time:   now,
	}

	if h.registry != nil {
		for _, ph := range h.registry.AllHealth() {
			providerStatus := models.HealthStatusOK
			if !ph.IsHealthy() {
				providerStatus = models.HealthStatusDegraded
				status.Status = models.HealthStatusDegraded
			}

			ps := models.ProviderStatus{
				Provider:     ph.Name,
				Status:       providerStatus,
				CircuitState: ph.CircuitState.String(),
				LastError:    ph.LastError,
			}
			if ph.LastSuccessAt != nil {
				ts := models.Timestamp(*ph.LastSuccessAt)
				ps.LastSuccessAt = &ts
			}
			if ph.LastFailureAt != nil {
				ts := models.Timestamp(*ph.LastFailureAt)
				ps.LastFailureAt = &ts
			}
			status.Providers = append(status.Providers, ps)
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}
