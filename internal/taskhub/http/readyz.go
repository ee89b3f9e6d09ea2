package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/taskhub/internal/taskhub/store"
	"github.com/aussiebroadwan/taskhub/pkg/httpx"
	"github.com/aussiebroadwan/taskhub/pkg/taskhubsdk"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe checking the database and any optional dependencies
//	@Description	(risk cache). Any failing check answers 503 with status "degraded".
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	taskhubsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	taskhubsdk.HealthResponse	"service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	extra map[string]ReadinessCheck,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{"database": "ok"}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks["database"] = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		for name, check := range extra {
			checks[name] = "ok"
			if err := check(r.Context()); err != nil {
				checks[name] = "error: " + err.Error()
				overallStatus = "degraded"
				statusCode = http.StatusServiceUnavailable
			}
		}

		httpx.WriteJSON(w, statusCode, taskhubsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
