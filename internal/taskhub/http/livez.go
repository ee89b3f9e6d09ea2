package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/taskhub/pkg/httpx"
	"github.com/aussiebroadwan/taskhub/pkg/taskhubsdk"
)

// LivezHandler godoc
//
//	@Summary		Health Check Endpoint
//	@Description	Liveness probe returning status, uptime and version.
//	@Description	Always 200 OK while the process is serving.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	taskhubsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, taskhubsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}
