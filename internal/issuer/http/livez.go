package http

import (
	"net/http"
	"time"

	"github.com/quolldev/grantd/pkg/httpx"
)

// HealthResponse is the body of the health probe endpoints.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the status of critical dependencies.
type HealthChecks struct {
	Database string `json:"database"`
}

// LivezHandler is the liveness probe. It returns 200 whenever the
// process is up.
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}
