package http

import (
	"net/http"
	"time"

	"github.com/quolldev/grantd/internal/issuer/store"
	"github.com/quolldev/grantd/pkg/httpx"
)

// ReadyzHandler is the readiness probe. It checks the durable store, the
// only dependency that gates issuance; the cache and the notification
// sink are best effort and never block readiness.
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &HealthChecks{Database: "ok"}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
