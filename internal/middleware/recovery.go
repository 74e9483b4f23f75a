package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/justuscbyok/fitnesstracker/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
)

// PanicRecovery converts a handler panic into a 500 response instead of
// tearing the connection down.
func PanicRecovery(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Errorf("http: panic serving %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
					if metricsManager != nil {
						metricsManager.CounterHandleRequestPanic.Inc()
					}
					http.Error(w, "internal server error", http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
