package server

import (
	"context"
	"net/http"

	"github.com/go-sod/boss/internal/logging"
)

// HandleHealth reports the service as healthy until ctx is done.
func HandleHealth(ctx context.Context) http.Handler {
	logger := logging.FromContext(ctx)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if ctx.Err() != nil {
			logger.Debugf("health check after shutdown")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status": "shutting down"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status": "ok"}`))
	})
}
