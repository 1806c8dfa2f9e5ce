// Package health serves the ops liveness probe
package health

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"Zodbot/internal/api/handlers"
)

// pingTimeout bounds the database check so a stuck pool fails the probe
const pingTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler reports 200 when the database answers and 503 otherwise
// GET /health
func Handler(db Pinger, logger *zap.Logger) http.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			logger.Warn("health check failed", zap.Error(err))
			handlers.WriteError(w, http.StatusServiceUnavailable, "DatabaseUnavailable", "database ping failed")
			return
		}
		handlers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
