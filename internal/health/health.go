// Package health provides health check endpoints.
package health

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/starquake/kuis/internal/httputil"
	"github.com/starquake/kuis/internal/store"
)

// HandleHealthz returns a handler that serves health check responses.
// Each store's storage is pinged; any failure reports 503.
func HandleHealthz(logger *slog.Logger, stores *store.Stores, version string) http.HandlerFunc {
	type healthStatus struct {
		Status  string            `json:"status"`
		Checks  map[string]string `json:"checks,omitempty"`
		Version string            `json:"version,omitempty"`
	}

	type pinger interface {
		Ping(ctx context.Context) error
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		httpStatus := http.StatusOK
		health := healthStatus{
			Status:  "ok",
			Checks:  make(map[string]string),
			Version: version,
		}

		checks := map[string]pinger{
			store.QuestionsDocument:   stores.Questions,
			store.LeaderboardDocument: stores.Leaderboard,
		}
		for name, p := range checks {
			if err := p.Ping(ctx); err != nil {
				health.Status = "degraded"
				health.Checks[name] = fmt.Sprintf("unhealthy: %v", err)
				httpStatus = http.StatusServiceUnavailable

				continue
			}
			health.Checks[name] = "healthy"
		}

		logger.DebugContext(ctx, "health check performed", slog.String("status", health.Status))
		if err := httputil.EncodeJSON(w, httpStatus, health); err != nil {
			logger.ErrorContext(ctx, "error encoding healthStatus", slog.Any("err", err))
		}
	}
}
