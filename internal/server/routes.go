package server

import (
	"log/slog"
	"net/http"

	"github.com/starquake/kuis/internal/admin"
	"github.com/starquake/kuis/internal/auth"
	"github.com/starquake/kuis/internal/client"
	"github.com/starquake/kuis/internal/clientapi"
	"github.com/starquake/kuis/internal/config"
	"github.com/starquake/kuis/internal/health"
	"github.com/starquake/kuis/internal/store"
)

// AddRoutes registers every route on mux.
func AddRoutes(
	mux *http.ServeMux,
	logger *slog.Logger,
	cfg *config.Config,
	stores *store.Stores,
	gateway *auth.Gateway,
) {
	adminOnly := func(h http.Handler) http.Handler {
		return auth.RequireRole(logger, auth.RoleAdmin, h)
	}

	mux.Handle("GET /healthz", health.HandleHealthz(logger, stores, Version))

	mux.Handle("POST /login", gateway.HandleLogin())
	mux.Handle("POST /logout", gateway.HandleLogout())
	mux.Handle("GET /logout", gateway.HandleLogout())
	mux.Handle("GET /api/session", gateway.HandleSession())

	mux.Handle("GET /api/categories", clientapi.HandleCategoryList(logger))

	mux.Handle("GET /api/questions/{category}", clientapi.HandleQuestionList(logger, stores.Questions))
	mux.Handle("POST /api/questions/{category}", adminOnly(admin.HandleQuestionCreate(logger, stores.Questions)))
	mux.Handle(
		"DELETE /api/questions/{category}/{questionID}",
		adminOnly(admin.HandleQuestionDelete(logger, stores.Questions)),
	)

	mux.Handle("GET /api/leaderboard/all", clientapi.HandleLeaderboardAll(logger, stores.Leaderboard))
	mux.Handle("GET /api/leaderboard/{category}", clientapi.HandleLeaderboard(logger, stores.Leaderboard))
	mux.Handle("POST /api/leaderboard/{category}", clientapi.HandleScoreSubmit(logger, stores.Leaderboard))

	mux.Handle("GET /client/", client.Handler(cfg))
	mux.Handle("GET /{$}", http.RedirectHandler("/client/", http.StatusFound))
}
