// Package server contains everything related to the Server
package server

import (
	"log/slog"
	"net/http"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/json"

	"github.com/starquake/kuis/internal/auth"
	"github.com/starquake/kuis/internal/config"
	"github.com/starquake/kuis/internal/store"
)

// Version is reported by the health check.
var Version = "dev" //nolint:gochecknoglobals // Set with -ldflags at build time.

// NewServer creates a new server.
// In production JSON responses are minified.
func NewServer(logger *slog.Logger, cfg *config.Config, stores *store.Stores, gateway *auth.Gateway) http.Handler {
	mux := http.NewServeMux()
	AddRoutes(mux, logger, cfg, stores, gateway)

	var handler http.Handler = mux
	handler = gateway.Middleware(handler)
	if cfg.IsProduction() {
		m := minify.New()
		m.AddFunc("application/json", json.Minify)
		handler = m.Middleware(handler)
	}
	handler = logRequests(logger, handler)
	handler = requestID(handler)

	return handler
}
