// Package app contains the main entrypoint for the server.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/starquake/kuis/internal/auth"
	"github.com/starquake/kuis/internal/config"
	"github.com/starquake/kuis/internal/logging"
	"github.com/starquake/kuis/internal/server"
	"github.com/starquake/kuis/internal/store"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Run parses the config, opens the configured storage, creates both documents if needed, and serves HTTP until ctx
// is canceled or an interrupt arrives. When ln is nil, Run listens on HOST:PORT itself.
func Run(
	ctx context.Context,
	getenv func(string) string,
	stdout io.Writer,
	ln net.Listener,
) error {
	var err error
	mainCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	var cfg *config.Config
	if cfg, err = config.Parse(getenv); err != nil {
		return fmt.Errorf("error parsing config: %w", err)
	}

	var logger *slog.Logger
	if logger, err = logging.New(stdout, cfg.LogLevel, cfg.LogFormat); err != nil {
		return fmt.Errorf("error creating logger: %w", err)
	}

	backend, err := store.OpenBackend(ctx, cfg)
	if err != nil {
		msg := "error opening storage"
		logger.ErrorContext(ctx, msg, logging.ErrAttr(err))

		return fmt.Errorf("%s: %w", msg, err)
	}
	defer func() {
		if closeErr := backend.Close(); closeErr != nil {
			logger.ErrorContext(ctx, "error closing storage", logging.ErrAttr(closeErr))
		}
	}()

	stores := store.New(backend.Storage, logger)
	if err = stores.Init(ctx); err != nil {
		msg := "error initializing documents"
		logger.ErrorContext(ctx, msg, logging.ErrAttr(err))

		return fmt.Errorf("%s: %w", msg, err)
	}

	gateway := auth.NewGateway(
		logger,
		auth.Codes{Admin: cfg.AdminCodes, User: cfg.UserCodes},
		NewSessions(cfg, backend),
		cfg.SessionCookie,
		cfg.SessionTTL,
		cfg.IsProduction(),
	)

	srv := server.NewServer(logger, cfg, stores, gateway)

	if ln == nil {
		listenConfig := &net.ListenConfig{}
		ln, err = listenConfig.Listen(mainCtx, "tcp", net.JoinHostPort(cfg.Host, cfg.Port))
		if err != nil {
			return fmt.Errorf("error listening on %s:%s: %w", cfg.Host, cfg.Port, err)
		}
	}

	httpServer := &http.Server{
		ReadHeaderTimeout: readHeaderTimeout,
		Handler:           srv,
	}
	go func() {
		logger.InfoContext(
			ctx,
			"listening on "+ln.Addr().String(),
			slog.String("addr", ln.Addr().String()),
			slog.String("storage", cfg.StorageDriver),
			slog.String("sessions", cfg.SessionDriver),
		)
		logger.InfoContext(ctx, fmt.Sprintf("visit http://%s/client/ to play", ln.Addr().String()))
		httpErr := httpServer.Serve(ln)
		if httpErr != nil && !errors.Is(httpErr, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "error listening and serving", logging.ErrAttr(httpErr))
		}
	}()
	var wg sync.WaitGroup
	wg.Go(func() {
		<-mainCtx.Done()
		// make a new context for the Shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer shutdownCancel()
		if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.ErrorContext(shutdownCtx, "error shutting down server", logging.ErrAttr(shutdownErr))
		}
	})
	wg.Wait()

	return nil
}

// NewSessions returns the session store selected by cfg.SessionDriver.
func NewSessions(cfg *config.Config, backend *store.Backend) auth.SessionStore {
	if cfg.SessionDriver == config.SessionDriverRedis && backend.Redis != nil {
		return auth.NewRedisSessions(backend.Redis, cfg.RedisPrefix)
	}

	return auth.NewMemorySessions(time.Now)
}
