// Package cli implements kuisctl, the operator command line for the quiz server.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/starquake/kuis/internal/config"
	"github.com/starquake/kuis/internal/logging"
	"github.com/starquake/kuis/internal/store"
)

// Execute runs the CLI with args. Configuration comes from getenv, optionally overlaid by --config.
func Execute(ctx context.Context, args []string, getenv func(string) string, stdout, stderr io.Writer) error {
	cmd := newRootCmd(getenv)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		return fmt.Errorf("kuisctl: %w", err)
	}

	return nil
}

func newRootCmd(getenv func(string) string) *cobra.Command {
	var configPath string

	env := func(key string) string {
		if key == "CONFIG_FILE" && configPath != "" {
			return configPath
		}

		return getenv(key)
	}

	cmd := &cobra.Command{
		Use:           "kuisctl",
		Short:         "Manage the quiz question bank and leaderboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config (overrides CONFIG_FILE)")
	cmd.AddCommand(newInitCmd(env))
	cmd.AddCommand(newServeCmd(env))
	cmd.AddCommand(newMigrateCmd(env))
	cmd.AddCommand(newQuestionsCmd(env))
	cmd.AddCommand(newLeaderboardCmd(env))

	return cmd
}

// workspace is an opened backend with the stores on top of it.
type workspace struct {
	cfg     *config.Config
	logger  *slog.Logger
	backend *store.Backend
	stores  *store.Stores
}

func open(cmd *cobra.Command, getenv func(string) string) (*workspace, error) {
	cfg, err := config.Parse(getenv)
	if err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("error creating logger: %w", err)
	}

	backend, err := store.OpenBackend(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}

	return &workspace{
		cfg:     cfg,
		logger:  logger,
		backend: backend,
		stores:  store.New(backend.Storage, logger),
	}, nil
}

func (s *workspace) close() {
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing storage", logging.ErrAttr(err))
	}
}
