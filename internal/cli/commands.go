package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/starquake/kuis/cmd/server/app"
	"github.com/starquake/kuis/internal/category"
	"github.com/starquake/kuis/internal/config"
	"github.com/starquake/kuis/internal/database"
	"github.com/starquake/kuis/internal/leaderboard"
)

func newInitCmd(getenv func(string) string) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the question and leaderboard documents if they do not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd, getenv)
			if err != nil {
				return err
			}
			defer s.close()

			if err = s.stores.Init(cmd.Context()); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "documents ready (%s storage)\n", s.cfg.StorageDriver)

			return err
		},
	}
}

func newServeCmd(getenv func(string) string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), getenv, cmd.OutOrStdout(), nil)
		},
	}
}

func newMigrateCmd(getenv func(string) string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the sqlite migrations to DB_URI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := config.Parse(getenv)
			if err != nil {
				return fmt.Errorf("error parsing config: %w", err)
			}

			conn, err := database.Open(
				ctx,
				cfg.DBDriver,
				cfg.DBURI,
				cfg.DBMaxOpenConns,
				cfg.DBMaxIdleConns,
				cfg.DBConnMaxLifetime,
			)
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()

			database.SetupGoose()
			if err = database.Migrate(ctx, conn); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")

			return err
		},
	}
}

func newQuestionsCmd(getenv func(string) string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Inspect the question bank",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list CATEGORY",
		Short: "Print the questions of a category as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd, getenv)
			if err != nil {
				return err
			}
			defer s.close()

			questions, err := s.stores.Questions.ListQuestions(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			if err = enc.Encode(questions); err != nil {
				return fmt.Errorf("error encoding questions: %w", err)
			}

			return nil
		},
	})

	return cmd
}

func newLeaderboardCmd(getenv func(string) string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Inspect the leaderboard",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show [CATEGORY]",
		Short: "Print the leaderboard of one category, or of every category",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd, getenv)
			if err != nil {
				return err
			}
			defer s.close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				entries, err := s.stores.Leaderboard.ListEntries(ctx, args[0])
				if err != nil {
					return err
				}

				return printEntries(out, entries)
			}

			all, err := s.stores.Leaderboard.ListAll(ctx)
			if err != nil {
				return err
			}
			for i, cat := range category.All() {
				if i > 0 {
					if _, err = fmt.Fprintln(out); err != nil {
						return err
					}
				}
				if _, err = fmt.Fprintf(out, "== %s ==\n", cat); err != nil {
					return err
				}
				if err = printEntries(out, all[cat]); err != nil {
					return err
				}
			}

			return nil
		},
	})

	return cmd
}

func printEntries(w io.Writer, entries []leaderboard.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "(no scores)")

		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "#\tNAME\tSCORE\tDATE"); err != nil {
		return err
	}
	for i, e := range entries {
		score := strconv.FormatFloat(e.Score, 'f', -1, 64)
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, e.Name, score, e.Date); err != nil {
			return err
		}
	}

	return tw.Flush()
}
