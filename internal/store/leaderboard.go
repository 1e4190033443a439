package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/starquake/kuis/internal/category"
	"github.com/starquake/kuis/internal/document"
	"github.com/starquake/kuis/internal/leaderboard"
)

// LeaderboardStore keeps the per-category top scores in a single document.
type LeaderboardStore struct {
	c      *document.Collection[leaderboard.Entry]
	logger *slog.Logger
	now    func() time.Time
}

// NewLeaderboardStore initializes a new LeaderboardStore. now dates submitted entries.
func NewLeaderboardStore(storage document.Storage, logger *slog.Logger, now func() time.Time) *LeaderboardStore {
	return &LeaderboardStore{c: leaderboardCollection(storage), logger: logger, now: now}
}

// Init creates the leaderboard document if it does not exist yet.
func (s *LeaderboardStore) Init(ctx context.Context) error {
	if err := s.c.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize leaderboard: %w", err)
	}

	return nil
}

// Ping checks the backing storage.
func (s *LeaderboardStore) Ping(ctx context.Context) error {
	return s.c.Ping(ctx)
}

// ListEntries returns the ranked entries of a category. An unknown category has no entries.
func (s *LeaderboardStore) ListEntries(ctx context.Context, cat string) ([]leaderboard.Entry, error) {
	doc, err := s.c.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list leaderboard for %q: %w", cat, err)
	}

	entries, ok := doc[cat]
	if !ok {
		return []leaderboard.Entry{}, nil
	}

	return entries, nil
}

// ListAll returns the whole leaderboard document.
func (s *LeaderboardStore) ListAll(ctx context.Context) (map[string][]leaderboard.Entry, error) {
	doc, err := s.c.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list leaderboard: %w", err)
	}

	return doc, nil
}

// SubmitScore adds a score to a category and keeps only the top leaderboard.Limit entries.
func (s *LeaderboardStore) SubmitScore(
	ctx context.Context,
	cat, name string,
	score float64,
) (leaderboard.Entry, error) {
	e := leaderboard.Entry{
		Name:  name,
		Score: score,
		Date:  s.now().Format(leaderboard.DateLayout),
	}

	err := s.c.Update(ctx, func(doc map[string][]leaderboard.Entry) error {
		entries, ok := doc[cat]
		if !ok {
			return fmt.Errorf("%w: %q", category.ErrUnknown, cat)
		}

		doc[cat] = leaderboard.Rank(entries, e)

		return nil
	})
	if err != nil {
		return leaderboard.Entry{}, fmt.Errorf("failed to submit score: %w", err)
	}

	s.logger.DebugContext(ctx, "score submitted", slog.String("category", cat), slog.Float64("score", score))

	return e, nil
}
