// Package store provides the application's data stores.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starquake/kuis/internal/category"
	"github.com/starquake/kuis/internal/document"
	"github.com/starquake/kuis/internal/leaderboard"
	"github.com/starquake/kuis/internal/quiz"
)

const (
	// QuestionsDocument is the document name of the question bank.
	QuestionsDocument = "questions"
	// LeaderboardDocument is the document name of the leaderboard.
	LeaderboardDocument = "leaderboard"
)

// Stores is a collection of stores for the application.
type Stores struct {
	Questions   quiz.Store
	Leaderboard leaderboard.Store
}

// New initializes a new Stores instance on top of the provided document storage.
// Both documents are keyed by the fixed category set.
func New(storage document.Storage, logger *slog.Logger) *Stores {
	return &Stores{
		Questions:   NewQuestionStore(storage, logger),
		Leaderboard: NewLeaderboardStore(storage, logger, time.Now),
	}
}

type initializer interface {
	Init(ctx context.Context) error
}

// Init creates the documents of every store that supports it, concurrently.
// Existing documents are left as they are.
func (s *Stores) Init(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, st := range []any{s.Questions, s.Leaderboard} {
		in, ok := st.(initializer)
		if !ok {
			continue
		}
		g.Go(func() error { return in.Init(gctx) })
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to initialize stores: %w", err)
	}

	return nil
}

func questionCollection(storage document.Storage) *document.Collection[quiz.Question] {
	return document.NewCollection[quiz.Question](storage, QuestionsDocument, category.All())
}

func leaderboardCollection(storage document.Storage) *document.Collection[leaderboard.Entry] {
	return document.NewCollection[leaderboard.Entry](storage, LeaderboardDocument, category.All())
}
