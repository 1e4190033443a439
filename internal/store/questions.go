package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starquake/kuis/internal/category"
	"github.com/starquake/kuis/internal/document"
	"github.com/starquake/kuis/internal/quiz"
)

// QuestionStore keeps the question bank in a single document.
type QuestionStore struct {
	c      *document.Collection[quiz.Question]
	logger *slog.Logger
}

// NewQuestionStore initializes a new QuestionStore on the provided storage and returns it.
func NewQuestionStore(storage document.Storage, logger *slog.Logger) *QuestionStore {
	return &QuestionStore{c: questionCollection(storage), logger: logger}
}

// Init creates the question document if it does not exist yet.
func (s *QuestionStore) Init(ctx context.Context) error {
	if err := s.c.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize questions: %w", err)
	}

	return nil
}

// Ping checks the backing storage.
func (s *QuestionStore) Ping(ctx context.Context) error {
	return s.c.Ping(ctx)
}

// ListQuestions returns the questions of a category. An unknown category has no questions.
func (s *QuestionStore) ListQuestions(ctx context.Context, cat string) ([]quiz.Question, error) {
	doc, err := s.c.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions for %q: %w", cat, err)
	}

	questions, ok := doc[cat]
	if !ok {
		return []quiz.Question{}, nil
	}

	return questions, nil
}

// CreateQuestion appends a question with the fields of draft to a category, keeping their order.
// Its ID is the category's question count plus one.
func (s *QuestionStore) CreateQuestion(
	ctx context.Context,
	cat string,
	draft quiz.Question,
) (quiz.Question, error) {
	q := quiz.NewQuestion(draft.Fields, draft.Order...)

	err := s.c.Update(ctx, func(doc map[string][]quiz.Question) error {
		questions, ok := doc[cat]
		if !ok {
			return fmt.Errorf("%w: %q", category.ErrUnknown, cat)
		}

		q.ID = quiz.NextID(questions)
		doc[cat] = append(questions, q)

		return nil
	})
	if err != nil {
		return quiz.Question{}, fmt.Errorf("failed to create question: %w", err)
	}

	s.logger.DebugContext(ctx, "question created", slog.String("category", cat), slog.Int64("id", q.ID))

	return q, nil
}

// DeleteQuestion removes every question with the given ID from a category.
// The document is rewritten even when nothing matched.
func (s *QuestionStore) DeleteQuestion(ctx context.Context, cat string, id int64) error {
	var removed int
	err := s.c.Update(ctx, func(doc map[string][]quiz.Question) error {
		questions, ok := doc[cat]
		if !ok {
			return fmt.Errorf("%w: %q", category.ErrUnknown, cat)
		}

		kept := quiz.Without(questions, id)
		removed = len(questions) - len(kept)
		doc[cat] = kept

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete question %d: %w", id, err)
	}

	s.logger.DebugContext(
		ctx,
		"question deleted",
		slog.String("category", cat),
		slog.Int64("id", id),
		slog.Int("removed", removed),
	)

	return nil
}
