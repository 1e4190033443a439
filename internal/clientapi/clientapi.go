// Package clientapi provides HTTP handlers for the API used by the quiz pages.
package clientapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/starquake/kuis/internal/auth"
	"github.com/starquake/kuis/internal/category"
	"github.com/starquake/kuis/internal/httputil"
	"github.com/starquake/kuis/internal/leaderboard"
	"github.com/starquake/kuis/internal/quiz"
)

// HandleCategoryList returns the fixed list of categories.
func HandleCategoryList(logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := httputil.EncodeJSON(w, http.StatusOK, category.All()); err != nil {
			logger.ErrorContext(r.Context(), "error encoding categories", slog.Any("err", err))
		}
	})
}

// HandleQuestionList returns the questions of a category. An unknown category returns an empty list.
func HandleQuestionList(logger *slog.Logger, questionStore quiz.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cat := r.PathValue("category")

		questions, err := questionStore.ListQuestions(r.Context(), cat)
		if err != nil {
			logger.ErrorContext(r.Context(), "error retrieving questions from store", slog.Any("err", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)

			return
		}

		if err = httputil.EncodeJSON(w, http.StatusOK, questions); err != nil {
			logger.ErrorContext(r.Context(), "error encoding questions", slog.Any("err", err))
		}
	})
}

// HandleLeaderboard returns the leaderboard of a category, best score first.
func HandleLeaderboard(logger *slog.Logger, leaderboardStore leaderboard.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cat := r.PathValue("category")

		entries, err := leaderboardStore.ListEntries(r.Context(), cat)
		if err != nil {
			logger.ErrorContext(r.Context(), "error retrieving leaderboard from store", slog.Any("err", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)

			return
		}

		if err = httputil.EncodeJSON(w, http.StatusOK, entries); err != nil {
			logger.ErrorContext(r.Context(), "error encoding leaderboard", slog.Any("err", err))
		}
	})
}

// HandleLeaderboardAll returns the leaderboards of every category keyed by category.
func HandleLeaderboardAll(logger *slog.Logger, leaderboardStore leaderboard.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		all, err := leaderboardStore.ListAll(r.Context())
		if err != nil {
			logger.ErrorContext(r.Context(), "error retrieving leaderboards from store", slog.Any("err", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)

			return
		}

		if err = httputil.EncodeJSON(w, http.StatusOK, all); err != nil {
			logger.ErrorContext(r.Context(), "error encoding leaderboards", slog.Any("err", err))
		}
	})
}

// HandleScoreSubmit records a score on the leaderboard of a category.
// A name in the body is stored as sent, empty or not. Without one the logged in name is used.
// Returns 200 with {"success":true} once the score is ranked.
// Returns 400 if the body is malformed, the score is missing, or the category is unknown.
// Returns 500 if the leaderboard cannot be saved.
func HandleScoreSubmit(logger *slog.Logger, leaderboardStore leaderboard.Store) http.Handler {
	type scoreRequest struct {
		Name  *string  `json:"name"`
		Score *float64 `json:"score"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		cat := r.PathValue("category")

		req, err := httputil.DecodeJSON[scoreRequest](r)
		if err != nil {
			logger.ErrorContext(ctx, "error decoding scoreRequest", slog.Any("err", err))
			httputil.Fail(w, r, logger, http.StatusBadRequest, err.Error())

			return
		}

		var name string
		if req.Name != nil {
			name = *req.Name
		} else if s, ok := auth.FromContext(ctx); ok {
			name = s.Name
		}
		if req.Score == nil {
			httputil.Fail(w, r, logger, http.StatusBadRequest, "score is required")

			return
		}

		if _, err = leaderboardStore.SubmitScore(ctx, cat, name, *req.Score); err != nil {
			if errors.Is(err, category.ErrUnknown) {
				httputil.Fail(w, r, logger, http.StatusBadRequest, err.Error())

				return
			}
			logger.ErrorContext(ctx, "error submitting score", slog.Any("err", err))
			httputil.Fail(w, r, logger, http.StatusInternalServerError, err.Error())

			return
		}

		httputil.OK(w, r, logger)
	})
}
