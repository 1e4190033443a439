// Package admin contains the handlers that manage the question bank. Routes using them are
// wrapped with auth.RequireRole so only admins reach them.
package admin

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/starquake/kuis/internal/category"
	"github.com/starquake/kuis/internal/httputil"
	"github.com/starquake/kuis/internal/quiz"
)

// HandleQuestionCreate appends the question in the request body to a category.
// The body is an arbitrary JSON object; a supplied "id" is replaced by the assigned one.
// Returns 200 with {"success":true,"question":{...}}.
// Returns 400 if the body is not a JSON object or the category is unknown.
// Returns 500 if the question bank cannot be saved.
func HandleQuestionCreate(logger *slog.Logger, questionStore quiz.Store) http.Handler {
	type createQuestionResponse struct {
		Success  bool          `json:"success"`
		Question quiz.Question `json:"question"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		cat := r.PathValue("category")

		draft, err := httputil.DecodeJSON[quiz.Question](r)
		if err != nil {
			logger.ErrorContext(ctx, "error decoding question", slog.Any("err", err))
			httputil.Fail(w, r, logger, http.StatusBadRequest, err.Error())

			return
		}
		if problems := draft.Valid(ctx); len(problems) > 0 {
			logger.InfoContext(ctx, "invalid question", slog.Any("problems", problems))
			httputil.Fail(w, r, logger, http.StatusBadRequest, problems["body"])

			return
		}

		q, err := questionStore.CreateQuestion(ctx, cat, draft)
		if err != nil {
			if errors.Is(err, category.ErrUnknown) {
				httputil.Fail(w, r, logger, http.StatusBadRequest, err.Error())

				return
			}
			logger.ErrorContext(ctx, "error creating question", slog.Any("err", err))
			httputil.Fail(w, r, logger, http.StatusInternalServerError, err.Error())

			return
		}

		if err = httputil.EncodeJSON(w, http.StatusOK, createQuestionResponse{Success: true, Question: q}); err != nil {
			logger.ErrorContext(ctx, "error encoding createQuestionResponse", slog.Any("err", err))
		}
	})
}

// HandleQuestionDelete removes every question of a category carrying the ID in the path.
// Deleting an ID that does not exist still succeeds.
// Returns 400 if the ID is not an integer or the category is unknown.
func HandleQuestionDelete(logger *slog.Logger, questionStore quiz.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		cat := r.PathValue("category")

		id, ok := httputil.ParseIDFromPath(w, r, logger, "questionID")
		if !ok {
			return
		}

		if err := questionStore.DeleteQuestion(ctx, cat, id); err != nil {
			if errors.Is(err, category.ErrUnknown) {
				httputil.Fail(w, r, logger, http.StatusBadRequest, err.Error())

				return
			}
			logger.ErrorContext(ctx, "error deleting question", slog.Any("err", err), slog.Int64("id", id))
			httputil.Fail(w, r, logger, http.StatusInternalServerError, err.Error())

			return
		}

		httputil.OK(w, r, logger)
	})
}
