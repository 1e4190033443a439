package admin_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starquake/kuis/internal/admin"
	"github.com/starquake/kuis/internal/category"
	"github.com/starquake/kuis/internal/quiz"
)

type stubQuestionStore struct {
	createQuestion func(ctx context.Context, cat string, draft quiz.Question) (quiz.Question, error)
	deleteQuestion func(ctx context.Context, cat string, id int64) error
}

func (stubQuestionStore) Ping(context.Context) error { return nil }

func (stubQuestionStore) ListQuestions(context.Context, string) ([]quiz.Question, error) {
	panic("not implemented")
}

func (s stubQuestionStore) CreateQuestion(
	ctx context.Context,
	cat string,
	draft quiz.Question,
) (quiz.Question, error) {
	if s.createQuestion == nil {
		return quiz.Question{}, errors.New("createQuestion not supplied in stub")
	}

	return s.createQuestion(ctx, cat, draft)
}

func (s stubQuestionStore) DeleteQuestion(ctx context.Context, cat string, id int64) error {
	if s.deleteQuestion == nil {
		return errors.New("deleteQuestion not supplied in stub")
	}

	return s.deleteQuestion(ctx, cat, id)
}

func serve(t *testing.T, handler http.Handler, method, pattern, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	mux := http.NewServeMux()
	mux.Handle(method+" "+pattern, handler)

	req, err := http.NewRequestWithContext(t.Context(), method, target, strings.NewReader(body))
	if err != nil {
		t.Fatalf("http.NewRequest error: %v", err)
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	return rr
}

func TestHandleQuestionCreate(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.DiscardHandler)

	var gotCategory string
	var gotDraft quiz.Question
	store := stubQuestionStore{
		createQuestion: func(_ context.Context, cat string, draft quiz.Question) (quiz.Question, error) {
			gotCategory, gotDraft = cat, draft
			q := quiz.NewQuestion(draft.Fields, draft.Order...)
			q.ID = 3

			return q, nil
		},
	}

	rr := serve(t, admin.HandleQuestionCreate(logger, store),
		http.MethodPost, "/api/questions/{category}", "/api/questions/Fungsi",
		`{"id":99,"question":"f(x) = 2x, f(3)?","answer":"6"}`)

	if got, want := rr.Code, http.StatusOK; got != want {
		t.Fatalf("status code = %v, want %v", got, want)
	}
	if got, want := gotCategory, "Fungsi"; got != want {
		t.Errorf("category = %q, want %q", got, want)
	}
	wantFields := map[string]json.RawMessage{
		"question": json.RawMessage(`"f(x) = 2x, f(3)?"`),
		"answer":   json.RawMessage(`"6"`),
	}
	if diff := cmp.Diff(wantFields, gotDraft.Fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"question", "answer"}, gotDraft.Order); diff != "" {
		t.Errorf("field order mismatch (-want +got):\n%s", diff)
	}
	want := `{"success":true,"question":{"question":"f(x) = 2x, f(3)?","answer":"6","id":3}}`
	if got := strings.TrimSpace(rr.Body.String()); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestHandleQuestionCreate_ErrorHandling(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.DiscardHandler)

	tests := []struct {
		name       string
		body       string
		store      stubQuestionStore
		wantStatus int
		wantBody   string
	}{
		{
			name:       "malformed body",
			body:       `{"question":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "body is not an object",
			body:       `["a","b"]`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "null body",
			body:       `null`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"success":false,"message":"Question must be a JSON object"}`,
		},
		{
			name: "unknown category",
			body: `{"question":"?"}`,
			store: stubQuestionStore{
				createQuestion: func(_ context.Context, cat string, _ quiz.Question) (quiz.Question, error) {
					return quiz.Question{}, fmt.Errorf("%w: %q", category.ErrUnknown, cat)
				},
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"success":false,"message":"unknown category: \"Fungsi\""}`,
		},
		{
			name: "store error",
			body: `{"question":"?"}`,
			store: stubQuestionStore{
				createQuestion: func(context.Context, string, quiz.Question) (quiz.Question, error) {
					return quiz.Question{}, errors.New("disk full")
				},
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"success":false,"message":"disk full"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rr := serve(t, admin.HandleQuestionCreate(logger, tt.store),
				http.MethodPost, "/api/questions/{category}", "/api/questions/Fungsi", tt.body)
			if got, want := rr.Code, tt.wantStatus; got != want {
				t.Errorf("status code = %v, want %v", got, want)
			}
			if tt.wantBody != "" {
				if got := strings.TrimSpace(rr.Body.String()); got != tt.wantBody {
					t.Errorf("body = %q, want %q", got, tt.wantBody)
				}
			}
		})
	}
}

func TestHandleQuestionDelete(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.DiscardHandler)

	t.Run("delete question", func(t *testing.T) {
		t.Parallel()

		var gotCategory string
		var gotID int64
		store := stubQuestionStore{
			deleteQuestion: func(_ context.Context, cat string, id int64) error {
				gotCategory, gotID = cat, id

				return nil
			},
		}

		rr := serve(t, admin.HandleQuestionDelete(logger, store),
			http.MethodDelete, "/api/questions/{category}/{questionID}", "/api/questions/Aturan%20Pencacahan/2", "")
		if got, want := rr.Code, http.StatusOK; got != want {
			t.Fatalf("status code = %v, want %v", got, want)
		}
		if got, want := strings.TrimSpace(rr.Body.String()), `{"success":true}`; got != want {
			t.Errorf("body = %q, want %q", got, want)
		}
		if gotCategory != "Aturan Pencacahan" || gotID != 2 {
			t.Errorf("DeleteQuestion(%q, %d), want (%q, %d)", gotCategory, gotID, "Aturan Pencacahan", 2)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		t.Parallel()

		rr := serve(t, admin.HandleQuestionDelete(logger, stubQuestionStore{}),
			http.MethodDelete, "/api/questions/{category}/{questionID}", "/api/questions/Fungsi/two", "")
		if got, want := rr.Code, http.StatusBadRequest; got != want {
			t.Errorf("status code = %v, want %v", got, want)
		}
	})

	t.Run("unknown category", func(t *testing.T) {
		t.Parallel()

		store := stubQuestionStore{
			deleteQuestion: func(_ context.Context, cat string, _ int64) error {
				return fmt.Errorf("%w: %q", category.ErrUnknown, cat)
			},
		}

		rr := serve(t, admin.HandleQuestionDelete(logger, store),
			http.MethodDelete, "/api/questions/{category}/{questionID}", "/api/questions/Sejarah/1", "")
		if got, want := rr.Code, http.StatusBadRequest; got != want {
			t.Errorf("status code = %v, want %v", got, want)
		}
	})

	t.Run("store error", func(t *testing.T) {
		t.Parallel()

		rr := serve(t, admin.HandleQuestionDelete(logger, stubQuestionStore{}),
			http.MethodDelete, "/api/questions/{category}/{questionID}", "/api/questions/Fungsi/1", "")
		if got, want := rr.Code, http.StatusInternalServerError; got != want {
			t.Errorf("status code = %v, want %v", got, want)
		}
	})
}
