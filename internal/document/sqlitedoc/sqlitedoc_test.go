package sqlitedoc_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starquake/kuis/internal/dbtest"
	"github.com/starquake/kuis/internal/document"
	"github.com/starquake/kuis/internal/document/sqlitedoc"
)

func TestStorage(t *testing.T) {
	t.Parallel()

	t.Run("get missing", func(t *testing.T) {
		t.Parallel()

		s := sqlitedoc.New(dbtest.Open(t))

		_, err := s.Get(t.Context(), "questions")
		if !errors.Is(err, document.ErrNotExist) {
			t.Fatalf("got %v, want %v", err, document.ErrNotExist)
		}
	})

	t.Run("put then overwrite", func(t *testing.T) {
		t.Parallel()

		db := dbtest.Open(t)
		s := sqlitedoc.New(db)

		for _, body := range []string{`{"Fungsi":[]}`, `{"Fungsi":[{"id":1}]}`} {
			if err := s.Put(t.Context(), "questions", []byte(body)); err != nil {
				t.Fatalf("Put: %v", err)
			}
		}

		got, err := s.Get(t.Context(), "questions")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if diff := cmp.Diff(`{"Fungsi":[{"id":1}]}`, string(got)); diff != "" {
			t.Errorf("body mismatch (-want +got):\n%s", diff)
		}

		if rows := dbtest.CountDocuments(t, db); rows != 1 {
			t.Errorf("got %d rows, want 1", rows)
		}
	})

	t.Run("collection on sqlite", func(t *testing.T) {
		t.Parallel()

		c := document.NewCollection[int](sqlitedoc.New(dbtest.Open(t)), "numbers", []string{"a", "b"})
		if err := c.Init(t.Context()); err != nil {
			t.Fatalf("Init: %v", err)
		}
		err := c.Update(t.Context(), func(doc map[string][]int) error {
			doc["a"] = append(doc["a"], 1, 2)

			return nil
		})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}

		doc, err := c.Load(t.Context())
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if diff := cmp.Diff(map[string][]int{"a": {1, 2}, "b": {}}, doc); diff != "" {
			t.Errorf("document mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("unmigrated database", func(t *testing.T) {
		t.Parallel()

		s := sqlitedoc.New(dbtest.OpenUnmigrated(t))
		if _, err := s.Get(t.Context(), "questions"); err == nil || errors.Is(err, document.ErrNotExist) {
			t.Errorf("got %v, want a query error", err)
		}
		if err := s.Put(t.Context(), "questions", []byte("{}")); err == nil {
			t.Error("expected error, got nil")
		}
		if err := s.Ping(t.Context()); err != nil {
			t.Errorf("Ping: %v", err)
		}
	})
}
