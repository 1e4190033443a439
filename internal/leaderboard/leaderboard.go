// Package leaderboard contains the per-category top score rules.
package leaderboard

import (
	"cmp"
	"context"
	"slices"
)

const (
	// Limit is the number of entries kept per category.
	Limit = 10
	// DateLayout is the layout of Entry.Date.
	DateLayout = "2006-01-02 15:04"
)

// Entry is a single score on a category leaderboard. Entries are never changed after creation.
type Entry struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
	Date  string  `json:"date"`
}

// Rank appends e to entries, orders the result by descending score and keeps the first Limit.
// Equal scores keep their insertion order, so an older entry stays ahead of a newer one with the
// same score. entries is not modified.
func Rank(entries []Entry, e Entry) []Entry {
	ranked := make([]Entry, 0, len(entries)+1)
	ranked = append(ranked, entries...)
	ranked = append(ranked, e)

	slices.SortStableFunc(ranked, func(a, b Entry) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if len(ranked) > Limit {
		ranked = ranked[:Limit]
	}

	return ranked
}

// Store represents a leaderboard store.
type Store interface {
	// Ping checks the backing storage.
	Ping(ctx context.Context) error
	// ListEntries returns the entries of a category, or an empty list for an unknown category.
	ListEntries(ctx context.Context, category string) ([]Entry, error)
	// ListAll returns every category's entries.
	ListAll(ctx context.Context) (map[string][]Entry, error)
	// SubmitScore records a score dated now and applies Rank.
	// Returns category.ErrUnknown if the category is not on the leaderboard.
	SubmitScore(ctx context.Context, category, name string, score float64) (Entry, error)
}
