// Package category holds the fixed set of quiz categories.
// Questions and leaderboard entries are both partitioned by these names.
package category

import (
	"errors"
	"slices"
)

// ErrUnknown is returned when a write addresses a category that is not part of a document.
var ErrUnknown = errors.New("unknown category")

//nolint:gochecknoglobals // Fixed, ordered set. Exposed through All.
var names = []string{
	"Aritmatika Sosial",
	"Fungsi",
	"Aturan Pencacahan",
	"Statistika",
	"Logika",
}

// All returns the category names in display order.
func All() []string {
	return slices.Clone(names)
}

// Valid reports whether name is one of the fixed categories.
func Valid(name string) bool {
	return slices.Contains(names, name)
}
