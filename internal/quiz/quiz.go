// Package quiz defines the questions of the per-category question bank.
package quiz

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

const idField = "id"

// Question is an admin-authored quiz item. Apart from ID, its fields (text, choices, answer, ...)
// are opaque and passed through unchanged. It encodes as a single flat JSON object with the
// fields in Order and "id" last.
type Question struct {
	// ID is unique within its category only at the moment it is assigned.
	ID     int64
	Fields map[string]json.RawMessage
	// Order lists the field names in the order they were supplied.
	// Fields missing from it encode after the listed ones, sorted.
	Order []string
}

// NewQuestion returns a question carrying fields, keyed in order followed by any remaining
// field names sorted. A supplied "id" field is dropped because the store assigns the ID.
func NewQuestion(fields map[string]json.RawMessage, order ...string) Question {
	f := maps.Clone(fields)
	delete(f, idField)

	return Question{Fields: f, Order: fieldOrder(f, order)}
}

// fieldOrder returns the keys of fields: those in order first, without duplicates, then the rest sorted.
func fieldOrder(fields map[string]json.RawMessage, order []string) []string {
	if fields == nil {
		return nil
	}

	keys := make([]string, 0, len(fields))
	for _, k := range order {
		if _, ok := fields[k]; ok && !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		if !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}

	return keys
}

// Valid checks if the question is valid.
func (q *Question) Valid(_ context.Context) map[string]string {
	problems := make(map[string]string)
	if q.Fields == nil {
		problems["body"] = "Question must be a JSON object"
	}

	return problems
}

// MarshalJSON writes the opaque fields in order and appends ID.
func (q Question) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, k := range fieldOrder(q.Fields, q.Order) {
		if k == idField {
			continue
		}
		key, err := encodeKey(k)
		if err != nil {
			return nil, fmt.Errorf("error encoding field %q of question %d: %w", k, q.ID, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		if v := q.Fields[k]; len(v) > 0 {
			buf.Write(v)
		} else {
			buf.WriteString("null")
		}
		buf.WriteByte(',')
	}

	id, err := json.Marshal(q.ID)
	if err != nil {
		return nil, fmt.Errorf("error encoding question id: %w", err)
	}
	buf.WriteString(`"` + idField + `":`)
	buf.Write(id)
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func encodeKey(k string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(k); err != nil {
		return nil, err
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON splits the "id" field from the opaque fields and records the field order.
// Field values are compacted, so a question reads back the same whatever indentation it was
// stored with. A repeated field keeps its first position and its last value.
func (q *Question) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("error decoding question: %w", err)
	}
	if tok == nil {
		*q = Question{}

		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("error decoding question: unexpected %v, want an object", tok)
	}

	fields := make(map[string]json.RawMessage)
	var order []string
	var id int64
	for dec.More() {
		if tok, err = dec.Token(); err != nil {
			return fmt.Errorf("error decoding question: %w", err)
		}
		k, _ := tok.(string)

		var raw json.RawMessage
		if err = dec.Decode(&raw); err != nil {
			return fmt.Errorf("error decoding field %q: %w", k, err)
		}

		if k == idField {
			if err = json.Unmarshal(raw, &id); err != nil {
				return fmt.Errorf("error decoding question id %s: %w", raw, err)
			}

			continue
		}

		var buf bytes.Buffer
		if err = json.Compact(&buf, raw); err != nil {
			return fmt.Errorf("error compacting field %q: %w", k, err)
		}
		if _, seen := fields[k]; !seen {
			order = append(order, k)
		}
		fields[k] = buf.Bytes()
	}
	if _, err = dec.Token(); err != nil {
		return fmt.Errorf("error decoding question: %w", err)
	}

	q.ID = id
	q.Fields = fields
	q.Order = order

	return nil
}

// NextID returns the ID for a question appended to questions: the current count plus one.
// IDs are not monotonic. After a deletion a new question can get the ID of an existing one.
func NextID(questions []Question) int64 {
	return int64(len(questions)) + 1
}

// Without returns questions minus every question with the given ID.
func Without(questions []Question, id int64) []Question {
	kept := make([]Question, 0, len(questions))
	for _, q := range questions {
		if q.ID != id {
			kept = append(kept, q)
		}
	}

	return kept
}

// Store represents a store for the question bank.
// This can be implemented for different storages.
type Store interface {
	// Ping checks the backing storage.
	Ping(ctx context.Context) error
	// ListQuestions returns the questions of a category, or an empty list for an unknown category.
	ListQuestions(ctx context.Context, category string) ([]Question, error)
	// CreateQuestion appends a question with the fields of draft and returns it with its assigned ID.
	// Returns category.ErrUnknown if the category is not in the question bank.
	CreateQuestion(ctx context.Context, category string, draft Question) (Question, error)
	// DeleteQuestion removes every question of the category with the given ID. Deleting an ID
	// that does not exist is not an error.
	// Returns category.ErrUnknown if the category is not in the question bank.
	DeleteQuestion(ctx context.Context, category string, id int64) error
}
