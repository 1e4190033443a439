package document

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Collection is one named document mapping keys to lists of T.
// Every read-modify-write cycle on the document holds the collection's lock, so concurrent
// writers in this process never lose each other's updates.
type Collection[T any] struct {
	name    string
	keys    []string
	storage Storage

	mu sync.RWMutex
}

// NewCollection returns a collection stored under name whose document always carries keys.
func NewCollection[T any](storage Storage, name string, keys []string) *Collection[T] {
	return &Collection[T]{
		name:    name,
		keys:    slices.Clone(keys),
		storage: storage,
	}
}

// Name returns the document name.
func (c *Collection[T]) Name() string {
	return c.name
}

// Ping checks the underlying storage.
func (c *Collection[T]) Ping(ctx context.Context) error {
	if err := c.storage.Ping(ctx); err != nil {
		return fmt.Errorf("error pinging storage for %q: %w", c.name, err)
	}

	return nil
}

// Init writes the document with every key mapped to an empty list if it does not exist yet.
// An existing document is only rewritten when it lacks one of the keys.
func (c *Collection[T]) Init(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, complete, err := c.load(ctx)
	if err != nil {
		return err
	}
	if complete {
		return nil
	}

	return c.save(ctx, doc)
}

// Load returns the whole document. A document that was never written reads as empty lists.
func (c *Collection[T]) Load(ctx context.Context) (map[string][]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	doc, _, err := c.load(ctx)

	return doc, err
}

// Update loads the document, passes it to fn and saves the result.
// Nothing is saved when fn returns an error.
func (c *Collection[T]) Update(ctx context.Context, fn func(doc map[string][]T) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, _, err := c.load(ctx)
	if err != nil {
		return err
	}

	if err = fn(doc); err != nil {
		return err
	}

	return c.save(ctx, doc)
}

// load reads the document and fills in missing keys. The bool reports whether the stored
// document existed and already carried every key.
func (c *Collection[T]) load(ctx context.Context) (map[string][]T, bool, error) {
	data, err := c.storage.Get(ctx, c.name)
	if err != nil {
		if errors.Is(err, ErrNotExist) {
			return c.empty(), false, nil
		}

		return nil, false, fmt.Errorf("error loading document %q: %w", c.name, err)
	}

	doc := make(map[string][]T, len(c.keys))
	if err = json.Unmarshal(data, &doc); err != nil {
		return nil, false, fmt.Errorf("error decoding document %q: %w", c.name, err)
	}
	if doc == nil {
		doc = make(map[string][]T, len(c.keys))
	}
	complete := true
	for _, k := range c.keys {
		if doc[k] == nil {
			doc[k] = []T{}
			complete = false
		}
	}

	return doc, complete, nil
}

func (c *Collection[T]) save(ctx context.Context, doc map[string][]T) error {
	data, err := c.Encode(doc)
	if err != nil {
		return err
	}

	if err = c.storage.Put(ctx, c.name, data); err != nil {
		return fmt.Errorf("error saving document %q: %w", c.name, err)
	}

	return nil
}

func (c *Collection[T]) empty() map[string][]T {
	doc := make(map[string][]T, len(c.keys))
	for _, k := range c.keys {
		doc[k] = []T{}
	}

	return doc
}

// Encode renders doc as indented JSON. The collection keys come first in their configured
// order, any other keys follow sorted. HTML characters are not escaped.
func (c *Collection[T]) Encode(doc map[string][]T) ([]byte, error) {
	order := slices.Clone(c.keys)
	extra := slices.Sorted(maps.Keys(doc))
	for _, k := range extra {
		if !slices.Contains(c.keys, k) {
			order = append(order, k)
		}
	}

	var buf bytes.Buffer
	buf.WriteString("{")
	for i, k := range order {
		records := doc[k]
		if records == nil {
			records = []T{}
		}

		key, err := encodeValue(k, "")
		if err != nil {
			return nil, fmt.Errorf("error encoding key %q of %q: %w", k, c.name, err)
		}
		val, err := encodeValue(records, "  ")
		if err != nil {
			return nil, fmt.Errorf("error encoding %q of %q: %w", k, c.name, err)
		}

		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(val)
	}
	if len(order) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")

	return buf.Bytes(), nil
}

func encodeValue(v any, prefix string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent(prefix, "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode json: %w", err)
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
