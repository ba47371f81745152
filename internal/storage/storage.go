// Package storage provides a key-value document store for JSON documents.
// Documents are addressed by a namespace (a logical partition such as the
// channel config or the per-user collections) and a key inside it.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotExist is returned by a Backend when no document is stored under the key.
	ErrNotExist = errors.New("document does not exist")
	// ErrCorrupt indicates a persisted document could not be decoded.
	ErrCorrupt = errors.New("document is corrupt")
)

// Backend stores raw documents. Write must replace the previous content
// atomically: a concurrent or later Read observes either the old or the new
// document, never a mix.
type Backend interface {
	Read(ctx context.Context, namespace, key string) ([]byte, error)
	Write(ctx context.Context, namespace, key string, data []byte) error
	Close() error
}

// Store loads and saves typed documents of one namespace.
type Store[T any] interface {
	Load(ctx context.Context, key string) (T, error)
	Save(ctx context.Context, key string, doc T) error
}

// JSONStore is a Store encoding documents as indented JSON.
type JSONStore[T any] struct {
	backend    Backend
	namespace  string
	newDefault func() T
}

// NewJSONStore creates a JSON document store over backend. newDefault builds
// the document returned when nothing is stored yet; nil means the zero value.
func NewJSONStore[T any](backend Backend, namespace string, newDefault func() T) *JSONStore[T] {
	if newDefault == nil {
		newDefault = func() T {
			var zero T
			return zero
		}
	}
	return &JSONStore[T]{backend: backend, namespace: namespace, newDefault: newDefault}
}

// Namespace returns the namespace the store reads and writes.
func (s *JSONStore[T]) Namespace() string {
	return s.namespace
}

// Load returns the document stored under key, or the default document if
// none exists. Undecodable content yields an error wrapping ErrCorrupt.
func (s *JSONStore[T]) Load(ctx context.Context, key string) (T, error) {
	doc := s.newDefault()
	data, err := s.backend.Read(ctx, s.namespace, key)
	if err != nil {
		if errors.Is(err, ErrNotExist) {
			return doc, nil
		}
		return doc, fmt.Errorf("read %s: %w", s.describe(key), err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, fmt.Errorf("%w: %s is empty", ErrCorrupt, s.describe(key))
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return s.newDefault(), fmt.Errorf("%w: %s: %v", ErrCorrupt, s.describe(key), err)
	}
	return doc, nil
}

// Save replaces the document stored under key.
func (s *JSONStore[T]) Save(ctx context.Context, key string, doc T) error {
	data, err := Encode(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.describe(key), err)
	}
	if err := s.backend.Write(ctx, s.namespace, key, data); err != nil {
		return fmt.Errorf("write %s: %w", s.describe(key), err)
	}
	return nil
}

func (s *JSONStore[T]) describe(key string) string {
	if s.namespace == "" {
		return key
	}
	return s.namespace + "/" + key
}

// Encode renders v as two-space indented JSON followed by a newline.
// HTML characters are not escaped so names and URLs stay readable on disk.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
