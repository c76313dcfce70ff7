// Package loader turns arbitrary parsed JSON payloads into the flat element
// list the builder consumes. Shapes are recognized by a prioritized chain of
// (recognizer, adapter) rules evaluated in order; the first match wins.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dkrasnov/lexstore/internal/loader/adapters"
)

// ErrUnsupportedShape is returned when no rule recognizes the payload. It is
// the only fatal input error: everything past the loader degrades per field
// instead of failing.
var ErrUnsupportedShape = errors.New("unsupported JSON shape: expected an element list, a mapping with a list key, or recognized extractor blocks")

// listKeys are the well-known keys a mapping may carry its element list
// under, tried in order.
var listKeys = []string{"elements", "data", "pages", "items"}

// Loader resolves payload shapes via an ordered rule chain.
type Loader struct {
	registry *adapters.Registry
	rules    []shapeRule
}

type shapeRule struct {
	name  string
	match func(v any) bool
	adapt func(v any) ([]map[string]any, error)
}

// New creates a loader backed by the given adapter registry. A nil registry
// gets the built-in adapters.
func New(registry *adapters.Registry) *Loader {
	if registry == nil {
		registry = adapters.NewRegistry()
	}
	l := &Loader{registry: registry}
	l.rules = []shapeRule{
		{
			name:  "adapter",
			match: func(v any) bool { return registry.Find(v) != nil },
			adapt: func(v any) ([]map[string]any, error) { return registry.Find(v).Elements(v) },
		},
		{
			name:  "list",
			match: func(v any) bool { _, ok := v.([]any); return ok },
			adapt: func(v any) ([]map[string]any, error) { return elementList(v.([]any)), nil },
		},
		{
			name:  "keyed-list",
			match: func(v any) bool { return keyedList(v) != nil },
			adapt: func(v any) ([]map[string]any, error) { return elementList(keyedList(v)), nil },
		},
		{
			name:  "single-mapping",
			match: func(v any) bool { _, ok := v.(map[string]any); return ok },
			adapt: func(v any) ([]map[string]any, error) {
				return []map[string]any{v.(map[string]any)}, nil
			},
		},
	}
	return l
}

// Load resolves a parsed JSON value to an element list, or fails with
// ErrUnsupportedShape when no rule applies.
func (l *Loader) Load(v any) ([]map[string]any, error) {
	for _, rule := range l.rules {
		if rule.match(v) {
			els, err := rule.adapt(v)
			if err != nil {
				return nil, fmt.Errorf("shape %s: %w", rule.name, err)
			}
			return els, nil
		}
	}
	return nil, ErrUnsupportedShape
}

// LoadFile reads and parses a JSON file, then resolves its shape.
func (l *Loader) LoadFile(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return l.Load(v)
}

// keyedList returns the first well-known list value on a mapping, or nil.
func keyedList(v any) []any {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	for _, k := range listKeys {
		if list, ok := m[k].([]any); ok {
			return list
		}
	}
	return nil
}

// elementList keeps the mapping items of a raw list. Non-mapping items carry
// no addressable fields and are dropped rather than aborting the build.
func elementList(raw []any) []map[string]any {
	els := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			els = append(els, m)
		}
	}
	return els
}
