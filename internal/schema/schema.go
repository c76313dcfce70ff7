// Package schema infers a draft-07 JSON Schema from a built store and
// validates the serialized store against it. Inference is a one-shot
// reflection over the output value: field types are read off the actual
// data, so the schema tracks whatever diagnostic fields the build produced.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Required field sets per object class. These are the contract fields;
// everything else is advisory.
var (
	docRequired  = []string{"doc_id", "extracted_at", "extracted_with", "filename", "hash", "version"}
	secRequired  = []string{"section_id", "text"}
	defRequired  = []string{"def_id", "section_id", "term", "text"}
	xrefRequired = []string{"offset", "source_section_id", "target_label", "xref_id"}
)

// Infer builds a draft-07 schema for a store given its generic JSON value
// (the result of unmarshaling the serialized store).
func Infer(store map[string]any) map[string]any {
	return map[string]any{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"title":                "Normalized Document Store (Dynamic)",
		"type":                 "object",
		"required":             []string{"schema_version", "document"},
		"additionalProperties": false,
		"properties": map[string]any{
			"schema_version": map[string]any{"type": "string"},
			"document":       objectSchema(mapAt(store, "document"), docRequired),
			"sections":       arraySchema(listAt(store, "sections"), secRequired),
			"definitions":    arraySchema(listAt(store, "definitions"), defRequired),
			"cross_references": arraySchema(
				listAt(store, "cross_references"), xrefRequired),
			"topology":   map[string]any{"type": "object"},
			"provenance": map[string]any{"type": "object"},
		},
	}
}

// Validate compiles the schema and checks the store value against it.
func Validate(schemaDoc map[string]any, store map[string]any) error {
	raw, err := json.Marshal(schemaDoc)
	if err != nil {
		return fmt.Errorf("serialize schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("store.schema.json", bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := compiler.Compile("store.schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	if err := compiled.Validate(any(store)); err != nil {
		return fmt.Errorf("store does not match inferred schema: %w", err)
	}
	return nil
}

// objectSchema infers per-field types from a sample object.
func objectSchema(sample map[string]any, required []string) map[string]any {
	props := map[string]any{}
	for k, v := range sample {
		props[k] = inferType(v)
	}
	return map[string]any{
		"type":                 "object",
		"required":             required,
		"properties":           props,
		"additionalProperties": true,
	}
}

// arraySchema infers item types across every sample item. A field seen with
// several types (a nullable label, say) gets the union of every observed
// type, so the inferred schema validates the data it was inferred from.
func arraySchema(samples []any, required []string) map[string]any {
	seen := map[string]map[string]bool{}
	exemplar := map[string]map[string]any{}
	for _, s := range samples {
		m, ok := s.(map[string]any)
		if !ok {
			continue
		}
		for k, v := range m {
			inferred := inferType(v)
			name := inferred["type"].(string)
			if seen[k] == nil {
				seen[k] = map[string]bool{}
			}
			seen[k][name] = true
			if name != "null" {
				exemplar[k] = inferred
			}
		}
	}

	props := map[string]any{}
	for k, types := range seen {
		names := make([]string, 0, len(types))
		for name := range types {
			names = append(names, name)
		}
		sort.Strings(names)
		switch {
		case len(names) == 1 && exemplar[k] != nil:
			props[k] = exemplar[k]
		case len(names) == 1:
			props[k] = map[string]any{"type": names[0]}
		default:
			// Unions drop per-type detail (array items etc.); the type set
			// is what downstream consumers key off.
			props[k] = map[string]any{"type": names}
		}
	}

	req := append([]string{}, required...)
	sort.Strings(req)
	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":                 "object",
			"required":             req,
			"properties":           props,
			"additionalProperties": true,
		},
	}
}

// inferType maps a JSON value to its schema type. Whole float64 values are
// integers: JSON decoding erases the distinction and the store's counts and
// offsets are all integral.
func inferType(v any) map[string]any {
	switch x := v.(type) {
	case nil:
		return map[string]any{"type": "null"}
	case bool:
		return map[string]any{"type": "boolean"}
	case string:
		return map[string]any{"type": "string"}
	case float64:
		if x == math.Trunc(x) {
			return map[string]any{"type": "integer"}
		}
		return map[string]any{"type": "number"}
	case []any:
		for _, item := range x {
			if item != nil {
				return map[string]any{"type": "array", "items": inferType(item)}
			}
		}
		return map[string]any{"type": "array", "items": map[string]any{}}
	case map[string]any:
		return map[string]any{"type": "object"}
	default:
		return map[string]any{"type": "string"}
	}
}

func mapAt(m map[string]any, key string) map[string]any {
	v, _ := m[key].(map[string]any)
	return v
}

func listAt(m map[string]any, key string) []any {
	v, _ := m[key].([]any)
	return v
}
