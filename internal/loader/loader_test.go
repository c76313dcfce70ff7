package loader

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_BareList(t *testing.T) {
	l := New(nil)
	els, err := l.Load([]any{
		map[string]any{"type": "Title", "text": "ARTICLE I Merger"},
		"stray string is dropped",
		map[string]any{"type": "NarrativeText", "text": "body"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(els) != 2 {
		t.Errorf("expected 2 elements, got %d", len(els))
	}
}

func TestLoad_KeyedList(t *testing.T) {
	l := New(nil)
	for _, key := range []string{"elements", "data", "pages", "items"} {
		els, err := l.Load(map[string]any{
			key: []any{map[string]any{"text": "x"}},
		})
		if err != nil {
			t.Fatalf("key %s: unexpected error: %v", key, err)
		}
		if len(els) != 1 {
			t.Errorf("key %s: expected 1 element, got %d", key, len(els))
		}
	}
}

func TestLoad_ListKeyPriority(t *testing.T) {
	l := New(nil)
	els, err := l.Load(map[string]any{
		"data":     []any{map[string]any{"text": "from data"}},
		"elements": []any{map[string]any{"text": "from elements"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(els) != 1 || els[0]["text"] != "from elements" {
		t.Errorf("expected 'elements' key to win, got %v", els)
	}
}

func TestLoad_SingleMappingWrapped(t *testing.T) {
	l := New(nil)
	els, err := l.Load(map[string]any{"type": "Title", "text": "lone element"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(els) != 1 || els[0]["text"] != "lone element" {
		t.Errorf("expected single wrapped element, got %v", els)
	}
}

func TestLoad_UnsupportedShape(t *testing.T) {
	l := New(nil)
	for _, v := range []any{"plain string", float64(42), true, nil} {
		if _, err := l.Load(v); !errors.Is(err, ErrUnsupportedShape) {
			t.Errorf("%v: expected ErrUnsupportedShape, got %v", v, err)
		}
	}
}

func TestLoad_AdapterTakesPriority(t *testing.T) {
	l := New(nil)
	// A payload with both a recognized block shape and a well-known list key
	// must go through the adapter.
	payload := map[string]any{
		"elements": []any{map[string]any{"text": "decoy"}},
		"return_dict": map[string]any{
			"result": map[string]any{
				"blocks": []any{
					map[string]any{
						"tag": "header", "page_idx": float64(0), "block_idx": float64(0),
						"sentences": []any{"ARTICLE I Merger"},
					},
				},
			},
		},
	}
	els, err := l.Load(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(els) != 1 || els[0]["type"] != "Title" {
		t.Errorf("expected adapted block element, got %v", els)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.json")
	payload := []map[string]any{{"type": "Title", "text": "Exhibit A Form"}}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	l := New(nil)
	els, err := l.LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(els) != 1 || els[0]["text"] != "Exhibit A Form" {
		t.Errorf("unexpected elements: %v", els)
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	l := New(nil)
	if _, err := l.LoadFile(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
