package adapters

import "testing"

func blockPayload(blocks []any) map[string]any {
	return map[string]any{
		"return_dict": map[string]any{
			"result": map[string]any{"blocks": blocks},
		},
	}
}

func TestBlocksAdapter_CanHandle(t *testing.T) {
	a := NewBlocksAdapter()
	if !a.CanHandle(blockPayload([]any{})) {
		t.Error("expected block shape to be recognized")
	}
	if a.CanHandle(map[string]any{"elements": []any{}}) {
		t.Error("expected generic mapping to be rejected")
	}
	if a.CanHandle([]any{}) {
		t.Error("expected bare list to be rejected")
	}
}

func TestBlocksAdapter_TagMappingAndPages(t *testing.T) {
	a := NewBlocksAdapter()
	els, err := a.Elements(blockPayload([]any{
		map[string]any{"tag": "header", "page_idx": float64(0), "block_idx": float64(0), "sentences": []any{"ARTICLE I Merger"}},
		map[string]any{"tag": "para", "page_idx": float64(0), "block_idx": float64(1), "sentences": []any{"Body text."}},
		map[string]any{"tag": "list_item", "page_idx": float64(1), "block_idx": float64(0), "sentences": []any{"item one"}},
		map[string]any{"tag": "mystery", "page_idx": float64(1), "block_idx": float64(1), "sentences": []any{"kept anyway"}},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(els) != 4 {
		t.Fatalf("expected 4 elements, got %d", len(els))
	}

	types := []string{"Title", "NarrativeText", "ListItem", "NarrativeText"}
	for i, want := range types {
		if els[i]["type"] != want {
			t.Errorf("element %d: expected type %s, got %v", i, want, els[i]["type"])
		}
	}

	md := els[0]["metadata"].(map[string]any)
	if md["page_number"] != 1 {
		t.Errorf("expected 1-based page number, got %v", md["page_number"])
	}
	if els[0]["element_id"] != "header-0-0" {
		t.Errorf("unexpected element_id: %v", els[0]["element_id"])
	}
}

func TestBlocksAdapter_ParentInference(t *testing.T) {
	a := NewBlocksAdapter()
	els, err := a.Elements(blockPayload([]any{
		map[string]any{"tag": "header", "level": float64(0), "page_idx": float64(0), "block_idx": float64(0), "sentences": []any{"ARTICLE I"}},
		map[string]any{"tag": "header", "level": float64(1), "page_idx": float64(0), "block_idx": float64(1), "sentences": []any{"1.1 Closing"}},
		map[string]any{"tag": "para", "level": float64(2), "page_idx": float64(0), "block_idx": float64(2), "sentences": []any{"Deep paragraph."}},
		map[string]any{"tag": "header", "level": float64(0), "page_idx": float64(0), "block_idx": float64(3), "sentences": []any{"ARTICLE II"}},
		map[string]any{"tag": "para", "level": float64(1), "page_idx": float64(0), "block_idx": float64(4), "sentences": []any{"Under article two."}},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parentOf := func(i int) any {
		return els[i]["metadata"].(map[string]any)["parent_id"]
	}
	if parentOf(0) != nil {
		t.Errorf("top header must have no parent, got %v", parentOf(0))
	}
	if parentOf(1) != "header-0-0" {
		t.Errorf("sub-header parent: expected header-0-0, got %v", parentOf(1))
	}
	if parentOf(2) != "header-0-1" {
		t.Errorf("deep paragraph parent: expected header-0-1, got %v", parentOf(2))
	}
	if parentOf(3) != nil {
		t.Errorf("second top header must have no parent, got %v", parentOf(3))
	}
	if parentOf(4) != "header-0-3" {
		t.Errorf("trailing paragraph parent: expected header-0-3, got %v", parentOf(4))
	}
}

func TestBlocksAdapter_TableFlattening(t *testing.T) {
	a := NewBlocksAdapter()
	els, err := a.Elements(blockPayload([]any{
		map[string]any{
			"tag": "table", "page_idx": float64(2), "block_idx": float64(0),
			"sentences": []any{"Purchase Price Schedule"},
			"table_rows": []any{
				map[string]any{"type": "full_row", "cell_value": "Consideration"},
				map[string]any{"cells": []any{
					map[string]any{"cell_value": "Cash"},
					map[string]any{"cell_value": "1000000"},
				}},
			},
		},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Purchase Price Schedule\nConsideration\nCash • 1000000"
	if els[0]["text"] != want {
		t.Errorf("unexpected table text:\n got: %q\nwant: %q", els[0]["text"], want)
	}
	if els[0]["type"] != "Table" {
		t.Errorf("expected Table type, got %v", els[0]["type"])
	}
}

func TestBlocksAdapter_NameOnlyWhenSentencesAbsent(t *testing.T) {
	a := NewBlocksAdapter()
	els, err := a.Elements(blockPayload([]any{
		map[string]any{
			"tag": "para", "page_idx": float64(0), "block_idx": float64(0),
			"sentences": []any{}, "name": "ignored",
		},
		map[string]any{
			"tag": "para", "page_idx": float64(0), "block_idx": float64(1),
			"name": "used as text",
		},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if els[0]["text"] != "" {
		t.Errorf("an empty sentences list must yield empty text, got %q", els[0]["text"])
	}
	if els[1]["text"] != "used as text" {
		t.Errorf("expected name fallback without a sentences list, got %q", els[1]["text"])
	}
}

func TestBlocksAdapter_SortsByPageAndBlock(t *testing.T) {
	a := NewBlocksAdapter()
	els, err := a.Elements(blockPayload([]any{
		map[string]any{"tag": "para", "page_idx": float64(1), "block_idx": float64(0), "sentences": []any{"second"}},
		map[string]any{"tag": "para", "page_idx": float64(0), "block_idx": float64(1), "sentences": []any{"first"}},
		map[string]any{"tag": "para", "sentences": []any{"unindexed sorts last"}},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if els[0]["text"] != "first" || els[1]["text"] != "second" {
		t.Errorf("unexpected order: %v, %v", els[0]["text"], els[1]["text"])
	}
	if els[2]["text"] != "unindexed sorts last" {
		t.Errorf("expected unindexed block last, got %v", els[2]["text"])
	}
}

func TestRegistry_FindFirstMatch(t *testing.T) {
	r := NewRegistry()
	if r.Find(blockPayload([]any{})) == nil {
		t.Error("expected registry to find blocks adapter")
	}
	if r.Find(map[string]any{"x": 1}) != nil {
		t.Error("expected no adapter for unrecognized payload")
	}
}
