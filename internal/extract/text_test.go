package extract

import (
	"reflect"
	"testing"
)

func TestBestText_PrimaryKeyPriority(t *testing.T) {
	el := map[string]any{
		"content": "from content",
		"text":    "from text",
	}
	text, source, _ := BestText(el)
	if text != "from text" {
		t.Errorf("expected 'text' key to win, got %q", text)
	}
	if source != "text" {
		t.Errorf("expected source 'text', got %q", source)
	}
}

func TestBestText_WhitespaceCollapse(t *testing.T) {
	el := map[string]any{"text": "hello   world\n\tagain"}
	text, _, _ := BestText(el)
	if text != "hello world again" {
		t.Errorf("expected collapsed whitespace, got %q", text)
	}
}

func TestBestText_NoTextAnywhere(t *testing.T) {
	el := map[string]any{
		"type":     "Image",
		"metadata": map[string]any{"page_number": float64(3)},
	}
	text, source, candidates := BestText(el)
	if text != "" || source != "" || candidates != nil {
		t.Errorf("expected empty result, got (%q, %q, %v)", text, source, candidates)
	}
}

func TestBestText_NestedMetadataPath(t *testing.T) {
	el := map[string]any{
		"metadata": map[string]any{"text": "nested  text"},
	}
	text, source, _ := BestText(el)
	if text != "nested text" {
		t.Errorf("expected nested text, got %q", text)
	}
	if source != "metadata.text" {
		t.Errorf("expected source 'metadata.text', got %q", source)
	}
}

func TestBestText_ListFlattening(t *testing.T) {
	el := map[string]any{
		"lines": []any{
			"first line",
			map[string]any{"text": "second line"},
			float64(42), // non-text items are ignored
		},
	}
	text, source, _ := BestText(el)
	if text != "first line second line" {
		t.Errorf("expected flattened lines, got %q", text)
	}
	if source != "lines" {
		t.Errorf("expected source 'lines', got %q", source)
	}
}

func TestBestText_HTMLRendering(t *testing.T) {
	el := map[string]any{
		"metadata": map[string]any{
			"text_as_html": "<table><tr><td>Cell A</td><td>Cell B</td></tr></table><script>var x = 1;</script>",
		},
	}
	text, source, _ := BestText(el)
	if text != "Cell A Cell B" {
		t.Errorf("expected visible HTML text, got %q", text)
	}
	if source != "metadata.text_as_html" {
		t.Errorf("expected source 'metadata.text_as_html', got %q", source)
	}
}

func TestTextCandidates_DedupeAndOrder(t *testing.T) {
	el := map[string]any{
		"text":     "same",
		"content":  "other",
		"metadata": map[string]any{"text": "same"},
	}
	cands := TextCandidates(el)
	want := []Candidate{
		{Source: "text", Text: "same"},
		{Source: "content", Text: "other"},
		{Source: "metadata.text", Text: "same"}, // different source, kept
	}
	if !reflect.DeepEqual(cands, want) {
		t.Errorf("unexpected candidates: %+v", cands)
	}
}

func TestTextCandidates_DuplicateSourceTextPairDropped(t *testing.T) {
	// metadata.text is probed once as a nested path and once during the
	// metadata sub-scan; the identical (source, text) pair must appear once.
	el := map[string]any{
		"metadata": map[string]any{"text": "only once"},
	}
	cands := TextCandidates(el)
	if len(cands) != 1 {
		t.Fatalf("expected 1 candidate, got %d: %+v", len(cands), cands)
	}
}

func TestNormalizeText_UnsupportedShapes(t *testing.T) {
	if got := normalizeText(float64(12)); got != "" {
		t.Errorf("expected empty for number, got %q", got)
	}
	if got := normalizeText(map[string]any{"value": "x"}); got != "" {
		t.Errorf("expected empty for map without text, got %q", got)
	}
	if got := normalizeText(nil); got != "" {
		t.Errorf("expected empty for nil, got %q", got)
	}
}
