package adapters

import (
	"fmt"
	"sort"
	"strings"
)

// tagToType maps block tags to generic element types. Unknown tags are kept
// as NarrativeText rather than dropped.
var tagToType = map[string]string{
	"header":    "Title",
	"para":      "NarrativeText",
	"list_item": "ListItem",
	"table":     "Table",
}

// missingIdx sorts blocks without page/block indexes after everything else.
const missingIdx = 1 << 30

// BlocksAdapter recognizes the custom block-extractor shape
// {"return_dict": {"result": {"blocks": [...]}}} and converts each block to
// a generic element, inferring parent/child structure from heading levels.
type BlocksAdapter struct{}

// NewBlocksAdapter creates the custom block adapter.
func NewBlocksAdapter() *BlocksAdapter {
	return &BlocksAdapter{}
}

// Name identifies the adapter.
func (a *BlocksAdapter) Name() string { return "custom-blocks" }

// CanHandle reports whether the payload carries return_dict.result.blocks.
func (a *BlocksAdapter) CanHandle(v any) bool {
	return a.blocks(v) != nil
}

func (a *BlocksAdapter) blocks(v any) []any {
	root, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	rd, ok := root["return_dict"].(map[string]any)
	if !ok {
		return nil
	}
	result, ok := rd["result"].(map[string]any)
	if !ok {
		return nil
	}
	blocks, ok := result["blocks"].([]any)
	if !ok {
		return nil
	}
	return blocks
}

// Elements converts blocks to elements. Blocks are pre-sorted by
// (page_idx, block_idx) so parent inference and downstream sequencing are
// deterministic; a heading stack tracks the nearest enclosing header per
// structural level, and every non-header block attaches to the top of the
// stack.
func (a *BlocksAdapter) Elements(v any) ([]map[string]any, error) {
	raw := a.blocks(v)
	if raw == nil {
		return nil, fmt.Errorf("payload does not carry return_dict.result.blocks")
	}

	blocks := make([]map[string]any, 0, len(raw))
	for _, b := range raw {
		if m, ok := b.(map[string]any); ok {
			blocks = append(blocks, m)
		}
	}
	sort.SliceStable(blocks, func(i, j int) bool {
		pi, bi := blockIdx(blocks[i])
		pj, bj := blockIdx(blocks[j])
		if pi != pj {
			return pi < pj
		}
		return bi < bj
	})

	type stackEntry struct {
		level int
		id    string
	}
	var stack []stackEntry

	elements := make([]map[string]any, 0, len(blocks))
	for _, b := range blocks {
		tag, _ := b["tag"].(string)
		if tag == "" {
			tag = "para"
		}
		etype, ok := tagToType[tag]
		if !ok {
			etype = "NarrativeText"
		}
		eid := blockElementID(b, tag)

		// Structural level: the extractor supplies small ints already;
		// missing levels fall back on the tag.
		lvl := 1
		if tag == "header" {
			lvl = 0
		}
		if rawLvl, ok := asInt(b["level"]); ok {
			lvl = rawLvl
		}

		for len(stack) > 0 && stack[len(stack)-1].level >= lvl {
			stack = stack[:len(stack)-1]
		}
		var parentID any
		if len(stack) > 0 {
			parentID = stack[len(stack)-1].id
		}
		if tag == "header" {
			stack = append(stack, stackEntry{level: lvl, id: eid})
		}

		md := map[string]any{
			"page_number": blockPageNumber(b),
			"coordinates": blockCoords(b),
			"parent_id":   parentID,
			"level":       lvl,
			"tag":         tag,
			"block_class": b["block_class"],
		}
		elements = append(elements, map[string]any{
			"type":       etype,
			"text":       blockText(b, tag),
			"element_id": eid,
			"metadata":   md,
		})
	}
	return elements, nil
}

func blockIdx(b map[string]any) (page, block int) {
	page, block = missingIdx, missingIdx
	if p, ok := asInt(b["page_idx"]); ok {
		page = p
	}
	if i, ok := asInt(b["block_idx"]); ok {
		block = i
	}
	return page, block
}

// blockElementID derives a stable element ID from page/block indexes.
func blockElementID(b map[string]any, tag string) string {
	p, i := blockIdx(b)
	return fmt.Sprintf("%s-%d-%d", tag, p, i)
}

// blockPageNumber converts the 0-based page_idx to a 1-based page number,
// or nil when absent.
func blockPageNumber(b map[string]any) any {
	if p, ok := asInt(b["page_idx"]); ok {
		return p + 1
	}
	return nil
}

func blockCoords(b map[string]any) any {
	if bb, ok := b["bbox"].([]any); ok {
		return bb
	}
	return nil
}

// blockText joins block sentences; tables flatten their rows to readable
// lines with the sentence text prepended.
func blockText(b map[string]any, tag string) string {
	if tag == "table" {
		return tableText(b)
	}
	return joinSentences(b)
}

func joinSentences(b map[string]any) string {
	// A sentences list, even an empty one, is authoritative; name is only
	// consulted when the block carries no list at all.
	if sents, ok := b["sentences"].([]any); ok {
		var parts []string
		for _, s := range sents {
			if str, ok := s.(string); ok {
				if t := strings.TrimSpace(str); t != "" {
					parts = append(parts, t)
				}
			}
		}
		return strings.Join(parts, " ")
	}
	if name, ok := b["name"].(string); ok {
		return strings.TrimSpace(name)
	}
	return ""
}

func tableText(b map[string]any) string {
	rows, _ := b["table_rows"].([]any)
	var lines []string
	for _, r := range rows {
		row, ok := r.(map[string]any)
		if !ok {
			continue
		}
		if rowType, _ := row["type"].(string); rowType == "full_row" {
			if v, ok := row["cell_value"].(string); ok && strings.TrimSpace(v) != "" {
				lines = append(lines, strings.TrimSpace(v))
			}
			continue
		}
		cells, _ := row["cells"].([]any)
		var vals []string
		for _, c := range cells {
			cell, ok := c.(map[string]any)
			if !ok {
				continue
			}
			switch v := cell["cell_value"].(type) {
			case string:
				if t := strings.TrimSpace(v); t != "" {
					vals = append(vals, t)
				}
			case float64:
				vals = append(vals, strings.TrimSpace(fmt.Sprintf("%v", v)))
			}
		}
		if len(vals) > 0 {
			lines = append(lines, strings.Join(vals, " • "))
		}
	}
	if base := joinSentences(b); base != "" {
		lines = append([]string{base}, lines...)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// asInt accepts the numeric shapes JSON decoding produces.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}
