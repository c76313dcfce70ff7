// Package extract holds the heuristic extractors of the normalization core:
// best-text resolution over schemaless element records, structural label
// recognition, and the cross-reference and defined-term scanners.
package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// Candidate is one text extraction attempt: where it came from and what it
// yielded after normalization.
type Candidate struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

// Field scan priority. Extractors disagree about where text lives, so every
// plausible location is probed in a fixed order and the first non-empty
// candidate wins. Order changes alter which text becomes canonical.
var (
	primaryTextKeys = []string{
		"text", "content", "value", "body", "raw_text", "ocr_text", "paragraph",
		"string", "title", "name", "description",
	}
	secondaryTextKeys = []string{
		"lines", "spans", "sentences", "paragraphs", "tokens", "fragments",
	}
	nestedTextPaths = []string{
		"metadata.text",
		"metadata.title",
		"metadata.name",
		"data.text",
		"attributes.text",
	}
)

// htmlTextPath is probed after the plain nested paths: some extractors
// attach an HTML rendering (tables especially) that still carries usable
// visible text.
const htmlTextPath = "metadata.text_as_html"

// getPath walks a dotted path through nested maps, returning nil when any
// hop is missing or not a map.
func getPath(el map[string]any, path string) any {
	var cur any = el
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[part]
		if cur == nil {
			return nil
		}
	}
	return cur
}

// collapseWhitespace canonicalizes runs of whitespace to single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// normalizeText coerces an arbitrarily shaped value to canonical text.
// Strings are whitespace-collapsed; sequences flatten their string items and
// the "text" field of map items; maps yield their "text" field; anything
// else yields empty text.
func normalizeText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return collapseWhitespace(x)
	case []any:
		var parts []string
		for _, item := range x {
			switch it := item.(type) {
			case string:
				parts = append(parts, it)
			case map[string]any:
				if t, ok := it["text"].(string); ok {
					parts = append(parts, t)
				}
			}
		}
		return collapseWhitespace(strings.Join(parts, " "))
	case map[string]any:
		if t, ok := x["text"].(string); ok {
			return collapseWhitespace(t)
		}
		return ""
	default:
		return ""
	}
}

// visibleHTMLText parses an HTML fragment and collects its visible text,
// skipping script/style/noscript/iframe subtrees. A parse failure yields
// empty text; a malformed candidate is never a build error.
func visibleHTMLText(fragment string) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return ""
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				buf.WriteString(t)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return collapseWhitespace(buf.String())
}

// TextCandidates scans the element for every plausible text location in
// priority order: primary keys, nested paths, the HTML rendering, secondary
// aggregate keys, then the same primary/secondary scan under metadata.
// Candidates are deduplicated by (source, text) preserving first-seen order.
func TextCandidates(el map[string]any) []Candidate {
	var found []Candidate

	for _, k := range primaryTextKeys {
		if v, ok := el[k]; ok {
			if t := normalizeText(v); t != "" {
				found = append(found, Candidate{Source: k, Text: t})
			}
		}
	}

	for _, path := range nestedTextPaths {
		if t := normalizeText(getPath(el, path)); t != "" {
			found = append(found, Candidate{Source: path, Text: t})
		}
	}

	if frag, ok := getPath(el, htmlTextPath).(string); ok {
		if t := visibleHTMLText(frag); t != "" {
			found = append(found, Candidate{Source: htmlTextPath, Text: t})
		}
	}

	for _, k := range secondaryTextKeys {
		if v, ok := el[k]; ok {
			if t := normalizeText(v); t != "" {
				found = append(found, Candidate{Source: k, Text: t})
			}
		}
	}

	if md, ok := el["metadata"].(map[string]any); ok {
		for _, k := range append(append([]string{}, primaryTextKeys...), secondaryTextKeys...) {
			if v, ok := md[k]; ok {
				if t := normalizeText(v); t != "" {
					found = append(found, Candidate{Source: "metadata." + k, Text: t})
				}
			}
		}
	}

	seen := make(map[Candidate]bool)
	uniq := found[:0]
	for _, c := range found {
		if !seen[c] {
			seen[c] = true
			uniq = append(uniq, c)
		}
	}
	return uniq
}

// BestText returns the first candidate in priority order as the canonical
// text, the field it came from, and every candidate text for diagnostics.
// An element with no text anywhere yields ("", "", nil); the caller marks
// the section as missing text rather than failing the build.
func BestText(el map[string]any) (text string, source string, candidates []string) {
	cands := TextCandidates(el)
	if len(cands) == 0 {
		return "", "", nil
	}
	all := make([]string, len(cands))
	for i, c := range cands {
		all[i] = c.Text
	}
	return cands[0].Text, cands[0].Source, all
}
