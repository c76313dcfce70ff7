// Package builder implements the multi-pass document normalizer: it turns a
// flat element list into the canonical store of sections with a reconstructed
// hierarchy, cross-references, defined terms, and a topology index. One
// Builder instance normalizes one document; instances share no state, so
// concurrent callers need no coordination.
package builder

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dkrasnov/lexstore/internal/extract"
	"github.com/dkrasnov/lexstore/internal/ids"
	"github.com/dkrasnov/lexstore/internal/model"
)

// missingPageSentinel orders elements without a page number after everything
// else within their sibling group.
const missingPageSentinel = 10_000_000

// syntheticIDBytes bounds how much of an element's canonical serialization
// feeds the fallback element ID.
const syntheticIDBytes = 160

// Builder accumulates one document's normalization state across the three
// passes. Build must be called exactly once.
type Builder struct {
	elements []map[string]any
	filename string
	cfg      model.BuildConfig

	createdAt string
	docHash   string
	docID     string

	sections    []model.Section
	definitions []model.Definition
	crossRefs   []model.CrossRef

	// parent-group bookkeeping for topology; keys are encoded parent IDs so
	// the nil parent stays distinct from every real element ID.
	childSections map[string][]int // encoded parent key -> indexes into sections
	parentByKey   map[string]*string
}

// New creates a builder over an already-loaded element list. The element
// list is treated as immutable; each element is retained verbatim inside its
// section as provenance.
func New(elements []map[string]any, filename string, cfg model.BuildConfig) *Builder {
	b := &Builder{
		elements:      elements,
		filename:      filename,
		cfg:           cfg,
		createdAt:     ids.NowISO(),
		childSections: make(map[string][]int),
		parentByKey:   make(map[string]*string),
	}
	b.docHash = DocHash(elements)
	b.docID = ids.URN("doc", b.docHash)
	return b
}

// DocHash returns the content hash of an element list: the SHA-256 of its
// canonical JSON serialization (json.Marshal sorts map keys, which is the
// canonical form every identity formula depends on).
func DocHash(elements []map[string]any) string {
	raw, err := json.Marshal(elements)
	if err != nil {
		// Elements come from json.Unmarshal, so re-marshaling cannot fail;
		// degrade to hashing the empty list rather than aborting.
		raw = []byte("[]")
	}
	return ids.Hash(string(raw))
}

// DocID returns the document identifier derived from the content hash.
func (b *Builder) DocID() string { return b.docID }

// Build runs the three passes in order (sections, cross-references,
// definitions), then assembles topology, index, and provenance. Malformed
// elements never abort the build: every heuristic degrades to an absent
// value instead.
func (b *Builder) Build() *model.Store {
	b.passSections()
	b.passCrossRefs()
	b.passDefinitions()

	return &model.Store{
		SchemaVersion: b.cfg.SchemaVersion,
		Document: model.DocumentHeader{
			DocID:         b.docID,
			Filename:      b.filename,
			Filetype:      "application/json",
			Hash:          b.docHash,
			ExtractedWith: b.cfg.ExtractedWith,
			ExtractedAt:   b.createdAt,
			Version:       1,
		},
		Sections:        b.sections,
		Definitions:     b.definitions,
		CrossReferences: b.crossRefs,
		Topology: model.Topology{
			ChildrenByParent: b.childrenByParent(),
			SectionIndex:     b.sectionIndex(),
		},
		Provenance: model.Provenance{
			Source:        b.cfg.ExtractedWith,
			BuiltAt:       b.createdAt,
			ElementsCount: len(b.elements),
			Notes:         "Full text lives in sections[*].text. The index carries snippet/hash/len (or full text if enabled).",
		},
	}
}

// sectionIDFor mints a section URN from an element ID. Every section URN in
// the store, materialized sections and parent references alike, goes
// through this one function so the two computations can never drift.
func (b *Builder) sectionIDFor(elementID string) string {
	return ids.URN("sec", b.docID, elementID)
}

// passSections groups elements by raw parent_id, orders each group by
// (page_number, element_id) with missing pages last, assigns 1-based
// sequences per group, and materializes one section per element.
func (b *Builder) passSections() {
	groups := make(map[string][]map[string]any)
	for _, el := range b.elements {
		pid := stringPtrAt(el, "metadata", "parent_id")
		key := parentKey(pid)
		if _, seen := groups[key]; !seen {
			b.parentByKey[key] = pid
		}
		groups[key] = append(groups[key], el)
	}

	// Map iteration is randomized; process groups in sorted key order (nil
	// parent first) so the flat section list is stable across runs.
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		group := groups[key]
		parent := b.parentByKey[key]

		sort.SliceStable(group, func(i, j int) bool {
			pi, ei := sortKey(group[i])
			pj, ej := sortKey(group[j])
			if pi != pj {
				return pi < pj
			}
			return ei < ej
		})

		for seq, el := range group {
			b.childSections[key] = append(b.childSections[key], len(b.sections))
			b.sections = append(b.sections, b.buildSection(el, parent, seq+1))
		}
	}
}

// buildSection materializes one section from one element.
func (b *Builder) buildSection(el map[string]any, parent *string, sequence int) model.Section {
	md, _ := el["metadata"].(map[string]any)

	elementID := elementIDOf(el)
	text, textSource, candidates := extract.BestText(el)

	// Label resolution runs twice: once gated on title/header element types
	// (those are the reliable carriers), once unconditionally to fill any
	// field the gated attempt left absent.
	levelHint := intPtrAt(md, "level")
	var info extract.LabelInfo
	elType, _ := el["type"].(string)
	tLower := strings.ToLower(elType)
	if strings.Contains(tLower, "title") || strings.Contains(tLower, "header") {
		info = extract.ParseLabel(text, levelHint)
	}
	if info.Label == "" {
		alt := extract.ParseLabel(text, levelHint)
		info.Label = alt.Label
		if info.Title == "" {
			info.Title = alt.Title
		}
		if info.Level == nil {
			info.Level = alt.Level
		}
	}

	pnum := intPtrAt(md, "page_number")
	bbox, polygon := geometry(md)
	var spans []model.Span
	if pnum != nil {
		spans = append(spans, model.Span{Page: pnum, BBox: bbox, Polygon: polygon})
	}

	return model.Section{
		SectionID:       b.sectionIDFor(elementID),
		ElementID:       elementID,
		ParentElementID: parent,
		Sequence:        sequence,
		Label:           strPtrOrNil(info.Label),
		Title:           strPtrOrNil(info.Title),
		Level:           info.Level,
		Text:            text,
		PageStart:       pnum,
		PageEnd:         pnum,
		Spans:           spans,
		ElementType:     strPtrOrNil(elType),
		Confidence:      floatPtrAt(md, "detection_class_prob"),
		RawElement:      el,
		TextSource:      strPtrOrNil(textSource),
		TextCandidates:  candidates,
		TextLength:      utf8.RuneCountInString(text),
		MissingText:     text == "",
	}
}

// passCrossRefs builds a case-insensitive label-to-section map (last write
// wins on collisions; collisions are not flagged) and scans every section's
// text for reference mentions. Unresolved references are kept.
func (b *Builder) passCrossRefs() {
	labelToSection := make(map[string]string)
	for _, s := range b.sections {
		if s.Label != nil && *s.Label != "" {
			labelToSection[strings.ToLower(*s.Label)] = s.SectionID
		}
	}

	for _, s := range b.sections {
		for _, m := range extract.CrossRefs(s.Text) {
			xref := model.CrossRef{
				XrefID:          ids.URN("xref", b.docID, s.SectionID, strconv.Itoa(m.Offset), m.Text),
				SourceSectionID: s.SectionID,
				TargetLabel:     m.Text,
				Offset:          m.Offset,
			}
			if target, ok := labelToSection[strings.ToLower(m.Text)]; ok {
				xref.ResolvedSectionID = &target
			}
			b.crossRefs = append(b.crossRefs, xref)
		}
	}
}

// passDefinitions scans every section's text sentence by sentence for
// defined-term declarations. Occurrences are recorded independently; no
// deduplication or scope resolution happens here.
func (b *Builder) passDefinitions() {
	for _, s := range b.sections {
		if s.Text == "" {
			continue
		}
		for _, sentence := range extract.SplitSentences(s.Text) {
			for _, term := range extract.DefTerms(sentence) {
				b.definitions = append(b.definitions, model.Definition{
					DefID:     ids.URN("def", b.docID, s.SectionID, term),
					Term:      term,
					Text:      strings.TrimSpace(sentence),
					SectionID: s.SectionID,
					Scope:     "global",
				})
			}
		}
	}
}

// childrenByParent maps each parent's section ID (minted from the parent
// element ID without requiring the parent to be materialized) to its
// children's section IDs ordered by sequence. Roots map under the literal
// "null" key.
func (b *Builder) childrenByParent() map[string][]string {
	out := make(map[string][]string, len(b.childSections))
	for key, idxs := range b.childSections {
		mapKey := model.RootParentKey
		if parent := b.parentByKey[key]; parent != nil {
			mapKey = b.sectionIDFor(*parent)
		}
		children := make([]string, len(idxs))
		for i, idx := range idxs {
			children[i] = b.sections[idx].SectionID
		}
		out[mapKey] = children
	}
	return out
}

// sectionIndex builds the per-section diagnostic projection: core fields
// plus either full text or a bounded snippet, with length and content hash.
func (b *Builder) sectionIndex() map[string]model.SectionIndexEntry {
	index := make(map[string]model.SectionIndexEntry, len(b.sections))
	for _, s := range b.sections {
		entry := model.SectionIndexEntry{
			SectionID:       s.SectionID,
			ElementID:       s.ElementID,
			Sequence:        s.Sequence,
			ParentElementID: s.ParentElementID,
			Label:           s.Label,
			Title:           s.Title,
			Level:           s.Level,
			PageStart:       s.PageStart,
			PageEnd:         s.PageEnd,
			ElementType:     s.ElementType,
			TextLen:         utf8.RuneCountInString(s.Text),
		}
		if s.Text != "" {
			h := ids.Hash(s.Text)
			entry.TextHash = &h
		}
		if b.cfg.IncludeTextInIndex {
			text := s.Text
			entry.Text = &text
		} else if s.Text != "" {
			snippet := snippetOf(s.Text, b.cfg.SnippetChars)
			entry.TextSnippet = &snippet
		}
		index[s.SectionID] = entry
	}
	return index
}

// snippetOf bounds text to n runes.
func snippetOf(text string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

// elementIDOf returns the element's declared ID, or a synthetic one hashed
// from a truncated canonical serialization when the extractor supplied none.
func elementIDOf(el map[string]any) string {
	if id, ok := el["element_id"].(string); ok && id != "" {
		return id
	}
	raw, err := json.Marshal(el)
	if err != nil {
		raw = []byte("{}")
	}
	if len(raw) > syntheticIDBytes {
		raw = raw[:syntheticIDBytes]
	}
	return ids.Hash(string(raw))
}

// sortKey orders elements within a sibling group.
func sortKey(el map[string]any) (page int, elementID string) {
	page = missingPageSentinel
	if md, ok := el["metadata"].(map[string]any); ok {
		if p, ok := asInt(md["page_number"]); ok {
			page = p
		}
	}
	elementID, _ = el["element_id"].(string)
	return page, elementID
}

// geometry resolves bounding geometry from metadata coordinates: either a
// point polygon (bbox derived as min/max of all point coordinates) or a
// direct bbox list.
func geometry(md map[string]any) (bbox []float64, polygon [][]float64) {
	if md == nil {
		return nil, nil
	}
	switch coords := md["coordinates"].(type) {
	case map[string]any:
		points, ok := coords["points"].([]any)
		if !ok {
			return nil, nil
		}
		for _, p := range points {
			pt, ok := p.([]any)
			if !ok || len(pt) < 2 {
				continue
			}
			x, xok := asFloat(pt[0])
			y, yok := asFloat(pt[1])
			if !xok || !yok {
				continue
			}
			polygon = append(polygon, []float64{x, y})
		}
		if len(polygon) == 0 {
			return nil, nil
		}
		bbox = bboxFromPoints(polygon)
		return bbox, polygon
	case []any:
		for _, v := range coords {
			if f, ok := asFloat(v); ok {
				bbox = append(bbox, f)
			}
		}
		return bbox, nil
	default:
		return nil, nil
	}
}

func bboxFromPoints(points [][]float64) []float64 {
	minX, minY := points[0][0], points[0][1]
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		if p[0] < minX {
			minX = p[0]
		}
		if p[0] > maxX {
			maxX = p[0]
		}
		if p[1] < minY {
			minY = p[1]
		}
		if p[1] > maxY {
			maxY = p[1]
		}
	}
	return []float64{minX, minY, maxX, maxY}
}

// parentKey encodes a nullable parent element ID as a map key that keeps the
// nil parent distinct from every real ID and sorts it first.
func parentKey(pid *string) string {
	if pid == nil {
		return "\x00"
	}
	return "p:" + *pid
}

// ---- loosely-typed accessors over schemaless elements ----

func stringPtrAt(el map[string]any, path ...string) *string {
	var cur any = el
	for _, part := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	if s, ok := cur.(string); ok {
		return &s
	}
	return nil
}

func intPtrAt(m map[string]any, key string) *int {
	if m == nil {
		return nil
	}
	if n, ok := asInt(m[key]); ok {
		return &n
	}
	return nil
}

func floatPtrAt(m map[string]any, key string) *float64 {
	if m == nil {
		return nil
	}
	if f, ok := asFloat(m[key]); ok {
		return &f
	}
	return nil
}

func strPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

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

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
