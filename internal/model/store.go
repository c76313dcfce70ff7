// Package model defines the normalized document store: the terminal output
// of the build pipeline. Field names are part of the wire contract;
// downstream consumers (schema inference, graph import) key off them
// verbatim, so renaming any tag is a breaking change.
package model

// Span locates a section fragment on a page, optionally with geometry.
type Span struct {
	Page    *int        `json:"page"`
	BBox    []float64   `json:"bbox,omitempty"`    // [x1,y1,x2,y2]
	Polygon [][]float64 `json:"polygon,omitempty"` // original polygon if present
}

// Section is the normalized hierarchical unit derived from one element.
// ParentElementID identifies the parent element, not a resolved section ID;
// the topology block carries the resolved linkage.
type Section struct {
	SectionID       string  `json:"section_id"`
	ElementID       string  `json:"element_id"`
	ParentElementID *string `json:"parent_element_id"`
	Sequence        int     `json:"sequence"` // 1-based within siblings
	Label           *string `json:"label"`
	Title           *string `json:"title"`
	Level           *int    `json:"level"` // lower = shallower, 0 for Articles/Exhibits

	Text string `json:"text"` // canonical text

	PageStart   *int           `json:"page_start"`
	PageEnd     *int           `json:"page_end"`
	Spans       []Span         `json:"spans"`
	ElementType *string        `json:"element_type"`
	Confidence  *float64       `json:"confidence"`
	RawElement  map[string]any `json:"raw_element"` // verbatim source record

	// Diagnostics. Candidates are every extraction attempt in descending
	// preference; MissingText flags elements with no recognizable text.
	TextSource     *string  `json:"text_source"`
	TextCandidates []string `json:"text_candidates"`
	TextLength     int      `json:"text_length"`
	MissingText    bool     `json:"missing_text"`
}

// Definition is one candidate defined term. Occurrences are independent:
// the same term defined in two sections yields two records.
type Definition struct {
	DefID     string `json:"def_id"`
	Term      string `json:"term"`
	Text      string `json:"text"` // containing sentence
	SectionID string `json:"section_id"`
	Scope     string `json:"scope"` // always "global"; scoping is not resolved
}

// CrossRef is a detected reference mention. Unresolved references keep a nil
// ResolvedSectionID and are never dropped.
type CrossRef struct {
	XrefID            string  `json:"xref_id"`
	SourceSectionID   string  `json:"source_section_id"`
	TargetLabel       string  `json:"target_label"` // raw matched text, e.g. "Section 4.2"
	Offset            int     `json:"offset"`       // character position in source text
	ResolvedSectionID *string `json:"resolved_section_id"`
}

// DocumentHeader identifies the normalized document and its provenance.
type DocumentHeader struct {
	DocID         string  `json:"doc_id"`
	Title         *string `json:"title"`
	Filename      string  `json:"filename"`
	Filetype      string  `json:"filetype"`
	Hash          string  `json:"hash"` // content hash of the element list
	ExtractedWith string  `json:"extracted_with"`
	ExtractedAt   string  `json:"extracted_at"`
	Version       int     `json:"version"`
}

// SectionIndexEntry is the lightweight per-section projection kept in the
// topology block. It carries either full text (include-text mode) or a
// bounded snippet, plus the text's length and content hash.
type SectionIndexEntry struct {
	SectionID       string  `json:"section_id"`
	ElementID       string  `json:"element_id"`
	Sequence        int     `json:"sequence"`
	ParentElementID *string `json:"parent_element_id"`
	Label           *string `json:"label"`
	Title           *string `json:"title"`
	Level           *int    `json:"level"`
	PageStart       *int    `json:"page_start"`
	PageEnd         *int    `json:"page_end"`
	ElementType     *string `json:"element_type"`
	TextLen         int     `json:"text_len"` // character count of the full text
	TextHash        *string `json:"text_hash"` // nil when text is empty
	Text            *string `json:"text,omitempty"`
	TextSnippet     *string `json:"text_snippet"`
}

// RootParentKey is the children_by_parent key for sections without a parent.
// JSON object keys cannot be null, so roots group under the literal "null".
const RootParentKey = "null"

// Topology is the derived parent/child and ordering index over sections,
// independent of the flat section list. ChildrenByParent maps a parent
// section ID (or RootParentKey) to its children ordered by sequence.
type Topology struct {
	ChildrenByParent map[string][]string          `json:"children_by_parent"`
	SectionIndex     map[string]SectionIndexEntry `json:"section_index"`
}

// Provenance records how the store was built.
type Provenance struct {
	Source        string `json:"source"`
	BuiltAt       string `json:"built_at"`
	ElementsCount int    `json:"elements_count"`
	Notes         string `json:"notes"`
}

// Store is the document root: built once per input document in a single
// synchronous pass and immutable thereafter.
type Store struct {
	SchemaVersion   string         `json:"schema_version"`
	Document        DocumentHeader `json:"document"`
	Sections        []Section      `json:"sections"`
	Definitions     []Definition   `json:"definitions"`
	CrossReferences []CrossRef     `json:"cross_references"`
	Topology        Topology       `json:"topology"`
	Provenance      Provenance     `json:"provenance"`
}
