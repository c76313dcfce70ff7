// Package graph renders a Neo4j import script from a built store. The
// output is plain Cypher, one statement per line, suitable for cypher-shell
// or the browser console without any driver dependency in this binary.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dkrasnov/lexstore/internal/model"
)

// Schema statements run before any data. IF NOT EXISTS makes reruns safe.
var schemaStatements = []string{
	"CREATE CONSTRAINT doc_id_unique IF NOT EXISTS FOR (d:Document) REQUIRE d.doc_id IS UNIQUE",
	"CREATE CONSTRAINT sec_id_unique IF NOT EXISTS FOR (s:Section) REQUIRE s.section_id IS UNIQUE",
	"CREATE CONSTRAINT def_id_unique IF NOT EXISTS FOR (d:Definition) REQUIRE d.def_id IS UNIQUE",
	"CREATE FULLTEXT INDEX sectionTextIdx IF NOT EXISTS FOR (s:Section) ON EACH [s.text, s.title, s.label]",
}

// Script renders the full import for one store. Statements are ordered so
// every MATCH finds nodes merged by an earlier statement, and the output is
// byte-identical across runs for the same store.
func Script(store *model.Store) string {
	var out strings.Builder
	for _, stmt := range schemaStatements {
		out.WriteString(stmt)
		out.WriteString(";\n")
	}

	doc := store.Document
	fmt.Fprintf(&out,
		"MERGE (d:Document {doc_id: %s}) SET d += {title: %s, filename: %s, filetype: %s, hash: %s, extracted_with: %s, extracted_at: %s, version: %d};\n",
		quote(doc.DocID), strVal(doc.Title), quote(doc.Filename), quote(doc.Filetype),
		quote(doc.Hash), quote(doc.ExtractedWith), quote(doc.ExtractedAt), doc.Version)

	for _, sec := range store.Sections {
		props := []string{
			"element_id: " + quote(sec.ElementID),
			"title: " + strVal(sec.Title),
			"label: " + strVal(sec.Label),
			"level: " + intVal(sec.Level),
			"text: " + quote(sec.Text),
			"page_start: " + intVal(sec.PageStart),
			"page_end: " + intVal(sec.PageEnd),
			"element_type: " + strVal(sec.ElementType),
			fmt.Sprintf("text_length: %d", sec.TextLength),
			fmt.Sprintf("missing_text: %t", sec.MissingText),
		}
		fmt.Fprintf(&out,
			"MATCH (d:Document {doc_id: %s}) MERGE (s:Section {section_id: %s}) SET s += {%s} MERGE (d)-[:HAS_SECTION]->(s);\n",
			quote(doc.DocID), quote(sec.SectionID), strings.Join(props, ", "))
	}

	parents := sortedParents(store.Topology.ChildrenByParent)
	for _, parent := range parents {
		if parent == model.RootParentKey {
			continue
		}
		for _, child := range store.Topology.ChildrenByParent[parent] {
			fmt.Fprintf(&out,
				"MATCH (c:Section {section_id: %s}), (p:Section {section_id: %s}) MERGE (c)-[:PARENT_SECTION]->(p);\n",
				quote(child), quote(parent))
		}
	}

	// Sibling ordering: consecutive pairs within each parent group,
	// root group included.
	for _, parent := range parents {
		ids := store.Topology.ChildrenByParent[parent]
		for i := 1; i < len(ids); i++ {
			fmt.Fprintf(&out,
				"MATCH (a:Section {section_id: %s}), (b:Section {section_id: %s}) MERGE (a)-[:NEXT_SECTION]->(b);\n",
				quote(ids[i-1]), quote(ids[i]))
		}
	}

	for _, def := range store.Definitions {
		fmt.Fprintf(&out, "MERGE (df:Definition {def_id: %s}) SET df.term = %s, df.text = %s;\n",
			quote(def.DefID), quote(def.Term), quote(def.Text))
		fmt.Fprintf(&out,
			"MATCH (sec:Section {section_id: %s}), (df:Definition {def_id: %s}) MERGE (sec)-[:DEFINES]->(df);\n",
			quote(def.SectionID), quote(def.DefID))
	}

	// Unresolved references have no target node to point at.
	for _, xr := range store.CrossReferences {
		if xr.ResolvedSectionID == nil {
			continue
		}
		fmt.Fprintf(&out,
			"MATCH (s:Section {section_id: %s}), (t:Section {section_id: %s}) MERGE (s)-[:REFERS_TO]->(t);\n",
			quote(xr.SourceSectionID), quote(*xr.ResolvedSectionID))
	}
	return out.String()
}

func sortedParents(children map[string][]string) []string {
	keys := make([]string, 0, len(children))
	for k := range children {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// quote renders a Cypher single-quoted string literal.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)
	return "'" + r.Replace(s) + "'"
}

func strVal(p *string) string {
	if p == nil {
		return "null"
	}
	return quote(*p)
}

func intVal(p *int) string {
	if p == nil {
		return "null"
	}
	return fmt.Sprintf("%d", *p)
}
