package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// crossRefRe recognizes in-text mentions of sections ("Section 4.2(a)"),
// exhibits ("Exhibit A-1") and articles ("Article IV"). Keywords are
// case-insensitive; the identifier part is not.
var crossRefRe = regexp.MustCompile(
	`\b((?i:Section)\s+\d+(?:\.\d+)*(?:\([a-z]\))?|(?i:Exhibit)\s+[A-Z0-9\-]+|(?i:Article)\s+[IVXLC]+)\b`)

// defTermRe recognizes the conventional legal-drafting pattern for defined
// terms: (the|a|an) followed by a quoted Capitalized Term, with an optional
// trailing close-parenthesis. Straight and typographic quotes both occur in
// extracted text.
var defTermRe = regexp.MustCompile(
	`\b(?:the|a|an)\s*[“"'‘]?([A-Z][A-Za-z0-9 \-/&]{1,100}?)["”’']\s*\)?`)

// maxDefTermWords discards over-greedy captures: a quoted run longer than
// this is almost never a defined term.
const maxDefTermWords = 6

// minSentenceWords guards the definition scanner against spurious fragments.
const minSentenceWords = 2

// Match is one cross-reference mention: the matched label text and its
// character (rune) position in the scanned string. Positions count runes,
// not bytes, so consumers slicing by character index stay correct on text
// with typographic quotes and other multi-byte runes.
type Match struct {
	Text   string
	Offset int
}

// CrossRefs scans text for every cross-reference mention, in order of
// appearance. Empty text yields no matches.
func CrossRefs(text string) []Match {
	if text == "" {
		return nil
	}
	idx := crossRefRe.FindAllStringIndex(text, -1)
	matches := make([]Match, 0, len(idx))
	for _, loc := range idx {
		matches = append(matches, Match{
			Text:   text[loc[0]:loc[1]],
			Offset: utf8.RuneCountInString(text[:loc[0]]),
		})
	}
	return matches
}

// DefTerms scans one sentence for defined-term declarations and returns the
// captured terms. Sentences with fewer than two words are skipped, and
// captures longer than six words are discarded as false positives.
func DefTerms(sentence string) []string {
	if len(strings.Fields(sentence)) < minSentenceWords {
		return nil
	}
	var terms []string
	for _, m := range defTermRe.FindAllStringSubmatch(sentence, -1) {
		term := strings.TrimSpace(m[1])
		if term == "" || len(strings.Fields(term)) > maxDefTermWords {
			continue
		}
		terms = append(terms, term)
	}
	return terms
}

// SplitSentences splits text on sentence terminators ('.', ';', ':')
// followed by whitespace, keeping the terminator with its sentence.
func SplitSentences(text string) []string {
	if text == "" {
		return nil
	}
	var sentences []string
	start := 0
	for i := 0; i < len(text)-1; i++ {
		switch text[i] {
		case '.', ';', ':':
			if text[i+1] == ' ' || text[i+1] == '\t' || text[i+1] == '\n' || text[i+1] == '\r' {
				sentences = append(sentences, text[start:i+1])
				j := i + 1
				for j < len(text) && (text[j] == ' ' || text[j] == '\t' || text[j] == '\n' || text[j] == '\r') {
					j++
				}
				start = j
				i = j - 1
			}
		}
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}
