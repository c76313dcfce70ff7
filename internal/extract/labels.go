package extract

import (
	"regexp"
	"strings"
)

// Structural label rules, tried in order; first match wins.
var (
	// "ARTICLE II Representations", "Article 4 Covenants"
	articleLabelRe = regexp.MustCompile(`^(?i)(ARTICLE\s+(?:[IVXLC]+|\d+))\s+(.+)$`)
	// "2.1(a) Indemnification", "3 Closing"
	sectionLabelRe = regexp.MustCompile(`^((\d+(?:\.\d+)*)(?:\([a-z]\))?)\s+(.+)$`)
	// "Exhibit A-1 Form of Agreement", "Exhibit B"
	exhibitLabelRe = regexp.MustCompile(`^(?i)(Exhibit\s+[A-Z0-9\-]+)\s*(.*)$`)
)

// LabelInfo is the result of structural label recognition. Empty Label/Title
// mean no pattern matched; a nil Level means no level is known (zero is a
// meaningful level, so absence needs a pointer).
type LabelInfo struct {
	Label string
	Title string
	Level *int
}

func intPtr(n int) *int { return &n }

// ParseLabel recognizes a structural label, human title, and nesting level
// at the start of text. levelHint is an externally supplied layout-derived
// level: when present it always overrides the inferred value, because
// upstream extractors sometimes know the real nesting better than a text
// heuristic; pattern-derived label and title are still kept as metadata.
//
// Rules, first match wins:
//  1. ARTICLE + roman numeral or digit + title: level 0.
//  2. Dotted numeric label, optional lettered sub-clause, + title:
//     level = dot count + 1, plus 1 for a parenthetical sub-clause.
//  3. Exhibit + alphanumeric identifier, optional title: level 0.
//  4. No match: label and title absent, level is the hint if any.
func ParseLabel(text string, levelHint *int) LabelInfo {
	t := strings.TrimSpace(text)
	if t == "" {
		return LabelInfo{Level: levelHint}
	}

	if m := articleLabelRe.FindStringSubmatch(t); m != nil {
		return LabelInfo{
			Label: strings.TrimSpace(m[1]),
			Title: strings.TrimSpace(m[2]),
			Level: pickLevel(levelHint, 0),
		}
	}

	if m := sectionLabelRe.FindStringSubmatch(t); m != nil {
		label := strings.TrimSpace(m[1])
		inferred := strings.Count(label, ".") + 1
		if strings.Contains(label, "(") {
			inferred++
		}
		return LabelInfo{
			Label: label,
			Title: strings.TrimSpace(m[3]),
			Level: pickLevel(levelHint, inferred),
		}
	}

	if m := exhibitLabelRe.FindStringSubmatch(t); m != nil {
		return LabelInfo{
			Label: strings.TrimSpace(m[1]),
			Title: strings.TrimSpace(m[2]),
			Level: pickLevel(levelHint, 0),
		}
	}

	return LabelInfo{Level: levelHint}
}

func pickLevel(hint *int, inferred int) *int {
	if hint != nil {
		return hint
	}
	return intPtr(inferred)
}
