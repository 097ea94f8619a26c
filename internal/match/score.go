// Package match scores source headers against target schema columns and
// performs the greedy one-to-one assignment that produces a mapping set, plus
// sheet selection across a workbook's candidate sheets.
package match

import (
	"strings"

	"github.com/ignacioLiotti/gec-sub001/internal/model"
	"github.com/ignacioLiotti/gec-sub001/internal/template"
	"github.com/ignacioLiotti/gec-sub001/internal/textnorm"
)

const (
	// exactLabelScore / exactKeyScore are the two exact-match tiers.
	exactLabelScore = 1.0
	exactKeyScore   = 0.95
	// keywordScoreCap bounds keyword-overlap scores below the exact tiers.
	keywordScoreCap = 0.9
	// tokenStrongFraction: a template-column header whose keyword tokens
	// match at least this fraction jumps to the strong-score band.
	tokenStrongFraction = 0.6
)

// Score rates how well a source header fits a target column, in [0,1].
// Exact normalized label match wins outright, then exact field-key match;
// otherwise keyword containment overlap.
func Score(header string, col model.TargetColumn) float64 {
	h := textnorm.Normalize(header)
	if h == "" {
		return 0
	}

	if h == textnorm.Normalize(col.Label) {
		return exactLabelScore
	}
	if h == textnorm.Normalize(strings.ReplaceAll(col.FieldKey, "_", " ")) {
		return exactKeyScore
	}

	keywords := columnKeywords(col)
	if len(keywords) == 0 {
		return 0
	}
	matches := 0
	for _, kw := range keywords {
		if strings.Contains(h, kw) || strings.Contains(kw, h) {
			matches++
		}
	}
	if matches == 0 {
		return 0
	}
	s := float64(matches) / float64(len(keywords)) * keywordScoreCap
	if s > keywordScoreCap {
		s = keywordScoreCap
	}
	return s
}

// ScoreTemplate rates a header against a cataloged template column. The
// exact tiers match Score; the fuzzy tier counts keyword tokens partially
// matching any header token.
func ScoreTemplate(header string, col template.Column) float64 {
	h := textnorm.Normalize(header)
	if h == "" {
		return 0
	}

	if h == textnorm.Normalize(col.Label) {
		return exactLabelScore
	}
	if h == textnorm.Normalize(strings.ReplaceAll(col.Key, "_", " ")) {
		return exactKeyScore
	}

	keywords := templateKeywords(col)
	if len(keywords) == 0 {
		return 0
	}
	tokens := strings.Fields(h)
	matches := 0
	for _, kw := range keywords {
		for _, tok := range tokens {
			if strings.Contains(tok, kw) || strings.Contains(kw, tok) {
				matches++
				break
			}
		}
	}

	fraction := float64(matches) / float64(len(keywords))
	if fraction >= tokenStrongFraction {
		return 0.7 + fraction*0.2
	}
	return fraction * 0.6
}

// columnKeywords builds the normalized keyword set for a target column from
// its label, field key and configured keywords.
func columnKeywords(col model.TargetColumn) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(s string) {
		n := textnorm.Normalize(s)
		if n == "" {
			return
		}
		if _, ok := seen[n]; ok {
			return
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	add(col.Label)
	add(strings.ReplaceAll(col.FieldKey, "_", " "))
	for _, kw := range col.Config.Keywords {
		add(kw)
	}
	return out
}

func templateKeywords(col template.Column) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(s string) {
		n := textnorm.Normalize(s)
		if n == "" {
			return
		}
		if _, ok := seen[n]; ok {
			return
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	for _, kw := range col.Keywords {
		add(kw)
	}
	if len(out) == 0 {
		add(col.Label)
		add(strings.ReplaceAll(col.Key, "_", " "))
	}
	return out
}
