package match

import (
	"strings"

	"github.com/ignacioLiotti/gec-sub001/internal/model"
	"github.com/ignacioLiotti/gec-sub001/internal/template"
	"github.com/ignacioLiotti/gec-sub001/internal/textnorm"
)

// Options configures a mapping build.
type Options struct {
	Profile Profile
	// Template supplies the cataloged layout for template tables; its
	// column definitions take over scoring for matching field keys.
	Template *template.Def
	// Overrides carries caller-supplied literal values per field key.
	Overrides map[string]string
}

// scoreFor applies the template scorer when the column belongs to a
// cataloged layout, the generic scorer otherwise, plus the profile boost.
func (o *Options) scoreFor(col model.TargetColumn, header string) float64 {
	var s float64
	if o.Template != nil {
		if tc := o.Template.Column(col.FieldKey); tc != nil {
			s = ScoreTemplate(header, *tc)
		} else {
			s = Score(header, col)
		}
	} else {
		s = Score(header, col)
	}
	s += o.Profile.Boost(col, header)
	if s > 1.0 {
		s = 1.0
	}
	return s
}

// BuildMappings assigns headers to columns greedily in schema order: each
// column takes the highest-scoring header not yet consumed, provided the
// score clears the profile threshold. The assignment is intentionally
// order-dependent; a column defined earlier in the schema wins ties. Headers
// already consumed are tracked in an explicit set.
func BuildMappings(columns []model.TargetColumn, headers []string, opts Options) []model.ColumnMapping {
	used := make(map[string]struct{}, len(headers))
	mappings := make([]model.ColumnMapping, 0, len(columns))

	for _, col := range columns {
		bestHeader := ""
		bestScore := 0.0
		for _, h := range headers {
			if h == "" {
				continue
			}
			if _, taken := used[h]; taken {
				continue
			}
			if s := opts.scoreFor(col, h); s > bestScore {
				bestHeader, bestScore = h, s
			}
		}

		m := model.ColumnMapping{Column: col, ManualOverride: opts.Overrides[col.FieldKey]}
		if bestHeader != "" && bestScore >= opts.Profile.Threshold {
			h := bestHeader
			m.MatchedHeader = &h
			m.Confidence = bestScore
			used[h] = struct{}{}
		}
		mappings = append(mappings, m)
	}
	return mappings
}

// ExplicitMappings builds a mapping set from a caller-supplied fieldKey →
// header assignment, bypassing scoring entirely. Unknown field keys are
// ignored; assigned headers carry full confidence.
func ExplicitMappings(columns []model.TargetColumn, explicit map[string]string, overrides map[string]string) []model.ColumnMapping {
	mappings := make([]model.ColumnMapping, 0, len(columns))
	for _, col := range columns {
		m := model.ColumnMapping{Column: col, ManualOverride: overrides[col.FieldKey]}
		if h, ok := explicit[col.FieldKey]; ok && h != "" {
			hh := h
			m.MatchedHeader = &hh
			m.Confidence = 1.0
		}
		mappings = append(mappings, m)
	}
	return mappings
}

// PermissiveMappings is the last-resort fallback: for each column, the first
// unused header whose normalized form equals, contains, or is contained by
// the column's normalized key or label, ignoring thresholds entirely.
func PermissiveMappings(columns []model.TargetColumn, headers []string, overrides map[string]string) []model.ColumnMapping {
	used := make(map[string]struct{}, len(headers))
	mappings := make([]model.ColumnMapping, 0, len(columns))

	for _, col := range columns {
		key := textnorm.Normalize(strings.ReplaceAll(col.FieldKey, "_", " "))
		label := textnorm.Normalize(col.Label)

		m := model.ColumnMapping{Column: col, ManualOverride: overrides[col.FieldKey]}
		for _, h := range headers {
			if h == "" {
				continue
			}
			if _, taken := used[h]; taken {
				continue
			}
			n := textnorm.Normalize(h)
			if n == "" {
				continue
			}
			if looseMatch(n, key) || looseMatch(n, label) {
				hh := h
				m.MatchedHeader = &hh
				m.Confidence = CertificateThreshold
				used[h] = struct{}{}
				break
			}
		}
		mappings = append(mappings, m)
	}
	return mappings
}

func looseMatch(header, target string) bool {
	if target == "" {
		return false
	}
	return header == target || strings.Contains(header, target) || strings.Contains(target, header)
}
