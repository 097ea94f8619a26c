package extract

import (
	"github.com/ignacioLiotti/gec-sub001/internal/coerce"
	"github.com/ignacioLiotti/gec-sub001/internal/model"
)

// documentSummary extracts at most one row describing the whole document
// (e.g. a certificate cover). Per field, precedence is: manual override,
// then the template's fixed cell reference, then the richest data row's
// value under the mapped header, then the first data row with a non-empty
// value there. When several data rows are populated, the one with the most
// non-empty mapped fields is the canonical representative; ties keep the
// first in row order.
func documentSummary(in Input) []model.ExtractedRow {
	richest := richestRow(in)

	data := make(map[string]any, len(in.Mappings))
	for i := range in.Mappings {
		m := &in.Mappings[i]
		raw := summaryValue(in, m, richest)
		if v := coerce.Value(raw, m.Column.DataType); v != nil {
			data[m.Column.FieldKey] = v
		}
	}
	if len(data) == 0 {
		return nil
	}
	return []model.ExtractedRow{{
		TargetTableID: in.TableID,
		Data:          data,
		Provenance:    in.Provenance,
	}}
}

func summaryValue(in Input, m *model.ColumnMapping, richest map[string]string) string {
	if m.ManualOverride != "" {
		return m.ManualOverride
	}
	if in.Template != nil {
		if tc := in.Template.Column(m.Column.FieldKey); tc != nil && tc.Cell != nil {
			if v := in.Sheet.Cell(tc.Cell.Row, tc.Cell.Col); !model.IsBlank(v) {
				return v
			}
		}
	}
	if !m.Mapped() {
		return ""
	}
	if richest != nil {
		if v := richest[m.Header()]; !model.IsBlank(v) {
			return v
		}
	}
	for _, row := range in.Sheet.DataRows {
		if v := row[m.Header()]; !model.IsBlank(v) {
			return v
		}
	}
	return ""
}

// richestRow returns the data row with the most non-empty values under the
// mapped headers, or nil when no row has any.
func richestRow(in Input) map[string]string {
	var best map[string]string
	bestCount := 0
	for _, row := range in.Sheet.DataRows {
		count := 0
		for i := range in.Mappings {
			m := &in.Mappings[i]
			if m.Mapped() && !model.IsBlank(row[m.Header()]) {
				count++
			}
		}
		if count > bestCount {
			best, bestCount = row, count
		}
	}
	return best
}
