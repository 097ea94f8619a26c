// Package extract converts a matched (sheet, mapping set) pair into output
// rows. The three strategies form a closed variant selected once per table
// from its schema-declared shape: the default row-per-record walk, the
// single-row document summary, and the horizontal month-pivot unpivot.
package extract

import (
	"github.com/ignacioLiotti/gec-sub001/internal/model"
	"github.com/ignacioLiotti/gec-sub001/internal/template"
)

// Kind identifies the extraction strategy of a table.
type Kind int

const (
	KindRowPerRecord Kind = iota
	KindDocumentSummary
	KindHorizontalPivot
)

// String returns the strategy name used in logs.
func (k Kind) String() string {
	switch k {
	case KindDocumentSummary:
		return "document-summary"
	case KindHorizontalPivot:
		return "horizontal-pivot"
	default:
		return "row-per-record"
	}
}

// Select decides the strategy for a table from its declared shape: pivot
// when the cataloged layout says so, document summary for template tables
// with no item-scoped column, row-per-record otherwise. The decision is made
// once per table, never re-derived per call.
func Select(tbl model.TargetTable, def *template.Def, columns []model.TargetColumn) Kind {
	if def != nil && def.Mode == template.ModeHorizontalPivot {
		return KindHorizontalPivot
	}
	if tbl.TemplateProfile != "" && !hasItemScope(columns) {
		return KindDocumentSummary
	}
	return KindRowPerRecord
}

func hasItemScope(columns []model.TargetColumn) bool {
	for _, c := range columns {
		if c.Config.Scope == model.ScopeItem {
			return true
		}
	}
	return false
}

// Input bundles everything a strategy reads.
type Input struct {
	TableID    string
	Sheet      *model.Sheet
	Mappings   []model.ColumnMapping
	Columns    []model.TargetColumn
	Template   *template.Def
	Provenance model.Provenance
}

// Run executes the strategy over the input.
func Run(kind Kind, in Input) []model.ExtractedRow {
	switch kind {
	case KindDocumentSummary:
		return documentSummary(in)
	case KindHorizontalPivot:
		return horizontalPivot(in)
	default:
		return rowPerRecord(in)
	}
}
