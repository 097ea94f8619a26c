package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ignacioLiotti/gec-sub001/internal/model"
	"github.com/ignacioLiotti/gec-sub001/internal/template"
)

func TestSelect_PivotFromTemplateMode(t *testing.T) {
	tbl := model.TargetTable{ID: "t", TemplateProfile: "certificado"}
	def := &template.Def{ID: "certificado_curva", Mode: template.ModeHorizontalPivot}

	assert.Equal(t, KindHorizontalPivot, Select(tbl, def, nil))
}

func TestSelect_SummaryForParentOnlyTemplateTable(t *testing.T) {
	tbl := model.TargetTable{ID: "t", TemplateProfile: "certificado"}
	columns := []model.TargetColumn{
		{FieldKey: "obra", Config: model.ColumnConfig{Scope: model.ScopeParent}},
		{FieldKey: "mes"},
	}

	assert.Equal(t, KindDocumentSummary, Select(tbl, nil, columns))
}

func TestSelect_ItemScopeForcesRowPerRecord(t *testing.T) {
	tbl := model.TargetTable{ID: "t", TemplateProfile: "certificado"}
	columns := []model.TargetColumn{
		{FieldKey: "obra", Config: model.ColumnConfig{Scope: model.ScopeParent}},
		{FieldKey: "item", Config: model.ColumnConfig{Scope: model.ScopeItem}},
	}

	assert.Equal(t, KindRowPerRecord, Select(tbl, nil, columns))
}

func TestSelect_GenericTableIsRowPerRecord(t *testing.T) {
	// A generic table stays row-per-record even when its field keys happen to
	// resemble a pivot layout; the decision reads the declared shape only.
	tbl := model.TargetTable{ID: "t"}
	columns := []model.TargetColumn{
		{FieldKey: "periodo"},
		{FieldKey: "avance_mensual_pct"},
		{FieldKey: "avance_acumulado_pct"},
	}

	assert.Equal(t, KindRowPerRecord, Select(tbl, nil, columns))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "row-per-record", KindRowPerRecord.String())
	assert.Equal(t, "document-summary", KindDocumentSummary.String())
	assert.Equal(t, "horizontal-pivot", KindHorizontalPivot.String())
}

// mapped builds a ColumnMapping assigned to the given header.
func mapped(key string, dt model.DataType, header string) model.ColumnMapping {
	h := header
	return model.ColumnMapping{
		Column:        model.TargetColumn{FieldKey: key, Label: key, DataType: dt},
		MatchedHeader: &h,
		Confidence:    1.0,
	}
}

// unmapped builds a ColumnMapping with no assigned header.
func unmapped(key string, dt model.DataType) model.ColumnMapping {
	return model.ColumnMapping{
		Column: model.TargetColumn{FieldKey: key, Label: key, DataType: dt},
	}
}
