package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignacioLiotti/gec-sub001/internal/model"
)

func pivotColumns() []model.TargetColumn {
	return []model.TargetColumn{
		{FieldKey: "periodo", DataType: model.TypeText},
		{FieldKey: "avance_mensual_pct", DataType: model.TypeNumeric},
		{FieldKey: "avance_acumulado_pct", DataType: model.TypeNumeric},
	}
}

func TestHorizontalPivot_UnpivotsCurve(t *testing.T) {
	sheet := &model.Sheet{
		Name:    "Curva",
		Headers: []string{"Concepto", "Mes 1", "Mes 2", "Mes 3"},
		RawRows: [][]string{
			{"Concepto", "Mes 1", "Mes 2", "Mes 3"},
			{"Avance Mensual", "10%", "25,5%", "0,3"},
		},
	}
	in := Input{
		TableID:    "curva",
		Sheet:      sheet,
		Columns:    pivotColumns(),
		Provenance: model.Provenance{SourcePath: "docs/curva.xlsx"},
	}

	rows := horizontalPivot(in)
	require.Len(t, rows, 3)

	assert.Equal(t, "Mes 1", rows[0].Data["periodo"])
	assert.Equal(t, 10.0, rows[0].Data["avance_mensual_pct"])
	assert.Equal(t, 10.0, rows[0].Data["avance_acumulado_pct"])

	assert.Equal(t, 25.5, rows[1].Data["avance_mensual_pct"])
	assert.Equal(t, 35.5, rows[1].Data["avance_acumulado_pct"])

	// Bare fraction without "%" scales to percent.
	assert.Equal(t, 30.0, rows[2].Data["avance_mensual_pct"])
	assert.Equal(t, 65.5, rows[2].Data["avance_acumulado_pct"])

	assert.Equal(t, "docs/curva.xlsx", rows[2].Provenance.SourcePath)
}

func TestHorizontalPivot_CumulativeIsMonotonic(t *testing.T) {
	sheet := &model.Sheet{
		Headers: []string{"", "Mes 1", "Mes 2", "Mes 3", "Mes 4"},
		RawRows: [][]string{
			{"Avance Mensual (%)", "5", "", "12,5", "x"},
		},
	}
	in := Input{TableID: "curva", Sheet: sheet, Columns: pivotColumns()}

	rows := horizontalPivot(in)
	require.Len(t, rows, 4)
	prev := 0.0
	for _, r := range rows {
		cum := r.Data["avance_acumulado_pct"].(float64)
		assert.GreaterOrEqual(t, cum, prev)
		prev = cum
	}
	// Blank and unparseable cells contribute zero, not a gap in the series.
	assert.Equal(t, 5.0, rows[1].Data["avance_acumulado_pct"])
	assert.Equal(t, 17.5, rows[3].Data["avance_acumulado_pct"])
}

func TestHorizontalPivot_NoMarkerRowNoRows(t *testing.T) {
	sheet := &model.Sheet{
		Headers: []string{"Concepto", "Mes 1"},
		RawRows: [][]string{
			{"Concepto", "Mes 1"},
			{"Inversion Prevista", "10%"},
		},
	}
	in := Input{TableID: "curva", Sheet: sheet, Columns: pivotColumns()}

	assert.Empty(t, horizontalPivot(in))
}

func TestHorizontalPivot_MissingRequiredFieldsNoRows(t *testing.T) {
	sheet := &model.Sheet{
		Headers: []string{"Concepto", "Mes 1"},
		RawRows: [][]string{{"Avance Mensual", "10%"}},
	}
	in := Input{
		TableID: "curva",
		Sheet:   sheet,
		Columns: []model.TargetColumn{{FieldKey: "periodo"}},
	}

	assert.Empty(t, horizontalPivot(in))
}

func TestHorizontalPivot_MonthPerRowCurve(t *testing.T) {
	sheet := &model.Sheet{
		Name:    "Curva",
		Headers: []string{"Mes", "Plan %", "Real %", "Obs"},
		RawRows: [][]string{
			{"Avance", "", "", ""},
			{"Mes", "Plan %", "Real %", "Obs"},
			{"Mes 1", "10%", "8%", "-"},
			{"Mes 2", "25,5%", "20%", ""},
			{"Mes 3", "40%", "35%", "ok"},
		},
		DataRows: []map[string]string{
			{"Mes": "Mes 1", "Plan %": "10%", "Real %": "8%", "Obs": "-"},
			{"Mes": "Mes 2", "Plan %": "25,5%", "Real %": "20%", "Obs": ""},
			{"Mes": "Mes 3", "Plan %": "40%", "Real %": "35%", "Obs": "ok"},
		},
	}
	in := Input{TableID: "curva", Sheet: sheet, Columns: pivotColumns()}

	rows := horizontalPivot(in)
	require.Len(t, rows, 3)

	assert.Equal(t, "Mes 1", rows[0].Data["periodo"])
	// Leftmost percentage column feeds the monthly value.
	assert.Equal(t, 10.0, rows[0].Data["avance_mensual_pct"])
	assert.Equal(t, 35.5, rows[1].Data["avance_acumulado_pct"])
	assert.Equal(t, 75.5, rows[2].Data["avance_acumulado_pct"])

	prev := 0.0
	for _, r := range rows {
		cum := r.Data["avance_acumulado_pct"].(float64)
		assert.GreaterOrEqual(t, cum, prev)
		prev = cum
	}
}

func TestHorizontalPivot_MonthPerRowUsesMappedColumn(t *testing.T) {
	sheet := &model.Sheet{
		Headers: []string{"Periodo", "Certificado %", "Avance Mensual"},
		DataRows: []map[string]string{
			{"Periodo": "Enero", "Certificado %": "50%", "Avance Mensual": "5"},
			{"Periodo": "Febrero", "Certificado %": "50%", "Avance Mensual": "7,5"},
		},
	}
	in := Input{
		TableID: "curva",
		Sheet:   sheet,
		Columns: pivotColumns(),
		Mappings: []model.ColumnMapping{
			mapped("periodo", model.TypeText, "Periodo"),
			mapped("avance_mensual_pct", model.TypeNumeric, "Avance Mensual"),
		},
	}

	rows := horizontalPivot(in)
	require.Len(t, rows, 2)
	assert.Equal(t, "Enero", rows[0].Data["periodo"])
	assert.Equal(t, 5.0, rows[0].Data["avance_mensual_pct"])
	assert.Equal(t, 12.5, rows[1].Data["avance_acumulado_pct"])
}

func TestHorizontalPivot_MonthPerRowNeedsPeriodColumn(t *testing.T) {
	sheet := &model.Sheet{
		Headers: []string{"Concepto", "Valor"},
		DataRows: []map[string]string{
			{"Concepto": "Hormigón", "Valor": "10%"},
		},
	}
	in := Input{TableID: "curva", Sheet: sheet, Columns: pivotColumns()}

	assert.Empty(t, horizontalPivot(in))
}

func TestHorizontalPivot_IgnoresNonMonthHeaders(t *testing.T) {
	sheet := &model.Sheet{
		Headers: []string{"Concepto", "Mes 1", "Total", "MES 2"},
		RawRows: [][]string{
			{"Avance Mensual", "40", "100", "60"},
		},
	}
	in := Input{TableID: "curva", Sheet: sheet, Columns: pivotColumns()}

	rows := horizontalPivot(in)
	require.Len(t, rows, 2)
	assert.Equal(t, "Mes 1", rows[0].Data["periodo"])
	assert.Equal(t, "MES 2", rows[1].Data["periodo"])
	assert.Equal(t, 100.0, rows[1].Data["avance_acumulado_pct"])
}
