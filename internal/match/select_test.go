package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ignacioLiotti/gec-sub001/internal/model"
	"github.com/ignacioLiotti/gec-sub001/internal/template"
)

func TestSelectSheet_PicksBestAverage(t *testing.T) {
	columns := []model.TargetColumn{
		col("item", "Ítem"),
		col("descripcion", "Descripción"),
		col("monto", "Monto"),
	}
	sheets := []model.Sheet{
		{Name: "Resumen", Headers: []string{"Obra", "Contratista", "Fecha"}},
		{Name: "Detalle", Headers: []string{"Item", "Descripcion", "Monto", "Obs"}},
	}

	idx, score := SelectSheet(sheets, columns, Options{Profile: Generic})
	assert.Equal(t, 1, idx)
	assert.InDelta(t, 1.0, score, 0.001)
}

func TestSelectSheet_RejectsBelowThreshold(t *testing.T) {
	columns := []model.TargetColumn{col("item", "Ítem"), col("monto", "Monto")}
	sheets := []model.Sheet{
		{Name: "Otro", Headers: []string{"Provincia", "Departamento"}},
	}
	idx, _ := SelectSheet(sheets, columns, Options{Profile: Generic})
	assert.Equal(t, -1, idx)
}

func TestSelectSheet_NoColumns(t *testing.T) {
	idx, _ := SelectSheet([]model.Sheet{{Name: "X", Headers: []string{"a"}}}, nil, Options{Profile: Generic})
	assert.Equal(t, -1, idx)
}

func itemsDef() *template.Def {
	return template.NewRegistry(template.Defaults()).Lookup("certificado_items")
}

func TestSelectTemplateSheet_NameAndRowBonuses(t *testing.T) {
	def := itemsDef()

	// Only half the template columns find a header, keeping the base score
	// at 0.5 so the bonuses stay observable below the 1.0 clamp.
	rows := make([]map[string]string, 10)
	headers := []string{"Item", "Descripcion", "Cantidad"}

	plain := model.Sheet{Name: "Hoja1", Headers: headers, DataRows: rows}
	marked := model.Sheet{Name: "Detalle de Items", Headers: headers, DataRows: rows}

	plainScore := templateSheetScore(&plain, def)
	markedScore := templateSheetScore(&marked, def)
	assert.Greater(t, markedScore, plainScore)
	assert.LessOrEqual(t, markedScore, 1.0)
}

func TestSelectTemplateSheet_AcceptsBestAboveFloor(t *testing.T) {
	def := itemsDef()
	sheets := []model.Sheet{
		{Name: "Resumen", Headers: []string{"Obra", "Contratista"}, DataRows: make([]map[string]string, 2)},
		{Name: "Items", Headers: []string{"Item", "Descripcion", "Cantidad", "Monto"}, DataRows: make([]map[string]string, 20)},
	}
	idx, score := SelectTemplateSheet(sheets, def)
	assert.Equal(t, 1, idx)
	assert.GreaterOrEqual(t, score, templateSheetThreshold)
}

func TestSelectTemplateSheet_RejectsUnrelated(t *testing.T) {
	def := itemsDef()
	sheets := []model.Sheet{
		{Name: "Padron", Headers: []string{"CUIT", "Razon Social"}, DataRows: nil},
	}
	idx, _ := SelectTemplateSheet(sheets, def)
	assert.Equal(t, -1, idx)
}

func TestTemplateSheetScore_RowRange(t *testing.T) {
	def := itemsDef() // MinRows 3, MaxRows 500
	headers := []string{"Item", "Descripcion", "Cantidad", "Monto"}

	inside := model.Sheet{Name: "Hoja", Headers: headers, DataRows: make([]map[string]string, 5)}
	outside := model.Sheet{Name: "Hoja", Headers: headers, DataRows: make([]map[string]string, 1)}

	assert.InDelta(t, rowCountBonus, templateSheetScore(&inside, def)-templateSheetScore(&outside, def), 0.001)
}
