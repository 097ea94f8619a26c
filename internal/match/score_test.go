package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ignacioLiotti/gec-sub001/internal/model"
	"github.com/ignacioLiotti/gec-sub001/internal/template"
)

func col(key, label string, keywords ...string) model.TargetColumn {
	return model.TargetColumn{
		FieldKey: key,
		Label:    label,
		DataType: model.TypeText,
		Config:   model.ColumnConfig{Keywords: keywords},
	}
}

func TestScore_ExactLabel(t *testing.T) {
	c := col("monto_total", "Monto Total")
	assert.Equal(t, 1.0, Score("Monto Total", c))
	assert.Equal(t, 1.0, Score("  MONTO  TOTAL ", c), "normalization folds case and spacing")
	assert.Equal(t, 1.0, Score("Monto Tótal", c), "normalization folds accents")
}

func TestScore_ExactFieldKey(t *testing.T) {
	c := col("avance_acumulado_pct", "Avance Acumulado (%)")
	assert.Equal(t, 0.95, Score("avance acumulado pct", c))
}

func TestScore_KeywordOverlap(t *testing.T) {
	c := col("monto", "Monto", "importe", "total")
	// Keyword set: {monto, importe, total}; header hits one of three.
	s := Score("Importe Certificado", c)
	assert.InDelta(t, 1.0/3.0*0.9, s, 0.001)
	assert.LessOrEqual(t, s, 0.9)
}

func TestScore_Unrelated(t *testing.T) {
	c := col("contratista", "Contratista", "empresa")
	assert.Equal(t, 0.0, Score("Provincia", c))
	assert.Equal(t, 0.0, Score("", c))
	assert.Equal(t, 0.0, Score("***", c))
}

func TestScoreTemplate_ExactTiers(t *testing.T) {
	tc := template.Column{Key: "precio_unitario", Label: "Precio Unitario", Keywords: []string{"precio", "unitario"}}
	assert.Equal(t, 1.0, ScoreTemplate("Precio Unitario", tc))
	assert.Equal(t, 0.95, ScoreTemplate("precio unitario", template.Column{Key: "precio_unitario", Label: "P.U."}))
}

func TestScoreTemplate_TokenFractionBands(t *testing.T) {
	tc := template.Column{Key: "monto", Label: "Monto", Keywords: []string{"monto", "importe", "total", "parcial"}}

	// 2 of 4 keywords match → fraction 0.5 < 0.6 → weak band.
	weak := ScoreTemplate("Monto Total Certificado", tc)
	assert.InDelta(t, 0.5*0.6, weak, 0.001)

	// 3 of 4 → fraction 0.75 ≥ 0.6 → strong band.
	strong := ScoreTemplate("Importe Total Parcial", tc)
	assert.InDelta(t, 0.7+0.75*0.2, strong, 0.001)
	assert.Greater(t, strong, weak)
}

func TestScoreTemplate_PartialTokenMatch(t *testing.T) {
	tc := template.Column{Key: "cantidad", Label: "Cantidad", Keywords: []string{"cantidad", "cant"}}
	// "cant." token partially matches both keywords ("cant" ⊂ "cantidad").
	s := ScoreTemplate("cant", tc)
	assert.Greater(t, s, 0.0)
}

func TestProfileBoost(t *testing.T) {
	money := col("monto_certificado", "Monto Certificado")

	assert.Equal(t, 0.0, Generic.Boost(money, "Importe"))
	assert.Equal(t, 0.2, Certificate.Boost(money, "Importe del mes"))
	assert.Equal(t, 0.0, Certificate.Boost(money, "Provincia"))

	free := col("observaciones_generales", "Observaciones Generales")
	assert.Equal(t, 0.2, Certificate.Boost(free, "Detalle"))
}

func TestScoreFor_BoostCappedAtOne(t *testing.T) {
	opts := Options{Profile: Certificate}
	money := col("monto_total", "Monto Total")
	assert.Equal(t, 1.0, opts.scoreFor(money, "Monto Total"))
}

func TestForTable(t *testing.T) {
	assert.Equal(t, "generic", ForTable(model.TargetTable{}).Name)
	assert.Equal(t, "certificado", ForTable(model.TargetTable{TemplateProfile: "certificado_items"}).Name)
}
