package template

import "github.com/ignacioLiotti/gec-sub001/internal/model"

// Defaults returns the built-in certificate document family: the single-row
// certificate summary, the row-per-item detail table, and the month-pivoted
// investment curve.
func Defaults() []*Def {
	return []*Def{
		{
			ID:           "certificado_resumen",
			Label:        "Certificado - Resumen",
			Mode:         ModeRowPerRecord,
			SheetMarkers: []string{"resumen", "caratula", "certificado"},
			MinRows:      1,
			MaxRows:      15,
			Columns: []Column{
				{Key: "numero_certificado", Label: "N° Certificado", DataType: model.TypeInteger,
					Keywords: []string{"certificado", "numero", "nro"}, Scope: model.ScopeParent,
					Cell: &CellRef{Row: 2, Col: 1}},
				{Key: "obra", Label: "Obra", DataType: model.TypeText,
					Keywords: []string{"obra", "denominacion"}, Scope: model.ScopeParent,
					Cell: &CellRef{Row: 3, Col: 1}},
				{Key: "contratista", Label: "Contratista", DataType: model.TypeText,
					Keywords: []string{"contratista", "empresa"}, Scope: model.ScopeParent,
					Cell: &CellRef{Row: 4, Col: 1}},
				{Key: "periodo", Label: "Período", DataType: model.TypeDate,
					Keywords: []string{"periodo", "mes"}, Scope: model.ScopeParent},
				{Key: "monto_certificado", Label: "Monto Certificado", DataType: model.TypeNumeric,
					Keywords: []string{"monto", "importe", "total"}, Scope: model.ScopeParent},
				{Key: "avance_acumulado_pct", Label: "Avance Acumulado %", DataType: model.TypeNumeric,
					Keywords: []string{"avance", "acumulado"}, Scope: model.ScopeParent},
			},
		},
		{
			ID:           "certificado_items",
			Label:        "Certificado - Ítems",
			Mode:         ModeRowPerRecord,
			SheetMarkers: []string{"items", "detalle", "computo", "planilla"},
			MinRows:      3,
			MaxRows:      500,
			Columns: []Column{
				{Key: "item", Label: "Ítem", DataType: model.TypeText,
					Keywords: []string{"item", "nro", "designacion"}, Scope: model.ScopeItem},
				{Key: "descripcion", Label: "Descripción", DataType: model.TypeText,
					Keywords: []string{"descripcion", "detalle", "concepto", "designacion"}, Scope: model.ScopeItem},
				{Key: "unidad", Label: "Unidad", DataType: model.TypeText,
					Keywords: []string{"unidad", "un", "um"}, Scope: model.ScopeItem},
				{Key: "cantidad", Label: "Cantidad", DataType: model.TypeNumeric,
					Keywords: []string{"cantidad", "cant"}, Scope: model.ScopeItem},
				{Key: "precio_unitario", Label: "Precio Unitario", DataType: model.TypeNumeric,
					Keywords: []string{"precio", "unitario", "pu"}, Scope: model.ScopeItem},
				{Key: "monto", Label: "Monto", DataType: model.TypeNumeric,
					Keywords: []string{"monto", "importe", "total", "parcial"}, Scope: model.ScopeItem},
			},
		},
		{
			ID:           "certificado_curva",
			Label:        "Certificado - Curva de Inversión",
			Mode:         ModeHorizontalPivot,
			SheetMarkers: []string{"curva", "inversion", "avance", "plan de trabajo"},
			MinRows:      1,
			MaxRows:      60,
			Columns: []Column{
				{Key: "periodo", Label: "Período", DataType: model.TypeText,
					Keywords: []string{"mes", "periodo"}},
				{Key: "avance_mensual_pct", Label: "Avance Mensual %", DataType: model.TypeNumeric,
					Keywords: []string{"avance", "mensual"}},
				{Key: "avance_acumulado_pct", Label: "Avance Acumulado %", DataType: model.TypeNumeric,
					Keywords: []string{"avance", "acumulado"}},
			},
		},
	}
}
