package extract

import (
	"github.com/ignacioLiotti/gec-sub001/internal/coerce"
	"github.com/ignacioLiotti/gec-sub001/internal/model"
)

// rowPerRecord emits one output row per surviving data row. Mapped columns
// read the row's cell; unmapped columns with a manual override use the
// override. Values that coerce to nil are dropped, and a row survives only
// when at least one field remains.
func rowPerRecord(in Input) []model.ExtractedRow {
	var out []model.ExtractedRow
	for _, row := range in.Sheet.DataRows {
		data := make(map[string]any, len(in.Mappings))
		for i := range in.Mappings {
			m := &in.Mappings[i]
			var raw string
			switch {
			case m.Mapped():
				raw = row[m.Header()]
			case m.ManualOverride != "":
				raw = m.ManualOverride
			default:
				continue
			}
			if v := coerce.Value(raw, m.Column.DataType); v != nil {
				data[m.Column.FieldKey] = v
			}
		}
		if len(data) == 0 {
			continue
		}
		out = append(out, model.ExtractedRow{
			TargetTableID: in.TableID,
			Data:          data,
			Provenance:    in.Provenance,
		})
	}
	return out
}
