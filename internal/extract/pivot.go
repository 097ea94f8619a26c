package extract

import (
	"math"
	"regexp"
	"strings"

	"github.com/ignacioLiotti/gec-sub001/internal/coerce"
	"github.com/ignacioLiotti/gec-sub001/internal/model"
	"github.com/ignacioLiotti/gec-sub001/internal/textnorm"
)

// Field keys a pivot-shaped table must declare for unpivoting to apply.
const (
	fieldPeriod        = "periodo"
	fieldMonthlyPct    = "avance_mensual_pct"
	fieldCumulativePct = "avance_acumulado_pct"
)

// Marker tokens that identify the progress row inside an investment curve.
const (
	markerMonthly  = "mensual"
	markerProgress = "avance"
)

// monthHeaderPattern matches normalized "mes N" period headers.
var monthHeaderPattern = regexp.MustCompile(`^mes ?\d+$`)

// horizontalPivot turns an investment curve into one row per month. The
// primary layout is month-per-column: a marker row read across "Mes N"
// headers. Curves exported month-per-row (a period column plus percentage
// columns) have no month headers at all and are handled by monthRows.
// Produces nothing when the required schema fields are absent.
func horizontalPivot(in Input) []model.ExtractedRow {
	if !hasFields(in.Columns, fieldPeriod, fieldMonthlyPct, fieldCumulativePct) {
		return nil
	}
	if !hasMonthHeaders(in.Sheet.Headers) {
		return monthRows(in)
	}
	return monthColumns(in)
}

// monthColumns walks the "Mes N" headers in sheet order, reading the row
// whose concatenated text carries both the monthly and progress markers.
// Produces nothing when the marker row is absent.
func monthColumns(in Input) []model.ExtractedRow {
	marker := markerRow(in.Sheet)
	if marker == nil {
		return nil
	}

	var out []model.ExtractedRow
	cumulative := 0.0
	for idx, h := range in.Sheet.Headers {
		if !monthHeaderPattern.MatchString(textnorm.Normalize(h)) {
			continue
		}
		var raw string
		if idx < len(marker) {
			raw = marker[idx]
		}
		monthly, ok := coerce.Percent(raw)
		if !ok {
			monthly = 0
		}
		cumulative = math.Round((cumulative+monthly)*100) / 100
		out = append(out, model.ExtractedRow{
			TargetTableID: in.TableID,
			Data: map[string]any{
				fieldPeriod:        h,
				fieldMonthlyPct:    monthly,
				fieldCumulativePct: cumulative,
			},
			Provenance: in.Provenance,
		})
	}
	return out
}

// monthRows unpivots nothing: the curve already has one month per row. The
// period column comes from the mapping set or a "mes"/"periodo" header; the
// monthly percentage from its mapping or, when matching left it unassigned,
// the leftmost column whose cells parse as percentages. The cumulative is a
// running total, same as the horizontal path.
func monthRows(in Input) []model.ExtractedRow {
	period := mappedHeader(in.Mappings, fieldPeriod)
	if period == "" {
		period = headerWithToken(in.Sheet.Headers, "mes", "periodo")
	}
	if period == "" {
		return nil
	}

	monthly := mappedHeader(in.Mappings, fieldMonthlyPct)
	if monthly == "" || monthly == period {
		monthly = percentColumn(in.Sheet, period)
	}
	if monthly == "" {
		return nil
	}

	var out []model.ExtractedRow
	cumulative := 0.0
	for _, row := range in.Sheet.DataRows {
		p := strings.TrimSpace(row[period])
		m, ok := coerce.Percent(row[monthly])
		if p == "" && !ok {
			continue
		}
		if !ok {
			m = 0
		}
		cumulative = math.Round((cumulative+m)*100) / 100
		out = append(out, model.ExtractedRow{
			TargetTableID: in.TableID,
			Data: map[string]any{
				fieldPeriod:        p,
				fieldMonthlyPct:    m,
				fieldCumulativePct: cumulative,
			},
			Provenance: in.Provenance,
		})
	}
	return out
}

func hasMonthHeaders(headers []string) bool {
	for _, h := range headers {
		if monthHeaderPattern.MatchString(textnorm.Normalize(h)) {
			return true
		}
	}
	return false
}

func mappedHeader(mappings []model.ColumnMapping, key string) string {
	for i := range mappings {
		if mappings[i].Column.FieldKey == key && mappings[i].Mapped() {
			return mappings[i].Header()
		}
	}
	return ""
}

// headerWithToken returns the first header one of whose normalized tokens
// equals a wanted token.
func headerWithToken(headers []string, wanted ...string) string {
	for _, h := range headers {
		for _, tok := range strings.Fields(textnorm.Normalize(h)) {
			for _, w := range wanted {
				if tok == w {
					return h
				}
			}
		}
	}
	return ""
}

// percentColumn picks the leftmost non-period column whose non-blank cells
// mostly parse as percentages.
func percentColumn(s *model.Sheet, period string) string {
	for _, h := range s.Headers {
		if h == "" || h == period {
			continue
		}
		parsed, nonBlank := 0, 0
		for _, row := range s.DataRows {
			v := strings.TrimSpace(row[h])
			if v == "" || v == "-" {
				continue
			}
			nonBlank++
			if _, ok := coerce.Percent(v); ok {
				parsed++
			}
		}
		if parsed > 0 && parsed*2 >= nonBlank {
			return h
		}
	}
	return ""
}

// markerRow finds the raw row carrying the monthly-progress markers.
func markerRow(s *model.Sheet) []string {
	for _, row := range s.RawRows {
		text := textnorm.Normalize(strings.Join(row, " "))
		if strings.Contains(text, markerMonthly) && strings.Contains(text, markerProgress) {
			return row
		}
	}
	return nil
}

func hasFields(columns []model.TargetColumn, keys ...string) bool {
	have := make(map[string]bool, len(columns))
	for _, c := range columns {
		have[c.FieldKey] = true
	}
	for _, k := range keys {
		if !have[k] {
			return false
		}
	}
	return true
}
