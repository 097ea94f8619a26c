package match

import (
	"strings"

	"github.com/ignacioLiotti/gec-sub001/internal/model"
	"github.com/ignacioLiotti/gec-sub001/internal/template"
	"github.com/ignacioLiotti/gec-sub001/internal/textnorm"
)

const (
	// templateSheetThreshold is the acceptance floor for template-table
	// sheet selection (after bonuses).
	templateSheetThreshold = 0.2
	// sheetNameBonus rewards sheets whose name carries a marker phrase of
	// the template family.
	sheetNameBonus = 0.2
	// rowCountBonus rewards sheets whose data-row count falls inside the
	// template's characteristic range.
	rowCountBonus = 0.1
)

// SelectSheet picks the best-fitting sheet for a generic table: the average
// over target columns of the best header score, accepted only when that
// average clears the profile threshold. Returns -1 when no sheet qualifies.
func SelectSheet(sheets []model.Sheet, columns []model.TargetColumn, opts Options) (int, float64) {
	bestIdx := -1
	bestAvg := 0.0
	for i := range sheets {
		avg := averageColumnFit(&sheets[i], columns, &opts)
		if avg > bestAvg {
			bestIdx, bestAvg = i, avg
		}
	}
	if bestIdx == -1 || bestAvg < opts.Profile.Threshold {
		return -1, bestAvg
	}
	return bestIdx, bestAvg
}

func averageColumnFit(s *model.Sheet, columns []model.TargetColumn, opts *Options) float64 {
	if len(columns) == 0 {
		return 0
	}
	total := 0.0
	for _, col := range columns {
		best := 0.0
		for _, h := range s.Headers {
			if sc := opts.scoreFor(col, h); sc > best {
				best = sc
			}
		}
		total += best
	}
	return total / float64(len(columns))
}

// SelectTemplateSheet picks the best sheet for a cataloged layout: average
// per-column best template score, plus the sheet-name and row-count bonuses,
// clamped to 1.0 and accepted at the template threshold. Returns -1 when no
// sheet qualifies.
func SelectTemplateSheet(sheets []model.Sheet, def *template.Def) (int, float64) {
	bestIdx := -1
	bestScore := 0.0
	for i := range sheets {
		score := templateSheetScore(&sheets[i], def)
		if score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	if bestIdx == -1 || bestScore < templateSheetThreshold {
		return -1, bestScore
	}
	return bestIdx, bestScore
}

func templateSheetScore(s *model.Sheet, def *template.Def) float64 {
	if len(def.Columns) == 0 {
		return 0
	}

	total := 0.0
	for _, col := range def.Columns {
		best := 0.0
		for _, h := range s.Headers {
			if sc := ScoreTemplate(h, col); sc > best {
				best = sc
			}
		}
		total += best
	}
	score := total / float64(len(def.Columns))

	name := textnorm.Normalize(s.Name)
	for _, marker := range def.SheetMarkers {
		if marker != "" && strings.Contains(name, textnorm.Normalize(marker)) {
			score += sheetNameBonus
			break
		}
	}

	rows := len(s.DataRows)
	if def.MaxRows > 0 && rows >= def.MinRows && rows <= def.MaxRows {
		score += rowCountBonus
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}
