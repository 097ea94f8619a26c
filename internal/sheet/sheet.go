// Package sheet turns raw workbooks and CSV exports into the uniform Sheet
// representation the rest of the engine works on: merge ranges resolved,
// header row(s) detected, data rows materialized as header-keyed records.
package sheet

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ignacioLiotti/gec-sub001/internal/model"
)

// ErrNoUsableSheets reports a workbook in which no sheet produced headers.
// This is a client error: the file parsed but holds nothing tabular.
var ErrNoUsableSheets = eris.New("sheet: no usable sheets in workbook")

// Parse dispatches on the file extension. Supported: .csv, .xlsx, .xls.
func Parse(fileName string, data []byte) ([]model.Sheet, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return FromCSV(fileName, data)
	case ".xlsx", ".xls":
		return FromWorkbook(data)
	default:
		return nil, eris.Errorf("sheet: unsupported file extension %q", filepath.Ext(fileName))
	}
}

// FromWorkbook normalizes every usable sheet of an XLSX workbook.
func FromWorkbook(data []byte) ([]model.Sheet, error) {
	grids, err := workbookGrids(data)
	if err != nil {
		return nil, err
	}

	log := zap.L().With(zap.String("component", "sheet"))
	sheets := make([]model.Sheet, 0, len(grids))
	for _, g := range grids {
		s, ok := normalize(g)
		if !ok {
			log.Debug("skipping empty sheet", zap.String("sheet", g.name))
			continue
		}
		sheets = append(sheets, s)
	}
	if len(sheets) == 0 {
		return nil, ErrNoUsableSheets
	}
	return sheets, nil
}

// FromCSV normalizes CSV text as one implicit sheet. The first record is the
// header row, everything after it data.
func FromCSV(name string, data []byte) ([]model.Sheet, error) {
	g, err := csvGrid(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)), data)
	if err != nil {
		return nil, err
	}
	if len(g.cells) == 0 {
		return nil, ErrNoUsableSheets
	}

	headers := singleHeaders(g.cells[0])
	s := model.Sheet{
		Name:     g.name,
		Headers:  headers,
		RawRows:  g.cells,
		DataRows: materialize(headers, g.cells[1:]),
	}
	return []model.Sheet{s}, nil
}

// normalize runs header detection and row materialization on one grid.
func normalize(g grid) (model.Sheet, bool) {
	headerIdx, titleIdx, ok := detectHeader(g.cells)
	if !ok {
		return model.Sheet{}, false
	}

	var headers []string
	if titleIdx >= 0 {
		headers = compoundHeaders(g.cells[titleIdx], g.cells[headerIdx])
	} else {
		headers = singleHeaders(g.cells[headerIdx])
	}

	return model.Sheet{
		Name:     g.name,
		Headers:  headers,
		RawRows:  g.cells,
		DataRows: materialize(headers, g.cells[headerIdx+1:]),
	}, true
}

// materialize keys every row by header label, dropping rows whose every
// mapped value is blank.
func materialize(headers []string, rows [][]string) []map[string]string {
	out := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		record := make(map[string]string, len(headers))
		empty := true
		for i, h := range headers {
			if h == "" {
				continue
			}
			var v string
			if i < len(row) {
				v = row[i]
			}
			record[h] = v
			if !model.IsBlank(v) {
				empty = false
			}
		}
		if empty {
			continue
		}
		out = append(out, record)
	}
	return out
}
