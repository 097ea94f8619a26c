package sheet

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// grid is one raw worksheet: a name plus a rectangular cell matrix. All rows
// are padded to the same width so downstream code never bounds-checks.
type grid struct {
	name  string
	cells [][]string
}

// workbookGrids opens an XLSX workbook from memory and returns one grid per
// sheet, with merge ranges resolved by copying the top-left cell's value
// into every other cell of the range.
func workbookGrids(data []byte) ([]grid, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrap(err, "sheet: open workbook")
	}

	grids := make([]grid, 0, len(f.Sheets))
	for _, sh := range f.Sheets {
		cells := make([][]string, len(sh.Rows))
		width := 0
		for _, row := range sh.Rows {
			if len(row.Cells) > width {
				width = len(row.Cells)
			}
		}
		for i, row := range sh.Rows {
			cells[i] = make([]string, width)
			for j, cell := range row.Cells {
				if j >= width {
					break
				}
				cells[i][j] = cell.String()
			}
		}
		resolveMerges(cells, sh)
		grids = append(grids, grid{name: sh.Name, cells: cells})
	}
	return grids, nil
}

// resolveMerges forward-copies each merge anchor's value across its HMerge
// and VMerge span.
func resolveMerges(cells [][]string, sh *xlsx.Sheet) {
	for i, row := range sh.Rows {
		for j, cell := range row.Cells {
			if cell.HMerge == 0 && cell.VMerge == 0 {
				continue
			}
			v := cell.String()
			if strings.TrimSpace(v) == "" {
				continue
			}
			for r := i; r <= i+cell.VMerge && r < len(cells); r++ {
				for c := j; c <= j+cell.HMerge && c < len(cells[r]); c++ {
					if cells[r][c] == "" {
						cells[r][c] = v
					}
				}
			}
		}
	}
}

// csvGrid parses CSV text into a single grid. Records may vary in width;
// all rows are padded to the widest record.
func csvGrid(name string, data []byte) (grid, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var rows [][]string
	width := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return grid{}, eris.Wrap(err, "sheet: read csv")
		}
		if len(record) > width {
			width = len(record)
		}
		rows = append(rows, record)
	}

	for i := range rows {
		for len(rows[i]) < width {
			rows[i] = append(rows[i], "")
		}
	}
	return grid{name: name, cells: rows}, nil
}
