package model

import "strings"

// Sheet is the uniform in-memory representation of one workbook tab or the
// single implicit grid of a CSV. Merge ranges are already resolved and the
// header row(s) already detected by the time a Sheet exists.
type Sheet struct {
	Name string
	// Headers are the detected column labels in sheet order. Repeated labels
	// are de-duplicated with a " (n)" suffix on both the CSV and workbook
	// paths.
	Headers []string
	// RawRows is the full row-major cell matrix, including title/header rows.
	// Extraction strategies that address fixed coordinates read from here.
	RawRows [][]string
	// DataRows holds one header-keyed record per surviving data row. Rows
	// whose every mapped value is blank are dropped during materialization.
	DataRows []map[string]string
}

// HeaderIndex returns the position of the given header label, or -1.
func (s *Sheet) HeaderIndex(header string) int {
	for i, h := range s.Headers {
		if h == header {
			return i
		}
	}
	return -1
}

// Cell returns the raw cell at (row, col), or "" when out of range.
func (s *Sheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.RawRows) {
		return ""
	}
	r := s.RawRows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// IsBlank reports whether a raw cell value is empty after trimming.
func IsBlank(v string) bool {
	return strings.TrimSpace(v) == ""
}
