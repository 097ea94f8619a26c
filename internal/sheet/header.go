package sheet

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// headerScanRows caps how deep header detection looks into a sheet.
	headerScanRows = 25
	// minHeaderStrings is the minimum count of string-like cells for a row
	// to be a header candidate at all.
	minHeaderStrings = 3
	// identicalStringPenalty punishes rows whose non-empty strings are all
	// the same value (banner rows repeated across merged columns).
	identicalStringPenalty = 50.0
	// titleAboveRatio: a row immediately above the best candidate scoring at
	// least this fraction of the best score is treated as a title row.
	titleAboveRatio = 0.20
	// headerBelowRatio: a row immediately below the best candidate scoring
	// more than this fraction demotes the candidate to a title row.
	headerBelowRatio = 0.40
)

// scoreRow rates how header-like a row is. Rows with fewer than three
// string-like cells score zero outright.
func scoreRow(row []string) float64 {
	total := len(row)
	if total == 0 {
		return 0
	}

	var empty, numeric, stringLike int
	unique := make(map[string]struct{})
	for _, raw := range row {
		v := strings.TrimSpace(raw)
		if v == "" {
			empty++
			continue
		}
		// Percentage cells ("10%", "8,5 %") count as numeric so curve data
		// rows never look more header-like than the real header.
		n := strings.TrimSpace(strings.TrimSuffix(v, "%"))
		if _, err := strconv.ParseFloat(strings.ReplaceAll(n, ",", "."), 64); err == nil {
			numeric++
			continue
		}
		stringLike++
		unique[v] = struct{}{}
	}

	if stringLike < minHeaderStrings {
		return 0
	}

	uniqueCount := len(unique)
	uniqueRatio := float64(uniqueCount) / float64(stringLike)
	numericRatio := float64(numeric) / float64(total)
	emptyRatio := float64(empty) / float64(total)

	score := uniqueRatio*100 - numericRatio*50 - emptyRatio*20 + float64(uniqueCount)*3
	if uniqueCount == 1 {
		score -= identicalStringPenalty
	}
	return score
}

// detectHeader finds the header row of a grid and, when a two-row compound
// header is present, the title row sitting above it. titleIdx is -1 for
// plain single-row headers. ok is false when the grid has no non-empty row.
func detectHeader(cells [][]string) (headerIdx, titleIdx int, ok bool) {
	limit := len(cells)
	if limit > headerScanRows {
		limit = headerScanRows
	}

	best := -1
	bestScore := 0.0
	for i := 0; i < limit; i++ {
		if s := scoreRow(cells[i]); s > bestScore {
			best, bestScore = i, s
		}
	}

	if best == -1 {
		// No row scored positive: fall back to the first non-empty row.
		for i, row := range cells {
			for _, v := range row {
				if strings.TrimSpace(v) != "" {
					return i, -1, true
				}
			}
		}
		return 0, -1, false
	}

	if best > 0 && scoreRow(cells[best-1]) >= titleAboveRatio*bestScore {
		return best, best - 1, true
	}
	if best+1 < len(cells) && scoreRow(cells[best+1]) > headerBelowRatio*bestScore {
		return best + 1, best, true
	}
	return best, -1, true
}

// compoundHeaders builds per-column labels from a title row and a subheader
// row. The title row is forward-filled across blank cells (merged banner
// spans) and joined with the subheader only when the two differ.
func compoundHeaders(title, sub []string) []string {
	labels := make([]string, len(sub))
	carry := ""
	for i := range sub {
		if i < len(title) && strings.TrimSpace(title[i]) != "" {
			carry = strings.TrimSpace(title[i])
		}
		s := strings.TrimSpace(sub[i])
		switch {
		case s == "":
			labels[i] = carry
		case carry == "" || carry == s:
			labels[i] = s
		default:
			labels[i] = carry + " " + s
		}
	}
	return dedupeHeaders(labels)
}

// singleHeaders trims a plain header row and de-duplicates repeats.
func singleHeaders(row []string) []string {
	labels := make([]string, len(row))
	for i, v := range row {
		labels[i] = strings.TrimSpace(v)
	}
	return dedupeHeaders(labels)
}

// dedupeHeaders appends " (n)" to repeated labels so record keys stay
// distinct.
func dedupeHeaders(labels []string) []string {
	seen := make(map[string]int, len(labels))
	out := make([]string, len(labels))
	for i, l := range labels {
		seen[l]++
		if l != "" && seen[l] > 1 {
			out[i] = fmt.Sprintf("%s (%d)", l, seen[l])
		} else {
			out[i] = l
		}
	}
	return out
}
