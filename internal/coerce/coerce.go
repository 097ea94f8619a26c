// Package coerce converts raw cell strings into typed values using
// locale-tolerant parsing. Parsers degrade to the original string instead of
// erroring so one malformed cell can never abort a row or a table.
package coerce

import (
	"math"
	"strconv"
	"strings"

	"github.com/ignacioLiotti/gec-sub001/internal/model"
)

// currencyStripper removes currency symbols and whitespace before numeric
// parsing. AR exports mix "$", "ARS" and "U$S" prefixes freely.
var currencyStripper = strings.NewReplacer(
	"$", "", "€", "", "ars", "", "usd", "", "u$s", "",
	" ", "", "\t", "", " ", "",
)

// Value coerces a raw cell according to the column's declared data type.
// Blank cells and the "-" placeholder always coerce to nil regardless of
// type. Unparseable numeric/integer cells return the trimmed original
// string unchanged rather than silently zeroing.
func Value(raw string, dataType model.DataType) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "-" {
		return nil
	}

	switch dataType {
	case model.TypeNumeric:
		return numeric(trimmed)
	case model.TypeInteger:
		return integer(trimmed)
	case model.TypeDate:
		// Passthrough: downstream owns date semantics.
		return trimmed
	default:
		return trimmed
	}
}

func numeric(s string) any {
	cleaned := currencyStripper.Replace(strings.ToLower(s))
	// Commas are thousands separators; "1.234,56" layouts are disambiguated
	// by the rightmost-separator rule when both separators appear.
	cleaned = normalizeSeparators(cleaned, false)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return s
	}
	return v
}

func integer(s string) any {
	var b strings.Builder
	for i, r := range s {
		if r >= '0' && r <= '9' || (r == '-' && i == 0) {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" || digits == "-" {
		return s
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return s
	}
	return v
}

// normalizeSeparators decides which of '.'/',' is the decimal point by
// taking the rightmost occurrence; the other becomes a thousands separator
// and is dropped. "1.234,56" and "1,234.56" both become "1234.56". When only
// commas appear, commaDecimal picks between comma-as-decimal (percent
// parsing) and comma-as-thousands (numeric coercion).
func normalizeSeparators(s string, commaDecimal bool) string {
	dot := strings.LastIndexByte(s, '.')
	comma := strings.LastIndexByte(s, ',')
	switch {
	case comma == -1:
		return s
	case dot == -1:
		if commaDecimal {
			head := strings.ReplaceAll(s[:comma], ",", "")
			return head + "." + s[comma+1:]
		}
		return strings.ReplaceAll(s, ",", "")
	case comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		return strings.Replace(s, ",", ".", 1)
	default:
		return strings.ReplaceAll(s, ",", "")
	}
}

// Percent parses a percentage cell as used by the month-pivot strategy.
// A literal "%" suffix is stripped; the decimal separator is whichever of
// '.' or ',' appears rightmost; a bare fraction strictly between 0 and 1
// (no "%" present) is scaled to percent. The result is rounded to two
// decimals. ok is false when the cell does not parse as a number.
func Percent(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" {
		return 0, false
	}

	hadSign := strings.Contains(s, "%")
	s = strings.ReplaceAll(s, "%", "")
	s = strings.TrimSpace(s)
	s = normalizeSeparators(s, true)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}

	if !hadSign && math.Abs(v) > 0 && math.Abs(v) < 1 {
		v *= 100
	}
	return math.Round(v*100) / 100, true
}
