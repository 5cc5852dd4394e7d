package core

// convert.go turns spreadsheet cell text into values the validator can reason about.
//
// Pricing sheets arrive from Excel exports, Google Sheets downloads and
// hand-edited CSVs, so a price cell may look like any of:
//   - 59.9 (raw xlsx value)
//   - R$ 1.234,56 (Brazilian currency formatting)
//   - 1,234.56 (US grouping)
//   - ="59,90" (Excel formula prefix)
//   - (12,50) (accounting negative)
//
// ParseAmount accepts all of these and returns an Amount whose Value is
// invalid for empty or non-numeric input.

import (
	"math/big"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// currencyReplacer strips currency symbols and spacing used as grouping.
var currencyReplacer = strings.NewReplacer(
	"R$", "",
	"$", "",
	"\u20ac", "", // Euro
	"\u00a3", "", // Pound
	"\u00a0", "", // NBSP, used for grouping by pt-BR Excel
	" ", "",
)

// Amount is a parsed monetary cell.
type Amount struct {
	Value pgtype.Numeric
	Text  string // Normalized decimal text, e.g. "1234.56"
}

// Valid reports whether the cell held a number.
func (a Amount) Valid() bool {
	return a.Value.Valid && !a.Value.NaN && a.Value.InfinityModifier == pgtype.Finite
}

// Less reports whether a is strictly smaller than b.
// Invalid amounts never compare less.
func (a Amount) Less(b Amount) bool {
	if !a.Valid() || !b.Valid() {
		return false
	}
	return numericRat(a.Value).Cmp(numericRat(b.Value)) < 0
}

// ParseAmount converts a cell to an Amount.
// Returns an invalid Amount if the cell is empty or not a number.
func ParseAmount(s string) Amount {
	s = CleanCell(s)
	if s == "" {
		return Amount{}
	}

	// Detect negative accounting format "(123.45)"
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = currencyReplacer.Replace(s)
	s = normalizeSeparators(s)

	if isNegative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return Amount{}
	}

	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		return Amount{}
	}

	return Amount{Value: n, Text: formatNumeric(n)}
}

// normalizeSeparators rewrites grouping and decimal separators to a plain
// dot-decimal string. When both separators appear the last one is the
// decimal mark; a lone comma is a decimal comma; repeated marks are grouping.
func normalizeSeparators(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 {
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 {
			return strings.ReplaceAll(s, ".", "")
		}
	}
	return s
}

// numericRat converts a finite numeric to an exact rational.
func numericRat(n pgtype.Numeric) *big.Rat {
	r := new(big.Rat)
	if n.Int == nil {
		return r
	}
	r.SetInt(n.Int)

	if n.Exp == 0 {
		return r
	}

	exp := n.Exp
	if exp < 0 {
		exp = -exp
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil)
	if n.Exp > 0 {
		return r.Mul(r, new(big.Rat).SetInt(scale))
	}
	return r.Quo(r, new(big.Rat).SetInt(scale))
}

// formatNumeric renders a finite numeric as plain decimal text
// (no exponent, no grouping).
func formatNumeric(n pgtype.Numeric) string {
	if n.Int == nil {
		return "0"
	}

	digits := new(big.Int).Abs(n.Int).String()
	sign := ""
	if n.Int.Sign() < 0 {
		sign = "-"
	}

	switch {
	case n.Exp >= 0:
		if digits == "0" {
			return "0"
		}
		return sign + digits + strings.Repeat("0", int(n.Exp))
	default:
		scale := int(-n.Exp)
		if len(digits) <= scale {
			digits = strings.Repeat("0", scale-len(digits)+1) + digits
		}
		point := len(digits) - scale
		return sign + digits[:point] + "." + digits[point:]
	}
}

// HeaderIndex maps column names (lowercase) to their position in a row.
type HeaderIndex map[string]int

// MakeHeaderIndex creates a HeaderIndex from a header row.
// Keys are lowercased for case-insensitive matching.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		if _, dup := idx[key]; dup {
			continue // first occurrence wins
		}
		idx[key] = i
	}
	return idx
}

// Cell returns the cleaned value of column name, or "" when the column is
// missing or the row is short.
func (h HeaderIndex) Cell(row []string, name string) string {
	pos, ok := h[strings.ToLower(name)]
	if !ok || pos >= len(row) {
		return ""
	}
	return CleanCell(row[pos])
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	// Remove leading '='
	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	// Remove any surrounding quotes
	s = strings.Trim(s, `"'`)

	return strings.TrimSpace(s)
}
