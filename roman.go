package calc

import (
	"strconv"
	"strings"
)

// Numerals contains the runes which are read as Roman numerals.
const Numerals = "IVXLCDM"

// numeral gets the value of a Roman numeral rune, or 0 if r is not one.
func numeral(r rune) int {
	switch r {
	case 'I':
		return 1
	case 'V':
		return 5
	case 'X':
		return 10
	case 'L':
		return 50
	case 'C':
		return 100
	case 'D':
		return 500
	case 'M':
		return 1000
	default:
		return 0
	}
}

// ToArabic rewrites each maximal run of Roman numerals in s as its decimal
// value. A numeral that is smaller than the one after it subtracts, so "IX"
// is 9 and "MCMXC" is 1990; non-canonical forms like "IIX" are read by the
// same rule. All other text is unchanged, so ToArabic is idempotent on text
// which is already decimal.
func ToArabic(s string) string {
	if !strings.ContainsAny(s, Numerals) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	run := make([]int, 0, 8)
	flush := func() {
		if len(run) == 0 {
			return
		}
		n := 0
		for i, v := range run {
			if i+1 < len(run) && v < run[i+1] {
				n -= v
			} else {
				n += v
			}
		}
		b.WriteString(strconv.Itoa(n))
		run = run[:0]
	}
	for _, r := range s {
		if v := numeral(r); v != 0 {
			run = append(run, v)
			continue
		}
		flush()
		b.WriteRune(r)
	}
	flush()
	return b.String()
}

// Normalize prepares an expression for tokenizing. It converts Roman numerals
// to decimal and replaces the alternate power operator ** with ^.
func Normalize(src string) string {
	return strings.ReplaceAll(ToArabic(src), "**", "^")
}
