package plan

import "strings"

// NaturalCompare compares catalog numbers so that runs of digits compare by
// value: "20A" < "20B" < "100". Non-digit runs compare byte-wise. It
// returns -1, 0 or +1.
func NaturalCompare(a, b string) int {
	for a != "" && b != "" {
		ra, rb := chunk(a), chunk(b)
		a, b = a[len(ra):], b[len(rb):]

		da, db := isDigit(ra[0]), isDigit(rb[0])
		switch {
		case da && db:
			if c := compareDigits(ra, rb); c != 0 {
				return c
			}
		case da != db:
			// Digits sort before letters.
			if da {
				return -1
			}
			return 1
		default:
			if c := strings.Compare(ra, rb); c != 0 {
				return c
			}
		}
	}
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

// chunk returns the leading run of digits or non-digits of s.
func chunk(s string) string {
	digit := isDigit(s[0])
	i := 1
	for i < len(s) && isDigit(s[i]) == digit {
		i++
	}
	return s[:i]
}

func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }
