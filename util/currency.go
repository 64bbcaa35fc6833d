package util

import "strings"

// IsCurrencyCode reports whether s is made of exactly three upper case ASCII
// letters.
func IsCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}

// NormalizeCurrencyCode trims s and upper cases it when it is three ASCII
// letters. Any other token is only trimmed.
func NormalizeCurrencyCode(s string) string {
	s = strings.TrimSpace(s)
	if upper := strings.ToUpper(s); len(s) == 3 && IsCurrencyCode(upper) {
		return upper
	}
	return s
}
