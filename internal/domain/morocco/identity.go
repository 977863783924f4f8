package morocco

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	cinPattern = regexp.MustCompile(`^[A-Za-z]{1,2}[0-9]{5,6}$`)
	icePattern = regexp.MustCompile(`^[0-9]{15}$`)
	ribPattern = regexp.MustCompile(`^[0-9]{24}$`)
)

// ValidateCIN reports whether s is a national identity card number:
// one or two ASCII letters followed by five or six digits, in either case.
func ValidateCIN(s string) bool {
	return cinPattern.MatchString(s)
}

// NormalizeCIN trims s and upper-cases it. It does not validate.
func NormalizeCIN(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ValidateICE reports whether s is a company identifier (exactly 15 digits).
func ValidateICE(s string) bool {
	return icePattern.MatchString(s)
}

// ValidateRIB reports whether s, once whitespace is removed, is a
// 24-digit bank account identifier.
func ValidateRIB(s string) bool {
	return ribPattern.MatchString(NormalizeRIB(s))
}

// NormalizeRIB removes every whitespace character from s.
func NormalizeRIB(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
