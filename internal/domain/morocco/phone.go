package morocco

import (
	"regexp"
	"strings"
)

// CountryCallingCode is the international prefix for Moroccan numbers.
const CountryCallingCode = "+212"

var phonePattern = regexp.MustCompile(`^\+212[5-7][0-9]{8}$`)

// ValidateMoroccanPhone reports whether s is a phone number in international
// form: +212, then 5, 6 or 7, then eight digits, with no separators.
func ValidateMoroccanPhone(s string) bool {
	return phonePattern.MatchString(s)
}

// FormatPhone rewrites s into international form. Non-digits are dropped, a
// leading trunk 0 becomes +212 and a bare 212 gets its plus sign back; any
// other digit string is prefixed with +212.
//
// The result is not validated. Pass it to ValidateMoroccanPhone before
// trusting it.
func FormatPhone(s string) string {
	digits := digitsOnly(s)
	switch {
	case strings.HasPrefix(digits, "0"):
		return CountryCallingCode + digits[1:]
	case strings.HasPrefix(digits, "212"):
		return "+" + digits
	default:
		return CountryCallingCode + digits
	}
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}
