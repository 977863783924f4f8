package morocco

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	amountNoise  = regexp.MustCompile(`[^0-9,.\-]`)
	amountPrefix = regexp.MustCompile(`^-?(?:[0-9]+\.?[0-9]*|\.[0-9]+)`)
)

// ParseAmount reads a user-typed amount such as "1 234,56" or "12.5 DH".
// Everything except digits, comma, dot and minus is dropped, commas become
// dots, and the longest numeric prefix is parsed. Anything unparseable is 0.
func ParseAmount(s string) float64 {
	cleaned := strings.ReplaceAll(amountNoise.ReplaceAllString(s, ""), ",", ".")
	num := amountPrefix.FindString(cleaned)
	if num == "" || num == "-" {
		return 0
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v == 0 {
		return 0
	}
	return v
}
