package morocco

import "github.com/shopspring/decimal"

// TVARate is one of the legal value-added tax rates.
type TVARate string

const (
	TVA0  TVARate = "TVA_0"
	TVA7  TVARate = "TVA_7"
	TVA10 TVARate = "TVA_10"
	TVA14 TVARate = "TVA_14"
	TVA20 TVARate = "TVA_20"
)

// tvaPercent holds each rate as a whole percentage so the decimal and float
// paths share one source.
var tvaPercent = map[TVARate]int64{
	TVA0:  0,
	TVA7:  7,
	TVA10: 10,
	TVA14: 14,
	TVA20: 20,
}

// TVARates lists the known rates in ascending order.
func TVARates() []TVARate {
	return []TVARate{TVA0, TVA7, TVA10, TVA14, TVA20}
}

// ParseTVARate returns the rate named by key, or false when key is unknown.
func ParseTVARate(key string) (TVARate, bool) {
	r := TVARate(key)
	_, ok := tvaPercent[r]
	return r, ok
}

// IsValid reports whether r is a known rate.
func (r TVARate) IsValid() bool {
	_, ok := tvaPercent[r]
	return ok
}

// Decimal returns the rate as a fraction (0.2 for TVA_20). Unknown rates are 0.
func (r TVARate) Decimal() decimal.Decimal {
	return decimal.New(tvaPercent[r], -2)
}

// TVARateToNumber maps a rate key to its fraction. Unknown or empty keys map
// to 0.
func TVARateToNumber(key string) float64 {
	return float64(tvaPercent[TVARate(key)]) / 100
}

// CalculateTVA returns the tax due on subtotal at the given rate.
func CalculateTVA(subtotal float64, key string) float64 {
	return subtotal * TVARateToNumber(key)
}

// CalculateTTC returns subtotal plus its tax.
func CalculateTTC(subtotal float64, key string) float64 {
	return subtotal + CalculateTVA(subtotal, key)
}

// TVAAmount is CalculateTVA on exact decimals.
func TVAAmount(subtotal decimal.Decimal, key string) decimal.Decimal {
	return subtotal.Mul(TVARate(key).Decimal())
}

// TTCAmount is CalculateTTC on exact decimals.
func TTCAmount(subtotal decimal.Decimal, key string) decimal.Decimal {
	return subtotal.Add(TVAAmount(subtotal, key))
}
