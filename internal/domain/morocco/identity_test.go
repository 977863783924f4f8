package morocco

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCIN(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"one letter five digits", "A12345", true},
		{"two letters six digits", "BK123456", true},
		{"lower case accepted", "bk123456", true},
		{"mixed case accepted", "bK12345", true},
		{"three letters", "ABC12345", false},
		{"four digits", "A1234", false},
		{"seven digits", "A1234567", false},
		{"no letters", "123456", false},
		{"leading space", " A12345", false},
		{"trailing garbage", "A12345X", false},
		{"empty", "", false},
		{"non ascii digits", "A١٢٣٤٥", false},
		{"kelvin sign", "\u212A123456", false},
		{"long s", "\u017F12345", false},
		{"kelvin sign after letter", "K\u212A12345", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateCIN(tt.input))
		})
	}
}

func TestNormalizeCIN(t *testing.T) {
	assert.Equal(t, "BK123456", NormalizeCIN("  bk123456 "))
	assert.True(t, ValidateCIN(NormalizeCIN("bk123456")))
}

func TestValidateICE(t *testing.T) {
	assert.True(t, ValidateICE("001234567000089"))
	assert.False(t, ValidateICE("00123456700008"))
	assert.False(t, ValidateICE("0012345670000890"))
	assert.False(t, ValidateICE("00123456700008A"))
	assert.False(t, ValidateICE("001 234567000089"))
	assert.False(t, ValidateICE(""))
}

func TestValidateRIB(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"24 digits", "011780000012345678901234", true},
		{"grouped with spaces", "011 780 0000123456789012 34", true},
		{"tabs and newlines", "011780\t000012345678\n901234", true},
		{"23 digits", "01178000001234567890123", false},
		{"25 digits", "0117800000123456789012345", false},
		{"letters", "01178000001234567890123A", false},
		{"dashes are not stripped", "011-780-000012345678901234", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateRIB(tt.input))
		})
	}
}
