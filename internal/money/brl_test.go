package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBRL(t *testing.T) {
	tests := map[string]string{
		"R$ 1.234,56":     "1234.56",
		"1.234.567,89":    "1234567.89",
		"4,99":            "4.99",
		"4.99":            "4.99",
		"12.5":            "12.5",
		"1.299":           "1299",
		"1.000":           "1000",
		" R$ 10 ":         "10",
		"R$\u00a04,99":    "4.99",
		"por R$ 4,99 /un": "4.99",
		"R$12,":           "12",
		"-3":              "-3",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			got, err := ParseBRL(in)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(want).Equal(got), "got %s", got)
		})
	}

	for _, in := range []string{"grátis", "", "R$", "1,2,3"} {
		_, err := ParseBRL(in)
		assert.Error(t, err, in)
	}
}

func TestFormatBRL(t *testing.T) {
	assert.Equal(t, "R$ 4,99", FormatBRL(decimal.RequireFromString("4.99")))
	assert.Equal(t, "R$ 10,00", FormatBRL(decimal.RequireFromString("10")))
	assert.Equal(t, "R$ 1234,50", FormatBRL(decimal.RequireFromString("1234.5")))
}
