// Package money converte valores em reais entre texto e decimal.
package money

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	number  = regexp.MustCompile(`-?\d[\d.,]*`)
	grouped = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})+$`)
)

// ParseBRL lê o primeiro valor em reais do texto, como "R$ 1.234,56".
//
// Com vírgula, os pontos são separadores de milhar. Sem vírgula, o ponto só
// é milhar quando separa grupos de três dígitos ("1.000"); caso contrário é
// o separador decimal ("4.99").
func ParseBRL(text string) (decimal.Decimal, error) {
	raw := strings.TrimRight(number.FindString(text), ".,")
	if raw == "" {
		return decimal.Zero, fmt.Errorf("erro ao parsear preço '%s'", text)
	}

	clean := raw
	switch {
	case strings.Contains(raw, ","):
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	case grouped.MatchString(raw):
		clean = strings.ReplaceAll(clean, ".", "")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("erro ao parsear preço '%s': %w", text, err)
	}
	return d, nil
}

// FormatBRL formata um valor em reais com vírgula decimal, ex: "R$ 4,99"
func FormatBRL(d decimal.Decimal) string {
	return "R$ " + strings.Replace(d.StringFixed(2), ".", ",", 1)
}
