// Package normalize transforma textos livres de busca e nomes de catálogo
// em uma forma canônica comparável.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stopwords = map[string]struct{}{
	"de": {}, "da": {}, "do": {}, "para": {}, "com": {}, "sem": {}, "o": {}, "a": {},
}

// Apenas 1l e 2l são reescritos; "<n>l" genérico não é multiplicado.
var (
	oneLiter  = regexp.MustCompile(`\b1\s?l\b`)
	twoLiters = regexp.MustCompile(`\b2\s?l\b`)
	kilograms = regexp.MustCompile(`\b(\d+)\s?kg\b`)
	liters    = regexp.MustCompile(`\b(\d+)\s?litros?\b`)
)

// synonyms é aplicado por token para que "coca-cola" não vire "coca-cola-cola"
var synonyms = map[string]string{
	"refri": "refrigerante",
	"coca":  "coca-cola",
}

// Normalize aplica, nesta ordem: minúsculas, remoção de acentos, remoção de
// stopwords, reescrita de unidades e sinônimos. É idempotente.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = cases.Lower(language.BrazilianPortuguese).String(text)
	text = stripAccents(text)

	words := strings.Fields(text)
	kept := words[:0]
	for _, w := range words {
		if _, ok := stopwords[w]; !ok {
			kept = append(kept, w)
		}
	}
	text = strings.Join(kept, " ")

	text = oneLiter.ReplaceAllString(text, "1000ml")
	text = twoLiters.ReplaceAllString(text, "2000ml")
	text = multiply(kilograms, text, "g")
	text = multiply(liters, text, "ml")

	words = strings.Fields(text)
	for i, w := range words {
		if s, ok := synonyms[w]; ok {
			words[i] = s
		}
	}

	return strings.Join(words, " ")
}

func stripAccents(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}

// multiply troca "<n><unidade>" por "<n*1000><suffix>"
func multiply(re *regexp.Regexp, text, suffix string) string {
	return re.ReplaceAllStringFunc(text, func(match string) string {
		groups := re.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		n, err := strconv.Atoi(groups[1])
		if err != nil || n > math.MaxInt/1000 {
			return match
		}
		return strconv.Itoa(n*1000) + suffix
	})
}
