package normalize

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Similarity retorna a razão de similaridade entre a e b em [0, 1],
// baseada na distância de edição. Não participa da ordenação da busca.
func Similarity(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := max(la, lb)
	if longest == 0 {
		return 1
	}

	d := levenshtein.ComputeDistance(a, b)
	return 1 - float64(d)/float64(longest)
}
