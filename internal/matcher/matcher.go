package matcher

import (
	"strings"

	"bot-mercado/internal/models"
	"bot-mercado/internal/normalize"
)

// MaxResults é o número máximo de candidatos retornados por Search
const MaxResults = 20

// Search seleciona os produtos candidatos para a consulta. Um produto entra
// se qualquer um dos campos casar; não há pontuação nem ordenação por relevância,
// a ordem de entrada é preservada.
func Search(query string, products []models.Product) []models.Product {
	normalized := normalize.Normalize(query)
	raw := strings.ToLower(strings.TrimSpace(query))

	var results []models.Product
	for _, p := range products {
		if len(results) == MaxResults {
			break
		}
		if Matches(p, normalized, raw) {
			results = append(results, p)
		}
	}
	return results
}

// Matches verifica um produto contra a consulta normalizada e a consulta crua
// em minúsculas
func Matches(p models.Product, normalized, raw string) bool {
	if normalized != "" && strings.Contains(normalize.Normalize(p.CanonicalName), normalized) {
		return true
	}
	if raw != "" && strings.Contains(strings.ToLower(p.DisplayName), raw) {
		return true
	}
	if raw != "" && strings.Contains(strings.ToLower(p.Brand), raw) {
		return true
	}
	for _, s := range p.Synonyms {
		if normalized != "" && normalize.Normalize(s) == normalized {
			return true
		}
	}
	return false
}

// MinSuggestion é a similaridade mínima para Suggest aceitar um produto
const MinSuggestion = 0.6

// Suggest procura, entre os produtos que não casaram com a consulta, o mais
// parecido com ela. Serve para sugerir uma grafia alternativa quando Search
// volta vazio e não interfere no resultado de Search.
func Suggest(query string, products []models.Product) (models.Product, bool) {
	normalized := normalize.Normalize(query)
	raw := strings.ToLower(strings.TrimSpace(query))
	if normalized == "" {
		return models.Product{}, false
	}

	var (
		best      models.Product
		bestScore float64
	)
	for _, p := range products {
		if Matches(p, normalized, raw) {
			continue
		}
		score := normalize.Similarity(normalized, normalize.Normalize(p.CanonicalName))
		score = max(score, normalize.Similarity(normalized, normalize.Normalize(p.DisplayName)))
		for _, s := range p.Synonyms {
			score = max(score, normalize.Similarity(normalized, normalize.Normalize(s)))
		}
		if score > bestScore {
			best, bestScore = p, score
		}
	}
	if bestScore < MinSuggestion {
		return models.Product{}, false
	}
	return best, true
}
