package matcher

import (
	"fmt"
	"testing"

	"bot-mercado/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalog() []models.Product {
	return []models.Product{
		{ID: "p1", CanonicalName: "leite integral itambe 1000ml", DisplayName: "Leite Integral Itambé 1L", Brand: "Itambé"},
		{ID: "p2", CanonicalName: "refrigerante cola 2000ml", DisplayName: "Refrigerante Cola 2L", Brand: "Coca-Cola", Synonyms: []string{"coca 2L"}},
		{ID: "p3", CanonicalName: "arroz tipo1 tj 5000g", DisplayName: "Arroz Branco Tio João 5kg", Brand: "Tio João"},
		{ID: "p4", CanonicalName: "agua coco 1000ml", DisplayName: "Água de Côco 1L", Brand: "Obrigado"},
	}
}

func ids(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestSearch(t *testing.T) {
	t.Run("CanonicalName", func(t *testing.T) {
		assert.Equal(t, []string{"p1"}, ids(Search("Leite Integral", catalog())))
	})

	t.Run("DisplayNameRaw", func(t *testing.T) {
		assert.Equal(t, []string{"p3"}, ids(Search("Tio João", catalog())))
	})

	t.Run("Brand", func(t *testing.T) {
		assert.Equal(t, []string{"p4"}, ids(Search("obrigado", catalog())))
	})

	t.Run("Synonym", func(t *testing.T) {
		assert.Equal(t, []string{"p2"}, ids(Search("coca 2l", catalog())))
	})

	t.Run("AccentInsensitiveCanonical", func(t *testing.T) {
		assert.Equal(t, []string{"p4"}, ids(Search("Água de Côco", catalog())))
	})

	t.Run("NoMatch", func(t *testing.T) {
		res := Search("picanha", catalog())
		assert.Empty(t, res)
	})

	t.Run("PreservesInputOrder", func(t *testing.T) {
		res := Search("1l", catalog())
		assert.Equal(t, []string{"p1", "p4"}, ids(res))
	})
}

func TestSearch_CapsResults(t *testing.T) {
	var products []models.Product
	for i := 0; i < 30; i++ {
		products = append(products, models.Product{
			ID:            fmt.Sprintf("p%d", i),
			CanonicalName: "feijao carioca 1000g",
			DisplayName:   "Feijão Carioca 1kg",
		})
	}

	res := Search("feijao", products)
	require.Len(t, res, MaxResults)
	assert.Equal(t, "p0", res[0].ID)
	assert.Equal(t, "p19", res[MaxResults-1].ID)
}

func TestSuggest(t *testing.T) {
	p, ok := Suggest("leit integrl itambe 1l", catalog())
	require.True(t, ok)
	assert.Equal(t, "p1", p.ID)

	p, ok = Suggest("refrigerant cola 2L", catalog())
	require.True(t, ok)
	assert.Equal(t, "p2", p.ID)

	// "coca 2 litros" normaliza igual ao sinônimo, então já é um candidato
	_, ok = Suggest("coca 2 litros", catalog())
	assert.False(t, ok)

	_, ok = Suggest("Leite Integral", catalog())
	assert.False(t, ok, "a query that already matches has nothing to suggest")

	_, ok = Suggest("xyz", catalog())
	assert.False(t, ok)

	_, ok = Suggest("   ", catalog())
	assert.False(t, ok)
}
