// Package offers agrega observações de preço: filtro de recência, escolha da
// melhor oferta e histórico de preços.
package offers

import (
	"slices"
	"time"

	"bot-mercado/internal/models"
)

const (
	// DefaultWindow é a janela de recência usada na busca e na listagem de ofertas
	DefaultWindow = 7 * 24 * time.Hour
	// DefaultHistoryWindow é a janela padrão do histórico de preços
	DefaultHistoryWindow = 30 * 24 * time.Hour
)

// VendorSet é o conjunto de IDs de supermercados elegíveis
type VendorSet map[string]struct{}

// NewVendorSet cria um conjunto a partir dos IDs informados
func NewVendorSet(ids ...string) VendorSet {
	set := make(VendorSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Has indica se o supermercado pertence ao conjunto
func (s VendorSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// IDs retorna os IDs do conjunto ordenados
func (s VendorSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Filter mantém as ofertas de supermercados elegíveis coletadas em
// [asOf-window, ...]. ExpiresAt não é considerado. O resultado sai ordenado
// por CollectedAt crescente.
func Filter(list []models.Offer, eligible VendorSet, asOf time.Time, window time.Duration) []models.Offer {
	return filterSince(list, eligible, asOf.Add(-window))
}

func filterSince(list []models.Offer, eligible VendorSet, since time.Time) []models.Offer {
	var kept []models.Offer
	for _, o := range list {
		if !eligible.Has(o.SupermarketID) {
			continue
		}
		if o.CollectedAt.Before(since) {
			continue
		}
		kept = append(kept, o)
	}

	slices.SortStableFunc(kept, func(a, b models.Offer) int {
		return a.CollectedAt.Compare(b.CollectedAt)
	})
	return kept
}
