package offers

import (
	"slices"
	"time"

	"bot-mercado/internal/models"
)

// PlaceholderDistanceKm é a distância exibida enquanto o cálculo geográfico não existe
const PlaceholderDistanceKm = 0.0

// Vendor são os dados de exibição de um supermercado anexados a uma oferta
type Vendor struct {
	ID         string
	Name       string
	Address    models.Address
	DistanceKm float64
}

// View é uma oferta enriquecida para exibição
type View struct {
	models.Offer
	HoursAgo    int
	Supermarket *Vendor
}

// SelectBest retorna a oferta de menor preço. Em empate vence a coletada
// primeiro; persistindo o empate, a que aparece antes na entrada.
func SelectBest(list []models.Offer) (models.Offer, bool) {
	if len(list) == 0 {
		return models.Offer{}, false
	}

	best := list[0]
	for _, o := range list[1:] {
		switch o.Price.Cmp(best.Price) {
		case -1:
			best = o
		case 0:
			if o.CollectedAt.Before(best.CollectedAt) {
				best = o
			}
		}
	}
	return best, true
}

// HoursAgo retorna as horas inteiras decorridas desde a coleta, nunca negativo
func HoursAgo(asOf, collectedAt time.Time) int {
	d := asOf.Sub(collectedAt)
	if d <= 0 {
		return 0
	}
	return int(d / time.Hour)
}

// SortByPrice ordena por preço crescente usando a mesma regra de desempate de SelectBest
func SortByPrice(list []models.Offer) {
	slices.SortStableFunc(list, func(a, b models.Offer) int {
		if c := a.Price.Cmp(b.Price); c != 0 {
			return c
		}
		return a.CollectedAt.Compare(b.CollectedAt)
	})
}

// NewView enriquece a oferta com horas decorridas e, se houver, o supermercado
func NewView(o models.Offer, asOf time.Time, sm *models.Supermarket) View {
	v := View{Offer: o, HoursAgo: HoursAgo(asOf, o.CollectedAt)}
	if sm != nil {
		v.Supermarket = &Vendor{
			ID:         sm.ID,
			Name:       sm.Name,
			Address:    sm.Address,
			DistanceKm: PlaceholderDistanceKm,
		}
	}
	return v
}
