package offers

import (
	"iter"
	"time"

	"github.com/shopspring/decimal"

	"bot-mercado/internal/models"
)

// UnknownVendorName é o rótulo usado quando o supermercado não é encontrado
const UnknownVendorName = "Desconhecido"

// HistoryPoint é um ponto do histórico de preços
type HistoryPoint struct {
	Date            time.Time
	Price           decimal.Decimal
	SupermarketID   string
	SupermarketName string
}

// History devolve um ponto por oferta elegível coletada a partir de since,
// em ordem cronológica. A sequência é recalculada a cada iteração.
func History(list []models.Offer, eligible VendorSet, names map[string]string, since time.Time) iter.Seq[HistoryPoint] {
	return func(yield func(HistoryPoint) bool) {
		for _, o := range filterSince(list, eligible, since) {
			name, ok := names[o.SupermarketID]
			if !ok {
				name = UnknownVendorName
			}
			p := HistoryPoint{
				Date:            o.CollectedAt,
				Price:           o.Price,
				SupermarketID:   o.SupermarketID,
				SupermarketName: name,
			}
			if !yield(p) {
				return
			}
		}
	}
}
