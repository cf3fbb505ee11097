package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency é a moeda usada quando a oferta não informa outra
const DefaultCurrency = "BRL"

// OfferSource indica de onde veio a observação de preço
type OfferSource string

const (
	SourceCrowdsourced OfferSource = "crowdsourced"
	SourceScraping     OfferSource = "scraping"
	SourceAPI          OfferSource = "api"
)

// StockStatus indica a disponibilidade do produto no momento da coleta
type StockStatus string

const (
	StockAvailable  StockStatus = "available"
	StockLow        StockStatus = "low"
	StockOutOfStock StockStatus = "out_of_stock"
)

// OfferMetadata guarda dados de quem enviou a oferta
type OfferMetadata struct {
	UserID      string
	PhotoURL    string
	OCRVerified bool
}

// Offer é uma observação imutável de preço de um produto em um supermercado.
// Preços novos geram novas ofertas, nunca alteram as antigas.
type Offer struct {
	ID              string
	ProductID       string
	SupermarketID   string
	Price           decimal.Decimal
	UnitPrice       decimal.Decimal
	Currency        string
	Source          OfferSource
	ConfidenceScore float64
	CollectedAt     time.Time
	ExpiresAt       time.Time // informativo, não é usado como filtro de recência
	IsPromotion     bool
	StockStatus     StockStatus
	Metadata        *OfferMetadata
}
