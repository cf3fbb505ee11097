package scraper

import (
	"context"

	"github.com/shopspring/decimal"
)

// Page são os dados extraídos da página de um produto
type Page struct {
	Name          string
	Price         decimal.Decimal
	OriginalPrice decimal.Decimal // zero quando a página não mostra preço anterior
}

// IsPromotion indica se a página mostra um preço anterior maior que o atual
func (p Page) IsPromotion() bool {
	return p.OriginalPrice.GreaterThan(p.Price)
}

// Scraper define a interface para scrapers de diferentes lojas
type Scraper interface {
	Scrape(ctx context.Context, url string) (Page, error)
	CanHandle(url string) bool
}

// Registry mantém um registro de todos os scrapers disponíveis
type Registry struct {
	scrapers []Scraper
}

// NewRegistry cria um registro com os scrapers das lojas suportadas
func NewRegistry() *Registry {
	return NewRegistryWith(NewMercadoLivreScraper(), NewVTEXScraper())
}

// NewRegistryWith cria um registro com os scrapers informados
func NewRegistryWith(scrapers ...Scraper) *Registry {
	return &Registry{scrapers: scrapers}
}

// FindScraper encontra o scraper apropriado para uma URL
func (r *Registry) FindScraper(url string) Scraper {
	for _, scraper := range r.scrapers {
		if scraper.CanHandle(url) {
			return scraper
		}
	}
	return nil
}
