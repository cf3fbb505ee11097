package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"bot-mercado/internal/money"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

var (
	ldOfferPrice = regexp.MustCompile(`"offers"[^}]*"price"\s*:\s*"?([0-9.]+)"?`)
	ldPrice      = regexp.MustCompile(`"price"\s*:\s*"?([0-9.]+)"?`)
	ldListPrice  = regexp.MustCompile(`"(listPrice|highPrice|originalPrice)"\s*:\s*"?([0-9.]+)"?`)
	ldName       = regexp.MustCompile(`"name"\s*:\s*"([^"]+)"`)
)

// Selectors são os seletores CSS usados para extrair dados de uma loja
type Selectors struct {
	Name          []string
	Price         []string
	OriginalPrice []string
}

// PageScraper extrai preço e nome de páginas HTML de produto usando seletores
// CSS, com fallback para meta tags e JSON-LD
type PageScraper struct {
	hosts     []string
	selectors Selectors
	client    *http.Client
}

// NewPageScraper cria um scraper para os hosts informados
func NewPageScraper(hosts []string, selectors Selectors, client *http.Client) *PageScraper {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &PageScraper{hosts: hosts, selectors: selectors, client: client}
}

// NewMercadoLivreScraper cria o scraper do Mercado Livre (seção supermercado)
func NewMercadoLivreScraper() *PageScraper {
	return NewPageScraper([]string{"mercadolivre.com.br"}, Selectors{
		Name: []string{"h1.ui-pdp-title", "h1[data-testid='title']", ".ui-pdp-title", "h1"},
		Price: []string{
			".ui-pdp-price__second-line .andes-money-amount__fraction",
			".ui-pdp-price--size-large .andes-money-amount__fraction",
			"[data-testid='price'] .andes-money-amount__fraction",
			".andes-money-amount__fraction",
		},
		OriginalPrice: []string{
			".andes-money-amount--previous-price .andes-money-amount__fraction",
			".ui-pdp-price__original .andes-money-amount__fraction",
		},
	}, nil)
}

// NewVTEXScraper cria o scraper para lojas na plataforma VTEX, usada pela
// maioria das redes de supermercado
func NewVTEXScraper() *PageScraper {
	return NewPageScraper([]string{"vtexcommercestable.com.br", "paodeacucar.com", "carrefour.com.br", "atacadao.com.br"}, Selectors{
		Name:          []string{".vtex-store-components-3-x-productBrand", "h1"},
		Price:         []string{".vtex-product-price-1-x-sellingPriceValue", ".vtex-product-price-1-x-currencyContainer"},
		OriginalPrice: []string{".vtex-product-price-1-x-listPriceValue"},
	}, nil)
}

// CanHandle verifica se a URL pertence a um dos hosts do scraper
func (s *PageScraper) CanHandle(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range s.hosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// Scrape baixa a página e extrai nome, preço e preço anterior
func (s *PageScraper) Scrape(ctx context.Context, rawURL string) (Page, error) {
	doc, err := s.fetch(ctx, cleanURL(rawURL))
	if err != nil {
		return Page{}, err
	}

	price, ok := s.price(doc)
	if !ok {
		return Page{}, fmt.Errorf("preço não encontrado na página %s", rawURL)
	}

	page := Page{Name: s.name(doc), Price: price}
	if original, ok := s.originalPrice(doc); ok {
		page.OriginalPrice = original
	}
	return page, nil
}

func (s *PageScraper) fetch(ctx context.Context, target string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9,en-US;q=0.8,en;q=0.7")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status code: %d", resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

func (s *PageScraper) price(doc *goquery.Document) (decimal.Decimal, bool) {
	if text := firstText(doc, s.selectors.Price); text != "" {
		if p, err := money.ParseBRL(text); err == nil && p.IsPositive() {
			return p, true
		}
	}

	if content, ok := doc.Find("meta[property='product:price:amount']").First().Attr("content"); ok {
		if p, err := decimal.NewFromString(strings.TrimSpace(content)); err == nil && p.IsPositive() {
			return p, true
		}
	}

	var found decimal.Decimal
	doc.Find("script[type='application/ld+json']").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		text := sel.Text()
		m := ldOfferPrice.FindStringSubmatch(text)
		if m == nil {
			m = ldPrice.FindStringSubmatch(text)
		}
		if m == nil {
			return true
		}
		p, err := decimal.NewFromString(m[1])
		if err != nil || !p.IsPositive() {
			return true
		}
		found = p
		return false
	})
	return found, found.IsPositive()
}

func (s *PageScraper) originalPrice(doc *goquery.Document) (decimal.Decimal, bool) {
	if text := firstText(doc, s.selectors.OriginalPrice); text != "" {
		if p, err := money.ParseBRL(text); err == nil && p.IsPositive() {
			return p, true
		}
	}

	var found decimal.Decimal
	doc.Find("script[type='application/ld+json']").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		m := ldListPrice.FindStringSubmatch(sel.Text())
		if m == nil {
			return true
		}
		if p, err := decimal.NewFromString(m[2]); err == nil {
			found = p
			return false
		}
		return true
	})
	return found, found.IsPositive()
}

func (s *PageScraper) name(doc *goquery.Document) string {
	if name := firstText(doc, s.selectors.Name); name != "" {
		return name
	}

	var name string
	doc.Find("script[type='application/ld+json']").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if m := ldName.FindStringSubmatch(sel.Text()); m != nil {
			name = m[1]
			return false
		}
		return true
	})
	if name == "" {
		name = "Produto sem nome"
	}
	return name
}

func firstText(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		if text := strings.TrimSpace(doc.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func cleanURL(rawURL string) string {
	return strings.Split(rawURL, "#")[0]
}
