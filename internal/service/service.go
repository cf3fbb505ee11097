// Package service expõe as operações de busca, listagem de ofertas, histórico
// e avaliação de alertas sobre os stores injetados.
package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bot-mercado/internal/apperr"
	"bot-mercado/internal/matcher"
	"bot-mercado/internal/models"
	"bot-mercado/internal/offers"
)

const (
	crowdsourcedConfidence = 0.95
	defaultRetention       = 7 * 24 * time.Hour
)

// Options ajusta as janelas usadas pelo serviço
type Options struct {
	FreshnessWindow time.Duration
	HistoryDays     int
	Retention       time.Duration
	Now             func() time.Time
}

// Service orquestra normalização, busca e seleção de ofertas
type Service struct {
	catalog Catalog
	offers  OfferStore
	vendors VendorDirectory
	alerts  AlertStore

	window      time.Duration
	historyDays int
	retention   time.Duration
	now         func() time.Time
}

// New cria o serviço. Campos zerados em opts usam os padrões.
func New(catalog Catalog, offerStore OfferStore, vendors VendorDirectory, alertStore AlertStore, opts Options) *Service {
	s := &Service{
		catalog:     catalog,
		offers:      offerStore,
		vendors:     vendors,
		alerts:      alertStore,
		window:      opts.FreshnessWindow,
		historyDays: opts.HistoryDays,
		retention:   opts.Retention,
		now:         opts.Now,
	}
	if s.window <= 0 {
		s.window = offers.DefaultWindow
	}
	if s.historyDays <= 0 {
		s.historyDays = int(offers.DefaultHistoryWindow / (24 * time.Hour))
	}
	if s.retention <= 0 {
		s.retention = defaultRetention
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

// HistoryDays retorna a janela padrão do histórico em dias
func (s *Service) HistoryDays() int {
	return s.historyDays
}

// SearchResult é um produto encontrado com sua melhor oferta atual
type SearchResult struct {
	Product   models.Product
	BestOffer *offers.View
}

// SearchProducts busca produtos na cidade. Produtos sem oferta recente em
// supermercados da cidade ficam de fora.
func (s *Service) SearchProducts(ctx context.Context, query, cityID string) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty query: %w", apperr.ErrInvalidInput)
	}
	if cityID == "" {
		return nil, fmt.Errorf("missing city: %w", apperr.ErrInvalidInput)
	}

	products, err := s.catalog.ActiveProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	candidates := matcher.Search(query, products)
	if len(candidates) == 0 {
		return []SearchResult{}, nil
	}

	vendorIDs, err := s.vendors.SupermarketIDsByCity(ctx, cityID)
	if err != nil {
		return nil, fmt.Errorf("listing supermarkets of city %s: %w", cityID, err)
	}
	if len(vendorIDs) == 0 {
		return []SearchResult{}, nil
	}
	eligible := offers.NewVendorSet(vendorIDs...)
	asOf := s.now()

	type hit struct {
		product models.Product
		best    models.Offer
	}
	var hits []hit
	for _, p := range candidates {
		list, err := s.offers.OffersForProduct(ctx, p.ID, vendorIDs)
		if err != nil {
			return nil, fmt.Errorf("listing offers of product %s: %w", p.ID, err)
		}
		best, ok := offers.SelectBest(offers.Filter(list, eligible, asOf, s.window))
		if !ok {
			continue
		}
		hits = append(hits, hit{product: p, best: best})
	}
	if len(hits) == 0 {
		return []SearchResult{}, nil
	}

	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.best.SupermarketID)
	}
	markets, err := s.vendors.SupermarketsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading supermarkets: %w", err)
	}

	results := make([]SearchResult, 0, len(hits))
	for _, h := range hits {
		view := offers.NewView(h.best, asOf, lookup(markets, h.best.SupermarketID))
		results = append(results, SearchResult{Product: h.product, BestOffer: &view})
	}
	return results, nil
}

// SuggestProduct retorna o produto ativo mais parecido com uma consulta que
// não casou com nenhum, ou nil
func (s *Service) SuggestProduct(ctx context.Context, query string) (*models.Product, error) {
	products, err := s.catalog.ActiveProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	p, ok := matcher.Suggest(query, products)
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// GetProduct retorna um produto pelo ID
func (s *Service) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	return s.catalog.ProductByID(ctx, productID)
}

// GetSupermarket retorna um supermercado pelo ID
func (s *Service) GetSupermarket(ctx context.Context, id string) (*models.Supermarket, error) {
	return s.vendors.SupermarketByID(ctx, id)
}

// ListSupermarkets lista os supermercados da cidade, ou todos se cityID for vazio
func (s *Service) ListSupermarkets(ctx context.Context, cityID string) ([]models.Supermarket, error) {
	list, err := s.vendors.ListSupermarkets(ctx, cityID)
	if err != nil {
		return nil, fmt.Errorf("listing supermarkets: %w", err)
	}
	if list == nil {
		list = []models.Supermarket{}
	}
	return list, nil
}

// ListCities lista as cidades com pelo menos um supermercado. Sem nome
// cadastrado, o nome é o próprio ID.
func (s *Service) ListCities(ctx context.Context) ([]models.City, error) {
	cities, err := s.vendors.Cities(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing cities: %w", err)
	}
	out := make([]models.City, 0, len(cities))
	for _, c := range cities {
		if c.Name == "" {
			c.Name = c.ID
		}
		out = append(out, c)
	}
	return out, nil
}

// GetCity retorna uma cidade pelo ID
func (s *Service) GetCity(ctx context.Context, cityID string) (*models.City, error) {
	cities, err := s.ListCities(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range cities {
		if c.ID == cityID {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("city %s: %w", cityID, apperr.ErrNotFound)
}

// GetOfferList lista as ofertas recentes do produto na cidade, da mais barata
// para a mais cara
func (s *Service) GetOfferList(ctx context.Context, productID, cityID string) ([]offers.View, error) {
	if cityID == "" {
		return nil, fmt.Errorf("missing city: %w", apperr.ErrInvalidInput)
	}
	if _, err := s.catalog.ProductByID(ctx, productID); err != nil {
		return nil, err
	}

	vendorIDs, err := s.vendors.SupermarketIDsByCity(ctx, cityID)
	if err != nil {
		return nil, fmt.Errorf("listing supermarkets of city %s: %w", cityID, err)
	}
	if len(vendorIDs) == 0 {
		return []offers.View{}, nil
	}

	list, err := s.offers.OffersForProduct(ctx, productID, vendorIDs)
	if err != nil {
		return nil, fmt.Errorf("listing offers of product %s: %w", productID, err)
	}
	asOf := s.now()
	fresh := offers.Filter(list, offers.NewVendorSet(vendorIDs...), asOf, s.window)
	offers.SortByPrice(fresh)

	markets, err := s.vendors.SupermarketsByIDs(ctx, vendorIDs)
	if err != nil {
		return nil, fmt.Errorf("loading supermarkets: %w", err)
	}

	views := make([]offers.View, 0, len(fresh))
	for _, o := range fresh {
		views = append(views, offers.NewView(o, asOf, lookup(markets, o.SupermarketID)))
	}
	return views, nil
}

// HistoryResult é o histórico de preços de um produto
type HistoryResult struct {
	Product models.Product
	Points  []offers.HistoryPoint
}

// GetHistory retorna os preços observados nos últimos days dias em ordem cronológica
func (s *Service) GetHistory(ctx context.Context, productID, cityID string, days int) (*HistoryResult, error) {
	if cityID == "" {
		return nil, fmt.Errorf("missing city: %w", apperr.ErrInvalidInput)
	}
	if days <= 0 {
		return nil, fmt.Errorf("days must be positive, got %d: %w", days, apperr.ErrInvalidInput)
	}
	product, err := s.catalog.ProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	result := &HistoryResult{Product: *product, Points: []offers.HistoryPoint{}}
	vendorIDs, err := s.vendors.SupermarketIDsByCity(ctx, cityID)
	if err != nil {
		return nil, fmt.Errorf("listing supermarkets of city %s: %w", cityID, err)
	}
	if len(vendorIDs) == 0 {
		return result, nil
	}

	list, err := s.offers.OffersForProduct(ctx, productID, vendorIDs)
	if err != nil {
		return nil, fmt.Errorf("listing offers of product %s: %w", productID, err)
	}
	markets, err := s.vendors.SupermarketsByIDs(ctx, vendorIDs)
	if err != nil {
		return nil, fmt.Errorf("loading supermarkets: %w", err)
	}
	names := make(map[string]string, len(markets))
	for id, m := range markets {
		names[id] = m.Name
	}

	since := s.now().Add(-time.Duration(days) * 24 * time.Hour)
	seq := offers.History(list, offers.NewVendorSet(vendorIDs...), names, since)
	result.Points = append(result.Points, slices.Collect(seq)...)
	return result, nil
}

// OfferInput são os dados de uma nova observação de preço
type OfferInput struct {
	ProductID     string
	SupermarketID string
	Price         decimal.Decimal
	IsPromotion   bool
	UserID        string
	PhotoURL      string
	// Source e Confidence ficam vazios para ofertas de usuários
	Source     models.OfferSource
	Confidence float64
}

// CreateOffer registra uma nova oferta. O retorno tem HoursAgo zero.
func (s *Service) CreateOffer(ctx context.Context, in OfferInput) (offers.View, error) {
	// centavos: um valor que arredonda para zero é inválido
	price := in.Price.Round(2)
	if !price.IsPositive() {
		return offers.View{}, fmt.Errorf("price must be positive, got %s: %w", in.Price, apperr.ErrInvalidInput)
	}
	if _, err := s.catalog.ProductByID(ctx, in.ProductID); err != nil {
		return offers.View{}, err
	}
	sm, err := s.vendors.SupermarketByID(ctx, in.SupermarketID)
	if err != nil {
		return offers.View{}, err
	}

	source := in.Source
	confidence := in.Confidence
	if source == "" {
		source = models.SourceCrowdsourced
	}
	if confidence <= 0 {
		confidence = crowdsourcedConfidence
	}

	now := s.now()
	o := models.Offer{
		ID:              uuid.NewString(),
		ProductID:       in.ProductID,
		SupermarketID:   in.SupermarketID,
		Price:           price,
		UnitPrice:       price,
		Currency:        models.DefaultCurrency,
		Source:          source,
		ConfidenceScore: confidence,
		CollectedAt:     now,
		ExpiresAt:       now.Add(s.retention),
		IsPromotion:     in.IsPromotion,
		StockStatus:     models.StockAvailable,
	}
	if source == models.SourceCrowdsourced {
		o.Metadata = &models.OfferMetadata{UserID: in.UserID, PhotoURL: in.PhotoURL}
	}

	if err := s.offers.InsertOffer(ctx, o); err != nil {
		return offers.View{}, fmt.Errorf("saving offer: %w", err)
	}
	return offers.NewView(o, now, sm), nil
}

func lookup(markets map[string]models.Supermarket, id string) *models.Supermarket {
	if sm, ok := markets[id]; ok {
		return &sm
	}
	return nil
}
