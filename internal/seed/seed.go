// Package seed carrega o catálogo inicial (supermercados, produtos e páginas
// coletadas pelo monitor) a partir de um arquivo YAML.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"bot-mercado/internal/apperr"
	"bot-mercado/internal/models"
	"bot-mercado/internal/normalize"
)

// Store grava o catálogo
type Store interface {
	UpsertProduct(ctx context.Context, p models.Product) error
	UpsertSupermarket(ctx context.Context, s models.Supermarket) error
	AddScrapeTarget(ctx context.Context, productID, supermarketID, url string) error
}

// File é o formato do arquivo de catálogo
type File struct {
	Supermarkets  []Supermarket `yaml:"supermarkets"`
	Products      []Product     `yaml:"products"`
	ScrapeTargets []Target      `yaml:"scrape_targets"`
}

// Supermarket é um supermercado no arquivo
type Supermarket struct {
	ID           string            `yaml:"id"`
	Name         string            `yaml:"name"`
	Chain        string            `yaml:"chain"`
	CityID       string            `yaml:"city_id"`
	Street       string            `yaml:"street"`
	Neighborhood string            `yaml:"neighborhood"`
	ZipCode      string            `yaml:"zip_code"`
	City         string            `yaml:"city"`
	State        string            `yaml:"state"`
	Latitude     float64           `yaml:"latitude"`
	Longitude    float64           `yaml:"longitude"`
	Phone        string            `yaml:"phone"`
	Website      string            `yaml:"website"`
	Social       map[string]string `yaml:"social"`
	OpeningHours map[string]string `yaml:"opening_hours"`
	Rating       float64           `yaml:"rating"`
	TotalReviews int               `yaml:"total_reviews"`
}

// Product é um produto no arquivo. Sem canonical_name, usa o nome de
// exibição normalizado.
type Product struct {
	ID            string   `yaml:"id"`
	CanonicalName string   `yaml:"canonical_name"`
	DisplayName   string   `yaml:"display_name"`
	Category      string   `yaml:"category"`
	Subcategory   string   `yaml:"subcategory"`
	Brand         string   `yaml:"brand"`
	Size          string   `yaml:"size"`
	Unit          string   `yaml:"unit"`
	EAN           string   `yaml:"ean"`
	ImageURL      string   `yaml:"image_url"`
	Synonyms      []string `yaml:"synonyms"`
	Variants      []string `yaml:"variants"`
	Inactive      bool     `yaml:"inactive"`
}

// Target é uma página de produto a ser coletada
type Target struct {
	ProductID     string `yaml:"product_id"`
	SupermarketID string `yaml:"supermarket_id"`
	URL           string `yaml:"url"`
}

// Result conta o que foi gravado
type Result struct {
	Supermarkets int
	Products     int
	Targets      int
}

// Decode lê e valida o arquivo
func Decode(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing catalog: %v: %w", err, apperr.ErrInvalidInput)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	markets := make(map[string]bool, len(f.Supermarkets))
	for i, s := range f.Supermarkets {
		if s.ID == "" || s.Name == "" || s.CityID == "" {
			return invalid("supermarket #%d needs id, name and city_id", i+1)
		}
		if markets[s.ID] {
			return invalid("duplicate supermarket %s", s.ID)
		}
		markets[s.ID] = true
	}

	products := make(map[string]bool, len(f.Products))
	for i, p := range f.Products {
		if p.ID == "" || p.DisplayName == "" {
			return invalid("product #%d needs id and display_name", i+1)
		}
		if products[p.ID] {
			return invalid("duplicate product %s", p.ID)
		}
		switch models.Unit(p.Unit) {
		case "", models.UnitMass, models.UnitVolume, models.UnitCount:
		default:
			return invalid("product %s: unknown unit %q", p.ID, p.Unit)
		}
		products[p.ID] = true
	}

	for i, t := range f.ScrapeTargets {
		if t.URL == "" || t.ProductID == "" || t.SupermarketID == "" {
			return invalid("scrape target #%d needs product_id, supermarket_id and url", i+1)
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, apperr.ErrInvalidInput)...)
}

// Apply grava o catálogo. Registros existentes são atualizados.
func Apply(ctx context.Context, store Store, f *File, now time.Time) (Result, error) {
	var res Result

	for _, s := range f.Supermarkets {
		if err := store.UpsertSupermarket(ctx, s.model(now)); err != nil {
			return res, fmt.Errorf("saving supermarket %s: %w", s.ID, err)
		}
		res.Supermarkets++
	}

	for _, p := range f.Products {
		if err := store.UpsertProduct(ctx, p.model(now)); err != nil {
			return res, fmt.Errorf("saving product %s: %w", p.ID, err)
		}
		res.Products++
	}

	for _, t := range f.ScrapeTargets {
		if err := store.AddScrapeTarget(ctx, t.ProductID, t.SupermarketID, t.URL); err != nil {
			return res, fmt.Errorf("saving scrape target %s: %w", t.URL, err)
		}
		res.Targets++
	}
	return res, nil
}

func (s Supermarket) model(now time.Time) models.Supermarket {
	return models.Supermarket{
		ID:     s.ID,
		Name:   s.Name,
		Chain:  s.Chain,
		CityID: s.CityID,
		Address: models.Address{
			Street:       s.Street,
			Neighborhood: s.Neighborhood,
			ZipCode:      s.ZipCode,
			City:         s.City,
			State:        s.State,
		},
		Location:     models.Location{Latitude: s.Latitude, Longitude: s.Longitude},
		Contact:      models.Contact{Phone: s.Phone, Website: s.Website, Social: s.Social},
		OpeningHours: s.OpeningHours,
		Rating:       s.Rating,
		TotalReviews: s.TotalReviews,
		CreatedAt:    now,
	}
}

func (p Product) model(now time.Time) models.Product {
	canonical := p.CanonicalName
	if canonical == "" {
		canonical = p.DisplayName
	}
	return models.Product{
		ID:            p.ID,
		CanonicalName: normalize.Normalize(canonical),
		DisplayName:   p.DisplayName,
		Category:      p.Category,
		Subcategory:   p.Subcategory,
		Brand:         p.Brand,
		Size:          p.Size,
		Unit:          models.Unit(p.Unit),
		EAN:           p.EAN,
		ImageURL:      p.ImageURL,
		Synonyms:      p.Synonyms,
		Variants:      p.Variants,
		Active:        !p.Inactive,
		CreatedAt:     now,
	}
}
