package seed

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bot-mercado/internal/apperr"
	"bot-mercado/internal/models"
)

type memStore struct {
	products     []models.Product
	supermarkets []models.Supermarket
	targets      []Target
	failTarget   bool
}

func (m *memStore) UpsertProduct(_ context.Context, p models.Product) error {
	m.products = append(m.products, p)
	return nil
}

func (m *memStore) UpsertSupermarket(_ context.Context, s models.Supermarket) error {
	m.supermarkets = append(m.supermarkets, s)
	return nil
}

func (m *memStore) AddScrapeTarget(_ context.Context, productID, supermarketID, url string) error {
	if m.failTarget {
		return errors.New("FOREIGN KEY constraint failed")
	}
	m.targets = append(m.targets, Target{ProductID: productID, SupermarketID: supermarketID, URL: url})
	return nil
}

const catalog = `
supermarkets:
  - id: atacadao-boa-viagem
    name: Atacadão
    city_id: recife
    street: Av. Mascarenhas de Morais, 5000
    city: Recife
    state: PE
    social:
      instagram: "@atacadao"
products:
  - id: leite-itambe-1l
    display_name: Leite Integral Itambé 1L
    brand: Itambé
    unit: volume
    synonyms: [leite itambe]
  - id: arroz-tio-joao-5kg
    display_name: Arroz Tio João
    canonical_name: Arroz Tipo 1 Tio João 5 kg
    unit: mass
    inactive: true
scrape_targets:
  - product_id: leite-itambe-1l
    supermarket_id: atacadao-boa-viagem
    url: https://www.atacadao.com.br/leite-integral-itambe-1l/p
`

func TestDecodeAndApply(t *testing.T) {
	f, err := Decode(strings.NewReader(catalog))
	require.NoError(t, err)

	store := &memStore{}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	res, err := Apply(context.Background(), store, f, now)
	require.NoError(t, err)
	assert.Equal(t, Result{Supermarkets: 1, Products: 2, Targets: 1}, res)

	require.Len(t, store.supermarkets, 1)
	sm := store.supermarkets[0]
	assert.Equal(t, "recife", sm.CityID)
	assert.Equal(t, "Recife", sm.Address.City)
	assert.Equal(t, "@atacadao", sm.Contact.Social["instagram"])
	assert.True(t, now.Equal(sm.CreatedAt))

	require.Len(t, store.products, 2)
	assert.Equal(t, "leite integral itambe 1000ml", store.products[0].CanonicalName)
	assert.Equal(t, models.UnitVolume, store.products[0].Unit)
	assert.True(t, store.products[0].Active)
	assert.Equal(t, "arroz tipo 1 tio joao 5000g", store.products[1].CanonicalName)
	assert.False(t, store.products[1].Active)

	require.Len(t, store.targets, 1)
	assert.Equal(t, "atacadao-boa-viagem", store.targets[0].SupermarketID)
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown field", "produtos: []"},
		{"supermarket without city", "supermarkets:\n  - id: s1\n    name: Extra\n"},
		{"duplicate supermarket", "supermarkets:\n  - {id: s1, name: A, city_id: recife}\n  - {id: s1, name: B, city_id: recife}\n"},
		{"product without name", "products:\n  - id: p1\n"},
		{"unknown unit", "products:\n  - {id: p1, display_name: Leite, unit: litro}\n"},
		{"target without url", "scrape_targets:\n  - {product_id: p1, supermarket_id: s1}\n"},
		{"malformed", "products: ["},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, apperr.ErrInvalidInput)
		})
	}
}

func TestDecode_Empty(t *testing.T) {
	f, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Products)
}

func TestApply_StopsOnError(t *testing.T) {
	f, err := Decode(strings.NewReader(catalog))
	require.NoError(t, err)

	res, err := Apply(context.Background(), &memStore{failTarget: true}, f, time.Now())
	assert.Error(t, err)
	assert.Equal(t, Result{Supermarkets: 1, Products: 2}, res)
}
