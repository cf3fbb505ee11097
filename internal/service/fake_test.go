package service

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"bot-mercado/internal/apperr"
	"bot-mercado/internal/models"
)

type fakeStore struct {
	mu       sync.Mutex
	products []models.Product
	markets  []models.Supermarket
	offers   []models.Offer
	alerts   map[string]models.Alert
}

func newFakeStore() *fakeStore {
	return &fakeStore{alerts: map[string]models.Alert{}}
}

func (f *fakeStore) ActiveProducts(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	for _, p := range f.products {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) ProductByID(ctx context.Context, id string) (*models.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("product %s: %w", id, apperr.ErrNotFound)
}

func (f *fakeStore) OffersForProduct(ctx context.Context, productID string, supermarketIDs []string) ([]models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Offer
	for _, o := range f.offers {
		if o.ProductID == productID && slices.Contains(supermarketIDs, o.SupermarketID) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertOffer(ctx context.Context, offer models.Offer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offers = append(f.offers, offer)
	return nil
}

func (f *fakeStore) SupermarketIDsByCity(ctx context.Context, cityID string) ([]string, error) {
	var ids []string
	for _, m := range f.markets {
		if m.CityID == cityID {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

func (f *fakeStore) AllSupermarketIDs(ctx context.Context) ([]string, error) {
	var ids []string
	for _, m := range f.markets {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func (f *fakeStore) SupermarketsByIDs(ctx context.Context, ids []string) (map[string]models.Supermarket, error) {
	out := map[string]models.Supermarket{}
	for _, m := range f.markets {
		if slices.Contains(ids, m.ID) {
			out[m.ID] = m
		}
	}
	return out, nil
}

func (f *fakeStore) SupermarketByID(ctx context.Context, id string) (*models.Supermarket, error) {
	for _, m := range f.markets {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, fmt.Errorf("supermarket %s: %w", id, apperr.ErrNotFound)
}

func (f *fakeStore) ListSupermarkets(ctx context.Context, cityID string) ([]models.Supermarket, error) {
	var out []models.Supermarket
	for _, m := range f.markets {
		if cityID == "" || m.CityID == cityID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) Cities(ctx context.Context) ([]models.City, error) {
	var out []models.City
	index := map[string]int{}
	for _, m := range f.markets {
		i, ok := index[m.CityID]
		if !ok {
			i = len(out)
			index[m.CityID] = i
			out = append(out, models.City{ID: m.CityID})
		}
		out[i].Supermarkets++
		if m.Address.City != "" {
			out[i].Name, out[i].State = m.Address.City, m.Address.State
		}
	}
	return out, nil
}

func (f *fakeStore) InsertAlert(ctx context.Context, alert models.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts[alert.ID] = alert
	return nil
}

func (f *fakeStore) AlertByID(ctx context.Context, id string) (*models.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.alerts[id]
	if !ok {
		return nil, fmt.Errorf("alert %s: %w", id, apperr.ErrNotFound)
	}
	return &a, nil
}

func (f *fakeStore) ActiveAlerts(ctx context.Context) ([]models.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Alert
	for _, a := range f.alerts {
		if a.Active {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) AlertsByUser(ctx context.Context, userID string) ([]models.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Alert
	for _, a := range f.alerts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) SaveAlert(ctx context.Context, alert models.Alert) (models.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.alerts[alert.ID]
	if !ok {
		return models.Alert{}, fmt.Errorf("alert %s: %w", alert.ID, apperr.ErrNotFound)
	}
	if cur.Version != alert.Version {
		return models.Alert{}, fmt.Errorf("alert %s: %w", alert.ID, apperr.ErrConflict)
	}
	alert.Version++
	f.alerts[alert.ID] = alert
	return alert, nil
}
