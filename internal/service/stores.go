package service

import (
	"context"

	"bot-mercado/internal/models"
)

// Catalog fornece os produtos do catálogo
type Catalog interface {
	ActiveProducts(ctx context.Context) ([]models.Product, error)
	// ProductByID retorna apperr.ErrNotFound quando o produto não existe
	ProductByID(ctx context.Context, id string) (*models.Product, error)
}

// OfferStore guarda as observações de preço. Os filtros de produto e
// supermercado são aplicados na consulta; recência e ranking ficam no serviço.
type OfferStore interface {
	OffersForProduct(ctx context.Context, productID string, supermarketIDs []string) ([]models.Offer, error)
	InsertOffer(ctx context.Context, offer models.Offer) error
}

// VendorDirectory resolve supermarkets por cidade e seus dados de exibição
type VendorDirectory interface {
	SupermarketIDsByCity(ctx context.Context, cityID string) ([]string, error)
	AllSupermarketIDs(ctx context.Context) ([]string, error)
	SupermarketsByIDs(ctx context.Context, ids []string) (map[string]models.Supermarket, error)
	// SupermarketByID retorna apperr.ErrNotFound quando o supermercado não existe
	SupermarketByID(ctx context.Context, id string) (*models.Supermarket, error)
	// ListSupermarkets lista todos quando cityID é vazio
	ListSupermarkets(ctx context.Context, cityID string) ([]models.Supermarket, error)
	Cities(ctx context.Context) ([]models.City, error)
}

// AlertStore persiste alertas
type AlertStore interface {
	InsertAlert(ctx context.Context, alert models.Alert) error
	// AlertByID retorna apperr.ErrNotFound quando o alerta não existe
	AlertByID(ctx context.Context, id string) (*models.Alert, error)
	ActiveAlerts(ctx context.Context) ([]models.Alert, error)
	AlertsByUser(ctx context.Context, userID string) ([]models.Alert, error)
	// SaveAlert grava o estado se alert.Version ainda for a versão armazenada,
	// caso contrário retorna apperr.ErrConflict. Retorna o alerta com a nova versão.
	SaveAlert(ctx context.Context, alert models.Alert) (models.Alert, error)
}
