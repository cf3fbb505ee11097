package api

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bot-mercado/internal/apperr"
	"bot-mercado/internal/models"
	"bot-mercado/internal/offers"
)

// APIError é o corpo de erro das respostas
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ErrorEnvelope envolve o erro na chave "error"
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError traduz o erro para status e código. Erros internos não vazam a mensagem.
func RespondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	body := APIError{Message: err.Error(), Code: errorCode(err)}
	if body.Code == "internal" {
		loggerFrom(c).Error("Erro ao processar requisição", zap.Error(err))
		body.Message = "internal error"
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: body})
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperr.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, apperr.ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}

type addressDTO struct {
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	ZipCode      string `json:"zip_code"`
	City         string `json:"city"`
	State        string `json:"state"`
}

type vendorDTO struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Address    *addressDTO `json:"address,omitempty"`
	DistanceKm float64     `json:"distance_km"`
}

type bestOfferDTO struct {
	Price       float64    `json:"price"`
	IsPromotion bool       `json:"is_promotion"`
	HoursAgo    int        `json:"hours_ago"`
	Supermarket *vendorDTO `json:"supermarket"`
}

type productDTO struct {
	ID            string        `json:"id"`
	DisplayName   string        `json:"display_name"`
	CanonicalName string        `json:"canonical_name"`
	Category      string        `json:"category"`
	Subcategory   string        `json:"subcategory,omitempty"`
	Brand         string        `json:"brand"`
	Size          string        `json:"size"`
	Unit          string        `json:"unit"`
	EAN           string        `json:"ean,omitempty"`
	ImageURL      string        `json:"image_url,omitempty"`
	BestOffer     *bestOfferDTO `json:"best_offer,omitempty"`
}

type offerDTO struct {
	ID            string     `json:"id"`
	ProductID     string     `json:"product_id"`
	SupermarketID string     `json:"supermarket_id"`
	Price         float64    `json:"price"`
	CollectedAt   time.Time  `json:"collected_at"`
	HoursAgo      int        `json:"hours_ago"`
	IsPromotion   bool       `json:"is_promotion"`
	StockStatus   string     `json:"stock_status"`
	Source        string     `json:"source"`
	Supermarket   *vendorDTO `json:"supermarket,omitempty"`
}

type historyPointDTO struct {
	Date            time.Time `json:"date"`
	Price           float64   `json:"price"`
	SupermarketID   string    `json:"supermarket_id"`
	SupermarketName string    `json:"supermarket_name"`
}

type historyDTO struct {
	Product productDTO        `json:"product"`
	History []historyPointDTO `json:"history"`
}

type locationDTO struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type supermarketDTO struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Chain        string            `json:"chain,omitempty"`
	CityID       string            `json:"city_id"`
	Address      addressDTO        `json:"address"`
	Location     locationDTO       `json:"location"`
	Phone        string            `json:"phone,omitempty"`
	Website      string            `json:"website,omitempty"`
	OpeningHours map[string]string `json:"opening_hours,omitempty"`
	Rating       float64           `json:"rating"`
	TotalReviews int               `json:"total_reviews"`
}

type cityDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	State        string `json:"state"`
	Supermarkets int    `json:"supermarkets"`
}

func toSupermarket(s models.Supermarket) supermarketDTO {
	return supermarketDTO{
		ID:     s.ID,
		Name:   s.Name,
		Chain:  s.Chain,
		CityID: s.CityID,
		Address: addressDTO{
			Street:       s.Address.Street,
			Neighborhood: s.Address.Neighborhood,
			ZipCode:      s.Address.ZipCode,
			City:         s.Address.City,
			State:        s.Address.State,
		},
		Location:     locationDTO{Latitude: s.Location.Latitude, Longitude: s.Location.Longitude},
		Phone:        s.Contact.Phone,
		Website:      s.Contact.Website,
		OpeningHours: s.OpeningHours,
		Rating:       s.Rating,
		TotalReviews: s.TotalReviews,
	}
}

func toCity(c models.City) cityDTO {
	return cityDTO{ID: c.ID, Name: c.Name, State: c.State, Supermarkets: c.Supermarkets}
}

type createOfferRequest struct {
	ProductID     string          `json:"product_id" binding:"required"`
	SupermarketID string          `json:"supermarket_id" binding:"required"`
	Price         decimal.Decimal `json:"price"`
	PhotoURL      string          `json:"photo_url"`
	IsPromotion   bool            `json:"is_promotion"`
}

func toProduct(p models.Product) productDTO {
	return productDTO{
		ID:            p.ID,
		DisplayName:   p.DisplayName,
		CanonicalName: p.CanonicalName,
		Category:      p.Category,
		Subcategory:   p.Subcategory,
		Brand:         p.Brand,
		Size:          p.Size,
		Unit:          string(p.Unit),
		EAN:           p.EAN,
		ImageURL:      p.ImageURL,
	}
}

func toVendor(v *offers.Vendor, withAddress bool) *vendorDTO {
	if v == nil {
		return nil
	}
	dto := &vendorDTO{ID: v.ID, Name: v.Name, DistanceKm: v.DistanceKm}
	if withAddress {
		dto.Address = &addressDTO{
			Street:       v.Address.Street,
			Neighborhood: v.Address.Neighborhood,
			ZipCode:      v.Address.ZipCode,
			City:         v.Address.City,
			State:        v.Address.State,
		}
	}
	return dto
}

func toOffer(v offers.View) offerDTO {
	return offerDTO{
		ID:            v.ID,
		ProductID:     v.ProductID,
		SupermarketID: v.SupermarketID,
		Price:         v.Price.InexactFloat64(),
		CollectedAt:   v.CollectedAt,
		HoursAgo:      v.HoursAgo,
		IsPromotion:   v.IsPromotion,
		StockStatus:   string(v.StockStatus),
		Source:        string(v.Source),
		Supermarket:   toVendor(v.Supermarket, true),
	}
}
