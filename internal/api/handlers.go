package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bot-mercado/internal/apperr"
	"bot-mercado/internal/metrics"
	"bot-mercado/internal/models"
	"bot-mercado/internal/offers"
	"bot-mercado/internal/service"
)

// userIDHeader identifica quem enviou a oferta. Opcional.
const userIDHeader = "X-User-ID"

// Service são as operações expostas pela API
type Service interface {
	SearchProducts(ctx context.Context, query, cityID string) ([]service.SearchResult, error)
	GetProduct(ctx context.Context, productID string) (*models.Product, error)
	GetOfferList(ctx context.Context, productID, cityID string) ([]offers.View, error)
	GetHistory(ctx context.Context, productID, cityID string, days int) (*service.HistoryResult, error)
	HistoryDays() int
	CreateOffer(ctx context.Context, in service.OfferInput) (offers.View, error)
	ListCities(ctx context.Context) ([]models.City, error)
	GetCity(ctx context.Context, cityID string) (*models.City, error)
	ListSupermarkets(ctx context.Context, cityID string) ([]models.Supermarket, error)
	GetSupermarket(ctx context.Context, id string) (*models.Supermarket, error)
}

// Handler atende as rotas de produtos e ofertas
type Handler struct {
	svc     Service
	metrics *metrics.Metrics
}

// NewHandler cria o handler
func NewHandler(svc Service, m *metrics.Metrics) *Handler {
	return &Handler{svc: svc, metrics: m}
}

// GET /products/search?q=&city_id=
func (h *Handler) SearchProducts(c *gin.Context) {
	results, err := h.svc.SearchProducts(c.Request.Context(), c.Query("q"), c.Query("city_id"))
	if err != nil {
		h.metrics.Search("error")
		RespondError(c, err)
		return
	}
	if len(results) == 0 {
		h.metrics.Search("empty")
	} else {
		h.metrics.Search("hit")
	}

	out := make([]productDTO, 0, len(results))
	for _, r := range results {
		dto := toProduct(r.Product)
		if r.BestOffer != nil {
			dto.BestOffer = &bestOfferDTO{
				Price:       r.BestOffer.Price.InexactFloat64(),
				IsPromotion: r.BestOffer.IsPromotion,
				HoursAgo:    r.BestOffer.HoursAgo,
				Supermarket: toVendor(r.BestOffer.Supermarket, false),
			}
		}
		out = append(out, dto)
	}
	c.JSON(http.StatusOK, out)
}

// GET /cities
func (h *Handler) ListCities(c *gin.Context) {
	cities, err := h.svc.ListCities(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	out := make([]cityDTO, 0, len(cities))
	for _, city := range cities {
		out = append(out, toCity(city))
	}
	c.JSON(http.StatusOK, out)
}

// GET /cities/:id
func (h *Handler) GetCity(c *gin.Context) {
	city, err := h.svc.GetCity(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCity(*city))
}

// GET /supermarkets?city_id=
func (h *Handler) ListSupermarkets(c *gin.Context) {
	list, err := h.svc.ListSupermarkets(c.Request.Context(), c.Query("city_id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	out := make([]supermarketDTO, 0, len(list))
	for _, s := range list {
		out = append(out, toSupermarket(s))
	}
	c.JSON(http.StatusOK, out)
}

// GET /supermarkets/:id
func (h *Handler) GetSupermarket(c *gin.Context) {
	s, err := h.svc.GetSupermarket(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSupermarket(*s))
}

// GET /products/:id
func (h *Handler) GetProduct(c *gin.Context) {
	p, err := h.svc.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProduct(*p))
}

// GET /products/:id/history?city_id=&days=
func (h *Handler) GetHistory(c *gin.Context) {
	days := h.svc.HistoryDays()
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			RespondError(c, fmt.Errorf("days must be an integer: %w", apperr.ErrInvalidInput))
			return
		}
		days = n
	}

	res, err := h.svc.GetHistory(c.Request.Context(), c.Param("id"), c.Query("city_id"), days)
	if err != nil {
		RespondError(c, err)
		return
	}

	out := historyDTO{Product: toProduct(res.Product), History: make([]historyPointDTO, 0, len(res.Points))}
	for _, p := range res.Points {
		out.History = append(out.History, historyPointDTO{
			Date:            p.Date,
			Price:           p.Price.InexactFloat64(),
			SupermarketID:   p.SupermarketID,
			SupermarketName: p.SupermarketName,
		})
	}
	c.JSON(http.StatusOK, out)
}

// GET /offers?product_id=&city_id=
func (h *Handler) ListOffers(c *gin.Context) {
	productID := c.Query("product_id")
	if productID == "" {
		RespondError(c, fmt.Errorf("missing product_id: %w", apperr.ErrInvalidInput))
		return
	}

	list, err := h.svc.GetOfferList(c.Request.Context(), productID, c.Query("city_id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	out := make([]offerDTO, 0, len(list))
	for _, v := range list {
		out = append(out, toOffer(v))
	}
	c.JSON(http.StatusOK, out)
}

// POST /offers
func (h *Handler) CreateOffer(c *gin.Context) {
	var req createOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, fmt.Errorf("%v: %w", err, apperr.ErrInvalidInput))
		return
	}

	view, err := h.svc.CreateOffer(c.Request.Context(), service.OfferInput{
		ProductID:     req.ProductID,
		SupermarketID: req.SupermarketID,
		Price:         req.Price,
		IsPromotion:   req.IsPromotion,
		UserID:        c.GetHeader(userIDHeader),
		PhotoURL:      req.PhotoURL,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	h.metrics.OfferCollected(string(view.Source))
	c.JSON(http.StatusCreated, toOffer(view))
}

// GET /health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
