// Package api expõe a busca de produtos, ofertas e histórico por HTTP.
package api

import (
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bot-mercado/internal/metrics"
)

// NewRouter monta as rotas. Sem origens, CORS fica desligado; "*" libera todas.
func NewRouter(svc Service, m *metrics.Metrics, log *zap.Logger, origins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(log), AccessLog(), Metrics(m))
	if len(origins) > 0 {
		router.Use(CORS(origins))
	}

	h := NewHandler(svc, m)

	router.GET("/health", Health)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	products := router.Group("/products")
	{
		products.GET("/search", h.SearchProducts)
		products.GET("/:id", h.GetProduct)
		products.GET("/:id/history", h.GetHistory)
	}

	router.GET("/cities", h.ListCities)
	router.GET("/cities/:id", h.GetCity)
	router.GET("/supermarkets", h.ListSupermarkets)
	router.GET("/supermarkets/:id", h.GetSupermarket)

	router.GET("/offers", h.ListOffers)
	router.POST("/offers", h.CreateOffer)

	return router
}

// CORS libera o front-end web a chamar a API
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", requestIDHeader, userIDHeader},
		ExposeHeaders: []string{requestIDHeader},
	}
	if slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
