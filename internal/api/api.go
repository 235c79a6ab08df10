package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/retailpulse/internal/api/handlers"
	"github.com/andresuchdata/retailpulse/internal/api/middleware"
	"github.com/andresuchdata/retailpulse/internal/metrics"
	"github.com/andresuchdata/retailpulse/internal/period"
	"github.com/andresuchdata/retailpulse/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Products  *service.ProductService
	Sales     *service.SaleService
	Analytics *service.AnalyticsService
	Inventory *service.InventoryService
	Metrics   *metrics.Metrics
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if services == nil {
		return router
	}

	if services.Metrics != nil {
		router.Use(middleware.Metrics(services.Metrics))
		router.GET("/metrics", gin.WrapH(services.Metrics.Handler()))
	}

	apiGroup := router.Group("/api/v1")

	if services.Products != nil {
		productHandler := handlers.NewProductHandler(services.Products, services.Analytics)
		products := apiGroup.Group("/products")
		{
			products.POST("", productHandler.Create)
			products.GET("", productHandler.List)
			products.GET("/:id", productHandler.Get)
			products.PUT("/:id", productHandler.Update)

			analytics := products.Group("/analytics")
			{
				analytics.GET("/by-category", productHandler.ByCategory)
				analytics.GET("/search", productHandler.Search)
				if services.Analytics != nil {
					analytics.GET("/top-selling", productHandler.TopSelling)
				}
			}
		}
	}

	if services.Sales != nil && services.Analytics != nil {
		saleHandler := handlers.NewSaleHandler(services.Sales, services.Analytics)
		sales := apiGroup.Group("/sales")
		{
			sales.POST("", saleHandler.Create)
			sales.GET("", saleHandler.List)
			sales.GET("/:id", saleHandler.Get)

			analysis := sales.Group("/analysis")
			{
				analysis.GET("/daily", saleHandler.Analysis(period.Day))
				analysis.GET("/weekly", saleHandler.Analysis(period.Week))
				analysis.GET("/monthly", saleHandler.Analysis(period.Month))
				analysis.GET("/annual", saleHandler.Analysis(period.Year))
				analysis.GET("/by-category", saleHandler.ByCategory)
				analysis.GET("/compare", saleHandler.Compare)
			}
		}
	}

	if services.Inventory != nil {
		inventoryHandler := handlers.NewInventoryHandler(services.Inventory)
		inventory := apiGroup.Group("/inventory")
		{
			inventory.POST("", inventoryHandler.Create)
			inventory.GET("", inventoryHandler.List)
			inventory.GET("/items/:product_id", inventoryHandler.Get)
			inventory.PUT("/items/:product_id", inventoryHandler.Update)
			inventory.POST("/items/:product_id/adjust", inventoryHandler.Adjust)
			inventory.GET("/alerts/low-stock", inventoryHandler.LowStock)
			inventory.GET("/summary", inventoryHandler.Summary)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
