package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// RegisterRoutes configures all API routes, middleware, and error handlers
func RegisterRoutes(e *echo.Echo, h *Handlers, cfg ServerConfig, gatherer prometheus.Gatherer) {
	// Set custom error handler for consistent JSON responses
	e.HTTPErrorHandler = JSONErrorHandler(cfg.DevMode)

	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	// API v1 routes
	v1 := e.Group("/v1", SetJSONContentType, SetNoCacheHeaders)

	// Optional API key authentication
	if cfg.APIKey != "" {
		v1.Use(middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			KeyLookup: "header:X-API-Key",
			Validator: func(key string, c echo.Context) (bool, error) {
				return key == cfg.APIKey, nil
			},
		}))
	}

	v1.GET("/health", h.Health)
	v1.GET("/authority", h.Authority)
	v1.GET("/pools", h.ListPools)
	v1.GET("/pools/:name/price", h.Price)
	v1.GET("/pools/:name/history", h.QuoteHistory)
	v1.PUT("/pools/:name/swap", h.SetPoolSwap)
	v1.GET("/quotes/recent", h.RecentQuotes)
	v1.GET("/swaps/recent", h.RecentSwaps)

	// Instruction builders fetch chain state, so they are rate limited
	limit, burst := cfg.RateLimit, cfg.RateBurst
	if limit <= 0 {
		limit = 5
	}
	if burst <= 0 {
		burst = 10
	}
	ixGroup := v1.Group("/instructions")
	ixGroup.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(limit),
		Burst:     burst,
		ExpiresIn: 2 * time.Minute,
	})))
	ixGroup.POST("/swap", h.SwapInstruction)
	ixGroup.POST("/read-price", h.ReadPriceInstruction)

	// Feature flags CRUD endpoints
	flagGroup := v1.Group("/flags")
	flagGroup.GET("", h.FlagsList)
	flagGroup.POST("", h.FlagsUpsert)
	flagGroup.GET("/:key", h.FlagsGet)
	flagGroup.PUT("/:key", h.FlagsUpdate)
	flagGroup.DELETE("/:key", h.FlagsDelete)

	// Catch-all route for 404 responses
	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found", Code: http.StatusNotFound})
	})
}
