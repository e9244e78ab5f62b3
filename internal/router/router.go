package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pageza/kodawari/backend/config"
	"github.com/pageza/kodawari/backend/internal/api"
	"github.com/pageza/kodawari/backend/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by SetupRouter
type Handlers struct {
	Generate  *api.GenerateHandler
	Recipes   *api.RecipeHandler
	Labels    *api.LabelHandler
	Purchases *api.PurchaseHandler
	Accounts  *api.AccountHandler
	Health    *api.HealthHandler
}

// SetupRouter configures the application routes. limiter may be nil, in
// which case generation is not rate limited.
func SetupRouter(cfg *config.Config, h Handlers, limiter *middleware.RateLimiter, log *zap.Logger) *gin.Engine {
	gin.SetMode(cfg.Environment.GinMode())
	router := gin.New()

	router.Use(
		middleware.RequestID(),
		middleware.CORS(cfg.CORSAllowedOrigins),
		middleware.Logger(log),
		middleware.Recovery(log),
		middleware.Metrics(),
	)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	h.Health.RegisterRoutes(router)

	// API v1 routes
	v1 := router.Group("/api/v1")
	h.Generate.RegisterRoutes(v1, limiter.RateLimitMiddleware())
	h.Recipes.RegisterRoutes(v1)
	h.Labels.RegisterRoutes(v1)
	h.Purchases.RegisterRoutes(v1)
	h.Accounts.RegisterRoutes(v1)

	return router
}
