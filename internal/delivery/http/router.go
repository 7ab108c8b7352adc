package http

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	custommiddleware "paisavest/internal/middleware"
	"paisavest/internal/utils"
)

// RouterConfig holds all dependencies for routing
type RouterConfig struct {
	UserHandler       *UserHandler
	InvestmentHandler *InvestmentHandler
	PortfolioHandler  *PortfolioHandler
	WithdrawalHandler *WithdrawalHandler
	JWTSecret         string
}

// SetupRoutes configures all HTTP routes
func SetupRoutes(e *echo.Echo, config *RouterConfig) {
	// Middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())

	e.Validator = NewRequestValidator()

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return SuccessResponse(c, map[string]interface{}{
			"status":    "healthy",
			"service":   "paisavest-api",
			"timestamp": utils.GetISTTime().Format(time.RFC3339),
		})
	})

	auth := custommiddleware.AuthMiddleware(config.JWTSecret)
	owner := custommiddleware.RequireOwner("id")

	api := e.Group("/api", auth)

	users := api.Group("/users")
	{
		users.POST("", config.UserHandler.Upsert)
		users.GET("/:id", config.UserHandler.Get, owner)
		users.PUT("/:id", config.UserHandler.Update, owner)
		users.GET("/:id/dashboard", config.UserHandler.Dashboard, owner)
	}

	investments := api.Group("/investments")
	{
		investments.POST("", config.InvestmentHandler.Create)
		investments.POST("/roundup", config.InvestmentHandler.RoundUp)
		investments.POST("/sip", config.InvestmentHandler.SIP)
		investments.GET("/:id", config.InvestmentHandler.List, owner)
	}

	portfolio := api.Group("/portfolio")
	{
		portfolio.GET("/:id", config.PortfolioHandler.Get, owner)
		portfolio.GET("/:id/history", config.PortfolioHandler.History, owner)
		portfolio.POST("/:id/refresh", config.PortfolioHandler.Refresh, owner)
		portfolio.GET("/:id/recommendations", config.PortfolioHandler.Recommendations, owner)
	}

	withdrawals := api.Group("/withdrawals")
	{
		withdrawals.POST("/:id/emergency", config.WithdrawalHandler.Emergency, owner)
		withdrawals.GET("/:id/history", config.WithdrawalHandler.History, owner)
		withdrawals.GET("/:id/status", config.WithdrawalHandler.Status)
		withdrawals.POST("/:id/cancel", config.WithdrawalHandler.Cancel)
	}
}
