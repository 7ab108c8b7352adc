package http

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"paisavest/internal/service"
)

// PortfolioHandler handles portfolio aggregate requests
type PortfolioHandler struct {
	portfolios *service.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolios *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{portfolios: portfolios}
}

// Get returns the stored portfolio aggregate
// GET /api/portfolio/:id
func (h *PortfolioHandler) Get(c echo.Context) error {
	externalID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	portfolio, err := h.portfolios.Get(ctx, externalID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessResponse(c, portfolio)
}

// Refresh recomputes the portfolio from the completed ledger
// POST /api/portfolio/:id/refresh
func (h *PortfolioHandler) Refresh(c echo.Context) error {
	externalID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	portfolio, err := h.portfolios.Recalculate(ctx, externalID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessMessageResponse(c, "Portfolio refreshed", portfolio)
}

// History returns a value series for charting
// GET /api/portfolio/:id/history?period=1M|6M|1Y
func (h *PortfolioHandler) History(c echo.Context) error {
	period := c.QueryParam("period")
	if period == "" {
		period = "1M"
	}
	switch period {
	case "1M", "6M", "1Y":
	default:
		return BadRequestResponse(c, "period must be one of 1M, 6M, 1Y")
	}

	return SuccessResponse(c, map[string]interface{}{
		"period":  period,
		"history": h.portfolios.History(period),
	})
}

// Recommendations returns next-step nudges for a user
// GET /api/portfolio/:id/recommendations
func (h *PortfolioHandler) Recommendations(c echo.Context) error {
	externalID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	recs, err := h.portfolios.Recommendations(ctx, externalID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessResponse(c, map[string]interface{}{
		"recommendations": recs,
	})
}
