package http

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"paisavest/internal/delivery/http/dto"
	"paisavest/internal/domain"
	"paisavest/internal/usecase"
)

// InvestmentHandler handles investment ledger requests
type InvestmentHandler struct {
	investments *usecase.InvestmentService
}

// NewInvestmentHandler creates a new InvestmentHandler
func NewInvestmentHandler(investments *usecase.InvestmentService) *InvestmentHandler {
	return &InvestmentHandler{investments: investments}
}

// Create places a manual investment
// POST /api/investments
func (h *InvestmentHandler) Create(c echo.Context) error {
	var req dto.CreateInvestmentRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return BadRequestResponse(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	inv, err := h.investments.CreateInvestment(ctx, usecase.CreateInvestmentInput{
		ExternalID:     req.ExternalID,
		InvestmentType: req.InvestmentType,
		FundName:       req.FundName,
		FundCode:       req.FundCode,
		Amount:         req.Amount,
		Source:         req.Source,
	})
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return CreatedResponse(c, "Investment placed", dto.NewInvestmentOutput(inv))
}

// List returns a page of a user's ledger, newest first
// GET /api/investments/:id?type=&source=&page=&limit=
func (h *InvestmentHandler) List(c echo.Context) error {
	externalID := c.Param("id")

	filter := domain.InvestmentFilter{
		Type:   c.QueryParam("type"),
		Source: c.QueryParam("source"),
	}
	if page, err := strconv.Atoi(c.QueryParam("page")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.QueryParam("limit")); err == nil {
		filter.Limit = limit
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	invs, total, err := h.investments.GetInvestments(ctx, externalID, filter)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return SuccessResponse(c, dto.InvestmentListOutput{
		Investments: dto.NewInvestmentOutputs(invs),
		Pagination:  dto.NewPaginationOutput(page, limit, total),
	})
}

// RoundUp invests the spare change of a spending transaction
// POST /api/investments/roundup
func (h *InvestmentHandler) RoundUp(c echo.Context) error {
	var req dto.RoundUpRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return BadRequestResponse(c, err.Error())
	}
	if !req.TransactionAmount.IsPositive() {
		return BadRequestResponse(c, "transaction_amount must be positive")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	inv, roundUp, err := h.investments.ProcessRoundUp(ctx, req.ExternalID, req.TransactionAmount)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return CreatedResponse(c, "Round-up invested", dto.RoundUpOutput{
		Investment:        dto.NewInvestmentOutput(inv),
		TransactionAmount: req.TransactionAmount,
		RoundedTo:         roundUp.Rounded,
		RoundUpAmount:     roundUp.RoundUp,
	})
}

// SIP places today's SIP purchase for a user
// POST /api/investments/sip
func (h *InvestmentHandler) SIP(c echo.Context) error {
	var req dto.SIPRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return BadRequestResponse(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	inv, err := h.investments.ProcessDailySIP(ctx, req.ExternalID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return CreatedResponse(c, "SIP placed", dto.NewInvestmentOutput(inv))
}
