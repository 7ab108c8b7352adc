package http

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"paisavest/internal/delivery/http/dto"
	"paisavest/internal/middleware"
	"paisavest/internal/service"
)

// WithdrawalHandler handles emergency withdrawal requests
type WithdrawalHandler struct {
	withdrawals *service.WithdrawalService
}

// NewWithdrawalHandler creates a new WithdrawalHandler
func NewWithdrawalHandler(withdrawals *service.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawals: withdrawals}
}

// Emergency places an emergency withdrawal against the user's emergency fund
// POST /api/withdrawals/:id/emergency
func (h *WithdrawalHandler) Emergency(c echo.Context) error {
	externalID := c.Param("id")

	var req dto.EmergencyWithdrawalRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	req.ExternalID = externalID
	if err := c.Validate(&req); err != nil {
		return BadRequestResponse(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	wd, err := h.withdrawals.CreateEmergencyWithdrawal(ctx, externalID, service.WithdrawalInput{
		Amount:      req.Amount,
		Reason:      req.Reason,
		Method:      req.Method,
		BankDetails: req.BankDetails,
		UPIID:       req.UPIID,
	})
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return CreatedResponse(c, "Withdrawal requested", dto.NewWithdrawalOutput(wd))
}

// History returns a page of the user's withdrawals, newest first
// GET /api/withdrawals/:id/history?page=&limit=
func (h *WithdrawalHandler) History(c echo.Context) error {
	externalID := c.Param("id")

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	wds, total, err := h.withdrawals.History(ctx, externalID, page, limit)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessResponse(c, map[string]interface{}{
		"withdrawals": dto.NewWithdrawalOutputs(wds),
		"pagination":  dto.NewPaginationOutput(page, limit, total),
	})
}

// Status returns a single withdrawal by id
// GET /api/withdrawals/:id/status
func (h *WithdrawalHandler) Status(c echo.Context) error {
	wid, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid withdrawal id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	wd, err := h.withdrawals.Status(ctx, wid)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessResponse(c, dto.NewWithdrawalOutput(wd))
}

// Cancel cancels a pending withdrawal and restores the balances it reserved.
// The caller's identity comes from the auth token when present, otherwise
// from the request body.
// POST /api/withdrawals/:id/cancel
func (h *WithdrawalHandler) Cancel(c echo.Context) error {
	wid, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid withdrawal id")
	}

	externalID, ok := middleware.ExternalID(c)
	if !ok {
		var req dto.CancelWithdrawalRequest
		if err := c.Bind(&req); err != nil {
			return BadRequestResponse(c, "Invalid request payload")
		}
		if req.ExternalID == "" {
			return BadRequestResponse(c, "external_id is required")
		}
		externalID = req.ExternalID
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	wd, err := h.withdrawals.Cancel(ctx, wid, externalID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessMessageResponse(c, "Withdrawal cancelled", dto.NewWithdrawalOutput(wd))
}
