package http

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"paisavest/internal/delivery/http/dto"
	"paisavest/internal/domain"
)

// UserHandler handles user profile requests
type UserHandler struct {
	userRepo      domain.UserRepository
	portfolioRepo domain.PortfolioRepository
	log           *logrus.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo domain.UserRepository, portfolioRepo domain.PortfolioRepository, log *logrus.Logger) *UserHandler {
	return &UserHandler{
		userRepo:      userRepo,
		portfolioRepo: portfolioRepo,
		log:           log,
	}
}

// Upsert creates a user from an identity-provider event, or returns the
// existing profile when the external id is already known
// POST /api/users
func (h *UserHandler) Upsert(c echo.Context) error {
	var req dto.UpsertUserRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return BadRequestResponse(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if existing, err := h.userRepo.GetByExternalID(ctx, req.ExternalID); err == nil {
		return SuccessResponse(c, dto.NewUserOutput(existing))
	} else if !errors.Is(err, domain.ErrNotFound) {
		return InternalServerErrorResponse(c, "Failed to look up user", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:                uuid.New(),
		ExternalID:        req.ExternalID,
		Email:             req.Email,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		ExperienceLevel:   domain.ExperienceBeginner,
		RiskTolerance:     domain.RiskLow,
		EmergencyFundGoal: decimal.NewFromInt(5000),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := h.userRepo.Create(ctx, user); err != nil {
		return InternalServerErrorResponse(c, "Failed to create user", err)
	}

	// Each user owns exactly one portfolio, created alongside the profile
	portfolio := &domain.Portfolio{
		ID:         uuid.New(),
		UserID:     user.ID,
		ExternalID: user.ExternalID,
		EmergencyFund: domain.EmergencyFund{
			Goal: user.EmergencyFundGoal,
		},
		LastUpdated: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.portfolioRepo.Create(ctx, portfolio); err != nil {
		return InternalServerErrorResponse(c, "Failed to create portfolio", err)
	}

	h.log.WithFields(logrus.Fields{
		"external_id": user.ExternalID,
		"user_id":     user.ID,
	}).Info("user created")

	return CreatedResponse(c, "User created", dto.NewUserOutput(user))
}

// Get returns a user profile
// GET /api/users/:id
func (h *UserHandler) Get(c echo.Context) error {
	externalID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.userRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessResponse(c, dto.NewUserOutput(user))
}

// Update applies a partial profile update. Running totals and the streak
// are derived from the ledger and cannot be set here.
// PUT /api/users/:id
func (h *UserHandler) Update(c echo.Context) error {
	externalID := c.Param("id")

	var req dto.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return BadRequestResponse(c, err.Error())
	}
	if req.DailySIPAmount != nil && req.DailySIPAmount.IsNegative() {
		return BadRequestResponse(c, "daily_sip_amount cannot be negative")
	}
	if req.EmergencyFundGoal != nil && req.EmergencyFundGoal.IsNegative() {
		return BadRequestResponse(c, "emergency_fund_goal cannot be negative")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.userRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	req.Apply(user)
	if err := h.userRepo.Update(ctx, user); err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessMessageResponse(c, "User updated", dto.NewUserOutput(user))
}

// Dashboard returns the at-a-glance summary for a user
// GET /api/users/:id/dashboard
func (h *UserHandler) Dashboard(c echo.Context) error {
	externalID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.userRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	portfolio, err := h.portfolioRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, dto.DashboardOutput{
		TotalInvested:         portfolio.TotalInvested,
		CurrentValue:          portfolio.CurrentValue,
		TotalReturns:          portfolio.TotalReturns,
		ReturnsPercentage:     portfolio.ReturnsPercent,
		EmergencyFundCurrent:  portfolio.EmergencyFund.Current,
		EmergencyFundGoal:     portfolio.EmergencyFund.Goal,
		EmergencyFundProgress: portfolio.EmergencyFund.Progress,
		InvestmentStreak:      user.InvestmentStreak,
	})
}
