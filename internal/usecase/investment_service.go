package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"paisavest/internal/domain"
	"paisavest/internal/service"
	"paisavest/internal/utils"
)

// Fee schedule: 0.1% brokerage (minimum ₹1) and 0.1% tax on every buy
var (
	feeRate      = decimal.NewFromFloat(0.001)
	minBrokerage = decimal.NewFromInt(1)
	roundUpStep  = decimal.NewFromInt(10)
)

// InvestmentService handles the investment flows: manual buys, round-ups and
// the daily SIP. Every flow appends a completed ledger entry, updates the
// user's running totals and streak, then hands the ledger to the aggregator.
type InvestmentService struct {
	userRepo     domain.UserRepository
	invRepo      domain.InvestmentRepository
	portfolioSvc *service.PortfolioService
	prices       domain.PriceSource
	log          *logrus.Logger

	userLocks utils.KeyedMutex
	now       func() time.Time
}

// NewInvestmentService creates a new InvestmentService
func NewInvestmentService(
	userRepo domain.UserRepository,
	invRepo domain.InvestmentRepository,
	portfolioSvc *service.PortfolioService,
	prices domain.PriceSource,
	log *logrus.Logger,
) *InvestmentService {
	return &InvestmentService{
		userRepo:     userRepo,
		invRepo:      invRepo,
		portfolioSvc: portfolioSvc,
		prices:       prices,
		log:          log,
		now:          time.Now,
	}
}

// CreateInvestmentInput carries the fields needed to append a buy
type CreateInvestmentInput struct {
	ExternalID     string
	InvestmentType string
	FundName       string
	FundCode       string
	Amount         decimal.Decimal
	Source         string
}

// CreateInvestment validates and appends a buy as completed (no settlement
// delay modeled for purchases), updates the user's totals and streak, and
// recomputes the portfolio from the ledger.
func (s *InvestmentService) CreateInvestment(ctx context.Context, in CreateInvestmentInput) (*domain.Investment, error) {
	if in.Source == "" {
		in.Source = domain.SourceManual
	}
	if min := domain.MinAmountFor(in.Source); in.Amount.LessThan(min) {
		return nil, fmt.Errorf("%w: minimum investment amount is ₹%s", domain.ErrValidation, min.String())
	}

	s.userLocks.Lock(in.ExternalID)
	defer s.userLocks.Unlock(in.ExternalID)

	user, err := s.userRepo.GetByExternalID(ctx, in.ExternalID)
	if err != nil {
		return nil, err
	}

	switch in.Source {
	case domain.SourceRoundUp:
		if !user.RoundUpEnabled {
			return nil, fmt.Errorf("%w: round-up not enabled for user", domain.ErrValidation)
		}
	case domain.SourceSIP:
		if !user.AutoInvestEnabled {
			return nil, fmt.Errorf("%w: daily SIP not enabled for user", domain.ErrValidation)
		}
	}

	pricePerUnit := s.prices.Price(in.FundCode)
	units := decimal.Zero
	if pricePerUnit.IsPositive() {
		units = in.Amount.Div(pricePerUnit).Round(8)
	}

	brokerage := in.Amount.Mul(feeRate)
	if brokerage.LessThan(minBrokerage) {
		brokerage = minBrokerage
	}
	taxes := in.Amount.Mul(feeRate)
	netAmount := in.Amount.Sub(brokerage).Sub(taxes)

	now := s.now().UTC()
	settlement := now.Add(48 * time.Hour) // T+2
	inv := &domain.Investment{
		ID:               uuid.New(),
		UserID:           user.ID,
		ExternalID:       user.ExternalID,
		InvestmentType:   in.InvestmentType,
		FundName:         in.FundName,
		FundCode:         in.FundCode,
		TransactionType:  domain.TransactionBuy,
		Amount:           in.Amount,
		Units:            units,
		PricePerUnit:     pricePerUnit,
		Source:           in.Source,
		Status:           domain.StatusCompleted,
		BrokerageCharges: brokerage,
		Taxes:            taxes,
		NetAmount:        netAmount,
		TransactionDate:  now,
		SettlementDate:   &settlement,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.invRepo.Append(ctx, inv); err != nil {
		return nil, err
	}

	streak := user.NextStreak(now)
	if err := s.userRepo.UpdateStreak(ctx, user.ID, streak, now); err != nil {
		return nil, fmt.Errorf("create investment: %w", err)
	}

	if _, err := s.portfolioSvc.Recalculate(ctx, user.ExternalID); err != nil {
		return nil, fmt.Errorf("create investment: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"external_id": user.ExternalID,
		"fund_code":   inv.FundCode,
		"amount":      inv.Amount.String(),
		"source":      inv.Source,
		"streak":      streak,
	}).Info("investment created")

	return inv, nil
}

// RoundUp is the derivation of a spare-change investment from a spend
type RoundUp struct {
	Rounded decimal.Decimal `json:"rounded"`
	RoundUp decimal.Decimal `json:"round_up"`
}

// CalculateRoundUp rounds a transaction amount up to the next ₹10 and returns
// the difference. A round-up below ₹1 is not worth investing and is rejected
// by ProcessRoundUp.
func CalculateRoundUp(transactionAmount decimal.Decimal) RoundUp {
	rounded := transactionAmount.Div(roundUpStep).Ceil().Mul(roundUpStep)
	return RoundUp{
		Rounded: rounded,
		RoundUp: rounded.Sub(transactionAmount),
	}
}

// ProcessRoundUp derives the round-up from a spend and invests it into the
// fund recommended for the user's profile
func (s *InvestmentService) ProcessRoundUp(ctx context.Context, externalID string, transactionAmount decimal.Decimal) (*domain.Investment, RoundUp, error) {
	ru := CalculateRoundUp(transactionAmount)
	if ru.RoundUp.LessThan(decimal.NewFromInt(1)) {
		return nil, ru, fmt.Errorf("%w: round-up amount too small", domain.ErrValidation)
	}

	user, err := s.userRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, ru, err
	}
	if !user.RoundUpEnabled {
		return nil, ru, fmt.Errorf("%w: round-up not enabled for user", domain.ErrValidation)
	}

	fund := domain.LookupFund(domain.RecommendFund(user.ExperienceLevel, user.RiskTolerance))
	inv, err := s.CreateInvestment(ctx, CreateInvestmentInput{
		ExternalID:     externalID,
		InvestmentType: fund.AssetType,
		FundName:       fund.Name,
		FundCode:       fund.Code,
		Amount:         ru.RoundUp,
		Source:         domain.SourceRoundUp,
	})
	if err != nil {
		return nil, ru, err
	}

	return inv, ru, nil
}

// ProcessDailySIP invests the user's configured daily SIP amount into the
// fund recommended for their profile. Triggered per user over HTTP, or for
// all auto-invest users by the scheduler.
func (s *InvestmentService) ProcessDailySIP(ctx context.Context, externalID string) (*domain.Investment, error) {
	user, err := s.userRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if !user.AutoInvestEnabled || user.DailySIPAmount.LessThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("%w: daily SIP not enabled or amount too small", domain.ErrValidation)
	}

	fund := domain.LookupFund(domain.RecommendFund(user.ExperienceLevel, user.RiskTolerance))
	return s.CreateInvestment(ctx, CreateInvestmentInput{
		ExternalID:     externalID,
		InvestmentType: fund.AssetType,
		FundName:       fund.Name,
		FundCode:       fund.Code,
		Amount:         user.DailySIPAmount,
		Source:         domain.SourceSIP,
	})
}

// GetInvestments retrieves a user's ledger page, newest first
func (s *InvestmentService) GetInvestments(ctx context.Context, externalID string, filter domain.InvestmentFilter) ([]*domain.Investment, int64, error) {
	return s.invRepo.Query(ctx, externalID, filter)
}
