package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"paisavest/internal/domain"
	"paisavest/internal/utils"
)

// WithdrawalService runs the emergency-withdrawal state machine:
// pending → completed (settlement job) and pending → cancelled (compensating
// restore). The withdrawal patches the cached Portfolio/User balances
// optimistically; the ledger entry stays pending until the settlement worker
// completes it, so callers poll status rather than assume synchronous
// completion.
type WithdrawalService struct {
	userRepo      domain.UserRepository
	invRepo       domain.InvestmentRepository
	portfolioRepo domain.PortfolioRepository
	queue         domain.SettlementQueue
	delay         time.Duration
	log           *logrus.Logger

	userLocks utils.KeyedMutex
	now       func() time.Time
}

// NewWithdrawalService creates a new WithdrawalService
func NewWithdrawalService(
	userRepo domain.UserRepository,
	invRepo domain.InvestmentRepository,
	portfolioRepo domain.PortfolioRepository,
	delay time.Duration,
	log *logrus.Logger,
) *WithdrawalService {
	return &WithdrawalService{
		userRepo:      userRepo,
		invRepo:       invRepo,
		portfolioRepo: portfolioRepo,
		delay:         delay,
		log:           log,
		now:           time.Now,
	}
}

// SetQueue wires the settlement queue. Set after construction because the
// in-process fallback queue needs this service as its settler.
func (s *WithdrawalService) SetQueue(q domain.SettlementQueue) {
	s.queue = q
}

// WithdrawalInput carries an emergency withdrawal request
type WithdrawalInput struct {
	Amount      decimal.Decimal
	Reason      string
	Method      string
	BankDetails *domain.BankDetails
	UPIID       string
}

// CreateEmergencyWithdrawal validates the request against the available
// balance, appends a pending sell, decrements the cached balances
// optimistically and enqueues the settlement job.
func (s *WithdrawalService) CreateEmergencyWithdrawal(ctx context.Context, externalID string, in WithdrawalInput) (*domain.Investment, error) {
	if in.Reason == "" || in.Method == "" {
		return nil, fmt.Errorf("%w: amount, reason and withdrawal method are required", domain.ErrValidation)
	}
	if in.Amount.LessThan(domain.MinWithdrawalAmount) {
		return nil, fmt.Errorf("%w: minimum withdrawal amount is ₹%s", domain.ErrValidation, domain.MinWithdrawalAmount.String())
	}

	s.userLocks.Lock(externalID)
	defer s.userLocks.Unlock(externalID)

	user, err := s.userRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	portfolio, err := s.portfolioRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}

	available := decimal.Min(portfolio.CurrentValue, portfolio.EmergencyFund.Current)
	if in.Amount.GreaterThan(available) {
		return nil, fmt.Errorf("%w: maximum withdrawal amount is ₹%s", domain.ErrInsufficientFunds, available.String())
	}

	meta := &domain.WithdrawalMetadata{
		Reason: in.Reason,
		Method: in.Method,
	}
	switch in.Method {
	case domain.WithdrawalMethodBank:
		meta.BankDetails = in.BankDetails
	case domain.WithdrawalMethodUPI:
		meta.UPIID = in.UPIID
	}

	now := s.now().UTC()
	withdrawal := &domain.Investment{
		ID:              uuid.New(),
		UserID:          user.ID,
		ExternalID:      user.ExternalID,
		InvestmentType:  domain.InvestmentTypeEmergencyFund,
		FundName:        "Emergency Withdrawal",
		FundCode:        domain.FundWithdrawal,
		TransactionType: domain.TransactionSell,
		Amount:          in.Amount,
		Units:           in.Amount, // 1 unit = ₹1
		PricePerUnit:    decimal.NewFromInt(1),
		Source:          domain.SourceEmergencyWithdrawal,
		Status:          domain.StatusPending,
		TransactionID:   newTransactionID(now),
		NetAmount:       in.Amount, // no charges on emergency withdrawals
		TransactionDate: now,
		Metadata:        meta,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.invRepo.Append(ctx, withdrawal); err != nil {
		return nil, err
	}

	// Optimistic decrement; the compensating restore in Cancel adds the same
	// amount back
	if err := s.portfolioRepo.AdjustForWithdrawal(ctx, externalID, in.Amount.Neg()); err != nil {
		return nil, fmt.Errorf("withdrawal: %w", err)
	}
	if err := s.userRepo.AdjustTotals(ctx, externalID, in.Amount.Neg()); err != nil {
		return nil, fmt.Errorf("withdrawal: %w", err)
	}

	job := domain.SettlementJob{
		WithdrawalID: withdrawal.ID,
		ExternalID:   externalID,
		NotBefore:    now.Add(s.delay),
	}
	if s.queue == nil {
		s.log.WithField("withdrawal_id", withdrawal.ID).Warn("no settlement queue configured, withdrawal stays pending")
	} else if err := s.queue.Enqueue(ctx, job); err != nil {
		// The withdrawal stays pending and can still be settled by a later
		// sweep or cancelled by the user; surface the failure in logs only
		s.log.WithFields(logrus.Fields{
			"withdrawal_id": withdrawal.ID,
			"error":         err.Error(),
		}).Error("failed to enqueue settlement job")
	}

	s.log.WithFields(logrus.Fields{
		"external_id":   externalID,
		"withdrawal_id": withdrawal.ID,
		"amount":        in.Amount.String(),
		"method":        in.Method,
	}).Info("emergency withdrawal created")

	return withdrawal, nil
}

// Settle transitions a pending withdrawal to completed, stamping the
// settlement date. The pending-status guard makes redelivered jobs no-ops.
func (s *WithdrawalService) Settle(ctx context.Context, withdrawalID uuid.UUID) error {
	if err := s.invRepo.MarkCompleted(ctx, withdrawalID, s.now().UTC()); err != nil {
		return fmt.Errorf("settle withdrawal %s: %w", withdrawalID, err)
	}

	s.log.WithField("withdrawal_id", withdrawalID).Info("withdrawal settled")
	return nil
}

// Cancel transitions a pending withdrawal to cancelled and restores the
// previously decremented balances exactly. Only the owner may cancel; only
// pending withdrawals can be cancelled.
func (s *WithdrawalService) Cancel(ctx context.Context, withdrawalID uuid.UUID, externalID string) (*domain.Investment, error) {
	s.userLocks.Lock(externalID)
	defer s.userLocks.Unlock(externalID)

	withdrawal, err := s.invRepo.GetByID(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}
	if withdrawal.Source != domain.SourceEmergencyWithdrawal {
		return nil, fmt.Errorf("investment %s is not a withdrawal: %w", withdrawalID, domain.ErrNotFound)
	}
	if withdrawal.ExternalID != externalID {
		return nil, fmt.Errorf("%w: withdrawal belongs to another user", domain.ErrUnauthorized)
	}
	if withdrawal.Status != domain.StatusPending {
		return nil, fmt.Errorf("%w: only pending withdrawals can be cancelled", domain.ErrInvalidState)
	}

	// The guarded update is the idempotency barrier against a racing
	// settlement or double cancel
	if err := s.invRepo.MarkCancelled(ctx, withdrawalID); err != nil {
		return nil, err
	}

	if err := s.portfolioRepo.AdjustForWithdrawal(ctx, externalID, withdrawal.Amount); err != nil {
		return nil, fmt.Errorf("cancel withdrawal: %w", err)
	}
	if err := s.userRepo.AdjustTotals(ctx, externalID, withdrawal.Amount); err != nil {
		return nil, fmt.Errorf("cancel withdrawal: %w", err)
	}

	withdrawal.Status = domain.StatusCancelled

	s.log.WithFields(logrus.Fields{
		"external_id":   externalID,
		"withdrawal_id": withdrawalID,
		"amount":        withdrawal.Amount.String(),
	}).Info("withdrawal cancelled, balances restored")

	return withdrawal, nil
}

// Status retrieves a withdrawal by id
func (s *WithdrawalService) Status(ctx context.Context, withdrawalID uuid.UUID) (*domain.Investment, error) {
	withdrawal, err := s.invRepo.GetByID(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}
	if withdrawal.Source != domain.SourceEmergencyWithdrawal {
		return nil, fmt.Errorf("investment %s is not a withdrawal: %w", withdrawalID, domain.ErrNotFound)
	}
	return withdrawal, nil
}

// History retrieves a user's withdrawal entries, newest first
func (s *WithdrawalService) History(ctx context.Context, externalID string, page, limit int) ([]*domain.Investment, int64, error) {
	return s.invRepo.Query(ctx, externalID, domain.InvestmentFilter{
		Source: domain.SourceEmergencyWithdrawal,
		Page:   page,
		Limit:  limit,
	})
}

// newTransactionID generates the client-facing withdrawal reference
func newTransactionID(now time.Time) string {
	return fmt.Sprintf("WD_%d_%06d", now.UnixMilli(), rand.Intn(1000000))
}
