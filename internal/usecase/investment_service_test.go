package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paisavest/internal/domain"
	"paisavest/internal/service"
)

// In-memory repository fakes backing the investment flow tests.

type stubUserRepo struct {
	users map[string]*domain.User
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.ExternalID] = user
	return nil
}

func (r *stubUserRepo) GetByExternalID(_ context.Context, externalID string) (*domain.User, error) {
	u, ok := r.users[externalID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", externalID, domain.ErrNotFound)
	}
	return u, nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) error {
	r.users[user.ExternalID] = user
	return nil
}

func (r *stubUserRepo) UpdateTotals(_ context.Context, userID uuid.UUID, totalInvested, currentValue decimal.Decimal) error {
	for _, u := range r.users {
		if u.ID == userID {
			u.TotalInvested = totalInvested
			u.CurrentValue = currentValue
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *stubUserRepo) AdjustTotals(_ context.Context, externalID string, delta decimal.Decimal) error {
	u, ok := r.users[externalID]
	if !ok {
		return domain.ErrNotFound
	}
	u.TotalInvested = u.TotalInvested.Add(delta)
	u.CurrentValue = u.CurrentValue.Add(delta)
	return nil
}

func (r *stubUserRepo) UpdateStreak(_ context.Context, userID uuid.UUID, streak int, lastInvestment time.Time) error {
	for _, u := range r.users {
		if u.ID == userID {
			u.InvestmentStreak = streak
			t := lastInvestment
			u.LastInvestmentDate = &t
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *stubUserRepo) GetAutoInvestUsers(_ context.Context) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range r.users {
		if u.AutoInvestEnabled && u.DailySIPAmount.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			out = append(out, u)
		}
	}
	return out, nil
}

type stubInvestmentRepo struct {
	entries []*domain.Investment
}

func (r *stubInvestmentRepo) Append(_ context.Context, inv *domain.Investment) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	r.entries = append(r.entries, inv)
	return nil
}

func (r *stubInvestmentRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Investment, error) {
	for _, e := range r.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubInvestmentRepo) Query(_ context.Context, externalID string, filter domain.InvestmentFilter) ([]*domain.Investment, int64, error) {
	var out []*domain.Investment
	for _, e := range r.entries {
		if e.ExternalID != externalID {
			continue
		}
		if filter.Type != "" && e.InvestmentType != filter.Type {
			continue
		}
		if filter.Source != "" && e.Source != filter.Source {
			continue
		}
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

func (r *stubInvestmentRepo) GetCompleted(_ context.Context, externalID string) ([]*domain.Investment, error) {
	var out []*domain.Investment
	for _, e := range r.entries {
		if e.ExternalID == externalID && e.Status == domain.StatusCompleted {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *stubInvestmentRepo) MarkCompleted(_ context.Context, id uuid.UUID, settledAt time.Time) error {
	for _, e := range r.entries {
		if e.ID == id {
			if e.Status != domain.StatusPending {
				return domain.ErrInvalidState
			}
			e.Status = domain.StatusCompleted
			t := settledAt
			e.SettlementDate = &t
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *stubInvestmentRepo) MarkCancelled(_ context.Context, id uuid.UUID) error {
	for _, e := range r.entries {
		if e.ID == id {
			if e.Status != domain.StatusPending {
				return domain.ErrInvalidState
			}
			e.Status = domain.StatusCancelled
			return nil
		}
	}
	return domain.ErrNotFound
}

type stubPortfolioRepo struct {
	portfolios map[string]*domain.Portfolio
}

func (r *stubPortfolioRepo) Create(_ context.Context, p *domain.Portfolio) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.portfolios[p.ExternalID] = p
	return nil
}

func (r *stubPortfolioRepo) GetByExternalID(_ context.Context, externalID string) (*domain.Portfolio, error) {
	p, ok := r.portfolios[externalID]
	if !ok {
		return nil, fmt.Errorf("portfolio %s: %w", externalID, domain.ErrNotFound)
	}
	return p, nil
}

func (r *stubPortfolioRepo) Replace(_ context.Context, p *domain.Portfolio) error {
	r.portfolios[p.ExternalID] = p
	return nil
}

func (r *stubPortfolioRepo) AdjustForWithdrawal(_ context.Context, externalID string, delta decimal.Decimal) error {
	p, ok := r.portfolios[externalID]
	if !ok {
		return domain.ErrNotFound
	}
	p.EmergencyFund.Current = p.EmergencyFund.Current.Add(delta)
	p.CurrentValue = p.CurrentValue.Add(delta)
	p.TotalInvested = p.TotalInvested.Add(delta)
	p.EmergencyFund.Progress = domain.GoalProgress(p.EmergencyFund.Current, p.EmergencyFund.Goal)
	return nil
}

func seedInvestmentFixture(t *testing.T) (*InvestmentService, *stubUserRepo, *stubInvestmentRepo, *domain.User) {
	t.Helper()

	userRepo := &stubUserRepo{users: make(map[string]*domain.User)}
	invRepo := &stubInvestmentRepo{}
	portfolioRepo := &stubPortfolioRepo{portfolios: make(map[string]*domain.Portfolio)}

	user := &domain.User{
		ID:                uuid.New(),
		ExternalID:        "ext_1",
		Email:             "a@example.com",
		ExperienceLevel:   domain.ExperienceBeginner,
		RiskTolerance:     domain.RiskLow,
		EmergencyFundGoal: decimal.NewFromInt(5000),
	}
	require.NoError(t, userRepo.Create(context.Background(), user))
	require.NoError(t, portfolioRepo.Create(context.Background(), &domain.Portfolio{
		UserID:        user.ID,
		ExternalID:    user.ExternalID,
		EmergencyFund: domain.EmergencyFund{Goal: decimal.NewFromInt(5000)},
	}))

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	prices := service.FixedPriceSource{}
	portfolioSvc := service.NewPortfolioService(userRepo, invRepo, portfolioRepo, prices, log)
	svc := NewInvestmentService(userRepo, invRepo, portfolioSvc, prices, log)
	svc.now = func() time.Time { return time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC) }

	return svc, userRepo, invRepo, user
}

func TestCreateInvestmentFeesAndUnits(t *testing.T) {
	svc, _, invRepo, user := seedInvestmentFixture(t)

	inv, err := svc.CreateInvestment(context.Background(), CreateInvestmentInput{
		ExternalID:     user.ExternalID,
		InvestmentType: domain.InvestmentTypeEquityETF,
		FundName:       "Nifty 50 ETF",
		FundCode:       domain.FundNifty50,
		Amount:         decimal.NewFromInt(2000),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.SourceManual, inv.Source)
	assert.Equal(t, domain.StatusCompleted, inv.Status)
	assert.Equal(t, domain.TransactionBuy, inv.TransactionType)
	assert.True(t, inv.PricePerUnit.Equal(decimal.NewFromFloat(125.50)))
	assert.True(t, inv.Units.Equal(decimal.NewFromFloat(15.93625498)), "units %s", inv.Units)
	assert.True(t, inv.BrokerageCharges.Equal(decimal.NewFromInt(2)))
	assert.True(t, inv.Taxes.Equal(decimal.NewFromInt(2)))
	assert.True(t, inv.NetAmount.Equal(decimal.NewFromInt(1996)))

	require.NotNil(t, inv.SettlementDate)
	assert.Equal(t, inv.TransactionDate.Add(48*time.Hour), *inv.SettlementDate)

	require.Len(t, invRepo.entries, 1)
}

func TestCreateInvestmentMinimumBrokerage(t *testing.T) {
	svc, _, _, user := seedInvestmentFixture(t)

	inv, err := svc.CreateInvestment(context.Background(), CreateInvestmentInput{
		ExternalID:     user.ExternalID,
		InvestmentType: domain.InvestmentTypeDebtFund,
		FundName:       "Liquid Fund",
		FundCode:       domain.FundLiquid,
		Amount:         decimal.NewFromInt(50),
	})
	require.NoError(t, err)

	// 0.1% of 50 is below the ₹1 floor
	assert.True(t, inv.BrokerageCharges.Equal(decimal.NewFromInt(1)))
	assert.True(t, inv.Taxes.Equal(decimal.NewFromFloat(0.05)))
	assert.True(t, inv.NetAmount.Equal(decimal.NewFromFloat(48.95)))
}

func TestCreateInvestmentBelowMinimum(t *testing.T) {
	svc, _, _, user := seedInvestmentFixture(t)

	_, err := svc.CreateInvestment(context.Background(), CreateInvestmentInput{
		ExternalID:     user.ExternalID,
		InvestmentType: domain.InvestmentTypeEquityETF,
		FundName:       "Nifty 50 ETF",
		FundCode:       domain.FundNifty50,
		Amount:         decimal.NewFromInt(9),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateInvestmentUpdatesStreak(t *testing.T) {
	svc, userRepo, _, user := seedInvestmentFixture(t)
	ctx := context.Background()

	last := time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC) // 21h before the fixed now
	user.InvestmentStreak = 3
	user.LastInvestmentDate = &last

	_, err := svc.CreateInvestment(ctx, CreateInvestmentInput{
		ExternalID:     user.ExternalID,
		InvestmentType: domain.InvestmentTypeEquityETF,
		FundName:       "Nifty 50 ETF",
		FundCode:       domain.FundNifty50,
		Amount:         decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	u, err := userRepo.GetByExternalID(ctx, user.ExternalID)
	require.NoError(t, err)
	assert.Equal(t, 4, u.InvestmentStreak)
	require.NotNil(t, u.LastInvestmentDate)
	assert.Equal(t, time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC), *u.LastInvestmentDate)
}

func TestCreateInvestmentStreakResets(t *testing.T) {
	svc, userRepo, _, user := seedInvestmentFixture(t)
	ctx := context.Background()

	last := time.Date(2025, 6, 13, 8, 0, 0, 0, time.UTC) // 49h before the fixed now
	user.InvestmentStreak = 7
	user.LastInvestmentDate = &last

	_, err := svc.CreateInvestment(ctx, CreateInvestmentInput{
		ExternalID:     user.ExternalID,
		InvestmentType: domain.InvestmentTypeEquityETF,
		FundName:       "Nifty 50 ETF",
		FundCode:       domain.FundNifty50,
		Amount:         decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	u, err := userRepo.GetByExternalID(ctx, user.ExternalID)
	require.NoError(t, err)
	assert.Equal(t, 1, u.InvestmentStreak)
}

func TestCalculateRoundUp(t *testing.T) {
	tests := []struct {
		amount  float64
		rounded int64
		roundUp float64
	}{
		{43, 50, 7},
		{95.5, 100, 4.5},
		{91, 100, 9},
		{120, 120, 0},
		{99.5, 100, 0.5},
	}

	for _, tt := range tests {
		ru := CalculateRoundUp(decimal.NewFromFloat(tt.amount))
		assert.True(t, ru.Rounded.Equal(decimal.NewFromInt(tt.rounded)), "amount=%v rounded=%s", tt.amount, ru.Rounded)
		assert.True(t, ru.RoundUp.Equal(decimal.NewFromFloat(tt.roundUp)), "amount=%v roundUp=%s", tt.amount, ru.RoundUp)
	}
}

func TestProcessRoundUp(t *testing.T) {
	svc, _, _, user := seedInvestmentFixture(t)
	user.RoundUpEnabled = true

	inv, ru, err := svc.ProcessRoundUp(context.Background(), user.ExternalID, decimal.NewFromInt(43))
	require.NoError(t, err)

	assert.True(t, ru.Rounded.Equal(decimal.NewFromInt(50)))
	assert.True(t, ru.RoundUp.Equal(decimal.NewFromInt(7)))
	assert.True(t, inv.Amount.Equal(decimal.NewFromInt(7)))
	assert.Equal(t, domain.SourceRoundUp, inv.Source)

	// Beginner with low risk lands in the liquid fund
	assert.Equal(t, domain.FundLiquid, inv.FundCode)
	assert.Equal(t, domain.InvestmentTypeDebtFund, inv.InvestmentType)
}

func TestProcessRoundUpTooSmall(t *testing.T) {
	svc, _, _, user := seedInvestmentFixture(t)
	user.RoundUpEnabled = true

	// A multiple of 10 rounds up by zero
	_, ru, err := svc.ProcessRoundUp(context.Background(), user.ExternalID, decimal.NewFromInt(120))
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.True(t, ru.RoundUp.IsZero())

	_, ru, err = svc.ProcessRoundUp(context.Background(), user.ExternalID, decimal.NewFromFloat(99.5))
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.True(t, ru.RoundUp.Equal(decimal.NewFromFloat(0.5)))
}

func TestProcessRoundUpDisabled(t *testing.T) {
	svc, _, _, user := seedInvestmentFixture(t)

	_, _, err := svc.ProcessRoundUp(context.Background(), user.ExternalID, decimal.NewFromInt(43))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestProcessDailySIP(t *testing.T) {
	svc, _, _, user := seedInvestmentFixture(t)
	user.AutoInvestEnabled = true
	user.DailySIPAmount = decimal.NewFromInt(100)
	user.ExperienceLevel = domain.ExperienceIntermediate
	user.RiskTolerance = domain.RiskMedium

	inv, err := svc.ProcessDailySIP(context.Background(), user.ExternalID)
	require.NoError(t, err)

	assert.Equal(t, domain.SourceSIP, inv.Source)
	assert.True(t, inv.Amount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, domain.FundNifty50, inv.FundCode)
}

func TestProcessDailySIPDisabled(t *testing.T) {
	svc, _, _, user := seedInvestmentFixture(t)

	_, err := svc.ProcessDailySIP(context.Background(), user.ExternalID)
	assert.ErrorIs(t, err, domain.ErrValidation)

	user.AutoInvestEnabled = true
	user.DailySIPAmount = decimal.Zero
	_, err = svc.ProcessDailySIP(context.Background(), user.ExternalID)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGetInvestmentsFilters(t *testing.T) {
	svc, _, _, user := seedInvestmentFixture(t)
	ctx := context.Background()
	user.RoundUpEnabled = true

	_, err := svc.CreateInvestment(ctx, CreateInvestmentInput{
		ExternalID:     user.ExternalID,
		InvestmentType: domain.InvestmentTypeEquityETF,
		FundName:       "Nifty 50 ETF",
		FundCode:       domain.FundNifty50,
		Amount:         decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	_, _, err = svc.ProcessRoundUp(ctx, user.ExternalID, decimal.NewFromInt(43))
	require.NoError(t, err)

	all, total, err := svc.GetInvestments(ctx, user.ExternalID, domain.InvestmentFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	roundUps, total, err := svc.GetInvestments(ctx, user.ExternalID, domain.InvestmentFilter{Source: domain.SourceRoundUp})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, roundUps, 1)
	assert.Equal(t, domain.SourceRoundUp, roundUps[0].Source)
}
