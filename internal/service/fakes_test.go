package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"paisavest/internal/domain"
)

// In-memory repository fakes backing the service tests.

type memUserRepo struct {
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.ExternalID] = user
	return nil
}

func (r *memUserRepo) GetByExternalID(_ context.Context, externalID string) (*domain.User, error) {
	u, ok := r.users[externalID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", externalID, domain.ErrNotFound)
	}
	return u, nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ExternalID]; !ok {
		return domain.ErrNotFound
	}
	r.users[user.ExternalID] = user
	return nil
}

func (r *memUserRepo) UpdateTotals(_ context.Context, userID uuid.UUID, totalInvested, currentValue decimal.Decimal) error {
	for _, u := range r.users {
		if u.ID == userID {
			u.TotalInvested = totalInvested
			u.CurrentValue = currentValue
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *memUserRepo) AdjustTotals(_ context.Context, externalID string, delta decimal.Decimal) error {
	u, ok := r.users[externalID]
	if !ok {
		return domain.ErrNotFound
	}
	u.TotalInvested = u.TotalInvested.Add(delta)
	u.CurrentValue = u.CurrentValue.Add(delta)
	return nil
}

func (r *memUserRepo) UpdateStreak(_ context.Context, userID uuid.UUID, streak int, lastInvestment time.Time) error {
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

func (r *memUserRepo) GetAutoInvestUsers(_ context.Context) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range r.users {
		if u.AutoInvestEnabled && u.DailySIPAmount.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			out = append(out, u)
		}
	}
	return out, nil
}

type memInvestmentRepo struct {
	entries []*domain.Investment
}

func newMemInvestmentRepo() *memInvestmentRepo {
	return &memInvestmentRepo{}
}

func (r *memInvestmentRepo) Append(_ context.Context, inv *domain.Investment) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	r.entries = append(r.entries, inv)
	return nil
}

func (r *memInvestmentRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Investment, error) {
	for _, e := range r.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, fmt.Errorf("investment %s: %w", id, domain.ErrNotFound)
}

func (r *memInvestmentRepo) Query(_ context.Context, externalID string, filter domain.InvestmentFilter) ([]*domain.Investment, int64, error) {
	var matched []*domain.Investment
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
		matched = append(matched, e)
	}

	// Newest first, mirroring the SQL ordering
	for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
		matched[i], matched[j] = matched[j], matched[i]
	}

	total := int64(len(matched))
	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	start := (page - 1) * limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *memInvestmentRepo) GetCompleted(_ context.Context, externalID string) ([]*domain.Investment, error) {
	var out []*domain.Investment
	for _, e := range r.entries {
		if e.ExternalID == externalID && e.Status == domain.StatusCompleted {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memInvestmentRepo) MarkCompleted(_ context.Context, id uuid.UUID, settledAt time.Time) error {
	for _, e := range r.entries {
		if e.ID == id {
			if e.Status != domain.StatusPending {
				return fmt.Errorf("investment %s is not pending: %w", id, domain.ErrInvalidState)
			}
			e.Status = domain.StatusCompleted
			t := settledAt
			e.SettlementDate = &t
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *memInvestmentRepo) MarkCancelled(_ context.Context, id uuid.UUID) error {
	for _, e := range r.entries {
		if e.ID == id {
			if e.Status != domain.StatusPending {
				return fmt.Errorf("investment %s is not pending: %w", id, domain.ErrInvalidState)
			}
			e.Status = domain.StatusCancelled
			return nil
		}
	}
	return domain.ErrNotFound
}

type memPortfolioRepo struct {
	portfolios map[string]*domain.Portfolio
}

func newMemPortfolioRepo() *memPortfolioRepo {
	return &memPortfolioRepo{portfolios: make(map[string]*domain.Portfolio)}
}

func (r *memPortfolioRepo) Create(_ context.Context, p *domain.Portfolio) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.portfolios[p.ExternalID] = p
	return nil
}

func (r *memPortfolioRepo) GetByExternalID(_ context.Context, externalID string) (*domain.Portfolio, error) {
	p, ok := r.portfolios[externalID]
	if !ok {
		return nil, fmt.Errorf("portfolio %s: %w", externalID, domain.ErrNotFound)
	}
	return p, nil
}

func (r *memPortfolioRepo) Replace(_ context.Context, p *domain.Portfolio) error {
	if _, ok := r.portfolios[p.ExternalID]; !ok {
		return domain.ErrNotFound
	}
	r.portfolios[p.ExternalID] = p
	return nil
}

func (r *memPortfolioRepo) AdjustForWithdrawal(_ context.Context, externalID string, delta decimal.Decimal) error {
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

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}
