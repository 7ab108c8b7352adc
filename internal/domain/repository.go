package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvestmentFilter narrows ledger queries. Zero values mean "no filter".
type InvestmentFilter struct {
	Type   string
	Source string
	Page   int
	Limit  int
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// GetByExternalID retrieves a user by the identity provider's id
	GetByExternalID(ctx context.Context, externalID string) (*User, error)

	// Update persists profile fields (preferences, experience, goals)
	Update(ctx context.Context, user *User) error

	// UpdateTotals mirrors the aggregator's running totals onto the user
	UpdateTotals(ctx context.Context, userID uuid.UUID, totalInvested, currentValue decimal.Decimal) error

	// AdjustTotals shifts the cached totals by delta (withdrawal patch and
	// its compensating restore)
	AdjustTotals(ctx context.Context, externalID string, delta decimal.Decimal) error

	// UpdateStreak records an investment streak and its timestamp
	UpdateStreak(ctx context.Context, userID uuid.UUID, streak int, lastInvestment time.Time) error

	// GetAutoInvestUsers retrieves all users with the daily SIP enabled
	GetAutoInvestUsers(ctx context.Context) ([]*User, error)
}

// InvestmentRepository defines the interface for ledger operations
type InvestmentRepository interface {
	// Append appends a new ledger entry
	Append(ctx context.Context, inv *Investment) error

	// GetByID retrieves a ledger entry by id
	GetByID(ctx context.Context, id uuid.UUID) (*Investment, error)

	// Query retrieves ledger entries for a user, most recent first, paginated.
	// Returns the page plus the total count for the filter.
	Query(ctx context.Context, externalID string, filter InvestmentFilter) ([]*Investment, int64, error)

	// GetCompleted retrieves every completed entry for a user (aggregator input)
	GetCompleted(ctx context.Context, externalID string) ([]*Investment, error)

	// MarkCompleted transitions a pending entry to completed, stamping the
	// settlement date. Returns ErrInvalidState if the entry is not pending.
	MarkCompleted(ctx context.Context, id uuid.UUID, settledAt time.Time) error

	// MarkCancelled transitions a pending entry to cancelled.
	// Returns ErrInvalidState if the entry is not pending.
	MarkCancelled(ctx context.Context, id uuid.UUID) error
}

// PortfolioRepository defines the interface for portfolio aggregates
type PortfolioRepository interface {
	// Create creates the initial (empty) portfolio for a user
	Create(ctx context.Context, p *Portfolio) error

	// GetByExternalID retrieves a user's portfolio
	GetByExternalID(ctx context.Context, externalID string) (*Portfolio, error)

	// Replace overwrites the whole aggregate (the aggregator's atomic rebuild)
	Replace(ctx context.Context, p *Portfolio) error

	// AdjustForWithdrawal applies the optimistic withdrawal patch: emergency
	// fund and current value move by delta (negative on withdrawal, positive
	// on cancellation), progress is recomputed from the stored goal.
	AdjustForWithdrawal(ctx context.Context, externalID string, delta decimal.Decimal) error
}
