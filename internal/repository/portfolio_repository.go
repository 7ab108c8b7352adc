package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"paisavest/internal/domain"
)

// PortfolioRepositoryImpl implements the PortfolioRepository interface
type PortfolioRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewPortfolioRepository creates a new PortfolioRepository
func NewPortfolioRepository(db *pgxpool.Pool) domain.PortfolioRepository {
	return &PortfolioRepositoryImpl{db: db}
}

// Create creates the initial (empty) portfolio for a user. The unique
// constraint on external_id enforces the 1:1 user-portfolio relationship.
func (r *PortfolioRepositoryImpl) Create(ctx context.Context, p *domain.Portfolio) error {
	holdingsJSON, err := json.Marshal(p.Holdings)
	if err != nil {
		return fmt.Errorf("failed to marshal holdings: %w", err)
	}

	query := `
		INSERT INTO portfolios (
			id, user_id, external_id, total_invested, current_value,
			total_returns, returns_percentage, holdings,
			equity_allocation, debt_allocation, gold_allocation, emergency_fund_allocation,
			emergency_fund_current, emergency_fund_goal, emergency_fund_progress,
			last_updated, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18
		)
	`

	_, err = r.db.Exec(ctx, query,
		p.ID,
		p.UserID,
		p.ExternalID,
		p.TotalInvested,
		p.CurrentValue,
		p.TotalReturns,
		p.ReturnsPercent,
		holdingsJSON,
		p.Allocation.Equity,
		p.Allocation.Debt,
		p.Allocation.Gold,
		p.Allocation.EmergencyFund,
		p.EmergencyFund.Current,
		p.EmergencyFund.Goal,
		p.EmergencyFund.Progress,
		p.LastUpdated,
		p.CreatedAt,
		p.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create portfolio: %w", err)
	}

	return nil
}

// GetByExternalID retrieves a user's portfolio
func (r *PortfolioRepositoryImpl) GetByExternalID(ctx context.Context, externalID string) (*domain.Portfolio, error) {
	query := `
		SELECT id, user_id, external_id, total_invested, current_value,
		       total_returns, returns_percentage, holdings,
		       equity_allocation, debt_allocation, gold_allocation, emergency_fund_allocation,
		       emergency_fund_current, emergency_fund_goal, emergency_fund_progress,
		       last_updated, created_at, updated_at
		FROM portfolios
		WHERE external_id = $1
	`

	p := &domain.Portfolio{}
	var holdingsJSON []byte
	err := r.db.QueryRow(ctx, query, externalID).Scan(
		&p.ID,
		&p.UserID,
		&p.ExternalID,
		&p.TotalInvested,
		&p.CurrentValue,
		&p.TotalReturns,
		&p.ReturnsPercent,
		&holdingsJSON,
		&p.Allocation.Equity,
		&p.Allocation.Debt,
		&p.Allocation.Gold,
		&p.Allocation.EmergencyFund,
		&p.EmergencyFund.Current,
		&p.EmergencyFund.Goal,
		&p.EmergencyFund.Progress,
		&p.LastUpdated,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("portfolio %s: %w", externalID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}

	if len(holdingsJSON) > 0 {
		if err := json.Unmarshal(holdingsJSON, &p.Holdings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal holdings: %w", err)
		}
	}

	return p, nil
}

// Replace overwrites the whole aggregate in one statement; the portfolio is a
// derived document, never patched field by field here.
func (r *PortfolioRepositoryImpl) Replace(ctx context.Context, p *domain.Portfolio) error {
	holdingsJSON, err := json.Marshal(p.Holdings)
	if err != nil {
		return fmt.Errorf("failed to marshal holdings: %w", err)
	}

	query := `
		UPDATE portfolios
		SET total_invested = $1, current_value = $2, total_returns = $3,
		    returns_percentage = $4, holdings = $5,
		    equity_allocation = $6, debt_allocation = $7, gold_allocation = $8,
		    emergency_fund_allocation = $9, emergency_fund_current = $10,
		    emergency_fund_goal = $11, emergency_fund_progress = $12,
		    last_updated = $13, updated_at = NOW()
		WHERE external_id = $14
	`

	tag, err := r.db.Exec(ctx, query,
		p.TotalInvested,
		p.CurrentValue,
		p.TotalReturns,
		p.ReturnsPercent,
		holdingsJSON,
		p.Allocation.Equity,
		p.Allocation.Debt,
		p.Allocation.Gold,
		p.Allocation.EmergencyFund,
		p.EmergencyFund.Current,
		p.EmergencyFund.Goal,
		p.EmergencyFund.Progress,
		p.LastUpdated,
		p.ExternalID,
	)
	if err != nil {
		return fmt.Errorf("failed to replace portfolio: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("portfolio %s: %w", p.ExternalID, domain.ErrNotFound)
	}

	return nil
}

// AdjustForWithdrawal applies the optimistic withdrawal patch in one statement
// so the balance, value and progress move together.
func (r *PortfolioRepositoryImpl) AdjustForWithdrawal(ctx context.Context, externalID string, delta decimal.Decimal) error {
	query := `
		UPDATE portfolios
		SET emergency_fund_current = emergency_fund_current + $1,
		    current_value = current_value + $1,
		    total_invested = total_invested + $1,
		    emergency_fund_progress = CASE
		        WHEN emergency_fund_goal > 0
		        THEN (emergency_fund_current + $1) / emergency_fund_goal * 100
		        ELSE 0
		    END,
		    last_updated = NOW(), updated_at = NOW()
		WHERE external_id = $2
	`

	tag, err := r.db.Exec(ctx, query, delta, externalID)
	if err != nil {
		return fmt.Errorf("failed to adjust portfolio for withdrawal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("portfolio %s: %w", externalID, domain.ErrNotFound)
	}

	return nil
}
