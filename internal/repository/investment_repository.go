package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"paisavest/internal/domain"
)

// InvestmentRepositoryImpl implements the InvestmentRepository interface
type InvestmentRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewInvestmentRepository creates a new InvestmentRepository
func NewInvestmentRepository(db *pgxpool.Pool) domain.InvestmentRepository {
	return &InvestmentRepositoryImpl{db: db}
}

const investmentColumns = `
	id, user_id, external_id, investment_type, fund_name, fund_code,
	transaction_type, amount, units, price_per_unit, source, status,
	COALESCE(transaction_id, ''), brokerage_charges, taxes, net_amount,
	transaction_date, settlement_date, metadata, created_at, updated_at
`

// Append appends a new ledger entry
func (r *InvestmentRepositoryImpl) Append(ctx context.Context, inv *domain.Investment) error {
	if err := inv.Validate(); err != nil {
		return err
	}

	var metaJSON []byte
	if inv.Metadata != nil {
		b, err := json.Marshal(inv.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal withdrawal metadata: %w", err)
		}
		metaJSON = b
	}

	query := `
		INSERT INTO investments (
			id, user_id, external_id, investment_type, fund_name, fund_code,
			transaction_type, amount, units, price_per_unit, source, status,
			transaction_id, brokerage_charges, taxes, net_amount,
			transaction_date, settlement_date, metadata, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			NULLIF($13, ''), $14, $15, $16, $17, $18, $19, $20, $21
		)
	`

	_, err := r.db.Exec(ctx, query,
		inv.ID,
		inv.UserID,
		inv.ExternalID,
		inv.InvestmentType,
		inv.FundName,
		inv.FundCode,
		inv.TransactionType,
		inv.Amount,
		inv.Units,
		inv.PricePerUnit,
		inv.Source,
		inv.Status,
		inv.TransactionID,
		inv.BrokerageCharges,
		inv.Taxes,
		inv.NetAmount,
		inv.TransactionDate,
		inv.SettlementDate,
		metaJSON,
		inv.CreatedAt,
		inv.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to append investment: %w", err)
	}

	return nil
}

func scanInvestment(row pgx.Row) (*domain.Investment, error) {
	inv := &domain.Investment{}
	var metaJSON []byte
	err := row.Scan(
		&inv.ID,
		&inv.UserID,
		&inv.ExternalID,
		&inv.InvestmentType,
		&inv.FundName,
		&inv.FundCode,
		&inv.TransactionType,
		&inv.Amount,
		&inv.Units,
		&inv.PricePerUnit,
		&inv.Source,
		&inv.Status,
		&inv.TransactionID,
		&inv.BrokerageCharges,
		&inv.Taxes,
		&inv.NetAmount,
		&inv.TransactionDate,
		&inv.SettlementDate,
		&metaJSON,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(metaJSON) > 0 {
		meta := &domain.WithdrawalMetadata{}
		if err := json.Unmarshal(metaJSON, meta); err != nil {
			return nil, fmt.Errorf("failed to unmarshal withdrawal metadata: %w", err)
		}
		inv.Metadata = meta
	}
	return inv, nil
}

// GetByID retrieves a ledger entry by id
func (r *InvestmentRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.Investment, error) {
	query := `SELECT ` + investmentColumns + ` FROM investments WHERE id = $1`

	inv, err := scanInvestment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("investment %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get investment by id: %w", err)
	}

	return inv, nil
}

// Query retrieves ledger entries for a user, most recent first, paginated
func (r *InvestmentRepositoryImpl) Query(ctx context.Context, externalID string, filter domain.InvestmentFilter) ([]*domain.Investment, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}

	where := `WHERE external_id = $1`
	args := []interface{}{externalID}
	if filter.Type != "" {
		args = append(args, filter.Type)
		where += fmt.Sprintf(" AND investment_type = $%d", len(args))
	}
	if filter.Source != "" {
		args = append(args, filter.Source)
		where += fmt.Sprintf(" AND source = $%d", len(args))
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM investments `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count investments: %w", err)
	}

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	query := fmt.Sprintf(`SELECT %s FROM investments %s
		ORDER BY transaction_date DESC
		LIMIT $%d OFFSET $%d`, investmentColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query investments: %w", err)
	}
	defer rows.Close()

	var investments []*domain.Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan investment: %w", err)
		}
		investments = append(investments, inv)
	}

	return investments, total, rows.Err()
}

// GetCompleted retrieves every completed entry for a user, oldest first
func (r *InvestmentRepositoryImpl) GetCompleted(ctx context.Context, externalID string) ([]*domain.Investment, error) {
	query := `SELECT ` + investmentColumns + `
		FROM investments
		WHERE external_id = $1 AND status = 'completed'
		ORDER BY transaction_date ASC`

	rows, err := r.db.Query(ctx, query, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query completed investments: %w", err)
	}
	defer rows.Close()

	var investments []*domain.Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment: %w", err)
		}
		investments = append(investments, inv)
	}

	return investments, rows.Err()
}

// MarkCompleted transitions a pending entry to completed. The status guard in
// the WHERE clause is the idempotency key for settlement redelivery.
func (r *InvestmentRepositoryImpl) MarkCompleted(ctx context.Context, id uuid.UUID, settledAt time.Time) error {
	query := `
		UPDATE investments
		SET status = 'completed', settlement_date = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'pending'
	`

	tag, err := r.db.Exec(ctx, query, settledAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark investment completed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("investment %s is not pending: %w", id, domain.ErrInvalidState)
	}

	return nil
}

// MarkCancelled transitions a pending entry to cancelled
func (r *InvestmentRepositoryImpl) MarkCancelled(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE investments
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark investment cancelled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("investment %s is not pending: %w", id, domain.ErrInvalidState)
	}

	return nil
}
