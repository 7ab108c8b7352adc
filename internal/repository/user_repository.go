package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"paisavest/internal/domain"
)

// UserRepositoryImpl implements the UserRepository interface
type UserRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) domain.UserRepository {
	return &UserRepositoryImpl{db: db}
}

const userColumns = `
	id, external_id, email, first_name, last_name, phone_number,
	experience_level, risk_tolerance, is_village_partner,
	auto_invest_enabled, round_up_enabled, daily_sip_amount,
	emergency_fund_goal, total_invested, current_value,
	investment_streak, last_investment_date, created_at, updated_at
`

// Create creates a new user
func (r *UserRepositoryImpl) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (
			id, external_id, email, first_name, last_name, phone_number,
			experience_level, risk_tolerance, is_village_partner,
			auto_invest_enabled, round_up_enabled, daily_sip_amount,
			emergency_fund_goal, total_invested, current_value,
			investment_streak, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18
		)
	`

	_, err := r.db.Exec(ctx, query,
		user.ID,
		user.ExternalID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PhoneNumber,
		user.ExperienceLevel,
		user.RiskTolerance,
		user.IsVillagePartner,
		user.AutoInvestEnabled,
		user.RoundUpEnabled,
		user.DailySIPAmount,
		user.EmergencyFundGoal,
		user.TotalInvested,
		user.CurrentValue,
		user.InvestmentStreak,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByExternalID retrieves a user by the identity provider's id
func (r *UserRepositoryImpl) GetByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE external_id = $1`

	user := &domain.User{}
	err := r.db.QueryRow(ctx, query, externalID).Scan(
		&user.ID,
		&user.ExternalID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.PhoneNumber,
		&user.ExperienceLevel,
		&user.RiskTolerance,
		&user.IsVillagePartner,
		&user.AutoInvestEnabled,
		&user.RoundUpEnabled,
		&user.DailySIPAmount,
		&user.EmergencyFundGoal,
		&user.TotalInvested,
		&user.CurrentValue,
		&user.InvestmentStreak,
		&user.LastInvestmentDate,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", externalID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by external id: %w", err)
	}

	return user, nil
}

// Update persists profile fields (preferences, experience, goals).
// Running totals and streak are owned by their dedicated updates.
func (r *UserRepositoryImpl) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET email = $1, first_name = $2, last_name = $3, phone_number = $4,
		    experience_level = $5, risk_tolerance = $6, is_village_partner = $7,
		    auto_invest_enabled = $8, round_up_enabled = $9,
		    daily_sip_amount = $10, emergency_fund_goal = $11, updated_at = NOW()
		WHERE external_id = $12
	`

	tag, err := r.db.Exec(ctx, query,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PhoneNumber,
		user.ExperienceLevel,
		user.RiskTolerance,
		user.IsVillagePartner,
		user.AutoInvestEnabled,
		user.RoundUpEnabled,
		user.DailySIPAmount,
		user.EmergencyFundGoal,
		user.ExternalID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", user.ExternalID, domain.ErrNotFound)
	}

	return nil
}

// UpdateTotals mirrors the aggregator's running totals onto the user
func (r *UserRepositoryImpl) UpdateTotals(ctx context.Context, userID uuid.UUID, totalInvested, currentValue decimal.Decimal) error {
	query := `
		UPDATE users
		SET total_invested = $1, current_value = $2, updated_at = NOW()
		WHERE id = $3
	`

	_, err := r.db.Exec(ctx, query, totalInvested, currentValue, userID)
	if err != nil {
		return fmt.Errorf("failed to update user totals: %w", err)
	}

	return nil
}

// AdjustTotals shifts the cached totals by delta
func (r *UserRepositoryImpl) AdjustTotals(ctx context.Context, externalID string, delta decimal.Decimal) error {
	query := `
		UPDATE users
		SET total_invested = total_invested + $1,
		    current_value = current_value + $1,
		    updated_at = NOW()
		WHERE external_id = $2
	`

	tag, err := r.db.Exec(ctx, query, delta, externalID)
	if err != nil {
		return fmt.Errorf("failed to adjust user totals: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", externalID, domain.ErrNotFound)
	}

	return nil
}

// UpdateStreak records an investment streak and its timestamp
func (r *UserRepositoryImpl) UpdateStreak(ctx context.Context, userID uuid.UUID, streak int, lastInvestment time.Time) error {
	query := `
		UPDATE users
		SET investment_streak = $1, last_investment_date = $2, updated_at = NOW()
		WHERE id = $3
	`

	_, err := r.db.Exec(ctx, query, streak, lastInvestment, userID)
	if err != nil {
		return fmt.Errorf("failed to update investment streak: %w", err)
	}

	return nil
}

// GetAutoInvestUsers retrieves all users with the daily SIP enabled
func (r *UserRepositoryImpl) GetAutoInvestUsers(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE auto_invest_enabled = TRUE AND daily_sip_amount >= 1
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query auto-invest users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user := &domain.User{}
		err := rows.Scan(
			&user.ID,
			&user.ExternalID,
			&user.Email,
			&user.FirstName,
			&user.LastName,
			&user.PhoneNumber,
			&user.ExperienceLevel,
			&user.RiskTolerance,
			&user.IsVillagePartner,
			&user.AutoInvestEnabled,
			&user.RoundUpEnabled,
			&user.DailySIPAmount,
			&user.EmergencyFundGoal,
			&user.TotalInvested,
			&user.CurrentValue,
			&user.InvestmentStreak,
			&user.LastInvestmentDate,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}
