package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Holding is a per-fund position derived from the ledger. Holdings are never
// edited in place; the aggregator rebuilds the whole slice.
type Holding struct {
	FundName       string          `json:"fund_name"`
	FundCode       string          `json:"fund_code"`
	InvestmentType string          `json:"investment_type"`
	TotalUnits     decimal.Decimal `json:"total_units"`
	AveragePrice   decimal.Decimal `json:"average_price"`
	TotalInvested  decimal.Decimal `json:"total_invested"`
	CurrentPrice   decimal.Decimal `json:"current_price"`
	CurrentValue   decimal.Decimal `json:"current_value"`
	Returns        decimal.Decimal `json:"returns"`
	ReturnsPercent float64         `json:"returns_percentage"`
	LastUpdated    time.Time       `json:"last_updated"`
}

// Allocation is the portfolio split by asset class, in percent of current
// value. The four buckets sum to at most 100.
type Allocation struct {
	Equity        float64 `json:"equity"`
	Debt          float64 `json:"debt"`
	Gold          float64 `json:"gold"`
	EmergencyFund float64 `json:"emergency_fund"`
}

// EmergencyFund tracks progress toward the user's emergency goal.
// Balance convention: 1 unit = ₹1.
type EmergencyFund struct {
	Current  decimal.Decimal `json:"current"`
	Goal     decimal.Decimal `json:"goal"`
	Progress float64         `json:"progress"`
}

// Portfolio is the denormalized per-user aggregate (1:1 with User). The ledger
// is authoritative; everything here is derived and rebuilt wholesale by the
// aggregator, except the emergency-fund fields which a withdrawal patches
// optimistically.
type Portfolio struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	ExternalID     string          `json:"external_id"`
	TotalInvested  decimal.Decimal `json:"total_invested"`
	CurrentValue   decimal.Decimal `json:"current_value"`
	TotalReturns   decimal.Decimal `json:"total_returns"`
	ReturnsPercent float64         `json:"returns_percentage"`
	Holdings       []Holding       `json:"holdings"`
	Allocation     Allocation      `json:"allocation"`
	EmergencyFund  EmergencyFund   `json:"emergency_fund"`
	LastUpdated    time.Time       `json:"last_updated"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ReturnsPercentage computes returns as a percentage of invested capital,
// with a defined zero instead of dividing by zero.
func ReturnsPercentage(returns, invested decimal.Decimal) float64 {
	if invested.IsZero() {
		return 0
	}
	pct, _ := returns.Div(invested).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}

// GoalProgress computes emergency-fund progress toward goal in percent,
// zero when no goal is set.
func GoalProgress(current, goal decimal.Decimal) float64 {
	if goal.IsZero() {
		return 0
	}
	pct, _ := current.Div(goal).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}
