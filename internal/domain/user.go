package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User represents an investor profile. Identity (sign-in, sessions) is owned by
// the external identity provider; ExternalID is the provider's user id.
type User struct {
	ID                 uuid.UUID       `json:"id"`
	ExternalID         string          `json:"external_id"`
	Email              string          `json:"email"`
	FirstName          string          `json:"first_name,omitempty"`
	LastName           string          `json:"last_name,omitempty"`
	PhoneNumber        string          `json:"phone_number,omitempty"`
	ExperienceLevel    string          `json:"experience_level"`
	RiskTolerance      string          `json:"risk_tolerance"`
	IsVillagePartner   bool            `json:"is_village_partner"`
	AutoInvestEnabled  bool            `json:"auto_invest_enabled"`
	RoundUpEnabled     bool            `json:"round_up_enabled"`
	DailySIPAmount     decimal.Decimal `json:"daily_sip_amount"`
	EmergencyFundGoal  decimal.Decimal `json:"emergency_fund_goal"`
	TotalInvested      decimal.Decimal `json:"total_invested"`
	CurrentValue       decimal.Decimal `json:"current_value"`
	InvestmentStreak   int             `json:"investment_streak"`
	LastInvestmentDate *time.Time      `json:"last_investment_date,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// ExperienceLevel constants
const (
	ExperienceBeginner     = "beginner"
	ExperienceIntermediate = "intermediate"
	ExperienceExpert       = "expert"
)

// RiskTolerance constants
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// ValidExperienceLevel reports whether level is a known experience level
func ValidExperienceLevel(level string) bool {
	switch level {
	case ExperienceBeginner, ExperienceIntermediate, ExperienceExpert:
		return true
	}
	return false
}

// ValidRiskTolerance reports whether risk is a known risk tolerance
func ValidRiskTolerance(risk string) bool {
	switch risk {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// StreakWindow is how recent the previous investment must be for the
// investment streak to grow instead of resetting.
const StreakWindow = 24 * time.Hour

// NextStreak returns the streak after an investment at now, given the previous
// investment time. A previous investment within StreakWindow extends the
// streak; anything older (or none) resets it to 1.
func (u *User) NextStreak(now time.Time) int {
	if u.LastInvestmentDate != nil && now.Sub(*u.LastInvestmentDate) <= StreakWindow {
		return u.InvestmentStreak + 1
	}
	return 1
}
