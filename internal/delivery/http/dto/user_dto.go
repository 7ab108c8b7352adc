package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"paisavest/internal/domain"
)

// UpsertUserRequest is the payload posted by identity-provider events
type UpsertUserRequest struct {
	ExternalID string `json:"external_id" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
}

// UpdateUserRequest is a partial profile update. Running totals and the
// investment streak are derived fields and deliberately absent.
type UpdateUserRequest struct {
	Email             *string          `json:"email" validate:"omitempty,email"`
	FirstName         *string          `json:"first_name"`
	LastName          *string          `json:"last_name"`
	PhoneNumber       *string          `json:"phone_number"`
	ExperienceLevel   *string          `json:"experience_level" validate:"omitempty,oneof=beginner intermediate expert"`
	RiskTolerance     *string          `json:"risk_tolerance" validate:"omitempty,oneof=low medium high"`
	IsVillagePartner  *bool            `json:"is_village_partner"`
	AutoInvestEnabled *bool            `json:"auto_invest_enabled"`
	RoundUpEnabled    *bool            `json:"round_up_enabled"`
	DailySIPAmount    *decimal.Decimal `json:"daily_sip_amount"`
	EmergencyFundGoal *decimal.Decimal `json:"emergency_fund_goal"`
}

// Apply copies the provided fields onto the user
func (r *UpdateUserRequest) Apply(user *domain.User) {
	if r.Email != nil {
		user.Email = *r.Email
	}
	if r.FirstName != nil {
		user.FirstName = *r.FirstName
	}
	if r.LastName != nil {
		user.LastName = *r.LastName
	}
	if r.PhoneNumber != nil {
		user.PhoneNumber = *r.PhoneNumber
	}
	if r.ExperienceLevel != nil {
		user.ExperienceLevel = *r.ExperienceLevel
	}
	if r.RiskTolerance != nil {
		user.RiskTolerance = *r.RiskTolerance
	}
	if r.IsVillagePartner != nil {
		user.IsVillagePartner = *r.IsVillagePartner
	}
	if r.AutoInvestEnabled != nil {
		user.AutoInvestEnabled = *r.AutoInvestEnabled
	}
	if r.RoundUpEnabled != nil {
		user.RoundUpEnabled = *r.RoundUpEnabled
	}
	if r.DailySIPAmount != nil {
		user.DailySIPAmount = *r.DailySIPAmount
	}
	if r.EmergencyFundGoal != nil {
		user.EmergencyFundGoal = *r.EmergencyFundGoal
	}
}

// UserOutput represents a user profile in API responses
type UserOutput struct {
	ID                 string          `json:"id"`
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
}

// NewUserOutput maps a domain user onto its API shape
func NewUserOutput(user *domain.User) UserOutput {
	return UserOutput{
		ID:                 user.ID.String(),
		ExternalID:         user.ExternalID,
		Email:              user.Email,
		FirstName:          user.FirstName,
		LastName:           user.LastName,
		PhoneNumber:        user.PhoneNumber,
		ExperienceLevel:    user.ExperienceLevel,
		RiskTolerance:      user.RiskTolerance,
		IsVillagePartner:   user.IsVillagePartner,
		AutoInvestEnabled:  user.AutoInvestEnabled,
		RoundUpEnabled:     user.RoundUpEnabled,
		DailySIPAmount:     user.DailySIPAmount,
		EmergencyFundGoal:  user.EmergencyFundGoal,
		TotalInvested:      user.TotalInvested,
		CurrentValue:       user.CurrentValue,
		InvestmentStreak:   user.InvestmentStreak,
		LastInvestmentDate: user.LastInvestmentDate,
	}
}

// DashboardOutput is the at-a-glance view combining user totals and the
// portfolio aggregate
type DashboardOutput struct {
	TotalInvested         decimal.Decimal `json:"total_invested"`
	CurrentValue          decimal.Decimal `json:"current_value"`
	TotalReturns          decimal.Decimal `json:"total_returns"`
	ReturnsPercentage     float64         `json:"returns_percentage"`
	EmergencyFundCurrent  decimal.Decimal `json:"emergency_fund_current"`
	EmergencyFundGoal     decimal.Decimal `json:"emergency_fund_goal"`
	EmergencyFundProgress float64         `json:"emergency_fund_progress"`
	InvestmentStreak      int             `json:"investment_streak"`
}
