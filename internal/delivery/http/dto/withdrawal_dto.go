package dto

import (
	"github.com/shopspring/decimal"

	"paisavest/internal/domain"
)

// EmergencyWithdrawalRequest is the payload for an emergency withdrawal
type EmergencyWithdrawalRequest struct {
	ExternalID  string              `json:"external_id" validate:"required"`
	Amount      decimal.Decimal     `json:"amount"`
	Reason      string              `json:"reason" validate:"required"`
	Method      string              `json:"method" validate:"required,oneof=bank upi"`
	BankDetails *domain.BankDetails `json:"bank_details"`
	UPIID       string              `json:"upi_id"`
}

// CancelWithdrawalRequest identifies the caller when the request is not
// authenticated by token
type CancelWithdrawalRequest struct {
	ExternalID string `json:"external_id"`
}

// WithdrawalOutput represents a withdrawal in API responses
type WithdrawalOutput struct {
	InvestmentOutput
	EstimatedProcessingTime string `json:"estimated_processing_time,omitempty"`
}

// NewWithdrawalOutput maps a withdrawal ledger entry onto its API shape.
// The processing estimate is only shown while the withdrawal is pending.
func NewWithdrawalOutput(inv *domain.Investment) WithdrawalOutput {
	out := WithdrawalOutput{InvestmentOutput: NewInvestmentOutput(inv)}
	if inv.Status == domain.StatusPending {
		out.EstimatedProcessingTime = "2-4 hours"
	}
	return out
}

// NewWithdrawalOutputs maps a page of withdrawals
func NewWithdrawalOutputs(invs []*domain.Investment) []WithdrawalOutput {
	out := make([]WithdrawalOutput, 0, len(invs))
	for _, inv := range invs {
		out = append(out, NewWithdrawalOutput(inv))
	}
	return out
}
