package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"paisavest/internal/domain"
)

// CreateInvestmentRequest is the payload for a manual investment
type CreateInvestmentRequest struct {
	ExternalID     string          `json:"external_id" validate:"required"`
	InvestmentType string          `json:"investment_type" validate:"required,oneof=equity_etf debt_fund gold_etf index_fund emergency_fund"`
	FundName       string          `json:"fund_name" validate:"required"`
	FundCode       string          `json:"fund_code" validate:"required"`
	Amount         decimal.Decimal `json:"amount"`
	Source         string          `json:"source" validate:"omitempty,oneof=manual sip roundup streak_bonus village_partner"`
}

// RoundUpRequest carries the originating transaction amount
type RoundUpRequest struct {
	ExternalID        string          `json:"external_id" validate:"required"`
	TransactionAmount decimal.Decimal `json:"transaction_amount"`
}

// SIPRequest triggers a single daily SIP purchase for one user
type SIPRequest struct {
	ExternalID string `json:"external_id" validate:"required"`
}

// InvestmentOutput represents one ledger entry in API responses
type InvestmentOutput struct {
	ID              string                     `json:"id"`
	ExternalID      string                     `json:"external_id"`
	InvestmentType  string                     `json:"investment_type"`
	FundName        string                     `json:"fund_name"`
	FundCode        string                     `json:"fund_code"`
	Units           decimal.Decimal            `json:"units"`
	PricePerUnit    decimal.Decimal            `json:"price_per_unit"`
	Amount          decimal.Decimal            `json:"amount"`
	Brokerage       decimal.Decimal            `json:"brokerage"`
	Taxes           decimal.Decimal            `json:"taxes"`
	NetAmount       decimal.Decimal            `json:"net_amount"`
	TransactionType string                     `json:"transaction_type"`
	Source          string                     `json:"source"`
	Status          string                     `json:"status"`
	TransactionID   string                     `json:"transaction_id,omitempty"`
	Metadata        *domain.WithdrawalMetadata `json:"metadata,omitempty"`
	TransactionDate time.Time                  `json:"transaction_date"`
	SettlementDate  *time.Time                 `json:"settlement_date,omitempty"`
}

// NewInvestmentOutput maps a ledger entry onto its API shape
func NewInvestmentOutput(inv *domain.Investment) InvestmentOutput {
	return InvestmentOutput{
		ID:              inv.ID.String(),
		ExternalID:      inv.ExternalID,
		InvestmentType:  inv.InvestmentType,
		FundName:        inv.FundName,
		FundCode:        inv.FundCode,
		Units:           inv.Units,
		PricePerUnit:    inv.PricePerUnit,
		Amount:          inv.Amount,
		Brokerage:       inv.BrokerageCharges,
		Taxes:           inv.Taxes,
		NetAmount:       inv.NetAmount,
		TransactionType: inv.TransactionType,
		Source:          inv.Source,
		Status:          inv.Status,
		TransactionID:   inv.TransactionID,
		Metadata:        inv.Metadata,
		TransactionDate: inv.TransactionDate,
		SettlementDate:  inv.SettlementDate,
	}
}

// NewInvestmentOutputs maps a page of ledger entries
func NewInvestmentOutputs(invs []*domain.Investment) []InvestmentOutput {
	out := make([]InvestmentOutput, 0, len(invs))
	for _, inv := range invs {
		out = append(out, NewInvestmentOutput(inv))
	}
	return out
}

// PaginationOutput describes the page window of a list response
type PaginationOutput struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

// NewPaginationOutput computes the page count from the total row count
func NewPaginationOutput(page, limit int, total int64) PaginationOutput {
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return PaginationOutput{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

// InvestmentListOutput is a page of ledger entries
type InvestmentListOutput struct {
	Investments []InvestmentOutput `json:"investments"`
	Pagination  PaginationOutput   `json:"pagination"`
}

// RoundUpOutput echoes the round-up calculation beside the placed investment
type RoundUpOutput struct {
	Investment        InvestmentOutput `json:"investment"`
	TransactionAmount decimal.Decimal  `json:"transaction_amount"`
	RoundedTo         decimal.Decimal  `json:"rounded_to"`
	RoundUpAmount     decimal.Decimal  `json:"round_up_amount"`
}
