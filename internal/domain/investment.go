package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvestmentType constants (asset class of the fund)
const (
	InvestmentTypeEquityETF     = "equity_etf"
	InvestmentTypeDebtFund      = "debt_fund"
	InvestmentTypeGoldETF       = "gold_etf"
	InvestmentTypeIndexFund     = "index_fund"
	InvestmentTypeEmergencyFund = "emergency_fund"
)

// TransactionType constants
const (
	TransactionBuy      = "buy"
	TransactionSell     = "sell"
	TransactionDividend = "dividend"
)

// InvestmentSource constants
const (
	SourceManual              = "manual"
	SourceSIP                 = "sip"
	SourceRoundUp             = "roundup"
	SourceStreakBonus         = "streak_bonus"
	SourceVillagePartner      = "village_partner"
	SourceEmergencyWithdrawal = "emergency_withdrawal"
)

// InvestmentStatus constants
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Withdrawal method constants
const (
	WithdrawalMethodBank = "bank"
	WithdrawalMethodUPI  = "upi"
)

// Ledger minimums
var (
	MinInvestmentAmount = decimal.NewFromInt(10)
	MinRoundUpAmount    = decimal.NewFromInt(1)
	MinWithdrawalAmount = decimal.NewFromInt(100)
)

// BankDetails identifies the destination account for a bank withdrawal
type BankDetails struct {
	AccountNumber     string `json:"account_number"`
	IFSCCode          string `json:"ifsc_code"`
	AccountHolderName string `json:"account_holder_name"`
}

// WithdrawalMetadata is the per-source payload carried only by
// emergency-withdrawal ledger entries. Exactly one of BankDetails or UPIID is
// set, selected by Method.
type WithdrawalMetadata struct {
	Reason      string       `json:"reason"`
	Method      string       `json:"method"`
	BankDetails *BankDetails `json:"bank_details,omitempty"`
	UPIID       string       `json:"upi_id,omitempty"`
}

// Investment is an append-only ledger entry. Settled entries are immutable
// except for status and settlement date; cancellation is a status flip with a
// compensating balance restore, never a delete.
type Investment struct {
	ID               uuid.UUID           `json:"id"`
	UserID           uuid.UUID           `json:"user_id"`
	ExternalID       string              `json:"external_id"`
	InvestmentType   string              `json:"investment_type"`
	FundName         string              `json:"fund_name"`
	FundCode         string              `json:"fund_code"`
	TransactionType  string              `json:"transaction_type"`
	Amount           decimal.Decimal     `json:"amount"`
	Units            decimal.Decimal     `json:"units"`
	PricePerUnit     decimal.Decimal     `json:"price_per_unit"`
	Source           string              `json:"source"`
	Status           string              `json:"status"`
	TransactionID    string              `json:"transaction_id,omitempty"`
	BrokerageCharges decimal.Decimal     `json:"brokerage_charges"`
	Taxes            decimal.Decimal     `json:"taxes"`
	NetAmount        decimal.Decimal     `json:"net_amount"`
	TransactionDate  time.Time           `json:"transaction_date"`
	SettlementDate   *time.Time          `json:"settlement_date,omitempty"`
	Metadata         *WithdrawalMetadata `json:"metadata,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// MinAmountFor returns the minimum entry amount for a source: ₹100 for
// emergency withdrawals, ₹1 for round-ups (a round-up never exceeds ₹10),
// ₹10 for everything else.
func MinAmountFor(source string) decimal.Decimal {
	switch source {
	case SourceEmergencyWithdrawal:
		return MinWithdrawalAmount
	case SourceRoundUp:
		return MinRoundUpAmount
	}
	return MinInvestmentAmount
}

// Validate checks the fields every ledger entry must carry before it is
// appended. Amount minimums depend on the source.
func (i *Investment) Validate() error {
	if i.ExternalID == "" || i.FundCode == "" || i.FundName == "" || i.InvestmentType == "" {
		return fmt.Errorf("%w: missing required investment fields", ErrValidation)
	}
	if min := MinAmountFor(i.Source); i.Amount.LessThan(min) {
		return fmt.Errorf("%w: minimum amount is ₹%s", ErrValidation, min.String())
	}
	if i.Source == SourceEmergencyWithdrawal {
		if i.Metadata == nil || i.Metadata.Method == "" {
			return fmt.Errorf("%w: withdrawal metadata is required", ErrValidation)
		}
		switch i.Metadata.Method {
		case WithdrawalMethodBank:
			if i.Metadata.BankDetails == nil || i.Metadata.UPIID != "" {
				return fmt.Errorf("%w: bank withdrawals carry bank details only", ErrValidation)
			}
		case WithdrawalMethodUPI:
			if i.Metadata.UPIID == "" || i.Metadata.BankDetails != nil {
				return fmt.Errorf("%w: upi withdrawals carry a upi id only", ErrValidation)
			}
		default:
			return fmt.Errorf("%w: unknown withdrawal method %q", ErrValidation, i.Metadata.Method)
		}
	}
	return nil
}

// SignedAmount returns the amount with the transaction sign applied
// (buy = +, sell = −). Dividends do not move invested capital.
func (i *Investment) SignedAmount() decimal.Decimal {
	switch i.TransactionType {
	case TransactionBuy:
		return i.Amount
	case TransactionSell:
		return i.Amount.Neg()
	}
	return decimal.Zero
}

// SignedUnits returns the units with the transaction sign applied
func (i *Investment) SignedUnits() decimal.Decimal {
	switch i.TransactionType {
	case TransactionBuy:
		return i.Units
	case TransactionSell:
		return i.Units.Neg()
	}
	return decimal.Zero
}
