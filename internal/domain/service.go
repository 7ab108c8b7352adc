package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceSource supplies current fund prices. The default implementation jitters
// the static base prices; a real market-data feed can be swapped in without
// touching the aggregator.
type PriceSource interface {
	// Price returns the current price for a fund code
	Price(code string) decimal.Decimal
}

// SettlementJob is the payload enqueued for asynchronous withdrawal settlement.
// WithdrawalID doubles as the idempotency key: settling is a compare-and-set
// on the pending status, so redelivery is harmless.
type SettlementJob struct {
	WithdrawalID uuid.UUID `json:"withdrawal_id"`
	ExternalID   string    `json:"external_id"`
	NotBefore    time.Time `json:"not_before"`
}

// SettlementQueue hands withdrawal settlement off to a worker, decoupled from
// the HTTP request lifecycle. The response returns before settlement runs;
// callers poll the withdrawal status.
type SettlementQueue interface {
	// Enqueue publishes a settlement job
	Enqueue(ctx context.Context, job SettlementJob) error
}

// Settler completes a pending withdrawal. Implemented by the withdrawal
// service and invoked by queue consumers.
type Settler interface {
	// Settle transitions a pending withdrawal to completed
	Settle(ctx context.Context, withdrawalID uuid.UUID) error
}
