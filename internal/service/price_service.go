package service

import (
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"paisavest/internal/domain"
)

// jitterRange is the half-width of the uniform price variation: ±5%
const jitterRange = 0.05

// MockPriceService implements domain.PriceSource by jittering the static base
// prices. It stands in for a market-data feed; swapping in a real feed only
// means providing another PriceSource.
type MockPriceService struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewMockPriceService creates a price source seeded from the clock
func NewMockPriceService() *MockPriceService {
	return NewMockPriceServiceWithSeed(time.Now().UnixNano())
}

// NewMockPriceServiceWithSeed creates a deterministic price source for tests
func NewMockPriceServiceWithSeed(seed int64) *MockPriceService {
	return &MockPriceService{rng: rand.New(rand.NewSource(seed))}
}

// Price returns basePrice × (1 + U) with U uniform in [-0.05, 0.05]
func (s *MockPriceService) Price(code string) decimal.Decimal {
	base := domain.LookupFund(code).BasePrice

	s.mu.Lock()
	u := (s.rng.Float64()*2 - 1) * jitterRange
	s.mu.Unlock()

	return base.Mul(decimal.NewFromFloat(1 + u)).Round(4)
}

// FixedPriceSource returns base prices unchanged. Used by tests that need a
// pinned price, and by the withdrawal path where the emergency fund is valued
// at par.
type FixedPriceSource struct{}

// Price returns the fund's base price
func (FixedPriceSource) Price(code string) decimal.Decimal {
	return domain.LookupFund(code).BasePrice
}
