package service

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"paisavest/internal/domain"
)

// PortfolioService rebuilds the derived portfolio aggregate from the ledger.
// The ledger is authoritative: every recalculation folds the full set of
// completed entries, replaces the portfolio document wholesale and mirrors the
// totals onto the user. A failed save surfaces to the caller and is not
// retried, so the cached aggregate can briefly trail the ledger until the next
// refresh.
type PortfolioService struct {
	userRepo      domain.UserRepository
	invRepo       domain.InvestmentRepository
	portfolioRepo domain.PortfolioRepository
	prices        domain.PriceSource
	log           *logrus.Logger

	now func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewPortfolioService creates a new PortfolioService
func NewPortfolioService(
	userRepo domain.UserRepository,
	invRepo domain.InvestmentRepository,
	portfolioRepo domain.PortfolioRepository,
	prices domain.PriceSource,
	log *logrus.Logger,
) *PortfolioService {
	return &PortfolioService{
		userRepo:      userRepo,
		invRepo:       invRepo,
		portfolioRepo: portfolioRepo,
		prices:        prices,
		log:           log,
		now:           time.Now,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Get retrieves a user's portfolio
func (s *PortfolioService) Get(ctx context.Context, externalID string) (*domain.Portfolio, error) {
	return s.portfolioRepo.GetByExternalID(ctx, externalID)
}

// Recalculate folds the completed ledger into a fresh portfolio aggregate:
//  1. emergency-fund entries become a running signed balance (1 unit = ₹1)
//  2. everything else accumulates signed units/amounts per fund
//  3. holdings with units are marked to the current price; holdings netted to
//     zero units are retained as zero-value rows, not pruned
//  4. the whole document is replaced and the user totals mirrored
func (s *PortfolioService) Recalculate(ctx context.Context, externalID string) (*domain.Portfolio, error) {
	portfolio, err := s.portfolioRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}

	entries, err := s.invRepo.GetCompleted(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("recalculate: %w", err)
	}

	type fundAccum struct {
		fundName       string
		investmentType string
		totalUnits     decimal.Decimal
		totalInvested  decimal.Decimal
	}

	accums := make(map[string]*fundAccum)
	var order []string
	emergencyBalance := decimal.Zero
	totalInvested := decimal.Zero

	for _, entry := range entries {
		if entry.InvestmentType == domain.InvestmentTypeEmergencyFund {
			emergencyBalance = emergencyBalance.Add(entry.SignedAmount())
			continue
		}

		acc, ok := accums[entry.FundCode]
		if !ok {
			acc = &fundAccum{fundName: entry.FundName, investmentType: entry.InvestmentType}
			accums[entry.FundCode] = acc
			order = append(order, entry.FundCode)
		}
		acc.totalUnits = acc.totalUnits.Add(entry.SignedUnits())
		acc.totalInvested = acc.totalInvested.Add(entry.SignedAmount())
		totalInvested = totalInvested.Add(entry.SignedAmount())
	}

	// Stable holding order keeps repeated recalculations identical
	sort.Strings(order)

	now := s.now().UTC()
	currentValue := decimal.Zero
	classValues := make(map[string]decimal.Decimal)
	holdings := make([]domain.Holding, 0, len(accums))

	for _, code := range order {
		acc := accums[code]
		h := domain.Holding{
			FundName:       acc.fundName,
			FundCode:       code,
			InvestmentType: acc.investmentType,
			TotalUnits:     acc.totalUnits,
			TotalInvested:  acc.totalInvested,
			CurrentPrice:   s.prices.Price(code),
			LastUpdated:    now,
		}

		if acc.totalUnits.IsPositive() {
			h.AveragePrice = acc.totalInvested.Div(acc.totalUnits).Round(4)
			h.CurrentValue = acc.totalUnits.Mul(h.CurrentPrice).Round(4)
		}
		h.Returns = h.CurrentValue.Sub(h.TotalInvested)
		h.ReturnsPercent = domain.ReturnsPercentage(h.Returns, h.TotalInvested)

		currentValue = currentValue.Add(h.CurrentValue)
		classValues[acc.investmentType] = classValues[acc.investmentType].Add(h.CurrentValue)
		holdings = append(holdings, h)
	}

	totalInvested = totalInvested.Add(emergencyBalance)
	currentValue = currentValue.Add(emergencyBalance)

	portfolio.Holdings = holdings
	portfolio.TotalInvested = totalInvested
	portfolio.CurrentValue = currentValue
	portfolio.TotalReturns = currentValue.Sub(totalInvested)
	portfolio.ReturnsPercent = domain.ReturnsPercentage(portfolio.TotalReturns, totalInvested)
	portfolio.Allocation = domain.Allocation{
		Equity:        allocationPercent(classValues[domain.InvestmentTypeEquityETF].Add(classValues[domain.InvestmentTypeIndexFund]), currentValue),
		Debt:          allocationPercent(classValues[domain.InvestmentTypeDebtFund], currentValue),
		Gold:          allocationPercent(classValues[domain.InvestmentTypeGoldETF], currentValue),
		EmergencyFund: allocationPercent(emergencyBalance, currentValue),
	}
	portfolio.EmergencyFund.Current = emergencyBalance
	portfolio.EmergencyFund.Progress = domain.GoalProgress(emergencyBalance, portfolio.EmergencyFund.Goal)
	portfolio.LastUpdated = now

	if err := s.portfolioRepo.Replace(ctx, portfolio); err != nil {
		return nil, fmt.Errorf("recalculate: %w", err)
	}

	if err := s.userRepo.UpdateTotals(ctx, portfolio.UserID, totalInvested, currentValue); err != nil {
		return nil, fmt.Errorf("recalculate: mirror user totals: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"external_id":    externalID,
		"holdings":       len(holdings),
		"total_invested": totalInvested.String(),
		"current_value":  currentValue.String(),
	}).Info("portfolio recalculated")

	return portfolio, nil
}

func allocationPercent(value, total decimal.Decimal) float64 {
	if total.IsZero() {
		return 0
	}
	pct, _ := value.Div(total).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}

// HistoryPoint is one value sample in the mock performance series
type HistoryPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// History generates a mock performance series for the requested period.
// Daily snapshots are not stored; this stands in for a snapshot store the same
// way the price source stands in for a market feed.
func (s *PortfolioService) History(period string) []HistoryPoint {
	var points int
	switch period {
	case "1M":
		points = 30
	case "6M":
		points = 180
	default:
		points = 365
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data := make([]HistoryPoint, 0, points)
	value := 1000.0
	today := s.now()
	for i := 0; i < points; i++ {
		date := today.AddDate(0, 0, -(points - i))

		// Random walk with a slight upward bias, floored at 100
		value += (s.rng.Float64() - 0.4) * 50
		if value < 100 {
			value = 100
		}

		data = append(data, HistoryPoint{
			Date:  date.Format("2006-01-02"),
			Value: float64(int(value*100)) / 100,
		})
	}

	return data
}

// Recommendation is a nudge shown on the dashboard
type Recommendation struct {
	Type            string          `json:"type"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Priority        string          `json:"priority"`
	SuggestedAmount decimal.Decimal `json:"suggested_amount"`
}

// Recommendations derives investment nudges from the user's profile and
// portfolio state
func (s *PortfolioService) Recommendations(ctx context.Context, externalID string) ([]Recommendation, error) {
	user, err := s.userRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}

	portfolio, err := s.portfolioRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		portfolio = nil
	}

	var recs []Recommendation

	if portfolio == nil || portfolio.EmergencyFund.Progress < 50 {
		recs = append(recs, Recommendation{
			Type:            "emergency_fund",
			Title:           "Build Emergency Fund",
			Description:     "Consider increasing your emergency fund to cover 3-6 months of expenses",
			Priority:        "high",
			SuggestedAmount: decimal.NewFromInt(2000),
		})
	}

	if !user.AutoInvestEnabled || user.DailySIPAmount.LessThan(decimal.NewFromInt(50)) {
		recs = append(recs, Recommendation{
			Type:            "sip",
			Title:           "Start Daily SIP",
			Description:     "Enable automatic daily investments to build wealth consistently",
			Priority:        "medium",
			SuggestedAmount: decimal.NewFromInt(50),
		})
	}

	if !user.RoundUpEnabled {
		recs = append(recs, Recommendation{
			Type:            "roundup",
			Title:           "Enable Round-up Investments",
			Description:     "Automatically invest spare change from your transactions",
			Priority:        "low",
			SuggestedAmount: decimal.Zero,
		})
	}

	return recs, nil
}
