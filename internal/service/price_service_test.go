package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"paisavest/internal/domain"
)

func TestMockPriceJitterBounds(t *testing.T) {
	svc := NewMockPriceServiceWithSeed(1)
	base := domain.LookupFund(domain.FundNifty50).BasePrice
	low := base.Mul(decimal.NewFromFloat(1 - jitterRange))
	high := base.Mul(decimal.NewFromFloat(1 + jitterRange))

	for i := 0; i < 1000; i++ {
		price := svc.Price(domain.FundNifty50)
		assert.True(t, price.GreaterThanOrEqual(low), "price %s below bound %s", price, low)
		assert.True(t, price.LessThanOrEqual(high), "price %s above bound %s", price, high)
	}
}

func TestMockPriceSeedDeterminism(t *testing.T) {
	a := NewMockPriceServiceWithSeed(42)
	b := NewMockPriceServiceWithSeed(42)

	for i := 0; i < 10; i++ {
		assert.True(t, a.Price(domain.FundGoldETF).Equal(b.Price(domain.FundGoldETF)))
	}
}

func TestFixedPriceSource(t *testing.T) {
	var src FixedPriceSource
	assert.True(t, src.Price(domain.FundNifty50).Equal(decimal.NewFromFloat(125.50)))
	assert.True(t, src.Price(domain.FundLiquid).Equal(decimal.NewFromInt(1000)))
	assert.True(t, src.Price("NOSUCHFUND").Equal(decimal.NewFromInt(100)))
}
