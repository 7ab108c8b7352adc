package domain

import "github.com/shopspring/decimal"

// Fund is a static reference entry for an investable fund
type Fund struct {
	Code      string
	Name      string
	AssetType string
	BasePrice decimal.Decimal
}

// Fund codes
const (
	FundNifty50    = "NIFTY50"
	FundBankNifty  = "BANKNIFTY"
	FundLiquid     = "LIQUIDFUND"
	FundGoldETF    = "GOLDETF"
	FundEmergency  = "EMERGFUND"
	FundWithdrawal = "EMG_WD"
)

// fundTable is the static fund reference data. A real market-data feed would
// replace the base prices; the PriceSource interface is the seam for that.
var fundTable = map[string]Fund{
	FundNifty50:   {Code: FundNifty50, Name: "Nifty 50 ETF", AssetType: InvestmentTypeEquityETF, BasePrice: decimal.NewFromFloat(125.50)},
	FundBankNifty: {Code: FundBankNifty, Name: "Bank Nifty ETF", AssetType: InvestmentTypeEquityETF, BasePrice: decimal.NewFromFloat(245.75)},
	FundLiquid:    {Code: FundLiquid, Name: "Liquid Fund", AssetType: InvestmentTypeDebtFund, BasePrice: decimal.NewFromFloat(1000.00)},
	FundGoldETF:   {Code: FundGoldETF, Name: "Gold ETF", AssetType: InvestmentTypeGoldETF, BasePrice: decimal.NewFromFloat(45.25)},
	FundEmergency: {Code: FundEmergency, Name: "Emergency Fund", AssetType: InvestmentTypeEmergencyFund, BasePrice: decimal.NewFromInt(10)},
}

// defaultFund backs unknown codes so pricing never fails hard
var defaultFund = Fund{Name: "Unknown Fund", AssetType: InvestmentTypeEquityETF, BasePrice: decimal.NewFromInt(100)}

// LookupFund returns the reference entry for a fund code. Unknown codes fall
// back to a generic fund with a ₹100 base price, mirroring the feed's
// behaviour for unlisted instruments.
func LookupFund(code string) Fund {
	if f, ok := fundTable[code]; ok {
		return f
	}
	f := defaultFund
	f.Code = code
	return f
}

// RecommendFund maps an investor profile onto a fund code:
// beginner or low risk → liquid fund, intermediate or medium risk → Nifty 50,
// everything else → Bank Nifty.
func RecommendFund(experienceLevel, riskTolerance string) string {
	if experienceLevel == ExperienceBeginner || riskTolerance == RiskLow {
		return FundLiquid
	}
	if experienceLevel == ExperienceIntermediate || riskTolerance == RiskMedium {
		return FundNifty50
	}
	return FundBankNifty
}
