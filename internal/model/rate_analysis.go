package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/pkg/datetime"
)

// RateTrend is the direction of a pair over the analysis window.
type RateTrend string

const (
	RateTrendIncreasing RateTrend = "increasing"
	RateTrendDecreasing RateTrend = "decreasing"
	RateTrendStable     RateTrend = "stable"
)

// RatePoint is the last rate observed on one day.
type RatePoint struct {
	Date datetime.Date   `json:"date"`
	Rate decimal.Decimal `json:"rate"`
}

// RateAnalysis summarizes stored history for a pair to help time a purchase.
type RateAnalysis struct {
	FromCurrency    string          `json:"fromCurrency"`
	ToCurrency      string          `json:"toCurrency"`
	CurrentRate     decimal.Decimal `json:"currentRate"`
	CurrentRateDate datetime.Date   `json:"currentRateDate"`
	AverageRate     decimal.Decimal `json:"averageRate"`
	MinRate         decimal.Decimal `json:"minRate"`
	MinRateDate     datetime.Date   `json:"minRateDate"`
	MaxRate         decimal.Decimal `json:"maxRate"`
	MaxRateDate     datetime.Date   `json:"maxRateDate"`

	Trend                   RateTrend     `json:"trend"`
	RecommendedPurchaseDate datetime.Date `json:"recommendedPurchaseDate"`
	Recommendation          string        `json:"recommendation"`

	History    []RatePoint `json:"historicalRates"`
	Since      time.Time   `json:"since"`
	AnalyzedAt time.Time   `json:"analyzedAt"`
}
