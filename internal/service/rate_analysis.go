package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/apperror"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/logger"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/model"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/repository"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/pkg/currency"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/pkg/datetime"
)

const (
	// RateAnalysisMonths is how far back AnalyzeRates looks.
	RateAnalysisMonths = 6

	// Fewer daily points than this always read as stable.
	minTrendPoints = 10
)

// trendThreshold is the percent move between the halves of the window that
// counts as a trend.
var trendThreshold = decimal.NewFromInt(2)

// Days from today to the recommended purchase date, per trend.
var purchaseLeadDays = map[model.RateTrend]int{
	model.RateTrendDecreasing: 21,
	model.RateTrendIncreasing: 3,
	model.RateTrendStable:     7,
}

// AnalyzeRates summarizes the stored rates for the pair over the last
// RateAnalysisMonths: the current rate, the average, the extremes and their
// dates, the trend, and a suggested purchase date. It reads history only and
// never fetches. With no stored history the error is RateUnavailable.
func (s *ExchangeRateService) AnalyzeRates(ctx context.Context, from, to string) (*model.RateAnalysis, error) {
	var err error
	if from, err = normalizeCurrency("from", from); err != nil {
		return nil, err
	}
	if to, err = normalizeCurrency("to", to); err != nil {
		return nil, err
	}
	if from == to {
		return nil, apperror.InvalidInput("to", "must differ from from")
	}

	now := s.now().UTC()
	since := now.AddDate(0, -RateAnalysisMonths, 0)
	rows, err := s.store.History(ctx, from, to, since)
	if err != nil {
		return nil, apperror.Internal("failed to read exchange rate history", err)
	}
	points := dailyPoints(rows)
	if len(points) == 0 {
		return nil, apperror.RateUnavailable(from, to, repository.ErrExchangeRateNotFound)
	}

	current := points[len(points)-1]
	a := &model.RateAnalysis{
		FromCurrency:    from,
		ToCurrency:      to,
		CurrentRate:     current.Rate,
		CurrentRateDate: current.Date,
		MinRate:         points[0].Rate,
		MinRateDate:     points[0].Date,
		MaxRate:         points[0].Rate,
		MaxRateDate:     points[0].Date,
		History:         points,
		Since:           since,
		AnalyzedAt:      now,
	}

	sum := decimal.Zero
	for _, p := range points {
		sum = sum.Add(p.Rate)
		if p.Rate.LessThan(a.MinRate) {
			a.MinRate, a.MinRateDate = p.Rate, p.Date
		}
		if p.Rate.GreaterThan(a.MaxRate) {
			a.MaxRate, a.MaxRateDate = p.Rate, p.Date
		}
	}
	a.AverageRate = currency.RoundRate(sum.DivRound(decimal.NewFromInt(int64(len(points))), 10))

	a.Trend = rateTrend(points)
	a.RecommendedPurchaseDate = datetime.FromTime(now.AddDate(0, 0, purchaseLeadDays[a.Trend]))
	a.Recommendation = recommendation(a)

	logger.FromContext(ctx).Debug("analyzed exchange rates",
		"pair", from+"/"+to,
		"points", len(points),
		"trend", a.Trend,
	)
	return a, nil
}

// dailyPoints collapses rows sorted by fetch time into the last rate of each
// UTC day. Non-positive rates are skipped.
func dailyPoints(rows []model.ExchangeRate) []model.RatePoint {
	points := make([]model.RatePoint, 0, len(rows))
	for _, r := range rows {
		if !r.Rate.IsPositive() {
			continue
		}
		day := datetime.FromTime(r.FetchedAt)
		if n := len(points); n > 0 && points[n-1].Date.Equal(day.Time) {
			points[n-1].Rate = r.Rate
			continue
		}
		points = append(points, model.RatePoint{Date: day, Rate: r.Rate})
	}
	return points
}

// rateTrend compares the average of the later half of the window with the
// earlier half.
func rateTrend(points []model.RatePoint) model.RateTrend {
	if len(points) < minTrendPoints {
		return model.RateTrendStable
	}
	mid := len(points) / 2
	change := percentChange(meanRate(points[:mid]), meanRate(points[mid:]))
	switch {
	case change.GreaterThan(trendThreshold):
		return model.RateTrendIncreasing
	case change.LessThan(trendThreshold.Neg()):
		return model.RateTrendDecreasing
	}
	return model.RateTrendStable
}

func meanRate(points []model.RatePoint) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range points {
		sum = sum.Add(p.Rate)
	}
	return sum.DivRound(decimal.NewFromInt(int64(len(points))), 10)
}

// percentChange is (to - from) / from x 100.
func percentChange(from, to decimal.Decimal) decimal.Decimal {
	return to.Sub(from).DivRound(from, 10).Mul(decimal.NewFromInt(100))
}

func recommendation(a *model.RateAnalysis) string {
	when := a.RecommendedPurchaseDate.String()
	switch a.Trend {
	case model.RateTrendDecreasing:
		return fmt.Sprintf("%s/%s is falling (%s%% below its %d-month high). Waiting until around %s may get a better rate. Current %s, low %s.",
			a.FromCurrency, a.ToCurrency, percentChange(a.MaxRate, a.CurrentRate).Abs().StringFixed(2), RateAnalysisMonths,
			when, a.CurrentRate.StringFixed(4), a.MinRate.StringFixed(4))
	case model.RateTrendIncreasing:
		return fmt.Sprintf("%s/%s is rising (%s%% above its %d-month low on %s). Buy by %s to avoid higher costs. Current %s.",
			a.FromCurrency, a.ToCurrency, percentChange(a.MinRate, a.CurrentRate).Abs().StringFixed(2), RateAnalysisMonths,
			a.MinRateDate, when, a.CurrentRate.StringFixed(4))
	}
	return fmt.Sprintf("%s/%s is stable (%s%% range over %d months). Any time before %s is reasonable. Current %s, average %s.",
		a.FromCurrency, a.ToCurrency, percentChange(a.MinRate, a.MaxRate).Abs().StringFixed(2), RateAnalysisMonths,
		when, a.CurrentRate.StringFixed(4), a.AverageRate.StringFixed(4))
}

