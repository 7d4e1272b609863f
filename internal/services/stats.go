package services

import (
	"iter"
	"math"
	"sort"

	"github.com/commoditydesk/riskengine/internal/models"
)

// tradingPeriodsPerYear is the compounding base for daily observations.
const tradingPeriodsPerYear = 252

// simpleReturns converts an ordered price series into per-period simple
// returns. The first point cannot form a return and is skipped.
func simpleReturns(points []models.PricePoint) []models.Return {
	if len(points) < 2 {
		return nil
	}
	returns := make([]models.Return, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		prev := points[i-1].Price.InexactFloat64()
		cur := points[i].Price.InexactFloat64()
		if prev == 0 {
			continue
		}
		returns = append(returns, models.Return{
			Date:  points[i].Timestamp,
			Value: cur/prev - 1,
		})
	}
	return returns
}

// CumulativeReturns produces the running product of (1+return) minus 1 as a
// lazy sequence. Ranging over it a second time restarts from the beginning.
func CumulativeReturns(returns []models.Return) iter.Seq[models.DailyReturn] {
	return func(yield func(models.DailyReturn) bool) {
		cumulative := 1.0
		for _, r := range returns {
			cumulative *= 1 + r.Value
			point := models.DailyReturn{
				Date:             r.Date,
				Return:           r.Value,
				CumulativeReturn: cumulative - 1,
			}
			if !yield(point) {
				return
			}
		}
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev uses the n-1 divisor. Fewer than two values yields 0.
func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		diff := v - m
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// historicalPercentile picks the empirical percentile of a return
// distribution by floor index into the ascending sort.
func historicalPercentile(values []float64, pct float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	idx := int(float64(len(sorted)) * pct)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// maxDrawdown walks the cumulative wealth curve and returns the largest
// peak-to-trough decline as a negative fraction.
func maxDrawdown(returns []models.Return) float64 {
	wealth := 1.0
	peak := 1.0
	worst := 0.0
	for _, r := range returns {
		wealth *= 1 + r.Value
		if wealth > peak {
			peak = wealth
		}
		if dd := wealth/peak - 1; dd < worst {
			worst = dd
		}
	}
	return worst
}
