package services

import (
	"context"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/commoditydesk/riskengine/internal/cache"
	"github.com/commoditydesk/riskengine/internal/models"
)

// defaultRollingWindow is the trailing window for the rolling volatility
// series.
const defaultRollingWindow = 20

// ewmaLambda is the RiskMetrics decay factor for EWMA volatility.
const ewmaLambda = 0.94

// PortfolioVaRResult is the currency-scaled VaR of the whole book.
type PortfolioVaRResult struct {
	PortfolioValue decimal.Decimal `json:"portfolio_value"`
	VaR95          decimal.Decimal `json:"var_95"`
	VaR99          decimal.Decimal `json:"var_99"`
}

// VolatilityService derives realized/annualized volatility and historical
// Value-at-Risk from the statistics kernel's return series.
type VolatilityService struct {
	analysis      *MarketAnalysisService
	cache         *cache.AnalysisCache
	logger        *logrus.Logger
	rollingWindow int
}

// NewVolatilityService creates a volatility and VaR calculator. A
// rollingWindow below 2 falls back to the default.
func NewVolatilityService(analysis *MarketAnalysisService, analysisCache *cache.AnalysisCache, logger *logrus.Logger, rollingWindow int) *VolatilityService {
	if rollingWindow < 2 {
		rollingWindow = defaultRollingWindow
	}
	return &VolatilityService{
		analysis:      analysis,
		cache:         analysisCache,
		logger:        logger,
		rollingWindow: rollingWindow,
	}
}

// AnalyzeVolatility computes the volatility profile of a symbol over a
// window. It needs at least rollingWindow return observations.
func (s *VolatilityService) AnalyzeVolatility(ctx context.Context, symbol string, from, to time.Time) (*models.VolatilityAnalysisResult, error) {
	key := cache.Key("volatility", symbol, from, to)
	var cached models.VolatilityAnalysisResult
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	returns, err := s.analysis.Returns(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}
	if len(returns) < s.rollingWindow {
		return nil, &InsufficientDataError{Symbol: symbol, Needed: s.rollingWindow, Got: len(returns)}
	}

	values := make([]float64, len(returns))
	for i, r := range returns {
		values[i] = r.Value
	}

	realized := sampleStdDev(values)
	result := &models.VolatilityAnalysisResult{
		Symbol:               symbol,
		From:                 from,
		To:                   to,
		RealizedVolatility:   realized,
		AnnualizedVolatility: realized * math.Sqrt(tradingPeriodsPerYear),
		EWMAVolatility:       ewmaVolatility(values),
		VaR95:                VaRAt(values, 0.95),
		VaR99:                VaRAt(values, 0.99),
		RollingVolatility:    s.rollingVolatility(returns),
	}

	s.logger.WithFields(logrus.Fields{
		"symbol":         symbol,
		"realized_vol":   result.RealizedVolatility,
		"annualized_vol": result.AnnualizedVolatility,
		"var_95":         result.VaR95,
		"var_99":         result.VaR99,
	}).Info("Volatility analysis complete")

	s.cache.Set(ctx, key, result)
	return result, nil
}

// VaRAt reports the return-based historical VaR at the given confidence
// level as a positive loss fraction. When the tail percentile is a gain the
// VaR is 0, which keeps the magnitude monotonic in the confidence level.
func VaRAt(returns []float64, confidence float64) float64 {
	loss := -historicalPercentile(returns, 1-confidence)
	if loss < 0 {
		return 0
	}
	return loss
}

// PortfolioVaR scales historical VaR to the book's currency value using
// position-value weights; short positions contribute negated returns.
func (s *VolatilityService) PortfolioVaR(positions []models.Position, returnsByProduct map[string][]float64) PortfolioVaRResult {
	portfolioValue := decimal.Zero
	for _, pos := range positions {
		portfolioValue = portfolioValue.Add(positionValue(pos))
	}

	weighted := s.portfolioReturns(positions, returnsByProduct, portfolioValue)
	if len(weighted) == 0 || portfolioValue.IsZero() {
		return PortfolioVaRResult{PortfolioValue: portfolioValue, VaR95: decimal.Zero, VaR99: decimal.Zero}
	}

	return PortfolioVaRResult{
		PortfolioValue: portfolioValue,
		VaR95:          portfolioValue.Mul(decimal.NewFromFloat(VaRAt(weighted, 0.95))),
		VaR99:          portfolioValue.Mul(decimal.NewFromFloat(VaRAt(weighted, 0.99))),
	}
}

// portfolioReturns builds the position-value-weighted return series. Series
// are truncated to the shortest product history.
func (s *VolatilityService) portfolioReturns(positions []models.Position, returnsByProduct map[string][]float64, portfolioValue decimal.Decimal) []float64 {
	if len(returnsByProduct) == 0 || portfolioValue.IsZero() {
		return nil
	}
	minLen := -1
	for _, series := range returnsByProduct {
		if minLen < 0 || len(series) < minLen {
			minLen = len(series)
		}
	}
	if minLen <= 0 {
		return nil
	}

	weighted := make([]float64, minLen)
	for _, pos := range positions {
		series, ok := returnsByProduct[pos.Product]
		if !ok {
			continue
		}
		weight := positionValue(pos).Div(portfolioValue).InexactFloat64()
		sign := 1.0
		if pos.Direction == models.DirectionShort {
			sign = -1
		}
		for i := 0; i < minLen; i++ {
			weighted[i] += weight * sign * series[i]
		}
	}
	return weighted
}

// rollingVolatility emits one point per period once a full trailing window is
// available; the first window-1 periods have no defined point.
func (s *VolatilityService) rollingVolatility(returns []models.Return) []models.VolatilityPoint {
	if len(returns) < s.rollingWindow {
		return nil
	}
	points := make([]models.VolatilityPoint, 0, len(returns)-s.rollingWindow+1)
	window := make([]float64, s.rollingWindow)
	for i := s.rollingWindow - 1; i < len(returns); i++ {
		for j := 0; j < s.rollingWindow; j++ {
			window[j] = returns[i-s.rollingWindow+1+j].Value
		}
		points = append(points, models.VolatilityPoint{
			Date:       returns[i].Date,
			Volatility: sampleStdDev(window),
		})
	}
	return points
}

// ewmaVolatility is the RiskMetrics exponentially weighted volatility, most
// recent observation weighted heaviest.
func ewmaVolatility(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	totalWeight := 0.0
	variance := 0.0
	weight := 1 - ewmaLambda
	for i := len(values) - 1; i >= 0; i-- {
		variance += weight * values[i] * values[i]
		totalWeight += weight
		weight *= ewmaLambda
	}
	if totalWeight == 0 {
		return 0
	}
	return math.Sqrt(variance / totalWeight)
}

// positionValue is the absolute currency value of one position.
func positionValue(pos models.Position) decimal.Decimal {
	return pos.Quantity.Mul(pos.LotSize).Mul(pos.CurrentPrice).Abs()
}
