package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/commoditydesk/riskengine/internal/cache"
	"github.com/commoditydesk/riskengine/internal/models"
)

// MarketAnalysisService converts price history into period returns and
// summary statistics. All computations are pure over the fetched snapshot;
// concurrent analyses for different symbols need no coordination.
type MarketAnalysisService struct {
	prices         PriceStore
	cache          *cache.AnalysisCache
	logger         *logrus.Logger
	periodsPerYear int
}

// NewMarketAnalysisService creates a new statistics kernel. The cache may be
// nil, in which case every call recomputes.
func NewMarketAnalysisService(prices PriceStore, analysisCache *cache.AnalysisCache, logger *logrus.Logger) *MarketAnalysisService {
	return &MarketAnalysisService{
		prices:         prices,
		cache:          analysisCache,
		logger:         logger,
		periodsPerYear: tradingPeriodsPerYear,
	}
}

// AnalyzeHistory computes the statistical summary of a symbol over a closed
// window. Only points strictly inside [from, to] contribute; there is no
// lookahead past the window.
func (s *MarketAnalysisService) AnalyzeHistory(ctx context.Context, symbol string, from, to time.Time) (*models.HistoricalAnalysisResult, error) {
	if to.Before(from) {
		return nil, &InvalidInputError{Reason: fmt.Sprintf("window end %s precedes start %s", to.Format(time.DateOnly), from.Format(time.DateOnly))}
	}

	key := cache.Key("history", symbol, from, to)
	var cached models.HistoricalAnalysisResult
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	points, err := s.prices.FetchPrices(ctx, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices for %s: %w", symbol, err)
	}
	if len(points) < 2 {
		return nil, &InsufficientDataError{Symbol: symbol, Needed: 2, Got: len(points)}
	}

	s.logger.WithFields(logrus.Fields{
		"symbol": symbol,
		"points": len(points),
		"from":   from.Format(time.DateOnly),
		"to":     to.Format(time.DateOnly),
	}).Info("Analyzing price history")

	returns := simpleReturns(points)
	result := &models.HistoricalAnalysisResult{
		Symbol:      symbol,
		From:        from,
		To:          to,
		TotalReturn: points[len(points)-1].Price.InexactFloat64()/points[0].Price.InexactFloat64() - 1,
		MaxDrawdown: maxDrawdown(returns),
	}
	result.AnnualizedReturn = s.annualize(result.TotalReturn, len(returns))
	s.fillPriceStats(result, points)

	for dr := range CumulativeReturns(returns) {
		result.DailyReturns = append(result.DailyReturns, dr)
	}

	s.cache.Set(ctx, key, result)
	return result, nil
}

// Returns exposes the kernel's return computation to the downstream
// analyzers so they all share the same snapshot semantics.
func (s *MarketAnalysisService) Returns(ctx context.Context, symbol string, from, to time.Time) ([]models.Return, error) {
	if to.Before(from) {
		return nil, &InvalidInputError{Reason: fmt.Sprintf("window end %s precedes start %s", to.Format(time.DateOnly), from.Format(time.DateOnly))}
	}
	points, err := s.prices.FetchPrices(ctx, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices for %s: %w", symbol, err)
	}
	if len(points) < 2 {
		return nil, &InsufficientDataError{Symbol: symbol, Needed: 2, Got: len(points)}
	}
	return simpleReturns(points), nil
}

func (s *MarketAnalysisService) fillPriceStats(result *models.HistoricalAnalysisResult, points []models.PricePoint) {
	prices := make([]decimal.Decimal, len(points))
	floats := make([]float64, len(points))
	sum := decimal.Zero
	for i, p := range points {
		prices[i] = p.Price
		floats[i] = p.Price.InexactFloat64()
		sum = sum.Add(p.Price)
	}

	sort.Slice(prices, func(i, j int) bool { return prices[i].LessThan(prices[j]) })

	result.MeanPrice = sum.Div(decimal.NewFromInt(int64(len(points))))
	result.MinPrice = prices[0]
	result.MaxPrice = prices[len(prices)-1]
	result.StdDev = sampleStdDev(floats)

	mid := len(prices) / 2
	if len(prices)%2 == 0 {
		result.MedianPrice = prices[mid-1].Add(prices[mid]).Div(decimal.NewFromInt(2))
	} else {
		result.MedianPrice = prices[mid]
	}
}

// annualize compounds a total return over periodCount trading periods up to
// a full year of periods.
func (s *MarketAnalysisService) annualize(totalReturn float64, periodCount int) float64 {
	if periodCount == 0 {
		return 0
	}
	growth := 1 + totalReturn
	if growth <= 0 {
		return -1
	}
	return math.Pow(growth, float64(s.periodsPerYear)/float64(periodCount)) - 1
}
