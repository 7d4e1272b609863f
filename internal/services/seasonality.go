package services

import (
	"context"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/commoditydesk/riskengine/internal/models"
)

// SeasonalityService groups daily returns by calendar month and weekday to
// surface recurring patterns.
type SeasonalityService struct {
	analysis *MarketAnalysisService
	logger   *logrus.Logger
}

// NewSeasonalityService creates a seasonality analyzer.
func NewSeasonalityService(analysis *MarketAnalysisService, logger *logrus.Logger) *SeasonalityService {
	return &SeasonalityService{analysis: analysis, logger: logger}
}

// AnalyzeSeasonality buckets a symbol's daily returns by month and weekday.
// Empty buckets are emitted with zero values so the full calendar grid is
// always present.
func (s *SeasonalityService) AnalyzeSeasonality(ctx context.Context, symbol string, from, to time.Time) (*models.SeasonalityAnalysisResult, error) {
	returns, err := s.analysis.Returns(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}

	var monthly [12][]float64
	var weekday [7][]float64
	for _, r := range returns {
		monthly[int(r.Date.Month())-1] = append(monthly[int(r.Date.Month())-1], r.Value)
		weekday[int(r.Date.Weekday())] = append(weekday[int(r.Date.Weekday())], r.Value)
	}

	result := &models.SeasonalityAnalysisResult{Symbol: symbol, From: from, To: to}
	for i, bucket := range monthly {
		result.Monthly[i] = bucketPattern(bucket)
	}
	for i, bucket := range weekday {
		result.Weekday[i] = bucketPattern(bucket)
	}
	result.SeasonalityScore = seasonalityScore(result.Monthly)

	s.logger.WithFields(logrus.Fields{
		"symbol":       symbol,
		"observations": len(returns),
		"score":        result.SeasonalityScore,
	}).Info("Seasonality analysis complete")

	return result, nil
}

func bucketPattern(values []float64) models.SeasonalPattern {
	if len(values) == 0 {
		return models.SeasonalPattern{}
	}
	return models.SeasonalPattern{
		AvgReturn: mean(values),
		StdDev:    sampleStdDev(values),
		Count:     len(values),
	}
}

// seasonalityScore is the coefficient of variation of the populated monthly
// means: dispersion across the calendar normalized by the average level. It
// is 0 when all means are equal or every bucket is empty.
func seasonalityScore(monthly [12]models.SeasonalPattern) float64 {
	var means []float64
	for _, p := range monthly {
		if p.Count > 0 {
			means = append(means, p.AvgReturn)
		}
	}
	if len(means) < 2 {
		return 0
	}
	m := mean(means)
	sd := sampleStdDev(means)
	if sd == 0 {
		return 0
	}
	if m == 0 {
		// No average level to normalize by; report raw dispersion.
		return sd
	}
	return math.Abs(sd / m)
}
