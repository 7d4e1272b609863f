package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commoditydesk/riskengine/internal/models"
)

func newSeasonalityService(series map[string][]models.PricePoint) *SeasonalityService {
	return NewSeasonalityService(newAnalysisService(series), testLogger())
}

func TestAnalyzeSeasonality_CountsPartitionReturns(t *testing.T) {
	start := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	service := newSeasonalityService(map[string][]models.PricePoint{
		"BRENT": alternatingPrices("BRENT", start, 60, 80),
	})

	result, err := service.AnalyzeSeasonality(context.Background(), "BRENT", start, start.AddDate(0, 0, 90))
	require.NoError(t, err)

	monthlyTotal := 0
	for _, p := range result.Monthly {
		monthlyTotal += p.Count
	}
	weekdayTotal := 0
	for _, p := range result.Weekday {
		weekdayTotal += p.Count
	}

	// Every return lands in exactly one month bucket and one weekday bucket.
	assert.Equal(t, 59, monthlyTotal)
	assert.Equal(t, 59, weekdayTotal)
}

func TestAnalyzeSeasonality_EmptyBucketsPresent(t *testing.T) {
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	service := newSeasonalityService(map[string][]models.PricePoint{
		"BRENT": dailyPrices("BRENT", start, 100, 101, 99, 102, 103),
	})

	result, err := service.AnalyzeSeasonality(context.Background(), "BRENT", start, start.AddDate(0, 0, 30))
	require.NoError(t, err)

	// All four returns fall in June; the other eleven months stay empty.
	assert.Equal(t, 4, result.Monthly[5].Count)
	assert.Equal(t, 0, result.Monthly[0].Count)
	assert.Equal(t, 0, result.Monthly[11].Count)
	assert.Equal(t, models.SeasonalPattern{}, result.Monthly[0])
}

func TestSeasonalityScore_UniformReturnsScoreZero(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	// Constant growth rate: every monthly mean return is identical.
	service := newSeasonalityService(map[string][]models.PricePoint{
		"BRENT": trendingPrices("BRENT", start, 90, 80, 0.01),
	})

	result, err := service.AnalyzeSeasonality(context.Background(), "BRENT", start, start.AddDate(0, 0, 120))
	require.NoError(t, err)

	assert.InDelta(t, 0.0, result.SeasonalityScore, 1e-9)
}

func TestSeasonalityScore_SinglePopulatedMonth(t *testing.T) {
	var monthly [12]models.SeasonalPattern
	monthly[3] = models.SeasonalPattern{AvgReturn: 0.02, StdDev: 0.01, Count: 10}

	assert.Equal(t, 0.0, seasonalityScore(monthly))
}

func TestBucketPattern(t *testing.T) {
	assert.Equal(t, models.SeasonalPattern{}, bucketPattern(nil))

	p := bucketPattern([]float64{0.01, 0.03})
	assert.InDelta(t, 0.02, p.AvgReturn, 1e-12)
	assert.Equal(t, 2, p.Count)
	assert.Greater(t, p.StdDev, 0.0)
}
