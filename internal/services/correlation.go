package services

import (
	"context"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/commoditydesk/riskengine/internal/models"
)

// CorrelationService computes pairwise correlation, regression beta and R²
// between two return series. The second symbol is the reference leg.
type CorrelationService struct {
	analysis *MarketAnalysisService
	logger   *logrus.Logger
}

// NewCorrelationService creates a correlation and beta analyzer.
func NewCorrelationService(analysis *MarketAnalysisService, logger *logrus.Logger) *CorrelationService {
	return &CorrelationService{analysis: analysis, logger: logger}
}

// AnalyzeCorrelation aligns the two return series by date (inner join) and
// runs the Pearson regression statistics over the overlap.
func (s *CorrelationService) AnalyzeCorrelation(ctx context.Context, symbol1, symbol2 string, from, to time.Time) (*models.CorrelationAnalysisResult, error) {
	returns1, err := s.analysis.Returns(ctx, symbol1, from, to)
	if err != nil {
		return nil, err
	}
	returns2, err := s.analysis.Returns(ctx, symbol2, from, to)
	if err != nil {
		return nil, err
	}

	aligned1, aligned2 := alignByDate(returns1, returns2)
	if len(aligned1) < 2 {
		return nil, &InsufficientDataError{Symbol: symbol1 + "/" + symbol2, Needed: 2, Got: len(aligned1)}
	}

	result, err := correlate(aligned1, aligned2, symbol1, symbol2)
	if err != nil {
		return nil, err
	}
	result.Symbol1 = symbol1
	result.Symbol2 = symbol2
	result.WindowDays = len(aligned1)

	s.logger.WithFields(logrus.Fields{
		"symbol1":     symbol1,
		"symbol2":     symbol2,
		"correlation": result.Correlation,
		"beta":        result.Beta,
		"overlap":     result.WindowDays,
	}).Info("Correlation analysis complete")

	return result, nil
}

// alignByDate inner-joins two return series on calendar date, dropping dates
// present in only one of them. Order follows the first series.
func alignByDate(a, b []models.Return) ([]float64, []float64) {
	byDate := make(map[string]float64, len(b))
	for _, r := range b {
		byDate[r.Date.Format(time.DateOnly)] = r.Value
	}
	var alignedA, alignedB []float64
	for _, r := range a {
		if v, ok := byDate[r.Date.Format(time.DateOnly)]; ok {
			alignedA = append(alignedA, r.Value)
			alignedB = append(alignedB, v)
		}
	}
	return alignedA, alignedB
}

func correlate(a, b []float64, symbol1, symbol2 string) (*models.CorrelationAnalysisResult, error) {
	meanA := mean(a)
	meanB := mean(b)

	cov := 0.0
	varA := 0.0
	varB := 0.0
	for i := range a {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}

	if varA == 0 {
		return nil, &DegenerateSeriesError{Symbol: symbol1}
	}
	if varB == 0 {
		return nil, &DegenerateSeriesError{Symbol: symbol2}
	}

	corr := cov / math.Sqrt(varA*varB)
	return &models.CorrelationAnalysisResult{
		Correlation: corr,
		Beta:        cov / varB,
		RSquared:    corr * corr,
	}, nil
}
