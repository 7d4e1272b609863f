package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/commoditydesk/riskengine/internal/models"
)

// stressScenario is one predefined price shock applied to the whole book.
type stressScenario struct {
	name        string
	shock       float64
	description string
}

var defaultScenarios = []stressScenario{
	{"-10% Shock", -0.10, "10% decline in all product prices"},
	{"+10% Shock", 0.10, "10% increase in all product prices"},
	{"Historical Worst", -0.15, "repeat of the historical worst daily price decline"},
}

// StressTestService applies fixed shock scenarios to the current book and
// reports the P&L impact of each.
type StressTestService struct {
	positions PositionStore
	logger    *logrus.Logger
}

// NewStressTestService creates a stress test runner.
func NewStressTestService(positions PositionStore, logger *logrus.Logger) *StressTestService {
	return &StressTestService{positions: positions, logger: logger}
}

// Run shocks every open position's current price by each scenario and sums
// the resulting P&L impacts.
func (s *StressTestService) Run(ctx context.Context) ([]models.StressTestResult, error) {
	book, err := s.positions.FetchOpenPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch positions: %w", err)
	}

	results := make([]models.StressTestResult, 0, len(defaultScenarios))
	for _, scenario := range defaultScenarios {
		impact := decimal.Zero
		for _, pos := range book {
			if pos.Status != models.PositionOpen {
				continue
			}
			impact = impact.Add(shockImpact(pos, scenario.shock))
		}
		results = append(results, models.StressTestResult{
			Scenario:    scenario.name,
			PnLImpact:   impact,
			Description: scenario.description,
		})
	}

	s.logger.WithFields(logrus.Fields{"scenarios": len(results), "positions": len(book)}).Info("Stress tests complete")
	return results, nil
}

// shockImpact is the P&L change of one position under a proportional price
// shock: long positions gain with the price, short positions against it.
func shockImpact(pos models.Position, shock float64) decimal.Decimal {
	lotSize := pos.LotSize
	if lotSize.IsZero() {
		lotSize = decimal.NewFromInt(1)
	}
	priceChange := pos.CurrentPrice.Mul(decimal.NewFromFloat(shock))
	impact := priceChange.Mul(pos.Quantity).Mul(lotSize)
	if pos.Direction == models.DirectionShort {
		impact = impact.Neg()
	}
	return impact
}
