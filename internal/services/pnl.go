package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/commoditydesk/riskengine/internal/models"
)

// PnLService revalues open positions against current market prices and rolls
// the book up by product.
type PnLService struct {
	positions PositionStore
	logger    *logrus.Logger
}

// NewPnLService creates a mark-to-market P&L engine.
func NewPnLService(positions PositionStore, logger *logrus.Logger) *PnLService {
	return &PnLService{positions: positions, logger: logger}
}

// MarkToMarket computes the unrealized P&L of a single position at its
// current market price.
func MarkToMarket(pos models.Position) decimal.Decimal {
	lotSize := pos.LotSize
	if lotSize.IsZero() {
		lotSize = decimal.NewFromInt(1)
	}
	diff := pos.CurrentPrice.Sub(pos.EntryPrice)
	if pos.Direction == models.DirectionShort {
		diff = pos.EntryPrice.Sub(pos.CurrentPrice)
	}
	return diff.Mul(pos.Quantity).Mul(lotSize)
}

// Summarize revalues the current book and aggregates P&L by product over the
// window. Days without a historical snapshot are reported as gaps in the
// daily series, never as fabricated zeros.
func (s *PnLService) Summarize(ctx context.Context, from, to time.Time) (*models.PnLSummary, error) {
	if to.Before(from) {
		return nil, &InvalidInputError{Reason: fmt.Sprintf("window end %s precedes start %s", to.Format(time.DateOnly), from.Format(time.DateOnly))}
	}

	book, err := s.positions.FetchOpenPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch positions: %w", err)
	}

	summary := &models.PnLSummary{
		From:             from,
		To:               to,
		TotalUnrealized:  decimal.Zero,
		TotalRealized:    decimal.Zero,
		NetPnL:           decimal.Zero,
		ProductBreakdown: make(map[string]models.PnLBreakdownEntry),
	}

	for _, pos := range book {
		unrealized := decimal.Zero
		switch pos.Status {
		case models.PositionOpen:
			unrealized = MarkToMarket(pos)
			summary.OpenPositions++
		case models.PositionClosed:
			summary.ClosedPositions++
		}

		entry := summary.ProductBreakdown[pos.Product]
		entry.UnrealizedPnL = entry.UnrealizedPnL.Add(unrealized)
		entry.RealizedPnL = entry.RealizedPnL.Add(pos.RealizedPnL)
		entry.NetPnL = entry.UnrealizedPnL.Add(entry.RealizedPnL)
		entry.PositionCount++
		summary.ProductBreakdown[pos.Product] = entry

		summary.TotalUnrealized = summary.TotalUnrealized.Add(unrealized)
		summary.TotalRealized = summary.TotalRealized.Add(pos.RealizedPnL)
	}
	summary.NetPnL = summary.TotalUnrealized.Add(summary.TotalRealized)

	daily, err := s.dailySeries(ctx, from, to)
	if err != nil {
		return nil, err
	}
	summary.DailyPnL = daily

	s.logger.WithFields(logrus.Fields{
		"open":    summary.OpenPositions,
		"closed":  summary.ClosedPositions,
		"net_pnl": summary.NetPnL,
	}).Info("P&L summary complete")

	return summary, nil
}

// dailySeries rebuilds the book's P&L from historical snapshots, one day at
// a time. A day with no snapshot contributes no entry.
func (s *PnLService) dailySeries(ctx context.Context, from, to time.Time) ([]models.DailyPnLPoint, error) {
	var series []models.DailyPnLPoint
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		snapshot, err := s.positions.FetchPositionHistory(ctx, day)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch position history for %s: %w", day.Format(time.DateOnly), err)
		}
		if len(snapshot) == 0 {
			continue
		}
		point := models.DailyPnLPoint{Date: day, UnrealizedPnL: decimal.Zero, RealizedPnL: decimal.Zero}
		for _, pos := range snapshot {
			if pos.Status == models.PositionOpen {
				point.UnrealizedPnL = point.UnrealizedPnL.Add(MarkToMarket(pos))
			}
			point.RealizedPnL = point.RealizedPnL.Add(pos.RealizedPnL)
		}
		series = append(series, point)
	}
	return series, nil
}
