package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/commoditydesk/riskengine/internal/models"
)

const (
	snapshotSMAPeriod = 20
	snapshotEMAPeriod = 12
	snapshotRSIPeriod = 14
)

// MarketSnapshotService produces the market-data section of a risk report: a
// condensed technical reading per symbol at the end of the window.
type MarketSnapshotService struct {
	prices PriceStore
	logger *logrus.Logger
}

// NewMarketSnapshotService creates a market snapshot builder.
func NewMarketSnapshotService(prices PriceStore, logger *logrus.Logger) *MarketSnapshotService {
	return &MarketSnapshotService{prices: prices, logger: logger}
}

// Snapshot computes indicator readings for each symbol over the window.
// Symbols with too little history are skipped rather than failing the batch.
func (s *MarketSnapshotService) Snapshot(ctx context.Context, symbols []string, from, to time.Time) ([]models.MarketSnapshot, error) {
	var snapshots []models.MarketSnapshot
	for _, symbol := range symbols {
		snap, err := s.snapshotSymbol(ctx, symbol, from, to)
		if err != nil {
			var insufficient *InsufficientDataError
			if errors.As(err, &insufficient) {
				s.logger.WithFields(logrus.Fields{"symbol": symbol}).Debugf("skipping market snapshot: %v", err)
				continue
			}
			return nil, err
		}
		snapshots = append(snapshots, *snap)
	}
	return snapshots, nil
}

func (s *MarketSnapshotService) snapshotSymbol(ctx context.Context, symbol string, from, to time.Time) (*models.MarketSnapshot, error) {
	points, err := s.prices.FetchPrices(ctx, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices for %s: %w", symbol, err)
	}
	if len(points) < snapshotSMAPeriod {
		return nil, &InsufficientDataError{Symbol: symbol, Needed: snapshotSMAPeriod, Got: len(points)}
	}

	closes := make([]float64, len(points))
	for i, p := range points {
		closes[i] = p.Price.InexactFloat64()
	}

	smaValues := helper.ChanToSlice(trend.NewSmaWithPeriod[float64](snapshotSMAPeriod).Compute(helper.SliceToChan(closes)))
	emaValues := helper.ChanToSlice(trend.NewEmaWithPeriod[float64](snapshotEMAPeriod).Compute(helper.SliceToChan(closes)))
	rsiValues := helper.ChanToSlice(momentum.NewRsiWithPeriod[float64](snapshotRSIPeriod).Compute(helper.SliceToChan(closes)))

	last := points[len(points)-1]
	return &models.MarketSnapshot{
		Symbol:    symbol,
		LastPrice: last.Price,
		AsOf:      last.Timestamp,
		Indicators: []models.IndicatorSnapshot{
			indicatorSnapshot(fmt.Sprintf("SMA_%d", snapshotSMAPeriod), smaValues),
			indicatorSnapshot(fmt.Sprintf("EMA_%d", snapshotEMAPeriod), emaValues),
			indicatorSnapshot(fmt.Sprintf("RSI_%d", snapshotRSIPeriod), rsiValues),
		},
	}, nil
}

// indicatorSnapshot keeps the latest indicator value and a trend tag from the
// direction of the last step.
func indicatorSnapshot(name string, values []float64) models.IndicatorSnapshot {
	snap := models.IndicatorSnapshot{Name: name, Trend: "flat"}
	if len(values) == 0 {
		snap.Value = decimal.Zero
		return snap
	}
	snap.Value = decimal.NewFromFloat(values[len(values)-1])
	if len(values) >= 2 {
		switch {
		case values[len(values)-1] > values[len(values)-2]:
			snap.Trend = "up"
		case values[len(values)-1] < values[len(values)-2]:
			snap.Trend = "down"
		}
	}
	return snap
}
