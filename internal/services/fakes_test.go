package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/commoditydesk/riskengine/internal/models"
)

func mustDecimal(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	require.NoError(t, err)
	return d
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

// fakePriceStore serves canned series keyed by symbol.
type fakePriceStore struct {
	series    map[string][]models.PricePoint
	snapshots map[string]*models.PriceSnapshot
	err       error
}

func (f *fakePriceStore) FetchPrices(_ context.Context, symbol string, from, to time.Time) ([]models.PricePoint, error) {
	if f.err != nil {
		return nil, f.err
	}
	points, ok := f.series[symbol]
	if !ok {
		return nil, &InvalidInputError{Reason: fmt.Sprintf("no price data for %s in window", symbol)}
	}
	var inWindow []models.PricePoint
	for _, p := range points {
		if p.Timestamp.Before(from) || p.Timestamp.After(to) {
			continue
		}
		inWindow = append(inWindow, p)
	}
	return inWindow, nil
}

func (f *fakePriceStore) LatestSnapshot(_ context.Context, symbol string) (*models.PriceSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	snap, ok := f.snapshots[symbol]
	if !ok {
		return nil, &InvalidInputError{Reason: fmt.Sprintf("no price data for %s", symbol)}
	}
	return snap, nil
}

// fakePositionStore serves a fixed book and per-day snapshots.
type fakePositionStore struct {
	book    []models.Position
	history map[string][]models.Position
	err     error
}

func (f *fakePositionStore) FetchOpenPositions(context.Context) ([]models.Position, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.book, nil
}

func (f *fakePositionStore) FetchPositionHistory(_ context.Context, date time.Time) ([]models.Position, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.history[date.Format(time.DateOnly)], nil
}

// fakeReportStore records saves in memory.
type fakeReportStore struct {
	mu      sync.Mutex
	saved   []models.RiskReport
	saveErr error
}

func (f *fakeReportStore) SaveReport(_ context.Context, report *models.RiskReport) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, *report)
	return report.ID, nil
}

func (f *fakeReportStore) LoadReport(_ context.Context, id string) (*models.RiskReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.saved) - 1; i >= 0; i-- {
		if f.saved[i].ID == id {
			report := f.saved[i]
			return &report, nil
		}
	}
	return nil, errors.New("report not found")
}

func (f *fakeReportStore) DeleteReport(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.saved {
		if r.ID == id {
			f.saved = append(f.saved[:i], f.saved[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReportStore) lastSaved() *models.RiskReport {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.saved) == 0 {
		return nil
	}
	report := f.saved[len(f.saved)-1]
	return &report
}

// fakeSender fails delivery for recipients listed in failFor.
type fakeSender struct {
	mu      sync.Mutex
	sent    []string
	failFor map[string]bool
	delay   time.Duration
}

func (f *fakeSender) Send(ctx context.Context, recipient string, _ []byte) error {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if f.failFor[recipient] {
		return errors.New("recipient unreachable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, recipient)
	return nil
}

// dailyPrices builds an ascending daily series starting at start.
func dailyPrices(symbol string, start time.Time, prices ...float64) []models.PricePoint {
	points := make([]models.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = models.PricePoint{
			Symbol:    symbol,
			Timestamp: start.AddDate(0, 0, i),
			Price:     decimal.NewFromFloat(p),
			Volume:    decimal.NewFromInt(1000),
		}
	}
	return points
}

// trendingPrices builds n daily points compounding at ratePct per day.
func trendingPrices(symbol string, start time.Time, n int, startPrice, ratePct float64) []models.PricePoint {
	prices := make([]float64, n)
	price := startPrice
	for i := range prices {
		prices[i] = price
		price *= 1 + ratePct
	}
	return dailyPrices(symbol, start, prices...)
}

// alternatingPrices builds n daily points oscillating around base.
func alternatingPrices(symbol string, start time.Time, n int, base float64) []models.PricePoint {
	prices := make([]float64, n)
	for i := range prices {
		if i%2 == 0 {
			prices[i] = base * 1.02
		} else {
			prices[i] = base * 0.97
		}
	}
	return dailyPrices(symbol, start, prices...)
}

func longPosition(id, product string, qty, entry, current float64) models.Position {
	return models.Position{
		ID:           id,
		Product:      product,
		Direction:    models.DirectionLong,
		Quantity:     decimal.NewFromFloat(qty),
		LotSize:      decimal.NewFromInt(1),
		EntryPrice:   decimal.NewFromFloat(entry),
		CurrentPrice: decimal.NewFromFloat(current),
		Status:       models.PositionOpen,
		OpenedAt:     time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
	}
}
