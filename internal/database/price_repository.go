package database

import (
	"context"
	"fmt"
	"time"

	"github.com/commoditydesk/riskengine/internal/models"
	"github.com/commoditydesk/riskengine/internal/services"
)

// PriceRepository implements services.PriceStore over postgres. It is the
// boundary guard: series leaving it are non-empty and strictly ascending, or
// the call fails with InvalidInputError.
type PriceRepository struct {
	pool DatabasePool
}

// NewPriceRepository creates a price repository.
func NewPriceRepository(pool DatabasePool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// FetchPrices returns the ordered price series of a symbol over the window.
func (r *PriceRepository) FetchPrices(ctx context.Context, symbol string, from, to time.Time) ([]models.PricePoint, error) {
	query := `SELECT symbol, observed_at, price, volume FROM market_prices
		WHERE symbol = $1 AND observed_at >= $2 AND observed_at <= $3
		ORDER BY observed_at ASC`
	rows, err := r.pool.Query(ctx, query, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query prices for %s: %w", symbol, err)
	}
	defer rows.Close()

	var points []models.PricePoint
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.Symbol, &p.Timestamp, &p.Price, &p.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan price row: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price rows: %w", err)
	}

	if err := validateSeries(symbol, points); err != nil {
		return nil, err
	}
	return points, nil
}

// LatestSnapshot returns the latest observation of a symbol together with
// its previous close.
func (r *PriceRepository) LatestSnapshot(ctx context.Context, symbol string) (*models.PriceSnapshot, error) {
	query := `SELECT symbol, observed_at, price FROM market_prices
		WHERE symbol = $1 ORDER BY observed_at DESC LIMIT 2`
	rows, err := r.pool.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest price for %s: %w", symbol, err)
	}
	defer rows.Close()

	var latest []models.PricePoint
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.Symbol, &p.Timestamp, &p.Price); err != nil {
			return nil, fmt.Errorf("failed to scan price row: %w", err)
		}
		latest = append(latest, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price rows: %w", err)
	}
	if len(latest) == 0 {
		return nil, &services.InvalidInputError{Reason: fmt.Sprintf("no price data for %s", symbol)}
	}

	snap := &models.PriceSnapshot{
		Symbol:     symbol,
		Price:      latest[0].Price,
		ObservedAt: latest[0].Timestamp,
	}
	if len(latest) > 1 {
		snap.PreviousClose = latest[1].Price
	}
	return snap, nil
}

// validateSeries rejects empty, unsorted or duplicated series before they
// reach the statistics routines.
func validateSeries(symbol string, points []models.PricePoint) error {
	if len(points) == 0 {
		return &services.InvalidInputError{Reason: fmt.Sprintf("no price data for %s in window", symbol)}
	}
	for i := 1; i < len(points); i++ {
		if !points[i].Timestamp.After(points[i-1].Timestamp) {
			return &services.InvalidInputError{Reason: fmt.Sprintf("price series for %s is not strictly ascending at %s", symbol, points[i].Timestamp)}
		}
	}
	return nil
}
