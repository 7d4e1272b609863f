package database

import (
	"context"
	"fmt"
	"time"

	"github.com/commoditydesk/riskengine/internal/models"
)

// PositionRepository implements services.PositionStore over postgres.
type PositionRepository struct {
	pool DatabasePool
}

// NewPositionRepository creates a position repository.
func NewPositionRepository(pool DatabasePool) *PositionRepository {
	return &PositionRepository{pool: pool}
}

const positionColumns = `id, product, direction, quantity, lot_size, entry_price, current_price, realized_pnl, status, opened_at`

// FetchOpenPositions returns the current book, open and recently closed
// positions included so the P&L engine can count and aggregate both.
func (r *PositionRepository) FetchOpenPositions(ctx context.Context) ([]models.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM positions ORDER BY opened_at ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()
	return scanPositions(rows)
}

// FetchPositionHistory returns the book snapshot recorded for a given day.
// An empty result means no snapshot exists for that day.
func (r *PositionRepository) FetchPositionHistory(ctx context.Context, date time.Time) ([]models.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM position_snapshots
		WHERE snapshot_date = $1 ORDER BY opened_at ASC`
	rows, err := r.pool.Query(ctx, query, date.Format(time.DateOnly))
	if err != nil {
		return nil, fmt.Errorf("failed to query position snapshots: %w", err)
	}
	defer rows.Close()
	return scanPositions(rows)
}

func scanPositions(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]models.Position, error) {
	var positions []models.Position
	for rows.Next() {
		var p models.Position
		if err := rows.Scan(&p.ID, &p.Product, &p.Direction, &p.Quantity, &p.LotSize,
			&p.EntryPrice, &p.CurrentPrice, &p.RealizedPnL, &p.Status, &p.OpenedAt); err != nil {
			return nil, fmt.Errorf("failed to scan position row: %w", err)
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating position rows: %w", err)
	}
	return positions, nil
}
