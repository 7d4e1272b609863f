package database

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commoditydesk/riskengine/internal/models"
)

func positionRows() *pgxmock.Rows {
	opened := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	return pgxmock.NewRows([]string{"id", "product", "direction", "quantity", "lot_size", "entry_price", "current_price", "realized_pnl", "status", "opened_at"}).
		AddRow("p1", "BRENT", models.DirectionLong, "100", "1000", "78.5", "80.2", "0", models.PositionOpen, opened).
		AddRow("p2", "WTI", models.DirectionShort, "50", "1000", "71", "70.4", "1200", models.PositionClosed, opened.AddDate(0, 0, 2))
}

func TestFetchOpenPositions(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPositionRepository(mockPool)

	mockPool.ExpectQuery(`SELECT (.+) FROM positions`).
		WillReturnRows(positionRows())

	positions, err := repo.FetchOpenPositions(context.Background())
	require.NoError(t, err)

	require.Len(t, positions, 2)
	assert.Equal(t, "p1", positions[0].ID)
	assert.Equal(t, models.DirectionLong, positions[0].Direction)
	assert.Equal(t, models.PositionOpen, positions[0].Status)
	assert.Equal(t, "78.5", positions[0].EntryPrice.String())
	assert.Equal(t, models.PositionClosed, positions[1].Status)
	assert.Equal(t, "1200", positions[1].RealizedPnL.String())
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestFetchPositionHistory(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPositionRepository(mockPool)
	day := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)

	mockPool.ExpectQuery(`SELECT (.+) FROM position_snapshots`).
		WithArgs("2026-02-03").
		WillReturnRows(positionRows())

	positions, err := repo.FetchPositionHistory(context.Background(), day)
	require.NoError(t, err)

	assert.Len(t, positions, 2)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestFetchPositionHistory_EmptyDay(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPositionRepository(mockPool)
	day := time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC)

	mockPool.ExpectQuery(`SELECT (.+) FROM position_snapshots`).
		WithArgs("2026-02-04").
		WillReturnRows(pgxmock.NewRows([]string{"id", "product", "direction", "quantity", "lot_size", "entry_price", "current_price", "realized_pnl", "status", "opened_at"}))

	positions, err := repo.FetchPositionHistory(context.Background(), day)
	require.NoError(t, err)

	assert.Empty(t, positions)
}
