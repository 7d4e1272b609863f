package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commoditydesk/riskengine/internal/services"
)

func TestFetchPrices(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPriceRepository(mockPool)
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 10)

	mockPool.ExpectQuery(`SELECT symbol, observed_at, price, volume FROM market_prices`).
		WithArgs("BRENT", from, to).
		WillReturnRows(pgxmock.NewRows([]string{"symbol", "observed_at", "price", "volume"}).
			AddRow("BRENT", from, "80.5", "1000").
			AddRow("BRENT", from.AddDate(0, 0, 1), "81.2", "1100"))

	points, err := repo.FetchPrices(context.Background(), "BRENT", from, to)
	require.NoError(t, err)

	require.Len(t, points, 2)
	assert.Equal(t, "BRENT", points[0].Symbol)
	assert.Equal(t, "80.5", points[0].Price.String())
	assert.True(t, points[1].Timestamp.After(points[0].Timestamp))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestFetchPrices_EmptyWindowRejected(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPriceRepository(mockPool)
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 10)

	mockPool.ExpectQuery(`SELECT symbol, observed_at, price, volume FROM market_prices`).
		WithArgs("BRENT", from, to).
		WillReturnRows(pgxmock.NewRows([]string{"symbol", "observed_at", "price", "volume"}))

	_, err = repo.FetchPrices(context.Background(), "BRENT", from, to)

	var invalid *services.InvalidInputError
	assert.ErrorAs(t, err, &invalid)
}

func TestFetchPrices_UnsortedSeriesRejected(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPriceRepository(mockPool)
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 10)

	// Duplicate timestamps violate the strictly-ascending contract.
	mockPool.ExpectQuery(`SELECT symbol, observed_at, price, volume FROM market_prices`).
		WithArgs("BRENT", from, to).
		WillReturnRows(pgxmock.NewRows([]string{"symbol", "observed_at", "price", "volume"}).
			AddRow("BRENT", from, "80.5", "1000").
			AddRow("BRENT", from, "81.2", "1100"))

	_, err = repo.FetchPrices(context.Background(), "BRENT", from, to)

	var invalid *services.InvalidInputError
	assert.ErrorAs(t, err, &invalid)
}

func TestFetchPrices_QueryError(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPriceRepository(mockPool)
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mockPool.ExpectQuery(`SELECT symbol, observed_at, price, volume FROM market_prices`).
		WithArgs("BRENT", from, from).
		WillReturnError(errors.New("connection refused"))

	_, err = repo.FetchPrices(context.Background(), "BRENT", from, from)

	assert.Error(t, err)
}

func TestLatestSnapshot(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPriceRepository(mockPool)
	latest := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)

	mockPool.ExpectQuery(`SELECT symbol, observed_at, price FROM market_prices`).
		WithArgs("BRENT").
		WillReturnRows(pgxmock.NewRows([]string{"symbol", "observed_at", "price"}).
			AddRow("BRENT", latest, "82.4").
			AddRow("BRENT", latest.Add(-24*time.Hour), "80"))

	snap, err := repo.LatestSnapshot(context.Background(), "BRENT")
	require.NoError(t, err)

	assert.Equal(t, "BRENT", snap.Symbol)
	assert.Equal(t, "82.4", snap.Price.String())
	assert.Equal(t, "80", snap.PreviousClose.String())
	assert.Equal(t, latest, snap.ObservedAt)
}

func TestLatestSnapshot_NoData(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPriceRepository(mockPool)

	mockPool.ExpectQuery(`SELECT symbol, observed_at, price FROM market_prices`).
		WithArgs("BRENT").
		WillReturnRows(pgxmock.NewRows([]string{"symbol", "observed_at", "price"}))

	_, err = repo.LatestSnapshot(context.Background(), "BRENT")

	var invalid *services.InvalidInputError
	assert.ErrorAs(t, err, &invalid)
}
