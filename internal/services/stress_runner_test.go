package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commoditydesk/riskengine/internal/models"
)

func TestStressRun_SymmetricShocksForLongBook(t *testing.T) {
	store := &fakePositionStore{
		book: []models.Position{
			longPosition("p1", "BRENT", 100, 80, 82),
			longPosition("p2", "WTI", 50, 70, 71),
		},
	}
	service := NewStressTestService(store, testLogger())

	results, err := service.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)

	down10 := results[0]
	up10 := results[1]
	worst := results[2]

	assert.Equal(t, "-10% Shock", down10.Scenario)
	assert.True(t, down10.PnLImpact.IsNegative())
	// Symmetric shocks on an all-long book produce mirrored impacts.
	assert.True(t, up10.PnLImpact.Equal(down10.PnLImpact.Neg()), "up %s, down %s", up10.PnLImpact, down10.PnLImpact)
	assert.True(t, worst.PnLImpact.LessThan(down10.PnLImpact))
}

func TestStressRun_ShortPositionGainsOnDecline(t *testing.T) {
	short := longPosition("p1", "BRENT", 100, 80, 82)
	short.Direction = models.DirectionShort
	service := NewStressTestService(&fakePositionStore{book: []models.Position{short}}, testLogger())

	results, err := service.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, results[0].PnLImpact.IsPositive(), "-10%% impact was %s", results[0].PnLImpact)
	assert.True(t, results[1].PnLImpact.IsNegative())
}

func TestStressRun_ClosedPositionsExcluded(t *testing.T) {
	closed := longPosition("p1", "BRENT", 100, 80, 82)
	closed.Status = models.PositionClosed
	service := NewStressTestService(&fakePositionStore{book: []models.Position{closed}}, testLogger())

	results, err := service.Run(context.Background())
	require.NoError(t, err)

	for _, r := range results {
		assert.True(t, r.PnLImpact.IsZero(), "%s impact was %s", r.Scenario, r.PnLImpact)
	}
}

func TestStressRun_StoreFailure(t *testing.T) {
	service := NewStressTestService(&fakePositionStore{err: errors.New("db down")}, testLogger())

	_, err := service.Run(context.Background())

	assert.Error(t, err)
}

func TestShockImpact_LotSize(t *testing.T) {
	pos := longPosition("p1", "BRENT", 10, 80, 80)
	pos.LotSize = decimal.NewFromInt(1000)

	impact := shockImpact(pos, -0.10)

	// -10% of 80 over 10 lots of 1000 units
	assert.True(t, impact.Equal(decimal.NewFromInt(-80000)), "impact was %s", impact)
}
