package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commoditydesk/riskengine/internal/models"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func snapshotAt(symbol string, price, prevClose float64, observedAt time.Time) models.PriceSnapshot {
	return models.PriceSnapshot{
		Symbol:        symbol,
		Price:         decimal.NewFromFloat(price),
		PreviousClose: decimal.NewFromFloat(prevClose),
		ObservedAt:    observedAt,
	}
}

func TestScan_NoThresholdsNoAlerts(t *testing.T) {
	monitor := NewAlertMonitorService(testLogger())
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	monitor.now = fixedClock(now)

	alerts := monitor.Scan([]models.PriceSnapshot{snapshotAt("BRENT", 90, 80, now)}, nil)

	assert.Empty(t, alerts)
}

func TestScan_PriceMoveSeverityTiers(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	thresholds := map[string]models.AlertThresholds{
		"BRENT": {PriceMovePct: 5},
	}

	tests := []struct {
		name     string
		price    float64
		expected models.AlertSeverity
	}{
		{"at threshold", 84, models.SeverityInfo},       // 5% move
		{"warning band", 86.4, models.SeverityWarning},  // 8% move, 1.6x
		{"critical band", 88, models.SeverityCritical},  // 10% move, 2x
		{"downside move", 71.2, models.SeverityCritical}, // -11% move
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			monitor := NewAlertMonitorService(testLogger())
			monitor.now = fixedClock(now)

			alerts := monitor.Scan([]models.PriceSnapshot{snapshotAt("BRENT", tt.price, 80, now)}, thresholds)

			require.Len(t, alerts, 1)
			assert.Equal(t, models.AlertTypePriceMove, alerts[0].Type)
			assert.Equal(t, tt.expected, alerts[0].Severity)
			assert.NotEmpty(t, alerts[0].ID)
		})
	}
}

func TestScan_PriceMoveBelowThreshold(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	monitor := NewAlertMonitorService(testLogger())
	monitor.now = fixedClock(now)
	thresholds := map[string]models.AlertThresholds{"BRENT": {PriceMovePct: 5}}

	alerts := monitor.Scan([]models.PriceSnapshot{snapshotAt("BRENT", 81, 80, now)}, thresholds)

	assert.Empty(t, alerts)
}

func TestScan_VaRBreach(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	monitor := NewAlertMonitorService(testLogger())
	monitor.now = fixedClock(now)
	thresholds := map[string]models.AlertThresholds{"BRENT": {VaRBreachThreshold: 0.02}}

	snap := snapshotAt("BRENT", 80, 80, now)
	snap.Volatility = 0.05

	alerts := monitor.Scan([]models.PriceSnapshot{snap}, thresholds)

	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertTypeVaRBreach, alerts[0].Type)
	// 0.05 against 0.02 is a 2.5x breach.
	assert.Equal(t, models.SeverityCritical, alerts[0].Severity)
	require.NotNil(t, alerts[0].Threshold)
	assert.True(t, alerts[0].Threshold.Equal(decimal.NewFromFloat(0.02)))
}

func TestScan_StaleData(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	thresholds := map[string]models.AlertThresholds{"BRENT": {StaleDataMaxAge: time.Hour}}

	tests := []struct {
		name     string
		age      time.Duration
		expected models.AlertSeverity
		alerted  bool
	}{
		{"fresh", 30 * time.Minute, "", false},
		{"stale", 90 * time.Minute, models.SeverityWarning, true},
		{"very stale", 3 * time.Hour, models.SeverityCritical, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			monitor := NewAlertMonitorService(testLogger())
			monitor.now = fixedClock(now)

			alerts := monitor.Scan([]models.PriceSnapshot{snapshotAt("BRENT", 80, 80, now.Add(-tt.age))}, thresholds)

			if !tt.alerted {
				assert.Empty(t, alerts)
				return
			}
			require.Len(t, alerts, 1)
			assert.Equal(t, models.AlertTypeStaleData, alerts[0].Type)
			assert.Equal(t, tt.expected, alerts[0].Severity)
			assert.Nil(t, alerts[0].Threshold)
		})
	}
}

func TestScan_MultipleConditionsOnOneSymbol(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	monitor := NewAlertMonitorService(testLogger())
	monitor.now = fixedClock(now)
	thresholds := map[string]models.AlertThresholds{
		"BRENT": {PriceMovePct: 5, VaRBreachThreshold: 0.02, StaleDataMaxAge: time.Hour},
	}

	snap := snapshotAt("BRENT", 90, 80, now.Add(-2*time.Hour))
	snap.Volatility = 0.03

	alerts := monitor.Scan([]models.PriceSnapshot{snap}, thresholds)

	assert.Len(t, alerts, 3)
}
