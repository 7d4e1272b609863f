package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AlertSeverity classifies how far a breach exceeds its threshold.
type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// AlertType tags the condition that produced an alert.
type AlertType string

const (
	AlertTypePriceMove AlertType = "price_move"
	AlertTypeVaRBreach AlertType = "var_breach"
	AlertTypeStaleData AlertType = "stale_data"
)

// MarketAlert is an observation emitted by the alert monitor. Alerts are
// created fresh on every scan; deduplication and persistence belong to the
// consumers, not the monitor.
type MarketAlert struct {
	ID           string           `json:"id"`
	Symbol       string           `json:"symbol"`
	Type         AlertType        `json:"type"`
	Message      string           `json:"message"`
	CurrentPrice decimal.Decimal  `json:"current_price"`
	Threshold    *decimal.Decimal `json:"threshold,omitempty"`
	Severity     AlertSeverity    `json:"severity"`
	Timestamp    time.Time        `json:"timestamp"`
}

// AlertThresholds is the per-symbol configuration the monitor scans against.
type AlertThresholds struct {
	PriceMovePct       float64       `json:"price_move_pct" mapstructure:"price_move_pct"`
	VaRBreachThreshold float64       `json:"var_breach_threshold" mapstructure:"var_breach_threshold"`
	StaleDataMaxAge    time.Duration `json:"stale_data_max_age" mapstructure:"stale_data_max_age"`
}
