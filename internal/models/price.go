package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint represents a single observation in a symbol's price series.
// Series are ordered ascending by timestamp with no duplicates; the
// repositories guard that invariant before the analytics ever see the data.
type PricePoint struct {
	Symbol    string          `json:"symbol" db:"symbol"`
	Timestamp time.Time       `json:"timestamp" db:"timestamp"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Volume    decimal.Decimal `json:"volume" db:"volume"`
}

// Return is a simple period return derived from two consecutive prices.
// Returns are computed on demand and never persisted.
type Return struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// PriceSnapshot carries the latest known state of a symbol for alert scanning.
type PriceSnapshot struct {
	Symbol        string          `json:"symbol"`
	Price         decimal.Decimal `json:"price"`
	PreviousClose decimal.Decimal `json:"previous_close"`
	Volatility    float64         `json:"volatility"`
	ObservedAt    time.Time       `json:"observed_at"`
}
