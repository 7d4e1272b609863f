package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PositionDirection marks which side of the market a position is on.
type PositionDirection string

const (
	DirectionLong  PositionDirection = "long"
	DirectionShort PositionDirection = "short"
)

// PositionStatus tracks whether a position is still on the book.
type PositionStatus string

const (
	PositionOpen   PositionStatus = "open"
	PositionClosed PositionStatus = "closed"
)

// Position is a traded position consumed by the P&L engine. The engine
// revalues it but does not own its lifecycle.
type Position struct {
	ID            string            `json:"id" db:"id"`
	Product       string            `json:"product" db:"product"`
	Direction     PositionDirection `json:"direction" db:"direction"`
	Quantity      decimal.Decimal   `json:"quantity" db:"quantity"`
	LotSize       decimal.Decimal   `json:"lot_size" db:"lot_size"`
	EntryPrice    decimal.Decimal   `json:"entry_price" db:"entry_price"`
	CurrentPrice  decimal.Decimal   `json:"current_price" db:"current_price"`
	UnrealizedPnL *decimal.Decimal  `json:"unrealized_pnl,omitempty" db:"unrealized_pnl"`
	RealizedPnL   decimal.Decimal   `json:"realized_pnl" db:"realized_pnl"`
	Status        PositionStatus    `json:"status" db:"status"`
	OpenedAt      time.Time         `json:"opened_at" db:"opened_at"`
}

// PnLBreakdownEntry aggregates the P&L of every position in one product.
type PnLBreakdownEntry struct {
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"`
	RealizedPnL   decimal.Decimal `json:"realized_pnl"`
	NetPnL        decimal.Decimal `json:"net_pnl"`
	PositionCount int             `json:"position_count"`
}

// DailyPnLPoint is one day of the historical P&L series. Days without a
// position snapshot are simply absent from the series.
type DailyPnLPoint struct {
	Date          time.Time       `json:"date"`
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"`
	RealizedPnL   decimal.Decimal `json:"realized_pnl"`
}

// PnLSummary is the mark-to-market roll-up of the whole book over a window.
type PnLSummary struct {
	From             time.Time                    `json:"from"`
	To               time.Time                    `json:"to"`
	OpenPositions    int                          `json:"open_positions"`
	ClosedPositions  int                          `json:"closed_positions"`
	TotalUnrealized  decimal.Decimal              `json:"total_unrealized"`
	TotalRealized    decimal.Decimal              `json:"total_realized"`
	NetPnL           decimal.Decimal              `json:"net_pnl"`
	ProductBreakdown map[string]PnLBreakdownEntry `json:"product_breakdown"`
	DailyPnL         []DailyPnLPoint              `json:"daily_pnl"`
}
