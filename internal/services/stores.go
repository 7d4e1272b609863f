package services

import (
	"context"
	"time"

	"github.com/commoditydesk/riskengine/internal/models"
)

// PriceStore supplies ordered price observations for a symbol. Implementations
// must return points sorted ascending by timestamp; the postgres repository
// guards that and fails with InvalidInputError on malformed data.
type PriceStore interface {
	FetchPrices(ctx context.Context, symbol string, from, to time.Time) ([]models.PricePoint, error)
	LatestSnapshot(ctx context.Context, symbol string) (*models.PriceSnapshot, error)
}

// PositionStore supplies the position book to the P&L engine.
type PositionStore interface {
	FetchOpenPositions(ctx context.Context) ([]models.Position, error)
	FetchPositionHistory(ctx context.Context, date time.Time) ([]models.Position, error)
}

// ReportStore persists generated reports. The engine calls it but does not
// implement storage itself.
type ReportStore interface {
	SaveReport(ctx context.Context, report *models.RiskReport) (string, error)
	LoadReport(ctx context.Context, id string) (*models.RiskReport, error)
	DeleteReport(ctx context.Context, id string) (bool, error)
}

// Sender delivers rendered report content to a single recipient. One attempt
// per call; retry policy, if any, lives behind the implementation.
type Sender interface {
	Send(ctx context.Context, recipient string, content []byte) error
}

// ReportRenderer turns the format-agnostic content graph into bytes. The JSON
// renderer ships with this module; PDF and Excel renderers are external.
type ReportRenderer interface {
	Render(format models.ReportFormat, content *models.ReportContent) ([]byte, error)
}
