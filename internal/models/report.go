package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportStatus is the lifecycle state of a risk report. A report transitions
// Requested -> Generating -> Generated -> Distributed, or fails out of
// Generating; both Distributed and Failed are terminal.
type ReportStatus string

const (
	ReportRequested   ReportStatus = "requested"
	ReportGenerating  ReportStatus = "generating"
	ReportGenerated   ReportStatus = "generated"
	ReportDistributed ReportStatus = "distributed"
	ReportFailed      ReportStatus = "failed"
)

// ReportFormat selects how the generated result graph is rendered.
type ReportFormat string

const (
	FormatJSON  ReportFormat = "json"
	FormatPDF   ReportFormat = "pdf"
	FormatExcel ReportFormat = "excel"
)

// ReportCadence is the schedule bucket of a periodic report.
type ReportCadence string

const (
	CadenceDaily   ReportCadence = "daily"
	CadenceWeekly  ReportCadence = "weekly"
	CadenceMonthly ReportCadence = "monthly"
)

// RiskReportParameters drives which sections a generation run computes.
type RiskReportParameters struct {
	From               time.Time    `json:"from"`
	To                 time.Time    `json:"to"`
	Products           []string     `json:"products,omitempty"`
	Partners           []string     `json:"partners,omitempty"`
	IncludePositions   bool         `json:"include_positions"`
	IncludeVaR         bool         `json:"include_var"`
	IncludeLimits      bool         `json:"include_limits"`
	IncludeStressTests bool         `json:"include_stress_tests"`
	IncludeMarketData  bool         `json:"include_market_data"`
	Format             ReportFormat `json:"format"`
	ConfidenceLevels   []float64    `json:"confidence_levels,omitempty"`
}

// LimitUtilization compares a product's gross exposure against its limit.
type LimitUtilization struct {
	Product     string          `json:"product"`
	Exposure    decimal.Decimal `json:"exposure"`
	Limit       decimal.Decimal `json:"limit"`
	Utilization float64         `json:"utilization"`
	Breached    bool            `json:"breached"`
}

// ReportContent is the format-agnostic result graph a serializer renders.
// Sections excluded by the parameters, or whose computation failed, are nil.
type ReportContent struct {
	Positions   *PnLSummary                `json:"positions,omitempty"`
	VaR         []VolatilityAnalysisResult `json:"var,omitempty"`
	Limits      []LimitUtilization         `json:"limits,omitempty"`
	StressTests []StressTestResult         `json:"stress_tests,omitempty"`
	MarketData  []MarketSnapshot           `json:"market_data,omitempty"`
}

// DistributionResult records one delivery attempt to one recipient.
type DistributionResult struct {
	Recipient   string    `json:"recipient"`
	Delivered   bool      `json:"delivered"`
	Error       string    `json:"error,omitempty"`
	AttemptedAt time.Time `json:"attempted_at"`
}

// RiskReport is a named report instance produced from a template+parameter
// set. Content is the serialized result graph in the requested format.
type RiskReport struct {
	ID                  string               `json:"id" db:"id"`
	Type                ReportCadence        `json:"type" db:"type"`
	Name                string               `json:"name" db:"name"`
	GeneratedAt         time.Time            `json:"generated_at" db:"generated_at"`
	RequestedBy         string               `json:"requested_by" db:"requested_by"`
	Parameters          RiskReportParameters `json:"parameters" db:"parameters"`
	Content             []byte               `json:"content,omitempty" db:"content"`
	Recipients          []string             `json:"recipients" db:"recipients"`
	AutoDistribute      bool                 `json:"auto_distribute" db:"auto_distribute"`
	Status              ReportStatus         `json:"status" db:"status"`
	SectionErrors       map[string]string    `json:"section_errors,omitempty"`
	DistributionResults []DistributionResult `json:"distribution_results,omitempty"`
}
