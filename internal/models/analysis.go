package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyReturn pairs a day's simple return with the cumulative return of the
// window up to and including that day.
type DailyReturn struct {
	Date             time.Time `json:"date"`
	Return           float64   `json:"return"`
	CumulativeReturn float64   `json:"cumulative_return"`
}

// HistoricalAnalysisResult summarizes a symbol's price history over a window.
type HistoricalAnalysisResult struct {
	Symbol           string          `json:"symbol"`
	From             time.Time       `json:"from"`
	To               time.Time       `json:"to"`
	MeanPrice        decimal.Decimal `json:"mean_price"`
	MedianPrice      decimal.Decimal `json:"median_price"`
	MinPrice         decimal.Decimal `json:"min_price"`
	MaxPrice         decimal.Decimal `json:"max_price"`
	StdDev           float64         `json:"std_dev"`
	TotalReturn      float64         `json:"total_return"`
	AnnualizedReturn float64         `json:"annualized_return"`
	MaxDrawdown      float64         `json:"max_drawdown"`
	DailyReturns     []DailyReturn   `json:"daily_returns"`
}

// VolatilityPoint is one entry of a rolling historical-volatility series.
type VolatilityPoint struct {
	Date       time.Time `json:"date"`
	Volatility float64   `json:"volatility"`
}

// VolatilityAnalysisResult carries realized and annualized volatility together
// with historical VaR at the standard confidence levels. VaR values are
// return-based; scaling to a position's notional is the caller's concern.
type VolatilityAnalysisResult struct {
	Symbol               string            `json:"symbol"`
	From                 time.Time         `json:"from"`
	To                   time.Time         `json:"to"`
	RealizedVolatility   float64           `json:"realized_volatility"`
	AnnualizedVolatility float64           `json:"annualized_volatility"`
	EWMAVolatility       float64           `json:"ewma_volatility"`
	VaR95                float64           `json:"var_95"`
	VaR99                float64           `json:"var_99"`
	RollingVolatility    []VolatilityPoint `json:"rolling_volatility"`
}

// CorrelationAnalysisResult holds the pairwise regression statistics between
// two return series. Symbol2 is the reference/benchmark leg for beta.
type CorrelationAnalysisResult struct {
	Symbol1     string  `json:"symbol1"`
	Symbol2     string  `json:"symbol2"`
	Correlation float64 `json:"correlation"`
	Beta        float64 `json:"beta"`
	RSquared    float64 `json:"r_squared"`
	WindowDays  int     `json:"window_days"`
}

// SeasonalPattern is one calendar bucket of a seasonality decomposition.
// Buckets with zero observations are still emitted so consumers can render a
// complete calendar grid.
type SeasonalPattern struct {
	AvgReturn float64 `json:"avg_return"`
	StdDev    float64 `json:"std_dev"`
	Count     int     `json:"count"`
}

// SeasonalityAnalysisResult groups a symbol's daily returns by calendar month
// and weekday. Monthly is indexed January..December, Weekday Sunday..Saturday.
type SeasonalityAnalysisResult struct {
	Symbol           string              `json:"symbol"`
	From             time.Time           `json:"from"`
	To               time.Time           `json:"to"`
	Monthly          [12]SeasonalPattern `json:"monthly"`
	Weekday          [7]SeasonalPattern  `json:"weekday"`
	SeasonalityScore float64             `json:"seasonality_score"`
}

// StressTestResult is the P&L impact of one predefined shock scenario applied
// to the current book.
type StressTestResult struct {
	Scenario    string          `json:"scenario"`
	PnLImpact   decimal.Decimal `json:"pnl_impact"`
	Description string          `json:"description"`
}

// IndicatorSnapshot is a condensed technical reading for the market-data
// section of a risk report.
type IndicatorSnapshot struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
	Trend string          `json:"trend"` // "up", "down", "flat"
}

// MarketSnapshot is one symbol's entry in a report's market-data section.
type MarketSnapshot struct {
	Symbol     string              `json:"symbol"`
	LastPrice  decimal.Decimal     `json:"last_price"`
	AsOf       time.Time           `json:"as_of"`
	Indicators []IndicatorSnapshot `json:"indicators"`
}
