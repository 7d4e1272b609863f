package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/commoditydesk/riskengine/internal/services"
)

// AnalysisHandler exposes the analytic services over HTTP.
type AnalysisHandler struct {
	analysis    *services.MarketAnalysisService
	volatility  *services.VolatilityService
	correlation *services.CorrelationService
	seasonality *services.SeasonalityService
	pnl         *services.PnLService
	logger      *logrus.Logger
}

// NewAnalysisHandler creates an analysis handler.
func NewAnalysisHandler(
	analysis *services.MarketAnalysisService,
	volatility *services.VolatilityService,
	correlation *services.CorrelationService,
	seasonality *services.SeasonalityService,
	pnl *services.PnLService,
	logger *logrus.Logger,
) *AnalysisHandler {
	return &AnalysisHandler{
		analysis:    analysis,
		volatility:  volatility,
		correlation: correlation,
		seasonality: seasonality,
		pnl:         pnl,
		logger:      logger,
	}
}

// GetHistory handles GET /api/v1/analysis/history/:symbol
func (h *AnalysisHandler) GetHistory(c *gin.Context) {
	from, to, ok := parseWindow(c)
	if !ok {
		return
	}
	result, err := h.analysis.AnalyzeHistory(c.Request.Context(), c.Param("symbol"), from, to)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetVolatility handles GET /api/v1/analysis/volatility/:symbol
func (h *AnalysisHandler) GetVolatility(c *gin.Context) {
	from, to, ok := parseWindow(c)
	if !ok {
		return
	}
	result, err := h.volatility.AnalyzeVolatility(c.Request.Context(), c.Param("symbol"), from, to)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetCorrelation handles GET /api/v1/analysis/correlation?symbol1=&symbol2=
func (h *AnalysisHandler) GetCorrelation(c *gin.Context) {
	symbol1 := c.Query("symbol1")
	symbol2 := c.Query("symbol2")
	if symbol1 == "" || symbol2 == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol1 and symbol2 are required"})
		return
	}
	from, to, ok := parseWindow(c)
	if !ok {
		return
	}
	result, err := h.correlation.AnalyzeCorrelation(c.Request.Context(), symbol1, symbol2, from, to)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetSeasonality handles GET /api/v1/analysis/seasonality/:symbol
func (h *AnalysisHandler) GetSeasonality(c *gin.Context) {
	from, to, ok := parseWindow(c)
	if !ok {
		return
	}
	result, err := h.seasonality.AnalyzeSeasonality(c.Request.Context(), c.Param("symbol"), from, to)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetPnLSummary handles GET /api/v1/pnl/summary
func (h *AnalysisHandler) GetPnLSummary(c *gin.Context) {
	from, to, ok := parseWindow(c)
	if !ok {
		return
	}
	summary, err := h.pnl.Summarize(c.Request.Context(), from, to)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *AnalysisHandler) fail(c *gin.Context, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		h.logger.Errorf("analysis request failed: %v", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// parseWindow reads from/to query parameters, defaulting to the trailing 90
// days. It writes the error response itself when parsing fails.
func parseWindow(c *gin.Context) (time.Time, time.Time, bool) {
	to := time.Now().Truncate(24 * time.Hour)
	from := to.AddDate(0, 0, -90)

	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse(time.DateOnly, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date, expected YYYY-MM-DD"})
			return from, to, false
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse(time.DateOnly, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date, expected YYYY-MM-DD"})
			return from, to, false
		}
		to = parsed
	}
	return from, to, true
}

// statusForError maps the engine's error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	var invalid *services.InvalidInputError
	var insufficient *services.InsufficientDataError
	var degenerate *services.DegenerateSeriesError
	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.As(err, &insufficient), errors.As(err, &degenerate):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
