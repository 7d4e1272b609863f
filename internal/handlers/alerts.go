package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/commoditydesk/riskengine/internal/models"
	"github.com/commoditydesk/riskengine/internal/services"
)

// AlertsHandler runs an on-demand alert scan over the monitored symbols.
type AlertsHandler struct {
	monitor    *services.AlertMonitorService
	prices     services.PriceStore
	symbols    []string
	thresholds map[string]models.AlertThresholds
	logger     *logrus.Logger
}

// NewAlertsHandler creates an alerts handler scanning the given symbols
// against their configured thresholds.
func NewAlertsHandler(
	monitor *services.AlertMonitorService,
	prices services.PriceStore,
	symbols []string,
	thresholds map[string]models.AlertThresholds,
	logger *logrus.Logger,
) *AlertsHandler {
	return &AlertsHandler{
		monitor:    monitor,
		prices:     prices,
		symbols:    symbols,
		thresholds: thresholds,
		logger:     logger,
	}
}

// ScanAlerts handles GET /api/v1/alerts. Symbols without a recent snapshot
// are skipped rather than failing the whole scan.
func (h *AlertsHandler) ScanAlerts(c *gin.Context) {
	snapshots := make([]models.PriceSnapshot, 0, len(h.symbols))
	for _, symbol := range h.symbols {
		snapshot, err := h.prices.LatestSnapshot(c.Request.Context(), symbol)
		if err != nil {
			h.logger.WithFields(logrus.Fields{
				"symbol": symbol,
				"error":  err.Error(),
			}).Warn("Skipping symbol in alert scan")
			continue
		}
		snapshots = append(snapshots, *snapshot)
	}

	alerts := h.monitor.Scan(snapshots, h.thresholds)
	c.JSON(http.StatusOK, gin.H{
		"alerts":     alerts,
		"scanned":    len(snapshots),
		"scanned_at": time.Now().UTC(),
	})
}
