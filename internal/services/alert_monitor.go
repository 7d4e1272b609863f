package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/commoditydesk/riskengine/internal/models"
)

// AlertMonitorService scans current market state against configured
// thresholds. The scan is stateless and side-effect free: it emits alert
// records and leaves persistence and delivery to the distributor.
type AlertMonitorService struct {
	logger *logrus.Logger
	now    func() time.Time
}

// NewAlertMonitorService creates a threshold monitor.
func NewAlertMonitorService(logger *logrus.Logger) *AlertMonitorService {
	return &AlertMonitorService{logger: logger, now: time.Now}
}

// Scan compares each snapshot against its symbol's thresholds and emits zero
// or more alerts. Symbols without threshold configuration are skipped.
func (s *AlertMonitorService) Scan(snapshots []models.PriceSnapshot, thresholds map[string]models.AlertThresholds) []models.MarketAlert {
	var alerts []models.MarketAlert
	for _, snap := range snapshots {
		cfg, ok := thresholds[snap.Symbol]
		if !ok {
			continue
		}
		if alert := s.checkPriceMove(snap, cfg); alert != nil {
			alerts = append(alerts, *alert)
		}
		if alert := s.checkVaRBreach(snap, cfg); alert != nil {
			alerts = append(alerts, *alert)
		}
		if alert := s.checkStaleData(snap, cfg); alert != nil {
			alerts = append(alerts, *alert)
		}
	}
	if len(alerts) > 0 {
		s.logger.WithFields(logrus.Fields{"alerts": len(alerts), "symbols": len(snapshots)}).Info("Alert scan complete")
	}
	return alerts
}

func (s *AlertMonitorService) checkPriceMove(snap models.PriceSnapshot, cfg models.AlertThresholds) *models.MarketAlert {
	if cfg.PriceMovePct <= 0 || snap.PreviousClose.IsZero() {
		return nil
	}
	movePct := snap.Price.Sub(snap.PreviousClose).Div(snap.PreviousClose).InexactFloat64() * 100
	if movePct < 0 {
		movePct = -movePct
	}
	if movePct < cfg.PriceMovePct {
		return nil
	}
	threshold := decimal.NewFromFloat(cfg.PriceMovePct)
	return s.newAlert(snap, models.AlertTypePriceMove,
		fmt.Sprintf("%s moved %.2f%% against previous close (threshold %.2f%%)", snap.Symbol, movePct, cfg.PriceMovePct),
		&threshold, severityForRatio(movePct/cfg.PriceMovePct))
}

func (s *AlertMonitorService) checkVaRBreach(snap models.PriceSnapshot, cfg models.AlertThresholds) *models.MarketAlert {
	if cfg.VaRBreachThreshold <= 0 || snap.Volatility < cfg.VaRBreachThreshold {
		return nil
	}
	threshold := decimal.NewFromFloat(cfg.VaRBreachThreshold)
	return s.newAlert(snap, models.AlertTypeVaRBreach,
		fmt.Sprintf("%s volatility %.4f breaches VaR threshold %.4f", snap.Symbol, snap.Volatility, cfg.VaRBreachThreshold),
		&threshold, severityForRatio(snap.Volatility/cfg.VaRBreachThreshold))
}

// checkStaleData treats stale market data as a safety-critical breach type:
// severity never drops below Warning.
func (s *AlertMonitorService) checkStaleData(snap models.PriceSnapshot, cfg models.AlertThresholds) *models.MarketAlert {
	if cfg.StaleDataMaxAge <= 0 {
		return nil
	}
	age := s.now().Sub(snap.ObservedAt)
	if age <= cfg.StaleDataMaxAge {
		return nil
	}
	severity := models.SeverityWarning
	if age >= 2*cfg.StaleDataMaxAge {
		severity = models.SeverityCritical
	}
	return s.newAlert(snap, models.AlertTypeStaleData,
		fmt.Sprintf("%s last observed %s ago (max age %s)", snap.Symbol, age.Round(time.Minute), cfg.StaleDataMaxAge),
		nil, severity)
}

func (s *AlertMonitorService) newAlert(snap models.PriceSnapshot, alertType models.AlertType, message string, threshold *decimal.Decimal, severity models.AlertSeverity) *models.MarketAlert {
	return &models.MarketAlert{
		ID:           uuid.NewString(),
		Symbol:       snap.Symbol,
		Type:         alertType,
		Message:      message,
		CurrentPrice: snap.Price,
		Threshold:    threshold,
		Severity:     severity,
		Timestamp:    s.now(),
	}
}

// severityForRatio maps how far a breach exceeds its threshold onto a
// severity: within 1.5x is informational, within 2x a warning, beyond that
// critical.
func severityForRatio(ratio float64) models.AlertSeverity {
	switch {
	case ratio >= 2:
		return models.SeverityCritical
	case ratio >= 1.5:
		return models.SeverityWarning
	default:
		return models.SeverityInfo
	}
}
