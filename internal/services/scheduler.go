package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/commoditydesk/riskengine/internal/models"
)

// Clock abstracts the external trigger that fires scheduled report runs. The
// engine itself holds no timers; it only registers callbacks.
type Clock interface {
	Schedule(spec string, fn func()) error
	Start()
	Stop()
}

// CronClock implements Clock on robfig/cron.
type CronClock struct {
	cron *cron.Cron
}

// NewCronClock creates a cron-backed clock.
func NewCronClock() *CronClock {
	return &CronClock{cron: cron.New()}
}

// Schedule registers fn under the cron spec.
func (c *CronClock) Schedule(spec string, fn func()) error {
	if _, err := c.cron.AddFunc(spec, fn); err != nil {
		return fmt.Errorf("failed to register cron spec %q: %w", spec, err)
	}
	return nil
}

// Start begins firing registered schedules.
func (c *CronClock) Start() { c.cron.Start() }

// Stop stops the clock; in-flight jobs run to completion.
func (c *CronClock) Stop() { c.cron.Stop() }

// ScheduleConfig carries the cron specs and the report template the
// scheduler applies on every fire.
type ScheduleConfig struct {
	DailyCron      string
	WeeklyCron     string
	MonthlyCron    string
	Recipients     []string
	AutoDistribute bool
	Format         models.ReportFormat
	RunTimeout     time.Duration
}

// ReportScheduler invokes the report generation contract on a cadence. Each
// fire computes the trailing date range for its cadence and submits an
// ordinary generation request.
type ReportScheduler struct {
	clock   Clock
	reports *ReportService
	cfg     ScheduleConfig
	logger  *logrus.Logger
	now     func() time.Time
}

// NewReportScheduler creates a scheduler over the given clock.
func NewReportScheduler(clock Clock, reports *ReportService, cfg ScheduleConfig, logger *logrus.Logger) *ReportScheduler {
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 5 * time.Minute
	}
	return &ReportScheduler{clock: clock, reports: reports, cfg: cfg, logger: logger, now: time.Now}
}

// Register wires the daily, weekly and monthly cadences onto the clock.
// Cadences with an empty cron spec are skipped.
func (s *ReportScheduler) Register() error {
	cadences := []struct {
		spec    string
		cadence models.ReportCadence
	}{
		{s.cfg.DailyCron, models.CadenceDaily},
		{s.cfg.WeeklyCron, models.CadenceWeekly},
		{s.cfg.MonthlyCron, models.CadenceMonthly},
	}
	for _, c := range cadences {
		if c.spec == "" {
			continue
		}
		cadence := c.cadence
		if err := s.clock.Schedule(c.spec, func() { s.Run(cadence) }); err != nil {
			return err
		}
	}
	return nil
}

// Start starts the underlying clock.
func (s *ReportScheduler) Start() { s.clock.Start() }

// Stop stops the underlying clock.
func (s *ReportScheduler) Stop() { s.clock.Stop() }

// Run executes one scheduled generation for a cadence. Failures are logged;
// the next fire is unaffected.
func (s *ReportScheduler) Run(cadence models.ReportCadence) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RunTimeout)
	defer cancel()

	from, to := s.window(cadence)
	req := ReportRequest{
		Name:        fmt.Sprintf("%s risk report %s", cadence, to.Format(time.DateOnly)),
		Type:        cadence,
		RequestedBy: "scheduler",
		Parameters: models.RiskReportParameters{
			From:               from,
			To:                 to,
			IncludePositions:   true,
			IncludeVaR:         true,
			IncludeLimits:      true,
			IncludeStressTests: true,
			IncludeMarketData:  true,
			Format:             s.cfg.Format,
			ConfidenceLevels:   []float64{0.95, 0.99},
		},
		Recipients:     s.cfg.Recipients,
		AutoDistribute: s.cfg.AutoDistribute,
	}

	report, err := s.reports.Generate(ctx, req)
	if err != nil {
		s.logger.WithFields(logrus.Fields{"cadence": cadence}).Errorf("scheduled report failed: %v", err)
		return
	}
	s.logger.WithFields(logrus.Fields{
		"cadence":   cadence,
		"report_id": report.ID,
		"status":    report.Status,
	}).Info("Scheduled report complete")
}

// window computes the trailing date range for a cadence, ending today.
func (s *ReportScheduler) window(cadence models.ReportCadence) (time.Time, time.Time) {
	to := s.now().Truncate(24 * time.Hour)
	switch cadence {
	case models.CadenceWeekly:
		return to.AddDate(0, 0, -7), to
	case models.CadenceMonthly:
		return to.AddDate(0, -1, 0), to
	default:
		return to.AddDate(0, 0, -1), to
	}
}
