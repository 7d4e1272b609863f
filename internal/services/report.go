package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/commoditydesk/riskengine/internal/models"
)

// ReportRequest names a report instance and carries the template parameters
// a generation run executes.
type ReportRequest struct {
	Name           string                      `json:"name"`
	Type           models.ReportCadence        `json:"type"`
	RequestedBy    string                      `json:"requested_by"`
	Parameters     models.RiskReportParameters `json:"parameters"`
	Recipients     []string                    `json:"recipients"`
	AutoDistribute bool                        `json:"auto_distribute"`
}

// ReportService assembles the analytic outputs into a report instance,
// persists it through the external store and hands distribution to the
// distributor. Section analyses have no data dependency on each other and run
// concurrently; the join before serialization is the only barrier.
type ReportService struct {
	analysis    *MarketAnalysisService
	volatility  *VolatilityService
	pnl         *PnLService
	stress      *StressTestService
	snapshots   *MarketSnapshotService
	positions   PositionStore
	store       ReportStore
	renderer    ReportRenderer
	distributor *Distributor
	logger      *logrus.Logger

	symbols []string
	limits  map[string]decimal.Decimal

	mu sync.Mutex // serializes status transitions and publishes
}

// NewReportService creates a report generator. symbols lists the book's
// monitored symbols for the VaR and market-data sections; limits maps product
// to its exposure limit for the limits section.
func NewReportService(
	analysis *MarketAnalysisService,
	volatility *VolatilityService,
	pnl *PnLService,
	stress *StressTestService,
	snapshots *MarketSnapshotService,
	positions PositionStore,
	store ReportStore,
	renderer ReportRenderer,
	distributor *Distributor,
	symbols []string,
	limits map[string]decimal.Decimal,
	logger *logrus.Logger,
) *ReportService {
	return &ReportService{
		analysis:    analysis,
		volatility:  volatility,
		pnl:         pnl,
		stress:      stress,
		snapshots:   snapshots,
		positions:   positions,
		store:       store,
		renderer:    renderer,
		distributor: distributor,
		symbols:     symbols,
		limits:      limits,
		logger:      logger,
	}
}

// sectionResults is the fan-in point of the concurrent section analyses.
type sectionResults struct {
	mu      sync.Mutex
	content models.ReportContent
	errors  map[string]string
}

func (r *sectionResults) fail(section string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors[section] = err.Error()
}

// Generate runs one report request through the lifecycle. The report becomes
// visible to readers only in a terminal state; a cancelled generation
// publishes nothing.
func (s *ReportService) Generate(ctx context.Context, req ReportRequest) (*models.RiskReport, error) {
	report := &models.RiskReport{
		ID:             uuid.NewString(),
		Type:           req.Type,
		Name:           req.Name,
		RequestedBy:    req.RequestedBy,
		Parameters:     req.Parameters,
		Recipients:     req.Recipients,
		AutoDistribute: req.AutoDistribute,
		Status:         models.ReportRequested,
	}

	if err := s.transition(report, models.ReportRequested, models.ReportGenerating); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"report_id": report.ID,
		"name":      report.Name,
		"type":      report.Type,
	}).Info("Generating risk report")

	results := &sectionResults{errors: make(map[string]string)}
	requested := s.runSections(ctx, req.Parameters, results)

	if err := ctx.Err(); err != nil {
		// Nothing published: the report never reached a visible state.
		return nil, fmt.Errorf("report generation cancelled: %w", err)
	}

	report.SectionErrors = results.errors
	if requested > 0 && len(results.errors) == requested {
		return nil, s.failReport(ctx, report, &ReportGenerationError{ReportID: report.ID, Sections: results.errors})
	}

	content, err := s.renderer.Render(req.Parameters.Format, &results.content)
	if err != nil {
		return nil, s.failReport(ctx, report, fmt.Errorf("failed to render report content: %w", err))
	}
	report.Content = content
	report.GeneratedAt = time.Now()

	if err := s.transition(report, models.ReportGenerating, models.ReportGenerated); err != nil {
		return nil, err
	}
	if err := s.publish(ctx, report); err != nil {
		return nil, err
	}

	if report.AutoDistribute && len(report.Recipients) > 0 {
		if err := s.Distribute(ctx, report); err != nil {
			return report, err
		}
	}
	return report, nil
}

// Distribute delivers a generated report to every recipient. Per-recipient
// failures are recorded on the report; they never roll back Generated.
func (s *ReportService) Distribute(ctx context.Context, report *models.RiskReport) error {
	if report.Status != models.ReportGenerated {
		return &InvalidInputError{Reason: fmt.Sprintf("report %s is %s, not %s", report.ID, report.Status, models.ReportGenerated)}
	}

	report.DistributionResults = s.distributor.Distribute(ctx, report.Recipients, report.Content)

	if err := s.transition(report, models.ReportGenerated, models.ReportDistributed); err != nil {
		return err
	}
	return s.publish(ctx, report)
}

// LoadReport fetches a previously published report.
func (s *ReportService) LoadReport(ctx context.Context, id string) (*models.RiskReport, error) {
	return s.store.LoadReport(ctx, id)
}

// DeleteReport removes a published report, reporting whether it existed.
func (s *ReportService) DeleteReport(ctx context.Context, id string) (bool, error) {
	return s.store.DeleteReport(ctx, id)
}

// runSections fans out one goroutine per included section and joins them.
// It returns the number of requested sections.
func (s *ReportService) runSections(ctx context.Context, params models.RiskReportParameters, results *sectionResults) int {
	var wg sync.WaitGroup
	requested := 0

	run := func(section string, fn func() error) {
		requested++
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				s.logger.WithFields(logrus.Fields{"section": section}).Warnf("report section failed: %v", err)
				results.fail(section, err)
			}
		}()
	}

	if params.IncludePositions {
		run("positions", func() error {
			summary, err := s.pnl.Summarize(ctx, params.From, params.To)
			if err != nil {
				return err
			}
			results.mu.Lock()
			results.content.Positions = summary
			results.mu.Unlock()
			return nil
		})
	}
	if params.IncludeVaR {
		run("var", func() error { return s.varSection(ctx, params, results) })
	}
	if params.IncludeLimits {
		run("limits", func() error { return s.limitsSection(ctx, results) })
	}
	if params.IncludeStressTests {
		run("stress_tests", func() error {
			tests, err := s.stress.Run(ctx)
			if err != nil {
				return err
			}
			results.mu.Lock()
			results.content.StressTests = tests
			results.mu.Unlock()
			return nil
		})
	}
	if params.IncludeMarketData {
		run("market_data", func() error {
			snaps, err := s.snapshots.Snapshot(ctx, s.symbols, params.From, params.To)
			if err != nil {
				return err
			}
			results.mu.Lock()
			results.content.MarketData = snaps
			results.mu.Unlock()
			return nil
		})
	}

	wg.Wait()
	return requested
}

// varSection runs the volatility analysis per monitored symbol. A symbol
// with too little history is skipped; the section fails only when every
// symbol fails.
func (s *ReportService) varSection(ctx context.Context, params models.RiskReportParameters, results *sectionResults) error {
	var section []models.VolatilityAnalysisResult
	var lastErr error
	for _, symbol := range s.symbols {
		result, err := s.volatility.AnalyzeVolatility(ctx, symbol, params.From, params.To)
		if err != nil {
			lastErr = err
			continue
		}
		section = append(section, *result)
	}
	if len(section) == 0 {
		if lastErr != nil {
			return lastErr
		}
		return &InsufficientDataError{Symbol: "book", Needed: 1, Got: 0}
	}
	results.mu.Lock()
	results.content.VaR = section
	results.mu.Unlock()
	return nil
}

// limitsSection compares per-product gross exposure against configured
// limits.
func (s *ReportService) limitsSection(ctx context.Context, results *sectionResults) error {
	book, err := s.positions.FetchOpenPositions(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch positions: %w", err)
	}

	exposure := make(map[string]decimal.Decimal)
	for _, pos := range book {
		if pos.Status != models.PositionOpen {
			continue
		}
		exposure[pos.Product] = exposure[pos.Product].Add(positionValue(pos))
	}

	var section []models.LimitUtilization
	for product, limit := range s.limits {
		used := exposure[product]
		util := 0.0
		if !limit.IsZero() {
			util = used.Div(limit).InexactFloat64()
		}
		section = append(section, models.LimitUtilization{
			Product:     product,
			Exposure:    used,
			Limit:       limit,
			Utilization: util,
			Breached:    used.GreaterThan(limit),
		})
	}

	results.mu.Lock()
	results.content.Limits = section
	results.mu.Unlock()
	return nil
}

// transition moves a report between lifecycle states, enforcing the state
// machine: each terminal state is entered exactly once.
func (s *ReportService) transition(report *models.RiskReport, from, to models.ReportStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if report.Status != from {
		return &InvalidInputError{Reason: fmt.Sprintf("report %s: illegal transition %s -> %s", report.ID, report.Status, to)}
	}
	report.Status = to
	return nil
}

// publish saves the report through the external store. Reports are only ever
// saved in Generated or terminal states, so readers never observe a partial
// result.
func (s *ReportService) publish(ctx context.Context, report *models.RiskReport) error {
	if _, err := s.store.SaveReport(ctx, report); err != nil {
		return fmt.Errorf("failed to persist report %s: %w", report.ID, err)
	}
	return nil
}

func (s *ReportService) failReport(ctx context.Context, report *models.RiskReport, cause error) error {
	if err := s.transition(report, models.ReportGenerating, models.ReportFailed); err != nil {
		return err
	}
	if err := s.publish(ctx, report); err != nil {
		s.logger.Warnf("failed to persist failed report %s: %v", report.ID, err)
	}
	return cause
}

// JSONRenderer renders the canonical JSON result graph. PDF and Excel byte
// layouts are produced downstream by a serializer collaborator from this
// same graph.
type JSONRenderer struct{}

// Render serializes the content graph.
func (JSONRenderer) Render(format models.ReportFormat, content *models.ReportContent) ([]byte, error) {
	switch format {
	case models.FormatJSON, models.FormatPDF, models.FormatExcel:
		return json.Marshal(content)
	default:
		return nil, &InvalidInputError{Reason: fmt.Sprintf("unknown report format %q", format)}
	}
}
