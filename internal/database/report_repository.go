package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/commoditydesk/riskengine/internal/models"
)

// ReportRepository implements services.ReportStore over postgres. Reports
// arrive here only in Generated or terminal states.
type ReportRepository struct {
	pool DatabasePool
}

// NewReportRepository creates a report repository.
func NewReportRepository(pool DatabasePool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// SaveReport upserts a report and returns its ID.
func (r *ReportRepository) SaveReport(ctx context.Context, report *models.RiskReport) (string, error) {
	params, err := json.Marshal(report.Parameters)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report parameters: %w", err)
	}
	sectionErrors, err := json.Marshal(report.SectionErrors)
	if err != nil {
		return "", fmt.Errorf("failed to marshal section errors: %w", err)
	}
	distribution, err := json.Marshal(report.DistributionResults)
	if err != nil {
		return "", fmt.Errorf("failed to marshal distribution results: %w", err)
	}

	query := `INSERT INTO risk_reports
		(id, type, name, generated_at, requested_by, parameters, content, recipients, auto_distribute, status, section_errors, distribution_results)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			content = EXCLUDED.content,
			generated_at = EXCLUDED.generated_at,
			section_errors = EXCLUDED.section_errors,
			distribution_results = EXCLUDED.distribution_results`
	_, err = r.pool.Exec(ctx, query,
		report.ID, report.Type, report.Name, report.GeneratedAt, report.RequestedBy,
		params, report.Content, report.Recipients, report.AutoDistribute, report.Status,
		sectionErrors, distribution)
	if err != nil {
		return "", fmt.Errorf("failed to save report %s: %w", report.ID, err)
	}
	return report.ID, nil
}

// LoadReport fetches a report by ID.
func (r *ReportRepository) LoadReport(ctx context.Context, id string) (*models.RiskReport, error) {
	query := `SELECT id, type, name, generated_at, requested_by, parameters, content, recipients, auto_distribute, status, section_errors, distribution_results
		FROM risk_reports WHERE id = $1`

	var report models.RiskReport
	var params, sectionErrors, distribution []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&report.ID, &report.Type, &report.Name, &report.GeneratedAt, &report.RequestedBy,
		&params, &report.Content, &report.Recipients, &report.AutoDistribute, &report.Status,
		&sectionErrors, &distribution)
	if err != nil {
		return nil, fmt.Errorf("failed to load report %s: %w", id, err)
	}

	if err := json.Unmarshal(params, &report.Parameters); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report parameters: %w", err)
	}
	if len(sectionErrors) > 0 {
		if err := json.Unmarshal(sectionErrors, &report.SectionErrors); err != nil {
			return nil, fmt.Errorf("failed to unmarshal section errors: %w", err)
		}
	}
	if len(distribution) > 0 {
		if err := json.Unmarshal(distribution, &report.DistributionResults); err != nil {
			return nil, fmt.Errorf("failed to unmarshal distribution results: %w", err)
		}
	}
	return &report, nil
}

// DeleteReport removes a report and reports whether it existed.
func (r *ReportRepository) DeleteReport(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM risk_reports WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete report %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}
