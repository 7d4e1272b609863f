package services

import "fmt"

// InsufficientDataError reports a window too short for the requested
// statistic. Callers test for it with errors.As.
type InsufficientDataError struct {
	Symbol string
	Needed int
	Got    int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: need at least %d points, got %d", e.Symbol, e.Needed, e.Got)
}

// InvalidInputError reports malformed, unsorted, or out-of-range input
// rejected at a boundary before any statistics run.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}

// DegenerateSeriesError reports a zero-variance series that breaks a ratio
// such as correlation or beta.
type DegenerateSeriesError struct {
	Symbol string
}

func (e *DegenerateSeriesError) Error() string {
	return fmt.Sprintf("degenerate series for %s: zero variance", e.Symbol)
}

// ReportGenerationError reports that no requested report section could be
// produced. Partial section failures do not raise it; they are annotated on
// the report instead.
type ReportGenerationError struct {
	ReportID string
	Sections map[string]string
}

func (e *ReportGenerationError) Error() string {
	return fmt.Sprintf("report %s: all %d requested sections failed", e.ReportID, len(e.Sections))
}

// DistributionError reports a single recipient delivery failure. It never
// fails the report as a whole.
type DistributionError struct {
	Recipient string
	Err       error
}

func (e *DistributionError) Error() string {
	return fmt.Sprintf("delivery to %s failed: %v", e.Recipient, e.Err)
}

func (e *DistributionError) Unwrap() error { return e.Err }
