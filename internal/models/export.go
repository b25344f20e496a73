package models

import "time"

// ReportFormat identifies the rendered export format.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// Valid returns true for supported formats.
func (f ReportFormat) Valid() bool {
	return f == ReportFormatCSV || f == ReportFormatPDF
}

// ExportJob describes one summary-export request handed to the worker queue.
type ExportJob struct {
	ID            string       `json:"id"`
	SalaryYear    int          `json:"salary_year"`
	SalaryMonth   int          `json:"salary_month"`
	CycleTimingID string       `json:"cycle_timing_id"`
	Format        ReportFormat `json:"format"`
	RequestedBy   string       `json:"requested_by"`
	RequestedAt   time.Time    `json:"requested_at"`
}
