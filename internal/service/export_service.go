package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/manpower-adp-api/internal/models"
	"github.com/noah-isme/manpower-adp-api/pkg/export"
	"github.com/noah-isme/manpower-adp-api/pkg/storage"
)

type exportSummaryRepository interface {
	ListExportRows(ctx context.Context, filter models.SummaryFilter) ([]models.SummaryExportRow, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string              `json:"relative_path"`
	Token        string              `json:"token"`
	URL          string              `json:"url"`
	Format       models.ReportFormat `json:"format"`
	RowCount     int                 `json:"row_count"`
	ExpiresAt    time.Time           `json:"expires_at"`
}

// ExportService renders a cycle's payroll summaries into downloadable files.
type ExportService struct {
	summaries exportSummaryRepository
	storage   fileStorage
	csv       csvRenderer
	pdf       pdfRenderer
	signer    *storage.SignedURLSigner
	logger    *zap.Logger
	cfg       ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(summaries exportSummaryRepository, fileStore fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		summaries: summaries,
		storage:   fileStore,
		csv:       csv,
		pdf:       pdf,
		signer:    signer,
		logger:    logger,
		cfg:       cfg,
	}
}

var summaryExportHeaders = []string{
	"Employee Code", "Employee Name", "Salary Month", "Cycle Start", "Cycle End",
	"Days Present", "Days Absent", "Total Hours", "Hourly Rate", "Gross Salary",
	"Overtime Hours", "Advance", "PF", "Other Deductions", "Net Salary",
}

// Generate renders the summaries matching the job and stores the file.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	if !job.Format.Valid() {
		return nil, fmt.Errorf("unsupported format %s", job.Format)
	}

	rows, err := s.summaries.ListExportRows(ctx, models.SummaryFilter{
		CycleTimingID: job.CycleTimingID,
		SalaryYear:    job.SalaryYear,
		SalaryMonth:   job.SalaryMonth,
	})
	if err != nil {
		return nil, fmt.Errorf("load summaries for export: %w", err)
	}

	dataset := buildSummaryDataset(rows)
	title := fmt.Sprintf("Payroll Summary %04d-%02d", job.SalaryYear, job.SalaryMonth)

	var payload []byte
	switch job.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	s.logger.Info("export generated",
		zap.String("job_id", job.ID),
		zap.String("file", relPath),
		zap.Int("rows", len(rows)),
	)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/exports/download/%s", prefix, token),
		Format:       job.Format,
		RowCount:     len(rows),
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl, defaulting to the configured ResultTTL.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func buildSummaryDataset(rows []models.SummaryExportRow) export.Dataset {
	dataRows := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		dataRows = append(dataRows, map[string]string{
			"Employee Code":    row.EmployeeCode,
			"Employee Name":    row.EmployeeName,
			"Salary Month":     fmt.Sprintf("%04d-%02d", row.SalaryYear, row.SalaryMonth),
			"Cycle Start":      row.CycleStart.Format("2006-01-02"),
			"Cycle End":        row.CycleEnd.Format("2006-01-02"),
			"Days Present":     fmt.Sprintf("%d", row.DaysPresent),
			"Days Absent":      fmt.Sprintf("%d", row.DaysAbsent),
			"Total Hours":      fmt.Sprintf("%.2f", row.TotalHours),
			"Hourly Rate":      fmt.Sprintf("%.2f", row.HourlyRate),
			"Gross Salary":     fmt.Sprintf("%.2f", row.GrossSalary),
			"Overtime Hours":   fmt.Sprintf("%.2f", row.OvertimeHours),
			"Advance":          fmt.Sprintf("%.2f", row.AdvanceAmount),
			"PF":               fmt.Sprintf("%.2f", row.PFDeduction),
			"Other Deductions": fmt.Sprintf("%.2f", row.OtherDeductions),
			"Net Salary":       fmt.Sprintf("%.2f", row.NetSalary),
		})
	}
	return export.Dataset{Headers: summaryExportHeaders, Rows: dataRows}
}

func (s *ExportService) buildFilename(job *models.ExportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	return fmt.Sprintf("payroll_%04d-%02d_%s_%s.%s", job.SalaryYear, job.SalaryMonth, sanitizeFilename(job.CycleTimingID), timestamp, job.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "all"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
