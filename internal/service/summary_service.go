package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/manpower-adp-api/internal/models"
	appErrors "github.com/noah-isme/manpower-adp-api/pkg/errors"
)

type summaryEmployeeRepository interface {
	FindByID(ctx context.Context, id string) (*models.Employee, error)
	ListEligible(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, error)
}

type summaryTimingRepository interface {
	FindByID(ctx context.Context, id string) (*models.CycleTiming, error)
}

type summaryWalletRepository interface {
	ListEntries(ctx context.Context, employeeID string, from, to time.Time) ([]models.ScanEntry, error)
}

type summaryRepository interface {
	FindByID(ctx context.Context, id string) (*models.MonthlyAttendanceSummary, error)
	FindByCycleStart(ctx context.Context, employeeID string, cycleStart time.Time) (*models.MonthlyAttendanceSummary, error)
	UpsertComputed(ctx context.Context, summary *models.MonthlyAttendanceSummary) (*models.MonthlyAttendanceSummary, error)
	UpdateManualFields(ctx context.Context, id string, patch models.ManualFieldsPatch) (*models.MonthlyAttendanceSummary, error)
	List(ctx context.Context, filter models.SummaryFilter) ([]models.MonthlyAttendanceSummary, int, error)
}

// ComputeStatus classifies the outcome of one employee's monthly computation.
type ComputeStatus string

const (
	ComputeStatusComputed ComputeStatus = "COMPUTED"
	ComputeStatusSkipped  ComputeStatus = "SKIPPED"
	ComputeStatusFailed   ComputeStatus = "FAILED"
)

// ComputeOutcome is the tri-state result of a monthly computation: skips are
// legitimate non-results (wrong salary month, joined after cycle end), not
// failures.
type ComputeOutcome struct {
	Status  ComputeStatus                    `json:"status"`
	Reason  string                           `json:"reason,omitempty"`
	Summary *models.MonthlyAttendanceSummary `json:"summary,omitempty"`
}

// SummaryService orchestrates cycle resolution, work-log aggregation and
// salary composition into upsertable monthly summaries.
type SummaryService struct {
	employees summaryEmployeeRepository
	timings   summaryTimingRepository
	wallets   summaryWalletRepository
	summaries summaryRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewSummaryService constructs the summary orchestrator.
func NewSummaryService(
	employees summaryEmployeeRepository,
	timings summaryTimingRepository,
	wallets summaryWalletRepository,
	summaries summaryRepository,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *SummaryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &SummaryService{
		employees: employees,
		timings:   timings,
		wallets:   wallets,
		summaries: summaries,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
	svc.validator.RegisterValidation("batch_error_policy", func(fl validator.FieldLevel) bool {
		return models.BatchErrorPolicy(fl.Field().String()).Valid()
	})
	return svc
}

// ComputeRequest identifies one employee-month computation.
type ComputeRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Year       int    `json:"year" validate:"required,gte=2000,lte=2100"`
	Month      int    `json:"month" validate:"required,gte=1,lte=12"`
}

// ComputeMonthly resolves the employee's cycle against the requested month
// and, when eligible, recomputes the summary while carrying manual fields
// forward. Re-running with unchanged wallet data reproduces the same
// computed fields.
func (s *SummaryService) ComputeMonthly(ctx context.Context, req ComputeRequest) (*ComputeOutcome, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid compute payload")
	}

	employee, err := s.employees.FindByID(ctx, req.EmployeeID)
	if err != nil {
		return nil, notFoundOrInternal(err, "employee not found", "failed to fetch employee")
	}
	timing, err := s.timings.FindByID(ctx, employee.CycleTimingID)
	if err != nil {
		return nil, notFoundOrInternal(err, "cycle timing not found", "failed to fetch cycle timing")
	}

	outcome, err := s.computeForEmployee(ctx, employee, timing, req.Year, req.Month)
	if err != nil {
		return nil, err
	}
	if outcome.Status == ComputeStatusComputed {
		s.invalidateCache(ctx)
	}
	return outcome, nil
}

func (s *SummaryService) computeForEmployee(ctx context.Context, employee *models.Employee, timing *models.CycleTiming, year, month int) (*ComputeOutcome, error) {
	// The 15th is always inside the requested month regardless of timing.
	referenceDate := time.Date(year, time.Month(month), 15, 0, 0, 0, 0, time.UTC)
	info := GetSalaryMonthInfo(referenceDate, *timing)

	if info.SalaryYear != year || info.SalaryMonth != month {
		return &ComputeOutcome{Status: ComputeStatusSkipped, Reason: "not this cycle's salary month"}, nil
	}
	if employee.JoinedAt.After(info.CycleEnd) {
		return &ComputeOutcome{Status: ComputeStatusSkipped, Reason: "employee joined after cycle end"}, nil
	}

	now := s.now()
	effectiveEnd := EffectiveEnd(now, info.CycleEnd)

	existing, err := s.summaries.FindByCycleStart(ctx, employee.ID, info.CycleStart)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing summary")
	}

	entries, err := s.wallets.ListEntries(ctx, employee.ID, info.CycleStart, effectiveEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load wallet entries")
	}

	workLogs := BuildWorkLogs(entries, effectiveEnd, employee.HourlyRate, now)
	daysPresent := len(workLogs)
	var totalMinutes int
	for _, day := range workLogs {
		totalMinutes += day.TotalMinutes
	}
	totalHours := round2(float64(totalMinutes) / 60)

	// Absence is measured against the salary month's share of the cycle,
	// capped at days elapsed while the cycle is still running.
	effectiveDays := info.DaysInSalaryMonth
	if now.Before(info.CycleEnd) {
		elapsed := elapsedDaysInclusive(info.CycleStart, now)
		if elapsed < effectiveDays {
			effectiveDays = elapsed
		}
	}
	daysAbsent := effectiveDays - daysPresent
	if daysAbsent < 0 {
		daysAbsent = 0
	}

	// Manual fields ride along from the existing row; a fresh row starts
	// with zero overrides.
	summary := &models.MonthlyAttendanceSummary{
		EmployeeID: employee.ID,
		CycleStart: info.CycleStart,
		Deductions: models.DeductionMap{},
	}
	if existing != nil {
		*summary = *existing
	}

	components := CalculateSalaryComponents(SalaryInput{
		TotalHours:     totalHours,
		HourlyRate:     employee.HourlyRate,
		OvertimeHours:  summary.OvertimeHours,
		AdvanceAmount:  summary.AdvanceAmount,
		Deductions:     summary.Deductions,
		DaysPresent:    daysPresent,
		PFActive:       employee.PFActive,
		PFAmountPerDay: employee.PFAmountPerDay,
		ESICActive:     employee.ESICActive,
	})

	summary.CycleEnd = info.CycleEnd
	summary.SalaryYear = info.SalaryYear
	summary.SalaryMonth = info.SalaryMonth
	summary.DaysPresent = daysPresent
	summary.DaysAbsent = daysAbsent
	summary.TotalHours = totalHours
	summary.HourlyRate = employee.HourlyRate
	summary.GrossSalary = components.GrossSalary
	summary.PFDeduction = components.PFDeduction
	summary.OtherDeductions = components.OtherDeductions
	summary.NetSalary = components.NetSalary

	stored, err := s.summaries.UpsertComputed(ctx, summary)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upsert summary")
	}

	if s.metrics != nil {
		s.metrics.RecordSummaryComputation(string(ComputeStatusComputed))
	}
	return &ComputeOutcome{Status: ComputeStatusComputed, Summary: stored}, nil
}

// BatchComputeRequest selects the employee population for a batch run.
type BatchComputeRequest struct {
	Year          int    `json:"year" validate:"required,gte=2000,lte=2100"`
	Month         int    `json:"month" validate:"required,gte=1,lte=12"`
	CycleTimingID string `json:"cycle_timing_id" validate:"required"`
	DepartmentID  string `json:"department_id"`
	ShiftTypeID   string `json:"shift_type_id"`
	OnError       string `json:"on_error" validate:"omitempty,batch_error_policy"`
}

// BatchFailure records one employee's failed computation.
type BatchFailure struct {
	EmployeeID string `json:"employee_id"`
	Error      string `json:"error"`
}

// BatchComputeResult tallies a batch run. NotSalaryMonth distinguishes "the
// whole population was skipped at the eligibility gate" from an empty or
// failed run: the caller most likely asked for the wrong (month, cycle)
// combination.
type BatchComputeResult struct {
	Eligible       int            `json:"eligible"`
	Computed       int            `json:"computed"`
	Skipped        int            `json:"skipped"`
	Failed         int            `json:"failed"`
	NotSalaryMonth bool           `json:"not_salary_month"`
	Failures       []BatchFailure `json:"failures,omitempty"`
}

// ComputeMonthlyForAll runs the monthly computation across the filtered
// population sequentially. The error policy is explicit: "abort" stops at the
// first failed employee (remaining employees are not processed), "continue"
// collects failures and keeps going.
func (s *SummaryService) ComputeMonthlyForAll(ctx context.Context, req BatchComputeRequest) (*BatchComputeResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}
	policy := models.BatchErrorPolicy(req.OnError)
	if policy == "" {
		policy = models.BatchContinueOnError
	}

	timing, err := s.timings.FindByID(ctx, req.CycleTimingID)
	if err != nil {
		return nil, notFoundOrInternal(err, "cycle timing not found", "failed to fetch cycle timing")
	}

	endOfMonth := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 1, 0).Add(-time.Millisecond)
	active := true
	population, err := s.employees.ListEligible(ctx, models.EmployeeFilter{
		CycleTimingID: req.CycleTimingID,
		DepartmentID:  req.DepartmentID,
		ShiftTypeID:   req.ShiftTypeID,
		JoinedBefore:  &endOfMonth,
		Active:        &active,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
	}

	result := &BatchComputeResult{Eligible: len(population)}
	for i := range population {
		employee := &population[i]
		outcome, err := s.computeForEmployee(ctx, employee, timing, req.Year, req.Month)
		if err != nil {
			result.Failed++
			result.Failures = append(result.Failures, BatchFailure{EmployeeID: employee.ID, Error: err.Error()})
			if s.metrics != nil {
				s.metrics.RecordSummaryComputation(string(ComputeStatusFailed))
			}
			if policy == models.BatchAbortOnError {
				break
			}
			continue
		}
		switch outcome.Status {
		case ComputeStatusComputed:
			result.Computed++
		case ComputeStatusSkipped:
			result.Skipped++
			if s.metrics != nil {
				s.metrics.RecordSummaryComputation(string(ComputeStatusSkipped))
			}
		}
	}

	if result.Eligible > 0 && result.Computed == 0 && result.Failed == 0 {
		result.NotSalaryMonth = true
	}
	if result.Computed > 0 {
		s.invalidateCache(ctx)
	}

	s.logger.Info("batch summary computation finished",
		zap.Int("eligible", result.Eligible),
		zap.Int("computed", result.Computed),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
		zap.Bool("not_salary_month", result.NotSalaryMonth),
	)
	return result, nil
}

// ManualUpdateRequest carries administrator overrides. Deduction values are
// coerced zero-safe: numbers and numeric strings pass through, garbage sums
// as zero.
type ManualUpdateRequest struct {
	OvertimeHours *float64               `json:"overtime_hours" validate:"omitempty,gte=0"`
	AdvanceAmount *float64               `json:"advance_amount" validate:"omitempty,gte=0"`
	Deductions    map[string]interface{} `json:"deductions"`
	NetSalary     *float64               `json:"net_salary"`
}

// UpdateManualFields is the narrow write path for manual overrides; it never
// touches computed fields.
func (s *SummaryService) UpdateManualFields(ctx context.Context, id string, req ManualUpdateRequest) (*models.MonthlyAttendanceSummary, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid manual update payload")
	}
	patch := models.ManualFieldsPatch{
		OvertimeHours: req.OvertimeHours,
		AdvanceAmount: req.AdvanceAmount,
		NetSalary:     req.NetSalary,
	}
	if req.Deductions != nil {
		patch.Deductions = coerceDeductions(req.Deductions)
	}
	if patch.Empty() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no manual fields supplied")
	}

	if _, err := s.summaries.FindByID(ctx, id); err != nil {
		return nil, notFoundOrInternal(err, "summary not found", "failed to fetch summary")
	}
	updated, err := s.summaries.UpdateManualFields(ctx, id, patch)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update manual fields")
	}
	s.invalidateCache(ctx)
	return updated, nil
}

// SummaryListRequest filters the summary listing.
type SummaryListRequest struct {
	EmployeeID    string `json:"employee_id"`
	CycleTimingID string `json:"cycle_timing_id"`
	SalaryYear    int    `json:"salary_year"`
	SalaryMonth   int    `json:"salary_month" validate:"omitempty,gte=1,lte=12"`
	Page          int    `json:"page"`
	PageSize      int    `json:"page_size"`
}

type summaryListPayload struct {
	Rows       []models.MonthlyAttendanceSummary `json:"rows"`
	Pagination models.Pagination                 `json:"pagination"`
}

// List returns summaries with pagination, served from cache when possible.
func (s *SummaryService) List(ctx context.Context, req SummaryListRequest) ([]models.MonthlyAttendanceSummary, *models.Pagination, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid filter")
	}
	page := req.Page
	if page < 1 {
		page = 1
	}
	size := req.PageSize
	if size <= 0 {
		size = 50
	}

	cacheKey := fmt.Sprintf("summaries:%s:%s:%d:%d:p%d:s%d",
		req.EmployeeID, req.CycleTimingID, req.SalaryYear, req.SalaryMonth, page, size)
	if s.cache.Enabled() {
		var cached summaryListPayload
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			pagination := cached.Pagination
			return cached.Rows, &pagination, nil
		}
	}

	filter := models.SummaryFilter{
		EmployeeID:    req.EmployeeID,
		CycleTimingID: req.CycleTimingID,
		SalaryYear:    req.SalaryYear,
		SalaryMonth:   req.SalaryMonth,
		Page:          page,
		PageSize:      size,
	}
	rows, total, err := s.summaries.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list summaries")
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}

	if s.cache.Enabled() {
		payload := summaryListPayload{Rows: rows, Pagination: *pagination}
		if err := s.cache.Set(ctx, cacheKey, payload); err != nil {
			s.logger.Warn("failed to cache summary list", zap.Error(err))
		}
	}
	return rows, pagination, nil
}

func (s *SummaryService) invalidateCache(ctx context.Context) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.Invalidate(ctx, "summaries:*"); err != nil {
		s.logger.Warn("failed to invalidate summary cache", zap.Error(err))
	}
}

func elapsedDaysInclusive(from, to time.Time) int {
	start := startOfDay(from)
	end := startOfDay(to)
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

func coerceDeductions(raw map[string]interface{}) models.DeductionMap {
	out := make(models.DeductionMap, len(raw))
	for label, value := range raw {
		out[label] = coerceAmount(value)
	}
	return out
}

// coerceAmount converts arbitrary JSON values to a numeric amount, summing
// garbage as zero rather than failing the whole update.
func coerceAmount(value interface{}) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return 0
}
