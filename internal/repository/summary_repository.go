package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/manpower-adp-api/internal/models"
)

// SummaryRepository manages monthly attendance summary rows.
type SummaryRepository struct {
	db *sqlx.DB
}

// NewSummaryRepository constructs a SummaryRepository.
func NewSummaryRepository(db *sqlx.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

const summaryColumns = `id, employee_id, cycle_start, cycle_end, salary_year, salary_month,
        days_present, days_absent, total_hours, hourly_rate, gross_salary, pf_deduction, other_deductions,
        overtime_hours, advance_amount, deductions, net_salary, created_at, updated_at`

// FindByID fetches a summary by primary key.
func (r *SummaryRepository) FindByID(ctx context.Context, id string) (*models.MonthlyAttendanceSummary, error) {
	query := fmt.Sprintf("SELECT %s FROM monthly_attendance_summaries WHERE id = $1", summaryColumns)
	var summary models.MonthlyAttendanceSummary
	if err := r.db.GetContext(ctx, &summary, query, id); err != nil {
		return nil, err
	}
	return &summary, nil
}

// FindByCycleStart fetches the summary keyed by (employee_id, cycle_start).
// A missing row is not an error; recomputation creates it.
func (r *SummaryRepository) FindByCycleStart(ctx context.Context, employeeID string, cycleStart time.Time) (*models.MonthlyAttendanceSummary, error) {
	query := fmt.Sprintf("SELECT %s FROM monthly_attendance_summaries WHERE employee_id = $1 AND cycle_start = $2", summaryColumns)
	var summary models.MonthlyAttendanceSummary
	if err := r.db.GetContext(ctx, &summary, query, employeeID, cycleStart); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find summary by cycle start: %w", err)
	}
	return &summary, nil
}

// UpsertComputed writes a computed summary. On conflict the update list names
// the computed columns and net_salary only, so administrator-entered manual
// fields survive every recomputation.
func (r *SummaryRepository) UpsertComputed(ctx context.Context, summary *models.MonthlyAttendanceSummary) (*models.MonthlyAttendanceSummary, error) {
	if summary.ID == "" {
		summary.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if summary.CreatedAt.IsZero() {
		summary.CreatedAt = now
	}
	summary.UpdatedAt = now
	if summary.Deductions == nil {
		summary.Deductions = models.DeductionMap{}
	}

	query := `INSERT INTO monthly_attendance_summaries (id, employee_id, cycle_start, cycle_end, salary_year, salary_month,
        days_present, days_absent, total_hours, hourly_rate, gross_salary, pf_deduction, other_deductions,
        overtime_hours, advance_amount, deductions, net_salary, created_at, updated_at)
        VALUES (:id, :employee_id, :cycle_start, :cycle_end, :salary_year, :salary_month,
        :days_present, :days_absent, :total_hours, :hourly_rate, :gross_salary, :pf_deduction, :other_deductions,
        :overtime_hours, :advance_amount, :deductions, :net_salary, :created_at, :updated_at)
        ON CONFLICT (employee_id, cycle_start) DO UPDATE SET
        cycle_end = EXCLUDED.cycle_end,
        salary_year = EXCLUDED.salary_year,
        salary_month = EXCLUDED.salary_month,
        days_present = EXCLUDED.days_present,
        days_absent = EXCLUDED.days_absent,
        total_hours = EXCLUDED.total_hours,
        hourly_rate = EXCLUDED.hourly_rate,
        gross_salary = EXCLUDED.gross_salary,
        pf_deduction = EXCLUDED.pf_deduction,
        other_deductions = EXCLUDED.other_deductions,
        net_salary = EXCLUDED.net_salary,
        updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, summary); err != nil {
		return nil, fmt.Errorf("upsert summary: %w", err)
	}

	return r.FindByCycleStart(ctx, summary.EmployeeID, summary.CycleStart)
}

// UpdateManualFields applies the manual patch to one summary. Only fields
// present in the patch appear in the SET list.
func (r *SummaryRepository) UpdateManualFields(ctx context.Context, id string, patch models.ManualFieldsPatch) (*models.MonthlyAttendanceSummary, error) {
	sets := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)

	if patch.OvertimeHours != nil {
		args = append(args, *patch.OvertimeHours)
		sets = append(sets, fmt.Sprintf("overtime_hours = $%d", len(args)))
	}
	if patch.AdvanceAmount != nil {
		args = append(args, *patch.AdvanceAmount)
		sets = append(sets, fmt.Sprintf("advance_amount = $%d", len(args)))
	}
	if patch.Deductions != nil {
		args = append(args, patch.Deductions)
		sets = append(sets, fmt.Sprintf("deductions = $%d", len(args)))
	}
	if patch.NetSalary != nil {
		args = append(args, *patch.NetSalary)
		sets = append(sets, fmt.Sprintf("net_salary = $%d", len(args)))
	}
	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}

	args = append(args, time.Now().UTC())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, id)

	query := fmt.Sprintf("UPDATE monthly_attendance_summaries SET %s WHERE id = $%d",
		strings.Join(sets, ", "), len(args))
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update manual fields: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return nil, fmt.Errorf("summary %s not found", id)
	}
	return r.FindByID(ctx, id)
}

// List returns summaries matching the filter with pagination.
func (r *SummaryRepository) List(ctx context.Context, filter models.SummaryFilter) ([]models.MonthlyAttendanceSummary, int, error) {
	conditions, args := buildSummaryConditions(filter, "s")
	where := strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT s.id, s.employee_id, s.cycle_start, s.cycle_end, s.salary_year, s.salary_month,
        s.days_present, s.days_absent, s.total_hours, s.hourly_rate, s.gross_salary, s.pf_deduction, s.other_deductions,
        s.overtime_hours, s.advance_amount, s.deductions, s.net_salary, s.created_at, s.updated_at
        FROM monthly_attendance_summaries s
        JOIN employees e ON e.id = s.employee_id
        WHERE %s ORDER BY s.cycle_start DESC, e.code ASC LIMIT %d OFFSET %d`, where, size, offset)

	summaries := make([]models.MonthlyAttendanceSummary, 0)
	if err := r.db.SelectContext(ctx, &summaries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list summaries: %w", err)
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM monthly_attendance_summaries s
        JOIN employees e ON e.id = s.employee_id WHERE %s`, where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count summaries: %w", err)
	}
	return summaries, total, nil
}

// ListExportRows returns summaries joined with employee identity, ordered by
// badge code, for export rendering. No pagination; exports cover the whole
// matching set.
func (r *SummaryRepository) ListExportRows(ctx context.Context, filter models.SummaryFilter) ([]models.SummaryExportRow, error) {
	conditions, args := buildSummaryConditions(filter, "s")
	query := fmt.Sprintf(`SELECT s.id, s.employee_id, s.cycle_start, s.cycle_end, s.salary_year, s.salary_month,
        s.days_present, s.days_absent, s.total_hours, s.hourly_rate, s.gross_salary, s.pf_deduction, s.other_deductions,
        s.overtime_hours, s.advance_amount, s.deductions, s.net_salary, s.created_at, s.updated_at,
        e.code AS employee_code, e.full_name AS employee_name
        FROM monthly_attendance_summaries s
        JOIN employees e ON e.id = s.employee_id
        WHERE %s ORDER BY e.code ASC`, strings.Join(conditions, " AND "))

	rows := make([]models.SummaryExportRow, 0)
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list export rows: %w", err)
	}
	return rows, nil
}

func buildSummaryConditions(filter models.SummaryFilter, alias string) ([]string, []interface{}) {
	conditions := []string{"1=1"}
	args := make([]interface{}, 0, 4)

	if filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("%s.employee_id = $%d", alias, len(args)+1))
		args = append(args, filter.EmployeeID)
	}
	if filter.CycleTimingID != "" {
		conditions = append(conditions, fmt.Sprintf("e.cycle_timing_id = $%d", len(args)+1))
		args = append(args, filter.CycleTimingID)
	}
	if filter.SalaryYear > 0 {
		conditions = append(conditions, fmt.Sprintf("%s.salary_year = $%d", alias, len(args)+1))
		args = append(args, filter.SalaryYear)
	}
	if filter.SalaryMonth > 0 {
		conditions = append(conditions, fmt.Sprintf("%s.salary_month = $%d", alias, len(args)+1))
		args = append(args, filter.SalaryMonth)
	}
	return conditions, args
}
