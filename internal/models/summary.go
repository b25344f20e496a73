package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DeductionMap holds free-form deduction labels ("shoes", "canteen") mapped to
// amounts. It is stored as JSONB.
type DeductionMap map[string]float64

// Total sums all deduction amounts.
func (m DeductionMap) Total() float64 {
	var total float64
	for _, amount := range m {
		total += amount
	}
	return total
}

// Value implements driver.Valuer.
func (m DeductionMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *DeductionMap) Scan(src interface{}) error {
	if src == nil {
		*m = DeductionMap{}
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported deduction map source %T", src)
	}
	if len(raw) == 0 {
		*m = DeductionMap{}
		return nil
	}
	return json.Unmarshal(raw, m)
}

// MonthlyAttendanceSummary is the per-employee-per-cycle payroll row, keyed
// uniquely by (employee_id, cycle_start). Computed fields are overwritten on
// every recomputation; manual fields survive recomputation and change only
// through the explicit manual-update path.
type MonthlyAttendanceSummary struct {
	ID          string    `db:"id" json:"id"`
	EmployeeID  string    `db:"employee_id" json:"employee_id"`
	CycleStart  time.Time `db:"cycle_start" json:"cycle_start"`
	CycleEnd    time.Time `db:"cycle_end" json:"cycle_end"`
	SalaryYear  int       `db:"salary_year" json:"salary_year"`
	SalaryMonth int       `db:"salary_month" json:"salary_month"`

	// Computed fields.
	DaysPresent     int     `db:"days_present" json:"days_present"`
	DaysAbsent      int     `db:"days_absent" json:"days_absent"`
	TotalHours      float64 `db:"total_hours" json:"total_hours"`
	HourlyRate      float64 `db:"hourly_rate" json:"hourly_rate"`
	GrossSalary     float64 `db:"gross_salary" json:"gross_salary"`
	PFDeduction     float64 `db:"pf_deduction" json:"pf_deduction"`
	OtherDeductions float64 `db:"other_deductions" json:"other_deductions"`

	// Manual fields, preserved across recomputation.
	OvertimeHours float64      `db:"overtime_hours" json:"overtime_hours"`
	AdvanceAmount float64      `db:"advance_amount" json:"advance_amount"`
	Deductions    DeductionMap `db:"deductions" json:"deductions"`

	// Derived by the orchestrator, but overridable through the manual path.
	NetSalary float64 `db:"net_salary" json:"net_salary"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ManualFieldsPatch carries administrator-entered overrides for the narrow
// manual-update path. Nil fields are left untouched; computed fields are
// never reachable through this patch.
type ManualFieldsPatch struct {
	OvertimeHours *float64
	AdvanceAmount *float64
	Deductions    DeductionMap
	NetSalary     *float64
}

// Empty reports whether the patch changes anything.
func (p ManualFieldsPatch) Empty() bool {
	return p.OvertimeHours == nil && p.AdvanceAmount == nil && p.Deductions == nil && p.NetSalary == nil
}

// SummaryExportRow joins a summary with employee identity for exports.
type SummaryExportRow struct {
	MonthlyAttendanceSummary
	EmployeeCode string `db:"employee_code" json:"employee_code"`
	EmployeeName string `db:"employee_name" json:"employee_name"`
}

// SummaryFilter defines query filters for listing summaries.
type SummaryFilter struct {
	EmployeeID    string
	CycleTimingID string
	SalaryYear    int
	SalaryMonth   int
	Page          int
	PageSize      int
}

// BatchErrorPolicy controls how batch computation reacts to a per-employee
// failure.
type BatchErrorPolicy string

const (
	BatchContinueOnError BatchErrorPolicy = "continue"
	BatchAbortOnError    BatchErrorPolicy = "abort"
)

// Valid returns true when the policy is a supported value.
func (p BatchErrorPolicy) Valid() bool {
	return p == BatchContinueOnError || p == BatchAbortOnError
}
