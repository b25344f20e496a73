package models

import "time"

// Employee represents a workforce member on the payroll.
type Employee struct {
	ID             string    `db:"id" json:"id"`
	Code           string    `db:"code" json:"code"`
	FullName       string    `db:"full_name" json:"full_name"`
	DepartmentID   string    `db:"department_id" json:"department_id"`
	ShiftTypeID    *string   `db:"shift_type_id" json:"shift_type_id,omitempty"`
	CycleTimingID  string    `db:"cycle_timing_id" json:"cycle_timing_id"`
	HourlyRate     float64   `db:"hourly_rate" json:"hourly_rate"`
	JoinedAt       time.Time `db:"joined_at" json:"joined_at"`
	PFActive       bool      `db:"pf_active" json:"pf_active"`
	PFAmountPerDay float64   `db:"pf_amount_per_day" json:"pf_amount_per_day"`
	ESICActive     bool      `db:"esic_active" json:"esic_active"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// EmployeeFilter captures filtering criteria for listing employees.
type EmployeeFilter struct {
	DepartmentID  string
	ShiftTypeID   string
	CycleTimingID string
	JoinedBefore  *time.Time
	Active        *bool
	Search        string
	Page          int
	PageSize      int
	SortBy        string
	SortOrder     string
}
