package models

import "time"

// CycleSpan indicates whether a payroll cycle ends in the month it starts in
// or in the following month.
type CycleSpan string

const (
	CycleSpanSameMonth CycleSpan = "SAME_MONTH"
	CycleSpanNextMonth CycleSpan = "NEXT_MONTH"
)

// Valid returns true when the span is a supported value.
func (s CycleSpan) Valid() bool {
	return s == CycleSpanSameMonth || s == CycleSpanNextMonth
}

// CycleTiming is a reusable template defining a recurring payroll period by
// start/end day-of-month. StartDay is capped at 28 so the start date exists in
// every month; EndDay is clamped to the actual month length on resolution.
type CycleTiming struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	StartDay  int       `db:"start_day" json:"start_day"`
	EndDay    int       `db:"end_day" json:"end_day"`
	Span      CycleSpan `db:"span" json:"span"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
