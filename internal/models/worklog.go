package models

import "time"

// WorkLogDay is the derived worked-duration record for one calendar day.
// It is recomputed on demand from wallet entries and never persisted.
type WorkLogDay struct {
	Date         time.Time  `json:"date"`
	TotalMinutes int        `json:"total_minutes"`
	Salary       float64    `json:"salary"`
	FirstIn      *time.Time `json:"first_in,omitempty"`
	LastOut      *time.Time `json:"last_out,omitempty"`
}
