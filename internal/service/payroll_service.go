package service

import (
	"math"

	"github.com/noah-isme/manpower-adp-api/internal/models"
)

// SalaryInput bundles the figures salary composition works from.
// ESICActive is accepted for forward compatibility: no per-day ESIC amount
// exists yet, so it currently contributes no deduction.
type SalaryInput struct {
	TotalHours     float64
	HourlyRate     float64
	OvertimeHours  float64
	AdvanceAmount  float64
	Deductions     models.DeductionMap
	DaysPresent    int
	PFActive       bool
	PFAmountPerDay float64
	ESICActive     bool
}

// SalaryComponents is the composed salary breakdown.
type SalaryComponents struct {
	GrossSalary     float64 `json:"gross_salary"`
	PFDeduction     float64 `json:"pf_deduction"`
	OtherDeductions float64 `json:"other_deductions"`
	NetSalary       float64 `json:"net_salary"`
	CombinedHours   float64 `json:"combined_hours"`
}

// CalculateSalaryComponents derives gross, deduction and net figures from
// worked hours plus manual adjustments. Rounding to two decimals happens at
// each derived quantity to match the precision of persisted summaries.
func CalculateSalaryComponents(in SalaryInput) SalaryComponents {
	combinedHours := in.TotalHours + in.OvertimeHours
	grossSalary := round2(combinedHours * in.HourlyRate)

	var pfDeduction float64
	if in.PFActive && in.PFAmountPerDay > 0 {
		pfDeduction = round2(in.PFAmountPerDay * float64(in.DaysPresent))
	}

	otherDeductions := round2(in.Deductions.Total())
	netSalary := round2(grossSalary - in.AdvanceAmount - otherDeductions - pfDeduction)

	return SalaryComponents{
		GrossSalary:     grossSalary,
		PFDeduction:     pfDeduction,
		OtherDeductions: otherDeductions,
		NetSalary:       netSalary,
		CombinedHours:   combinedHours,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
