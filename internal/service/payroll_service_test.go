package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/manpower-adp-api/internal/models"
)

func TestCalculateSalaryComponents(t *testing.T) {
	components := CalculateSalaryComponents(SalaryInput{
		TotalHours:     160,
		HourlyRate:     100,
		OvertimeHours:  10,
		AdvanceAmount:  500,
		Deductions:     models.DeductionMap{"shoes": 150, "canteen": 50},
		DaysPresent:    20,
		PFActive:       true,
		PFAmountPerDay: 50,
	})

	assert.Equal(t, 170.0, components.CombinedHours)
	assert.Equal(t, 17000.0, components.GrossSalary)
	assert.Equal(t, 1000.0, components.PFDeduction)
	assert.Equal(t, 200.0, components.OtherDeductions)
	assert.Equal(t, 15300.0, components.NetSalary)
}

func TestCalculateSalaryComponentsPFInactive(t *testing.T) {
	components := CalculateSalaryComponents(SalaryInput{
		TotalHours:     100,
		HourlyRate:     80,
		DaysPresent:    12,
		PFActive:       false,
		PFAmountPerDay: 50,
	})
	assert.Equal(t, 0.0, components.PFDeduction)
	assert.Equal(t, 8000.0, components.GrossSalary)
	assert.Equal(t, 8000.0, components.NetSalary)
}

func TestCalculateSalaryComponentsPFZeroAmount(t *testing.T) {
	components := CalculateSalaryComponents(SalaryInput{
		TotalHours:     100,
		HourlyRate:     80,
		DaysPresent:    12,
		PFActive:       true,
		PFAmountPerDay: 0,
	})
	assert.Equal(t, 0.0, components.PFDeduction)
}

func TestCalculateSalaryComponentsESICIsNoOp(t *testing.T) {
	with := CalculateSalaryComponents(SalaryInput{TotalHours: 50, HourlyRate: 100, ESICActive: true})
	without := CalculateSalaryComponents(SalaryInput{TotalHours: 50, HourlyRate: 100, ESICActive: false})
	assert.Equal(t, without, with)
}

func TestCalculateSalaryComponentsNetCanGoNegative(t *testing.T) {
	components := CalculateSalaryComponents(SalaryInput{
		TotalHours:    10,
		HourlyRate:    50,
		AdvanceAmount: 1000,
	})
	assert.Equal(t, 500.0, components.GrossSalary)
	assert.Equal(t, -500.0, components.NetSalary)
}

func TestCalculateSalaryComponentsRounding(t *testing.T) {
	components := CalculateSalaryComponents(SalaryInput{
		TotalHours: 7.55,
		HourlyRate: 33.33,
		Deductions: models.DeductionMap{"misc": 0.005},
	})
	assert.Equal(t, 251.64, components.GrossSalary)
	assert.Equal(t, 0.01, components.OtherDeductions)
	assert.Equal(t, 251.63, components.NetSalary)
}
