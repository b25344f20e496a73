package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/manpower-adp-api/internal/models"
)

func TestResolveCycleDatesSameMonth(t *testing.T) {
	timing := models.CycleTiming{StartDay: 1, EndDay: 31, Span: models.CycleSpanSameMonth}
	ref := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)

	start, end := ResolveCycleDates(ref, timing)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, 2025, end.Year())
	assert.Equal(t, time.January, end.Month())
	assert.Equal(t, 31, end.Day())
	assert.Equal(t, 23, end.Hour())
}

func TestResolveCycleDatesEndDayClamped(t *testing.T) {
	// end_day 31 lands in February and must clamp to the month length.
	timing := models.CycleTiming{StartDay: 1, EndDay: 31, Span: models.CycleSpanSameMonth}
	ref := time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC)

	_, end := ResolveCycleDates(ref, timing)
	assert.Equal(t, 28, end.Day())

	leapRef := time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)
	_, leapEnd := ResolveCycleDates(leapRef, timing)
	assert.Equal(t, 29, leapEnd.Day())
}

func TestResolveCycleDatesNextMonth(t *testing.T) {
	timing := models.CycleTiming{StartDay: 16, EndDay: 15, Span: models.CycleSpanNextMonth}
	ref := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)

	start, end := ResolveCycleDates(ref, timing)
	assert.Equal(t, time.Date(2025, time.January, 16, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.February, end.Month())
	assert.Equal(t, 15, end.Day())
}

func TestResolveCycleDatesNextMonthYearRollover(t *testing.T) {
	timing := models.CycleTiming{StartDay: 26, EndDay: 25, Span: models.CycleSpanNextMonth}
	ref := time.Date(2024, time.December, 26, 0, 0, 0, 0, time.UTC)

	start, end := ResolveCycleDates(ref, timing)
	assert.Equal(t, time.December, start.Month())
	assert.Equal(t, 2025, end.Year())
	assert.Equal(t, time.January, end.Month())
}

func TestGetSalaryMonthInfoMajorityEarlierMonth(t *testing.T) {
	// Jan 16 .. Feb 15: January holds 16 days, February 15, so January wins.
	timing := models.CycleTiming{StartDay: 16, EndDay: 15, Span: models.CycleSpanNextMonth}
	ref := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)

	info := GetSalaryMonthInfo(ref, timing)
	assert.Equal(t, 2025, info.SalaryYear)
	assert.Equal(t, 1, info.SalaryMonth)
	assert.Equal(t, 16, info.DaysInSalaryMonth)
}

func TestGetSalaryMonthInfoMajorityLaterMonth(t *testing.T) {
	// Jan 26 .. Feb 25: January holds 6 days, February 25, so February wins.
	timing := models.CycleTiming{StartDay: 26, EndDay: 25, Span: models.CycleSpanNextMonth}
	ref := time.Date(2025, time.January, 26, 0, 0, 0, 0, time.UTC)

	info := GetSalaryMonthInfo(ref, timing)
	assert.Equal(t, 2, info.SalaryMonth)
	assert.Equal(t, 25, info.DaysInSalaryMonth)
}

func TestGetSalaryMonthInfoTieGoesToLaterMonth(t *testing.T) {
	// Apr 16 .. May 15: April holds 15 days, May 15. The tie goes to May.
	timing := models.CycleTiming{StartDay: 16, EndDay: 15, Span: models.CycleSpanNextMonth}
	ref := time.Date(2025, time.April, 20, 0, 0, 0, 0, time.UTC)

	info := GetSalaryMonthInfo(ref, timing)
	assert.Equal(t, 5, info.SalaryMonth)
	assert.Equal(t, 15, info.DaysInSalaryMonth)
}

func TestGetSalaryMonthInfoSameMonthCycle(t *testing.T) {
	timing := models.CycleTiming{StartDay: 1, EndDay: 31, Span: models.CycleSpanSameMonth}
	ref := time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)

	info := GetSalaryMonthInfo(ref, timing)
	assert.Equal(t, 3, info.SalaryMonth)
	assert.Equal(t, 31, info.DaysInSalaryMonth)
}

func TestEffectiveEnd(t *testing.T) {
	cycleEnd := time.Date(2025, time.March, 31, 23, 59, 59, 0, time.UTC)

	early := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, early, EffectiveEnd(early, cycleEnd))

	late := time.Date(2025, time.April, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, cycleEnd, EffectiveEnd(late, cycleEnd))
}

func TestGetSalaryMonthInfoDeterministic(t *testing.T) {
	timing := models.CycleTiming{StartDay: 16, EndDay: 15, Span: models.CycleSpanNextMonth}
	ref := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

	first := GetSalaryMonthInfo(ref, timing)
	second := GetSalaryMonthInfo(ref, timing)
	require.Equal(t, first, second)
}
