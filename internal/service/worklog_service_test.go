package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/manpower-adp-api/internal/models"
)

func scanAt(t time.Time, kind models.ScanType) models.ScanEntry {
	return models.ScanEntry{ScannedAt: t, ScanType: kind, DepartmentID: "dept-1"}
}

func TestBuildWorkLogsSingleSession(t *testing.T) {
	day := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	entries := []models.ScanEntry{
		scanAt(day.Add(9*time.Hour), models.ScanIn),
		scanAt(day.Add(17*time.Hour), models.ScanOut),
	}
	now := day.Add(48 * time.Hour)

	logs := BuildWorkLogs(entries, day.Add(24*time.Hour), 100, now)
	require.Len(t, logs, 1)
	assert.Equal(t, 480, logs[0].TotalMinutes)
	assert.Equal(t, 800.0, logs[0].Salary)
	require.NotNil(t, logs[0].FirstIn)
	assert.Equal(t, day.Add(9*time.Hour), *logs[0].FirstIn)
	require.NotNil(t, logs[0].LastOut)
	assert.Equal(t, day.Add(17*time.Hour), *logs[0].LastOut)
}

func TestBuildWorkLogsMultipleSessionsPerDay(t *testing.T) {
	day := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	entries := []models.ScanEntry{
		scanAt(day.Add(8*time.Hour), models.ScanIn),
		scanAt(day.Add(12*time.Hour), models.ScanOut),
		scanAt(day.Add(13*time.Hour), models.ScanIn),
		scanAt(day.Add(17*time.Hour), models.ScanOut),
	}
	logs := BuildWorkLogs(entries, day.Add(24*time.Hour), 50, day.Add(30*time.Hour))
	require.Len(t, logs, 1)
	assert.Equal(t, 480, logs[0].TotalMinutes)
	assert.Equal(t, 400.0, logs[0].Salary)
}

func TestBuildWorkLogsSplitsByDay(t *testing.T) {
	dayOne := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	dayTwo := dayOne.Add(24 * time.Hour)
	entries := []models.ScanEntry{
		scanAt(dayOne.Add(9*time.Hour), models.ScanIn),
		scanAt(dayOne.Add(17*time.Hour), models.ScanOut),
		scanAt(dayTwo.Add(9*time.Hour), models.ScanIn),
		scanAt(dayTwo.Add(13*time.Hour), models.ScanOut),
	}
	logs := BuildWorkLogs(entries, dayTwo.Add(24*time.Hour), 100, dayTwo.Add(48*time.Hour))
	require.Len(t, logs, 2)
	assert.Equal(t, dayOne, logs[0].Date)
	assert.Equal(t, 480, logs[0].TotalMinutes)
	assert.Equal(t, dayTwo, logs[1].Date)
	assert.Equal(t, 240, logs[1].TotalMinutes)
}

func TestBuildWorkLogsOutWithoutInAccruesNothing(t *testing.T) {
	day := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	entries := []models.ScanEntry{
		scanAt(day.Add(10*time.Hour), models.ScanOut),
	}
	logs := BuildWorkLogs(entries, day.Add(24*time.Hour), 100, day.Add(48*time.Hour))
	require.Len(t, logs, 1)
	assert.Equal(t, 0, logs[0].TotalMinutes)
	assert.Nil(t, logs[0].FirstIn)
	require.NotNil(t, logs[0].LastOut)
}

func TestBuildWorkLogsStillClockedInAccruesToNow(t *testing.T) {
	day := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	entries := []models.ScanEntry{
		scanAt(day.Add(9*time.Hour), models.ScanIn),
	}
	now := day.Add(13 * time.Hour)

	logs := BuildWorkLogs(entries, day.Add(24*time.Hour), 100, now)
	require.Len(t, logs, 1)
	assert.Equal(t, 240, logs[0].TotalMinutes)
	assert.Nil(t, logs[0].LastOut)
}

func TestBuildWorkLogsDanglingInCappedAtWindowEnd(t *testing.T) {
	day := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	windowEnd := day.Add(20 * time.Hour)
	entries := []models.ScanEntry{
		scanAt(day.Add(18*time.Hour), models.ScanIn),
	}
	now := day.Add(72 * time.Hour)

	logs := BuildWorkLogs(entries, windowEnd, 100, now)
	require.Len(t, logs, 1)
	assert.Equal(t, 120, logs[0].TotalMinutes)
}

func TestBuildWorkLogsSessionOverMaxDurationDiscarded(t *testing.T) {
	day := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	entries := []models.ScanEntry{
		scanAt(day.Add(9*time.Hour), models.ScanIn),
	}
	// The dangling IN is days old by the time the window closes, so the
	// candidate duration exceeds the 24h sanity bound and contributes zero.
	now := day.Add(96 * time.Hour)
	logs := BuildWorkLogs(entries, day.Add(90*time.Hour), 100, now)
	require.Len(t, logs, 1)
	assert.Equal(t, 0, logs[0].TotalMinutes)
}

func TestBuildWorkLogsLaterInSupersedesOpenIn(t *testing.T) {
	day := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	entries := []models.ScanEntry{
		scanAt(day.Add(8*time.Hour), models.ScanIn),
		scanAt(day.Add(10*time.Hour), models.ScanIn),
		scanAt(day.Add(12*time.Hour), models.ScanOut),
	}
	logs := BuildWorkLogs(entries, day.Add(24*time.Hour), 100, day.Add(48*time.Hour))
	require.Len(t, logs, 1)
	// Only the 10:00 -> 12:00 pair accrues; the 08:00 IN was superseded.
	assert.Equal(t, 120, logs[0].TotalMinutes)
}

func TestBuildWorkLogsEmpty(t *testing.T) {
	logs := BuildWorkLogs(nil, time.Now(), 100, time.Now())
	assert.Nil(t, logs)
}
