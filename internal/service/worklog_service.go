package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/manpower-adp-api/internal/models"
	appErrors "github.com/noah-isme/manpower-adp-api/pkg/errors"
)

const maxSessionDuration = 24 * time.Hour

// BuildWorkLogs converts a chronologically ordered entry window into daily
// worked-duration records. Pairing is department-agnostic: within a day a
// later IN supersedes an open IN, an OUT closes the open IN, and only
// durations strictly between zero and 24h accrue. A dangling IN at the end of
// a day accrues up to min(now, windowEnd) under the same bound, which credits
// a still-clocked-in employee without ever counting into the future. Days
// with entries but zero accrued minutes are still emitted: presence counts
// days with logs, not days with positive hours.
func BuildWorkLogs(entries []models.ScanEntry, windowEnd time.Time, hourlyRate float64, now time.Time) []models.WorkLogDay {
	if len(entries) == 0 {
		return nil
	}

	cap := windowEnd
	if now.Before(cap) {
		cap = now
	}

	logs := make([]models.WorkLogDay, 0)
	var (
		day     time.Time
		openIn  *models.ScanEntry
		firstIn *time.Time
		lastOut *time.Time
		accrued time.Duration
		started bool
	)

	flush := func() {
		if !started {
			return
		}
		if openIn != nil {
			if d := cap.Sub(openIn.ScannedAt); d > 0 && d < maxSessionDuration {
				accrued += d
			}
			openIn = nil
		}
		minutes := int(math.Round(accrued.Minutes()))
		logs = append(logs, models.WorkLogDay{
			Date:         day,
			TotalMinutes: minutes,
			Salary:       round2(float64(minutes) / 60 * hourlyRate),
			FirstIn:      firstIn,
			LastOut:      lastOut,
		})
	}

	for i := range entries {
		entry := entries[i]
		entryDay := startOfDay(entry.ScannedAt)
		if !started || !entryDay.Equal(day) {
			flush()
			day = entryDay
			firstIn, lastOut = nil, nil
			accrued = 0
			started = true
		}

		switch entry.ScanType {
		case models.ScanIn:
			openIn = &entries[i]
			if firstIn == nil {
				ts := entry.ScannedAt
				firstIn = &ts
			}
		case models.ScanOut:
			if openIn != nil {
				if d := entry.ScannedAt.Sub(openIn.ScannedAt); d > 0 && d < maxSessionDuration {
					accrued += d
				}
				openIn = nil
			}
			ts := entry.ScannedAt
			lastOut = &ts
		}
	}
	flush()

	return logs
}

func startOfDay(t time.Time) time.Time {
	year, month, dayOfMonth := t.Date()
	return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, t.Location())
}

type worklogEmployeeRepository interface {
	FindByID(ctx context.Context, id string) (*models.Employee, error)
}

type worklogWalletRepository interface {
	ListEntries(ctx context.Context, employeeID string, from, to time.Time) ([]models.ScanEntry, error)
}

// WorkLogService serves derived work logs for an employee's wallet window.
type WorkLogService struct {
	employees worklogEmployeeRepository
	wallets   worklogWalletRepository
	logger    *zap.Logger
	now       func() time.Time
}

// NewWorkLogService constructs the work log service.
func NewWorkLogService(employees worklogEmployeeRepository, wallets worklogWalletRepository, logger *zap.Logger) *WorkLogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkLogService{employees: employees, wallets: wallets, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// ListForEmployee recomputes the work logs for [from, to].
func (s *WorkLogService) ListForEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]models.WorkLogDay, error) {
	if !to.After(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "window end must be after window start")
	}
	employee, err := s.employees.FindByID(ctx, employeeID)
	if err != nil {
		return nil, notFoundOrInternal(err, "employee not found", "failed to fetch employee")
	}
	entries, err := s.wallets.ListEntries(ctx, employee.ID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load wallet entries")
	}
	return BuildWorkLogs(entries, to, employee.HourlyRate, s.now()), nil
}
