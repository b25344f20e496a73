package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/manpower-adp-api/internal/models"
	appErrors "github.com/noah-isme/manpower-adp-api/pkg/errors"
)

type cycleTimingRepository interface {
	List(ctx context.Context) ([]models.CycleTiming, error)
	FindByID(ctx context.Context, id string) (*models.CycleTiming, error)
	Create(ctx context.Context, timing *models.CycleTiming) error
}

// SalaryMonthInfo identifies the calendar month a cycle instance is
// attributed to, per the majority-day rule.
type SalaryMonthInfo struct {
	SalaryYear        int       `json:"salary_year"`
	SalaryMonth       int       `json:"salary_month"`
	DaysInSalaryMonth int       `json:"days_in_salary_month"`
	CycleStart        time.Time `json:"cycle_start"`
	CycleEnd          time.Time `json:"cycle_end"`
}

// ResolveCycleDates maps a cycle timing onto the reference date's month.
// The start day is clamped to the month length (start_day <= 28 already
// guarantees existence), the end day to the end month's length. The end
// instant is end-of-day.
func ResolveCycleDates(referenceDate time.Time, timing models.CycleTiming) (time.Time, time.Time) {
	loc := referenceDate.Location()
	year, month, _ := referenceDate.Date()

	startDay := timing.StartDay
	if dim := daysInMonth(year, month); startDay > dim {
		startDay = dim
	}
	cycleStart := time.Date(year, month, startDay, 0, 0, 0, 0, loc)

	endYear, endMonth := year, month
	if timing.Span == models.CycleSpanNextMonth {
		next := time.Date(year, month, 1, 0, 0, 0, 0, loc).AddDate(0, 1, 0)
		endYear, endMonth = next.Year(), next.Month()
	}
	endDay := timing.EndDay
	if dim := daysInMonth(endYear, endMonth); endDay > dim {
		endDay = dim
	}
	cycleEnd := time.Date(endYear, endMonth, endDay, 23, 59, 59, int(999*time.Millisecond), loc)

	return cycleStart, cycleEnd
}

// GetSalaryMonthInfo resolves the cycle window for the reference date and
// decides which month owns it: the cycle belongs to the month holding the
// majority of its days, ties going to the later month.
func GetSalaryMonthInfo(referenceDate time.Time, timing models.CycleTiming) SalaryMonthInfo {
	cycleStart, cycleEnd := ResolveCycleDates(referenceDate, timing)

	var daysInMonthA, daysInMonthB int
	if cycleStart.Year() == cycleEnd.Year() && cycleStart.Month() == cycleEnd.Month() {
		daysInMonthA = cycleEnd.Day() - cycleStart.Day() + 1
		daysInMonthB = daysInMonthA
	} else {
		daysInMonthA = daysInMonth(cycleStart.Year(), cycleStart.Month()) - cycleStart.Day() + 1
		daysInMonthB = cycleEnd.Day()
	}

	info := SalaryMonthInfo{CycleStart: cycleStart, CycleEnd: cycleEnd}
	if daysInMonthB >= daysInMonthA {
		info.SalaryYear = cycleEnd.Year()
		info.SalaryMonth = int(cycleEnd.Month())
		info.DaysInSalaryMonth = daysInMonthB
	} else {
		info.SalaryYear = cycleStart.Year()
		info.SalaryMonth = int(cycleStart.Month())
		info.DaysInSalaryMonth = daysInMonthA
	}
	return info
}

// EffectiveEnd caps an in-progress cycle's end at the present instant so
// computation never reaches into the future.
func EffectiveEnd(now, cycleEnd time.Time) time.Time {
	if now.Before(cycleEnd) {
		return now
	}
	return cycleEnd
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1).Day()
}

// CycleService exposes cycle timing master data alongside the pure
// resolution helpers above.
type CycleService struct {
	repo      cycleTimingRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCycleService constructs the cycle service.
func NewCycleService(repo cycleTimingRepository, validate *validator.Validate, logger *zap.Logger) *CycleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &CycleService{repo: repo, validator: validate, logger: logger}
	svc.validator.RegisterValidation("cycle_span", func(fl validator.FieldLevel) bool {
		return models.CycleSpan(fl.Field().String()).Valid()
	})
	return svc
}

// CreateCycleTimingRequest describes the payload for defining a timing.
type CreateCycleTimingRequest struct {
	Name     string `json:"name" validate:"required"`
	StartDay int    `json:"start_day" validate:"required,gte=1,lte=28"`
	EndDay   int    `json:"end_day" validate:"required,gte=1,lte=31"`
	Span     string `json:"span" validate:"required,cycle_span"`
}

// List returns all cycle timings.
func (s *CycleService) List(ctx context.Context) ([]models.CycleTiming, error) {
	timings, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list cycle timings")
	}
	return timings, nil
}

// Get returns one cycle timing by id.
func (s *CycleService) Get(ctx context.Context, id string) (*models.CycleTiming, error) {
	timing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "cycle timing not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch cycle timing")
	}
	return timing, nil
}

// Create validates and stores a new cycle timing.
func (s *CycleService) Create(ctx context.Context, req CreateCycleTimingRequest) (*models.CycleTiming, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid cycle timing payload")
	}
	now := time.Now().UTC()
	timing := &models.CycleTiming{
		ID:        uuid.NewString(),
		Name:      req.Name,
		StartDay:  req.StartDay,
		EndDay:    req.EndDay,
		Span:      models.CycleSpan(req.Span),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, timing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create cycle timing")
	}
	return timing, nil
}
