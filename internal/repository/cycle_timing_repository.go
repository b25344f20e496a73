package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/manpower-adp-api/internal/models"
)

// CycleTimingRepository manages payroll cycle timing templates.
type CycleTimingRepository struct {
	db *sqlx.DB
}

// NewCycleTimingRepository constructs a CycleTimingRepository.
func NewCycleTimingRepository(db *sqlx.DB) *CycleTimingRepository {
	return &CycleTimingRepository{db: db}
}

// List returns all cycle timings ordered by name.
func (r *CycleTimingRepository) List(ctx context.Context) ([]models.CycleTiming, error) {
	query := "SELECT id, name, start_day, end_day, span, created_at, updated_at FROM cycle_timings ORDER BY name ASC"
	timings := make([]models.CycleTiming, 0)
	if err := r.db.SelectContext(ctx, &timings, query); err != nil {
		return nil, fmt.Errorf("list cycle timings: %w", err)
	}
	return timings, nil
}

// FindByID fetches a cycle timing by primary key.
func (r *CycleTimingRepository) FindByID(ctx context.Context, id string) (*models.CycleTiming, error) {
	query := "SELECT id, name, start_day, end_day, span, created_at, updated_at FROM cycle_timings WHERE id = $1"
	var timing models.CycleTiming
	if err := r.db.GetContext(ctx, &timing, query, id); err != nil {
		return nil, err
	}
	return &timing, nil
}

// Create inserts a new cycle timing template.
func (r *CycleTimingRepository) Create(ctx context.Context, timing *models.CycleTiming) error {
	if timing.ID == "" {
		timing.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	timing.CreatedAt = now
	timing.UpdatedAt = now
	query := `INSERT INTO cycle_timings (id, name, start_day, end_day, span, created_at, updated_at)
        VALUES (:id, :name, :start_day, :end_day, :span, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, timing); err != nil {
		return fmt.Errorf("create cycle timing: %w", err)
	}
	return nil
}
