package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/manpower-adp-api/internal/models"
)

// ShiftTypeRepository manages shift type master data.
type ShiftTypeRepository struct {
	db *sqlx.DB
}

// NewShiftTypeRepository constructs a ShiftTypeRepository.
func NewShiftTypeRepository(db *sqlx.DB) *ShiftTypeRepository {
	return &ShiftTypeRepository{db: db}
}

// List returns all shift types ordered by name.
func (r *ShiftTypeRepository) List(ctx context.Context) ([]models.ShiftType, error) {
	query := "SELECT id, name, created_at FROM shift_types ORDER BY name ASC"
	shiftTypes := make([]models.ShiftType, 0)
	if err := r.db.SelectContext(ctx, &shiftTypes, query); err != nil {
		return nil, fmt.Errorf("list shift types: %w", err)
	}
	return shiftTypes, nil
}

// FindByID fetches a shift type by primary key.
func (r *ShiftTypeRepository) FindByID(ctx context.Context, id string) (*models.ShiftType, error) {
	query := "SELECT id, name, created_at FROM shift_types WHERE id = $1"
	var shiftType models.ShiftType
	if err := r.db.GetContext(ctx, &shiftType, query, id); err != nil {
		return nil, err
	}
	return &shiftType, nil
}

// Create inserts a new shift type.
func (r *ShiftTypeRepository) Create(ctx context.Context, shiftType *models.ShiftType) error {
	if shiftType.ID == "" {
		shiftType.ID = uuid.NewString()
	}
	shiftType.CreatedAt = time.Now().UTC()
	query := "INSERT INTO shift_types (id, name, created_at) VALUES (:id, :name, :created_at)"
	if _, err := r.db.NamedExecContext(ctx, query, shiftType); err != nil {
		return fmt.Errorf("create shift type: %w", err)
	}
	return nil
}
