package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/manpower-adp-api/internal/models"
)

// WalletRepository manages attendance wallets and their scan entries.
type WalletRepository struct {
	db *sqlx.DB
}

// NewWalletRepository constructs a WalletRepository.
func NewWalletRepository(db *sqlx.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// AppendScan runs decide-and-append atomically for one employee. The wallet
// row is created on first scan and locked FOR UPDATE, so concurrent scans for
// the same employee serialize and each decision sees the entries of the one
// before it. The callback receives the current per-department lane projection
// and returns the entries to insert.
func (r *WalletRepository) AppendScan(ctx context.Context, employeeID string, decide func(lanes []models.DepartmentLane) ([]models.ScanEntry, error)) ([]models.ScanEntry, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin scan tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC()
	insertWallet := `INSERT INTO attendance_wallets (id, employee_id, created_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (employee_id) DO NOTHING`
	if _, err := tx.ExecContext(ctx, insertWallet, uuid.NewString(), employeeID, now); err != nil {
		return nil, fmt.Errorf("ensure wallet: %w", err)
	}

	var walletID string
	lockWallet := "SELECT id FROM attendance_wallets WHERE employee_id = $1 FOR UPDATE"
	if err := tx.GetContext(ctx, &walletID, lockWallet, employeeID); err != nil {
		return nil, fmt.Errorf("lock wallet: %w", err)
	}

	lanes := make([]models.DepartmentLane, 0)
	laneQuery := `SELECT DISTINCT ON (department_id) department_id, scan_type, scanned_at
        FROM scan_entries
        WHERE wallet_id = $1
        ORDER BY department_id, scanned_at DESC`
	if err := tx.SelectContext(ctx, &lanes, laneQuery, walletID); err != nil {
		return nil, fmt.Errorf("load lanes: %w", err)
	}

	pending, err := decide(lanes)
	if err != nil {
		return nil, err
	}

	inserted := make([]models.ScanEntry, 0, len(pending))
	insertEntry := `INSERT INTO scan_entries (id, wallet_id, scanned_at, scan_type, department_id, scanned_by, auto_closed, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, entry := range pending {
		entry.ID = uuid.NewString()
		entry.WalletID = walletID
		entry.CreatedAt = now
		if _, err := tx.ExecContext(ctx, insertEntry,
			entry.ID, entry.WalletID, entry.ScannedAt, entry.ScanType,
			entry.DepartmentID, entry.ScannedBy, entry.AutoClosed, entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("insert scan entry: %w", err)
		}
		inserted = append(inserted, entry)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit scan tx: %w", err)
	}
	return inserted, nil
}

// ListEntries returns an employee's scan entries within [from, to], ordered by
// scan time ascending.
func (r *WalletRepository) ListEntries(ctx context.Context, employeeID string, from, to time.Time) ([]models.ScanEntry, error) {
	query := `SELECT e.id, e.wallet_id, e.scanned_at, e.scan_type, e.department_id, e.scanned_by, e.auto_closed, e.created_at
        FROM scan_entries e
        JOIN attendance_wallets w ON w.id = e.wallet_id
        WHERE w.employee_id = $1 AND e.scanned_at >= $2 AND e.scanned_at <= $3
        ORDER BY e.scanned_at ASC, e.created_at ASC`
	entries := make([]models.ScanEntry, 0)
	if err := r.db.SelectContext(ctx, &entries, query, employeeID, from, to); err != nil {
		return nil, fmt.Errorf("list scan entries: %w", err)
	}
	return entries, nil
}

// FindWallet fetches the wallet for an employee if it exists.
func (r *WalletRepository) FindWallet(ctx context.Context, employeeID string) (*models.AttendanceWallet, error) {
	query := "SELECT id, employee_id, created_at FROM attendance_wallets WHERE employee_id = $1"
	var wallet models.AttendanceWallet
	if err := r.db.GetContext(ctx, &wallet, query, employeeID); err != nil {
		return nil, err
	}
	return &wallet, nil
}
