package models

import "time"

// ScanType represents the direction of an attendance scan.
type ScanType string

const (
	ScanIn  ScanType = "IN"
	ScanOut ScanType = "OUT"
)

// Valid returns true when the scan type is a supported value.
func (t ScanType) Valid() bool {
	return t == ScanIn || t == ScanOut
}

// AttendanceWallet is the per-employee container of raw scan entries,
// created lazily on the employee's first scan.
type AttendanceWallet struct {
	ID         string    `db:"id" json:"id"`
	EmployeeID string    `db:"employee_id" json:"employee_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ScanEntry is an immutable attendance event. ScannedBy identifies the
// operator who triggered the scan, never the scanned employee. AutoClosed
// marks entries synthesized by the system to terminate a dangling session.
type ScanEntry struct {
	ID           string    `db:"id" json:"id"`
	WalletID     string    `db:"wallet_id" json:"wallet_id"`
	ScannedAt    time.Time `db:"scanned_at" json:"scanned_at"`
	ScanType     ScanType  `db:"scan_type" json:"scan_type"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	ScannedBy    string    `db:"scanned_by" json:"scanned_by"`
	AutoClosed   bool      `db:"auto_closed" json:"auto_closed"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// DepartmentLane is the projection of a wallet onto one department: the most
// recent entry decides whether the lane is open (IN) or closed (OUT).
type DepartmentLane struct {
	DepartmentID string    `db:"department_id" json:"department_id"`
	ScanType     ScanType  `db:"scan_type" json:"scan_type"`
	ScannedAt    time.Time `db:"scanned_at" json:"scanned_at"`
}

// Open reports whether the lane has an unresolved IN.
func (l DepartmentLane) Open() bool {
	return l.ScanType == ScanIn
}
