/*
Package ledger contains the leave-balance domain core.

PURPOSE:
  Tracks per-employee, per-month leave balances and the append-only
  adjustment log behind them. The three moving parts are:
  - BalanceResolver: finds or materializes the month's balance row
  - AdjustmentEngine: validates and applies bounded HR adjustments
  - AuditRecorder: appends an immutable event for every mutation

KEY CONCEPTS IN THIS FILE (types.go):
  - Role/Department: closed enums mirroring the account and org model
  - Employee/LeaveBalance/LeaveAdjustment/SickDays/AuditLog: stored records
  - Adjustment magnitudes: the four allowed deltas {+1, -1, +0.5, -0.5}

DESIGN PRINCIPLES:
  1. Immutability: adjustments and audit entries are written once, never edited
  2. Precision: decimal.Decimal for balance math, floats only at the JSON edge
  3. Statelessness: records are re-fetched by ID on every operation; the
     domain never holds long-lived references across requests

SEE ALSO:
  - resolver.go: Balance row find-or-create
  - engine.go: Adjustment application
  - store.go: Persistence interface
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ROLES AND DEPARTMENTS
// =============================================================================

// Role is the account role attached to a user.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleHR       Role = "hr"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleHR, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// Department is a closed set; employees always belong to exactly one.
type Department string

const (
	DeptIT         Department = "IT"
	DeptHR         Department = "HR"
	DeptFinance    Department = "Finance"
	DeptMarketing  Department = "Marketing"
	DeptOperations Department = "Operations"
	DeptSales      Department = "Sales"
)

// Valid reports whether d is a known department.
func (d Department) Valid() bool {
	switch d {
	case DeptIT, DeptHR, DeptFinance, DeptMarketing, DeptOperations, DeptSales:
		return true
	}
	return false
}

// =============================================================================
// ACCOUNT AND EMPLOYEE RECORDS
// =============================================================================

// User is an authentication principal. Employees reference their user
// account via UserID; the password hash never leaves the store layer.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	LastLogin    *time.Time
}

// Employee is the HR profile. InitialLeaveBalance is set once at creation
// and never mutated afterwards; deactivation is a soft delete via IsActive.
type Employee struct {
	ID                  string
	UserID              string
	FullName            string
	Email               string
	Department          Department
	Position            string
	HireDate            time.Time
	PhoneNumber         string
	InitialLeaveBalance decimal.Decimal
	IsActive            bool
	CreatedAt           time.Time
	CreatedBy           string
}

// =============================================================================
// LEAVE BALANCE - one row per (employee, year, month)
// =============================================================================

// LeaveBalance holds the month's running balance.
//
// INVARIANT: ClosingBalance = OpeningBalance + sum of adjustments applied
// this month. Exactly one row exists per (EmployeeID, Year, Month); the
// store enforces this with a unique index.
type LeaveBalance struct {
	ID             string
	EmployeeID     string
	Year           int
	Month          int // 1..12
	OpeningBalance decimal.Decimal
	LeaveTaken     decimal.Decimal // reserved for time-off consumption
	HRAdjustments  decimal.Decimal // cumulative signed sum this month
	ClosingBalance decimal.Decimal
	CreatedAt      time.Time
}

// LeaveAdjustment is the immutable record of one applied adjustment.
// Created once, never mutated or deleted; the rows form the audit trail
// for every balance change.
type LeaveAdjustment struct {
	ID         string
	EmployeeID string
	Amount     decimal.Decimal
	Reason     string
	AdjustedBy string
	CreatedAt  time.Time
}

// allowedAdjustments are the only magnitudes an HR adjustment may carry.
var allowedAdjustments = []decimal.Decimal{
	decimal.NewFromInt(1),
	decimal.NewFromInt(-1),
	decimal.NewFromFloat(0.5),
	decimal.NewFromFloat(-0.5),
}

// ValidAdjustment reports whether amount is one of {+1, -1, +0.5, -0.5}.
func ValidAdjustment(amount decimal.Decimal) bool {
	for _, a := range allowedAdjustments {
		if amount.Equal(a) {
			return true
		}
	}
	return false
}

// =============================================================================
// SICK DAYS - per (employee, year) counter
// =============================================================================

// SickDayAllowance is the fixed annual sick-day quota.
const SickDayAllowance = 3

// SickDays counts usage against the annual allowance. Remaining is always
// computed, never stored.
type SickDays struct {
	ID           string
	EmployeeID   string
	Year         int
	UsedDays     int
	TotalAllowed int
	LastReset    time.Time
}

// Remaining returns the unused part of the allowance. A nil record means
// nothing has been used yet, so the full allowance remains.
func (s *SickDays) Remaining() int {
	if s == nil {
		return SickDayAllowance
	}
	return s.TotalAllowed - s.UsedDays
}

// Used returns the used-day count, zero for a missing record.
func (s *SickDays) Used() int {
	if s == nil {
		return 0
	}
	return s.UsedDays
}

// =============================================================================
// AUDIT LOG
// =============================================================================

// Audit action names. Kept as stable strings; reports filter on them.
const (
	ActionLogin          = "LOGIN"
	ActionCreateEmployee = "CREATE_EMPLOYEE"
	ActionAdjustLeave    = "ADJUST_LEAVE_BALANCE"
)

// AuditLog is a generic append-only event: who did what to which record.
// Write-only from the domain's perspective.
type AuditLog struct {
	ID         string
	UserID     string
	Action     string
	TargetType string
	TargetID   string
	Details    map[string]any
	Timestamp  time.Time
}
