/*
store.go - Persistence interface for the leave-ledger core

PURPOSE:
  Defines what the domain needs from the database, nothing more. The store
  handle is injected explicitly into every component; there is no ambient
  global connection.

CONTRACT NOTES:
  - InsertBalance must enforce the one-row-per-(employee, year, month)
    invariant and return ErrBalanceExists on conflict, so callers can
    retry as a read.
  - IncrementBalance must apply the delta as a single atomic statement
    (closing += delta, hr_adjustments += delta) keyed by row ID. A
    read-modify-write round trip here would reintroduce lost updates
    under concurrent adjustments.
  - AppendAdjustment and AppendAudit are append-only: no update or delete
    for either table exists anywhere in the store.

IMPLEMENTATIONS:
  - store/sqlite: production store, also used in-memory for tests
*/
package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// Store is the persistence surface the domain core runs against.
type Store interface {
	// GetEmployee returns the active employee or nil when absent/inactive.
	GetEmployee(ctx context.Context, id string) (*Employee, error)

	// FindBalance returns the row for the exact (employee, year, month) key,
	// or nil when no row exists.
	FindBalance(ctx context.Context, employeeID string, year, month int) (*LeaveBalance, error)

	// InsertBalance creates a new balance row. Returns ErrBalanceExists if a
	// row for the same (employee, year, month) key already exists.
	InsertBalance(ctx context.Context, b LeaveBalance) error

	// IncrementBalance atomically applies delta to closing_balance and
	// hr_adjustments on the row and returns the updated row.
	IncrementBalance(ctx context.Context, balanceID string, delta decimal.Decimal) (*LeaveBalance, error)

	// AppendAdjustment records one immutable adjustment event.
	AppendAdjustment(ctx context.Context, adj LeaveAdjustment) error

	// AppendAudit records one immutable audit event.
	AppendAudit(ctx context.Context, entry AuditLog) error
}
