/*
resolver.go - Find-or-create for monthly balance rows

PURPOSE:
  Given an employee and a target month, returns the balance row for that
  month, materializing it if absent. Resolving an existing row has no side
  effect.

MISSING-MONTH BEHAVIOR:
  A month with no row starts at opening = closing = 0.0. The balance seeded
  at employee creation carries the initial leave balance for the hire
  month; later months do NOT carry the prior month's closing forward.
  TestResolve_MissingMonth_StartsFromZero pins this down - do not change it
  without also changing every balance read that depends on it.

RACE WINDOW:
  Two concurrent resolvers for a brand-new month could both observe "no
  row". The store's unique index on (employee, year, month) makes the
  second insert fail with ErrBalanceExists, and the loser re-reads the
  winner's row. Either way exactly one row exists afterwards.
*/
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceResolver finds or materializes per-month balance rows.
type BalanceResolver struct {
	store Store
	now   func() time.Time
}

// NewBalanceResolver creates a resolver over the given store.
func NewBalanceResolver(store Store) *BalanceResolver {
	return &BalanceResolver{store: store, now: time.Now}
}

// Resolve returns the balance row for (employeeID, year, month), creating
// it when absent. The returned row is the stored one in both cases.
func (r *BalanceResolver) Resolve(ctx context.Context, employeeID string, year, month int) (*LeaveBalance, error) {
	b, err := r.store.FindBalance(ctx, employeeID, year, month)
	if err != nil {
		return nil, fmt.Errorf("find balance: %w", err)
	}
	if b != nil {
		return b, nil
	}

	fresh := LeaveBalance{
		ID:             uuid.NewString(),
		EmployeeID:     employeeID,
		Year:           year,
		Month:          month,
		OpeningBalance: decimal.Zero,
		LeaveTaken:     decimal.Zero,
		HRAdjustments:  decimal.Zero,
		ClosingBalance: decimal.Zero,
		CreatedAt:      r.now().UTC(),
	}

	err = r.store.InsertBalance(ctx, fresh)
	if errors.Is(err, ErrBalanceExists) {
		// Lost the creation race; the winner's row is authoritative.
		return r.store.FindBalance(ctx, employeeID, year, month)
	}
	if err != nil {
		return nil, fmt.Errorf("insert balance: %w", err)
	}

	return &fresh, nil
}

// ResolveCurrent resolves the balance row for the current month.
func (r *BalanceResolver) ResolveCurrent(ctx context.Context, employeeID string) (*LeaveBalance, error) {
	now := r.now().UTC()
	return r.Resolve(ctx, employeeID, now.Year(), int(now.Month()))
}
