/*
engine.go - HR adjustment application

PURPOSE:
  Validates and applies discrete leave adjustments to the current month's
  balance: bounded magnitude check, active-employee check, find-or-create
  of the month row, one atomic increment, then provenance (adjustment
  record + audit event).

ORDERING:
  Validation and the employee lookup run before any write. The balance
  increment, the adjustment record, and the audit event are three separate
  writes with no transaction binding them; if a later write fails the
  earlier ones stay applied. The adjustment is reported back with the
  closing balance the increment produced.

NEGATIVE BALANCES:
  No floor or ceiling is enforced. HR adjustments are manual corrections
  and may legitimately drive a balance below zero.
*/
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ApplyResult reports the outcome of one adjustment.
type ApplyResult struct {
	EmployeeID   string
	EmployeeName string
	Applied      decimal.Decimal
	NewBalance   decimal.Decimal
}

// AdjustmentEngine applies bounded HR adjustments.
type AdjustmentEngine struct {
	store    Store
	resolver *BalanceResolver
	audit    *AuditRecorder
	now      func() time.Time
}

// NewAdjustmentEngine creates an engine with its own resolver and audit
// recorder over the given store.
func NewAdjustmentEngine(store Store) *AdjustmentEngine {
	return &AdjustmentEngine{
		store:    store,
		resolver: NewBalanceResolver(store),
		audit:    NewAuditRecorder(store),
		now:      time.Now,
	}
}

// Apply validates and applies one adjustment to the employee's current
// month, records the adjustment event, and audits the action.
func (e *AdjustmentEngine) Apply(ctx context.Context, employeeID string, amount decimal.Decimal, reason, actorID string) (ApplyResult, error) {
	if !ValidAdjustment(amount) {
		return ApplyResult{}, &InvalidAdjustmentError{Amount: amount}
	}

	emp, err := e.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return ApplyResult{}, fmt.Errorf("get employee: %w", err)
	}
	if emp == nil {
		return ApplyResult{}, fmt.Errorf("employee %s: %w", employeeID, ErrEmployeeNotFound)
	}

	now := e.now().UTC()
	balance, err := e.resolver.Resolve(ctx, employeeID, now.Year(), int(now.Month()))
	if err != nil {
		return ApplyResult{}, err
	}

	updated, err := e.store.IncrementBalance(ctx, balance.ID, amount)
	if err != nil {
		return ApplyResult{}, fmt.Errorf("increment balance: %w", err)
	}

	adj := LeaveAdjustment{
		ID:         uuid.NewString(),
		EmployeeID: employeeID,
		Amount:     amount,
		Reason:     reason,
		AdjustedBy: actorID,
		CreatedAt:  now,
	}
	if err := e.store.AppendAdjustment(ctx, adj); err != nil {
		return ApplyResult{}, fmt.Errorf("append adjustment: %w", err)
	}

	newBalance, _ := updated.ClosingBalance.Float64()
	applied, _ := amount.Float64()
	err = e.audit.Record(ctx, actorID, ActionAdjustLeave, "employee", employeeID, map[string]any{
		"employee_name": emp.FullName,
		"adjustment":    applied,
		"reason":        reason,
		"new_balance":   newBalance,
	})
	if err != nil {
		return ApplyResult{}, err
	}

	return ApplyResult{
		EmployeeID:   employeeID,
		EmployeeName: emp.FullName,
		Applied:      amount,
		NewBalance:   updated.ClosingBalance,
	}, nil
}
