package ledger_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waqtek/hr-ledger/ledger"
	"github.com/waqtek/hr-ledger/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// newFileStore backs the store with a real file so concurrent tests
// exercise the WAL path instead of a purely in-memory database.
func newFileStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// seedEmployee creates a full profile hired this month with the given
// starting balance and returns the employee ID.
func seedEmployee(t *testing.T, store *sqlite.Store, initial float64) string {
	t.Helper()
	now := time.Now().UTC()
	userID := uuid.NewString()
	empID := uuid.NewString()
	bal := decimal.NewFromFloat(initial)

	err := store.CreateEmployeeProfile(context.Background(),
		ledger.User{
			ID:           userID,
			Email:        empID + "@example.com",
			PasswordHash: "x",
			Role:         ledger.RoleEmployee,
			IsActive:     true,
			CreatedAt:    now,
		},
		ledger.Employee{
			ID:                  empID,
			UserID:              userID,
			FullName:            "Test Employee",
			Email:               empID + "@example.com",
			Department:          ledger.DeptIT,
			Position:            "Engineer",
			HireDate:            now,
			PhoneNumber:         "+1-555-0000",
			InitialLeaveBalance: bal,
			IsActive:            true,
			CreatedAt:           now,
			CreatedBy:           "test",
		},
		ledger.LeaveBalance{
			ID:             uuid.NewString(),
			EmployeeID:     empID,
			Year:           now.Year(),
			Month:          int(now.Month()),
			OpeningBalance: bal,
			LeaveTaken:     decimal.Zero,
			HRAdjustments:  decimal.Zero,
			ClosingBalance: bal,
			CreatedAt:      now,
		},
		ledger.SickDays{
			ID:           uuid.NewString(),
			EmployeeID:   empID,
			Year:         now.Year(),
			UsedDays:     0,
			TotalAllowed: ledger.SickDayAllowance,
			LastReset:    now,
		},
	)
	require.NoError(t, err)
	return empID
}

func currentBalance(t *testing.T, store *sqlite.Store, empID string) *ledger.LeaveBalance {
	t.Helper()
	now := time.Now().UTC()
	b, err := store.FindBalance(context.Background(), empID, now.Year(), int(now.Month()))
	require.NoError(t, err)
	return b
}

// =============================================================================
// ADJUSTMENT APPLICATION
// =============================================================================

func TestApply_ValidAmounts_ExactDelta(t *testing.T) {
	// GIVEN: An employee starting the month at 20.0
	// WHEN: Applying each allowed magnitude in sequence
	// THEN: The closing balance moves by exactly that delta every time

	store := newTestStore(t)
	engine := ledger.NewAdjustmentEngine(store)
	empID := seedEmployee(t, store, 20)
	ctx := context.Background()

	steps := []struct {
		amount decimal.Decimal
		want   decimal.Decimal
	}{
		{decimal.NewFromInt(1), decimal.NewFromInt(21)},
		{decimal.NewFromInt(-1), decimal.NewFromInt(20)},
		{decimal.NewFromFloat(0.5), decimal.NewFromFloat(20.5)},
		{decimal.NewFromFloat(-0.5), decimal.NewFromInt(20)},
	}

	for _, s := range steps {
		result, err := engine.Apply(ctx, empID, s.amount, "correction", "hr-1")
		require.NoError(t, err)
		assert.True(t, result.NewBalance.Equal(s.want),
			"after %s: want %s, got %s", s.amount, s.want, result.NewBalance)
	}

	b := currentBalance(t, store, empID)
	assert.True(t, b.ClosingBalance.Equal(decimal.NewFromInt(20)))
	assert.True(t, b.HRAdjustments.Equal(decimal.Zero), "sequence sums to zero")
}

func TestApply_InvalidAmount_RejectedWithoutSideEffects(t *testing.T) {
	// GIVEN: An employee at 20.0
	// WHEN: Applying a +2.0 adjustment
	// THEN: ErrInvalidAdjustment, and no table changed

	store := newTestStore(t)
	engine := ledger.NewAdjustmentEngine(store)
	empID := seedEmployee(t, store, 20)
	ctx := context.Background()

	_, err := engine.Apply(ctx, empID, decimal.NewFromInt(2), "too generous", "hr-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ledger.ErrInvalidAdjustment))
	assert.True(t, ledger.IsClientError(err))

	var inv *ledger.InvalidAdjustmentError
	require.True(t, errors.As(err, &inv))
	assert.True(t, inv.Amount.Equal(decimal.NewFromInt(2)))

	b := currentBalance(t, store, empID)
	assert.True(t, b.ClosingBalance.Equal(decimal.NewFromInt(20)), "balance untouched")

	adjustments, err := store.ListAdjustments(ctx, empID)
	require.NoError(t, err)
	assert.Empty(t, adjustments, "no adjustment record for a rejected amount")
}

func TestApply_ZeroAmount_Rejected(t *testing.T) {
	store := newTestStore(t)
	engine := ledger.NewAdjustmentEngine(store)
	empID := seedEmployee(t, store, 10)

	_, err := engine.Apply(context.Background(), empID, decimal.Zero, "noop", "hr-1")
	assert.True(t, errors.Is(err, ledger.ErrInvalidAdjustment))
}

func TestApply_UnknownEmployee_NotFound(t *testing.T) {
	store := newTestStore(t)
	engine := ledger.NewAdjustmentEngine(store)

	_, err := engine.Apply(context.Background(), "nobody", decimal.NewFromInt(1), "x", "hr-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ledger.ErrEmployeeNotFound))
	assert.True(t, ledger.IsNotFound(err))
}

func TestApply_NegativeBalanceAllowed(t *testing.T) {
	// GIVEN: An employee with only 0.5 days left
	// WHEN: HR removes a full day
	// THEN: The balance goes negative; no floor is enforced

	store := newTestStore(t)
	engine := ledger.NewAdjustmentEngine(store)
	empID := seedEmployee(t, store, 0.5)

	result, err := engine.Apply(context.Background(), empID, decimal.NewFromInt(-1), "overdraw", "hr-1")
	require.NoError(t, err)
	assert.True(t, result.NewBalance.Equal(decimal.NewFromFloat(-0.5)))
}

func TestApply_RecordsAdjustmentAndAudit(t *testing.T) {
	// GIVEN: An employee at 20.0
	// WHEN: HR applies -1.0 with a reason
	// THEN: One adjustment record and one audit event exist, both attributed

	store := newTestStore(t)
	engine := ledger.NewAdjustmentEngine(store)
	empID := seedEmployee(t, store, 20)
	ctx := context.Background()

	_, err := engine.Apply(ctx, empID, decimal.NewFromInt(-1), "excess leave taken", "hr-42")
	require.NoError(t, err)

	adjustments, err := store.ListAdjustments(ctx, empID)
	require.NoError(t, err)
	require.Len(t, adjustments, 1)
	assert.True(t, adjustments[0].Amount.Equal(decimal.NewFromInt(-1)))
	assert.Equal(t, "excess leave taken", adjustments[0].Reason)
	assert.Equal(t, "hr-42", adjustments[0].AdjustedBy)

	events, err := store.ListAuditByTarget(ctx, "employee", empID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ledger.ActionAdjustLeave, events[0].Action)
	assert.Equal(t, "hr-42", events[0].UserID)
	assert.Equal(t, 19.0, events[0].Details["new_balance"])
}

func TestApply_Concurrent_NoLostUpdates(t *testing.T) {
	// GIVEN: An employee at 20.0
	// WHEN: 8 adjustments run concurrently (4 x +1, 4 x -0.5)
	// THEN: The final balance reflects every one of them

	store := newFileStore(t)
	engine := ledger.NewAdjustmentEngine(store)
	empID := seedEmployee(t, store, 20)
	ctx := context.Background()

	amounts := []decimal.Decimal{
		decimal.NewFromInt(1), decimal.NewFromInt(1),
		decimal.NewFromInt(1), decimal.NewFromInt(1),
		decimal.NewFromFloat(-0.5), decimal.NewFromFloat(-0.5),
		decimal.NewFromFloat(-0.5), decimal.NewFromFloat(-0.5),
	}

	var wg sync.WaitGroup
	errs := make([]error, len(amounts))
	for i, amount := range amounts {
		wg.Add(1)
		go func(i int, amount decimal.Decimal) {
			defer wg.Done()
			_, errs[i] = engine.Apply(ctx, empID, amount, "concurrent", "hr-1")
		}(i, amount)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "adjustment %d", i)
	}

	b := currentBalance(t, store, empID)
	assert.True(t, b.ClosingBalance.Equal(decimal.NewFromInt(22)),
		"want 22, got %s", b.ClosingBalance)
	assert.True(t, b.HRAdjustments.Equal(decimal.NewFromInt(2)))

	adjustments, err := store.ListAdjustments(ctx, empID)
	require.NoError(t, err)
	assert.Len(t, adjustments, len(amounts))
}

// =============================================================================
// ADJUSTMENT VALIDATION
// =============================================================================

func TestValidAdjustment_AllowedSet(t *testing.T) {
	for _, v := range []float64{1, -1, 0.5, -0.5} {
		assert.True(t, ledger.ValidAdjustment(decimal.NewFromFloat(v)), "%v should be allowed", v)
	}
	for _, v := range []float64{0, 2, -2, 0.25, 1.5, -1.5, 100} {
		assert.False(t, ledger.ValidAdjustment(decimal.NewFromFloat(v)), "%v should be rejected", v)
	}
}
