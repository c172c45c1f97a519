package ledger_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waqtek/hr-ledger/ledger"
)

func TestResolve_MissingMonth_StartsFromZero(t *testing.T) {
	// GIVEN: An employee whose only balance row is the seeded hire month
	// WHEN: Resolving a month with no row
	// THEN: A fresh row is created with opening = closing = 0.0; the prior
	//       month's closing balance is NOT carried forward

	store := newTestStore(t)
	resolver := ledger.NewBalanceResolver(store)
	empID := seedEmployee(t, store, 20)
	ctx := context.Background()

	b, err := resolver.Resolve(ctx, empID, 2031, 7)
	require.NoError(t, err)
	require.NotNil(t, b)

	assert.Equal(t, 2031, b.Year)
	assert.Equal(t, 7, b.Month)
	assert.True(t, b.OpeningBalance.Equal(decimal.Zero))
	assert.True(t, b.ClosingBalance.Equal(decimal.Zero))
	assert.True(t, b.HRAdjustments.Equal(decimal.Zero))
}

func TestResolve_ExistingRow_NoSideEffects(t *testing.T) {
	// GIVEN: The seeded hire-month row at 20.0
	// WHEN: Resolving that month twice
	// THEN: Both calls return the same stored row, balance untouched

	store := newTestStore(t)
	resolver := ledger.NewBalanceResolver(store)
	empID := seedEmployee(t, store, 20)
	ctx := context.Background()

	seeded := currentBalance(t, store, empID)
	require.NotNil(t, seeded)

	first, err := resolver.Resolve(ctx, empID, seeded.Year, seeded.Month)
	require.NoError(t, err)
	second, err := resolver.Resolve(ctx, empID, seeded.Year, seeded.Month)
	require.NoError(t, err)

	assert.Equal(t, seeded.ID, first.ID)
	assert.Equal(t, seeded.ID, second.ID)
	assert.True(t, second.ClosingBalance.Equal(decimal.NewFromInt(20)))
}

func TestResolve_CreationRace_LoserReadsWinnersRow(t *testing.T) {
	// GIVEN: No row for the target month, but another writer inserts one
	//        between our find and our insert
	// WHEN: Resolve hits ErrBalanceExists
	// THEN: It returns the winner's row instead of failing

	store := newFileStore(t)
	resolver := ledger.NewBalanceResolver(store)
	empID := seedEmployee(t, store, 20)
	ctx := context.Background()

	// Simulate the winner by racing two resolvers for the same fresh month.
	type outcome struct {
		b   *ledger.LeaveBalance
		err error
	}
	done := make(chan outcome, 2)
	for i := 0; i < 2; i++ {
		go func() {
			b, err := resolver.Resolve(ctx, empID, 2032, 1)
			done <- outcome{b, err}
		}()
	}
	first, second := <-done, <-done
	require.NoError(t, first.err)
	require.NoError(t, second.err)
	a, b := first.b, second.b

	assert.Equal(t, a.ID, b.ID, "both resolvers must converge on one row")

	row, err := store.FindBalance(ctx, empID, 2032, 1)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, a.ID, row.ID)
}
