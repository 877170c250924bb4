package services

import (
	"context"
	"strings"
	"testing"
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/testutil"
)

func TestCheckDebit(t *testing.T) {
	ctx := context.Background()

	t.Run("sufficient", func(t *testing.T) {
		l := setupLedger(t)
		account := testutil.CreateTestAccount(t, l.db, amount(t, "50"))

		testutil.AssertNoError(t, l.guard.CheckDebit(ctx, account.ID, amount(t, "50"), ""))
	})

	t.Run("insufficient", func(t *testing.T) {
		l := setupLedger(t)
		account := testutil.CreateTestAccountNamed(t, l.db, "Wallet", amount(t, "50"))
		_, err := l.txns.AddExpense(ctx, account.ID, amount(t, "20"), "", nil, time.Time{})
		testutil.AssertNoError(t, err)

		err = l.guard.CheckDebit(ctx, account.ID, amount(t, "30.01"), "")
		testutil.AssertAppError(t, err, "INSUFFICIENT_FUNDS")
		testutil.AssertErrorField(t, err, "amount")
		if !apperrors.IsInsufficientFunds(err) {
			t.Error("expected insufficient funds kind")
		}
		if !strings.Contains(err.Error(), "0.01") {
			t.Errorf("expected message to name the shortfall, got %q", err.Error())
		}
	})

	t.Run("counts_incoming_transfers", func(t *testing.T) {
		l := setupLedger(t)
		from := testutil.CreateTestAccount(t, l.db, amount(t, "100"))
		to := testutil.CreateTestAccount(t, l.db, 0)
		_, err := l.txns.MakeTransfer(ctx, from.ID, to.ID, amount(t, "40"), "", time.Time{})
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, l.guard.CheckDebit(ctx, to.ID, amount(t, "40"), ""))
		err = l.guard.CheckDebit(ctx, from.ID, amount(t, "60.01"), "")
		testutil.AssertAppError(t, err, "INSUFFICIENT_FUNDS")
	})

	t.Run("excludes_edited_transaction", func(t *testing.T) {
		l := setupLedger(t)
		account := testutil.CreateTestAccount(t, l.db, amount(t, "100"))
		tx, err := l.txns.AddExpense(ctx, account.ID, amount(t, "80"), "", nil, time.Time{})
		testutil.AssertNoError(t, err)

		// Re-validating the same expense at 90 must not count the old 80.
		testutil.AssertNoError(t, l.guard.CheckDebit(ctx, account.ID, amount(t, "90"), tx.ID))

		err = l.guard.CheckDebit(ctx, account.ID, amount(t, "90"), "")
		testutil.AssertAppError(t, err, "INSUFFICIENT_FUNDS")
	})

	t.Run("missing_account", func(t *testing.T) {
		l := setupLedger(t)

		err := l.guard.CheckDebit(ctx, "missing", amount(t, "1"), "")
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
		testutil.AssertErrorField(t, err, "account_id")
		if !apperrors.IsReference(err) {
			t.Error("expected reference kind")
		}
	})

	t.Run("invalid_amount", func(t *testing.T) {
		l := setupLedger(t)
		account := testutil.CreateTestAccount(t, l.db, amount(t, "100"))

		err := l.guard.CheckDebit(ctx, account.ID, 0, "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestCheckIncomeGroup(t *testing.T) {
	ctx := context.Background()
	l := setupLedger(t)
	group := testutil.CreateTestIncomeGroup(t, l.db, amount(t, "10"))

	testutil.AssertNoError(t, l.guard.CheckIncomeGroup(ctx, group.ID))

	err := l.guard.CheckIncomeGroup(ctx, "missing")
	testutil.AssertAppError(t, err, "INCOME_GROUP_NOT_FOUND")
	testutil.AssertErrorField(t, err, "related_income_id")
}

func TestCheckAccount(t *testing.T) {
	ctx := context.Background()
	l := setupLedger(t)
	account := testutil.CreateTestAccount(t, l.db, 0)

	testutil.AssertNoError(t, l.guard.CheckAccount(ctx, account.ID))

	err := l.guard.CheckAccount(ctx, "missing")
	testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	testutil.AssertErrorField(t, err, "account_id")
}
