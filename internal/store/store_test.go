package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/live"
	"fintrack/internal/models"
	"fintrack/internal/money"
	"fintrack/internal/store"
	"fintrack/internal/testutil"
)

func setup(t *testing.T) (*store.Store, *live.Hub) {
	t.Helper()
	hub := live.NewHub()
	return store.New(testutil.SetupTestDB(t), hub), hub
}

func notified(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestStore_AccountCRUD(t *testing.T) {
	ctx := context.Background()
	s, hub := setup(t)
	changes, cancel := hub.Subscribe(live.Accounts)
	defer cancel()

	a := &models.Account{Name: "Wallet", Type: models.AccountTypeWallet, Balance: testutil.Cents(20)}
	require.NoError(t, s.CreateAccount(ctx, a))
	assert.NotEmpty(t, a.ID)
	assert.True(t, notified(changes))

	t.Run("get by id and name", func(t *testing.T) {
		got, err := s.GetAccount(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "Wallet", got.Name)

		byName, err := s.GetAccountByName(ctx, "Wallet")
		require.NoError(t, err)
		assert.Equal(t, a.ID, byName.ID)
	})

	t.Run("update rewrites fields", func(t *testing.T) {
		a.Name = "Pocket"
		a.Balance = 0
		require.NoError(t, s.UpdateAccount(ctx, a))

		got, err := s.GetAccount(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "Pocket", got.Name)
		assert.Equal(t, int64(0), got.Balance.Cents())
	})

	t.Run("missing account", func(t *testing.T) {
		_, err := s.GetAccount(ctx, "missing")
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")

		err = s.UpdateAccount(ctx, &models.Account{Base: models.Base{ID: "missing"}, Name: "x", Type: models.AccountTypeCash})
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})
}

func TestStore_DeleteAccountCascades(t *testing.T) {
	ctx := context.Background()
	s, _ := setup(t)
	db := s.DB(ctx)

	a := testutil.CreateTestAccount(t, db, testutil.Cents(100))
	b := testutil.CreateTestAccount(t, db, 0)
	group := testutil.CreateTestIncomeGroup(t, db, testutil.Cents(50))

	expense := testutil.CreateTestTransaction(t, db, a.ID, models.TransactionTypeExpense, testutil.Cents(10))
	expense.RelatedIncomeID = &group.ID
	require.NoError(t, s.UpdateTransaction(ctx, expense))
	require.NoError(t, s.RefreshRemaining(ctx, group.ID))

	outgoing := testutil.CreateTestTransfer(t, db, a.ID, b.ID, testutil.Cents(5))
	incoming := testutil.CreateTestTransfer(t, db, b.ID, a.ID, testutil.Cents(7))

	require.NoError(t, s.DeleteAccount(ctx, a.ID))

	_, err := s.GetAccount(ctx, a.ID)
	testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")

	_, err = s.GetTransaction(ctx, expense.ID)
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	_, err = s.GetTransaction(ctx, outgoing.ID)
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")

	kept, err := s.GetTransaction(ctx, incoming.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.TransferAccountID, "counterpart reference should be cleared")
	assert.Equal(t, b.ID, kept.AccountID)

	g, err := s.GetIncomeGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, group.Amount, g.Remaining, "remaining snapshot should be refreshed")
}

func TestStore_DeleteIncomeGroupClearsReference(t *testing.T) {
	ctx := context.Background()
	s, _ := setup(t)
	db := s.DB(ctx)

	a := testutil.CreateTestAccount(t, db, 0)
	group := testutil.CreateTestIncomeGroup(t, db, testutil.Cents(30))
	income := testutil.CreateTestTransaction(t, db, a.ID, models.TransactionTypeIncome, testutil.Cents(30))
	income.RelatedIncomeID = &group.ID
	require.NoError(t, s.UpdateTransaction(ctx, income))

	require.NoError(t, s.DeleteIncomeGroup(ctx, group.ID))

	got, err := s.GetTransaction(ctx, income.ID)
	require.NoError(t, err)
	assert.Nil(t, got.RelatedIncomeID)

	err = s.DeleteIncomeGroup(ctx, group.ID)
	testutil.AssertAppError(t, err, "INCOME_GROUP_NOT_FOUND")
}

func TestStore_RefreshRemaining(t *testing.T) {
	ctx := context.Background()
	s, _ := setup(t)
	db := s.DB(ctx)

	a := testutil.CreateTestAccount(t, db, testutil.Cents(100))
	group := &models.IncomeGroup{Name: "Food", Amount: testutil.Cents(40)}
	require.NoError(t, s.CreateIncomeGroup(ctx, group))
	assert.Equal(t, group.Amount, group.Remaining)

	for _, cents := range []int64{500, 1250} {
		tx := testutil.CreateTestTransaction(t, db, a.ID, models.TransactionTypeExpense, money.FromCents(cents))
		tx.RelatedIncomeID = &group.ID
		require.NoError(t, s.UpdateTransaction(ctx, tx))
	}
	// Income rows never count against a group.
	income := testutil.CreateTestTransaction(t, db, a.ID, models.TransactionTypeIncome, testutil.Cents(40))
	income.RelatedIncomeID = &group.ID
	require.NoError(t, s.UpdateTransaction(ctx, income))

	require.NoError(t, s.RefreshRemaining(ctx, group.ID))

	got, err := s.GetIncomeGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2250), got.Remaining.Cents())

	require.NoError(t, s.RefreshRemaining(ctx))
}

func TestStore_UpdateTransactionClearsReferences(t *testing.T) {
	ctx := context.Background()
	s, _ := setup(t)
	db := s.DB(ctx)

	a := testutil.CreateTestAccount(t, db, 0)
	group := testutil.CreateTestIncomeGroup(t, db, testutil.Cents(10))
	tx := testutil.CreateTestTransaction(t, db, a.ID, models.TransactionTypeIncome, testutil.Cents(10))
	tx.RelatedIncomeID = &group.ID
	require.NoError(t, s.UpdateTransaction(ctx, tx))

	tx.RelatedIncomeID = nil
	tx.Description = "edited"
	require.NoError(t, s.UpdateTransaction(ctx, tx))

	got, err := s.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Nil(t, got.RelatedIncomeID)
	assert.Equal(t, "edited", got.Description)

	err = s.DeleteTransaction(ctx, "missing")
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
}

func TestStore_AtomicRollsBackAndStaysQuiet(t *testing.T) {
	ctx := context.Background()
	s, hub := setup(t)
	changes, cancel := hub.Subscribe(live.AllTables...)
	defer cancel()

	boom := errors.New("boom")
	err := s.Atomic(ctx, func(tx *store.Store) error {
		assert.True(t, tx.InTransaction())
		require.NoError(t, tx.CreateAccount(ctx, &models.Account{Name: "Temp", Type: models.AccountTypeCash}))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, notified(changes), "rolled back work must not notify")

	accounts, err := s.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, accounts)

	err = s.Atomic(ctx, func(tx *store.Store) error {
		return tx.CreateAccount(ctx, &models.Account{Name: "Kept", Type: models.AccountTypeCash})
	})
	require.NoError(t, err)
	assert.True(t, notified(changes))
}

func TestStore_AtomicNestedJoinsOuter(t *testing.T) {
	ctx := context.Background()
	s, _ := setup(t)

	err := s.Atomic(ctx, func(tx *store.Store) error {
		require.NoError(t, tx.CreateAccount(ctx, &models.Account{Name: "Outer", Type: models.AccountTypeCash}))
		return tx.Atomic(ctx, func(inner *store.Store) error {
			require.NoError(t, inner.CreateAccount(ctx, &models.Account{Name: "Inner", Type: models.AccountTypeCash}))
			return apperrors.ErrInvalidInput
		})
	})
	testutil.AssertAppError(t, err, "INVALID_INPUT")

	accounts, err := s.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestStore_WipeAll(t *testing.T) {
	ctx := context.Background()
	s, _ := setup(t)
	db := s.DB(ctx)

	a := testutil.CreateTestAccount(t, db, 0)
	testutil.CreateTestIncomeGroup(t, db, testutil.Cents(1))
	testutil.CreateTestTransaction(t, db, a.ID, models.TransactionTypeIncome, testutil.Cents(1))

	require.NoError(t, s.WipeAll(ctx))

	accounts, err := s.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, accounts)
	txns, err := s.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, txns)
	groups, err := s.ListIncomeGroups(ctx)
	require.NoError(t, err)
	assert.Empty(t, groups)
}
