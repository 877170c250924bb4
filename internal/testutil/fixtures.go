package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"fintrack/internal/models"
	"fintrack/internal/money"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Cents is shorthand for building amounts from whole units in fixtures.
func Cents(units int64) money.Amount {
	return money.FromCents(units * 100)
}

// CreateTestAccount creates a cash account with the given opening balance.
func CreateTestAccount(t *testing.T, db *gorm.DB, balance money.Amount) *models.Account {
	t.Helper()
	return CreateTestAccountNamed(t, db, fmt.Sprintf("Test Account %d", nextID()), balance)
}

// CreateTestAccountNamed creates a cash account with the given name and opening balance.
func CreateTestAccountNamed(t *testing.T, db *gorm.DB, name string, balance money.Amount) *models.Account {
	t.Helper()

	account := &models.Account{
		Name:    name,
		Type:    models.AccountTypeCash,
		Balance: balance,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestIncomeGroup creates an income group with the given allotment.
func CreateTestIncomeGroup(t *testing.T, db *gorm.DB, amount money.Amount) *models.IncomeGroup {
	t.Helper()

	group := &models.IncomeGroup{
		Name:      fmt.Sprintf("Test Group %d", nextID()),
		Amount:    amount,
		Remaining: amount,
	}
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("failed to create test income group: %v", err)
	}
	return group
}

// CreateTestTransaction inserts an income or expense row directly, bypassing
// the service layer.
func CreateTestTransaction(t *testing.T, db *gorm.DB, accountID string, txType models.TransactionType, amount money.Amount) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		AccountID:   accountID,
		Type:        txType,
		Amount:      amount,
		Date:        time.Now().UTC(),
		Description: "Test transaction",
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestTransfer inserts a transfer row directly.
func CreateTestTransfer(t *testing.T, db *gorm.DB, fromID, toID string, amount money.Amount) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		AccountID:         fromID,
		TransferAccountID: &toID,
		Type:              models.TransactionTypeTransfer,
		Amount:            amount,
		Date:              time.Now().UTC(),
		Description:       "Test transfer",
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transfer: %v", err)
	}
	return tx
}
