package models

import (
	"strings"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/money"
)

// AccountType represents the type of account
type AccountType string

const (
	AccountTypeBank    AccountType = "bank"
	AccountTypeCard    AccountType = "card"
	AccountTypeCash    AccountType = "cash"
	AccountTypeWallet  AccountType = "wallet"
	AccountTypeDebt    AccountType = "debt"
	AccountTypeSavings AccountType = "savings"
	AccountTypeOther   AccountType = "other"
)

// AccountTypes lists every supported account type.
var AccountTypes = []AccountType{
	AccountTypeBank,
	AccountTypeCard,
	AccountTypeCash,
	AccountTypeWallet,
	AccountTypeDebt,
	AccountTypeSavings,
	AccountTypeOther,
}

// Valid reports whether t is a supported account type.
func (t AccountType) Valid() bool {
	for _, v := range AccountTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Account is a named money container. Balance is the opening balance set at
// creation (or rewritten by an edit); the current balance is always derived
// from the transactions that touch the account.
type Account struct {
	Base
	Name    string       `gorm:"not null;index" json:"name"`
	Type    AccountType  `gorm:"not null" json:"type"`
	Balance money.Amount `gorm:"type:bigint;not null;default:0" json:"balance"`
}

// Validate checks the account's own fields.
func (a *Account) Validate() error {
	a.Name = strings.TrimSpace(a.Name)
	if a.Name == "" {
		return apperrors.WithField(apperrors.ErrInvalidInput, "name", "account name is required")
	}
	if !a.Type.Valid() {
		return apperrors.WithField(apperrors.ErrInvalidInput, "type", "unsupported account type: "+string(a.Type))
	}
	return nil
}
