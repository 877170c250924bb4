package models

import (
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/money"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

// Valid reports whether t is a supported transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeTransfer:
		return true
	}
	return false
}

// Debits reports whether the type takes money out of the owning account.
func (t TransactionType) Debits() bool {
	return t == TransactionTypeExpense || t == TransactionTypeTransfer
}

// Transaction is a single money movement. Amount is always positive; its
// direction comes from Type and from which side of the row an account sits.
type Transaction struct {
	Base
	AccountID   string          `gorm:"type:varchar(36);not null;index" json:"account_id"`
	Type        TransactionType `gorm:"not null;index" json:"type"`
	Amount      money.Amount    `gorm:"type:bigint;not null" json:"amount"`
	Date        time.Time       `gorm:"not null;index" json:"date"`
	Description string          `json:"description"`

	// Only for income and expense
	RelatedIncomeID *string `gorm:"type:varchar(36);index" json:"related_income_id,omitempty"`

	// Only for transfers
	TransferAccountID *string `gorm:"type:varchar(36);index" json:"transfer_account_id,omitempty"`
}

// Validate checks the row invariants: a positive amount, a known type, an
// owning account, an income group only on income/expense, and a distinct
// counterpart only on transfers.
func (t *Transaction) Validate() error {
	return t.validate(false)
}

// ValidateEdit validates t as an edit of previous. A transfer whose
// counterpart was cleared by an account deletion may stay one-sided, but an
// edit cannot clear a counterpart that is still set.
func (t *Transaction) ValidateEdit(previous *Transaction) error {
	detached := previous.Type == TransactionTypeTransfer && previous.TransferAccountID == nil
	return t.validate(detached)
}

func (t *Transaction) validate(allowDetached bool) error {
	if !t.Type.Valid() {
		return apperrors.WithField(apperrors.ErrInvalidTransactionType, "type", "")
	}
	if t.Amount <= 0 {
		return apperrors.WithField(apperrors.ErrInvalidInput, "amount", "amount must be greater than zero")
	}
	if t.AccountID == "" {
		return apperrors.WithField(apperrors.ErrInvalidInput, "account_id", "account is required")
	}

	switch t.Type {
	case TransactionTypeTransfer:
		if t.RelatedIncomeID != nil {
			return apperrors.WithField(apperrors.ErrInvalidInput, "related_income_id", "transfers cannot belong to an income group")
		}
		if t.TransferAccountID == nil && allowDetached {
			return nil
		}
		if t.TransferAccountID == nil || *t.TransferAccountID == "" {
			return apperrors.WithField(apperrors.ErrInvalidInput, "to_account_id", "destination account is required")
		}
		if *t.TransferAccountID == t.AccountID {
			return apperrors.ErrSameAccountTransfer
		}
	default:
		if t.TransferAccountID != nil {
			return apperrors.WithField(apperrors.ErrInvalidInput, "to_account_id", "only transfers have a destination account")
		}
	}
	return nil
}
