package services

import (
	"context"
	"errors"
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/money"
	"fintrack/internal/store"
)

// transactionService handles the ledger operations.
type transactionService struct {
	store *store.Store
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(s *store.Store) TransactionServicer {
	return &transactionService{store: s}
}

// AddIncome records money coming into an account.
func (s *transactionService) AddIncome(
	ctx context.Context,
	accountID string,
	amount money.Amount,
	description string,
	relatedIncomeID *string,
	date time.Time,
) (*models.Transaction, error) {
	return s.record(ctx, models.TransactionTypeIncome, accountID, amount, description, relatedIncomeID, date)
}

// AddExpense records money leaving an account. It does not check that the
// account can cover the amount; callers run the FundsGuard first.
func (s *transactionService) AddExpense(
	ctx context.Context,
	accountID string,
	amount money.Amount,
	description string,
	relatedIncomeID *string,
	date time.Time,
) (*models.Transaction, error) {
	return s.record(ctx, models.TransactionTypeExpense, accountID, amount, description, relatedIncomeID, date)
}

func (s *transactionService) record(
	ctx context.Context,
	transactionType models.TransactionType,
	accountID string,
	amount money.Amount,
	description string,
	relatedIncomeID *string,
	date time.Time,
) (*models.Transaction, error) {
	transaction := &models.Transaction{
		AccountID:   accountID,
		Type:        transactionType,
		Amount:      amount,
		Date:        normalizeDate(date),
		Description: description,
	}
	if relatedIncomeID != nil {
		transaction.RelatedIncomeID = optionalID(*relatedIncomeID)
	}
	if err := transaction.Validate(); err != nil {
		return nil, err
	}

	err := s.store.Atomic(ctx, func(tx *store.Store) error {
		if _, err := requireAccount(ctx, tx, transaction.AccountID, "account_id"); err != nil {
			return err
		}
		if err := requireIncomeGroup(ctx, tx, transaction.RelatedIncomeID); err != nil {
			return err
		}
		if err := tx.CreateTransaction(ctx, transaction); err != nil {
			return err
		}
		return refreshGroups(ctx, tx, transaction.RelatedIncomeID)
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Infow("transaction recorded",
		"transaction_id", transaction.ID,
		"type", transaction.Type,
		"account_id", transaction.AccountID,
		"amount", transaction.Amount.String(),
	)
	return transaction, nil
}

// MakeTransfer moves amount from one account to another as a single
// transfer row. Both accounts are re-read inside the same atomic unit as
// the insert, and neither account's stored opening balance is touched:
// both legs of the transfer are derived from the one row.
func (s *transactionService) MakeTransfer(
	ctx context.Context,
	fromAccountID, toAccountID string,
	amount money.Amount,
	description string,
	date time.Time,
) (*models.Transaction, error) {
	transaction := &models.Transaction{
		AccountID:         fromAccountID,
		Type:              models.TransactionTypeTransfer,
		Amount:            amount,
		Date:              normalizeDate(date),
		Description:       description,
		TransferAccountID: optionalID(toAccountID),
	}
	if err := transaction.Validate(); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Field == "account_id" {
			return nil, apperrors.WithField(apperrors.ErrInvalidInput, "from_account_id", appErr.Message)
		}
		return nil, err
	}

	err := s.store.Atomic(ctx, func(tx *store.Store) error {
		if _, err := requireAccount(ctx, tx, fromAccountID, "from_account_id"); err != nil {
			return err
		}
		if _, err := requireAccount(ctx, tx, toAccountID, "to_account_id"); err != nil {
			return err
		}
		return tx.CreateTransaction(ctx, transaction)
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Infow("transfer recorded",
		"transaction_id", transaction.ID,
		"from_account_id", fromAccountID,
		"to_account_id", toAccountID,
		"amount", transaction.Amount.String(),
	)
	return transaction, nil
}

// GetTransactionByID returns the transaction with id.
func (s *transactionService) GetTransactionByID(ctx context.Context, id string) (*models.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

// EditTransaction updates a transaction in place. References are re-checked
// against the current rows; no balance reconciliation is needed because
// every balance is derived.
func (s *transactionService) EditTransaction(ctx context.Context, id string, fields TransactionUpdate) (*models.Transaction, error) {
	var updated models.Transaction
	err := s.store.Atomic(ctx, func(tx *store.Store) error {
		existing, err := tx.GetTransaction(ctx, id)
		if err != nil {
			return err
		}

		updated = fields.Apply(*existing)
		if err := updated.ValidateEdit(existing); err != nil {
			return err
		}
		if _, err := requireAccount(ctx, tx, updated.AccountID, "account_id"); err != nil {
			return err
		}
		if updated.TransferAccountID != nil {
			if _, err := requireAccount(ctx, tx, *updated.TransferAccountID, "to_account_id"); err != nil {
				return err
			}
		}
		if err := requireIncomeGroup(ctx, tx, updated.RelatedIncomeID); err != nil {
			return err
		}

		if err := tx.UpdateTransaction(ctx, &updated); err != nil {
			return err
		}
		return refreshGroups(ctx, tx, existing.RelatedIncomeID, updated.RelatedIncomeID)
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Infow("transaction edited", "transaction_id", id)
	return &updated, nil
}

// DeleteTransaction removes a transaction. Derived balances correct
// themselves on the next read.
func (s *transactionService) DeleteTransaction(ctx context.Context, id string) error {
	err := s.store.Atomic(ctx, func(tx *store.Store) error {
		existing, err := tx.GetTransaction(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.DeleteTransaction(ctx, id); err != nil {
			return err
		}
		return refreshGroups(ctx, tx, existing.RelatedIncomeID)
	})
	if err != nil {
		return err
	}

	logger.Get().Infow("transaction deleted", "transaction_id", id)
	return nil
}

func requireIncomeGroup(ctx context.Context, tx *store.Store, id *string) error {
	if id == nil {
		return nil
	}
	if _, err := tx.GetIncomeGroup(ctx, *id); err != nil {
		return apperrors.AttachField(err, "related_income_id")
	}
	return nil
}

// refreshGroups updates the stored remaining snapshot of every non-nil group.
func refreshGroups(ctx context.Context, tx *store.Store, ids ...*string) error {
	var groupIDs []string
	for _, id := range ids {
		if id != nil {
			groupIDs = append(groupIDs, *id)
		}
	}
	return tx.RefreshRemaining(ctx, groupIDs...)
}

func normalizeDate(date time.Time) time.Time {
	if date.IsZero() {
		return time.Now().UTC()
	}
	return date.UTC()
}
