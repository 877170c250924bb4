package services

import (
	"context"
	"fmt"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/money"
	"fintrack/internal/store"
)

// fundsGuard checks derived balances before money leaves an account.
type fundsGuard struct {
	store *store.Store
}

// NewFundsGuard creates a new FundsGuard.
func NewFundsGuard(s *store.Store) FundsGuard {
	return &fundsGuard{store: s}
}

// CheckDebit reports a reference error on account_id when the account is
// missing, and an insufficient-funds error on amount when its derived
// balance, computed without excludeTransactionID, is below amount. Pass the
// id of the transaction being edited so it is not counted twice.
func (g *fundsGuard) CheckDebit(ctx context.Context, accountID string, amount money.Amount, excludeTransactionID string) error {
	if accountID == "" {
		return apperrors.WithField(apperrors.ErrInvalidInput, "account_id", "account is required")
	}
	if amount <= 0 {
		return apperrors.WithField(apperrors.ErrInvalidInput, "amount", "amount must be greater than zero")
	}

	balance, err := accountBalance(ctx, g.store, accountID, excludeTransactionID)
	if err != nil {
		return apperrors.AttachField(err, "account_id")
	}

	if balance.Balance < amount {
		return apperrors.WithField(apperrors.ErrInsufficientFunds, "amount",
			fmt.Sprintf("insufficient funds in %q: available %s, requested %s (short by %s)",
				balance.Name, balance.Balance, amount, amount-balance.Balance))
	}
	return nil
}

// CheckAccount reports a reference error on account_id when the account is
// missing.
func (g *fundsGuard) CheckAccount(ctx context.Context, accountID string) error {
	if _, err := g.store.GetAccount(ctx, accountID); err != nil {
		return apperrors.AttachField(err, "account_id")
	}
	return nil
}

// CheckIncomeGroup reports a reference error on related_income_id when the
// group is missing.
func (g *fundsGuard) CheckIncomeGroup(ctx context.Context, id string) error {
	if _, err := g.store.GetIncomeGroup(ctx, id); err != nil {
		return apperrors.AttachField(err, "related_income_id")
	}
	return nil
}

func storageError(err error) error {
	return apperrors.Wrap(apperrors.ErrStorage, err)
}
