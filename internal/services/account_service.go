package services

import (
	"context"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/money"
	"fintrack/internal/store"
)

// accountService handles account-related business logic.
type accountService struct {
	store *store.Store
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(s *store.Store) AccountServicer {
	return &accountService{store: s}
}

// CreateAccount creates an account with the given opening balance. An empty
// type defaults to "other".
func (s *accountService) CreateAccount(ctx context.Context, name string, accountType models.AccountType, openingBalance money.Amount) (*models.Account, error) {
	if accountType == "" {
		accountType = models.AccountTypeOther
	}

	account := &models.Account{
		Name:    name,
		Type:    accountType,
		Balance: openingBalance,
	}
	if err := account.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	logger.Get().Infow("account created", "account_id", account.ID, "type", account.Type)
	return account, nil
}

// GetAccountByID returns the account with id.
func (s *accountService) GetAccountByID(ctx context.Context, id string) (*models.Account, error) {
	return s.store.GetAccount(ctx, id)
}

// GetAccountByName returns the oldest account with the given name.
func (s *accountService) GetAccountByName(ctx context.Context, name string) (*models.Account, error) {
	return s.store.GetAccountByName(ctx, name)
}

// ListAccounts returns every account in creation order.
func (s *accountService) ListAccounts(ctx context.Context) ([]models.Account, error) {
	return s.store.ListAccounts(ctx)
}

// UpdateAccount rewrites the name, type or opening balance of an account.
// Derived balances follow on the next read.
func (s *accountService) UpdateAccount(ctx context.Context, id string, fields AccountUpdate) (*models.Account, error) {
	var account *models.Account
	err := s.store.Atomic(ctx, func(tx *store.Store) error {
		var err error
		account, err = tx.GetAccount(ctx, id)
		if err != nil {
			return err
		}

		if fields.Name != nil {
			account.Name = *fields.Name
		}
		if fields.Type != nil {
			account.Type = *fields.Type
		}
		if fields.OpeningBalance != nil {
			account.Balance = *fields.OpeningBalance
		}
		if err := account.Validate(); err != nil {
			return err
		}
		return tx.UpdateAccount(ctx, account)
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// DeleteAccount removes the account and every transaction it owns. Transfers
// into it from other accounts are kept with the counterpart cleared.
func (s *accountService) DeleteAccount(ctx context.Context, id string) error {
	if err := s.store.DeleteAccount(ctx, id); err != nil {
		return err
	}
	logger.Get().Infow("account deleted", "account_id", id)
	return nil
}

// requireAccount resolves an account reference and attributes a miss to field.
func requireAccount(ctx context.Context, tx *store.Store, id, field string) (*models.Account, error) {
	if id == "" {
		return nil, apperrors.WithField(apperrors.ErrInvalidInput, field, "account is required")
	}
	account, err := tx.GetAccount(ctx, id)
	if err != nil {
		return nil, apperrors.AttachField(err, field)
	}
	return account, nil
}
