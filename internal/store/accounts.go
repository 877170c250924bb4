package store

import (
	"context"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/live"
	"fintrack/internal/models"
)

// CreateAccount inserts a and sets its assigned ID.
func (s *Store) CreateAccount(ctx context.Context, a *models.Account) error {
	if err := s.DB(ctx).Create(a).Error; err != nil {
		return storageErr(err)
	}
	s.changed(live.Accounts)
	return nil
}

// UpdateAccount rewrites the name, type and opening balance of a.
func (s *Store) UpdateAccount(ctx context.Context, a *models.Account) error {
	res := s.DB(ctx).Model(a).
		Select("name", "type", "balance", "updated_at").
		Updates(a)
	if res.Error != nil {
		return storageErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrAccountNotFound
	}
	s.changed(live.Accounts)
	return nil
}

// GetAccount returns the account with id.
func (s *Store) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	if err := s.DB(ctx).Where("id = ?", id).First(&account).Error; err != nil {
		return nil, lookupErr(err, apperrors.ErrAccountNotFound)
	}
	return &account, nil
}

// GetAccountByName returns the oldest account called name.
func (s *Store) GetAccountByName(ctx context.Context, name string) (*models.Account, error) {
	var account models.Account
	if err := s.DB(ctx).Where("name = ?", name).Order("created_at ASC, id ASC").First(&account).Error; err != nil {
		return nil, lookupErr(err, apperrors.ErrAccountNotFound)
	}
	return &account, nil
}

// ListAccounts returns every account in creation order.
func (s *Store) ListAccounts(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := s.DB(ctx).Order("created_at ASC, id ASC").Find(&accounts).Error; err != nil {
		return nil, storageErr(err)
	}
	return accounts, nil
}

// DeleteAccount removes the account with id together with every transaction
// it owns. Transfers that name it as the destination are kept with their
// counterpart cleared. Income groups that lose expenses get their stored
// remaining snapshot refreshed. All of it happens in one atomic unit.
func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	return s.Atomic(ctx, func(tx *Store) error {
		if _, err := tx.GetAccount(ctx, id); err != nil {
			return err
		}
		db := tx.DB(ctx)

		var groupIDs []string
		if err := db.Model(&models.Transaction{}).
			Where("account_id = ? AND related_income_id IS NOT NULL", id).
			Distinct().
			Pluck("related_income_id", &groupIDs).Error; err != nil {
			return storageErr(err)
		}

		if err := db.Where("account_id = ?", id).Delete(&models.Transaction{}).Error; err != nil {
			return storageErr(err)
		}
		if err := db.Model(&models.Transaction{}).
			Where("transfer_account_id = ?", id).
			Update("transfer_account_id", nil).Error; err != nil {
			return storageErr(err)
		}
		if err := db.Where("id = ?", id).Delete(&models.Account{}).Error; err != nil {
			return storageErr(err)
		}
		tx.changed(live.Accounts, live.Transactions)

		return tx.RefreshRemaining(ctx, groupIDs...)
	})
}
