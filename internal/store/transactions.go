package store

import (
	"context"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/live"
	"fintrack/internal/models"
)

// CreateTransaction inserts t and sets its assigned ID.
func (s *Store) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	if err := s.DB(ctx).Create(t).Error; err != nil {
		return storageErr(err)
	}
	s.changed(live.Transactions)
	return nil
}

// UpdateTransaction rewrites every mutable column of t, including clearing
// nullable references that were set to nil.
func (s *Store) UpdateTransaction(ctx context.Context, t *models.Transaction) error {
	res := s.DB(ctx).Model(t).
		Select("account_id", "type", "amount", "date", "description",
			"related_income_id", "transfer_account_id", "updated_at").
		Updates(t)
	if res.Error != nil {
		return storageErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}
	s.changed(live.Transactions)
	return nil
}

// DeleteTransaction removes the transaction with id.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	res := s.DB(ctx).Where("id = ?", id).Delete(&models.Transaction{})
	if res.Error != nil {
		return storageErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}
	s.changed(live.Transactions)
	return nil
}

// GetTransaction returns the transaction with id.
func (s *Store) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	var t models.Transaction
	if err := s.DB(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, lookupErr(err, apperrors.ErrTransactionNotFound)
	}
	return &t, nil
}

// ListTransactions returns every transaction in insertion order.
func (s *Store) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := s.DB(ctx).Order("created_at ASC, id ASC").Find(&transactions).Error; err != nil {
		return nil, storageErr(err)
	}
	return transactions, nil
}
