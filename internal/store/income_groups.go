package store

import (
	"context"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/live"
	"fintrack/internal/models"
)

// CreateIncomeGroup inserts g and sets its assigned ID. The stored remaining
// snapshot starts at the full allotment.
func (s *Store) CreateIncomeGroup(ctx context.Context, g *models.IncomeGroup) error {
	g.Remaining = g.Amount
	if err := s.DB(ctx).Create(g).Error; err != nil {
		return storageErr(err)
	}
	s.changed(live.IncomeGroups)
	return nil
}

// UpdateIncomeGroup rewrites the name and allotment of g and refreshes its
// remaining snapshot.
func (s *Store) UpdateIncomeGroup(ctx context.Context, g *models.IncomeGroup) error {
	return s.Atomic(ctx, func(tx *Store) error {
		res := tx.DB(ctx).Model(g).
			Select("name", "amount", "updated_at").
			Updates(g)
		if res.Error != nil {
			return storageErr(res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrIncomeGroupNotFound
		}
		tx.changed(live.IncomeGroups)
		return tx.RefreshRemaining(ctx, g.ID)
	})
}

// GetIncomeGroup returns the income group with id.
func (s *Store) GetIncomeGroup(ctx context.Context, id string) (*models.IncomeGroup, error) {
	var g models.IncomeGroup
	if err := s.DB(ctx).Where("id = ?", id).First(&g).Error; err != nil {
		return nil, lookupErr(err, apperrors.ErrIncomeGroupNotFound)
	}
	return &g, nil
}

// GetIncomeGroupByName returns the oldest income group called name.
func (s *Store) GetIncomeGroupByName(ctx context.Context, name string) (*models.IncomeGroup, error) {
	var g models.IncomeGroup
	if err := s.DB(ctx).Where("name = ?", name).Order("created_at ASC, id ASC").First(&g).Error; err != nil {
		return nil, lookupErr(err, apperrors.ErrIncomeGroupNotFound)
	}
	return &g, nil
}

// ListIncomeGroups returns every income group in creation order.
func (s *Store) ListIncomeGroups(ctx context.Context) ([]models.IncomeGroup, error) {
	var groups []models.IncomeGroup
	if err := s.DB(ctx).Order("created_at ASC, id ASC").Find(&groups).Error; err != nil {
		return nil, storageErr(err)
	}
	return groups, nil
}

// DeleteIncomeGroup removes the group with id. Transactions attributed to it
// survive with their income group reference cleared.
func (s *Store) DeleteIncomeGroup(ctx context.Context, id string) error {
	return s.Atomic(ctx, func(tx *Store) error {
		if _, err := tx.GetIncomeGroup(ctx, id); err != nil {
			return err
		}
		db := tx.DB(ctx)
		if err := db.Model(&models.Transaction{}).
			Where("related_income_id = ?", id).
			Update("related_income_id", nil).Error; err != nil {
			return storageErr(err)
		}
		if err := db.Where("id = ?", id).Delete(&models.IncomeGroup{}).Error; err != nil {
			return storageErr(err)
		}
		tx.changed(live.IncomeGroups, live.Transactions)
		return nil
	})
}

// RefreshRemaining recomputes the stored remaining snapshot of the given
// groups from their expenses. Readers never rely on the snapshot; it is kept
// current so older exports carry a sensible value.
func (s *Store) RefreshRemaining(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	err := s.DB(ctx).Exec(`
		UPDATE income_groups
		SET remaining = amount - COALESCE((
			SELECT SUM(t.amount) FROM transactions t
			WHERE t.related_income_id = income_groups.id AND t.type = ?
		), 0)
		WHERE id IN ?`, models.TransactionTypeExpense, ids).Error
	if err != nil {
		return storageErr(err)
	}
	s.changed(live.IncomeGroups)
	return nil
}
