package services

import (
	"context"

	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/money"
	"fintrack/internal/store"
)

// incomeGroupService handles income group business logic.
type incomeGroupService struct {
	store *store.Store
}

// NewIncomeGroupService creates a new IncomeGroupServicer.
func NewIncomeGroupService(s *store.Store) IncomeGroupServicer {
	return &incomeGroupService{store: s}
}

// CreateIncomeGroup creates a budget envelope with the given allotment.
func (s *incomeGroupService) CreateIncomeGroup(ctx context.Context, name string, amount money.Amount) (*models.IncomeGroup, error) {
	group := &models.IncomeGroup{Name: name, Amount: amount}
	if err := group.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.CreateIncomeGroup(ctx, group); err != nil {
		return nil, err
	}

	logger.Get().Infow("income group created", "income_group_id", group.ID)
	return group, nil
}

func (s *incomeGroupService) GetIncomeGroupByID(ctx context.Context, id string) (*models.IncomeGroup, error) {
	return s.store.GetIncomeGroup(ctx, id)
}

func (s *incomeGroupService) GetIncomeGroupByName(ctx context.Context, name string) (*models.IncomeGroup, error) {
	return s.store.GetIncomeGroupByName(ctx, name)
}

func (s *incomeGroupService) ListIncomeGroups(ctx context.Context) ([]models.IncomeGroup, error) {
	return s.store.ListIncomeGroups(ctx)
}

// UpdateIncomeGroup renames a group or changes its allotment.
func (s *incomeGroupService) UpdateIncomeGroup(ctx context.Context, id string, name *string, amount *money.Amount) (*models.IncomeGroup, error) {
	var group *models.IncomeGroup
	err := s.store.Atomic(ctx, func(tx *store.Store) error {
		var err error
		group, err = tx.GetIncomeGroup(ctx, id)
		if err != nil {
			return err
		}
		if name != nil {
			group.Name = *name
		}
		if amount != nil {
			group.Amount = *amount
		}
		if err := group.Validate(); err != nil {
			return err
		}
		if err := tx.UpdateIncomeGroup(ctx, group); err != nil {
			return err
		}
		// Pick up the refreshed snapshot.
		group, err = tx.GetIncomeGroup(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// DeleteIncomeGroup removes a group; transactions attributed to it are kept.
func (s *incomeGroupService) DeleteIncomeGroup(ctx context.Context, id string) error {
	if err := s.store.DeleteIncomeGroup(ctx, id); err != nil {
		return err
	}
	logger.Get().Infow("income group deleted", "income_group_id", id)
	return nil
}
