package models

import (
	"strings"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/money"
)

// IncomeGroup is a budget envelope that expenses are attributed against.
//
// Remaining is a stored snapshot kept for older readers; the authoritative
// remaining amount is always recomputed from expenses on read.
type IncomeGroup struct {
	Base
	Name      string       `gorm:"not null;index" json:"name"`
	Amount    money.Amount `gorm:"type:bigint;not null" json:"amount"`
	Remaining money.Amount `gorm:"type:bigint;not null;default:0" json:"-"`
}

// Validate checks the group's own fields.
func (g *IncomeGroup) Validate() error {
	g.Name = strings.TrimSpace(g.Name)
	if g.Name == "" {
		return apperrors.WithField(apperrors.ErrInvalidInput, "name", "income group name is required")
	}
	if g.Amount <= 0 {
		return apperrors.WithField(apperrors.ErrInvalidInput, "amount", "amount must be greater than zero")
	}
	return nil
}
