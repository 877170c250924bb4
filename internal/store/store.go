// Package store is the entity store for accounts, transactions and income
// groups. It owns every persisted row, applies the referential rules
// (cascade and set-null) in code, and publishes table changes to the live
// hub once they are committed.
package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/live"
	"fintrack/internal/models"
)

// Store is a handle on the ledger tables. The root handle is created with
// New; Atomic hands its callback a transaction-scoped handle.
type Store struct {
	db  *gorm.DB
	hub *live.Hub

	// pending collects tables touched inside Atomic; nil on the root handle.
	pending map[live.Table]struct{}
}

// New creates a Store on db that reports changes to hub.
func New(db *gorm.DB, hub *live.Hub) *Store {
	return &Store{db: db, hub: hub}
}

// Hub returns the change hub the store publishes to.
func (s *Store) Hub() *live.Hub { return s.hub }

// DB returns a context-bound session for read-side queries. Inside Atomic it
// is bound to the open transaction.
func (s *Store) DB(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// InTransaction reports whether the handle is scoped to an open transaction.
func (s *Store) InTransaction() bool { return s.pending != nil }

// Atomic runs fn as one all-or-nothing unit. Every write made through the tx
// handle commits together or is rolled back together, and no change
// notification is published unless the commit succeeds. Calling Atomic on a
// handle that is already transactional joins the outer unit.
//
// An error returned by fn is passed back unchanged; a failed commit is
// reported as a storage error.
func (s *Store) Atomic(ctx context.Context, fn func(tx *Store) error) error {
	if s.pending != nil {
		return fn(s)
	}

	pending := make(map[live.Table]struct{})
	var fnErr error
	err := s.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		fnErr = fn(&Store{db: gtx, hub: s.hub, pending: pending})
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		return storageErr(err)
	}

	tables := make([]live.Table, 0, len(pending))
	for t := range pending {
		tables = append(tables, t)
	}
	s.hub.Publish(tables...)
	return nil
}

// WipeAll removes every account, transaction and income group in one unit.
func (s *Store) WipeAll(ctx context.Context) error {
	return s.Atomic(ctx, func(tx *Store) error {
		db := tx.DB(ctx)
		if err := db.Where("1 = 1").Delete(&models.Transaction{}).Error; err != nil {
			return storageErr(err)
		}
		if err := db.Where("1 = 1").Delete(&models.IncomeGroup{}).Error; err != nil {
			return storageErr(err)
		}
		if err := db.Where("1 = 1").Delete(&models.Account{}).Error; err != nil {
			return storageErr(err)
		}
		tx.changed(live.AllTables...)
		return nil
	})
}

// changed records that tables were modified. Outside a transaction the
// change is published at once.
func (s *Store) changed(tables ...live.Table) {
	if s.pending == nil {
		s.hub.Publish(tables...)
		return
	}
	for _, t := range tables {
		s.pending[t] = struct{}{}
	}
}

func storageErr(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Wrap(apperrors.ErrStorage, err)
}

func lookupErr(err error, notFound *apperrors.AppError) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return storageErr(err)
}
