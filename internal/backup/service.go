package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/store"
)

// Service exports and restores the ledger.
type Service struct {
	store *store.Store
	now   func() time.Time
}

// NewService creates a backup Service on s.
func NewService(s *store.Store) *Service {
	return &Service{store: s, now: time.Now}
}

// RestoreResult reports how many records a restore created.
type RestoreResult struct {
	Accounts     int `json:"accounts"`
	Transactions int `json:"transactions"`
	IncomeGroups int `json:"income_groups"`
}

// Export snapshots every record. Reads run in one transaction so the bundle
// is consistent even if a write lands mid-export.
func (s *Service) Export(ctx context.Context) (*Bundle, error) {
	var db Database
	err := s.store.Atomic(ctx, func(tx *store.Store) error {
		accounts, err := tx.ListAccounts(ctx)
		if err != nil {
			return err
		}
		groups, err := tx.ListIncomeGroups(ctx)
		if err != nil {
			return err
		}
		txns, err := tx.ListTransactions(ctx)
		if err != nil {
			return err
		}

		db.Accounts = make([]AccountRecord, 0, len(accounts))
		for _, a := range accounts {
			db.Accounts = append(db.Accounts, AccountRecord{
				ID: a.ID, Name: a.Name, Type: a.Type, Balance: a.Balance, CreatedAt: a.CreatedAt,
			})
		}
		db.IncomeGroups = make([]IncomeGroupRecord, 0, len(groups))
		for _, g := range groups {
			db.IncomeGroups = append(db.IncomeGroups, IncomeGroupRecord{
				ID: g.ID, Name: g.Name, Amount: g.Amount, Remaining: g.Remaining, CreatedAt: g.CreatedAt,
			})
		}
		db.Transactions = make([]TransactionRecord, 0, len(txns))
		for _, t := range txns {
			db.Transactions = append(db.Transactions, TransactionRecord{
				ID:                t.ID,
				AccountID:         t.AccountID,
				Type:              t.Type,
				Amount:            t.Amount,
				Date:              t.Date,
				Description:       t.Description,
				RelatedIncomeID:   t.RelatedIncomeID,
				TransferAccountID: t.TransferAccountID,
				CreatedAt:         t.CreatedAt,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Bundle{
		Metadata: Metadata{
			SchemaVersion: SchemaVersion,
			ExportedAt:    s.now().UTC(),
			Counts:        db.Counts(),
		},
		Database: db,
	}, nil
}

// Restore replaces the whole ledger with the contents of b. Accounts and
// income groups are recreated first, then transactions are replayed in
// bundle order with their references translated to the new ids. The wipe
// and every insert form one atomic unit: on any failure the previous
// ledger is left untouched.
func (s *Service) Restore(ctx context.Context, b *Bundle) (*RestoreResult, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	err := s.store.Atomic(ctx, func(tx *store.Store) error {
		if err := tx.WipeAll(ctx); err != nil {
			return err
		}

		accountIDs := make(map[string]string, len(b.Database.Accounts))
		for _, rec := range b.Database.Accounts {
			a := &models.Account{Name: rec.Name, Type: rec.Type, Balance: rec.Balance}
			a.CreatedAt = rec.CreatedAt
			if err := tx.CreateAccount(ctx, a); err != nil {
				return err
			}
			accountIDs[rec.ID] = a.ID
		}

		groupIDs := make(map[string]string, len(b.Database.IncomeGroups))
		newGroupIDs := make([]string, 0, len(b.Database.IncomeGroups))
		for _, rec := range b.Database.IncomeGroups {
			g := &models.IncomeGroup{Name: rec.Name, Amount: rec.Amount}
			g.CreatedAt = rec.CreatedAt
			if err := tx.CreateIncomeGroup(ctx, g); err != nil {
				return err
			}
			groupIDs[rec.ID] = g.ID
			newGroupIDs = append(newGroupIDs, g.ID)
		}

		for _, rec := range b.Database.Transactions {
			t := &models.Transaction{
				AccountID:         accountIDs[rec.AccountID],
				Type:              rec.Type,
				Amount:            rec.Amount,
				Date:              rec.Date.UTC(),
				Description:       rec.Description,
				RelatedIncomeID:   remap(groupIDs, rec.RelatedIncomeID),
				TransferAccountID: remap(accountIDs, rec.TransferAccountID),
			}
			t.CreatedAt = rec.CreatedAt
			if err := tx.CreateTransaction(ctx, t); err != nil {
				return err
			}
		}

		return tx.RefreshRemaining(ctx, newGroupIDs...)
	})
	if err != nil {
		return nil, err
	}

	result := &RestoreResult{
		Accounts:     len(b.Database.Accounts),
		Transactions: len(b.Database.Transactions),
		IncomeGroups: len(b.Database.IncomeGroups),
	}
	logger.Named("backup").Infow("ledger restored",
		"accounts", result.Accounts,
		"transactions", result.Transactions,
		"income_groups", result.IncomeGroups,
	)
	return result, nil
}

func remap(ids map[string]string, old *string) *string {
	if old == nil {
		return nil
	}
	id := ids[*old]
	return &id
}

// Encode writes b as indented JSON, sealed when passphrase is non-empty.
func Encode(w io.Writer, b *Bundle, passphrase string) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	if passphrase != "" {
		if data, err = Seal(data, passphrase); err != nil {
			return fmt.Errorf("seal backup: %w", err)
		}
	}
	_, err = w.Write(data)
	return err
}

// Decode reads a bundle written by Encode. Plain JSON bundles are accepted
// whatever the passphrase; sealed ones need the passphrase they were
// sealed with.
func Decode(r io.Reader, passphrase string) (*Bundle, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidBackup, err)
	}
	if IsSealed(data) {
		if data, err = Open(data, passphrase); err != nil {
			return nil, err
		}
	}

	var b Bundle
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&b); err != nil {
		return nil, apperrors.Wrap(
			apperrors.WithMessage(apperrors.ErrInvalidBackup, "backup is not a valid bundle: "+err.Error()), err)
	}
	return &b, nil
}

// Wipe deletes every account, transaction and income group.
func (s *Service) Wipe(ctx context.Context) error {
	if err := s.store.WipeAll(ctx); err != nil {
		return err
	}
	logger.Named("backup").Infow("ledger wiped")
	return nil
}
