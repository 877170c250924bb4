// Package backup exports the whole ledger as a portable bundle and restores
// it. Restoring reassigns every primary key, so references inside the
// bundle are remapped while transactions are replayed.
package backup

import (
	"fmt"
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/money"
)

// SchemaVersion is the bundle layout written by Export.
const SchemaVersion = 1

// Bundle is the backup document.
type Bundle struct {
	Metadata Metadata `json:"metadata"`
	Database Database `json:"database"`
}

// Metadata describes a bundle.
type Metadata struct {
	SchemaVersion int       `json:"schema_version"`
	ExportedAt    time.Time `json:"exported_at"`
	Counts        Counts    `json:"counts"`
}

// Counts holds the number of records per table.
type Counts struct {
	Accounts     int `json:"accounts"`
	Transactions int `json:"transactions"`
	IncomeGroups int `json:"income_groups"`
}

// Database lists every record verbatim. Accounts carry their opening
// balance, never a derived one.
type Database struct {
	Accounts     []AccountRecord     `json:"accounts"`
	Transactions []TransactionRecord `json:"transactions"`
	IncomeGroups []IncomeGroupRecord `json:"income_groups"`
}

type AccountRecord struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Type      models.AccountType `json:"type"`
	Balance   money.Amount       `json:"balance"`
	CreatedAt time.Time          `json:"created_at"`
}

type IncomeGroupRecord struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Amount    money.Amount `json:"amount"`
	Remaining money.Amount `json:"remaining"`
	CreatedAt time.Time    `json:"created_at"`
}

type TransactionRecord struct {
	ID                string                 `json:"id"`
	AccountID         string                 `json:"account_id"`
	Type              models.TransactionType `json:"type"`
	Amount            money.Amount           `json:"amount"`
	Date              time.Time              `json:"date"`
	Description       string                 `json:"description"`
	RelatedIncomeID   *string                `json:"related_income_id,omitempty"`
	TransferAccountID *string                `json:"transfer_account_id,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
}

// Counts returns the record counts of d.
func (d *Database) Counts() Counts {
	return Counts{
		Accounts:     len(d.Accounts),
		Transactions: len(d.Transactions),
		IncomeGroups: len(d.IncomeGroups),
	}
}

// Validate checks that b can be restored: a supported schema version,
// matching counts, well-formed records, unique ids and no references to
// records missing from the bundle.
func (b *Bundle) Validate() error {
	if b.Metadata.SchemaVersion < 1 || b.Metadata.SchemaVersion > SchemaVersion {
		return apperrors.WithMessage(apperrors.ErrUnsupportedBackup,
			fmt.Sprintf("backup schema version %d is not supported (expected %d)", b.Metadata.SchemaVersion, SchemaVersion))
	}
	if got := b.Database.Counts(); got != b.Metadata.Counts {
		return invalid("record counts %+v do not match metadata %+v", got, b.Metadata.Counts)
	}

	accounts := make(map[string]struct{}, len(b.Database.Accounts))
	for i, a := range b.Database.Accounts {
		if a.ID == "" {
			return invalid("account %d has no id", i)
		}
		if _, dup := accounts[a.ID]; dup {
			return invalid("duplicate account id %s", a.ID)
		}
		row := models.Account{Name: a.Name, Type: a.Type, Balance: a.Balance}
		if err := row.Validate(); err != nil {
			return invalid("account %s: %s", a.ID, err.Error())
		}
		accounts[a.ID] = struct{}{}
	}

	groups := make(map[string]struct{}, len(b.Database.IncomeGroups))
	for i, g := range b.Database.IncomeGroups {
		if g.ID == "" {
			return invalid("income group %d has no id", i)
		}
		if _, dup := groups[g.ID]; dup {
			return invalid("duplicate income group id %s", g.ID)
		}
		row := models.IncomeGroup{Name: g.Name, Amount: g.Amount}
		if err := row.Validate(); err != nil {
			return invalid("income group %s: %s", g.ID, err.Error())
		}
		groups[g.ID] = struct{}{}
	}

	seen := make(map[string]struct{}, len(b.Database.Transactions))
	for i, t := range b.Database.Transactions {
		if t.ID == "" {
			return invalid("transaction %d has no id", i)
		}
		if _, dup := seen[t.ID]; dup {
			return invalid("duplicate transaction id %s", t.ID)
		}
		seen[t.ID] = struct{}{}

		if err := t.check(); err != nil {
			return invalid("transaction %s: %s", t.ID, err.Error())
		}
		if _, ok := accounts[t.AccountID]; !ok {
			return invalid("transaction %s references unknown account %s", t.ID, t.AccountID)
		}
		if t.TransferAccountID != nil {
			if _, ok := accounts[*t.TransferAccountID]; !ok {
				return invalid("transaction %s references unknown account %s", t.ID, *t.TransferAccountID)
			}
		}
		if t.RelatedIncomeID != nil {
			if _, ok := groups[*t.RelatedIncomeID]; !ok {
				return invalid("transaction %s references unknown income group %s", t.ID, *t.RelatedIncomeID)
			}
		}
	}
	return nil
}

// check applies the row rules of a live transaction, except that a transfer
// may have lost its counterpart to an account deletion.
func (t TransactionRecord) check() error {
	if !t.Type.Valid() {
		return fmt.Errorf("unsupported type %q", t.Type)
	}
	if t.Amount <= 0 {
		return fmt.Errorf("amount must be greater than zero")
	}
	if t.Type == models.TransactionTypeTransfer {
		if t.RelatedIncomeID != nil {
			return fmt.Errorf("transfers cannot belong to an income group")
		}
		if t.TransferAccountID != nil && *t.TransferAccountID == t.AccountID {
			return fmt.Errorf("transfer to the same account")
		}
	} else if t.TransferAccountID != nil {
		return fmt.Errorf("only transfers have a destination account")
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return apperrors.WithMessage(apperrors.ErrInvalidBackup, "invalid backup: "+fmt.Sprintf(format, args...))
}
