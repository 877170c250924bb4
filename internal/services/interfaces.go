package services

import (
	"context"
	"time"

	"fintrack/internal/live"
	"fintrack/internal/models"
	"fintrack/internal/money"
	"fintrack/internal/pagination"
)

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(ctx context.Context, name string, accountType models.AccountType, openingBalance money.Amount) (*models.Account, error)
	GetAccountByID(ctx context.Context, id string) (*models.Account, error)
	GetAccountByName(ctx context.Context, name string) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)
	UpdateAccount(ctx context.Context, id string, fields AccountUpdate) (*models.Account, error)
	DeleteAccount(ctx context.Context, id string) error
}

// AccountUpdate holds the optional fields of an account edit. Nil fields
// are left unchanged.
type AccountUpdate struct {
	Name           *string
	Type           *models.AccountType
	OpeningBalance *money.Amount
}

// TransactionServicer defines the contract for the ledger operations that
// create and mutate transactions.
type TransactionServicer interface {
	AddIncome(ctx context.Context, accountID string, amount money.Amount, description string, relatedIncomeID *string, date time.Time) (*models.Transaction, error)
	AddExpense(ctx context.Context, accountID string, amount money.Amount, description string, relatedIncomeID *string, date time.Time) (*models.Transaction, error)
	MakeTransfer(ctx context.Context, fromAccountID, toAccountID string, amount money.Amount, description string, date time.Time) (*models.Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*models.Transaction, error)
	EditTransaction(ctx context.Context, id string, fields TransactionUpdate) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
}

// TransactionUpdate holds the optional fields of a transaction edit. Nil
// fields are left unchanged. For the two references a pointer to the empty
// string clears the reference.
type TransactionUpdate struct {
	AccountID         *string
	Type              *models.TransactionType
	Amount            *money.Amount
	Date              *time.Time
	Description       *string
	RelatedIncomeID   *string
	TransferAccountID *string
}

// Apply returns a copy of t with the update applied. Switching a row to
// transfer drops its income group; switching away from transfer drops its
// counterpart.
func (u TransactionUpdate) Apply(t models.Transaction) models.Transaction {
	if u.AccountID != nil {
		t.AccountID = *u.AccountID
	}
	if u.Type != nil {
		t.Type = *u.Type
	}
	if u.Amount != nil {
		t.Amount = *u.Amount
	}
	if u.Date != nil {
		t.Date = u.Date.UTC()
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.RelatedIncomeID != nil {
		t.RelatedIncomeID = optionalID(*u.RelatedIncomeID)
	}
	if u.TransferAccountID != nil {
		t.TransferAccountID = optionalID(*u.TransferAccountID)
	}

	if t.Type == models.TransactionTypeTransfer {
		t.RelatedIncomeID = nil
	} else {
		t.TransferAccountID = nil
	}
	return t
}

// IncomeGroupServicer defines the contract for income group business logic.
type IncomeGroupServicer interface {
	CreateIncomeGroup(ctx context.Context, name string, amount money.Amount) (*models.IncomeGroup, error)
	GetIncomeGroupByID(ctx context.Context, id string) (*models.IncomeGroup, error)
	GetIncomeGroupByName(ctx context.Context, name string) (*models.IncomeGroup, error)
	ListIncomeGroups(ctx context.Context) ([]models.IncomeGroup, error)
	UpdateIncomeGroup(ctx context.Context, id string, name *string, amount *money.Amount) (*models.IncomeGroup, error)
	DeleteIncomeGroup(ctx context.Context, id string) error
}

// FundsGuard is the pre-write check run before an expense or transfer is
// created or edited.
type FundsGuard interface {
	// CheckDebit verifies that accountID exists and that its derived balance,
	// ignoring excludeTransactionID, covers amount.
	CheckDebit(ctx context.Context, accountID string, amount money.Amount, excludeTransactionID string) error
	// CheckAccount verifies that the account exists.
	CheckAccount(ctx context.Context, accountID string) error
	// CheckIncomeGroup verifies that the income group exists.
	CheckIncomeGroup(ctx context.Context, id string) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	AccountID     *string
	Type          *models.TransactionType
	IncomeGroupID *string
	FromDate      *time.Time
	ToDate        *time.Time
}

// ViewServicer exposes the derived read models. Every value is recomputed
// from the transaction table on each call; the Watch variants re-run the
// query whenever a table it reads from changes.
type ViewServicer interface {
	AccountBalances(ctx context.Context) ([]AccountBalance, error)
	AccountBalance(ctx context.Context, accountID string) (*AccountBalance, error)
	IncomeGroupSummaries(ctx context.Context) ([]IncomeGroupSummary, error)
	IncomeGroupSummary(ctx context.Context, groupID string) (*IncomeGroupSummary, error)
	TransactionDetails(ctx context.Context, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[TransactionDetail], error)
	TransferHistory(ctx context.Context) ([]TransferRecord, error)
	RecentTransactions(ctx context.Context, limit int) ([]TransactionDetail, error)
	Total(ctx context.Context, txType models.TransactionType) (money.Amount, error)
	Totals(ctx context.Context) (*Totals, error)

	WatchAccounts(ctx context.Context) <-chan live.Result[[]models.Account]
	WatchAccountBalances(ctx context.Context) <-chan live.Result[[]AccountBalance]
	WatchIncomeGroupSummaries(ctx context.Context) <-chan live.Result[[]IncomeGroupSummary]
	WatchTransactionDetails(ctx context.Context, page pagination.PageRequest, filter TransactionFilter) <-chan live.Result[*pagination.PageResponse[TransactionDetail]]
	WatchTransferHistory(ctx context.Context) <-chan live.Result[[]TransferRecord]
	WatchRecentTransactions(ctx context.Context, limit int) <-chan live.Result[[]TransactionDetail]
	WatchTotal(ctx context.Context, txType models.TransactionType) <-chan live.Result[money.Amount]
}

// AccountBalance is an account with its derived current balance.
type AccountBalance struct {
	AccountID      string             `json:"account_id"`
	Name           string             `json:"name"`
	Type           models.AccountType `json:"type"`
	OpeningBalance money.Amount       `json:"opening_balance"`
	Balance        money.Amount       `json:"balance"`
}

// IncomeGroupSummary is an income group with its spent and remaining amounts.
type IncomeGroupSummary struct {
	GroupID   string       `json:"group_id"`
	Name      string       `json:"name"`
	Amount    money.Amount `json:"amount"`
	Spent     money.Amount `json:"spent"`
	Remaining money.Amount `json:"remaining"`
}

// TransactionDetail is a transaction joined with the names it references.
type TransactionDetail struct {
	ID                  string                 `json:"id"`
	AccountID           string                 `json:"account_id"`
	AccountName         string                 `json:"account_name"`
	Type                models.TransactionType `json:"type"`
	Amount              money.Amount           `json:"amount"`
	Date                time.Time              `json:"date"`
	Description         string                 `json:"description"`
	RelatedIncomeID     *string                `json:"related_income_id,omitempty"`
	IncomeGroupName     *string                `json:"income_group_name,omitempty"`
	TransferAccountID   *string                `json:"transfer_account_id,omitempty"`
	TransferAccountName *string                `json:"transfer_account_name,omitempty"`
	CreatedAt           time.Time              `json:"created_at"`
}

// TransferRecord is one transfer with both account names. The destination
// is nil when its account has been deleted.
type TransferRecord struct {
	ID              string       `json:"id"`
	FromAccountID   string       `json:"from_account_id"`
	FromAccountName string       `json:"from_account_name"`
	ToAccountID     *string      `json:"to_account_id"`
	ToAccountName   *string      `json:"to_account_name"`
	Amount          money.Amount `json:"amount"`
	Date            time.Time    `json:"date"`
	Description     string       `json:"description"`
}

// Totals holds the ledger-wide income and expense sums.
type Totals struct {
	Income  money.Amount `json:"income"`
	Expense money.Amount `json:"expense"`
}

func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
