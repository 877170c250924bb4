package services

import (
	"context"

	"gorm.io/gorm"

	"fintrack/internal/live"
	"fintrack/internal/models"
	"fintrack/internal/money"
	"fintrack/internal/pagination"
	"fintrack/internal/store"
)

// DefaultRecentLimit is used when a caller asks for recent transactions
// without a positive limit.
const DefaultRecentLimit = 10

// accountBalanceSQL derives every account's current balance in a single
// aggregation over the transactions touching it on either side. The
// placeholder is a transaction id to leave out of the sum.
const accountBalanceSQL = `
SELECT a.id AS account_id, a.name, a.type, a.balance AS opening_balance,
       CAST(a.balance + COALESCE((
           SELECT SUM(CASE
                      WHEN t.account_id = a.id AND t.type = 'income' THEN t.amount
                      WHEN t.account_id = a.id THEN -t.amount
                      ELSE t.amount
                  END)
           FROM transactions t
           WHERE (t.account_id = a.id OR t.transfer_account_id = a.id)
             AND t.id <> ?
       ), 0) AS BIGINT) AS balance
FROM accounts a`

// incomeGroupSQL sums the expenses attributed to each group. Income and
// transfer rows never count against an envelope.
const incomeGroupSQL = `
SELECT g.id AS group_id, g.name, g.amount,
       CAST(COALESCE((
           SELECT SUM(t.amount)
           FROM transactions t
           WHERE t.related_income_id = g.id AND t.type = 'expense'
       ), 0) AS BIGINT) AS spent
FROM income_groups g`

const transactionDetailColumns = `t.id, t.account_id, a.name AS account_name, t.type, t.amount,
       t.date, t.description, t.related_income_id, g.name AS income_group_name,
       t.transfer_account_id, ta.name AS transfer_account_name, t.created_at`

const newestFirst = "t.date DESC, t.created_at DESC, t.id DESC"

// viewService computes the derived read models.
type viewService struct {
	store *store.Store
}

// NewViewService creates a new ViewServicer.
func NewViewService(s *store.Store) ViewServicer {
	return &viewService{store: s}
}

// AccountBalances returns every account with its derived balance.
func (s *viewService) AccountBalances(ctx context.Context) ([]AccountBalance, error) {
	return accountBalances(ctx, s.store, "")
}

// AccountBalance returns one account with its derived balance.
func (s *viewService) AccountBalance(ctx context.Context, accountID string) (*AccountBalance, error) {
	return accountBalance(ctx, s.store, accountID, "")
}

func accountBalances(ctx context.Context, st *store.Store, excludeTransactionID string) ([]AccountBalance, error) {
	balances := []AccountBalance{}
	err := st.DB(ctx).
		Raw(accountBalanceSQL+" ORDER BY a.created_at, a.id", excludeTransactionID).
		Scan(&balances).Error
	if err != nil {
		return nil, storageError(err)
	}
	return balances, nil
}

func accountBalance(ctx context.Context, st *store.Store, accountID, excludeTransactionID string) (*AccountBalance, error) {
	if _, err := st.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}
	var balance AccountBalance
	err := st.DB(ctx).
		Raw(accountBalanceSQL+" WHERE a.id = ?", excludeTransactionID, accountID).
		Scan(&balance).Error
	if err != nil {
		return nil, storageError(err)
	}
	return &balance, nil
}

// IncomeGroupSummaries returns every income group with its recomputed
// remaining amount.
func (s *viewService) IncomeGroupSummaries(ctx context.Context) ([]IncomeGroupSummary, error) {
	summaries := []IncomeGroupSummary{}
	if err := s.store.DB(ctx).Raw(incomeGroupSQL + " ORDER BY g.created_at, g.id").Scan(&summaries).Error; err != nil {
		return nil, storageError(err)
	}
	for i := range summaries {
		summaries[i].Remaining = summaries[i].Amount - summaries[i].Spent
	}
	return summaries, nil
}

// IncomeGroupSummary returns one income group with its recomputed remaining
// amount.
func (s *viewService) IncomeGroupSummary(ctx context.Context, groupID string) (*IncomeGroupSummary, error) {
	if _, err := s.store.GetIncomeGroup(ctx, groupID); err != nil {
		return nil, err
	}
	var summary IncomeGroupSummary
	if err := s.store.DB(ctx).Raw(incomeGroupSQL+" WHERE g.id = ?", groupID).Scan(&summary).Error; err != nil {
		return nil, storageError(err)
	}
	summary.Remaining = summary.Amount - summary.Spent
	return &summary, nil
}

// TransactionDetails returns a page of transactions joined with the account
// and income group names they reference, newest first.
func (s *viewService) TransactionDetails(ctx context.Context, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[TransactionDetail], error) {
	page.Defaults()

	base := applyTransactionFilters(s.detailsBase(ctx), filter).Session(&gorm.Session{})

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, storageError(err)
	}

	details := []TransactionDetail{}
	if err := base.Select(transactionDetailColumns).
		Scopes(pagination.Paginate(page)).
		Order(newestFirst).
		Scan(&details).Error; err != nil {
		return nil, storageError(err)
	}

	result := pagination.NewPageResponse(details, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// RecentTransactions returns the newest limit transactions.
func (s *viewService) RecentTransactions(ctx context.Context, limit int) ([]TransactionDetail, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	details := []TransactionDetail{}
	if err := s.detailsBase(ctx).
		Select(transactionDetailColumns).
		Order(newestFirst).
		Limit(limit).
		Scan(&details).Error; err != nil {
		return nil, storageError(err)
	}
	return details, nil
}

// TransferHistory returns every transfer with both account names, newest
// first.
func (s *viewService) TransferHistory(ctx context.Context) ([]TransferRecord, error) {
	records := []TransferRecord{}
	err := s.store.DB(ctx).
		Table("transactions t").
		Select(`t.id, t.account_id AS from_account_id, a.name AS from_account_name,
			t.transfer_account_id AS to_account_id, ta.name AS to_account_name,
			t.amount, t.date, t.description`).
		Joins("JOIN accounts a ON a.id = t.account_id").
		Joins("LEFT JOIN accounts ta ON ta.id = t.transfer_account_id").
		Where("t.type = ?", models.TransactionTypeTransfer).
		Order(newestFirst).
		Scan(&records).Error
	if err != nil {
		return nil, storageError(err)
	}
	return records, nil
}

// Total sums every transaction of txType across all accounts.
func (s *viewService) Total(ctx context.Context, txType models.TransactionType) (money.Amount, error) {
	var total money.Amount
	err := s.store.DB(ctx).
		Raw("SELECT CAST(COALESCE(SUM(amount), 0) AS BIGINT) FROM transactions WHERE type = ?", txType).
		Row().
		Scan(&total)
	if err != nil {
		return 0, storageError(err)
	}
	return total, nil
}

// Totals returns total income and total expense.
func (s *viewService) Totals(ctx context.Context) (*Totals, error) {
	income, err := s.Total(ctx, models.TransactionTypeIncome)
	if err != nil {
		return nil, err
	}
	expense, err := s.Total(ctx, models.TransactionTypeExpense)
	if err != nil {
		return nil, err
	}
	return &Totals{Income: income, Expense: expense}, nil
}

func (s *viewService) WatchAccounts(ctx context.Context) <-chan live.Result[[]models.Account] {
	return live.Query(ctx, s.store.Hub(), s.store.ListAccounts, live.Accounts)
}

func (s *viewService) WatchAccountBalances(ctx context.Context) <-chan live.Result[[]AccountBalance] {
	return live.Query(ctx, s.store.Hub(), s.AccountBalances, live.Accounts, live.Transactions)
}

func (s *viewService) WatchIncomeGroupSummaries(ctx context.Context) <-chan live.Result[[]IncomeGroupSummary] {
	return live.Query(ctx, s.store.Hub(), s.IncomeGroupSummaries, live.IncomeGroups, live.Transactions)
}

func (s *viewService) WatchTransactionDetails(ctx context.Context, page pagination.PageRequest, filter TransactionFilter) <-chan live.Result[*pagination.PageResponse[TransactionDetail]] {
	load := func(ctx context.Context) (*pagination.PageResponse[TransactionDetail], error) {
		return s.TransactionDetails(ctx, page, filter)
	}
	return live.Query(ctx, s.store.Hub(), load, live.AllTables...)
}

func (s *viewService) WatchTransferHistory(ctx context.Context) <-chan live.Result[[]TransferRecord] {
	return live.Query(ctx, s.store.Hub(), s.TransferHistory, live.Accounts, live.Transactions)
}

func (s *viewService) WatchRecentTransactions(ctx context.Context, limit int) <-chan live.Result[[]TransactionDetail] {
	load := func(ctx context.Context) ([]TransactionDetail, error) {
		return s.RecentTransactions(ctx, limit)
	}
	return live.Query(ctx, s.store.Hub(), load, live.AllTables...)
}

func (s *viewService) WatchTotal(ctx context.Context, txType models.TransactionType) <-chan live.Result[money.Amount] {
	load := func(ctx context.Context) (money.Amount, error) {
		return s.Total(ctx, txType)
	}
	return live.Query(ctx, s.store.Hub(), load, live.Transactions)
}

func (s *viewService) detailsBase(ctx context.Context) *gorm.DB {
	return s.store.DB(ctx).
		Table("transactions t").
		Joins("JOIN accounts a ON a.id = t.account_id").
		Joins("LEFT JOIN income_groups g ON g.id = t.related_income_id").
		Joins("LEFT JOIN accounts ta ON ta.id = t.transfer_account_id")
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.AccountID != nil {
		q = q.Where("(t.account_id = ? OR t.transfer_account_id = ?)", *f.AccountID, *f.AccountID)
	}
	if f.Type != nil {
		q = q.Where("t.type = ?", *f.Type)
	}
	if f.IncomeGroupID != nil {
		q = q.Where("t.related_income_id = ?", *f.IncomeGroupID)
	}
	if f.FromDate != nil {
		q = q.Where("t.date >= ?", f.FromDate.UTC())
	}
	if f.ToDate != nil {
		q = q.Where("t.date <= ?", f.ToDate.UTC())
	}
	return q
}
