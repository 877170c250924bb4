// Package report renders the ledger as an XLSX workbook.
package report

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"fintrack/internal/pagination"
	"fintrack/internal/services"
)

const (
	SheetAccounts     = "Accounts"
	SheetIncomeGroups = "Income Groups"
	SheetTransactions = "Transactions"

	dateLayout = "2006-01-02"
)

// Generator builds workbooks from the derived views.
type Generator struct {
	views services.ViewServicer
}

// NewGenerator creates a Generator reading from views.
func NewGenerator(views services.ViewServicer) *Generator {
	return &Generator{views: views}
}

// Build returns a workbook with one sheet per view. The caller closes it.
func (g *Generator) Build(ctx context.Context) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := g.accounts(ctx, f); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := g.incomeGroups(ctx, f); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := g.transactions(ctx, f); err != nil {
		_ = f.Close()
		return nil, err
	}

	// NewFile starts with Sheet1; every sheet above is created explicitly.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	if idx, err := f.GetSheetIndex(SheetAccounts); err == nil {
		f.SetActiveSheet(idx)
	}
	return f, nil
}

// Write builds the workbook and writes it to w.
func (g *Generator) Write(ctx context.Context, w io.Writer) error {
	f, err := g.Build(ctx)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func (g *Generator) accounts(ctx context.Context, f *excelize.File) error {
	balances, err := g.views.AccountBalances(ctx)
	if err != nil {
		return err
	}

	rows := make([][]interface{}, 0, len(balances))
	for _, b := range balances {
		rows = append(rows, []interface{}{b.Name, string(b.Type), b.OpeningBalance.Float64(), b.Balance.Float64()})
	}
	return writeSheet(f, SheetAccounts,
		[]string{"Name", "Type", "Opening Balance", "Balance"},
		[]float64{25, 12, 16, 16},
		rows)
}

func (g *Generator) incomeGroups(ctx context.Context, f *excelize.File) error {
	summaries, err := g.views.IncomeGroupSummaries(ctx)
	if err != nil {
		return err
	}

	rows := make([][]interface{}, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []interface{}{s.Name, s.Amount.Float64(), s.Spent.Float64(), s.Remaining.Float64()})
	}
	return writeSheet(f, SheetIncomeGroups,
		[]string{"Name", "Amount", "Spent", "Remaining"},
		[]float64{25, 14, 14, 14},
		rows)
}

func (g *Generator) transactions(ctx context.Context, f *excelize.File) error {
	var rows [][]interface{}
	page := pagination.PageRequest{Page: 1, PageSize: pagination.MaxPageSize}
	for {
		resp, err := g.views.TransactionDetails(ctx, page, services.TransactionFilter{})
		if err != nil {
			return err
		}
		for _, d := range resp.Data {
			rows = append(rows, []interface{}{
				d.Date.Format(dateLayout),
				string(d.Type),
				d.AccountName,
				deref(d.TransferAccountName),
				deref(d.IncomeGroupName),
				d.Amount.Float64(),
				d.Description,
			})
		}
		if page.Page >= resp.TotalPages {
			break
		}
		page.Page++
	}

	return writeSheet(f, SheetTransactions,
		[]string{"Date", "Type", "Account", "To Account", "Income Group", "Amount", "Description"},
		[]float64{12, 10, 20, 20, 20, 14, 30},
		rows)
}

func writeSheet(f *excelize.File, sheet string, headers []string, widths []float64, rows [][]interface{}) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("write %s header: %w", sheet, err)
		}
	}

	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, r+2, err)
		}
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
