package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/money"
	"fintrack/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	guard              services.FundsGuard
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, guard services.FundsGuard) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, guard: guard}
}

// RecordTransactionRequest represents the request payload for recording an
// income or an expense.
type RecordTransactionRequest struct {
	AccountID       string       `json:"account_id" binding:"required"`
	Amount          money.Amount `json:"amount" binding:"required" swaggertype:"string" example:"25.50"`
	Description     string       `json:"description" binding:"max=500"`
	RelatedIncomeID *string      `json:"related_income_id"`
	Date            *string      `json:"date" example:"2024-05-01"`
}

// CreateTransferRequest represents the request payload for creating a transfer
type CreateTransferRequest struct {
	FromAccountID string       `json:"from_account_id" binding:"required"`
	ToAccountID   string       `json:"to_account_id" binding:"required"`
	Amount        money.Amount `json:"amount" binding:"required" swaggertype:"string" example:"20.00"`
	Description   string       `json:"description" binding:"max=500"`
	Date          *string      `json:"date" example:"2024-05-01"`
}

// EditTransactionRequest represents the request payload for editing a
// transaction. Omitted fields are left unchanged; an empty string clears
// related_income_id or to_account_id.
type EditTransactionRequest struct {
	AccountID       *string                 `json:"account_id"`
	Type            *models.TransactionType `json:"type" binding:"omitempty,transaction_type"`
	Amount          *money.Amount           `json:"amount" swaggertype:"string" example:"25.50"`
	Description     *string                 `json:"description" binding:"omitempty,max=500"`
	RelatedIncomeID *string                 `json:"related_income_id"`
	ToAccountID     *string                 `json:"to_account_id"`
	Date            *string                 `json:"date" example:"2024-05-01"`
}

// TransactionResponse wraps a transaction.
type TransactionResponse struct {
	Transaction models.Transaction `json:"transaction"`
}

// AddIncome handles recording an income
// @Summary     Record an income
// @Description Record money coming into an account, optionally attributed to an income group
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       request body RecordTransactionRequest true "Income details"
// @Success     201 {object} TransactionResponse "Income recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Account or income group not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/income [post]
func (h *TransactionHandler) AddIncome(c *gin.Context) {
	var req RecordTransactionRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	date, err := parseOptionalDate(req.Date, "date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.AddIncome(c.Request.Context(),
		req.AccountID, req.Amount, req.Description, nonEmpty(req.RelatedIncomeID), date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, TransactionResponse{Transaction: *transaction})
}

// AddExpense handles recording an expense
// @Summary     Record an expense
// @Description Record money leaving an account, optionally drawn from an income group. The account must cover the amount.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       request body RecordTransactionRequest true "Expense details"
// @Success     201 {object} TransactionResponse "Expense recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Account or income group not found"
// @Failure     422 {object} ErrorResponse "Insufficient funds"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/expense [post]
func (h *TransactionHandler) AddExpense(c *gin.Context) {
	var req RecordTransactionRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	date, err := parseOptionalDate(req.Date, "date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := h.guard.CheckDebit(ctx, req.AccountID, req.Amount, ""); err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.AddExpense(ctx,
		req.AccountID, req.Amount, req.Description, nonEmpty(req.RelatedIncomeID), date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, TransactionResponse{Transaction: *transaction})
}

// MakeTransfer handles the creation of a transfer between two accounts
// @Summary     Create a transfer
// @Description Move money from one account to another as a single transfer row. The source account must cover the amount.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       request body CreateTransferRequest true "Transfer details"
// @Success     201 {object} TransactionResponse "Transfer created"
// @Failure     400 {object} ErrorResponse "Invalid input or same account"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     422 {object} ErrorResponse "Insufficient funds"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/transfer [post]
func (h *TransactionHandler) MakeTransfer(c *gin.Context) {
	var req CreateTransferRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	date, err := parseOptionalDate(req.Date, "date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if req.FromAccountID == req.ToAccountID {
		respondWithError(c, apperrors.ErrSameAccountTransfer)
		return
	}

	ctx := c.Request.Context()
	if err := h.guard.CheckAccount(ctx, req.ToAccountID); err != nil {
		respondWithError(c, renameField(err, "account_id", "to_account_id"))
		return
	}
	if err := h.guard.CheckDebit(ctx, req.FromAccountID, req.Amount, ""); err != nil {
		respondWithError(c, renameField(err, "account_id", "from_account_id"))
		return
	}

	transaction, err := h.transactionService.MakeTransfer(ctx,
		req.FromAccountID, req.ToAccountID, req.Amount, req.Description, date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, TransactionResponse{Transaction: *transaction})
}

// GetTransactionByID handles the retrieval of a specific transaction
// @Summary     Get transaction by ID
// @Description Get a specific transaction by ID
// @Tags        transactions
// @Produce     json
// @Param       id path string true "Transaction ID"
// @Success     200 {object} TransactionResponse "Transaction details"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	transactionID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(c.Request.Context(), transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, TransactionResponse{Transaction: *transaction})
}

// EditTransaction handles editing a transaction
// @Summary     Edit a transaction
// @Description Change any field of a transaction. Edits that leave the row as an expense or transfer are checked against the account balance without the row itself.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       id      path string                 true "Transaction ID"
// @Param       request body EditTransactionRequest true "Fields to change"
// @Success     200 {object} TransactionResponse "Transaction updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Transaction, account or income group not found"
// @Failure     422 {object} ErrorResponse "Insufficient funds"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) EditTransaction(c *gin.Context) {
	transactionID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req EditTransactionRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	update := services.TransactionUpdate{
		AccountID:         req.AccountID,
		Type:              req.Type,
		Amount:            req.Amount,
		Description:       req.Description,
		RelatedIncomeID:   req.RelatedIncomeID,
		TransferAccountID: req.ToAccountID,
	}
	if req.Date != nil {
		date, err := parseOptionalDate(req.Date, "date")
		if err != nil {
			respondWithError(c, err)
			return
		}
		if !date.IsZero() {
			update.Date = &date
		}
	}

	ctx := c.Request.Context()
	current, err := h.transactionService.GetTransactionByID(ctx, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	next := update.Apply(*current)
	if next.Type.Debits() {
		if err := h.guard.CheckDebit(ctx, next.AccountID, next.Amount, transactionID); err != nil {
			respondWithError(c, err)
			return
		}
	}

	transaction, err := h.transactionService.EditTransaction(ctx, transactionID, update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, TransactionResponse{Transaction: *transaction})
}

// DeleteTransaction handles the deletion of a transaction
// @Summary     Delete a transaction
// @Description Delete a transaction; balances and income group remainders follow automatically
// @Tags        transactions
// @Produce     json
// @Param       id path string true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	transactionID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(c.Request.Context(), transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Transaction deleted successfully"})
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// renameField re-attributes an error raised on field from to field to.
func renameField(err error, from, to string) error {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Field != from {
		return err
	}
	renamed := *appErr
	renamed.Field = to
	return &renamed
}
