package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/money"
	"fintrack/internal/services"
)

// AccountHandler handles account-related requests.
type AccountHandler struct {
	accountService services.AccountServicer
	viewService    services.ViewServicer
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService services.AccountServicer, viewService services.ViewServicer) *AccountHandler {
	return &AccountHandler{accountService: accountService, viewService: viewService}
}

// CreateAccountRequest represents the request payload for creating an account.
// Amounts are decimal strings or numbers with at most two fractional digits.
type CreateAccountRequest struct {
	Name           string             `json:"name" binding:"required,min=1,max=100"`
	Type           models.AccountType `json:"type" binding:"omitempty,account_type"`
	OpeningBalance money.Amount       `json:"opening_balance" swaggertype:"string" example:"100.00"`
}

// UpdateAccountRequest represents the request payload for updating an account.
// Omitted fields are left unchanged.
type UpdateAccountRequest struct {
	Name           *string             `json:"name" binding:"omitempty,max=100"`
	Type           *models.AccountType `json:"type" binding:"omitempty,account_type"`
	OpeningBalance *money.Amount       `json:"opening_balance" swaggertype:"string" example:"100.00"`
}

// AccountResponse represents an account with its derived balance.
type AccountResponse struct {
	Account models.Account `json:"account"`
	Balance money.Amount   `json:"balance" swaggertype:"string" example:"150.00"`
}

// CreateAccount handles the creation of a new account
// @Summary     Create an account
// @Description Create a new account with an optional opening balance. The type defaults to "other".
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Param       request body CreateAccountRequest true "Account details"
// @Success     201 {object} AccountResponse "Account created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts [post]
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), req.Name, req.Type, req.OpeningBalance)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, AccountResponse{Account: *account, Balance: account.Balance})
}

// ListAccounts handles listing every account with its derived balance
// @Summary     List accounts
// @Description List every account with its opening and derived current balance
// @Tags        accounts
// @Produce     json
// @Success     200 {array}  services.AccountBalance "Accounts"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts [get]
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	balances, err := h.viewService.AccountBalances(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"accounts": balances})
}

// GetAccountByID handles the retrieval of a specific account
// @Summary     Get account by ID
// @Description Get an account and its derived current balance
// @Tags        accounts
// @Produce     json
// @Param       id path string true "Account ID"
// @Success     200 {object} AccountResponse "Account details"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id} [get]
func (h *AccountHandler) GetAccountByID(c *gin.Context) {
	accountID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.respondWithAccount(c, func() (*models.Account, error) {
		return h.accountService.GetAccountByID(c.Request.Context(), accountID)
	})
}

// GetAccountByName handles looking an account up by name
// @Summary     Find account by name
// @Description Get the oldest account with the given name
// @Tags        accounts
// @Produce     json
// @Param       name query string true "Account name"
// @Success     200 {object} AccountResponse "Account details"
// @Failure     400 {object} ErrorResponse "Missing name"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /accounts/lookup [get]
func (h *AccountHandler) GetAccountByName(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		respondWithError(c, apperrors.WithField(apperrors.ErrInvalidInput, "name", "name is required"))
		return
	}

	h.respondWithAccount(c, func() (*models.Account, error) {
		return h.accountService.GetAccountByName(c.Request.Context(), name)
	})
}

// UpdateAccount handles updating an account
// @Summary     Update an account
// @Description Rename an account, change its type, or rewrite its opening balance
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Param       id      path string               true "Account ID"
// @Param       request body UpdateAccountRequest true "Fields to update"
// @Success     200 {object} AccountResponse "Account updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id} [put]
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	accountID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateAccountRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	h.respondWithAccount(c, func() (*models.Account, error) {
		return h.accountService.UpdateAccount(c.Request.Context(), accountID, services.AccountUpdate{
			Name:           req.Name,
			Type:           req.Type,
			OpeningBalance: req.OpeningBalance,
		})
	})
}

// DeleteAccount handles deleting an account
// @Summary     Delete an account
// @Description Delete an account together with the transactions it owns. Transfers into it from other accounts are kept without a destination.
// @Tags        accounts
// @Produce     json
// @Param       id path string true "Account ID"
// @Success     200 {object} MessageResponse "Account deleted"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id} [delete]
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	accountID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.accountService.DeleteAccount(c.Request.Context(), accountID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Account deleted successfully"})
}

func (h *AccountHandler) respondWithAccount(c *gin.Context, load func() (*models.Account, error)) {
	account, err := load()
	if err != nil {
		respondWithError(c, err)
		return
	}

	balance, err := h.viewService.AccountBalance(c.Request.Context(), account.ID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, AccountResponse{Account: *account, Balance: balance.Balance})
}
