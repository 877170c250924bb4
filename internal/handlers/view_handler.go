package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fintrack/internal/services"
)

// ViewHandler serves the derived read models.
type ViewHandler struct {
	viewService services.ViewServicer
	recentLimit int
}

// NewViewHandler creates a new ViewHandler. recentLimit is the number of
// recent transactions returned when the request does not ask for a limit.
func NewViewHandler(viewService services.ViewServicer, recentLimit int) *ViewHandler {
	if recentLimit <= 0 {
		recentLimit = services.DefaultRecentLimit
	}
	return &ViewHandler{viewService: viewService, recentLimit: recentLimit}
}

// ListTransactions handles listing transactions with details
// @Summary     List transactions
// @Description Get a paginated list of transactions, newest first, with account and income group names
// @Tags        views
// @Produce     json
// @Param       page            query int    false "Page number (default 1)"
// @Param       page_size       query int    false "Page size (default 20, max 100)"
// @Param       account_id      query string false "Transactions touching this account on either side"
// @Param       income_group_id query string false "Transactions attributed to this income group"
// @Param       type            query string false "income, expense or transfer"
// @Param       from_date       query string false "Inclusive lower bound (RFC3339 or YYYY-MM-DD)"
// @Param       to_date         query string false "Inclusive upper bound (RFC3339 or YYYY-MM-DD)"
// @Success     200 {object} pagination.PageResponse[services.TransactionDetail] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *ViewHandler) ListTransactions(c *gin.Context) {
	page, err := parsePage(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.viewService.TransactionDetails(c.Request.Context(), page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RecentTransactions handles listing the newest transactions
// @Summary     Recent transactions
// @Tags        views
// @Produce     json
// @Param       limit query int false "Number of transactions"
// @Success     200 {array}  services.TransactionDetail "Recent transactions"
// @Failure     400 {object} ErrorResponse "Invalid limit"
// @Router      /transactions/recent [get]
func (h *ViewHandler) RecentTransactions(c *gin.Context) {
	limit, err := parseLimit(c, h.recentLimit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	recent, err := h.viewService.RecentTransactions(c.Request.Context(), limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": recent})
}

// TransferHistory handles listing transfers
// @Summary     Transfer history
// @Description Every transfer with both account names, newest first
// @Tags        views
// @Produce     json
// @Success     200 {array}  services.TransferRecord "Transfers"
// @Router      /transfers [get]
func (h *ViewHandler) TransferHistory(c *gin.Context) {
	transfers, err := h.viewService.TransferHistory(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transfers": transfers})
}

// Totals handles the ledger-wide income and expense totals
// @Summary     Income and expense totals
// @Tags        views
// @Produce     json
// @Success     200 {object} services.Totals "Totals"
// @Router      /totals [get]
func (h *ViewHandler) Totals(c *gin.Context) {
	totals, err := h.viewService.Totals(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, totals)
}
