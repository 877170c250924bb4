package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/live"
	"fintrack/internal/models"
	"fintrack/internal/services"
)

// StreamHandler serves live views as server-sent events. Each stream emits
// an "update" event with the current value on connect and again after every
// change that affects it, until the client disconnects.
type StreamHandler struct {
	viewService services.ViewServicer
	recentLimit int
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(viewService services.ViewServicer, recentLimit int) *StreamHandler {
	if recentLimit <= 0 {
		recentLimit = services.DefaultRecentLimit
	}
	return &StreamHandler{viewService: viewService, recentLimit: recentLimit}
}

// Stream handles subscribing to a live view
// @Summary     Subscribe to a live view
// @Description Server-sent events for one of: accounts, balances, income-groups, transactions, transfers, recent, total-income, total-expense. The transactions stream takes the same filters as GET /transactions; recent takes limit.
// @Tags        streams
// @Produce     text/event-stream
// @Param       name path string true "Stream name"
// @Success     200 {string} string "event stream"
// @Failure     400 {object} ErrorResponse "Invalid parameters"
// @Failure     404 {object} ErrorResponse "Unknown stream"
// @Router      /streams/{name} [get]
func (h *StreamHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()

	switch name := c.Param("name"); name {
	case "accounts":
		streamResults(c, h.viewService.WatchAccounts(ctx))
	case "balances":
		streamResults(c, h.viewService.WatchAccountBalances(ctx))
	case "income-groups":
		streamResults(c, h.viewService.WatchIncomeGroupSummaries(ctx))
	case "transfers":
		streamResults(c, h.viewService.WatchTransferHistory(ctx))
	case "total-income":
		streamResults(c, h.viewService.WatchTotal(ctx, models.TransactionTypeIncome))
	case "total-expense":
		streamResults(c, h.viewService.WatchTotal(ctx, models.TransactionTypeExpense))
	case "recent":
		limit, err := parseLimit(c, h.recentLimit)
		if err != nil {
			respondWithError(c, err)
			return
		}
		streamResults(c, h.viewService.WatchRecentTransactions(ctx, limit))
	case "transactions":
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
		streamResults(c, h.viewService.WatchTransactionDetails(ctx, page, filter))
	default:
		respondWithError(c, apperrors.WithMessage(apperrors.ErrNotFound, "unknown stream "+name))
	}
}

// streamResults writes every result as an event until the channel closes,
// which happens when the request context ends.
func streamResults[T any](c *gin.Context, results <-chan live.Result[T]) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	for res := range results {
		if res.Err != nil {
			_, body := errorBody(c, res.Err)
			c.SSEvent("error", body)
		} else {
			c.SSEvent("update", res.Value)
		}
		c.Writer.Flush()
	}
}
