package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fintrack/internal/money"
	"fintrack/internal/services"
)

// IncomeGroupHandler handles income group requests.
type IncomeGroupHandler struct {
	incomeGroupService services.IncomeGroupServicer
	viewService        services.ViewServicer
}

// NewIncomeGroupHandler creates a new IncomeGroupHandler.
func NewIncomeGroupHandler(incomeGroupService services.IncomeGroupServicer, viewService services.ViewServicer) *IncomeGroupHandler {
	return &IncomeGroupHandler{incomeGroupService: incomeGroupService, viewService: viewService}
}

// CreateIncomeGroupRequest represents the request payload for creating an income group.
type CreateIncomeGroupRequest struct {
	Name   string       `json:"name" binding:"required,min=1,max=100"`
	Amount money.Amount `json:"amount" binding:"required" swaggertype:"string" example:"200.00"`
}

// UpdateIncomeGroupRequest represents the request payload for updating an income group.
type UpdateIncomeGroupRequest struct {
	Name   *string       `json:"name" binding:"omitempty,max=100"`
	Amount *money.Amount `json:"amount" swaggertype:"string" example:"200.00"`
}

// IncomeGroupResponse wraps an income group summary.
type IncomeGroupResponse struct {
	IncomeGroup services.IncomeGroupSummary `json:"income_group"`
}

// CreateIncomeGroup handles the creation of an income group
// @Summary     Create an income group
// @Description Create a budget envelope with a positive allotment
// @Tags        income-groups
// @Accept      json
// @Produce     json
// @Param       request body CreateIncomeGroupRequest true "Income group details"
// @Success     201 {object} IncomeGroupResponse "Income group created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /income-groups [post]
func (h *IncomeGroupHandler) CreateIncomeGroup(c *gin.Context) {
	var req CreateIncomeGroupRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	group, err := h.incomeGroupService.CreateIncomeGroup(c.Request.Context(), req.Name, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.respondWithSummary(c, http.StatusCreated, group.ID)
}

// ListIncomeGroups handles listing income groups
// @Summary     List income groups
// @Description List every income group with its spent and remaining amounts
// @Tags        income-groups
// @Produce     json
// @Success     200 {array}  services.IncomeGroupSummary "Income groups"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /income-groups [get]
func (h *IncomeGroupHandler) ListIncomeGroups(c *gin.Context) {
	summaries, err := h.viewService.IncomeGroupSummaries(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"income_groups": summaries})
}

// GetIncomeGroup handles the retrieval of an income group
// @Summary     Get income group by ID
// @Tags        income-groups
// @Produce     json
// @Param       id path string true "Income group ID"
// @Success     200 {object} IncomeGroupResponse "Income group"
// @Failure     404 {object} ErrorResponse "Income group not found"
// @Router      /income-groups/{id} [get]
func (h *IncomeGroupHandler) GetIncomeGroup(c *gin.Context) {
	groupID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.respondWithSummary(c, http.StatusOK, groupID)
}

// UpdateIncomeGroup handles updating an income group
// @Summary     Update an income group
// @Description Rename an income group or change its allotment; the remaining amount is recomputed
// @Tags        income-groups
// @Accept      json
// @Produce     json
// @Param       id      path string                   true "Income group ID"
// @Param       request body UpdateIncomeGroupRequest true "Fields to update"
// @Success     200 {object} IncomeGroupResponse "Income group updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Income group not found"
// @Router      /income-groups/{id} [put]
func (h *IncomeGroupHandler) UpdateIncomeGroup(c *gin.Context) {
	groupID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateIncomeGroupRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	if _, err := h.incomeGroupService.UpdateIncomeGroup(c.Request.Context(), groupID, req.Name, req.Amount); err != nil {
		respondWithError(c, err)
		return
	}

	h.respondWithSummary(c, http.StatusOK, groupID)
}

// DeleteIncomeGroup handles deleting an income group
// @Summary     Delete an income group
// @Description Delete an income group. Its transactions are kept and lose the reference.
// @Tags        income-groups
// @Produce     json
// @Param       id path string true "Income group ID"
// @Success     200 {object} MessageResponse "Income group deleted"
// @Failure     404 {object} ErrorResponse "Income group not found"
// @Router      /income-groups/{id} [delete]
func (h *IncomeGroupHandler) DeleteIncomeGroup(c *gin.Context) {
	groupID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.incomeGroupService.DeleteIncomeGroup(c.Request.Context(), groupID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Income group deleted successfully"})
}

func (h *IncomeGroupHandler) respondWithSummary(c *gin.Context, status int, groupID string) {
	summary, err := h.viewService.IncomeGroupSummary(c.Request.Context(), groupID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(status, IncomeGroupResponse{IncomeGroup: *summary})
}
