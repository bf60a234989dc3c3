package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appstock "github.com/retailcore/backend/internal/application/stock"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/stock"
)

// AdjustmentHandler handles manual stock correction endpoints
type AdjustmentHandler struct {
	BaseHandler
	adjustments *appstock.AdjustmentService
}

// NewAdjustmentHandler creates a new AdjustmentHandler
func NewAdjustmentHandler(adjustments *appstock.AdjustmentService) *AdjustmentHandler {
	return &AdjustmentHandler{adjustments: adjustments}
}

// RegisterRoutes mounts the adjustment endpoints
func (h *AdjustmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	adjustments := rg.Group("/adjustments")
	{
		adjustments.GET("", h.ListByBranch)
		adjustments.POST("", h.Create)
		adjustments.GET(":id", h.Get)
		adjustments.POST(":id/approve", h.Approve)
		adjustments.DELETE(":id", h.Delete)
	}
}

// CreateAdjustmentRequest is the request body for creating an adjustment
type CreateAdjustmentRequest struct {
	BranchID       string `json:"branch_id" binding:"required,uuid"`
	ProductID      string `json:"product_id" binding:"required,uuid"`
	AdjustmentType string `json:"adjustment_type" binding:"required,oneof=increase decrease"`
	Quantity       string `json:"quantity" binding:"required,dpositive"`
	Reason         string `json:"reason" binding:"required"`
	Note           string `json:"note"`
}

// Create records a manual correction and mutates the ledger immediately
// POST /api/v1/adjustments
func (h *AdjustmentHandler) Create(c *gin.Context) {
	businessID, err := getBusinessID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var req CreateAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		h.BadRequest(c, "invalid quantity")
		return
	}

	view, err := h.adjustments.Create(c.Request.Context(), appstock.CreateAdjustmentCommand{
		BusinessID:     businessID,
		BranchID:       uuid.MustParse(req.BranchID),
		ProductID:      uuid.MustParse(req.ProductID),
		AdjustmentType: stock.AdjustmentType(req.AdjustmentType),
		Quantity:       quantity,
		Reason:         stock.AdjustmentReason(req.Reason),
		Note:           req.Note,
		ActorID:        actorID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, view)
}

// Approve signs off an adjustment
// POST /api/v1/adjustments/:id/approve
func (h *AdjustmentHandler) Approve(c *gin.Context) {
	businessID, err := getBusinessID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	adjustmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid adjustment ID")
		return
	}

	view, err := h.adjustments.Approve(c.Request.Context(), businessID, adjustmentID, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Delete removes an unapproved adjustment and reverses its ledger mutation
// DELETE /api/v1/adjustments/:id
func (h *AdjustmentHandler) Delete(c *gin.Context) {
	businessID, err := getBusinessID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	adjustmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid adjustment ID")
		return
	}

	if err := h.adjustments.Delete(c.Request.Context(), businessID, adjustmentID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Get returns one adjustment
// GET /api/v1/adjustments/:id
func (h *AdjustmentHandler) Get(c *gin.Context) {
	businessID, err := getBusinessID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	adjustmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid adjustment ID")
		return
	}

	view, err := h.adjustments.Get(c.Request.Context(), businessID, adjustmentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// ListByBranch returns adjustments for a branch, newest first
// GET /api/v1/adjustments?branch_id=...
func (h *AdjustmentHandler) ListByBranch(c *gin.Context) {
	businessID, err := getBusinessID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	branchID, err := uuid.Parse(c.Query("branch_id"))
	if err != nil {
		h.BadRequest(c, "invalid branch ID")
		return
	}

	views, err := h.adjustments.ListByBranch(c.Request.Context(), businessID, branchID, shared.DefaultFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, views)
}
