package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apptransfer "github.com/retailcore/backend/internal/application/transfer"
	"github.com/retailcore/backend/internal/domain/shared"
)

// TransferHandler handles inter-branch transfer endpoints
type TransferHandler struct {
	BaseHandler
	transfers *apptransfer.TransferService
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(transfers *apptransfer.TransferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

// RegisterRoutes mounts the transfer endpoints
func (h *TransferHandler) RegisterRoutes(rg *gin.RouterGroup) {
	transfers := rg.Group("/transfers")
	{
		transfers.GET("", h.ListByBranch)
		transfers.POST("", h.Create)
		transfers.GET(":id", h.Get)
		transfers.POST(":id/approve", h.Approve)
		transfers.POST(":id/send", h.Send)
		transfers.POST(":id/receive", h.Receive)
		transfers.POST(":id/cancel", h.Cancel)
	}
}

// CreateTransferRequest is the request body for creating a transfer
type CreateTransferRequest struct {
	TransferNumber string                `json:"transfer_number" binding:"required"`
	SourceBranchID string                `json:"source_branch_id" binding:"required,uuid"`
	DestBranchID   string                `json:"dest_branch_id" binding:"required,uuid"`
	Note           string                `json:"note"`
	Items          []TransferLineRequest `json:"items" binding:"required,min=1,dive"`
}

// TransferLineRequest is one requested line on a new transfer
type TransferLineRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  string `json:"quantity" binding:"required,dpositive"`
}

// TransferQuantityOverride overrides the quantity for one line on send or
// receive
type TransferQuantityOverride struct {
	TransferItemID string `json:"transfer_item_id" binding:"required,uuid"`
	Quantity       string `json:"quantity" binding:"required,decimal"`
}

// QuantityOverridesRequest is the optional request body for send and receive
type QuantityOverridesRequest struct {
	Lines []TransferQuantityOverride `json:"lines" binding:"omitempty,dive"`
}

// CancelTransferRequest is the request body for cancelling a transfer
type CancelTransferRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Create opens a pending transfer between two branches
// POST /api/v1/transfers
func (h *TransferHandler) Create(c *gin.Context) {
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

	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	items := make([]apptransfer.TransferLineInput, 0, len(req.Items))
	for _, line := range req.Items {
		quantity, err := decimal.NewFromString(line.Quantity)
		if err != nil {
			h.BadRequest(c, "invalid quantity")
			return
		}
		items = append(items, apptransfer.TransferLineInput{
			ProductID: uuid.MustParse(line.ProductID),
			Quantity:  quantity,
		})
	}

	view, err := h.transfers.Create(c.Request.Context(), apptransfer.CreateTransferCommand{
		BusinessID:     businessID,
		TransferNumber: req.TransferNumber,
		SourceBranchID: uuid.MustParse(req.SourceBranchID),
		DestBranchID:   uuid.MustParse(req.DestBranchID),
		Note:           req.Note,
		ActorID:        actorID,
		Items:          items,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, view)
}

// Approve authorizes a pending transfer
// POST /api/v1/transfers/:id/approve
func (h *TransferHandler) Approve(c *gin.Context) {
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
	transferID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid transfer ID")
		return
	}

	view, err := h.transfers.Approve(c.Request.Context(), businessID, transferID, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Send dispatches an approved transfer and decrements the source ledger
// POST /api/v1/transfers/:id/send
func (h *TransferHandler) Send(c *gin.Context) {
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
	transferID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid transfer ID")
		return
	}

	lines, err := h.bindOverrides(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	sendLines := make([]apptransfer.SendLineInput, 0, len(lines))
	for _, line := range lines {
		sendLines = append(sendLines, apptransfer.SendLineInput(line))
	}

	view, err := h.transfers.Send(c.Request.Context(), apptransfer.SendTransferCommand{
		BusinessID: businessID,
		TransferID: transferID,
		ActorID:    actorID,
		Lines:      sendLines,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Receive completes an in-transit transfer and increments the destination
// ledger
// POST /api/v1/transfers/:id/receive
func (h *TransferHandler) Receive(c *gin.Context) {
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
	transferID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid transfer ID")
		return
	}

	lines, err := h.bindOverrides(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	receiveLines := make([]apptransfer.ReceiveLineInput, 0, len(lines))
	for _, line := range lines {
		receiveLines = append(receiveLines, apptransfer.ReceiveLineInput(line))
	}

	view, err := h.transfers.Receive(c.Request.Context(), apptransfer.ReceiveTransferCommand{
		BusinessID: businessID,
		TransferID: transferID,
		ActorID:    actorID,
		Lines:      receiveLines,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Cancel aborts a transfer; in-transit cancellations restore the source ledger
// POST /api/v1/transfers/:id/cancel
func (h *TransferHandler) Cancel(c *gin.Context) {
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
	transferID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid transfer ID")
		return
	}

	var req CancelTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	view, err := h.transfers.Cancel(c.Request.Context(), businessID, transferID, actorID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Get returns one transfer with its lines
// GET /api/v1/transfers/:id
func (h *TransferHandler) Get(c *gin.Context) {
	businessID, err := getBusinessID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	transferID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid transfer ID")
		return
	}

	view, err := h.transfers.Get(c.Request.Context(), businessID, transferID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// ListByBranch returns transfers touching a branch as source or destination
// GET /api/v1/transfers?branch_id=...
func (h *TransferHandler) ListByBranch(c *gin.Context) {
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

	views, err := h.transfers.ListByBranch(c.Request.Context(), businessID, branchID, shared.DefaultFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, views)
}

type quantityOverride struct {
	TransferItemID uuid.UUID
	Quantity       decimal.Decimal
}

// bindOverrides parses the optional line-override body shared by send and
// receive. An empty body means no overrides.
func (h *TransferHandler) bindOverrides(c *gin.Context) ([]quantityOverride, error) {
	if c.Request.ContentLength == 0 {
		return nil, nil
	}
	var req QuantityOverridesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, err
	}
	overrides := make([]quantityOverride, 0, len(req.Lines))
	for _, line := range req.Lines {
		quantity, err := decimal.NewFromString(line.Quantity)
		if err != nil {
			return nil, err
		}
		overrides = append(overrides, quantityOverride{
			TransferItemID: uuid.MustParse(line.TransferItemID),
			Quantity:       quantity,
		})
	}
	return overrides, nil
}
