package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailcore/backend/internal/application/receiving"
	"github.com/retailcore/backend/internal/domain/shared/valueobject"
)

// PurchaseHandler handles purchase order and goods receipt endpoints
type PurchaseHandler struct {
	BaseHandler
	receiving *receiving.ReceivingService
}

// NewPurchaseHandler creates a new PurchaseHandler
func NewPurchaseHandler(svc *receiving.ReceivingService) *PurchaseHandler {
	return &PurchaseHandler{receiving: svc}
}

// RegisterRoutes mounts the purchase endpoints
func (h *PurchaseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	purchases := rg.Group("/purchases")
	{
		purchases.POST("", h.Create)
		purchases.GET(":id", h.Get)
		purchases.POST(":id/receive", h.Receive)
		purchases.POST(":id/cancel", h.Cancel)
	}
}

// CreatePurchaseRequest is the request body for creating a purchase order
type CreatePurchaseRequest struct {
	PurchaseNumber string                `json:"purchase_number" binding:"required"`
	BranchID       string                `json:"branch_id" binding:"required,uuid"`
	SupplierID     string                `json:"supplier_id" binding:"required,uuid"`
	Currency       string                `json:"currency"`
	ExchangeRate   string                `json:"exchange_rate" binding:"omitempty,decimal"`
	TaxAmount      string                `json:"tax_amount" binding:"omitempty,decimal"`
	Items          []PurchaseLineRequest `json:"items" binding:"required,min=1,dive"`
}

// PurchaseLineRequest is one ordered line on a new purchase
type PurchaseLineRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  string `json:"quantity" binding:"required,dpositive"`
	UnitCost  string `json:"unit_cost" binding:"required,decimal"`
}

// ReceiveGoodsRequest is the request body for recording a goods receipt
type ReceiveGoodsRequest struct {
	ReceivedDate string               `json:"received_date"`
	Lines        []ReceiveLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ReceiveLineRequest is one received quantity against a purchase line
type ReceiveLineRequest struct {
	PurchaseItemID string `json:"purchase_item_id" binding:"required,uuid"`
	Quantity       string `json:"quantity" binding:"required,dpositive"`
}

// CancelPurchaseRequest is the request body for cancelling a purchase
type CancelPurchaseRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Create opens a purchase order and places it with the supplier
// POST /api/v1/purchases
func (h *PurchaseHandler) Create(c *gin.Context) {
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

	var req CreatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	exchangeRate := decimal.NewFromInt(1)
	if req.ExchangeRate != "" {
		exchangeRate, err = decimal.NewFromString(req.ExchangeRate)
		if err != nil {
			h.BadRequest(c, "invalid exchange rate")
			return
		}
	}
	taxAmount := decimal.Zero
	if req.TaxAmount != "" {
		taxAmount, err = decimal.NewFromString(req.TaxAmount)
		if err != nil {
			h.BadRequest(c, "invalid tax amount")
			return
		}
	}

	items := make([]receiving.PurchaseLineInput, 0, len(req.Items))
	for _, line := range req.Items {
		quantity, err := decimal.NewFromString(line.Quantity)
		if err != nil {
			h.BadRequest(c, "invalid quantity")
			return
		}
		unitCost, err := decimal.NewFromString(line.UnitCost)
		if err != nil {
			h.BadRequest(c, "invalid unit cost")
			return
		}
		items = append(items, receiving.PurchaseLineInput{
			ProductID: uuid.MustParse(line.ProductID),
			Quantity:  quantity,
			UnitCost:  unitCost,
		})
	}

	view, err := h.receiving.CreatePurchase(c.Request.Context(), receiving.CreatePurchaseCommand{
		BusinessID:     businessID,
		PurchaseNumber: req.PurchaseNumber,
		BranchID:       uuid.MustParse(req.BranchID),
		SupplierID:     uuid.MustParse(req.SupplierID),
		Currency:       valueobject.Currency(req.Currency),
		ExchangeRate:   exchangeRate,
		TaxAmount:      taxAmount,
		ActorID:        actorID,
		Items:          items,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, view)
}

// Receive records goods arriving against a purchase
// POST /api/v1/purchases/:id/receive
func (h *PurchaseHandler) Receive(c *gin.Context) {
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
	purchaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid purchase ID")
		return
	}

	var req ReceiveGoodsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	receivedDate := time.Now()
	if req.ReceivedDate != "" {
		receivedDate, err = parseDate(req.ReceivedDate)
		if err != nil {
			h.BadRequest(c, "invalid received date")
			return
		}
	}

	lines := make([]receiving.ReceiveLineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		quantity, err := decimal.NewFromString(line.Quantity)
		if err != nil {
			h.BadRequest(c, "invalid quantity")
			return
		}
		lines = append(lines, receiving.ReceiveLineInput{
			PurchaseItemID: uuid.MustParse(line.PurchaseItemID),
			Quantity:       quantity,
		})
	}

	view, err := h.receiving.ReceiveGoods(c.Request.Context(), receiving.ReceiveGoodsCommand{
		BusinessID:   businessID,
		PurchaseID:   purchaseID,
		ActorID:      actorID,
		ReceivedDate: receivedDate,
		Lines:        lines,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Cancel aborts a purchase before any goods were received
// POST /api/v1/purchases/:id/cancel
func (h *PurchaseHandler) Cancel(c *gin.Context) {
	businessID, err := getBusinessID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	purchaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid purchase ID")
		return
	}

	var req CancelPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	view, err := h.receiving.CancelPurchase(c.Request.Context(), businessID, purchaseID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Get returns one purchase with its lines
// GET /api/v1/purchases/:id
func (h *PurchaseHandler) Get(c *gin.Context) {
	businessID, err := getBusinessID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	purchaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid purchase ID")
		return
	}

	view, err := h.receiving.GetPurchase(c.Request.Context(), businessID, purchaseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// parseDate accepts RFC 3339 timestamps or bare dates
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
