package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appstock "github.com/retailcore/backend/internal/application/stock"
	"github.com/retailcore/backend/internal/domain/shared"
)

// StockHandler handles ledger snapshot and movement endpoints
type StockHandler struct {
	BaseHandler
	ledger *appstock.LedgerService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(ledger *appstock.LedgerService) *StockHandler {
	return &StockHandler{ledger: ledger}
}

// ReserveStockRequest is the request body for reserving stock
type ReserveStockRequest struct {
	BranchID  string `json:"branch_id" binding:"required,uuid"`
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  string `json:"quantity" binding:"required,dpositive"`
}

// RegisterRoutes mounts the stock endpoints
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stock := rg.Group("/stock")
	{
		stock.GET("/branches/:branchID", h.ListBranch)
		stock.GET("/branches/:branchID/products/:productID", h.GetSnapshot)
		stock.GET("/branches/:branchID/products/:productID/reconcile", h.Reconcile)
		stock.GET("/items/:stockItemID/movements", h.ListMovements)
		stock.GET("/items/:stockItemID/batches", h.ListBatches)
		stock.POST("/reserve", h.Reserve)
		stock.POST("/release", h.Release)
	}
}

// GetSnapshot returns the ledger snapshot for a branch-product combination
// GET /api/v1/stock/branches/:branchID/products/:productID
func (h *StockHandler) GetSnapshot(c *gin.Context) {
	businessID, err := getBusinessID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	branchID, err := uuid.Parse(c.Param("branchID"))
	if err != nil {
		h.BadRequest(c, "invalid branch ID")
		return
	}
	productID, err := uuid.Parse(c.Param("productID"))
	if err != nil {
		h.BadRequest(c, "invalid product ID")
		return
	}

	view, err := h.ledger.GetSnapshot(c.Request.Context(), businessID, branchID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// ListBranch returns all snapshots in a branch
// GET /api/v1/stock/branches/:branchID
func (h *StockHandler) ListBranch(c *gin.Context) {
	businessID, err := getBusinessID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	branchID, err := uuid.Parse(c.Param("branchID"))
	if err != nil {
		h.BadRequest(c, "invalid branch ID")
		return
	}

	views, err := h.ledger.ListBranchSnapshots(c.Request.Context(), businessID, branchID, shared.DefaultFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, views)
}

// ListMovements returns the movement history for a stock item
// GET /api/v1/stock/items/:stockItemID/movements
func (h *StockHandler) ListMovements(c *gin.Context) {
	stockItemID, err := uuid.Parse(c.Param("stockItemID"))
	if err != nil {
		h.BadRequest(c, "invalid stock item ID")
		return
	}

	views, err := h.ledger.ListMovements(c.Request.Context(), stockItemID, shared.DefaultFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, views)
}

// ListBatches returns the cost lots for a stock item
// GET /api/v1/stock/items/:stockItemID/batches
func (h *StockHandler) ListBatches(c *gin.Context) {
	stockItemID, err := uuid.Parse(c.Param("stockItemID"))
	if err != nil {
		h.BadRequest(c, "invalid stock item ID")
		return
	}

	views, err := h.ledger.ListBatches(c.Request.Context(), stockItemID, shared.DefaultFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, views)
}

// Reserve earmarks available quantity on a snapshot
// POST /api/v1/stock/reserve
func (h *StockHandler) Reserve(c *gin.Context) {
	businessID, err := getBusinessID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var req ReserveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		h.BadRequest(c, "invalid quantity")
		return
	}

	branchID := uuid.MustParse(req.BranchID)
	productID := uuid.MustParse(req.ProductID)

	if err := h.ledger.Reserve(c.Request.Context(), businessID, branchID, productID, quantity); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Reconcile compares the snapshot quantity against the summed movement deltas
// GET /api/v1/stock/branches/:branchID/products/:productID/reconcile
func (h *StockHandler) Reconcile(c *gin.Context) {
	businessID, err := getBusinessID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	branchID, err := uuid.Parse(c.Param("branchID"))
	if err != nil {
		h.BadRequest(c, "invalid branch ID")
		return
	}
	productID, err := uuid.Parse(c.Param("productID"))
	if err != nil {
		h.BadRequest(c, "invalid product ID")
		return
	}

	snapshot, ledgerSum, err := h.ledger.Reconcile(c.Request.Context(), businessID, branchID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{
		"snapshot_quantity": snapshot,
		"ledger_sum":        ledgerSum,
		"consistent":        snapshot.Equal(ledgerSum),
	})
}

// Release returns earmarked quantity to the available pool
// POST /api/v1/stock/release
func (h *StockHandler) Release(c *gin.Context) {
	businessID, err := getBusinessID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var req ReserveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		h.BadRequest(c, "invalid quantity")
		return
	}

	branchID := uuid.MustParse(req.BranchID)
	productID := uuid.MustParse(req.ProductID)

	if err := h.ledger.ReleaseReservation(c.Request.Context(), businessID, branchID, productID, quantity); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
