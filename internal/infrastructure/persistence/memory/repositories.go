package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailcore/backend/internal/domain/purchase"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/stock"
	"github.com/retailcore/backend/internal/domain/transfer"
)

type stockItemRepo struct {
	store *Store
}

func (r *stockItemRepo) FindByID(_ context.Context, id uuid.UUID) (*stock.StockItem, error) {
	item, ok := r.store.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := cloneStockItem(item)
	return &clone, nil
}

func (r *stockItemRepo) FindByBranchAndProduct(_ context.Context, businessID, branchID, productID uuid.UUID) (*stock.StockItem, error) {
	for _, item := range r.store.items {
		if item.BusinessID == businessID && item.BranchID == branchID && item.ProductID == productID {
			clone := cloneStockItem(item)
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *stockItemRepo) FindForUpdate(ctx context.Context, businessID, branchID, productID uuid.UUID) (*stock.StockItem, error) {
	// The store mutex already serializes scopes; no row lock to take.
	return r.FindByBranchAndProduct(ctx, businessID, branchID, productID)
}

func (r *stockItemRepo) GetOrCreate(ctx context.Context, businessID, branchID, productID uuid.UUID) (*stock.StockItem, error) {
	if item, err := r.FindByBranchAndProduct(ctx, businessID, branchID, productID); err == nil {
		return item, nil
	}
	item, err := stock.NewStockItem(businessID, branchID, productID)
	if err != nil {
		return nil, err
	}
	r.store.items[item.ID] = cloneStockItem(*item)
	return item, nil
}

func (r *stockItemRepo) GetOrCreateForUpdate(ctx context.Context, businessID, branchID, productID uuid.UUID) (*stock.StockItem, error) {
	return r.GetOrCreate(ctx, businessID, branchID, productID)
}

func (r *stockItemRepo) FindByBranch(_ context.Context, businessID, branchID uuid.UUID, _ shared.Filter) ([]stock.StockItem, error) {
	var items []stock.StockItem
	for _, item := range r.store.items {
		if item.BusinessID == businessID && item.BranchID == branchID {
			items = append(items, cloneStockItem(item))
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (r *stockItemRepo) Save(_ context.Context, item *stock.StockItem) error {
	r.store.items[item.ID] = cloneStockItem(*item)
	return nil
}

type movementRepo struct {
	store *Store
}

func (r *movementRepo) FindByID(_ context.Context, id uuid.UUID) (*stock.StockMovement, error) {
	movement, ok := r.store.movements[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &movement, nil
}

func (r *movementRepo) FindByStockItem(_ context.Context, stockItemID uuid.UUID, _ shared.Filter) ([]stock.StockMovement, error) {
	var movements []stock.StockMovement
	for _, m := range r.store.movements {
		if m.StockItemID == stockItemID {
			movements = append(movements, m)
		}
	}
	sort.Slice(movements, func(i, j int) bool {
		return movements[i].OccurredAt.After(movements[j].OccurredAt)
	})
	return movements, nil
}

func (r *movementRepo) FindByReference(_ context.Context, reference stock.MovementReference) ([]stock.StockMovement, error) {
	var movements []stock.StockMovement
	for _, m := range r.store.movements {
		if m.Reference == reference {
			movements = append(movements, m)
		}
	}
	sort.Slice(movements, func(i, j int) bool {
		return movements[i].OccurredAt.Before(movements[j].OccurredAt)
	})
	return movements, nil
}

func (r *movementRepo) Create(_ context.Context, movement *stock.StockMovement) error {
	r.store.movements[movement.ID] = *movement
	return nil
}

func (r *movementRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.store.movements[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.store.movements, id)
	return nil
}

func (r *movementRepo) SumDeltaByStockItem(_ context.Context, stockItemID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, m := range r.store.movements {
		if m.StockItemID == stockItemID {
			total = total.Add(m.Quantity)
		}
	}
	return total, nil
}

type batchRepo struct {
	store *Store
}

func (r *batchRepo) FindByID(_ context.Context, id uuid.UUID) (*stock.StockBatch, error) {
	batch, ok := r.store.batches[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &batch, nil
}

func (r *batchRepo) FindByStockItem(_ context.Context, stockItemID uuid.UUID, _ shared.Filter) ([]stock.StockBatch, error) {
	var batches []stock.StockBatch
	for _, b := range r.store.batches {
		if b.StockItemID == stockItemID {
			batches = append(batches, b)
		}
	}
	sortBatchesFIFO(batches)
	return batches, nil
}

func (r *batchRepo) FindOpenFIFO(_ context.Context, stockItemID uuid.UUID) ([]stock.StockBatch, error) {
	var batches []stock.StockBatch
	for _, b := range r.store.batches {
		if b.StockItemID == stockItemID && !b.IsExhausted() {
			batches = append(batches, b)
		}
	}
	sortBatchesFIFO(batches)
	return batches, nil
}

func (r *batchRepo) Create(_ context.Context, batch *stock.StockBatch) error {
	r.store.batches[batch.ID] = *batch
	return nil
}

func (r *batchRepo) Save(_ context.Context, batch *stock.StockBatch) error {
	r.store.batches[batch.ID] = *batch
	return nil
}

func sortBatchesFIFO(batches []stock.StockBatch) {
	sort.Slice(batches, func(i, j int) bool {
		if !batches[i].ReceivedDate.Equal(batches[j].ReceivedDate) {
			return batches[i].ReceivedDate.Before(batches[j].ReceivedDate)
		}
		return batches[i].CreatedAt.Before(batches[j].CreatedAt)
	})
}

type adjustmentRepo struct {
	store *Store
}

func (r *adjustmentRepo) FindByID(_ context.Context, businessID, id uuid.UUID) (*stock.StockAdjustment, error) {
	adjustment, ok := r.store.adjustments[id]
	if !ok || adjustment.BusinessID != businessID {
		return nil, shared.ErrNotFound
	}
	return &adjustment, nil
}

func (r *adjustmentRepo) FindByBranch(_ context.Context, businessID, branchID uuid.UUID, _ shared.Filter) ([]stock.StockAdjustment, error) {
	var adjustments []stock.StockAdjustment
	for _, a := range r.store.adjustments {
		if a.BusinessID == businessID && a.BranchID == branchID {
			adjustments = append(adjustments, a)
		}
	}
	sort.Slice(adjustments, func(i, j int) bool {
		return adjustments[i].CreatedAt.After(adjustments[j].CreatedAt)
	})
	return adjustments, nil
}

func (r *adjustmentRepo) Save(_ context.Context, adjustment *stock.StockAdjustment) error {
	r.store.adjustments[adjustment.ID] = *adjustment
	return nil
}

func (r *adjustmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.store.adjustments[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.store.adjustments, id)
	return nil
}

type transferRepo struct {
	store *Store
}

func (r *transferRepo) FindByID(_ context.Context, businessID, id uuid.UUID) (*transfer.StockTransfer, error) {
	t, ok := r.store.transfers[id]
	if !ok || t.BusinessID != businessID {
		return nil, shared.ErrNotFound
	}
	clone := cloneTransfer(t)
	return &clone, nil
}

func (r *transferRepo) FindByIDForUpdate(ctx context.Context, businessID, id uuid.UUID) (*transfer.StockTransfer, error) {
	return r.FindByID(ctx, businessID, id)
}

func (r *transferRepo) FindByStatus(_ context.Context, businessID uuid.UUID, status transfer.TransferStatus, _ shared.Filter) ([]transfer.StockTransfer, error) {
	var transfers []transfer.StockTransfer
	for _, t := range r.store.transfers {
		if t.BusinessID == businessID && t.Status == status {
			transfers = append(transfers, cloneTransfer(t))
		}
	}
	sort.Slice(transfers, func(i, j int) bool {
		return transfers[i].CreatedAt.After(transfers[j].CreatedAt)
	})
	return transfers, nil
}

func (r *transferRepo) FindByBranch(_ context.Context, businessID, branchID uuid.UUID, _ shared.Filter) ([]transfer.StockTransfer, error) {
	var transfers []transfer.StockTransfer
	for _, t := range r.store.transfers {
		if t.BusinessID == businessID && (t.SourceBranchID == branchID || t.DestBranchID == branchID) {
			transfers = append(transfers, cloneTransfer(t))
		}
	}
	sort.Slice(transfers, func(i, j int) bool {
		return transfers[i].CreatedAt.After(transfers[j].CreatedAt)
	})
	return transfers, nil
}

func (r *transferRepo) Save(_ context.Context, t *transfer.StockTransfer) error {
	r.store.transfers[t.ID] = cloneTransfer(*t)
	return nil
}

type purchaseRepo struct {
	store *Store
}

func (r *purchaseRepo) FindByID(_ context.Context, businessID, id uuid.UUID) (*purchase.Purchase, error) {
	p, ok := r.store.purchases[id]
	if !ok || p.BusinessID != businessID {
		return nil, shared.ErrNotFound
	}
	clone := clonePurchase(p)
	return &clone, nil
}

func (r *purchaseRepo) FindByIDForUpdate(ctx context.Context, businessID, id uuid.UUID) (*purchase.Purchase, error) {
	return r.FindByID(ctx, businessID, id)
}

func (r *purchaseRepo) FindByStatus(_ context.Context, businessID uuid.UUID, status purchase.PurchaseStatus, _ shared.Filter) ([]purchase.Purchase, error) {
	var purchases []purchase.Purchase
	for _, p := range r.store.purchases {
		if p.BusinessID == businessID && p.Status == status {
			purchases = append(purchases, clonePurchase(p))
		}
	}
	sort.Slice(purchases, func(i, j int) bool {
		return purchases[i].CreatedAt.After(purchases[j].CreatedAt)
	})
	return purchases, nil
}

func (r *purchaseRepo) Save(_ context.Context, p *purchase.Purchase) error {
	r.store.purchases[p.ID] = clonePurchase(*p)
	return nil
}

// Ensure the memory repositories implement the domain contracts
var (
	_ stock.StockItemRepository        = (*stockItemRepo)(nil)
	_ stock.StockMovementRepository    = (*movementRepo)(nil)
	_ stock.StockBatchRepository       = (*batchRepo)(nil)
	_ stock.StockAdjustmentRepository  = (*adjustmentRepo)(nil)
	_ transfer.StockTransferRepository = (*transferRepo)(nil)
	_ purchase.PurchaseRepository      = (*purchaseRepo)(nil)
)
