// Package memory provides an in-memory implementation of the stock
// repositories and transaction scope. It backs application-level tests that
// exercise multi-step workflows, including rollback on error, without a
// database.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	appstock "github.com/retailcore/backend/internal/application/stock"
	"github.com/retailcore/backend/internal/domain/purchase"
	"github.com/retailcore/backend/internal/domain/stock"
	"github.com/retailcore/backend/internal/domain/transfer"
)

// Store holds all aggregates in maps keyed by ID. Access runs under one
// mutex; the store trades concurrency for simplicity, which is all tests
// need.
type Store struct {
	mu          sync.Mutex
	items       map[uuid.UUID]stock.StockItem
	movements   map[uuid.UUID]stock.StockMovement
	batches     map[uuid.UUID]stock.StockBatch
	adjustments map[uuid.UUID]stock.StockAdjustment
	transfers   map[uuid.UUID]transfer.StockTransfer
	purchases   map[uuid.UUID]purchase.Purchase
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		items:       make(map[uuid.UUID]stock.StockItem),
		movements:   make(map[uuid.UUID]stock.StockMovement),
		batches:     make(map[uuid.UUID]stock.StockBatch),
		adjustments: make(map[uuid.UUID]stock.StockAdjustment),
		transfers:   make(map[uuid.UUID]transfer.StockTransfer),
		purchases:   make(map[uuid.UUID]purchase.Purchase),
	}
}

// snapshot captures the full store state for rollback
type snapshot struct {
	items       map[uuid.UUID]stock.StockItem
	movements   map[uuid.UUID]stock.StockMovement
	batches     map[uuid.UUID]stock.StockBatch
	adjustments map[uuid.UUID]stock.StockAdjustment
	transfers   map[uuid.UUID]transfer.StockTransfer
	purchases   map[uuid.UUID]purchase.Purchase
}

func (s *Store) takeSnapshot() snapshot {
	snap := snapshot{
		items:       make(map[uuid.UUID]stock.StockItem, len(s.items)),
		movements:   make(map[uuid.UUID]stock.StockMovement, len(s.movements)),
		batches:     make(map[uuid.UUID]stock.StockBatch, len(s.batches)),
		adjustments: make(map[uuid.UUID]stock.StockAdjustment, len(s.adjustments)),
		transfers:   make(map[uuid.UUID]transfer.StockTransfer, len(s.transfers)),
		purchases:   make(map[uuid.UUID]purchase.Purchase, len(s.purchases)),
	}
	for k, v := range s.items {
		snap.items[k] = cloneStockItem(v)
	}
	for k, v := range s.movements {
		snap.movements[k] = v
	}
	for k, v := range s.batches {
		snap.batches[k] = v
	}
	for k, v := range s.adjustments {
		snap.adjustments[k] = v
	}
	for k, v := range s.transfers {
		snap.transfers[k] = cloneTransfer(v)
	}
	for k, v := range s.purchases {
		snap.purchases[k] = clonePurchase(v)
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.items = snap.items
	s.movements = snap.movements
	s.batches = snap.batches
	s.adjustments = snap.adjustments
	s.transfers = snap.transfers
	s.purchases = snap.purchases
}

func cloneStockItem(item stock.StockItem) stock.StockItem {
	clone := item
	clone.Batches = append([]stock.StockBatch(nil), item.Batches...)
	return clone
}

func cloneTransfer(t transfer.StockTransfer) transfer.StockTransfer {
	clone := t
	clone.Items = append([]transfer.StockTransferItem(nil), t.Items...)
	return clone
}

func clonePurchase(p purchase.Purchase) purchase.Purchase {
	clone := p
	clone.Items = append([]purchase.PurchaseItem(nil), p.Items...)
	return clone
}

// Scope implements TransactionScope over a Store. A snapshot is taken before
// the function runs; an error restores it, so partial writes never survive,
// mirroring a database rollback.
type Scope struct {
	store *Store
}

// NewScope creates a transaction scope over the given store
func NewScope(store *Store) *Scope {
	return &Scope{store: store}
}

// Execute runs fn against the store, rolling back all writes on error
func (s *Scope) Execute(_ context.Context, fn func(repos appstock.TransactionalRepositories) error) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	snap := s.store.takeSnapshot()
	repos := &repositories{store: s.store}
	if err := fn(repos); err != nil {
		s.store.restore(snap)
		return err
	}
	return nil
}

// repositories provides repository access bound to the store
type repositories struct {
	store *Store
}

// StockItems returns the stock item repository
func (r *repositories) StockItems() stock.StockItemRepository {
	return &stockItemRepo{store: r.store}
}

// Movements returns the movement repository
func (r *repositories) Movements() stock.StockMovementRepository {
	return &movementRepo{store: r.store}
}

// Batches returns the batch repository
func (r *repositories) Batches() stock.StockBatchRepository {
	return &batchRepo{store: r.store}
}

// Adjustments returns the adjustment repository
func (r *repositories) Adjustments() stock.StockAdjustmentRepository {
	return &adjustmentRepo{store: r.store}
}

// Transfers returns the transfer repository
func (r *repositories) Transfers() transfer.StockTransferRepository {
	return &transferRepo{store: r.store}
}

// Purchases returns the purchase repository
func (r *repositories) Purchases() purchase.PurchaseRepository {
	return &purchaseRepo{store: r.store}
}

// Ensure the memory implementations satisfy the application contracts
var _ appstock.TransactionScope = (*Scope)(nil)
var _ appstock.TransactionalRepositories = (*repositories)(nil)
