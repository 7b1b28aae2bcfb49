/*
store.go - Persistence interfaces consumed by the engine

PURPOSE:
  Defines the boundary between the scheduling/allocation logic and the
  stores that own the data. The engine never persists anything itself; it
  reads orders, the product catalog, and WIP pipeline counts, and mutates
  finished stock and allocation records only through AllocationTx.

READ PATH vs WRITE PATH:
  The read interfaces (OrderStore, ProductStore, PipelineStore,
  AllocationStore) back the schedule report: plain queries, no locking
  required of the caller. The write path goes exclusively through
  AllocationTx.WithProductTx, which serializes concurrent mutations
  against the same product and makes the whole closure atomic: either
  every mutation inside commits, or none do.

TIMEOUTS:
  Every method takes a context. Implementations surface timeouts and
  connectivity failures as TransientStoreError so callers can retry from
  a clean state; they never report partial success.

IMPLEMENTATIONS:
  - store/sqlite:     production store (SQLite, WAL, per-product locks)
  - production/store: in-memory store for tests and demos
*/
package production

import (
	"context"
	"time"
)

// OrderStore reads production-active orders and writes back delivery
// estimates computed by the planner.
type OrderStore interface {
	// ListActiveOrders returns orders whose status contributes demand,
	// line items included.
	ListActiveOrders(ctx context.Context) ([]Order, error)

	// GetOrder returns one order with its line items.
	GetOrder(ctx context.Context, orderID int64) (Order, error)

	// SetEstimatedDelivery writes the planner's delivery estimate.
	SetEstimatedDelivery(ctx context.Context, orderID int64, date time.Time) error
}

// ProductStore reads the catalog. The engine never mutates products.
type ProductStore interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, productID int64) (Product, error)
}

// PipelineStore reads WIP stage counts. SetStatus exists for the floor
// operations that advance stages; the engine itself only ever touches the
// finished count, and only inside an AllocationTx.
type PipelineStore interface {
	ListStatuses(ctx context.Context) ([]PipelineStatus, error)
	GetStatus(ctx context.Context, productID int64) (PipelineStatus, error)
	SetStatus(ctx context.Context, status PipelineStatus) error
}

// AllocationStore reads allocation records. Mutation happens only through
// AllocationTx.
type AllocationStore interface {
	ListByProduct(ctx context.Context, productID int64) ([]Allocation, error)

	// GetAllocation returns the record for the identity triple, or
	// ErrAllocationNotFound.
	GetAllocation(ctx context.Context, productID, orderID int64, stage AllocationStage) (Allocation, error)
}

// AllocationTx opens a per-product critical section. Two concurrent calls
// for the same product serialize; calls for different products may proceed
// in parallel. If fn returns an error every mutation made through the
// mutator is rolled back.
type AllocationTx interface {
	WithProductTx(ctx context.Context, productID int64, fn func(AllocationMutator) error) error
}

// AllocationMutator is the view inside a product's critical section. All
// reads see the locked state; all writes commit together when the closure
// returns nil.
type AllocationMutator interface {
	// FinishedStock returns the product's current finished count.
	FinishedStock() (int, error)

	// OrderLine returns the order's line item for the locked product.
	// Errors: ErrOrderNotFound, ErrNoLineItem.
	OrderLine(orderID int64) (OrderLine, error)

	// Allocation returns the existing record for (product, order, stage),
	// or ErrAllocationNotFound.
	Allocation(orderID int64, stage AllocationStage) (Allocation, error)

	// AdjustFinished adds delta (may be negative) to the finished count.
	// Implementations must reject a result below zero.
	AdjustFinished(delta int) error

	// SaveAllocation inserts or replaces the record for its identity triple.
	SaveAllocation(a Allocation) error

	// DeleteAllocation removes the record for the triple.
	DeleteAllocation(orderID int64, stage AllocationStage) error

	// AdjustLineAllocated adds delta to the order line's allocated count
	// for the locked product.
	AdjustLineAllocated(orderID int64, delta int) error
}

// Store bundles everything the server wires together.
type Store interface {
	OrderStore
	ProductStore
	PipelineStore
	AllocationStore
	AllocationTx
}
