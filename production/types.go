/*
Package production is the core scheduling engine for a made-to-order factory.

PURPOSE:
  This package answers one question: given everything our clients are still
  waiting for, when will the factory be done? It aggregates outstanding
  demand per product, models finite per-product and factory-wide daily
  throughput, and simulates a day-by-day production timeline under
  contention for the shared pool.

KEY CONCEPTS IN THIS FILE (types.go):
  - Product:        catalog entry with mold count and turns/day (capacity inputs)
  - Order:          a client order with line items in production
  - OrderLine:      per-product ordered/allocated quantities; Pending() is derived
  - PipelineStatus: aggregate WIP counts per stage (to-detail ... finished)
  - Allocation:     finished stock reserved against a specific order

DESIGN PRINCIPLES:
  1. The read path (schedule reports) is a pure function of its inputs.
  2. Pending is always derived, never stored: max(0, ordered - allocated).
  3. Money uses decimal.Decimal to avoid floating-point errors.
  4. All tunables (global capacity, waste fraction, workweeks) live in
     Config and are injected, never embedded in logic.

SEE ALSO:
  - capacity.go:  per-product daily throughput
  - demand.go:    outstanding demand aggregation
  - simulator.go: shared-pool timeline simulation
  - planner.go:   report orchestration
  - store.go:     persistence interfaces
*/
package production

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PRODUCT - Catalog entry (read-only from this package's perspective)
// =============================================================================

type Product struct {
	ID             int64
	Name           string
	SKU            string
	MoldsAvailable int // physical casting molds on the floor; 0 = cannot produce
	MaxTurnsPerDay int // production cycles one mold completes per day
	UnitPrice      decimal.Decimal
}

// =============================================================================
// ORDER - Client order with line items queued for production
// =============================================================================

type OrderStatus string

const (
	OrderPending      OrderStatus = "pending"
	OrderQueued       OrderStatus = "queued"
	OrderInProduction OrderStatus = "in_production"
	OrderCompleted    OrderStatus = "completed"
	OrderShipped      OrderStatus = "shipped"
	OrderCanceled     OrderStatus = "canceled"
)

// InProduction reports whether orders in this status contribute demand
// to the scheduler.
func (s OrderStatus) InProduction() bool {
	return s == OrderQueued || s == OrderInProduction
}

type Order struct {
	ID         int64
	Folio      string
	ClientID   int64
	ClientName string
	CreatedAt  time.Time
	Status     OrderStatus
	Items      []OrderLine

	// EstimatedDelivery is written back by Planner.PublishEstimates.
	EstimatedDelivery *time.Time
}

// Line returns the line item for a product, if the order carries one.
func (o *Order) Line(productID int64) (OrderLine, bool) {
	for _, li := range o.Items {
		if li.ProductID == productID {
			return li, true
		}
	}
	return OrderLine{}, false
}

// OrderLine is the per-product quantity on an order.
// Allocated only increases through the allocator; Ordered changes only
// through external order editing.
type OrderLine struct {
	ProductID int64
	Ordered   int
	Allocated int
}

// Pending is the quantity still owed to the client. Never negative.
func (l OrderLine) Pending() int {
	if p := l.Ordered - l.Allocated; p > 0 {
		return p
	}
	return 0
}

// =============================================================================
// PIPELINE STATUS - Aggregate WIP counts per product
// =============================================================================

// PipelineStatus tracks how many units of a product sit in each WIP stage.
// Counts are aggregate, not per-order; floor operations advance them
// externally. Finished is the pool the allocator draws from.
type PipelineStatus struct {
	ProductID int64
	ToDetail  int
	Detailed  int
	Bisque    int
	Finished  int
	UpdatedAt time.Time
}

func (p PipelineStatus) InPipeline() int {
	return p.ToDetail + p.Detailed + p.Bisque + p.Finished
}

// =============================================================================
// ALLOCATION - Finished stock reserved against a specific order
// =============================================================================

type AllocationStage string

const (
	StagePacking   AllocationStage = "packing"
	StageDelivered AllocationStage = "delivered"
)

// Allocation reserves finished units for one order. Identity is the
// (ProductID, OrderID, Stage) triple: repeated allocations to the same
// triple accumulate Quantity instead of creating duplicates.
type Allocation struct {
	ID          string // uuid
	ProductID   int64
	OrderID     int64
	Stage       AllocationStage
	Quantity    int
	AllocatedAt time.Time
	Notes       string
}
