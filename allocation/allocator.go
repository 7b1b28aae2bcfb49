/*
Package allocation moves finished inventory into order-specific buckets.

PURPOSE:
  The write path of the production engine. Allocate reserves finished
  stock against a specific waiting order (general finished pool ->
  order-specific packing bucket); Deallocate is its exact inverse.

CRITICAL INVARIANTS:
  1. ATOMIC: stock check, stock decrement and record mutation commit as
     one unit, or not at all. A partial effect is never observable.
  2. SERIALIZED PER PRODUCT: two concurrent allocations of the same
     product cannot both pass the stock check against a stale read.
  3. BOUNDED: an allocation never exceeds the order line's pending
     quantity at the time it is made. This is a policy choice, not an
     incidental check: it keeps pending >= 0 everywhere.
  4. ACCUMULATING IDENTITY: at most one record per (product, order,
     stage); repeat allocations grow its quantity in place.

FAILURE MODES:
  Insufficient stock, unknown product/order, missing line item and bad
  quantities reject before any mutation. Store timeouts surface as
  transient errors after the critical section rolls back, so retrying is
  always safe from a clean state.

SEE ALSO:
  - production/store.go:  AllocationTx, the critical-section contract
  - store/sqlite:         the transactional implementation
*/
package allocation

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/kilnworks/production-engine/production"
)

// Allocator performs atomic finished-stock reservations.
type Allocator struct {
	Store production.AllocationTx

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

func New(store production.AllocationTx) *Allocator {
	return &Allocator{Store: store}
}

func (a *Allocator) now() time.Time {
	if a.Now != nil {
		return a.Now().UTC()
	}
	return time.Now().UTC()
}

// AllocateResult reports the state after a successful allocation.
type AllocateResult struct {
	ProductID          int64
	OrderID            int64
	FinishedAfter      int // finished stock remaining in the general pool
	AllocationQuantity int // total now reserved for this order at packing
	LinePendingAfter   int
}

// DeallocateResult reports the state after a successful reversal.
type DeallocateResult struct {
	ProductID     int64
	OrderID       int64
	Returned      int // units moved back to the finished pool
	FinishedAfter int
}

// Allocate reserves quantity units of productID's finished stock for
// orderID at the packing stage. Preconditions: quantity > 0, sufficient
// finished stock, the order has a line item for the product, and quantity
// does not exceed that line's current pending.
func (a *Allocator) Allocate(ctx context.Context, productID, orderID int64, quantity int, notes string) (AllocateResult, error) {
	var result AllocateResult
	if quantity <= 0 {
		return result, &production.ValidationError{
			Field:  "quantity",
			Reason: fmt.Sprintf("must be positive, got %d", quantity),
		}
	}

	err := a.Store.WithProductTx(ctx, productID, func(m production.AllocationMutator) error {
		stock, err := m.FinishedStock()
		if err != nil {
			return err
		}
		line, err := m.OrderLine(orderID)
		if err != nil {
			return err
		}
		if quantity > line.Pending() {
			return &production.ValidationError{
				Field: "quantity",
				Reason: fmt.Sprintf("order %d only needs %d more of product %d (%d of %d already allocated)",
					orderID, line.Pending(), productID, line.Allocated, line.Ordered),
			}
		}
		if stock < quantity {
			return &production.InsufficientStockError{
				ProductID: productID,
				Available: stock,
				Requested: quantity,
			}
		}

		if err := m.AdjustFinished(-quantity); err != nil {
			return err
		}

		record, err := m.Allocation(orderID, production.StagePacking)
		switch {
		case err == nil:
			record.Quantity += quantity
			record.AllocatedAt = a.now()
			if notes != "" {
				record.Notes = notes
			}
		case production.IsNotFound(err):
			record = production.Allocation{
				ID:          uuid.NewString(),
				ProductID:   productID,
				OrderID:     orderID,
				Stage:       production.StagePacking,
				Quantity:    quantity,
				AllocatedAt: a.now(),
				Notes:       notes,
			}
		default:
			return err
		}
		if err := m.SaveAllocation(record); err != nil {
			return err
		}
		if err := m.AdjustLineAllocated(orderID, quantity); err != nil {
			return err
		}

		result = AllocateResult{
			ProductID:          productID,
			OrderID:            orderID,
			FinishedAfter:      stock - quantity,
			AllocationQuantity: record.Quantity,
			LinePendingAfter:   line.Pending() - quantity,
		}
		return nil
	})
	if err != nil {
		return AllocateResult{}, err
	}

	log.Printf("[Allocator] Allocated %d of product %d to order %d (finished left: %d)",
		quantity, productID, orderID, result.FinishedAfter)
	return result, nil
}

// Deallocate reverses the packing allocation for (productID, orderID):
// the full reserved quantity returns to the finished pool and the record
// is removed. For equal quantities this is an exact inverse of Allocate.
func (a *Allocator) Deallocate(ctx context.Context, productID, orderID int64) (DeallocateResult, error) {
	var result DeallocateResult

	err := a.Store.WithProductTx(ctx, productID, func(m production.AllocationMutator) error {
		record, err := m.Allocation(orderID, production.StagePacking)
		if err != nil {
			return err
		}
		if err := m.AdjustFinished(record.Quantity); err != nil {
			return err
		}
		if err := m.DeleteAllocation(orderID, production.StagePacking); err != nil {
			return err
		}
		if err := m.AdjustLineAllocated(orderID, -record.Quantity); err != nil {
			return err
		}

		stock, err := m.FinishedStock()
		if err != nil {
			return err
		}
		result = DeallocateResult{
			ProductID:     productID,
			OrderID:       orderID,
			Returned:      record.Quantity,
			FinishedAfter: stock,
		}
		return nil
	})
	if err != nil {
		return DeallocateResult{}, err
	}

	log.Printf("[Allocator] Returned %d of product %d from order %d to finished stock (now: %d)",
		result.Returned, productID, orderID, result.FinishedAfter)
	return result, nil
}
