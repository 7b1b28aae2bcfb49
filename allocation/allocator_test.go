package allocation_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilnworks/production-engine/allocation"
	"github.com/kilnworks/production-engine/production"
	"github.com/kilnworks/production-engine/production/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// newTestWorld seeds product 1 with the given finished stock and order 10
// with a single line of the given ordered quantity.
func newTestWorld(t *testing.T, finished, ordered int) (*allocation.Allocator, *store.Memory) {
	t.Helper()

	mem := store.NewMemory()
	mem.PutProduct(production.Product{ID: 1, Name: "Mug", MoldsAvailable: 2, MaxTurnsPerDay: 5})
	mem.PutPipeline(production.PipelineStatus{ProductID: 1, Bisque: 5, Finished: finished})
	mem.PutOrder(production.Order{
		ID:        10,
		Folio:     "F-010",
		CreatedAt: time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC),
		Status:    production.OrderQueued,
		Items:     []production.OrderLine{{ProductID: 1, Ordered: ordered}},
	})

	return allocation.New(mem), mem
}

// =============================================================================
// ALLOCATION TESTS
// =============================================================================

func TestAllocate_DrainsStockAndClearsLine(t *testing.T) {
	// GIVEN: 10 finished mugs and an order needing exactly 10
	// WHEN: Allocating all 10
	// THEN: The pool is empty, the line is fully covered, one record exists

	alloc, mem := newTestWorld(t, 10, 10)
	ctx := context.Background()

	result, err := alloc.Allocate(ctx, 1, 10, 10, "")
	require.NoError(t, err)
	assert.Equal(t, 0, result.FinishedAfter)
	assert.Equal(t, 10, result.AllocationQuantity)
	assert.Equal(t, 0, result.LinePendingAfter)

	st, err := mem.GetStatus(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Finished)
	assert.Equal(t, 5, st.Bisque, "other stages untouched")

	o, err := mem.GetOrder(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, o.Items[0].Allocated)
	assert.Equal(t, 0, o.Items[0].Pending())

	records, err := mem.ListByProduct(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, production.StagePacking, records[0].Stage)
	assert.Equal(t, 10, records[0].Quantity)
	assert.NotEmpty(t, records[0].ID)
}

func TestAllocate_RepeatAccumulatesSingleRecord(t *testing.T) {
	// GIVEN: An existing allocation of 4 for (product 1, order 10)
	// WHEN: Allocating 3 more
	// THEN: Still one record, quantity 7; never a duplicate row

	alloc, mem := newTestWorld(t, 20, 10)
	ctx := context.Background()

	first, err := alloc.Allocate(ctx, 1, 10, 4, "first batch")
	require.NoError(t, err)
	assert.Equal(t, 4, first.AllocationQuantity)

	second, err := alloc.Allocate(ctx, 1, 10, 3, "")
	require.NoError(t, err)
	assert.Equal(t, 7, second.AllocationQuantity)
	assert.Equal(t, 13, second.FinishedAfter)

	records, err := mem.ListByProduct(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 7, records[0].Quantity)
	assert.Equal(t, "first batch", records[0].Notes, "empty notes don't clobber existing ones")
}

func TestAllocate_InsufficientStockLeavesStateUntouched(t *testing.T) {
	// GIVEN: Only 5 finished mugs
	// WHEN: Trying to allocate 8
	// THEN: The request fails and nothing changed anywhere

	alloc, mem := newTestWorld(t, 5, 10)
	ctx := context.Background()

	_, err := alloc.Allocate(ctx, 1, 10, 8, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, production.ErrInsufficientStock)

	var stockErr *production.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 5, stockErr.Available)
	assert.Equal(t, 8, stockErr.Requested)

	st, _ := mem.GetStatus(ctx, 1)
	assert.Equal(t, 5, st.Finished, "stock unchanged after rejection")
	o, _ := mem.GetOrder(ctx, 10)
	assert.Equal(t, 0, o.Items[0].Allocated)
	records, _ := mem.ListByProduct(ctx, 1)
	assert.Empty(t, records)
}

func TestAllocate_RejectsOverPendingQuantity(t *testing.T) {
	// Plenty of stock, but the order only needs 10: allocating 12 would
	// over-reserve, so it's rejected as a client error.

	alloc, mem := newTestWorld(t, 50, 10)
	ctx := context.Background()

	_, err := alloc.Allocate(ctx, 1, 10, 12, "")
	require.Error(t, err)
	var valErr *production.ValidationError
	assert.ErrorAs(t, err, &valErr)

	st, _ := mem.GetStatus(ctx, 1)
	assert.Equal(t, 50, st.Finished)
}

func TestAllocate_RejectsNonPositiveQuantity(t *testing.T) {
	alloc, _ := newTestWorld(t, 10, 10)
	ctx := context.Background()

	var valErr *production.ValidationError
	_, err := alloc.Allocate(ctx, 1, 10, 0, "")
	assert.ErrorAs(t, err, &valErr)
	_, err = alloc.Allocate(ctx, 1, 10, -3, "")
	assert.ErrorAs(t, err, &valErr)
}

func TestAllocate_UnknownReferences(t *testing.T) {
	alloc, _ := newTestWorld(t, 10, 10)
	ctx := context.Background()

	_, err := alloc.Allocate(ctx, 99, 10, 1, "")
	assert.ErrorIs(t, err, production.ErrProductNotFound)

	_, err = alloc.Allocate(ctx, 1, 99, 1, "")
	assert.ErrorIs(t, err, production.ErrOrderNotFound)
}

func TestAllocate_OrderWithoutLineItem(t *testing.T) {
	alloc, mem := newTestWorld(t, 10, 10)
	mem.PutOrder(production.Order{
		ID: 11, Folio: "F-011", Status: production.OrderQueued,
		CreatedAt: time.Date(2024, time.May, 21, 0, 0, 0, 0, time.UTC),
		Items:     []production.OrderLine{{ProductID: 2, Ordered: 5}},
	})

	_, err := alloc.Allocate(context.Background(), 1, 11, 1, "")
	assert.ErrorIs(t, err, production.ErrNoLineItem)
}

// =============================================================================
// DEALLOCATION TESTS
// =============================================================================

func TestDeallocate_RestoresStockExactly(t *testing.T) {
	// GIVEN: 6 of 10 finished mugs reserved for order 10
	// WHEN: Deallocating
	// THEN: The pool is back to 10, the record is gone, the line reopened

	alloc, mem := newTestWorld(t, 10, 10)
	ctx := context.Background()

	_, err := alloc.Allocate(ctx, 1, 10, 6, "")
	require.NoError(t, err)

	result, err := alloc.Deallocate(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 6, result.Returned)
	assert.Equal(t, 10, result.FinishedAfter)

	st, _ := mem.GetStatus(ctx, 1)
	assert.Equal(t, 10, st.Finished)
	o, _ := mem.GetOrder(ctx, 10)
	assert.Equal(t, 0, o.Items[0].Allocated)

	_, err = mem.GetAllocation(ctx, 1, 10, production.StagePacking)
	assert.ErrorIs(t, err, production.ErrAllocationNotFound)
}

func TestDeallocate_NoRecord(t *testing.T) {
	alloc, _ := newTestWorld(t, 10, 10)

	_, err := alloc.Deallocate(context.Background(), 1, 10)
	assert.ErrorIs(t, err, production.ErrAllocationNotFound)
}

// =============================================================================
// CONCURRENCY TESTS
// =============================================================================

func TestAllocate_ConcurrentNeverOverdraws(t *testing.T) {
	// GIVEN: 50 finished units and ten goroutines each wanting 10
	// WHEN: All allocate concurrently against the same product
	// THEN: Exactly five succeed; the pool ends at zero, never negative

	alloc, mem := newTestWorld(t, 50, 100)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = alloc.Allocate(ctx, 1, 10, 10, "")
		}(i)
	}
	wg.Wait()

	succeeded, rejected := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, production.ErrInsufficientStock):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 5, rejected)

	st, _ := mem.GetStatus(ctx, 1)
	assert.Equal(t, 0, st.Finished)
	record, err := mem.GetAllocation(ctx, 1, 10, production.StagePacking)
	require.NoError(t, err)
	assert.Equal(t, 50, record.Quantity, "every reserved unit is accounted for")
}
