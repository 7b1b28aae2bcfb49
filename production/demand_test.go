package production_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilnworks/production-engine/production"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func testCatalog() map[int64]production.Product {
	return map[int64]production.Product{
		1: {ID: 1, Name: "Mug", MoldsAvailable: 2, MaxTurnsPerDay: 5},
		2: {ID: 2, Name: "Vase", MoldsAvailable: 4, MaxTurnsPerDay: 3},
	}
}

func order(id int64, folio string, created time.Time, status production.OrderStatus, items ...production.OrderLine) production.Order {
	return production.Order{
		ID:        id,
		Folio:     folio,
		CreatedAt: created,
		Status:    status,
		Items:     items,
	}
}

// =============================================================================
// AGGREGATION TESTS
// =============================================================================

func TestAggregateDemand_SumsAcrossOrders(t *testing.T) {
	// GIVEN: Two active orders both waiting on product 1
	// WHEN: Aggregating demand
	// THEN: Pending sums and per-order detail is preserved

	d1 := date(2024, time.March, 1)
	d2 := date(2024, time.March, 5)
	orders := []production.Order{
		order(10, "F-010", d1, production.OrderQueued,
			production.OrderLine{ProductID: 1, Ordered: 30, Allocated: 10}),
		order(11, "F-011", d2, production.OrderInProduction,
			production.OrderLine{ProductID: 1, Ordered: 15},
			production.OrderLine{ProductID: 2, Ordered: 8}),
	}

	demands := production.AggregateDemand(orders, testCatalog())
	require.Len(t, demands, 2)

	assert.Equal(t, int64(1), demands[0].ProductID)
	assert.Equal(t, 35, demands[0].Pending, "20 from F-010 + 15 from F-011")
	require.Len(t, demands[0].Orders, 2)

	sum := 0
	for _, wo := range demands[0].Orders {
		sum += wo.Pending
	}
	assert.Equal(t, demands[0].Pending, sum, "per-order pending must sum to the aggregate")

	assert.Equal(t, int64(2), demands[1].ProductID)
	assert.Equal(t, 8, demands[1].Pending)
}

func TestAggregateDemand_WaitingOrdersFIFO(t *testing.T) {
	// Older orders come first regardless of input order.
	older := date(2024, time.February, 1)
	newer := date(2024, time.February, 20)
	orders := []production.Order{
		order(21, "F-021", newer, production.OrderQueued, production.OrderLine{ProductID: 1, Ordered: 5}),
		order(20, "F-020", older, production.OrderQueued, production.OrderLine{ProductID: 1, Ordered: 5}),
	}

	demands := production.AggregateDemand(orders, testCatalog())
	require.Len(t, demands, 1)
	require.Len(t, demands[0].Orders, 2)
	assert.Equal(t, int64(20), demands[0].Orders[0].OrderID)
	assert.Equal(t, int64(21), demands[0].Orders[1].OrderID)
	assert.Equal(t, older.Unix(), demands[0].EarliestOrderDate())
}

func TestAggregateDemand_SkipsInactiveOrders(t *testing.T) {
	d := date(2024, time.March, 1)
	orders := []production.Order{
		order(30, "F-030", d, production.OrderCompleted, production.OrderLine{ProductID: 1, Ordered: 10}),
		order(31, "F-031", d, production.OrderCanceled, production.OrderLine{ProductID: 1, Ordered: 10}),
		order(32, "F-032", d, production.OrderPending, production.OrderLine{ProductID: 1, Ordered: 10}),
	}

	demands := production.AggregateDemand(orders, testCatalog())
	assert.Empty(t, demands, "only queued and in-production orders carry demand")
}

func TestAggregateDemand_SkipsFullyAllocatedLines(t *testing.T) {
	d := date(2024, time.March, 1)
	orders := []production.Order{
		order(40, "F-040", d, production.OrderQueued,
			production.OrderLine{ProductID: 1, Ordered: 10, Allocated: 10},
			production.OrderLine{ProductID: 2, Ordered: 4, Allocated: 1}),
	}

	demands := production.AggregateDemand(orders, testCatalog())
	require.Len(t, demands, 1)
	assert.Equal(t, int64(2), demands[0].ProductID)
	assert.Equal(t, 3, demands[0].Pending)
}

func TestAggregateDemand_SkipsUnknownProducts(t *testing.T) {
	// A line referencing a product missing from the catalog is skipped,
	// not fatal: the rest of the report still builds.
	d := date(2024, time.March, 1)
	orders := []production.Order{
		order(50, "F-050", d, production.OrderQueued,
			production.OrderLine{ProductID: 99, Ordered: 10},
			production.OrderLine{ProductID: 1, Ordered: 5}),
	}

	demands := production.AggregateDemand(orders, testCatalog())
	require.Len(t, demands, 1)
	assert.Equal(t, int64(1), demands[0].ProductID)
}
