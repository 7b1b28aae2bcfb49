/*
demand.go - Outstanding demand aggregation

PURPOSE:
  Collapses every production-active order into per-product aggregate
  pending quantities, keeping the per-order breakdown so the schedule can
  show WHO is waiting and in what order.

ORDERING:
  Waiting orders are strict FIFO: oldest creation date first, order ID as
  the tie-break. Absent an explicit priority override upstream, the client
  who asked first is served first.

DEGRADATION:
  A line item whose product cannot be resolved in the catalog is skipped
  with a logged warning. One bad reference never aborts aggregation for
  the other products.
*/
package production

import (
	"log"
	"sort"
)

// WaitingOrder is one order's outstanding share of a product's demand.
type WaitingOrder struct {
	OrderID    int64
	Folio      string
	ClientName string
	CreatedAt  string // ISO date, for display; ordering uses the order's time
	Pending    int

	createdAt int64 // unix, sort key
}

// ProductDemand is the aggregate outstanding demand for one product.
type ProductDemand struct {
	ProductID int64
	Pending   int
	Orders    []WaitingOrder
}

// AggregateDemand collects pending quantities per product across all
// production-active orders. Products with zero aggregate pending are
// excluded. The sum of per-order pending always equals the aggregate.
func AggregateDemand(orders []Order, catalog map[int64]Product) []ProductDemand {
	byProduct := make(map[int64]*ProductDemand)

	for _, o := range orders {
		if !o.Status.InProduction() {
			continue
		}
		for _, li := range o.Items {
			pending := li.Pending()
			if pending == 0 {
				continue
			}
			if _, ok := catalog[li.ProductID]; !ok {
				log.Printf("[Demand] Warning: order %s references unknown product %d, skipping line item",
					o.Folio, li.ProductID)
				continue
			}

			d := byProduct[li.ProductID]
			if d == nil {
				d = &ProductDemand{ProductID: li.ProductID}
				byProduct[li.ProductID] = d
			}
			d.Pending += pending
			d.Orders = append(d.Orders, WaitingOrder{
				OrderID:    o.ID,
				Folio:      o.Folio,
				ClientName: o.ClientName,
				CreatedAt:  o.CreatedAt.Format("2006-01-02"),
				Pending:    pending,
				createdAt:  o.CreatedAt.Unix(),
			})
		}
	}

	demands := make([]ProductDemand, 0, len(byProduct))
	for _, d := range byProduct {
		sort.Slice(d.Orders, func(i, j int) bool {
			if d.Orders[i].createdAt != d.Orders[j].createdAt {
				return d.Orders[i].createdAt < d.Orders[j].createdAt
			}
			return d.Orders[i].OrderID < d.Orders[j].OrderID
		})
		demands = append(demands, *d)
	}

	// Stable output order: by product ID. The simulator applies its own
	// priority key on top.
	sort.Slice(demands, func(i, j int) bool {
		return demands[i].ProductID < demands[j].ProductID
	})
	return demands
}

// EarliestOrderDate returns the unix time of the oldest waiting order, or 0
// when there are none. Used as the simulator's primary priority key.
func (d ProductDemand) EarliestOrderDate() int64 {
	if len(d.Orders) == 0 {
		return 0
	}
	return d.Orders[0].createdAt
}
