/*
simulator.go - Parallel production timeline simulation

PURPOSE:
  Estimates how many working days the factory needs to clear ALL
  outstanding (waste-adjusted) demand when every product competes for the
  same shared daily pool. This is the contention-aware, fleet-wide figure;
  the per-product DaysNeeded in capacity.go is the isolated one. They
  answer different questions and both are exposed.

ALGORITHM:
  Day-stepped and deterministic. Each simulated day refills the shared
  pool to the global capacity, then hands units to products in priority
  order; a product takes min(remaining, own capacity, pool left).

PRIORITY ORDER:
  Products are served in a fixed documented order each day:
    1. earliest waiting-order date (oldest client first)
    2. larger remaining quantity
    3. smaller product ID
  The tie-break is a deliberate policy choice so two runs over the same
  inputs always agree.

GUARANTEES:
  On any simulated day, total units produced never exceed the global
  capacity, and no product exceeds its own daily capacity.

TERMINATION:
  Products with zero capacity can never finish; they are split out as
  unschedulable before the loop and excluded from the fleet total. A
  MaxDays ceiling backstops the loop against logic errors.
*/
package production

import "sort"

// SimProduct is one product's mutable state in the simulation.
type SimProduct struct {
	ProductID int64
	Remaining int // waste-adjusted pending, counts down to zero
	Capacity  int // fixed per-day cap, DailyCapacity(product)

	// Priority inputs (see package comment).
	EarliestOrder int64

	// Outputs.
	FinishedOnDay int // 1-based day the product reached zero; 0 if it never ran
}

// DayOutput records what one simulated day produced, for audit and tests.
type DayOutput struct {
	Day       int
	Total     int
	ByProduct map[int64]int
}

// SimulationResult is the fleet-wide outcome.
type SimulationResult struct {
	TotalDays     int
	Products      []SimProduct
	Unschedulable []int64 // product IDs with zero capacity, excluded from TotalDays
	Days          []DayOutput
	Truncated     bool // hit the MaxDays ceiling with work remaining
}

// Simulate runs the shared-pool timeline until every schedulable product's
// remaining quantity reaches zero. globalCapacity <= 0 yields an immediate
// empty result (nothing can ever be produced).
func Simulate(products []SimProduct, globalCapacity, maxDays int) SimulationResult {
	var result SimulationResult
	result.Products = append(result.Products, products...)

	// Split out products that can never make progress.
	var active []*SimProduct
	for i := range result.Products {
		p := &result.Products[i]
		if p.Capacity <= 0 && p.Remaining > 0 {
			result.Unschedulable = append(result.Unschedulable, p.ProductID)
			continue
		}
		if p.Remaining > 0 {
			active = append(active, p)
		}
	}
	if globalCapacity <= 0 {
		for _, p := range active {
			result.Unschedulable = append(result.Unschedulable, p.ProductID)
		}
		return result
	}

	sort.SliceStable(active, func(i, j int) bool {
		a, b := active[i], active[j]
		if a.EarliestOrder != b.EarliestOrder {
			return a.EarliestOrder < b.EarliestOrder
		}
		if a.Remaining != b.Remaining {
			return a.Remaining > b.Remaining
		}
		return a.ProductID < b.ProductID
	})

	remaining := len(active)
	day := 0
	for remaining > 0 {
		if maxDays > 0 && day >= maxDays {
			result.Truncated = true
			break
		}
		day++
		available := globalCapacity
		out := DayOutput{Day: day, ByProduct: make(map[int64]int)}

		for _, p := range active {
			if p.Remaining <= 0 || available <= 0 {
				continue
			}
			produced := p.Remaining
			if p.Capacity < produced {
				produced = p.Capacity
			}
			if available < produced {
				produced = available
			}
			p.Remaining -= produced
			available -= produced
			out.ByProduct[p.ProductID] = produced
			out.Total += produced

			if p.Remaining == 0 {
				p.FinishedOnDay = day
				remaining--
			}
		}
		result.Days = append(result.Days, out)
	}

	result.TotalDays = day
	return result
}
