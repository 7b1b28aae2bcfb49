/*
capacity.go - Per-product and factory-wide daily throughput

PURPOSE:
  Derives how many units of a product the floor can cast per day, and how
  that interacts with the factory-wide bottleneck.

  daily capacity = molds available x max turns per day

  A product with zero molds is MOLD-LIMITED: it cannot produce at all.
  That is a distinct condition from simply having a capacity below the
  global cap, which is normal for almost every product and not an error.

SEE ALSO:
  - simulator.go: uses both figures under contention
  - waste.go:     the quantity the capacity is applied to
*/
package production

// DailyCapacity is the number of units of p the floor can produce in one
// working day, ignoring the factory-wide bottleneck.
func DailyCapacity(p Product) int {
	if p.MoldsAvailable <= 0 || p.MaxTurnsPerDay <= 0 {
		return 0
	}
	return p.MoldsAvailable * p.MaxTurnsPerDay
}

// MoldLimited reports whether p cannot be produced at all for lack of molds.
// Not to be confused with capacity merely below the global cap.
func MoldLimited(p Product) bool {
	return p.MoldsAvailable <= 0
}

// EffectiveRate is the per-day rate a product achieves in isolation: its own
// capacity clamped by the factory-wide bottleneck.
func EffectiveRate(p Product, globalCapacity int) int {
	if globalCapacity <= 0 {
		return 0
	}
	cap := DailyCapacity(p)
	if cap > globalCapacity {
		return globalCapacity
	}
	return cap
}

// DaysNeeded is the INDEPENDENT per-product estimate: working days to clear
// quantity at the product's effective rate, assuming no other product
// competes for the shared pool. It intentionally differs from the joint
// simulation figure; callers must not conflate the two.
// Returns 0 and false when the product has no effective rate (unschedulable).
func DaysNeeded(quantity int, p Product, globalCapacity int) (int, bool) {
	rate := EffectiveRate(p, globalCapacity)
	if rate <= 0 {
		return 0, false
	}
	if quantity <= 0 {
		return 0, true
	}
	return (quantity + rate - 1) / rate, true
}
