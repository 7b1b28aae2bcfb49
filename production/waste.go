package production

import "math"

// WasteAdjust inflates a net pending quantity by the expected breakage and
// defect loss during production. The inflated figure, not raw pending, is
// what actually gets scheduled: with a 0.25 fraction, 100 pending units
// schedule as 125.
func WasteAdjust(pending int, fraction float64) int {
	if pending <= 0 {
		return 0
	}
	if fraction <= 0 {
		return pending
	}
	return int(math.Ceil(float64(pending) * (1 + fraction)))
}
