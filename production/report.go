package production

import (
	"time"

	"github.com/shopspring/decimal"
)

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

// =============================================================================
// SCHEDULE REPORT - Derived, never persisted
// =============================================================================

// ProductSchedule is the per-product slice of the report.
type ProductSchedule struct {
	ProductID int64
	Name      string
	SKU       string

	Pending              int
	WasteAdjustedPending int
	PendingValue         decimal.Decimal // pending x unit price

	DailyCapacity int
	MoldLimited   bool // zero molds: cannot produce at all
	Unschedulable bool // excluded from fleet totals

	// DaysNeeded is the INDEPENDENT estimate (product alone against the
	// shared pool); CompletionDate projects it over the production week.
	// Zero/nil when unschedulable.
	DaysNeeded     int
	CompletionDate *time.Time

	Pipeline      PipelineStatus
	WaitingOrders []WaitingOrder

	// finishedOnDay is the joint-simulation finish day, kept for delivery
	// estimates. Unexported: the published per-product figure is DaysNeeded.
	finishedOnDay int
}

// FleetSchedule is the contention-aware, factory-wide outcome.
type FleetSchedule struct {
	TotalPending       int
	TotalWasteAdjusted int
	TotalDays          int
	TotalWeeks         int
	CompletionDate     *time.Time

	UnschedulableProducts []int64
}

// ScheduleReport is the full read-path output. Recomputed on demand; a
// second run over unchanged inputs returns an identical report.
type ScheduleReport struct {
	GeneratedAt time.Time
	Products    []ProductSchedule
	Fleet       FleetSchedule
}
