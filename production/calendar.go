/*
calendar.go - Business-day date arithmetic

PURPOSE:
  Projects calendar dates forward over a configurable working-day policy.
  The factory runs two DIFFERENT workweeks and they must not be collapsed:

    ProductionWeek: Monday-Saturday (only Sunday is skipped). Casting and
                    finishing happen six days a week.
    ShippingWeek:   Monday-Friday. Post-processing and carriers observe
                    the full weekend.

  Both are parameterizations of the same AddWorkingDays function, not
  separate implementations. Whether the divergence is deliberate policy
  or an accident of history is an open question upstream; we preserve it.

SEE ALSO:
  - config.go:  which week applies where
  - planner.go: completion dates (ProductionWeek) and delivery estimates
                (ShippingWeek)
*/
package production

import "time"

// Workweek is a named working-day policy.
type Workweek struct {
	Name string
	// working[d] reports whether weekday d is a working day.
	working [7]bool
}

var (
	// ProductionWeek counts Monday through Saturday; Sundays are skipped.
	ProductionWeek = Workweek{
		Name:    "production",
		working: [7]bool{false, true, true, true, true, true, true},
	}

	// ShippingWeek counts Monday through Friday only.
	ShippingWeek = Workweek{
		Name:    "shipping",
		working: [7]bool{false, true, true, true, true, true, false},
	}
)

// IsWorkingDay reports whether the given date counts toward this week.
func (w Workweek) IsWorkingDay(t time.Time) bool {
	return w.working[int(t.Weekday())]
}

// WorkingDaysPerWeek returns how many days of a calendar week are worked.
func (w Workweek) WorkingDaysPerWeek() int {
	n := 0
	for _, ok := range w.working {
		if ok {
			n++
		}
	}
	return n
}

// AddWorkingDays advances start one calendar day at a time, counting a day
// toward n only when it is a working day under the policy, and returns the
// date on which the n-th working day lands. n <= 0 returns start unchanged.
func AddWorkingDays(start time.Time, n int, week Workweek) time.Time {
	date := start
	for added := 0; added < n; {
		date = date.AddDate(0, 0, 1)
		if week.IsWorkingDay(date) {
			added++
		}
	}
	return date
}

// WeeksFor converts a count of working days into whole calendar weeks,
// rounding up.
func WeeksFor(days int, week Workweek) int {
	per := week.WorkingDaysPerWeek()
	if days <= 0 || per == 0 {
		return 0
	}
	return (days + per - 1) / per
}
