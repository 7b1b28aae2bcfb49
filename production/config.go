package production

// Config carries the operational tunables for the scheduler. Values are
// injected at startup (flags in cmd/server) so tuning never requires a
// redeploy of the engine itself.
type Config struct {
	// GlobalDailyCapacity is the factory-wide daily unit throughput:
	// a shared downstream bottleneck (firing/finishing) common to all
	// products.
	GlobalDailyCapacity int

	// WasteFraction is the expected breakage/defect loss during
	// production ("merma"). Pending demand is inflated by this fraction
	// before scheduling.
	WasteFraction float64

	// ProductionWeek is the workweek the factory floor runs on.
	ProductionWeek Workweek

	// ShippingWeek is the workweek post-processing and carriers run on.
	ShippingWeek Workweek

	// PostProcessingDays and ShippingDays are buffers added (under
	// ShippingWeek) between production completion and delivery.
	PostProcessingDays int
	ShippingDays       int

	// MaxSimulationDays bounds the timeline simulation. The simulator
	// filters zero-capacity products up front, so this only trips on a
	// logic error, never on ordinary contention.
	MaxSimulationDays int
}

// DefaultConfig mirrors the factory's current operating numbers.
func DefaultConfig() Config {
	return Config{
		GlobalDailyCapacity: 340,
		WasteFraction:       0.25,
		ProductionWeek:      ProductionWeek,
		ShippingWeek:        ShippingWeek,
		PostProcessingDays:  3,
		ShippingDays:        3,
		MaxSimulationDays:   730,
	}
}
