/*
planner.go - Schedule report orchestration

PURPOSE:
  Ties the leaf components together into the read path: load orders,
  catalog and pipeline state; aggregate demand; waste-adjust it; compute
  per-product capacity and the independent days-needed estimate; run the
  joint simulation; project completion dates over the production workweek.

PURITY:
  BuildReport is a pure function of the stores' current contents. It holds
  no state, takes no locks, and is safe for any number of concurrent
  callers. Two calls over unchanged data return identical reports.

DEGRADATION:
  Per-product data problems (missing pipeline row, zero capacity) become
  per-product flags or warnings. Only a failed store read fails the report.

DELIVERY ESTIMATES:
  PublishEstimates is the one write the planner performs: it projects each
  order's delivery date (joint-simulation completion plus post-processing
  and shipping buffers over the shipping week) and hands it back to the
  order store.
*/
package production

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Planner builds schedule reports from the current store state.
type Planner struct {
	Orders   OrderStore
	Products ProductStore
	Pipeline PipelineStore
	Config   Config

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewPlanner(store Store, cfg Config) *Planner {
	return &Planner{
		Orders:   store,
		Products: store,
		Pipeline: store,
		Config:   cfg,
	}
}

func (p *Planner) today() time.Time {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	t := now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// BuildReport computes the full schedule report on demand.
func (p *Planner) BuildReport(ctx context.Context) (*ScheduleReport, error) {
	orders, err := p.Orders.ListActiveOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active orders: %w", err)
	}
	products, err := p.Products.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load product catalog: %w", err)
	}
	statuses, err := p.Pipeline.ListStatuses(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pipeline status: %w", err)
	}

	catalog := make(map[int64]Product, len(products))
	for _, prod := range products {
		catalog[prod.ID] = prod
	}
	pipeline := make(map[int64]PipelineStatus, len(statuses))
	for _, st := range statuses {
		pipeline[st.ProductID] = st
	}

	today := p.today()
	demands := AggregateDemand(orders, catalog)

	report := &ScheduleReport{GeneratedAt: today}
	sims := make([]SimProduct, 0, len(demands))

	for _, d := range demands {
		prod := catalog[d.ProductID]
		adjusted := WasteAdjust(d.Pending, p.Config.WasteFraction)
		capacity := DailyCapacity(prod)

		ps := ProductSchedule{
			ProductID:            d.ProductID,
			Name:                 prod.Name,
			SKU:                  prod.SKU,
			Pending:              d.Pending,
			WasteAdjustedPending: adjusted,
			PendingValue:         prod.UnitPrice.Mul(decimalFromInt(d.Pending)),
			DailyCapacity:        capacity,
			MoldLimited:          MoldLimited(prod),
			Pipeline:             pipeline[d.ProductID],
			WaitingOrders:        d.Orders,
		}

		if days, ok := DaysNeeded(adjusted, prod, p.Config.GlobalDailyCapacity); ok {
			ps.DaysNeeded = days
			completion := AddWorkingDays(today, days, p.Config.ProductionWeek)
			ps.CompletionDate = &completion
		} else {
			ps.Unschedulable = true
			log.Printf("[Planner] Warning: product %d (%s) has zero daily capacity, reported unschedulable",
				prod.ID, prod.Name)
		}

		report.Products = append(report.Products, ps)
		report.Fleet.TotalPending += d.Pending
		report.Fleet.TotalWasteAdjusted += adjusted

		sims = append(sims, SimProduct{
			ProductID:     d.ProductID,
			Remaining:     adjusted,
			Capacity:      capacity,
			EarliestOrder: d.EarliestOrderDate(),
		})
	}

	sim := Simulate(sims, p.Config.GlobalDailyCapacity, p.Config.MaxSimulationDays)
	report.Fleet.TotalDays = sim.TotalDays
	report.Fleet.TotalWeeks = WeeksFor(sim.TotalDays, p.Config.ProductionWeek)
	report.Fleet.UnschedulableProducts = sim.Unschedulable
	if sim.TotalDays > 0 {
		completion := AddWorkingDays(today, sim.TotalDays, p.Config.ProductionWeek)
		report.Fleet.CompletionDate = &completion
	}
	if sim.Truncated {
		log.Printf("[Planner] Warning: timeline simulation truncated at %d days with work remaining",
			p.Config.MaxSimulationDays)
	}

	// Attach joint-simulation finish days for delivery estimates.
	finishDay := make(map[int64]int, len(sim.Products))
	for _, sp := range sim.Products {
		finishDay[sp.ProductID] = sp.FinishedOnDay
	}
	for i := range report.Products {
		report.Products[i].finishedOnDay = finishDay[report.Products[i].ProductID]
	}

	return report, nil
}

// PublishEstimates builds a fresh report and writes each waiting order's
// estimated delivery date back to the order store. An order waiting on
// several products gets the latest of their estimates. Unschedulable
// products contribute no estimate.
func (p *Planner) PublishEstimates(ctx context.Context) (int, error) {
	report, err := p.BuildReport(ctx)
	if err != nil {
		return 0, err
	}
	today := p.today()

	deliveries := make(map[int64]time.Time)
	for _, ps := range report.Products {
		if ps.Unschedulable || ps.finishedOnDay == 0 {
			continue
		}
		completion := AddWorkingDays(today, ps.finishedOnDay, p.Config.ProductionWeek)
		buffer := p.Config.PostProcessingDays + p.Config.ShippingDays
		delivery := AddWorkingDays(completion, buffer, p.Config.ShippingWeek)

		for _, wo := range ps.WaitingOrders {
			if current, ok := deliveries[wo.OrderID]; !ok || delivery.After(current) {
				deliveries[wo.OrderID] = delivery
			}
		}
	}

	written := 0
	for orderID, date := range deliveries {
		if err := p.Orders.SetEstimatedDelivery(ctx, orderID, date); err != nil {
			return written, fmt.Errorf("publish estimate for order %d: %w", orderID, err)
		}
		written++
	}
	log.Printf("[Planner] Published delivery estimates for %d orders", written)
	return written, nil
}
