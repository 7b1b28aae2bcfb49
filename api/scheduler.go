/*
scheduler.go - Automated delivery estimate publisher

PURPOSE:
  Periodically rebuilds the capacity schedule and writes fresh estimated
  delivery dates onto waiting orders, so estimates track floor reality
  without anyone pressing the publish button.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Each tick is a full PublishEstimates pass (recompute, then write)
  - Failures are logged and retried on the next tick, never fatal

CONFIGURATION:
  - CheckInterval: How often to publish (default: 1 hour)
  - Enabled: Whether the scheduler is active (default: true)

USAGE:
  scheduler := NewEstimateScheduler(handler.Planner)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: PublishSchedule endpoint (manual publish)
  - production/planner.go: PublishEstimates
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/kilnworks/production-engine/production"
)

// EstimateScheduler republishes delivery estimates on a fixed interval.
type EstimateScheduler struct {
	Planner       *production.Planner
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewEstimateScheduler creates a new scheduler.
func NewEstimateScheduler(planner *production.Planner) *EstimateScheduler {
	return &EstimateScheduler{
		Planner:       planner,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (es *EstimateScheduler) Start() {
	es.mu.Lock()
	defer es.mu.Unlock()

	if !es.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	es.ticker = time.NewTicker(es.CheckInterval)
	es.wg.Add(1)

	go es.run()

	log.Printf("[Scheduler] Started with publish interval: %v", es.CheckInterval)
}

// Stop stops the scheduler.
func (es *EstimateScheduler) Stop() {
	es.mu.Lock()
	defer es.mu.Unlock()

	if es.ticker != nil {
		es.ticker.Stop()
		close(es.stop)
		es.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (es *EstimateScheduler) run() {
	defer es.wg.Done()

	// Run immediately on start
	es.publish()

	for {
		select {
		case <-es.ticker.C:
			es.publish()
		case <-es.stop:
			return
		}
	}
}

func (es *EstimateScheduler) publish() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	updated, err := es.Planner.PublishEstimates(ctx)
	if err != nil {
		log.Printf("[Scheduler] Publish failed, will retry next tick: %v", err)
		return
	}
	if updated > 0 {
		log.Printf("[Scheduler] Refreshed delivery estimates for %d orders", updated)
	}
}

// RunNow triggers an immediate publish (for testing/admin).
func (es *EstimateScheduler) RunNow() {
	es.publish()
}
