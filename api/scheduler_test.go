package api_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilnworks/production-engine/api"
	"github.com/kilnworks/production-engine/production"
	"github.com/kilnworks/production-engine/production/store"
)

func TestEstimateScheduler_RunNowPublishes(t *testing.T) {
	// GIVEN: A waiting order with no delivery estimate
	// WHEN: The scheduler runs one publish pass
	// THEN: The order carries an estimated delivery date

	mem := store.NewMemory()
	mem.PutProduct(production.Product{ID: 1, Name: "Mug", MoldsAvailable: 2, MaxTurnsPerDay: 5})
	mem.PutOrder(production.Order{
		ID: 10, Folio: "F-010",
		CreatedAt: time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC),
		Status:    production.OrderQueued,
		Items:     []production.OrderLine{{ProductID: 1, Ordered: 20}},
	})

	planner := production.NewPlanner(mem, production.DefaultConfig())
	scheduler := api.NewEstimateScheduler(planner)
	scheduler.RunNow()

	o, err := mem.GetOrder(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, o.EstimatedDelivery)
}

func TestEstimateScheduler_StartStop(t *testing.T) {
	mem := store.NewMemory()
	planner := production.NewPlanner(mem, production.DefaultConfig())

	scheduler := api.NewEstimateScheduler(planner)
	scheduler.CheckInterval = 50 * time.Millisecond
	scheduler.Start()
	time.Sleep(120 * time.Millisecond)
	scheduler.Stop()
}

func TestEstimateScheduler_DisabledDoesNotStart(t *testing.T) {
	mem := store.NewMemory()
	planner := production.NewPlanner(mem, production.DefaultConfig())

	scheduler := api.NewEstimateScheduler(planner)
	scheduler.Enabled = false
	scheduler.Start()
	scheduler.Stop()
}
