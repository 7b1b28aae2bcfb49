/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	data for testing and demos. Each scenario creates products, orders,
	and pipeline state that demonstrate specific behaviors.

AVAILABLE SCENARIOS:

	workshop-week: Small catalog with a comfortable backlog
	kiln-crunch:   Backlog big enough that kiln contention dominates
	packing-day:   Finished stock waiting to be allocated to orders

HOW SCENARIOS WORK:
 1. Reset the store (clear all data)
 2. Create the product catalog
 3. Create queued orders
 4. Set pipeline WIP counts

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "kiln-crunch"}

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - server.go: scenario route registration
  - store/sqlite/sqlite.go: Reset and the seed writes
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kilnworks/production-engine/production"
)

// SeedStore is the admin surface scenario loading needs on top of the
// regular store interfaces. Both the SQLite and the memory store provide it.
type SeedStore interface {
	production.Store
	SaveProduct(ctx context.Context, p production.Product) error
	SaveOrder(ctx context.Context, o production.Order) error
	Reset(ctx context.Context) error
}

// ScenarioDTO describes one loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects the scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "workshop-week",
		Name:        "Workshop Week",
		Description: "Small catalog, a few queued orders, work in every pipeline stage",
	},
	{
		ID:          "kiln-crunch",
		Name:        "Kiln Crunch",
		Description: "Backlog heavy enough that the shared kiln, not molds, sets the timeline",
	},
	{
		ID:          "packing-day",
		Name:        "Packing Day",
		Description: "Finished stock on the shelves ready to allocate against waiting orders",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: h.currentScenario, Name: h.currentScenario})
}

// LoadScenario resets the store and loads the requested scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	if h.seeder == nil {
		writeError(w, http.StatusNotImplemented, "Store does not support scenario loading", nil)
		return
	}

	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	if err := h.seeder.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "workshop-week":
		err = loadWorkshopWeek(ctx, h.seeder)
	case "kiln-crunch":
		err = loadKilnCrunch(ctx, h.seeder)
	case "packing-day":
		err = loadPackingDay(ctx, h.seeder)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario: %s", req.ScenarioID), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]string{"loaded": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func daysAgo(n int) time.Time {
	return time.Now().UTC().AddDate(0, 0, -n)
}

func seedCatalog(ctx context.Context, s SeedStore) error {
	products := []production.Product{
		{ID: 1, Name: "Taza Clásica", SKU: "TAZ-01", MoldsAvailable: 6, MaxTurnsPerDay: 4, UnitPrice: price("145.00")},
		{ID: 2, Name: "Plato Trinche", SKU: "PLA-01", MoldsAvailable: 8, MaxTurnsPerDay: 3, UnitPrice: price("210.00")},
		{ID: 3, Name: "Florero Alto", SKU: "FLO-02", MoldsAvailable: 2, MaxTurnsPerDay: 2, UnitPrice: price("480.00")},
		{ID: 4, Name: "Macetero Chico", SKU: "MAC-01", MoldsAvailable: 0, MaxTurnsPerDay: 3, UnitPrice: price("260.00")},
	}
	for _, p := range products {
		if err := s.SaveProduct(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func loadWorkshopWeek(ctx context.Context, s SeedStore) error {
	if err := seedCatalog(ctx, s); err != nil {
		return err
	}

	orders := []production.Order{
		{
			ID: 101, Folio: "F-101", ClientID: 1, ClientName: "Casa Verde",
			CreatedAt: daysAgo(12), Status: production.OrderInProduction,
			Items: []production.OrderLine{
				{ProductID: 1, Ordered: 60, Allocated: 20},
				{ProductID: 2, Ordered: 40},
			},
		},
		{
			ID: 102, Folio: "F-102", ClientID: 2, ClientName: "Hotel Mirador",
			CreatedAt: daysAgo(6), Status: production.OrderQueued,
			Items: []production.OrderLine{
				{ProductID: 2, Ordered: 80},
				{ProductID: 3, Ordered: 12},
			},
		},
		{
			ID: 103, Folio: "F-103", ClientID: 3, ClientName: "Galería Sol",
			CreatedAt: daysAgo(2), Status: production.OrderQueued,
			Items: []production.OrderLine{{ProductID: 1, Ordered: 24}},
		},
	}
	for _, o := range orders {
		if err := s.SaveOrder(ctx, o); err != nil {
			return err
		}
	}

	statuses := []production.PipelineStatus{
		{ProductID: 1, ToDetail: 18, Detailed: 10, Bisque: 22, Finished: 8},
		{ProductID: 2, ToDetail: 30, Detailed: 12, Bisque: 15, Finished: 0},
		{ProductID: 3, ToDetail: 4, Detailed: 2, Bisque: 6, Finished: 1},
	}
	for _, st := range statuses {
		if err := s.SetStatus(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func loadKilnCrunch(ctx context.Context, s SeedStore) error {
	if err := seedCatalog(ctx, s); err != nil {
		return err
	}

	// Every product alone could run near its own capacity; together they
	// fight over the kiln and the fleet timeline stretches well past any
	// single independent estimate.
	orders := []production.Order{
		{
			ID: 201, Folio: "F-201", ClientID: 4, ClientName: "Distribuidora Norte",
			CreatedAt: daysAgo(20), Status: production.OrderInProduction,
			Items: []production.OrderLine{
				{ProductID: 1, Ordered: 900},
				{ProductID: 2, Ordered: 1200},
			},
		},
		{
			ID: 202, Folio: "F-202", ClientID: 5, ClientName: "Mercado Central",
			CreatedAt: daysAgo(15), Status: production.OrderQueued,
			Items: []production.OrderLine{
				{ProductID: 1, Ordered: 700},
				{ProductID: 3, Ordered: 90},
			},
		},
	}
	for _, o := range orders {
		if err := s.SaveOrder(ctx, o); err != nil {
			return err
		}
	}
	return nil
}

func loadPackingDay(ctx context.Context, s SeedStore) error {
	if err := seedCatalog(ctx, s); err != nil {
		return err
	}

	orders := []production.Order{
		{
			ID: 301, Folio: "F-301", ClientID: 1, ClientName: "Casa Verde",
			CreatedAt: daysAgo(25), Status: production.OrderInProduction,
			Items: []production.OrderLine{
				{ProductID: 1, Ordered: 30, Allocated: 10},
				{ProductID: 3, Ordered: 6},
			},
		},
		{
			ID: 302, Folio: "F-302", ClientID: 2, ClientName: "Hotel Mirador",
			CreatedAt: daysAgo(18), Status: production.OrderInProduction,
			Items: []production.OrderLine{{ProductID: 1, Ordered: 50}},
		},
	}
	for _, o := range orders {
		if err := s.SaveOrder(ctx, o); err != nil {
			return err
		}
	}

	statuses := []production.PipelineStatus{
		{ProductID: 1, Bisque: 12, Finished: 45},
		{ProductID: 3, Bisque: 2, Finished: 6},
	}
	for _, st := range statuses {
		if err := s.SetStatus(ctx, st); err != nil {
			return err
		}
	}
	return nil
}
