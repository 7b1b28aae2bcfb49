package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilnworks/production-engine/api"
	"github.com/kilnworks/production-engine/production"
	"github.com/kilnworks/production-engine/production/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) (*httptest.Server, *store.Memory) {
	t.Helper()

	mem := store.NewMemory()
	mem.PutProduct(production.Product{
		ID: 1, Name: "Mug", SKU: "MUG-01",
		MoldsAvailable: 2, MaxTurnsPerDay: 5,
		UnitPrice: decimal.NewFromInt(150),
	})
	mem.PutPipeline(production.PipelineStatus{ProductID: 1, Bisque: 5, Finished: 10})
	mem.PutOrder(production.Order{
		ID: 10, Folio: "F-010", ClientID: 7, ClientName: "Casa Verde",
		CreatedAt: time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC),
		Status:    production.OrderQueued,
		Items:     []production.OrderLine{{ProductID: 1, Ordered: 10}},
	})

	handler := api.NewHandler(mem, production.DefaultConfig())
	srv := httptest.NewServer(api.NewRouter(handler))
	t.Cleanup(srv.Close)
	return srv, mem
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

// =============================================================================
// SCHEDULE ENDPOINTS
// =============================================================================

func TestGetSchedule(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/production/schedule", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var schedule api.ScheduleResponse
	decodeInto(t, resp, &schedule)

	require.Len(t, schedule.Products, 1)
	p := schedule.Products[0]
	assert.Equal(t, int64(1), p.ProductID)
	assert.Equal(t, 10, p.Pending)
	assert.Equal(t, 13, p.WasteAdjustedPending)
	assert.Equal(t, "1500", p.PendingValue)
	assert.Equal(t, 10, p.DailyCapacity)
	assert.Equal(t, 2, p.DaysNeeded)
	assert.NotNil(t, p.CompletionDate)
	assert.Equal(t, 10, p.Pipeline.Finished)
	require.Len(t, p.WaitingOrders, 1)
	assert.Equal(t, "F-010", p.WaitingOrders[0].Folio)

	assert.Equal(t, 10, schedule.Fleet.TotalPending)
	assert.Equal(t, 13, schedule.Fleet.TotalWasteAdjusted)
	assert.Equal(t, 2, schedule.Fleet.TotalDays)
	assert.Equal(t, 1, schedule.Fleet.TotalWeeks)
}

func TestPublishSchedule(t *testing.T) {
	srv, mem := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/production/schedule/publish", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var published api.PublishResponse
	decodeInto(t, resp, &published)
	assert.Equal(t, 1, published.OrdersUpdated)

	o, err := mem.GetOrder(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, o.EstimatedDelivery)
}

// =============================================================================
// PIPELINE ENDPOINTS
// =============================================================================

func TestPipelineEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	// Update
	resp := doJSON(t, http.MethodPut, srv.URL+"/api/production/pipeline/1", api.UpdatePipelineRequest{
		ToDetail: 4, Detailed: 3, Bisque: 2, Finished: 1,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var st api.PipelineStatusDTO
	decodeInto(t, resp, &st)
	assert.Equal(t, 4, st.ToDetail)
	assert.Equal(t, 1, st.Finished)

	// Read back
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/production/pipeline/1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeInto(t, resp, &st)
	assert.Equal(t, 3, st.Detailed)

	// List
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/production/pipeline", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var all []api.PipelineStatusDTO
	decodeInto(t, resp, &all)
	require.Len(t, all, 1)
}

func TestUpdatePipeline_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/production/pipeline/1", api.UpdatePipelineRequest{
		Finished: -5,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/production/pipeline/99", api.UpdatePipelineRequest{})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/production/pipeline/99", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// ALLOCATION ENDPOINTS
// =============================================================================

func TestAllocate_Success(t *testing.T) {
	srv, mem := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/production/allocations", api.AllocateRequest{
		ProductID: 1, OrderID: 10, Quantity: 6,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result api.AllocateResponse
	decodeInto(t, resp, &result)
	assert.Equal(t, 4, result.FinishedAfter)
	assert.Equal(t, 6, result.AllocationQuantity)
	assert.Equal(t, 4, result.LinePendingAfter)

	o, err := mem.GetOrder(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 6, o.Items[0].Allocated)
}

func TestAllocate_ErrorStatusMapping(t *testing.T) {
	srv, _ := newTestServer(t)
	url := srv.URL + "/api/production/allocations"

	// Insufficient stock: conflict with current inventory state.
	resp := doJSON(t, http.MethodPost, url, api.AllocateRequest{ProductID: 1, OrderID: 10, Quantity: 10000})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "over-pending is rejected before stock")

	resp = doJSON(t, http.MethodPost, url, api.AllocateRequest{ProductID: 1, OrderID: 10, Quantity: 10})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = doJSON(t, http.MethodPost, url, api.AllocateRequest{ProductID: 1, OrderID: 10, Quantity: 10})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "line fully covered now")

	// Bad quantity
	resp = doJSON(t, http.MethodPost, url, api.AllocateRequest{ProductID: 1, OrderID: 10, Quantity: 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unknown references
	resp = doJSON(t, http.MethodPost, url, api.AllocateRequest{ProductID: 99, OrderID: 10, Quantity: 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = doJSON(t, http.MethodPost, url, api.AllocateRequest{ProductID: 1, OrderID: 99, Quantity: 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAllocate_InsufficientStockConflict(t *testing.T) {
	srv, mem := newTestServer(t)

	// Shrink the pool below the line's pending so stock is the binding
	// constraint.
	mem.PutPipeline(production.PipelineStatus{ProductID: 1, Finished: 3})

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/production/allocations", api.AllocateRequest{
		ProductID: 1, OrderID: 10, Quantity: 8,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var errResp api.ErrorResponse
	decodeInto(t, resp, &errResp)
	assert.NotEmpty(t, errResp.Details)
}

func TestDeallocate(t *testing.T) {
	srv, _ := newTestServer(t)
	base := srv.URL + "/api/production/allocations"

	resp := doJSON(t, http.MethodPost, base, api.AllocateRequest{ProductID: 1, OrderID: 10, Quantity: 6})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, base+"?product_id=1&order_id=10", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result api.DeallocateResponse
	decodeInto(t, resp, &result)
	assert.Equal(t, 6, result.Returned)
	assert.Equal(t, 10, result.FinishedAfter)

	// Second delete: nothing left to reverse.
	resp = doJSON(t, http.MethodDelete, base+"?product_id=1&order_id=10", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Missing query parameters
	resp = doJSON(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListAllocations(t *testing.T) {
	srv, _ := newTestServer(t)
	base := srv.URL + "/api/production/allocations"

	resp := doJSON(t, http.MethodPost, base, api.AllocateRequest{ProductID: 1, OrderID: 10, Quantity: 2})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, base+"?product_id=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var allocs []api.AllocationDTO
	decodeInto(t, resp, &allocs)
	require.Len(t, allocs, 1)
	assert.Equal(t, "packing", allocs[0].Stage)
	assert.Equal(t, 2, allocs[0].Quantity)

	resp = doJSON(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "product_id is required")
}

// =============================================================================
// CATALOG / ORDER ENDPOINTS
// =============================================================================

func TestListProducts(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/products", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var products []api.ProductDTO
	decodeInto(t, resp, &products)
	require.Len(t, products, 1)
	assert.Equal(t, "Mug", products[0].Name)
	assert.Equal(t, 10, products[0].DailyCapacity)
	assert.Equal(t, "150", products[0].UnitPrice)
}

func TestOrders(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/orders", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var orders []api.OrderDTO
	decodeInto(t, resp, &orders)
	require.Len(t, orders, 1)
	assert.Equal(t, "F-010", orders[0].Folio)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, 10, orders[0].Items[0].Pending)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/orders/10", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/orders/99", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
