/*
handlers.go - HTTP API handlers for the production engine

PURPOSE:
  Exposes the planner and allocator via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Schedule:
    GET    /api/production/schedule          Capacity schedule report
    POST   /api/production/schedule/publish  Write delivery estimates to orders

  Pipeline:
    GET    /api/production/pipeline          WIP counts for all products
    GET    /api/production/pipeline/{id}     WIP counts for one product
    PUT    /api/production/pipeline/{id}     Replace WIP counts

  Allocations:
    GET    /api/production/allocations?product_id=N  List allocations
    POST   /api/production/allocations               Allocate finished stock
    DELETE /api/production/allocations               Return stock to pool

  Catalog:
    GET    /api/products                     List products with capacity
    GET    /api/orders                       List active orders
    GET    /api/orders/{id}                  Get one order

ERROR HANDLING:
  Domain errors map to HTTP status by classification:
  - 400: validation errors, malformed input, missing line item
  - 404: product, order, or allocation not found
  - 409: insufficient finished stock
  - 503: transient store errors (retryable)
  - 500: everything else

SEE ALSO:
  - dto.go: request/response data structures
  - server.go: router setup and middleware
  - production/planner.go, allocation/allocator.go: domain logic
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kilnworks/production-engine/allocation"
	"github.com/kilnworks/production-engine/production"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     production.Store
	Planner   *production.Planner
	Allocator *allocation.Allocator

	// seeder is set when the store supports demo scenario loading.
	seeder          SeedStore
	currentScenario string
}

// NewHandler wires a handler over the given store with the given config.
func NewHandler(store production.Store, cfg production.Config) *Handler {
	h := &Handler{
		Store:     store,
		Planner:   production.NewPlanner(store, cfg),
		Allocator: allocation.New(store),
	}
	if s, ok := store.(SeedStore); ok {
		h.seeder = s
	}
	return h
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

// GetSchedule returns the full capacity schedule report.
// GET /api/production/schedule
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	report, err := h.Planner.BuildReport(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to build schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleResponse(report))
}

// PublishSchedule recomputes the schedule and writes estimated delivery
// dates onto the affected orders.
// POST /api/production/schedule/publish
func (h *Handler) PublishSchedule(w http.ResponseWriter, r *http.Request) {
	updated, err := h.Planner.PublishEstimates(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to publish delivery estimates", err)
		return
	}
	writeJSON(w, http.StatusOK, PublishResponse{OrdersUpdated: updated})
}

func toScheduleResponse(report *production.ScheduleReport) ScheduleResponse {
	resp := ScheduleResponse{
		GeneratedAt: report.GeneratedAt.Format(time.RFC3339),
		Products:    make([]ProductScheduleDTO, 0, len(report.Products)),
		Fleet: FleetScheduleDTO{
			TotalPending:          report.Fleet.TotalPending,
			TotalWasteAdjusted:    report.Fleet.TotalWasteAdjusted,
			TotalDays:             report.Fleet.TotalDays,
			TotalWeeks:            report.Fleet.TotalWeeks,
			CompletionDate:        formatDate(report.Fleet.CompletionDate),
			UnschedulableProducts: report.Fleet.UnschedulableProducts,
		},
	}

	for _, p := range report.Products {
		waiting := make([]WaitingOrderDTO, 0, len(p.WaitingOrders))
		for _, wo := range p.WaitingOrders {
			waiting = append(waiting, WaitingOrderDTO{
				OrderID:    wo.OrderID,
				Folio:      wo.Folio,
				ClientName: wo.ClientName,
				CreatedAt:  wo.CreatedAt,
				Pending:    wo.Pending,
			})
		}
		resp.Products = append(resp.Products, ProductScheduleDTO{
			ProductID:            p.ProductID,
			Name:                 p.Name,
			SKU:                  p.SKU,
			Pending:              p.Pending,
			WasteAdjustedPending: p.WasteAdjustedPending,
			PendingValue:         p.PendingValue.String(),
			DailyCapacity:        p.DailyCapacity,
			MoldLimited:          p.MoldLimited,
			Unschedulable:        p.Unschedulable,
			DaysNeeded:           p.DaysNeeded,
			CompletionDate:       formatDate(p.CompletionDate),
			Pipeline: PipelineDTO{
				ToDetail: p.Pipeline.ToDetail,
				Detailed: p.Pipeline.Detailed,
				Bisque:   p.Pipeline.Bisque,
				Finished: p.Pipeline.Finished,
			},
			WaitingOrders: waiting,
		})
	}
	return resp
}

// =============================================================================
// PIPELINE HANDLERS
// =============================================================================

// ListPipeline returns WIP counts for all products.
// GET /api/production/pipeline
func (h *Handler) ListPipeline(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.Store.ListStatuses(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to list pipeline status", err)
		return
	}

	dtos := make([]PipelineStatusDTO, 0, len(statuses))
	for _, st := range statuses {
		dtos = append(dtos, toPipelineStatusDTO(st))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPipeline returns WIP counts for one product.
// GET /api/production/pipeline/{id}
func (h *Handler) GetPipeline(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	// Product must exist even if it has no pipeline row yet.
	if _, err := h.Store.GetProduct(r.Context(), productID); err != nil {
		writeDomainError(w, "Failed to get product", err)
		return
	}

	st, err := h.Store.GetStatus(r.Context(), productID)
	if err != nil {
		writeDomainError(w, "Failed to get pipeline status", err)
		return
	}
	writeJSON(w, http.StatusOK, toPipelineStatusDTO(st))
}

// UpdatePipeline replaces the WIP counts for one product.
// PUT /api/production/pipeline/{id}
func (h *Handler) UpdatePipeline(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req UpdatePipelineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ToDetail < 0 || req.Detailed < 0 || req.Bisque < 0 || req.Finished < 0 {
		writeError(w, http.StatusBadRequest, "Pipeline counts must be non-negative", nil)
		return
	}

	st := production.PipelineStatus{
		ProductID: productID,
		ToDetail:  req.ToDetail,
		Detailed:  req.Detailed,
		Bisque:    req.Bisque,
		Finished:  req.Finished,
	}
	if err := h.Store.SetStatus(r.Context(), st); err != nil {
		writeDomainError(w, "Failed to update pipeline status", err)
		return
	}

	updated, err := h.Store.GetStatus(r.Context(), productID)
	if err != nil {
		writeDomainError(w, "Failed to read back pipeline status", err)
		return
	}
	writeJSON(w, http.StatusOK, toPipelineStatusDTO(updated))
}

func toPipelineStatusDTO(st production.PipelineStatus) PipelineStatusDTO {
	dto := PipelineStatusDTO{
		ProductID: st.ProductID,
		ToDetail:  st.ToDetail,
		Detailed:  st.Detailed,
		Bisque:    st.Bisque,
		Finished:  st.Finished,
	}
	if !st.UpdatedAt.IsZero() {
		dto.UpdatedAt = st.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}

// =============================================================================
// ALLOCATION HANDLERS
// =============================================================================

// ListAllocations returns all allocations for a product.
// GET /api/production/allocations?product_id=N
func (h *Handler) ListAllocations(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(r.URL.Query().Get("product_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing or invalid product_id query parameter", err)
		return
	}

	allocs, err := h.Store.ListByProduct(r.Context(), productID)
	if err != nil {
		writeDomainError(w, "Failed to list allocations", err)
		return
	}

	dtos := make([]AllocationDTO, 0, len(allocs))
	for _, a := range allocs {
		dtos = append(dtos, AllocationDTO{
			ID:          a.ID,
			ProductID:   a.ProductID,
			OrderID:     a.OrderID,
			Stage:       string(a.Stage),
			Quantity:    a.Quantity,
			AllocatedAt: a.AllocatedAt.Format(time.RFC3339),
			Notes:       a.Notes,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Allocate reserves finished stock against an order line.
// POST /api/production/allocations
func (h *Handler) Allocate(w http.ResponseWriter, r *http.Request) {
	var req AllocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.Allocator.Allocate(r.Context(), req.ProductID, req.OrderID, req.Quantity, req.Notes)
	if err != nil {
		writeDomainError(w, "Allocation failed", err)
		return
	}

	writeJSON(w, http.StatusOK, AllocateResponse{
		ProductID:          result.ProductID,
		OrderID:            result.OrderID,
		AllocationQuantity: result.AllocationQuantity,
		FinishedAfter:      result.FinishedAfter,
		LinePendingAfter:   result.LinePendingAfter,
	})
}

// Deallocate returns an allocation's stock to the finished pool and
// deletes the record.
// DELETE /api/production/allocations?product_id=N&order_id=M
func (h *Handler) Deallocate(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(r.URL.Query().Get("product_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing or invalid product_id query parameter", err)
		return
	}
	orderID, err := strconv.ParseInt(r.URL.Query().Get("order_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing or invalid order_id query parameter", err)
		return
	}

	result, err := h.Allocator.Deallocate(r.Context(), productID, orderID)
	if err != nil {
		writeDomainError(w, "Deallocation failed", err)
		return
	}

	writeJSON(w, http.StatusOK, DeallocateResponse{
		ProductID:     result.ProductID,
		OrderID:       result.OrderID,
		Returned:      result.Returned,
		FinishedAfter: result.FinishedAfter,
	})
}

// =============================================================================
// CATALOG / ORDER HANDLERS
// =============================================================================

// ListProducts returns the catalog with derived daily capacity.
// GET /api/products
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Store.ListProducts(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to list products", err)
		return
	}

	dtos := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		dtos = append(dtos, ProductDTO{
			ID:             p.ID,
			Name:           p.Name,
			SKU:            p.SKU,
			MoldsAvailable: p.MoldsAvailable,
			MaxTurnsPerDay: p.MaxTurnsPerDay,
			UnitPrice:      p.UnitPrice.String(),
			DailyCapacity:  production.DailyCapacity(p),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListOrders returns all orders currently in production.
// GET /api/orders
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Store.ListActiveOrders(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to list orders", err)
		return
	}

	dtos := make([]OrderDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, toOrderDTO(o))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetOrder returns one order with its line items.
// GET /api/orders/{id}
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	o, err := h.Store.GetOrder(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, "Failed to get order", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTO(o))
}

func toOrderDTO(o production.Order) OrderDTO {
	items := make([]OrderLineDTO, 0, len(o.Items))
	for _, li := range o.Items {
		items = append(items, OrderLineDTO{
			ProductID: li.ProductID,
			Ordered:   li.Ordered,
			Allocated: li.Allocated,
			Pending:   li.Pending(),
		})
	}
	return OrderDTO{
		ID:                o.ID,
		Folio:             o.Folio,
		ClientID:          o.ClientID,
		ClientName:        o.ClientName,
		CreatedAt:         o.CreatedAt.Format(time.RFC3339),
		Status:            string(o.Status),
		Items:             items,
		EstimatedDelivery: formatDate(o.EstimatedDelivery),
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func parseID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid "+param+" parameter", err)
		return 0, false
	}
	return id, true
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain error classes to HTTP status codes.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case production.IsClientError(err):
		status := http.StatusBadRequest
		if errors.Is(err, production.ErrInsufficientStock) {
			status = http.StatusConflict
		}
		writeError(w, status, message, err)
	case production.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case production.IsRetryable(err):
		writeError(w, http.StatusServiceUnavailable, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
