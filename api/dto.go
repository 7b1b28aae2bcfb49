/*
dto.go - Request/response data structures for the HTTP API

PURPOSE:
  Defines the JSON shapes exchanged with clients. Keeps wire format
  concerns (field names, date formatting, monetary strings) out of the
  domain packages.

CONVENTIONS:
  - Dates are formatted as "2006-01-02" (calendar dates, no time part)
  - Timestamps are RFC3339
  - Monetary values are decimal strings, never floats
  - Omitted optional fields marshal as null/absent, not zero values

SEE ALSO:
  - handlers.go: where these are populated and parsed
  - production/report.go: domain-side schedule structures
*/
package api

// =============================================================================
// SCHEDULE
// =============================================================================

// WaitingOrderDTO is one order waiting on a product, FIFO by creation date.
type WaitingOrderDTO struct {
	OrderID    int64  `json:"order_id"`
	Folio      string `json:"folio"`
	ClientName string `json:"client_name"`
	CreatedAt  string `json:"created_at"`
	Pending    int    `json:"pending"`
}

// PipelineDTO is the WIP snapshot for one product.
type PipelineDTO struct {
	ToDetail int `json:"to_detail"`
	Detailed int `json:"detailed"`
	Bisque   int `json:"bisque"`
	Finished int `json:"finished"`
}

// ProductScheduleDTO is the per-product row of the capacity schedule.
type ProductScheduleDTO struct {
	ProductID            int64             `json:"product_id"`
	Name                 string            `json:"name"`
	SKU                  string            `json:"sku,omitempty"`
	Pending              int               `json:"pending"`
	WasteAdjustedPending int               `json:"waste_adjusted_pending"`
	PendingValue         string            `json:"pending_value"`
	DailyCapacity        int               `json:"daily_capacity"`
	MoldLimited          bool              `json:"mold_limited"`
	Unschedulable        bool              `json:"unschedulable"`
	DaysNeeded           int               `json:"days_needed"`
	CompletionDate       *string           `json:"completion_date"`
	Pipeline             PipelineDTO       `json:"pipeline"`
	WaitingOrders        []WaitingOrderDTO `json:"waiting_orders"`
}

// FleetScheduleDTO summarizes the joint simulation across all products.
type FleetScheduleDTO struct {
	TotalPending          int     `json:"total_pending"`
	TotalWasteAdjusted    int     `json:"total_waste_adjusted"`
	TotalDays             int     `json:"total_days"`
	TotalWeeks            int     `json:"total_weeks"`
	CompletionDate        *string `json:"completion_date"`
	UnschedulableProducts []int64 `json:"unschedulable_products,omitempty"`
}

// ScheduleResponse is the full capacity schedule report.
type ScheduleResponse struct {
	GeneratedAt string               `json:"generated_at"`
	Products    []ProductScheduleDTO `json:"products"`
	Fleet       FleetScheduleDTO     `json:"fleet"`
}

// PublishResponse reports how many orders received delivery estimates.
type PublishResponse struct {
	OrdersUpdated int `json:"orders_updated"`
}

// =============================================================================
// PIPELINE
// =============================================================================

// PipelineStatusDTO is the full pipeline row keyed by product.
type PipelineStatusDTO struct {
	ProductID int64  `json:"product_id"`
	ToDetail  int    `json:"to_detail"`
	Detailed  int    `json:"detailed"`
	Bisque    int    `json:"bisque"`
	Finished  int    `json:"finished"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// UpdatePipelineRequest replaces the WIP counts for one product.
type UpdatePipelineRequest struct {
	ToDetail int `json:"to_detail"`
	Detailed int `json:"detailed"`
	Bisque   int `json:"bisque"`
	Finished int `json:"finished"`
}

// =============================================================================
// ALLOCATIONS
// =============================================================================

// AllocateRequest reserves finished stock against an order line.
type AllocateRequest struct {
	ProductID int64  `json:"product_id"`
	OrderID   int64  `json:"order_id"`
	Quantity  int    `json:"quantity"`
	Notes     string `json:"notes,omitempty"`
}

// AllocateResponse reports state after a successful allocation.
type AllocateResponse struct {
	ProductID          int64 `json:"product_id"`
	OrderID            int64 `json:"order_id"`
	AllocationQuantity int   `json:"allocation_quantity"`
	FinishedAfter      int   `json:"finished_after"`
	LinePendingAfter   int   `json:"line_pending_after"`
}

// DeallocateResponse reports state after stock is returned to the pool.
type DeallocateResponse struct {
	ProductID     int64 `json:"product_id"`
	OrderID       int64 `json:"order_id"`
	Returned      int   `json:"returned"`
	FinishedAfter int   `json:"finished_after"`
}

// AllocationDTO is one persisted allocation record.
type AllocationDTO struct {
	ID          string `json:"id"`
	ProductID   int64  `json:"product_id"`
	OrderID     int64  `json:"order_id"`
	Stage       string `json:"stage"`
	Quantity    int    `json:"quantity"`
	AllocatedAt string `json:"allocated_at"`
	Notes       string `json:"notes,omitempty"`
}

// =============================================================================
// CATALOG / ORDERS
// =============================================================================

// ProductDTO is one catalog entry with derived capacity.
type ProductDTO struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	SKU            string `json:"sku,omitempty"`
	MoldsAvailable int    `json:"molds_available"`
	MaxTurnsPerDay int    `json:"max_turns_per_day"`
	UnitPrice      string `json:"unit_price"`
	DailyCapacity  int    `json:"daily_capacity"`
}

// OrderLineDTO is one line of an order.
type OrderLineDTO struct {
	ProductID int64 `json:"product_id"`
	Ordered   int   `json:"ordered"`
	Allocated int   `json:"allocated"`
	Pending   int   `json:"pending"`
}

// OrderDTO is one client order.
type OrderDTO struct {
	ID                int64          `json:"id"`
	Folio             string         `json:"folio"`
	ClientID          int64          `json:"client_id"`
	ClientName        string         `json:"client_name"`
	CreatedAt         string         `json:"created_at"`
	Status            string         `json:"status"`
	Items             []OrderLineDTO `json:"items"`
	EstimatedDelivery *string        `json:"estimated_delivery"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the standard error shape.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
