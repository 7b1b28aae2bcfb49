/*
errors.go - Centralized error types for the production engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The allocation package wraps these with operation-specific context.

ERROR CATEGORIES:
  1. Lookup errors    - Unknown product/order, missing line item
  2. Stock errors     - Allocation exceeds finished inventory
  3. Store errors     - Timeouts/connectivity; safe to retry

TAXONOMY NOTES:
  A request that can never succeed as written (bad quantity, unknown
  reference, over-pending allocation) is a CLIENT error: no mutation was
  attempted and retrying unchanged is pointless. A transient store error
  is the opposite: any in-flight mutation was rolled back, so retrying
  from a clean state is always safe.

  Report generation never errors on per-product data problems; those
  degrade to warnings (see planner.go) and the unschedulable flag.
*/
package production

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrProductNotFound is returned when a referenced product doesn't exist.
	ErrProductNotFound = errors.New("product not found")

	// ErrOrderNotFound is returned when a referenced order doesn't exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrNoLineItem is returned when an order carries no line item for the
	// requested product.
	ErrNoLineItem = errors.New("order has no line item for product")

	// ErrAllocationNotFound is returned when no allocation exists for the
	// (product, order, stage) triple.
	ErrAllocationNotFound = errors.New("allocation not found")

	// ErrInsufficientStock is returned when an allocation exceeds the
	// product's finished inventory. No mutation is performed.
	ErrInsufficientStock = errors.New("insufficient finished stock")

	// ErrTransientStore is returned for timeouts and connectivity failures
	// while reading or writing persistence. Always safe to retry: multi-step
	// mutations are rolled back before this surfaces.
	ErrTransientStore = errors.New("transient store error")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports malformed or policy-violating input. No mutation
// was attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InsufficientStockError details a finished-stock shortage.
type InsufficientStockError struct {
	ProductID int64
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient finished stock for product %d: available %d, requested %d",
		e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// TransientStoreError wraps an underlying persistence failure that is safe
// to retry.
type TransientStoreError struct {
	Op  string
	Err error
}

func (e *TransientStoreError) Error() string {
	return fmt.Sprintf("transient store error during %s: %v", e.Op, e.Err)
}

func (e *TransientStoreError) Unwrap() error {
	return ErrTransientStore
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransientStore)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrNoLineItem)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrAllocationNotFound)
}
