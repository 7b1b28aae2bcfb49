// Package store provides an in-memory production.Store implementation
// (for testing/dev).
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kilnworks/production-engine/production"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	products    map[int64]production.Product
	orders      map[int64]*production.Order
	pipeline    map[int64]production.PipelineStatus
	allocations map[allocKey]production.Allocation
}

type allocKey struct {
	ProductID int64
	OrderID   int64
	Stage     production.AllocationStage
}

func NewMemory() *Memory {
	return &Memory{
		products:    make(map[int64]production.Product),
		orders:      make(map[int64]*production.Order),
		pipeline:    make(map[int64]production.PipelineStatus),
		allocations: make(map[allocKey]production.Allocation),
	}
}

// Seed helpers for tests and demo data.

func (m *Memory) PutProduct(p production.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
}

func (m *Memory) PutOrder(o production.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := o
	copied.Items = append([]production.OrderLine(nil), o.Items...)
	m.orders[o.ID] = &copied
}

func (m *Memory) PutPipeline(st production.PipelineStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pipeline[st.ProductID] = st
}

// SaveProduct, SaveOrder and Reset mirror the SQLite store's admin surface
// so the memory store can back demo scenario loading too.

func (m *Memory) SaveProduct(_ context.Context, p production.Product) error {
	m.PutProduct(p)
	return nil
}

func (m *Memory) SaveOrder(_ context.Context, o production.Order) error {
	m.PutOrder(o)
	return nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = make(map[int64]production.Product)
	m.orders = make(map[int64]*production.Order)
	m.pipeline = make(map[int64]production.PipelineStatus)
	m.allocations = make(map[allocKey]production.Allocation)
	return nil
}

// =============================================================================
// READ PATH
// =============================================================================

func (m *Memory) ListActiveOrders(_ context.Context) ([]production.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []production.Order
	for _, o := range m.orders {
		if !o.Status.InProduction() {
			continue
		}
		result = append(result, m.copyOrderLocked(o))
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *Memory) GetOrder(_ context.Context, orderID int64) (production.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.orders[orderID]
	if !ok {
		return production.Order{}, production.ErrOrderNotFound
	}
	return m.copyOrderLocked(o), nil
}

func (m *Memory) copyOrderLocked(o *production.Order) production.Order {
	copied := *o
	copied.Items = append([]production.OrderLine(nil), o.Items...)
	if o.EstimatedDelivery != nil {
		d := *o.EstimatedDelivery
		copied.EstimatedDelivery = &d
	}
	return copied
}

func (m *Memory) SetEstimatedDelivery(_ context.Context, orderID int64, date time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[orderID]
	if !ok {
		return production.ErrOrderNotFound
	}
	o.EstimatedDelivery = &date
	return nil
}

func (m *Memory) ListProducts(_ context.Context) ([]production.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]production.Product, 0, len(m.products))
	for _, p := range m.products {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) GetProduct(_ context.Context, productID int64) (production.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[productID]
	if !ok {
		return production.Product{}, production.ErrProductNotFound
	}
	return p, nil
}

func (m *Memory) ListStatuses(_ context.Context) ([]production.PipelineStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]production.PipelineStatus, 0, len(m.pipeline))
	for _, st := range m.pipeline {
		result = append(result, st)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ProductID < result[j].ProductID })
	return result, nil
}

func (m *Memory) GetStatus(_ context.Context, productID int64) (production.PipelineStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.pipeline[productID]
	if !ok {
		// No row yet means nothing in the pipeline, not an error.
		return production.PipelineStatus{ProductID: productID}, nil
	}
	return st, nil
}

func (m *Memory) SetStatus(_ context.Context, status production.PipelineStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[status.ProductID]; !ok {
		return production.ErrProductNotFound
	}
	m.pipeline[status.ProductID] = status
	return nil
}

func (m *Memory) ListByProduct(_ context.Context, productID int64) ([]production.Allocation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []production.Allocation
	for k, a := range m.allocations {
		if k.ProductID == productID {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].OrderID < result[j].OrderID })
	return result, nil
}

func (m *Memory) GetAllocation(_ context.Context, productID, orderID int64, stage production.AllocationStage) (production.Allocation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.allocations[allocKey{productID, orderID, stage}]
	if !ok {
		return production.Allocation{}, production.ErrAllocationNotFound
	}
	return a, nil
}

// =============================================================================
// TRANSACTIONAL WRITE PATH
// =============================================================================

// WithProductTx serializes mutations under the store lock, snapshotting the
// mutable state first and restoring it if fn fails.
func (m *Memory) WithProductTx(_ context.Context, productID int64, fn func(production.AllocationMutator) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[productID]; !ok {
		return production.ErrProductNotFound
	}

	snapshot := m.snapshotLocked()
	mutator := &memoryMutator{store: m, productID: productID}
	if err := fn(mutator); err != nil {
		m.restoreLocked(snapshot)
		return err
	}
	return nil
}

type memorySnapshot struct {
	pipeline    map[int64]production.PipelineStatus
	allocations map[allocKey]production.Allocation
	orders      map[int64]*production.Order
}

func (m *Memory) snapshotLocked() memorySnapshot {
	pipeCopy := make(map[int64]production.PipelineStatus, len(m.pipeline))
	for k, v := range m.pipeline {
		pipeCopy[k] = v
	}
	allocCopy := make(map[allocKey]production.Allocation, len(m.allocations))
	for k, v := range m.allocations {
		allocCopy[k] = v
	}
	orderCopy := make(map[int64]*production.Order, len(m.orders))
	for k, v := range m.orders {
		copied := *v
		copied.Items = append([]production.OrderLine(nil), v.Items...)
		orderCopy[k] = &copied
	}
	return memorySnapshot{pipeline: pipeCopy, allocations: allocCopy, orders: orderCopy}
}

func (m *Memory) restoreLocked(s memorySnapshot) {
	m.pipeline = s.pipeline
	m.allocations = s.allocations
	m.orders = s.orders
}

type memoryMutator struct {
	store     *Memory
	productID int64
}

func (t *memoryMutator) FinishedStock() (int, error) {
	return t.store.pipeline[t.productID].Finished, nil
}

func (t *memoryMutator) OrderLine(orderID int64) (production.OrderLine, error) {
	o, ok := t.store.orders[orderID]
	if !ok {
		return production.OrderLine{}, production.ErrOrderNotFound
	}
	line, ok := o.Line(t.productID)
	if !ok {
		return production.OrderLine{}, production.ErrNoLineItem
	}
	return line, nil
}

func (t *memoryMutator) Allocation(orderID int64, stage production.AllocationStage) (production.Allocation, error) {
	a, ok := t.store.allocations[allocKey{t.productID, orderID, stage}]
	if !ok {
		return production.Allocation{}, production.ErrAllocationNotFound
	}
	return a, nil
}

func (t *memoryMutator) AdjustFinished(delta int) error {
	st := t.store.pipeline[t.productID]
	if st.Finished+delta < 0 {
		return &production.InsufficientStockError{
			ProductID: t.productID,
			Available: st.Finished,
			Requested: -delta,
		}
	}
	st.ProductID = t.productID
	st.Finished += delta
	st.UpdatedAt = time.Now().UTC()
	t.store.pipeline[t.productID] = st
	return nil
}

func (t *memoryMutator) SaveAllocation(a production.Allocation) error {
	t.store.allocations[allocKey{a.ProductID, a.OrderID, a.Stage}] = a
	return nil
}

func (t *memoryMutator) DeleteAllocation(orderID int64, stage production.AllocationStage) error {
	k := allocKey{t.productID, orderID, stage}
	if _, ok := t.store.allocations[k]; !ok {
		return production.ErrAllocationNotFound
	}
	delete(t.store.allocations, k)
	return nil
}

func (t *memoryMutator) AdjustLineAllocated(orderID int64, delta int) error {
	o, ok := t.store.orders[orderID]
	if !ok {
		return production.ErrOrderNotFound
	}
	for i := range o.Items {
		if o.Items[i].ProductID == t.productID {
			o.Items[i].Allocated += delta
			return nil
		}
	}
	return production.ErrNoLineItem
}
