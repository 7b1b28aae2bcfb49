/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements production.Store (orders, catalog, WIP pipeline, allocations)
  using SQLite. In production deployments the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  products:        catalog with mold counts and turns/day
  orders:          client orders with production status
  order_items:     per-product ordered/allocated quantities
  pipeline_status: aggregate WIP counts per stage
  allocations:     finished stock reserved per (product, order, stage)

INVARIANT ENFORCEMENT:
  - allocations carries a UNIQUE index on (product_id, order_id, stage):
    the identity triple can never duplicate, whatever the caller does.
  - pipeline_status.finished carries a CHECK (finished >= 0): the stock
    pool can never be driven negative at the SQL level either.

CONCURRENCY:
  WithProductTx takes a per-product mutex (lock striping over a map) and
  runs the closure inside a single sql.Tx. Concurrent allocations of the
  same product serialize; different products proceed in parallel. Either
  every statement in the closure commits, or the transaction rolls back.

TRANSIENT ERRORS:
  Context deadline/cancellation and SQLITE_BUSY/LOCKED conditions are
  wrapped as production.TransientStoreError, after any open transaction
  has been rolled back, so callers can retry from a clean state.

WAL MODE:
  The database is opened with WAL (Write-Ahead Logging): readers do not
  block, one writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/factory.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - production/store.go:        interface definitions
  - production/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/kilnworks/production-engine/production"
)

// Store implements production.Store using SQLite.
type Store struct {
	db *sql.DB

	mu    sync.Mutex
	locks map[int64]*sync.Mutex // per-product critical sections
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: keeps ":memory:" databases coherent across the pool
	// and sidesteps SQLITE_BUSY on concurrent writes.
	db.SetMaxOpenConns(1)

	store := &Store{db: db, locks: make(map[int64]*sync.Mutex)}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Product catalog
	CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		sku TEXT,
		molds_available INTEGER NOT NULL DEFAULT 0,
		max_turns_per_day INTEGER NOT NULL DEFAULT 1,
		unit_price TEXT NOT NULL DEFAULT '0'
	);

	-- Client orders
	CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY,
		folio TEXT NOT NULL,
		client_id INTEGER NOT NULL,
		client_name TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		status TEXT NOT NULL,
		estimated_delivery TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);

	-- Per-product line items
	CREATE TABLE IF NOT EXISTS order_items (
		order_id INTEGER NOT NULL,
		product_id INTEGER NOT NULL,
		qty_ordered INTEGER NOT NULL,
		qty_allocated INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (order_id, product_id)
	);

	CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id);

	-- Aggregate WIP counts per product
	CREATE TABLE IF NOT EXISTS pipeline_status (
		product_id INTEGER PRIMARY KEY,
		to_detail INTEGER NOT NULL DEFAULT 0,
		detailed INTEGER NOT NULL DEFAULT 0,
		bisque INTEGER NOT NULL DEFAULT 0,
		finished INTEGER NOT NULL DEFAULT 0 CHECK (finished >= 0),
		updated_at TEXT NOT NULL
	);

	-- Finished stock reserved against orders
	CREATE TABLE IF NOT EXISTS allocations (
		id TEXT PRIMARY KEY,
		product_id INTEGER NOT NULL,
		order_id INTEGER NOT NULL,
		stage TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		allocated_at TEXT NOT NULL,
		notes TEXT
	);

	-- CRITICAL: one record per identity triple. Repeat allocations must
	-- accumulate in place, never duplicate.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_allocations_identity
		ON allocations(product_id, order_id, stage);
	CREATE INDEX IF NOT EXISTS idx_allocations_product
		ON allocations(product_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SEED / ADMIN WRITES (owned by external collaborators, exposed for wiring)
// =============================================================================

// SaveProduct inserts or replaces a catalog entry.
func (s *Store) SaveProduct(ctx context.Context, p production.Product) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, sku, molds_available, max_turns_per_day, unit_price)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, sku = excluded.sku,
			molds_available = excluded.molds_available,
			max_turns_per_day = excluded.max_turns_per_day,
			unit_price = excluded.unit_price`,
		p.ID, p.Name, p.SKU, p.MoldsAvailable, p.MaxTurnsPerDay, p.UnitPrice.String())
	return s.wrap("save product", err)
}

// SaveOrder inserts or replaces an order and its line items.
func (s *Store) SaveOrder(ctx context.Context, o production.Order) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.wrap("save order", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, folio, client_id, client_name, created_at, status, estimated_delivery)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			folio = excluded.folio, client_id = excluded.client_id,
			client_name = excluded.client_name, created_at = excluded.created_at,
			status = excluded.status, estimated_delivery = excluded.estimated_delivery`,
		o.ID, o.Folio, o.ClientID, o.ClientName,
		o.CreatedAt.UTC().Format(time.RFC3339), string(o.Status), nullTime(o.EstimatedDelivery))
	if err != nil {
		return s.wrap("save order", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, o.ID); err != nil {
		return s.wrap("save order items", err)
	}
	for _, li := range o.Items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, qty_ordered, qty_allocated)
			VALUES (?, ?, ?, ?)`,
			o.ID, li.ProductID, li.Ordered, li.Allocated)
		if err != nil {
			return s.wrap("save order items", err)
		}
	}
	return s.wrap("save order", tx.Commit())
}

// Reset clears every table. Demo scenario loading only; never exposed in
// a production deployment.
func (s *Store) Reset(ctx context.Context) error {
	for _, table := range []string{"allocations", "pipeline_status", "order_items", "orders", "products"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return s.wrap("reset "+table, err)
		}
	}
	return nil
}

// =============================================================================
// ORDER STORE
// =============================================================================

func (s *Store) ListActiveOrders(ctx context.Context) ([]production.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, folio, client_id, client_name, created_at, status, estimated_delivery
		FROM orders
		WHERE status IN (?, ?)
		ORDER BY created_at ASC, id ASC`,
		string(production.OrderQueued), string(production.OrderInProduction))
	if err != nil {
		return nil, s.wrap("list active orders", err)
	}
	defer rows.Close()

	var orders []production.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, s.wrap("list active orders", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap("list active orders", err)
	}

	for i := range orders {
		items, err := s.loadItems(ctx, s.db, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (s *Store) GetOrder(ctx context.Context, orderID int64) (production.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, folio, client_id, client_name, created_at, status, estimated_delivery
		FROM orders WHERE id = ?`, orderID)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return production.Order{}, production.ErrOrderNotFound
	}
	if err != nil {
		return production.Order{}, s.wrap("get order", err)
	}

	o.Items, err = s.loadItems(ctx, s.db, orderID)
	if err != nil {
		return production.Order{}, err
	}
	return o, nil
}

func (s *Store) SetEstimatedDelivery(ctx context.Context, orderID int64, date time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET estimated_delivery = ? WHERE id = ?`,
		date.UTC().Format(time.RFC3339), orderID)
	if err != nil {
		return s.wrap("set estimated delivery", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return production.ErrOrderNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (production.Order, error) {
	var o production.Order
	var createdAt, status string
	var delivery sql.NullString

	if err := row.Scan(&o.ID, &o.Folio, &o.ClientID, &o.ClientName, &createdAt, &status, &delivery); err != nil {
		return production.Order{}, err
	}
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return production.Order{}, fmt.Errorf("parse order created_at: %w", err)
	}
	o.CreatedAt = t
	o.Status = production.OrderStatus(status)
	if delivery.Valid {
		d, err := time.Parse(time.RFC3339, delivery.String)
		if err != nil {
			return production.Order{}, fmt.Errorf("parse estimated_delivery: %w", err)
		}
		o.EstimatedDelivery = &d
	}
	return o, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) loadItems(ctx context.Context, q querier, orderID int64) ([]production.OrderLine, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT product_id, qty_ordered, qty_allocated
		FROM order_items WHERE order_id = ?
		ORDER BY product_id ASC`, orderID)
	if err != nil {
		return nil, s.wrap("load order items", err)
	}
	defer rows.Close()

	var items []production.OrderLine
	for rows.Next() {
		var li production.OrderLine
		if err := rows.Scan(&li.ProductID, &li.Ordered, &li.Allocated); err != nil {
			return nil, s.wrap("load order items", err)
		}
		items = append(items, li)
	}
	return items, s.wrap("load order items", rows.Err())
}

// =============================================================================
// PRODUCT STORE
// =============================================================================

func (s *Store) ListProducts(ctx context.Context) ([]production.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, sku, molds_available, max_turns_per_day, unit_price
		FROM products ORDER BY id ASC`)
	if err != nil {
		return nil, s.wrap("list products", err)
	}
	defer rows.Close()

	var products []production.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, s.wrap("list products", err)
		}
		products = append(products, p)
	}
	return products, s.wrap("list products", rows.Err())
}

func (s *Store) GetProduct(ctx context.Context, productID int64) (production.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, sku, molds_available, max_turns_per_day, unit_price
		FROM products WHERE id = ?`, productID)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return production.Product{}, production.ErrProductNotFound
	}
	if err != nil {
		return production.Product{}, s.wrap("get product", err)
	}
	return p, nil
}

func scanProduct(row rowScanner) (production.Product, error) {
	var p production.Product
	var sku sql.NullString
	var price string
	if err := row.Scan(&p.ID, &p.Name, &sku, &p.MoldsAvailable, &p.MaxTurnsPerDay, &price); err != nil {
		return production.Product{}, err
	}
	p.SKU = sku.String
	d, err := decimal.NewFromString(price)
	if err != nil {
		d = decimal.Zero
	}
	p.UnitPrice = d
	return p, nil
}

// =============================================================================
// PIPELINE STORE
// =============================================================================

func (s *Store) ListStatuses(ctx context.Context) ([]production.PipelineStatus, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, to_detail, detailed, bisque, finished, updated_at
		FROM pipeline_status ORDER BY product_id ASC`)
	if err != nil {
		return nil, s.wrap("list pipeline status", err)
	}
	defer rows.Close()

	var statuses []production.PipelineStatus
	for rows.Next() {
		st, err := scanStatus(rows)
		if err != nil {
			return nil, s.wrap("list pipeline status", err)
		}
		statuses = append(statuses, st)
	}
	return statuses, s.wrap("list pipeline status", rows.Err())
}

func (s *Store) GetStatus(ctx context.Context, productID int64) (production.PipelineStatus, error) {
	return s.getStatus(ctx, s.db, productID)
}

func (s *Store) getStatus(ctx context.Context, q querier, productID int64) (production.PipelineStatus, error) {
	row := q.QueryRowContext(ctx, `
		SELECT product_id, to_detail, detailed, bisque, finished, updated_at
		FROM pipeline_status WHERE product_id = ?`, productID)

	st, err := scanStatus(row)
	if errors.Is(err, sql.ErrNoRows) {
		// No row yet means nothing in the pipeline, not an error.
		return production.PipelineStatus{ProductID: productID}, nil
	}
	if err != nil {
		return production.PipelineStatus{}, s.wrap("get pipeline status", err)
	}
	return st, nil
}

func (s *Store) SetStatus(ctx context.Context, status production.PipelineStatus) error {
	if _, err := s.GetProduct(ctx, status.ProductID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pipeline_status (product_id, to_detail, detailed, bisque, finished, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(product_id) DO UPDATE SET
			to_detail = excluded.to_detail, detailed = excluded.detailed,
			bisque = excluded.bisque, finished = excluded.finished,
			updated_at = excluded.updated_at`,
		status.ProductID, status.ToDetail, status.Detailed, status.Bisque, status.Finished,
		time.Now().UTC().Format(time.RFC3339))
	return s.wrap("set pipeline status", err)
}

func scanStatus(row rowScanner) (production.PipelineStatus, error) {
	var st production.PipelineStatus
	var updatedAt string
	if err := row.Scan(&st.ProductID, &st.ToDetail, &st.Detailed, &st.Bisque, &st.Finished, &updatedAt); err != nil {
		return production.PipelineStatus{}, err
	}
	if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		st.UpdatedAt = t
	}
	return st, nil
}

// =============================================================================
// ALLOCATION STORE (reads)
// =============================================================================

func (s *Store) ListByProduct(ctx context.Context, productID int64) ([]production.Allocation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, order_id, stage, quantity, allocated_at, notes
		FROM allocations WHERE product_id = ?
		ORDER BY order_id ASC, stage ASC`, productID)
	if err != nil {
		return nil, s.wrap("list allocations", err)
	}
	defer rows.Close()

	var allocs []production.Allocation
	for rows.Next() {
		a, err := scanAllocation(rows)
		if err != nil {
			return nil, s.wrap("list allocations", err)
		}
		allocs = append(allocs, a)
	}
	return allocs, s.wrap("list allocations", rows.Err())
}

func (s *Store) GetAllocation(ctx context.Context, productID, orderID int64, stage production.AllocationStage) (production.Allocation, error) {
	return s.getAllocation(ctx, s.db, productID, orderID, stage)
}

func (s *Store) getAllocation(ctx context.Context, q querier, productID, orderID int64, stage production.AllocationStage) (production.Allocation, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, product_id, order_id, stage, quantity, allocated_at, notes
		FROM allocations
		WHERE product_id = ? AND order_id = ? AND stage = ?`,
		productID, orderID, string(stage))

	a, err := scanAllocation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return production.Allocation{}, production.ErrAllocationNotFound
	}
	if err != nil {
		return production.Allocation{}, s.wrap("get allocation", err)
	}
	return a, nil
}

func scanAllocation(row rowScanner) (production.Allocation, error) {
	var a production.Allocation
	var stage, allocatedAt string
	var notes sql.NullString
	if err := row.Scan(&a.ID, &a.ProductID, &a.OrderID, &stage, &a.Quantity, &allocatedAt, &notes); err != nil {
		return production.Allocation{}, err
	}
	a.Stage = production.AllocationStage(stage)
	a.Notes = notes.String
	if t, err := time.Parse(time.RFC3339, allocatedAt); err == nil {
		a.AllocatedAt = t
	}
	return a, nil
}

// =============================================================================
// TRANSACTIONAL WRITE PATH
// =============================================================================

func (s *Store) productLock(productID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[productID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[productID] = l
	}
	return l
}

// WithProductTx serializes mutations of one product and runs fn inside a
// single SQL transaction. If fn errors, everything rolls back.
func (s *Store) WithProductTx(ctx context.Context, productID int64, fn func(production.AllocationMutator) error) error {
	if _, err := s.GetProduct(ctx, productID); err != nil {
		return err
	}

	lock := s.productLock(productID)
	lock.Lock()
	defer lock.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.wrap("begin allocation tx", err)
	}
	defer tx.Rollback()

	mutator := &sqliteMutator{store: s, ctx: ctx, tx: tx, productID: productID}
	if err := fn(mutator); err != nil {
		return err
	}
	return s.wrap("commit allocation tx", tx.Commit())
}

type sqliteMutator struct {
	store     *Store
	ctx       context.Context
	tx        *sql.Tx
	productID int64
}

func (t *sqliteMutator) FinishedStock() (int, error) {
	st, err := t.store.getStatus(t.ctx, t.tx, t.productID)
	if err != nil {
		return 0, err
	}
	return st.Finished, nil
}

func (t *sqliteMutator) OrderLine(orderID int64) (production.OrderLine, error) {
	var exists int
	err := t.tx.QueryRowContext(t.ctx, `SELECT COUNT(*) FROM orders WHERE id = ?`, orderID).Scan(&exists)
	if err != nil {
		return production.OrderLine{}, t.store.wrap("check order", err)
	}
	if exists == 0 {
		return production.OrderLine{}, production.ErrOrderNotFound
	}

	var li production.OrderLine
	err = t.tx.QueryRowContext(t.ctx, `
		SELECT product_id, qty_ordered, qty_allocated
		FROM order_items WHERE order_id = ? AND product_id = ?`,
		orderID, t.productID).Scan(&li.ProductID, &li.Ordered, &li.Allocated)
	if errors.Is(err, sql.ErrNoRows) {
		return production.OrderLine{}, production.ErrNoLineItem
	}
	if err != nil {
		return production.OrderLine{}, t.store.wrap("load order line", err)
	}
	return li, nil
}

func (t *sqliteMutator) Allocation(orderID int64, stage production.AllocationStage) (production.Allocation, error) {
	return t.store.getAllocation(t.ctx, t.tx, t.productID, orderID, stage)
}

func (t *sqliteMutator) AdjustFinished(delta int) error {
	st, err := t.store.getStatus(t.ctx, t.tx, t.productID)
	if err != nil {
		return err
	}
	if st.Finished+delta < 0 {
		return &production.InsufficientStockError{
			ProductID: t.productID,
			Available: st.Finished,
			Requested: -delta,
		}
	}
	_, err = t.tx.ExecContext(t.ctx, `
		INSERT INTO pipeline_status (product_id, to_detail, detailed, bisque, finished, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(product_id) DO UPDATE SET
			finished = excluded.finished, updated_at = excluded.updated_at`,
		t.productID, st.ToDetail, st.Detailed, st.Bisque, st.Finished+delta,
		time.Now().UTC().Format(time.RFC3339))
	return t.store.wrap("adjust finished stock", err)
}

func (t *sqliteMutator) SaveAllocation(a production.Allocation) error {
	_, err := t.tx.ExecContext(t.ctx, `
		INSERT INTO allocations (id, product_id, order_id, stage, quantity, allocated_at, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(product_id, order_id, stage) DO UPDATE SET
			quantity = excluded.quantity,
			allocated_at = excluded.allocated_at,
			notes = excluded.notes`,
		a.ID, a.ProductID, a.OrderID, string(a.Stage), a.Quantity,
		a.AllocatedAt.UTC().Format(time.RFC3339), nullString(a.Notes))
	return t.store.wrap("save allocation", err)
}

func (t *sqliteMutator) DeleteAllocation(orderID int64, stage production.AllocationStage) error {
	res, err := t.tx.ExecContext(t.ctx, `
		DELETE FROM allocations
		WHERE product_id = ? AND order_id = ? AND stage = ?`,
		t.productID, orderID, string(stage))
	if err != nil {
		return t.store.wrap("delete allocation", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return production.ErrAllocationNotFound
	}
	return nil
}

func (t *sqliteMutator) AdjustLineAllocated(orderID int64, delta int) error {
	res, err := t.tx.ExecContext(t.ctx, `
		UPDATE order_items SET qty_allocated = qty_allocated + ?
		WHERE order_id = ? AND product_id = ?`,
		delta, orderID, t.productID)
	if err != nil {
		return t.store.wrap("adjust line allocated", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return production.ErrNoLineItem
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

// wrap classifies persistence errors: timeouts and lock contention become
// retryable TransientStoreError, everything else is annotated with the
// operation.
func (s *Store) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if isTransient(err) {
		return &production.TransientStoreError{Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "SQLITE_BUSY")
}
