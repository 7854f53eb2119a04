package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mini-mart/internal/domain"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrStatusConflict = errors.New("order status changed concurrently")
)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	ListByBuyer(ctx context.Context, buyerID int64, limit int) ([]*domain.Order, error)
	List(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, int, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.OrderStatus) error
	Stats(ctx context.Context) (revenue int64, last7 []domain.DailySales, err error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create writes the order row and all of its items in one transaction, then sets
// the storage-assigned id and creation time on order and items.
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var lat, lon sql.NullFloat64
	if g := order.Contact.Geo; g != nil {
		lat = sql.NullFloat64{Float64: g.Lat, Valid: true}
		lon = sql.NullFloat64{Float64: g.Lon, Valid: true}
	}

	status := order.Status
	if status == "" {
		status = domain.StatusPlaced
	}

	orderQuery := `
		INSERT INTO orders (tg_user_id, name, phone, address, slot, note, total, payment_method, status, geo_lat, geo_lon)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`

	var id int64
	var createdAt time.Time
	err = tx.QueryRowContext(ctx, orderQuery,
		nullableInt64(order.BuyerID),
		order.Contact.Name,
		order.Contact.Phone,
		order.Contact.Address,
		order.Contact.Slot,
		order.Contact.Note,
		order.Total,
		string(order.PaymentMethod),
		string(status),
		lat,
		lon,
	).Scan(&id, &createdAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	if err := addItems(ctx, tx, id, order.Items); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	order.ID = id
	order.Status = status
	order.CreatedAt = createdAt
	for i := range order.Items {
		order.Items[i].OrderID = id
	}
	return nil
}

func addItems(ctx context.Context, tx *sql.Tx, orderID int64, items []domain.OrderItem) error {
	itemQuery := `
		INSERT INTO order_items (order_id, product_id, title, price, qty)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	for i := range items {
		it := &items[i]
		if err := tx.QueryRowContext(ctx, itemQuery, orderID, it.ProductID, it.Title, it.Price, it.Qty).Scan(&it.ID); err != nil {
			return fmt.Errorf("failed to add order item %s: %w", it.ProductID, err)
		}
	}
	return nil
}

const orderColumns = `id, tg_user_id, name, phone, address, slot, note, total, payment_method, status, created_at, geo_lat, geo_lon`

func scanOrder(row rowScanner) (*domain.Order, error) {
	o := &domain.Order{}
	var (
		buyer    sql.NullInt64
		method   string
		status   string
		lat, lon sql.NullFloat64
	)
	err := row.Scan(
		&o.ID,
		&buyer,
		&o.Contact.Name,
		&o.Contact.Phone,
		&o.Contact.Address,
		&o.Contact.Slot,
		&o.Contact.Note,
		&o.Total,
		&method,
		&status,
		&o.CreatedAt,
		&lat,
		&lon,
	)
	if err != nil {
		return nil, err
	}
	if buyer.Valid {
		id := buyer.Int64
		o.BuyerID = &id
	}
	if lat.Valid && lon.Valid {
		o.Contact.Geo = &domain.Geo{Lat: lat.Float64, Lon: lon.Float64}
	}
	o.PaymentMethod = domain.PaymentMethod(method)
	o.Status = domain.OrderStatus(status)
	return o, nil
}

// FindByID retrieves an order together with its items
func (r *orderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	items, err := r.findItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *orderRepository) findItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, title, price, qty
		FROM order_items
		WHERE order_id = $1
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to find order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Title, &it.Price, &it.Qty); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}
	return items, nil
}

// ListByBuyer returns a buyer's most recent orders, newest first, without items
func (r *orderRepository) ListByBuyer(ctx context.Context, buyerID int64, limit int) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE tg_user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, buyerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders by buyer: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

// List returns one page of orders matching the filter and the total number of matches
func (r *orderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, int, error) {
	where := ""
	var args []any
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = fmt.Sprintf(" WHERE status = $%d", len(args))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		clause := fmt.Sprintf("(name ILIKE $%[1]d OR phone ILIKE $%[1]d OR address ILIKE $%[1]d)", len(args))
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	offset := (filter.Page - 1) * filter.PageSize
	query := fmt.Sprintf(`SELECT %s FROM orders%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)+1, len(args)+2)
	args = append(args, filter.PageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func collectOrders(rows *sql.Rows) ([]*domain.Order, error) {
	orders := make([]*domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus moves an order from one status to another. It fails with
// ErrStatusConflict when the stored status is no longer from.
func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.OrderStatus) error {
	query := `UPDATE orders SET status = $3 WHERE id = $1 AND status = $2`

	result, err := r.db.ExecContext(ctx, query, id, string(from), string(to))
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check order: %w", err)
		}
		if !exists {
			return ErrOrderNotFound
		}
		return ErrStatusConflict
	}
	return nil
}

// Stats returns revenue over placed and paid orders plus per-day totals for the last seven days
func (r *orderRepository) Stats(ctx context.Context) (int64, []domain.DailySales, error) {
	var revenue int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total), 0) FROM orders WHERE status IN ('placed', 'paid')`,
	).Scan(&revenue)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to sum revenue: %w", err)
	}

	query := `
		SELECT to_char(date_trunc('day', created_at), 'YYYY-MM-DD') AS day,
		       COUNT(*), COALESCE(SUM(total), 0)
		FROM orders
		WHERE created_at > NOW() - INTERVAL '7 days'
		GROUP BY 1
		ORDER BY 1
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to summarize last week: %w", err)
	}
	defer rows.Close()

	days := make([]domain.DailySales, 0, 7)
	for rows.Next() {
		var d domain.DailySales
		if err := rows.Scan(&d.Day, &d.Orders, &d.Revenue); err != nil {
			return 0, nil, fmt.Errorf("failed to scan daily sales: %w", err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("error iterating daily sales: %w", err)
	}
	return revenue, days, nil
}

func nullableInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
