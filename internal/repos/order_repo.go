package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"sweetindulgence/internal/domain"
)

type OrderRepo struct{ db sqlx.ExtContext }

func NewOrderRepo(db sqlx.ExtContext) *OrderRepo { return &OrderRepo{db: db} }

func (r *OrderRepo) WithTx(tx *sqlx.Tx) *OrderRepo { return &OrderRepo{db: tx} }

const orderColumns = `o.order_id, o.user_id, o.store_id, o.total_amount, o.status, o.payment_status,
	o.payment_method, o.customer_name, o.shipping_address, o.shipping_city, o.shipping_phone,
	o.order_notes, o.date_created, o.date_updated`

const summarySelect = `SELECT ` + orderColumns + `, s.name AS store_name,
	u.first_name || ' ' || u.last_name AS buyer_name,
	(SELECT COUNT(*) FROM order_items oi WHERE oi.order_id = o.order_id) AS item_count
	FROM orders o
	JOIN stores s ON s.store_id = o.store_id
	JOIN users u ON u.user_id = o.user_id`

// Create inserts a new order header.
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	ts := now()
	o.DateCreated, o.DateUpdated = ts, ts
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO orders(order_id, user_id, store_id, total_amount, status, payment_status, payment_method,
		                   customer_name, shipping_address, shipping_city, shipping_phone, order_notes,
		                   date_created, date_updated)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), o.ID, o.UserID, o.StoreID, o.TotalAmount, o.Status, o.PaymentStatus, o.PaymentMethod,
		o.CustomerName, o.ShippingAddress, o.ShippingCity, o.ShippingPhone, o.OrderNotes,
		o.DateCreated, o.DateUpdated)
	return err
}

// InsertItem inserts a single line item.
func (r *OrderRepo) InsertItem(ctx context.Context, it *domain.OrderItem) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO order_items(order_item_id, order_id, line_no, product_id, quantity, unit_price, total_price)
		VALUES(?, ?, ?, ?, ?, ?, ?)
	`), it.ID, it.OrderID, it.Line, it.ProductID, it.Quantity, it.UnitPrice, it.TotalPrice)
	return err
}

// Detail loads the order header with store and buyer names, and its items.
func (r *OrderRepo) Detail(ctx context.Context, orderID string) (*domain.OrderDetail, error) {
	var d domain.OrderDetail
	err := sqlx.GetContext(ctx, r.db, &d, r.db.Rebind(`
		SELECT `+orderColumns+`, s.name AS store_name, s.owner_id AS store_owner,
		       u.first_name || ' ' || u.last_name AS buyer_name, u.email AS buyer_email
		FROM orders o
		JOIN stores s ON s.store_id = o.store_id
		JOIN users u ON u.user_id = o.user_id
		WHERE o.order_id = ?
	`), orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("Order not found")
	}
	if err != nil {
		return nil, err
	}
	if d.Items, err = r.Items(ctx, orderID); err != nil {
		return nil, err
	}
	return &d, nil
}

// Items returns the lines in checkout order, so Line matches the position
// reported by a stock conflict.
func (r *OrderRepo) Items(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	out := []domain.OrderItem{}
	err := sqlx.SelectContext(ctx, r.db, &out, r.db.Rebind(`
		SELECT oi.order_item_id, oi.order_id, oi.line_no, oi.product_id, p.name AS product_name,
		       oi.quantity, oi.unit_price, oi.total_price
		FROM order_items oi
		JOIN products p ON p.product_id = oi.product_id
		WHERE oi.order_id = ?
		ORDER BY oi.line_no, oi.order_item_id
	`), orderID)
	return out, err
}

func (r *OrderRepo) page(ctx context.Context, where string, args []any, limit, offset int) ([]domain.OrderSummary, int, error) {
	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, r.db.Rebind(`SELECT COUNT(*) FROM orders o WHERE `+where), args...); err != nil {
		return nil, 0, err
	}
	out := []domain.OrderSummary{}
	err := sqlx.SelectContext(ctx, r.db, &out, r.db.Rebind(summarySelect+` WHERE `+where+`
		ORDER BY o.date_created DESC
		LIMIT ? OFFSET ?`), append(args, limit, offset)...)
	return out, total, err
}

// ListByUser returns the buyer's orders, newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.OrderSummary, int, error) {
	return r.page(ctx, `o.user_id = ?`, []any{userID}, limit, offset)
}

// ListByStore returns a store's orders, optionally narrowed to one status.
func (r *OrderRepo) ListByStore(ctx context.Context, storeID string, status domain.OrderStatus, limit, offset int) ([]domain.OrderSummary, int, error) {
	if status != "" {
		return r.page(ctx, `o.store_id = ? AND o.status = ?`, []any{storeID, status}, limit, offset)
	}
	return r.page(ctx, `o.store_id = ?`, []any{storeID}, limit, offset)
}

func (r *OrderRepo) ListLatest(ctx context.Context, limit int) ([]domain.OrderSummary, error) {
	if limit <= 0 {
		limit = 100
	}
	out := []domain.OrderSummary{}
	err := sqlx.SelectContext(ctx, r.db, &out, r.db.Rebind(summarySelect+`
		ORDER BY o.date_created DESC
		LIMIT ?`), limit)
	return out, err
}

// UpdateStatus moves an order from one status to another. The WHERE clause
// pins the current status so a concurrent transition cannot also apply.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus, paymentStatus string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE orders SET status = ?, payment_status = ?, date_updated = ?
		WHERE order_id = ? AND status = ?
	`), to, paymentStatus, now(), id, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.Conflict("Order status changed concurrently, reload and retry")
	}
	return nil
}

// Stats counts a store's orders per status. Revenue covers delivered and processing orders.
func (r *OrderRepo) Stats(ctx context.Context, storeID string) (domain.OrderStats, error) {
	var rows []struct {
		Status domain.OrderStatus `db:"status"`
		N      int                `db:"n"`
		Amount decimal.Decimal    `db:"amount"`
	}
	var st domain.OrderStats
	if err := sqlx.SelectContext(ctx, r.db, &rows, r.db.Rebind(`
		SELECT status, COUNT(*) AS n, COALESCE(SUM(total_amount), 0) AS amount
		FROM orders
		WHERE store_id = ?
		GROUP BY status
	`), storeID); err != nil {
		return st, err
	}
	for _, row := range rows {
		st.TotalOrders += row.N
		switch row.Status {
		case domain.StatusPending:
			st.Pending = row.N
		case domain.StatusProcessing:
			st.Processing = row.N
			st.TotalRevenue = st.TotalRevenue.Add(row.Amount)
		case domain.StatusDelivered:
			st.Delivered = row.N
			st.TotalRevenue = st.TotalRevenue.Add(row.Amount)
		case domain.StatusCancelled:
			st.Cancelled = row.N
		}
	}
	st.TotalRevenue = st.TotalRevenue.Round(2)
	return st, nil
}
