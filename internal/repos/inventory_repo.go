package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ErrInsufficientStock is returned by Decrement when the guard rejects the update.
var ErrInsufficientStock = errors.New("insufficient stock")

// InventoryRepo owns products.stock_quantity.
type InventoryRepo struct{ db sqlx.ExtContext }

func NewInventoryRepo(db sqlx.ExtContext) *InventoryRepo { return &InventoryRepo{db: db} }

func (r *InventoryRepo) WithTx(tx *sqlx.Tx) *InventoryRepo { return &InventoryRepo{db: tx} }

// Qty returns current stock. A missing product yields sql.ErrNoRows.
func (r *InventoryRepo) Qty(ctx context.Context, productID string) (int, error) {
	var qty int
	err := sqlx.GetContext(ctx, r.db, &qty, r.db.Rebind(`
		SELECT stock_quantity FROM products WHERE product_id = ?
	`), productID)
	if err != nil {
		return 0, err
	}
	return qty, nil
}

// Decrement atomically subtracts "by" units if enough stock exists.
// The guard lives in the WHERE clause; zero affected rows means the stock was short.
func (r *InventoryRepo) Decrement(ctx context.Context, productID string, by int) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE products
		SET stock_quantity = stock_quantity - ?, date_updated = ?
		WHERE product_id = ? AND stock_quantity >= ?
	`), by, now(), productID, by)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w for %s", ErrInsufficientStock, productID)
	}
	return nil
}

// Restock returns units to stock, e.g. when an order is cancelled.
func (r *InventoryRepo) Restock(ctx context.Context, productID string, by int) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE products SET stock_quantity = stock_quantity + ?, date_updated = ? WHERE product_id = ?
	`), by, now(), productID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
