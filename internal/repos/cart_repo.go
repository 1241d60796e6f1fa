package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"sweetindulgence/internal/domain"
)

type CartRepo struct{ db sqlx.ExtContext }

func NewCartRepo(db sqlx.ExtContext) *CartRepo { return &CartRepo{db: db} }

func (r *CartRepo) WithTx(tx *sqlx.Tx) *CartRepo { return &CartRepo{db: tx} }

func (r *CartRepo) EnsureCart(ctx context.Context, userID string) (string, error) {
	var cartID string
	err := sqlx.GetContext(ctx, r.db, &cartID, r.db.Rebind(`SELECT cart_id FROM carts WHERE user_id = ?`), userID)
	if err == nil {
		return cartID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO carts(cart_id, user_id, date_updated) VALUES(?, ?, ?)
		ON CONFLICT(user_id) DO NOTHING
	`), uuid.NewString(), userID, now()); err != nil {
		return "", err
	}
	err = sqlx.GetContext(ctx, r.db, &cartID, r.db.Rebind(`SELECT cart_id FROM carts WHERE user_id = ?`), userID)
	return cartID, err
}

// AddItem adds qty to the line, creating it if needed.
func (r *CartRepo) AddItem(ctx context.Context, cartID, productID string, qty int) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO cart_items(cart_id, product_id, quantity, date_added)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(cart_id, product_id) DO UPDATE
		SET quantity = cart_items.quantity + excluded.quantity
	`), cartID, productID, qty, now())
	return err
}

// SetItem replaces the line quantity. It reports false when the line does not exist.
func (r *CartRepo) SetItem(ctx context.Context, cartID, productID string, qty int) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE cart_items SET quantity = ? WHERE cart_id = ? AND product_id = ?
	`), qty, cartID, productID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *CartRepo) RemoveItem(ctx context.Context, cartID, productID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		DELETE FROM cart_items WHERE cart_id = ? AND product_id = ?
	`), cartID, productID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Lines returns the cart priced at each product's current effective price.
func (r *CartRepo) Lines(ctx context.Context, cartID string) ([]domain.CartLine, error) {
	out := []domain.CartLine{}
	err := sqlx.SelectContext(ctx, r.db, &out, r.db.Rebind(`
		SELECT ci.product_id, p.store_id, p.name, ci.quantity,
		       COALESCE(p.sale_price, p.price) AS unit_price
		FROM cart_items ci
		JOIN products p ON p.product_id = ci.product_id
		WHERE ci.cart_id = ?
		ORDER BY ci.date_added, p.name
	`), cartID)
	return out, err
}

func (r *CartRepo) Clear(ctx context.Context, cartID string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM cart_items WHERE cart_id = ?`), cartID)
	return err
}

// RemoveProducts drops the given products from userID's cart, if any.
func (r *CartRepo) RemoveProducts(ctx context.Context, userID string, productIDs []string) error {
	if len(productIDs) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`
		DELETE FROM cart_items
		WHERE cart_id IN (SELECT cart_id FROM carts WHERE user_id = ?)
		  AND product_id IN (?)
	`, userID, productIDs)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	return err
}
