package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"sweetindulgence/internal/domain"
)

type WishlistRepo struct{ db sqlx.ExtContext }

func NewWishlistRepo(db sqlx.ExtContext) *WishlistRepo { return &WishlistRepo{db: db} }

func (r *WishlistRepo) WithTx(tx *sqlx.Tx) *WishlistRepo { return &WishlistRepo{db: tx} }

// Find returns the user's wishlist id, or sql.ErrNoRows when none exists yet.
func (r *WishlistRepo) Find(ctx context.Context, userID string) (string, error) {
	var id string
	err := sqlx.GetContext(ctx, r.db, &id, r.db.Rebind(`SELECT wishlist_id FROM wishlists WHERE user_id = ?`), userID)
	return id, err
}

// Ensure returns the user's wishlist, creating it on first use.
func (r *WishlistRepo) Ensure(ctx context.Context, userID string) (string, error) {
	id, err := r.Find(ctx, userID)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO wishlists(wishlist_id, user_id, date_created) VALUES(?, ?, ?)
		ON CONFLICT(user_id) DO NOTHING
	`), uuid.NewString(), userID, now()); err != nil {
		return "", err
	}
	return r.Find(ctx, userID)
}

// Add inserts the pair once. added is false when the product was already listed.
func (r *WishlistRepo) Add(ctx context.Context, wishlistID, productID string) (itemID string, added bool, err error) {
	itemID = uuid.NewString()
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO wishlist_items(item_id, wishlist_id, product_id, date_added)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(wishlist_id, product_id) DO NOTHING
	`), itemID, wishlistID, productID, now())
	if err != nil {
		return "", false, err
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return itemID, true, nil
	}
	err = sqlx.GetContext(ctx, r.db, &itemID, r.db.Rebind(`
		SELECT item_id FROM wishlist_items WHERE wishlist_id = ? AND product_id = ?
	`), wishlistID, productID)
	return itemID, false, err
}

// RemoveOwned deletes an item only if it sits in userID's wishlist.
func (r *WishlistRepo) RemoveOwned(ctx context.Context, userID, itemID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		DELETE FROM wishlist_items
		WHERE item_id = ?
		  AND wishlist_id IN (SELECT wishlist_id FROM wishlists WHERE user_id = ?)
	`), itemID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Clear empties userID's wishlist and reports how many items went.
func (r *WishlistRepo) Clear(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		DELETE FROM wishlist_items
		WHERE wishlist_id IN (SELECT wishlist_id FROM wishlists WHERE user_id = ?)
	`), userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *WishlistRepo) Count(ctx context.Context, userID string) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, r.db.Rebind(`
		SELECT COUNT(*)
		FROM wishlist_items wi
		JOIN wishlists w ON w.wishlist_id = wi.wishlist_id
		WHERE w.user_id = ?
	`), userID)
	return n, err
}

func (r *WishlistRepo) List(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	out := []domain.WishlistItem{}
	err := sqlx.SelectContext(ctx, r.db, &out, r.db.Rebind(`
		SELECT wi.item_id, p.product_id, p.name, p.price, p.sale_price, p.stock_quantity, p.is_active,
		       COALESCE((SELECT pi.image_url FROM product_images pi
		                 WHERE pi.product_id = p.product_id AND pi.is_primary = TRUE), '') AS primary_image,
		       wi.date_added
		FROM wishlist_items wi
		JOIN wishlists w ON w.wishlist_id = wi.wishlist_id
		JOIN products p ON p.product_id = wi.product_id
		WHERE w.user_id = ?
		ORDER BY wi.date_added DESC
	`), userID)
	return out, err
}
