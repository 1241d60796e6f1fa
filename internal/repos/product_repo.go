package repos

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"sweetindulgence/internal/domain"
)

type ProductRepo struct{ db sqlx.ExtContext }

func NewProductRepo(db sqlx.ExtContext) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) WithTx(tx *sqlx.Tx) *ProductRepo { return &ProductRepo{db: tx} }

const productColumns = `p.product_id, p.store_id, p.category_id, p.name, p.description, p.price, p.sale_price,
	p.stock_quantity, p.is_featured, p.is_active, p.loyalty_points_earned, p.date_created, p.date_updated`

const listingFrom = `
	FROM products p
	JOIN categories c ON c.category_id = p.category_id
	JOIN stores s ON s.store_id = p.store_id`

const listingColumns = productColumns + `, c.name AS category_name, s.name AS store_name,
	COALESCE((SELECT pi.image_url FROM product_images pi
	          WHERE pi.product_id = p.product_id AND pi.is_primary = TRUE), '') AS primary_image`

// Sort keys accepted by List. Unknown keys fall back to date_desc.
var productSorts = map[string]string{
	"price_asc":  "p.price ASC, p.product_id",
	"price_desc": "p.price DESC, p.product_id",
	"name_asc":   "p.name ASC, p.product_id",
	"name_desc":  "p.name DESC, p.product_id",
	"date_desc":  "p.date_created DESC, p.product_id",
}

type ProductFilter struct {
	CategoryID   string
	StoreID      string
	Search       string
	FeaturedOnly bool
	Sort         string
	Limit        int
	Offset       int
}

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	ts := now()
	p.DateCreated, p.DateUpdated = ts, ts
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO products(product_id, store_id, category_id, name, description, price, sale_price,
		                     stock_quantity, is_featured, is_active, loyalty_points_earned, date_created, date_updated)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), p.ID, p.StoreID, p.CategoryID, p.Name, p.Description, p.Price, p.SalePrice,
		p.StockQuantity, p.IsFeatured, p.IsActive, p.LoyaltyPointsEarned, p.DateCreated, p.DateUpdated)
	return err
}

// Get returns the bare product row, active or not.
func (r *ProductRepo) Get(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := sqlx.GetContext(ctx, r.db, &p, r.db.Rebind(`SELECT `+productColumns+` FROM products p WHERE p.product_id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("Product not found")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetForUpdate is Get with the row locked until the surrounding transaction
// ends. SQLite has no row locks; its single connection already serialises.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products p WHERE p.product_id = ?`
	if r.db.DriverName() == "pgx" {
		q += ` FOR UPDATE`
	}
	var p domain.Product
	err := sqlx.GetContext(ctx, r.db, &p, r.db.Rebind(q), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("Product not found")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ByIDs loads every listed product that exists, keyed by id.
func (r *ProductRepo) ByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	out := map[string]domain.Product{}
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`SELECT `+productColumns+` FROM products p WHERE p.product_id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var rows []domain.Product
	if err := sqlx.SelectContext(ctx, r.db, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

// Listing returns one product joined with category, store and primary image.
func (r *ProductRepo) Listing(ctx context.Context, id string) (*domain.ProductListing, error) {
	var p domain.ProductListing
	err := sqlx.GetContext(ctx, r.db, &p, r.db.Rebind(`SELECT `+listingColumns+listingFrom+` WHERE p.product_id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("Product not found")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns one page of active products matching f, plus the total match count.
func (r *ProductRepo) List(ctx context.Context, f ProductFilter) ([]domain.ProductListing, int, error) {
	where := ` WHERE p.is_active = TRUE`
	args := []any{}
	if f.CategoryID != "" {
		where += ` AND p.category_id = ?`
		args = append(args, f.CategoryID)
	}
	if f.StoreID != "" {
		where += ` AND p.store_id = ?`
		args = append(args, f.StoreID)
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		where += ` AND (LOWER(p.name) LIKE ? OR LOWER(p.description) LIKE ?)`
		args = append(args, "%"+q+"%", "%"+q+"%")
	}
	if f.FeaturedOnly {
		where += ` AND p.is_featured = TRUE`
	}

	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, r.db.Rebind(`SELECT COUNT(*)`+listingFrom+where), args...); err != nil {
		return nil, 0, err
	}

	order, ok := productSorts[f.Sort]
	if !ok {
		order = productSorts["date_desc"]
	}
	out := []domain.ProductListing{}
	query := `SELECT ` + listingColumns + listingFrom + where + ` ORDER BY ` + order + ` LIMIT ? OFFSET ?`
	err := sqlx.SelectContext(ctx, r.db, &out, r.db.Rebind(query), append(args, f.Limit, f.Offset)...)
	return out, total, err
}

// Featured lists the active featured products of one store.
func (r *ProductRepo) Featured(ctx context.Context, storeID string) ([]domain.ProductListing, error) {
	out := []domain.ProductListing{}
	err := sqlx.SelectContext(ctx, r.db, &out, r.db.Rebind(`SELECT `+listingColumns+listingFrom+`
		WHERE p.store_id = ? AND p.is_featured = TRUE AND p.is_active = TRUE
		ORDER BY p.date_created DESC`), storeID)
	return out, err
}

// Update writes the descriptive columns. Stock is left alone: checkouts move
// it concurrently, so it only changes through SetStock or the inventory repo.
func (r *ProductRepo) Update(ctx context.Context, p *domain.Product) error {
	p.DateUpdated = now()
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE products
		SET category_id = ?, name = ?, description = ?, price = ?, sale_price = ?,
		    is_featured = ?, is_active = ?, loyalty_points_earned = ?, date_updated = ?
		WHERE product_id = ?
	`), p.CategoryID, p.Name, p.Description, p.Price, p.SalePrice,
		p.IsFeatured, p.IsActive, p.LoyaltyPointsEarned, p.DateUpdated, p.ID)
	return err
}

// SetStock overwrites the stock level, for an explicit restock by the owner.
func (r *ProductRepo) SetStock(ctx context.Context, id string, qty int) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE products SET stock_quantity = ?, date_updated = ? WHERE product_id = ?
	`), qty, now(), id)
	return err
}

// Deactivate is the soft delete: the row stays for order history.
func (r *ProductRepo) Deactivate(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE products SET is_active = FALSE, date_updated = ? WHERE product_id = ?
	`), now(), id)
	return err
}

func (r *ProductRepo) Stats(ctx context.Context, storeID string) (domain.ProductStats, error) {
	var st domain.ProductStats
	err := sqlx.GetContext(ctx, r.db, &st, r.db.Rebind(`
		SELECT
		  COUNT(*) AS total,
		  COALESCE(SUM(CASE WHEN is_active = TRUE THEN 1 ELSE 0 END), 0) AS active,
		  COALESCE(SUM(CASE WHEN is_active = TRUE AND is_featured = TRUE THEN 1 ELSE 0 END), 0) AS featured,
		  COALESCE(SUM(CASE WHEN is_active = TRUE AND stock_quantity = 0 THEN 1 ELSE 0 END), 0) AS out_of_stock,
		  COALESCE(SUM(CASE WHEN is_active = TRUE AND stock_quantity BETWEEN 1 AND 5 THEN 1 ELSE 0 END), 0) AS low_stock,
		  COALESCE(SUM(CASE WHEN is_active = TRUE THEN COALESCE(sale_price, price) * stock_quantity ELSE 0 END), 0) AS total_value,
		  COALESCE(AVG(CASE WHEN is_active = TRUE THEN COALESCE(sale_price, price) END), 0) AS avg_price
		FROM products
		WHERE store_id = ?
	`), storeID)
	if err != nil {
		return st, err
	}
	st.TotalValue = st.TotalValue.Round(2)
	st.AvgPrice = st.AvgPrice.Round(2)
	return st, nil
}
