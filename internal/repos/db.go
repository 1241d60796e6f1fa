package repos

import (
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// OpenDB connects with driver "sqlite" (modernc) or "pgx" (Postgres), applies
// the schema and seeds the category list.
func OpenDB(driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// one connection: writers serialise and :memory: stays a single database
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
			return nil, err
		}
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	if err := seedCategories(db); err != nil {
		return nil, err
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users(
  user_id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  phone TEXT NOT NULL DEFAULT '',
  address TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL CHECK (role IN ('customer','supplier','admin')),
  loyalty_points INTEGER NOT NULL DEFAULT 0 CHECK (loyalty_points >= 0),
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  date_joined TEXT NOT NULL,
  last_login TEXT,
  reset_token TEXT,
  reset_token_expires TEXT
)`,
	`CREATE INDEX IF NOT EXISTS idx_users_reset_token ON users(reset_token)`,

	`CREATE TABLE IF NOT EXISTS stores(
  store_id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL REFERENCES users(user_id),
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  address TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL DEFAULT '',
  opening_hours TEXT NOT NULL DEFAULT '{}',
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  date_created TEXT NOT NULL,
  date_updated TEXT NOT NULL
)`,
	// one store per owner
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_stores_owner ON stores(owner_id)`,

	`CREATE TABLE IF NOT EXISTS categories(
  category_id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL DEFAULT '',
  image_url TEXT NOT NULL DEFAULT ''
)`,

	`CREATE TABLE IF NOT EXISTS products(
  product_id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL REFERENCES stores(store_id),
  category_id TEXT NOT NULL REFERENCES categories(category_id),
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price NUMERIC(10,2) NOT NULL CHECK (price > 0),
  sale_price NUMERIC(10,2),
  stock_quantity INTEGER NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
  is_featured BOOLEAN NOT NULL DEFAULT FALSE,
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  loyalty_points_earned INTEGER NOT NULL DEFAULT 0 CHECK (loyalty_points_earned >= 0),
  date_created TEXT NOT NULL,
  date_updated TEXT NOT NULL,
  CHECK (sale_price IS NULL OR (sale_price >= 0 AND sale_price < price))
)`,
	`CREATE INDEX IF NOT EXISTS idx_products_store ON products(store_id)`,
	`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id)`,
	`CREATE INDEX IF NOT EXISTS idx_products_created ON products(date_created)`,

	`CREATE TABLE IF NOT EXISTS product_images(
  image_id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL REFERENCES products(product_id) ON DELETE CASCADE,
  image_url TEXT NOT NULL,
  is_primary BOOLEAN NOT NULL DEFAULT FALSE,
  display_order INTEGER NOT NULL DEFAULT 0
)`,
	`CREATE INDEX IF NOT EXISTS idx_product_images_product ON product_images(product_id)`,
	// at most one primary image per product
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_product_images_primary ON product_images(product_id) WHERE is_primary = TRUE`,

	`CREATE TABLE IF NOT EXISTS orders(
  order_id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(user_id),
  store_id TEXT NOT NULL REFERENCES stores(store_id),
  total_amount NUMERIC(12,2) NOT NULL CHECK (total_amount >= 0),
  status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','processing','delivered','cancelled')),
  payment_status TEXT NOT NULL DEFAULT 'pending' CHECK (payment_status IN ('pending','paid','refunded')),
  payment_method TEXT NOT NULL DEFAULT 'cash_on_delivery',
  customer_name TEXT NOT NULL DEFAULT '',
  shipping_address TEXT NOT NULL,
  shipping_city TEXT NOT NULL,
  shipping_phone TEXT NOT NULL,
  order_notes TEXT NOT NULL DEFAULT '',
  date_created TEXT NOT NULL,
  date_updated TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_store ON orders(store_id)`,

	`CREATE TABLE IF NOT EXISTS order_items(
  order_item_id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL REFERENCES orders(order_id) ON DELETE CASCADE,
  line_no INTEGER NOT NULL DEFAULT 0,
  product_id TEXT NOT NULL REFERENCES products(product_id),
  quantity INTEGER NOT NULL CHECK (quantity > 0),
  unit_price NUMERIC(10,2) NOT NULL CHECK (unit_price >= 0),
  total_price NUMERIC(12,2) NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)`,

	`CREATE TABLE IF NOT EXISTS wishlists(
  wishlist_id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE REFERENCES users(user_id),
  date_created TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS wishlist_items(
  item_id TEXT PRIMARY KEY,
  wishlist_id TEXT NOT NULL REFERENCES wishlists(wishlist_id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(product_id),
  date_added TEXT NOT NULL,
  UNIQUE (wishlist_id, product_id)
)`,

	`CREATE TABLE IF NOT EXISTS carts(
  cart_id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE REFERENCES users(user_id),
  date_updated TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS cart_items(
  cart_id TEXT NOT NULL REFERENCES carts(cart_id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(product_id),
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  date_added TEXT NOT NULL,
  PRIMARY KEY (cart_id, product_id)
)`,
}

func ensureSchema(db *sqlx.DB) error {
	for i, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}

var defaultCategories = []struct{ ID, Name, Description string }{
	{"cakes", "Cakes", "Celebration and everyday cakes"},
	{"breads", "Breads", "Loaves, rolls and flatbreads"},
	{"pastries", "Pastries", "Croissants, danishes and tarts"},
	{"cookies", "Cookies", "Cookies and biscuits"},
	{"cupcakes", "Cupcakes", "Single-serve cupcakes and muffins"},
}

// seedCategories is idempotent; it runs on every start.
func seedCategories(db *sqlx.DB) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, c := range defaultCategories {
		if _, err := tx.Exec(tx.Rebind(`
			INSERT INTO categories(category_id, name, description)
			VALUES(?, ?, ?)
			ON CONFLICT(category_id) DO NOTHING
		`), c.ID, c.Name, c.Description); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Printf("[seed] %d categories ensured", len(defaultCategories))
	return nil
}
