package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"sweetindulgence/internal/cache"
	"sweetindulgence/internal/repos"
	"sweetindulgence/internal/services"
	"sweetindulgence/internal/storage"
)

type env struct {
	db       *sqlx.DB
	auth     *services.AuthService
	accounts *services.AccountService
	stores   *services.StoreService
	catalog  *services.CatalogService
	orders   *services.OrderService
	carts    *services.CartService
	wishlist *services.WishlistService
	inv      *services.InventoryService
}

// newEnv opens a seeded in-memory database and wires every service the way
// the server does, without Redis.
func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := repos.OpenDB("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repos.SeedDemo(context.Background(), db))

	users := repos.NewUserRepo(db)
	stores := repos.NewStoreRepo(db)
	prods := repos.NewProductRepo(db)
	inv := repos.NewInventoryRepo(db)
	carts := repos.NewCartRepo(db)
	pc := cache.NewProductCache(nil)
	tokens := services.NewTokenService("test-secret", time.Hour)
	catalog := services.NewCatalogService(db, repos.NewCategoryRepo(db), prods, repos.NewImageRepo(db), stores,
		storage.NewMedia(t.TempDir()), pc)

	return &env{
		db:       db,
		auth:     services.NewAuthService(db, users, stores, tokens, time.Hour),
		accounts: services.NewAccountService(users),
		stores:   services.NewStoreService(stores),
		catalog:  catalog,
		orders:   services.NewOrderService(db, prods, inv, repos.NewOrderRepo(db), carts, users, stores, pc),
		carts:    services.NewCartService(carts, prods),
		wishlist: services.NewWishlistService(repos.NewWishlistRepo(db), prods),
		inv:      services.NewInventoryService(inv),
	}
}

func (e *env) stock(t *testing.T, productID string) int {
	t.Helper()
	var n int
	require.NoError(t, e.db.Get(&n, `SELECT stock_quantity FROM products WHERE product_id = ?`, productID))
	return n
}

func (e *env) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, e.db.Get(&n, `SELECT COUNT(*) FROM `+table))
	return n
}

func money(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func checkout(total string, lines ...services.OrderLine) services.Checkout {
	return services.Checkout{
		Items:           lines,
		TotalAmount:     money(total),
		ShippingAddress: "1 Main St",
		ShippingCity:    "Springfield",
		ShippingPhone:   "555-0199",
	}
}
