package handlers

import (
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"sweetindulgence/internal/cache"
	"sweetindulgence/internal/config"
	"sweetindulgence/internal/repos"
	"sweetindulgence/internal/services"
	"sweetindulgence/internal/storage"
)

type Deps struct {
	Auth  *services.AuthService
	Media *storage.Media

	AuthHandler      *AuthHandler
	UserHandler      *UserHandler
	StoreHandler     *StoreHandler
	CategoryHandler  *CategoryHandler
	ProductHandler   *ProductHandler
	SearchHandler    *SearchHandler
	InventoryHandler *InventoryHandler
	OrderHandler     *OrderHandler
	WishlistHandler  *WishlistHandler
	CartHandler      *CartHandler
	AdminHandler     *AdminHandler
}

// NewDeps wires repositories, services and handlers. rdb may be nil, in which
// case product reads go straight to the database.
func NewDeps(db *sqlx.DB, cfg config.Config, rdb *redis.Client) *Deps {
	userRepo := repos.NewUserRepo(db)
	storeRepo := repos.NewStoreRepo(db)
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	imgRepo := repos.NewImageRepo(db)
	invRepo := repos.NewInventoryRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	cartRepo := repos.NewCartRepo(db)
	wishRepo := repos.NewWishlistRepo(db)

	media := storage.NewMedia(cfg.UploadDir)
	productCache := cache.NewProductCache(rdb)

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	authSvc := services.NewAuthService(db, userRepo, storeRepo, tokens, cfg.ResetTokenTTL)
	accountSvc := services.NewAccountService(userRepo)
	storeSvc := services.NewStoreService(storeRepo)
	catalogSvc := services.NewCatalogService(db, catRepo, prodRepo, imgRepo, storeRepo, media, productCache)
	invSvc := services.NewInventoryService(invRepo)
	orderSvc := services.NewOrderService(db, prodRepo, invRepo, orderRepo, cartRepo, userRepo, storeRepo, productCache)
	cartSvc := services.NewCartService(cartRepo, prodRepo)
	wishSvc := services.NewWishlistService(wishRepo, prodRepo)

	return &Deps{
		Auth:  authSvc,
		Media: media,

		AuthHandler:      &AuthHandler{Auth: authSvc},
		UserHandler:      &UserHandler{Accounts: accountSvc},
		StoreHandler:     &StoreHandler{Stores: storeSvc},
		CategoryHandler:  &CategoryHandler{Catalog: catalogSvc},
		ProductHandler:   &ProductHandler{Catalog: catalogSvc},
		SearchHandler:    &SearchHandler{Catalog: catalogSvc},
		InventoryHandler: &InventoryHandler{Inv: invSvc},
		OrderHandler:     &OrderHandler{Orders: orderSvc},
		WishlistHandler:  &WishlistHandler{Wish: wishSvc},
		CartHandler:      &CartHandler{Cart: cartSvc},
		AdminHandler:     &AdminHandler{Accounts: accountSvc, Orders: orderSvc},
	}
}
