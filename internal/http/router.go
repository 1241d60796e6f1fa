// Package http assembles the Fiber application: middleware, routes and the
// JSON error surface.
package http

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"sweetindulgence/internal/domain"
	"sweetindulgence/internal/http/handlers"
	applog "sweetindulgence/internal/log"
)

const bodyLimit = 6 << 20

// Options tunes the middleware stack. Zero values take the production defaults.
type Options struct {
	CORSOrigins string
	// Storage backs the rate limiters; nil keeps counters in process memory.
	Storage   fiber.Storage
	RateMax   int
	LoginMax  int
	AccessLog bool
}

func (o *Options) defaults() {
	if o.CORSOrigins == "" {
		o.CORSOrigins = "*"
	}
	if o.RateMax == 0 {
		o.RateMax = 120
	}
	if o.LoginMax == 0 {
		o.LoginMax = 10
	}
}

// errorHandler renders unhandled and framework errors in the API envelope.
// Only fiber errors below 500 expose their message.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		code = fe.Code
		msg = fe.Message
		if code == fiber.StatusNotFound {
			msg = "Resource not found"
		}
	} else {
		applog.Error(c, "server.error", err, nil)
	}
	return c.Status(code).JSON(fiber.Map{"success": false, "message": msg})
}

func NewApp(deps *handlers.Deps, opts Options) *fiber.App {
	opts.defaults()

	app := fiber.New(fiber.Config{
		AppName:      "sweetindulgence",
		BodyLimit:    bodyLimit,
		ErrorHandler: errorHandler,
	})

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	if opts.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
		}))
	}
	app.Use(helmet.New(helmet.Config{CrossOriginResourcePolicy: "cross-origin"}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: opts.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        opts.RateMax,
		Expiration: time.Minute,
		Storage:    opts.Storage,
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return p == "/health" || strings.HasPrefix(p, "/uploads/")
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false, "message": "Too many requests, please try again later.",
			})
		},
	}))

	// ---------- Static uploads ----------
	app.Get("/uploads/*", func(c *fiber.Ctx) error {
		path := c.Params("*")
		full, ok := deps.Media.Resolve(path)
		if !ok {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return fiber.ErrNotFound
		}
		return c.SendFile(full, true)
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "OK", "message": "Server is running"})
	})

	api := app.Group("/api")
	auth := handlers.RequireAuth(deps.Auth)
	supplier := handlers.RequireRole(domain.RoleSupplier)
	supplierOrAdmin := handlers.RequireRole(domain.RoleSupplier, domain.RoleAdmin)
	admin := handlers.RequireRole(domain.RoleAdmin)

	// Auth (login throttled)
	a := api.Group("/auth")
	a.Post("/register/customer", deps.AuthHandler.RegisterCustomer)
	a.Post("/register/supplier", deps.AuthHandler.RegisterSupplier)
	a.Post("/login", limiter.New(limiter.Config{
		Max:        opts.LoginMax,
		Expiration: 10 * time.Minute,
		Storage:    opts.Storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|login"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false, "message": "Too many login attempts. Please try again later.",
			})
		},
	}), deps.AuthHandler.Login)
	a.Get("/verify-token", auth, deps.AuthHandler.Verify)
	a.Post("/forgot-password", deps.AuthHandler.ForgotPassword)
	a.Post("/reset-password", deps.AuthHandler.ResetPassword)

	// Own account
	me := api.Group("/users/me", auth)
	me.Get("/", deps.UserHandler.Me)
	me.Put("/", deps.UserHandler.Update)
	me.Delete("/", deps.UserHandler.Deactivate)
	me.Put("/password", deps.UserHandler.ChangePassword)

	api.Get("/categories", deps.CategoryHandler.List)

	// Stores
	api.Get("/stores", deps.StoreHandler.List)
	api.Post("/stores", auth, supplier, deps.StoreHandler.Create)
	api.Get("/stores/check", auth, deps.StoreHandler.Check)
	api.Get("/stores/:id", deps.StoreHandler.Get)
	api.Put("/stores/:id", auth, deps.StoreHandler.Update)

	// Products; fixed paths before :id
	api.Get("/products", deps.SearchHandler.Products)
	api.Post("/products", auth, supplier, deps.ProductHandler.Create)
	api.Get("/products/stats", auth, supplier, deps.ProductHandler.Stats)
	api.Get("/products/featured-products", auth, supplier, deps.ProductHandler.Featured)
	api.Get("/products/:id", deps.ProductHandler.Detail)
	api.Put("/products/:id", auth, supplier, deps.ProductHandler.Update)
	api.Delete("/products/:id", auth, supplier, deps.ProductHandler.Delete)
	api.Get("/products/:id/availability", deps.InventoryHandler.Check)

	// Orders
	o := api.Group("/orders", auth)
	o.Get("/", deps.OrderHandler.History)
	o.Post("/", deps.OrderHandler.Place)
	o.Get("/stats", supplier, deps.OrderHandler.Stats)
	o.Get("/store/:store_id", supplierOrAdmin, deps.OrderHandler.StoreOrders)
	o.Get("/:id", deps.OrderHandler.View)
	o.Put("/:id/status", supplier, deps.OrderHandler.UpdateStatus)

	// Wishlist
	w := api.Group("/wishlist", auth)
	w.Get("/", deps.WishlistHandler.List)
	w.Post("/", deps.WishlistHandler.Add)
	w.Post("/add", deps.WishlistHandler.Add)
	w.Get("/count", deps.WishlistHandler.Count)
	w.Delete("/remove/:id", deps.WishlistHandler.Remove)
	w.Delete("/clear", deps.WishlistHandler.Clear)
	w.Delete("/", deps.WishlistHandler.Clear)

	// Cart
	ct := api.Group("/cart", auth)
	ct.Get("/", deps.CartHandler.View)
	ct.Delete("/", deps.CartHandler.Clear)
	ct.Post("/items", deps.CartHandler.Add)
	ct.Put("/items/:product_id", deps.CartHandler.Update)
	ct.Delete("/items/:product_id", deps.CartHandler.Remove)

	// Admin
	adm := api.Group("/admin", auth, admin)
	adm.Get("/users", deps.AdminHandler.Users)
	adm.Put("/users/:id/deactivate", deps.AdminHandler.DeactivateUser)
	adm.Get("/orders", deps.AdminHandler.LatestOrders)

	// 404
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Resource not found"})
	})

	return app
}
