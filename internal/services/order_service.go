package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"sweetindulgence/internal/cache"
	"sweetindulgence/internal/domain"
	"sweetindulgence/internal/repos"
	"sweetindulgence/internal/validate"
)

type OrderLine struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  int             `json:"quantity" validate:"gte=1"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Checkout is the buyer's order payload. Prices in it are only compared
// against the server-side computation, never stored.
type Checkout struct {
	Items           []OrderLine      `json:"items" validate:"required,min=1,dive"`
	TotalAmount     *decimal.Decimal `json:"total_amount" validate:"required"`
	ShippingAddress string           `json:"shipping_address" validate:"required,max=255"`
	ShippingCity    string           `json:"shipping_city" validate:"required,max=100"`
	ShippingPhone   string           `json:"shipping_phone" validate:"required,phone"`
	CustomerName    string           `json:"customer_name" validate:"max=100"`
	PaymentMethod   string           `json:"payment_method" validate:"omitempty,oneof=cash_on_delivery card online"`
	OrderNotes      string           `json:"order_notes" validate:"max=500"`
}

type PlacedOrder struct {
	Order       *domain.OrderDetail
	ClientTotal decimal.Decimal
	Mismatch    bool
}

type OrderService struct {
	DB     *sqlx.DB
	Prods  *repos.ProductRepo
	Inv    *repos.InventoryRepo
	Orders *repos.OrderRepo
	Carts  *repos.CartRepo
	Users  *repos.UserRepo
	Stores *repos.StoreRepo
	Cache  *cache.ProductCache
}

func NewOrderService(db *sqlx.DB, prods *repos.ProductRepo, inv *repos.InventoryRepo, orders *repos.OrderRepo,
	carts *repos.CartRepo, users *repos.UserRepo, stores *repos.StoreRepo, pc *cache.ProductCache) *OrderService {
	return &OrderService{DB: db, Prods: prods, Inv: inv, Orders: orders, Carts: carts, Users: users, Stores: stores, Cache: pc}
}

func (c Checkout) check() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	seen := make(map[string]bool, len(c.Items))
	for i, it := range c.Items {
		if it.UnitPrice.IsNegative() {
			return domain.InvalidField("items", fmt.Sprintf("Line %d: unit_price cannot be negative", i+1))
		}
		if seen[it.ProductID] {
			return domain.InvalidField("items", fmt.Sprintf("Line %d: product %s listed twice", i+1, it.ProductID))
		}
		seen[it.ProductID] = true
	}
	return nil
}

// Place creates an order with its items and decrements stock, all in one
// transaction. Any failure, including a short line, leaves the database as
// it was.
func (s *OrderService) Place(ctx context.Context, userID string, in Checkout) (*PlacedOrder, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	method := in.PaymentMethod
	if method == "" {
		method = domain.PayCashOnDelivery
	}
	payment := domain.PaymentPending
	if method != domain.PayCashOnDelivery {
		// payments are simulated
		payment = domain.PaymentPaid
	}

	ids := make([]string, len(in.Items))
	for i, it := range in.Items {
		ids[i] = it.ProductID
	}
	orderID := uuid.NewString()
	var clientTotal = *in.TotalAmount
	var serverTotal decimal.Decimal

	err := repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		orders := s.Orders.WithTx(tx)
		inv := s.Inv.WithTx(tx)

		products, err := s.Prods.WithTx(tx).ByIDs(ctx, ids)
		if err != nil {
			return err
		}
		name := strings.TrimSpace(in.CustomerName)
		if name == "" {
			buyer, err := s.Users.WithTx(tx).ByID(ctx, userID)
			if err != nil {
				return err
			}
			name = buyer.FullName()
		}

		storeID := ""
		for _, it := range in.Items {
			p, ok := products[it.ProductID]
			if !ok || !p.IsActive {
				return domain.NotFound(fmt.Sprintf("Product %s not found", it.ProductID))
			}
			if storeID == "" {
				storeID = p.StoreID
			} else if p.StoreID != storeID {
				return domain.InvalidField("items", "Multi-store carts must be split into one order per store")
			}
			serverTotal = serverTotal.Add(domain.LineTotal(p.EffectivePrice(), it.Quantity))
		}

		if err := orders.Create(ctx, &domain.Order{
			ID:              orderID,
			UserID:          userID,
			StoreID:         storeID,
			TotalAmount:     serverTotal,
			Status:          domain.StatusPending,
			PaymentStatus:   payment,
			PaymentMethod:   method,
			CustomerName:    name,
			ShippingAddress: strings.TrimSpace(in.ShippingAddress),
			ShippingCity:    strings.TrimSpace(in.ShippingCity),
			ShippingPhone:   strings.TrimSpace(in.ShippingPhone),
			OrderNotes:      strings.TrimSpace(in.OrderNotes),
		}); err != nil {
			return err
		}

		for i, it := range in.Items {
			unit := products[it.ProductID].EffectivePrice()
			if err := orders.InsertItem(ctx, &domain.OrderItem{
				ID:         uuid.NewString(),
				OrderID:    orderID,
				Line:       i + 1,
				ProductID:  it.ProductID,
				Quantity:   it.Quantity,
				UnitPrice:  unit,
				TotalPrice: domain.LineTotal(unit, it.Quantity),
			}); err != nil {
				return err
			}
			if err := inv.Decrement(ctx, it.ProductID, it.Quantity); err != nil {
				if !errors.Is(err, repos.ErrInsufficientStock) {
					return err
				}
				return shortage(ctx, inv, i+1, it)
			}
		}
		return s.Carts.WithTx(tx).RemoveProducts(ctx, userID, ids)
	})
	if err != nil {
		return nil, err
	}
	s.Cache.Invalidate(ctx, ids...)

	detail, err := s.Orders.Detail(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &PlacedOrder{Order: detail, ClientTotal: clientTotal, Mismatch: !clientTotal.Equal(serverTotal)}, nil
}

// Get returns an order to its buyer or to the owner of the selling store.
type stockReader interface {
	Qty(ctx context.Context, productID string) (int, error)
}

// shortage builds the conflict for a line whose decrement was refused. A
// failed stock lookup is returned as is rather than reported as zero stock.
func shortage(ctx context.Context, inv stockReader, line int, it OrderLine) error {
	have, err := inv.Qty(ctx, it.ProductID)
	if err != nil {
		return fmt.Errorf("stock lookup for %s: %w", it.ProductID, err)
	}
	return &domain.InsufficientStockError{
		ProductID: it.ProductID, Line: line, Requested: it.Quantity, Available: have,
	}
}

// Everyone else gets not-found so order ids cannot be probed.
func (s *OrderService) Get(ctx context.Context, orderID, requesterID string) (*domain.OrderDetail, error) {
	d, err := s.Orders.Detail(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if d.UserID != requesterID && d.StoreOwner != requesterID {
		return nil, domain.NotFound("Order not found")
	}
	return d, nil
}

// UpdateStatus applies a legal status transition on behalf of the store owner.
// Cancelling restocks every line; delivering credits the buyer's loyalty points.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, requesterID, status string) (*domain.OrderDetail, error) {
	to, ok := domain.ParseOrderStatus(strings.ToLower(strings.TrimSpace(status)))
	if !ok {
		return nil, domain.InvalidField("status", "Invalid status, expected one of: pending, processing, delivered, cancelled")
	}

	var restocked []string
	err := repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		orders := s.Orders.WithTx(tx)
		d, err := orders.Detail(ctx, orderID)
		if err != nil {
			return err
		}
		if d.StoreOwner != requesterID {
			return domain.NotFound("Order not found")
		}
		if !domain.CanTransition(d.Status, to) {
			return domain.Conflict(fmt.Sprintf("Cannot change order status from %s to %s", d.Status, to))
		}

		payment := d.PaymentStatus
		switch {
		case to == domain.StatusCancelled && payment == domain.PaymentPaid:
			payment = domain.PaymentRefunded
		case to == domain.StatusDelivered && payment == domain.PaymentPending:
			payment = domain.PaymentPaid
		}
		if err := orders.UpdateStatus(ctx, orderID, d.Status, to, payment); err != nil {
			return err
		}

		switch to {
		case domain.StatusCancelled:
			inv := s.Inv.WithTx(tx)
			for _, it := range d.Items {
				if err := inv.Restock(ctx, it.ProductID, it.Quantity); err != nil {
					return err
				}
				restocked = append(restocked, it.ProductID)
			}
		case domain.StatusDelivered:
			ids := make([]string, len(d.Items))
			for i, it := range d.Items {
				ids[i] = it.ProductID
			}
			products, err := s.Prods.WithTx(tx).ByIDs(ctx, ids)
			if err != nil {
				return err
			}
			points := 0
			for _, it := range d.Items {
				points += products[it.ProductID].LoyaltyPointsEarned * it.Quantity
			}
			if points > 0 {
				return s.Users.WithTx(tx).AddLoyaltyPoints(ctx, d.UserID, points)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Cache.Invalidate(ctx, restocked...)
	return s.Orders.Detail(ctx, orderID)
}

func (s *OrderService) ListForBuyer(ctx context.Context, userID string, page, limit int) ([]domain.OrderSummary, domain.Page, error) {
	rows, total, err := s.Orders.ListByUser(ctx, userID, limit, offset(page, limit))
	if err != nil {
		return nil, domain.Page{}, err
	}
	return rows, domain.NewPage(total, page, limit), nil
}

// ListForStore pages through a store's orders. Only the owner, or an admin, may look.
func (s *OrderService) ListForStore(ctx context.Context, u *domain.User, storeID, status string, page, limit int) ([]domain.OrderSummary, domain.Page, error) {
	st, err := s.Stores.ByID(ctx, storeID)
	if err != nil {
		return nil, domain.Page{}, err
	}
	if st.OwnerID != u.ID && u.Role != domain.RoleAdmin {
		return nil, domain.Page{}, domain.Forbidden("You can only view orders for your own store")
	}
	var filter domain.OrderStatus
	if status != "" {
		var ok bool
		if filter, ok = domain.ParseOrderStatus(strings.ToLower(status)); !ok {
			return nil, domain.Page{}, domain.InvalidField("status", "Invalid status filter")
		}
	}
	rows, total, err := s.Orders.ListByStore(ctx, storeID, filter, limit, offset(page, limit))
	if err != nil {
		return nil, domain.Page{}, err
	}
	return rows, domain.NewPage(total, page, limit), nil
}

// Stats covers the caller's single store; no store means all zeros.
func (s *OrderService) Stats(ctx context.Context, u *domain.User) (domain.OrderStats, error) {
	st, err := s.Stores.ByOwner(ctx, u.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.OrderStats{}, nil
	}
	if err != nil {
		return domain.OrderStats{}, err
	}
	return s.Orders.Stats(ctx, st.ID)
}

func (s *OrderService) Latest(ctx context.Context, limit int) ([]domain.OrderSummary, error) {
	return s.Orders.ListLatest(ctx, limit)
}
