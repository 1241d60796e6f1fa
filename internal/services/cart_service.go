package services

import (
	"context"

	"github.com/shopspring/decimal"

	"sweetindulgence/internal/domain"
	"sweetindulgence/internal/repos"
)

const maxCartQty = 50

type CartService struct {
	Carts *repos.CartRepo
	Prods *repos.ProductRepo
}

func NewCartService(carts *repos.CartRepo, prods *repos.ProductRepo) *CartService {
	return &CartService{Carts: carts, Prods: prods}
}

func clampQty(n int) int {
	if n < 1 {
		return 1
	}
	if n > maxCartQty {
		return maxCartQty
	}
	return n
}

func (s *CartService) View(ctx context.Context, userID string) (*domain.Cart, error) {
	cartID, err := s.Carts.EnsureCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	lines, err := s.Carts.Lines(ctx, cartID)
	if err != nil {
		return nil, err
	}
	cart := &domain.Cart{Items: lines, Total: decimal.Zero}
	for i := range cart.Items {
		l := &cart.Items[i]
		l.Subtotal = domain.LineTotal(l.UnitPrice, l.Quantity)
		cart.Total = cart.Total.Add(l.Subtotal)
		cart.Count += l.Quantity
	}
	return cart, nil
}

func (s *CartService) Add(ctx context.Context, userID, productID string, qty int) (*domain.Cart, error) {
	p, err := s.Prods.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, domain.NotFound("Product not found")
	}
	cartID, err := s.Carts.EnsureCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.Carts.AddItem(ctx, cartID, productID, clampQty(qty)); err != nil {
		return nil, err
	}
	return s.View(ctx, userID)
}

// SetQuantity replaces a line's quantity; zero or less removes the line.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID string, qty int) (*domain.Cart, error) {
	if qty <= 0 {
		return s.Remove(ctx, userID, productID)
	}
	cartID, err := s.Carts.EnsureCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	ok, err := s.Carts.SetItem(ctx, cartID, productID, clampQty(qty))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NotFound("Item not found in your cart")
	}
	return s.View(ctx, userID)
}

func (s *CartService) Remove(ctx context.Context, userID, productID string) (*domain.Cart, error) {
	cartID, err := s.Carts.EnsureCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	ok, err := s.Carts.RemoveItem(ctx, cartID, productID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NotFound("Item not found in your cart")
	}
	return s.View(ctx, userID)
}

func (s *CartService) Clear(ctx context.Context, userID string) error {
	cartID, err := s.Carts.EnsureCart(ctx, userID)
	if err != nil {
		return err
	}
	return s.Carts.Clear(ctx, cartID)
}
