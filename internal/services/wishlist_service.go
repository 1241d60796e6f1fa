package services

import (
	"context"

	"sweetindulgence/internal/domain"
	"sweetindulgence/internal/repos"
)

type WishlistService struct {
	Repo  *repos.WishlistRepo
	Prods *repos.ProductRepo
}

func NewWishlistService(r *repos.WishlistRepo, prods *repos.ProductRepo) *WishlistService {
	return &WishlistService{Repo: r, Prods: prods}
}

// Add saves a product once per user. added is false when it was already saved.
func (s *WishlistService) Add(ctx context.Context, userID, productID string) (itemID string, added bool, err error) {
	if productID == "" {
		return "", false, domain.InvalidField("product_id", "Missing required field: product_id")
	}
	p, err := s.Prods.Get(ctx, productID)
	if err != nil {
		return "", false, err
	}
	if !p.IsActive {
		return "", false, domain.NotFound("Product not found")
	}
	id, err := s.Repo.Ensure(ctx, userID)
	if err != nil {
		return "", false, err
	}
	return s.Repo.Add(ctx, id, productID)
}

func (s *WishlistService) List(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	return s.Repo.List(ctx, userID)
}

func (s *WishlistService) Remove(ctx context.Context, userID, itemID string) error {
	ok, err := s.Repo.RemoveOwned(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("Item not found in your wishlist")
	}
	return nil
}

func (s *WishlistService) Clear(ctx context.Context, userID string) (int64, error) {
	return s.Repo.Clear(ctx, userID)
}

func (s *WishlistService) Count(ctx context.Context, userID string) (int, error) {
	return s.Repo.Count(ctx, userID)
}
