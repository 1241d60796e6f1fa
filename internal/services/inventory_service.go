package services

import (
	"context"
	"database/sql"
	"errors"

	"sweetindulgence/internal/domain"
	"sweetindulgence/internal/repos"
)

type InventoryService struct {
	Inv *repos.InventoryRepo
}

func NewInventoryService(inv *repos.InventoryRepo) *InventoryService {
	return &InventoryService{Inv: inv}
}

// CheckAvailability converts qty to IN_STOCK / LOW_STOCK / OUT_OF_STOCK.
func (s *InventoryService) CheckAvailability(ctx context.Context, productID string) (domain.Availability, error) {
	qty, err := s.Inv.Qty(ctx, productID)
	if err != nil {
		// unknown product counts as zero stock
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Availability{ProductID: productID, Status: domain.StockOut}, nil
		}
		return domain.Availability{}, err
	}

	status := domain.StockOut
	switch {
	case qty >= 5:
		status = domain.StockIn
	case qty > 0:
		status = domain.StockLow
	}
	return domain.Availability{ProductID: productID, Status: status, Qty: qty}, nil
}
