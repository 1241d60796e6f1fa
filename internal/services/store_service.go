package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"sweetindulgence/internal/domain"
	"sweetindulgence/internal/repos"
	"sweetindulgence/internal/validate"
)

// StoreInput carries store fields for create (unset fields get defaults) and
// for partial update (unset fields are kept).
type StoreInput struct {
	Name         *string              `json:"name" validate:"omitempty,min=1,max=100"`
	Description  *string              `json:"description" validate:"omitempty,max=1000"`
	Address      *string              `json:"address" validate:"omitempty,max=255"`
	City         *string              `json:"city" validate:"omitempty,max=100"`
	Phone        *string              `json:"phone" validate:"omitempty,phone"`
	Email        *string              `json:"email" validate:"omitempty,email"`
	OpeningHours *domain.OpeningHours `json:"opening_hours"`
	IsActive     *bool                `json:"is_active"`
}

type StoreService struct {
	Stores *repos.StoreRepo
}

func NewStoreService(stores *repos.StoreRepo) *StoreService { return &StoreService{Stores: stores} }

func str(v *string, def string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return def
	}
	return strings.TrimSpace(*v)
}

// Create opens the supplier's store. The unique owner index turns a second
// attempt into a conflict, even under concurrent requests.
func (s *StoreService) Create(ctx context.Context, u *domain.User, in StoreInput) (*domain.Store, error) {
	if u.Role != domain.RoleSupplier {
		return nil, domain.Forbidden("Only suppliers can create stores")
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	phone := u.Phone
	if phone == "" {
		phone = "000-000-0000"
	}
	st := &domain.Store{
		ID:          uuid.NewString(),
		OwnerID:     u.ID,
		Name:        str(in.Name, "My Bakery Shop"),
		Description: str(in.Description, "Welcome to my bakery shop!"),
		Address:     str(in.Address, "Default Address"),
		City:        str(in.City, "Default City"),
		Phone:       str(in.Phone, phone),
		Email:       str(in.Email, u.Email),
		IsActive:    true,
	}
	if in.OpeningHours != nil {
		st.OpeningHours = *in.OpeningHours
	}
	if err := s.Stores.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// Check reports whether a supplier already has a store.
func (s *StoreService) Check(ctx context.Context, u *domain.User) (*domain.Store, error) {
	if u.Role != domain.RoleSupplier {
		return nil, domain.Forbidden("Only suppliers can have stores")
	}
	st, err := s.Stores.ByOwner(ctx, u.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return st, err
}

func (s *StoreService) Get(ctx context.Context, id string) (*domain.Store, error) {
	return s.Stores.ByID(ctx, id)
}

func (s *StoreService) List(ctx context.Context) ([]domain.Store, error) {
	return s.Stores.ListActive(ctx)
}

func (s *StoreService) Update(ctx context.Context, u *domain.User, id string, in StoreInput) (*domain.Store, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	st, err := s.Stores.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if st.OwnerID != u.ID {
		return nil, domain.Forbidden("You can only update your own store")
	}
	st.Name = str(in.Name, st.Name)
	if in.Description != nil {
		st.Description = strings.TrimSpace(*in.Description)
	}
	st.Address = str(in.Address, st.Address)
	st.City = str(in.City, st.City)
	st.Phone = str(in.Phone, st.Phone)
	st.Email = str(in.Email, st.Email)
	if in.OpeningHours != nil {
		st.OpeningHours = *in.OpeningHours
	}
	if in.IsActive != nil {
		st.IsActive = *in.IsActive
	}
	if err := s.Stores.Update(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}
