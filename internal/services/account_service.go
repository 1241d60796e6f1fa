package services

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"sweetindulgence/internal/domain"
	"sweetindulgence/internal/repos"
	"sweetindulgence/internal/validate"
)

type ProfileUpdate struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=1,max=50"`
	LastName  *string `json:"last_name" validate:"omitempty,min=1,max=50"`
	Phone     *string `json:"phone" validate:"omitempty,phone"`
	Address   *string `json:"address" validate:"omitempty,max=255"`
	City      *string `json:"city" validate:"omitempty,max=100"`
}

type PasswordChange struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,password"`
}

// AccountService manages a signed-in user's own account, plus the admin user list.
type AccountService struct {
	Users *repos.UserRepo
}

func NewAccountService(users *repos.UserRepo) *AccountService { return &AccountService{Users: users} }

func (s *AccountService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.Users.ByID(ctx, userID)
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*domain.User, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	u, err := s.Users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&u.FirstName, in.FirstName)
	set(&u.LastName, in.LastName)
	set(&u.Phone, in.Phone)
	set(&u.Address, in.Address)
	set(&u.City, in.City)
	if err := s.Users.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AccountService) ChangePassword(ctx context.Context, userID string, in PasswordChange) error {
	if err := validate.Struct(in); err != nil {
		return err
	}
	u, err := s.Users.ByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.CurrentPassword)) != nil {
		return domain.InvalidField("current_password", "Current password is incorrect")
	}
	hash, err := hashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	return s.Users.UpdatePassword(ctx, userID, hash)
}

// Deactivate soft-deletes an account; rows are never removed.
func (s *AccountService) Deactivate(ctx context.Context, userID string) error {
	return s.Users.SetActive(ctx, userID, false)
}

func (s *AccountService) ListUsers(ctx context.Context, page, limit int) ([]domain.User, domain.Page, error) {
	users, total, err := s.Users.List(ctx, limit, offset(page, limit))
	if err != nil {
		return nil, domain.Page{}, err
	}
	return users, domain.NewPage(total, page, limit), nil
}
