package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"sweetindulgence/internal/domain"
	"sweetindulgence/internal/repos"
	"sweetindulgence/internal/validate"
)

var (
	ErrBadCreds     = domain.Unauthorized("Invalid email or password")
	ErrInactive     = domain.Unauthorized("Account is deactivated")
	ErrResetToken   = domain.Invalid("Invalid or expired reset token")
	ErrUnknownToken = domain.Unauthorized("Invalid or expired token")
)

type CustomerSignup struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,password"`
	FirstName string `json:"first_name" validate:"required,max=50"`
	LastName  string `json:"last_name" validate:"required,max=50"`
	Phone     string `json:"phone" validate:"phone"`
	Address   string `json:"address" validate:"max=255"`
	City      string `json:"city" validate:"max=100"`
}

type SupplierSignup struct {
	CustomerSignup
	BusinessName        string `json:"business_name" validate:"required,max=100"`
	BusinessAddress     string `json:"business_address" validate:"required,max=255"`
	BusinessPhone       string `json:"business_phone" validate:"required,phone"`
	BusinessCity        string `json:"business_city" validate:"max=100"`
	BusinessDescription string `json:"business_description" validate:"max=1000"`
	TaxID               string `json:"tax_id" validate:"max=50"`
}

// Session is what a successful login or registration hands back to the client.
type Session struct {
	Token string        `json:"token"`
	User  *domain.User  `json:"user"`
	Store *domain.Store `json:"store,omitempty"`
}

type AuthService struct {
	DB       *sqlx.DB
	Users    *repos.UserRepo
	Stores   *repos.StoreRepo
	Tokens   *TokenService
	ResetTTL time.Duration
}

func NewAuthService(db *sqlx.DB, users *repos.UserRepo, stores *repos.StoreRepo, tokens *TokenService, resetTTL time.Duration) *AuthService {
	return &AuthService{DB: db, Users: users, Stores: stores, Tokens: tokens, ResetTTL: resetTTL}
}

func hashPassword(pw string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(h), err
}

func (s *AuthService) newUser(in CustomerSignup, role domain.Role) (*domain.User, error) {
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	return &domain.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        in.Phone,
		Address:      in.Address,
		City:         in.City,
		Role:         role,
		IsActive:     true,
	}, nil
}

func (s *AuthService) RegisterCustomer(ctx context.Context, in CustomerSignup) (*Session, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	u, err := s.newUser(in, domain.RoleCustomer)
	if err != nil {
		return nil, err
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	return s.session(u, nil)
}

// RegisterSupplier creates the user and their store together; neither row
// survives if the other fails.
func (s *AuthService) RegisterSupplier(ctx context.Context, in SupplierSignup) (*Session, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	u, err := s.newUser(in.CustomerSignup, domain.RoleSupplier)
	if err != nil {
		return nil, err
	}
	st := &domain.Store{
		ID:          uuid.NewString(),
		OwnerID:     u.ID,
		Name:        strings.TrimSpace(in.BusinessName),
		Description: in.BusinessDescription,
		Address:     in.BusinessAddress,
		City:        in.BusinessCity,
		Phone:       in.BusinessPhone,
		Email:       u.Email,
		IsActive:    true,
	}
	err = repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		if err := s.Users.WithTx(tx).Create(ctx, u); err != nil {
			return err
		}
		return s.Stores.WithTx(tx).Create(ctx, st)
	})
	if err != nil {
		return nil, err
	}
	return s.session(u, st)
}

func (s *AuthService) session(u *domain.User, st *domain.Store) (*Session, error) {
	tok, err := s.Tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &Session{Token: tok, User: u, Store: st}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, domain.Invalid("Email and password are required")
	}
	u, err := s.Users.ByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrBadCreds
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if !u.IsActive {
		return nil, ErrInactive
	}
	if err := s.Users.TouchLogin(ctx, u.ID); err != nil {
		return nil, err
	}

	var st *domain.Store
	if u.Role == domain.RoleSupplier {
		st, err = s.Stores.ByOwner(ctx, u.ID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	return s.session(u, st)
}

// Authenticate resolves a bearer token to an active user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	id, err := s.Tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	u, err := s.Users.ByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrUnknownToken
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrUnknownToken
	}
	return u, nil
}

// ForgotPassword stores a one-time reset token for an active account and
// returns it. Unknown e-mails return "" and no error so callers cannot probe
// for registered addresses.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	addr, ok := validate.Email(email)
	if !ok {
		return "", domain.InvalidField("email", "Invalid email format")
	}
	u, err := s.Users.ByEmail(ctx, addr)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if !u.IsActive {
		return "", nil
	}
	token := uuid.NewString()
	expires := repos.FormatTime(time.Now().Add(s.ResetTTL))
	if err := s.Users.SetResetToken(ctx, u.ID, token, expires); err != nil {
		return "", err
	}
	return token, nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	if token == "" {
		return domain.InvalidField("token", "Reset token is required")
	}
	if !validate.Password(password) {
		return domain.InvalidField("password", "Password must be 8-64 characters with upper and lower case letters, a digit and a symbol")
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	return repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		users := s.Users.WithTx(tx)
		u, expires, err := users.ByResetToken(ctx, token)
		if errors.Is(err, domain.ErrNotFound) {
			return ErrResetToken
		}
		if err != nil {
			return err
		}
		exp, err := time.Parse(repos.TimeLayout, expires)
		if err != nil || time.Now().After(exp) {
			return ErrResetToken
		}
		return users.UpdatePassword(ctx, u.ID, hash)
	})
}
