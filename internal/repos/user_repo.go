package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"sweetindulgence/internal/domain"
)

type UserRepo struct{ db sqlx.ExtContext }

func NewUserRepo(db sqlx.ExtContext) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) WithTx(tx *sqlx.Tx) *UserRepo { return &UserRepo{db: tx} }

const userColumns = `user_id, email, password_hash, first_name, last_name, phone, address, city,
	role, loyalty_points, is_active, date_joined, COALESCE(last_login,'') AS last_login`

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.DateJoined == "" {
		u.DateJoined = now()
	}
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO users(user_id, email, password_hash, first_name, last_name, phone, address, city,
		                  role, loyalty_points, is_active, date_joined)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Phone, u.Address, u.City,
		u.Role, u.LoyaltyPoints, u.IsActive, u.DateJoined)
	if isUniqueViolation(err) {
		return domain.Conflict("Email already registered")
	}
	return err
}

func (r *UserRepo) get(ctx context.Context, where string, arg any) (*domain.User, error) {
	var u domain.User
	err := sqlx.GetContext(ctx, r.db, &u, r.db.Rebind(`SELECT `+userColumns+` FROM users WHERE `+where), arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ByEmail matches case-insensitively.
func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.get(ctx, `LOWER(email) = LOWER(?)`, email)
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*domain.User, error) {
	return r.get(ctx, `user_id = ?`, id)
}

func (r *UserRepo) TouchLogin(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE users SET last_login = ? WHERE user_id = ?`), now(), id)
	return err
}

func (r *UserRepo) SetResetToken(ctx context.Context, id, token, expires string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE users SET reset_token = ?, reset_token_expires = ? WHERE user_id = ?
	`), token, expires, id)
	return err
}

// ByResetToken returns the active user holding token and the token's expiry.
func (r *UserRepo) ByResetToken(ctx context.Context, token string) (*domain.User, string, error) {
	var row struct {
		domain.User
		Expires string `db:"reset_token_expires"`
	}
	err := sqlx.GetContext(ctx, r.db, &row, r.db.Rebind(`
		SELECT `+userColumns+`, COALESCE(reset_token_expires,'') AS reset_token_expires
		FROM users
		WHERE reset_token = ? AND is_active = TRUE
	`), token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", domain.NotFound("Invalid or expired reset token")
	}
	if err != nil {
		return nil, "", err
	}
	return &row.User, row.Expires, nil
}

// UpdatePassword stores a new hash and clears any outstanding reset token.
func (r *UserRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE users SET password_hash = ?, reset_token = NULL, reset_token_expires = NULL
		WHERE user_id = ?
	`), hash, id)
	return err
}

func (r *UserRepo) UpdateProfile(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE users SET first_name = ?, last_name = ?, phone = ?, address = ?, city = ?
		WHERE user_id = ?
	`), u.FirstName, u.LastName, u.Phone, u.Address, u.City, u.ID)
	return err
}

func (r *UserRepo) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE users SET is_active = ? WHERE user_id = ?`), active, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFound("User not found")
	}
	return nil
}

func (r *UserRepo) AddLoyaltyPoints(ctx context.Context, id string, points int) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE users SET loyalty_points = loyalty_points + ? WHERE user_id = ?
	`), points, id)
	return err
}

// List pages through all users, newest first.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]domain.User, int, error) {
	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, `SELECT COUNT(*) FROM users`); err != nil {
		return nil, 0, err
	}
	out := []domain.User{}
	err := sqlx.SelectContext(ctx, r.db, &out, r.db.Rebind(`
		SELECT `+userColumns+` FROM users
		ORDER BY date_joined DESC
		LIMIT ? OFFSET ?
	`), limit, offset)
	return out, total, err
}
