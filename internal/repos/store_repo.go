package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"sweetindulgence/internal/domain"
)

type StoreRepo struct{ db sqlx.ExtContext }

func NewStoreRepo(db sqlx.ExtContext) *StoreRepo { return &StoreRepo{db: db} }

func (r *StoreRepo) WithTx(tx *sqlx.Tx) *StoreRepo { return &StoreRepo{db: tx} }

const storeColumns = `store_id, owner_id, name, description, address, city, phone, email,
	opening_hours, is_active, date_created, date_updated`

// Create inserts s. A second store for the same owner trips idx_stores_owner
// and comes back as a conflict.
func (r *StoreRepo) Create(ctx context.Context, s *domain.Store) error {
	ts := now()
	s.DateCreated, s.DateUpdated = ts, ts
	if s.OpeningHours == nil {
		s.OpeningHours = domain.OpeningHours{}
	}
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO stores(store_id, owner_id, name, description, address, city, phone, email,
		                   opening_hours, is_active, date_created, date_updated)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), s.ID, s.OwnerID, s.Name, s.Description, s.Address, s.City, s.Phone, s.Email,
		s.OpeningHours, s.IsActive, s.DateCreated, s.DateUpdated)
	if isUniqueViolation(err) {
		return domain.Conflict("You already have a store")
	}
	return err
}

func (r *StoreRepo) get(ctx context.Context, where string, arg any) (*domain.Store, error) {
	var s domain.Store
	err := sqlx.GetContext(ctx, r.db, &s, r.db.Rebind(`SELECT `+storeColumns+` FROM stores WHERE `+where), arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("Store not found")
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StoreRepo) ByID(ctx context.Context, id string) (*domain.Store, error) {
	return r.get(ctx, `store_id = ?`, id)
}

func (r *StoreRepo) ByOwner(ctx context.Context, ownerID string) (*domain.Store, error) {
	return r.get(ctx, `owner_id = ?`, ownerID)
}

func (r *StoreRepo) Update(ctx context.Context, s *domain.Store) error {
	s.DateUpdated = now()
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE stores
		SET name = ?, description = ?, address = ?, city = ?, phone = ?, email = ?,
		    opening_hours = ?, is_active = ?, date_updated = ?
		WHERE store_id = ?
	`), s.Name, s.Description, s.Address, s.City, s.Phone, s.Email,
		s.OpeningHours, s.IsActive, s.DateUpdated, s.ID)
	return err
}

func (r *StoreRepo) ListActive(ctx context.Context) ([]domain.Store, error) {
	out := []domain.Store{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT `+storeColumns+` FROM stores
		WHERE is_active = TRUE
		ORDER BY name
	`)
	return out, err
}
