package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleSupplier Role = "supplier"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID            string `db:"user_id" json:"user_id"`
	Email         string `db:"email" json:"email"`
	PasswordHash  string `db:"password_hash" json:"-"`
	FirstName     string `db:"first_name" json:"first_name"`
	LastName      string `db:"last_name" json:"last_name"`
	Phone         string `db:"phone" json:"phone"`
	Address       string `db:"address" json:"address"`
	City          string `db:"city" json:"city"`
	Role          Role   `db:"role" json:"role"`
	LoyaltyPoints int    `db:"loyalty_points" json:"loyalty_points"`
	IsActive      bool   `db:"is_active" json:"is_active"`
	DateJoined    string `db:"date_joined" json:"date_joined"`
	LastLogin     string `db:"last_login" json:"last_login,omitempty"`
}

func (u User) FullName() string { return u.FirstName + " " + u.LastName }

// OpeningHours maps a weekday to a free-form hours string, e.g. "monday": "08:00-18:00".
type OpeningHours map[string]string

func (h OpeningHours) Value() (driver.Value, error) {
	if h == nil {
		return "{}", nil
	}
	b, err := json.Marshal(h)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (h *OpeningHours) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*h = OpeningHours{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("opening_hours: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*h = OpeningHours{}
		return nil
	}
	out := OpeningHours{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*h = out
	return nil
}

type Store struct {
	ID           string       `db:"store_id" json:"store_id"`
	OwnerID      string       `db:"owner_id" json:"owner_id"`
	Name         string       `db:"name" json:"name"`
	Description  string       `db:"description" json:"description"`
	Address      string       `db:"address" json:"address"`
	City         string       `db:"city" json:"city"`
	Phone        string       `db:"phone" json:"phone"`
	Email        string       `db:"email" json:"email"`
	OpeningHours OpeningHours `db:"opening_hours" json:"opening_hours"`
	IsActive     bool         `db:"is_active" json:"is_active"`
	DateCreated  string       `db:"date_created" json:"date_created"`
	DateUpdated  string       `db:"date_updated" json:"date_updated"`
}
