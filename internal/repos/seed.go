package repos

import (
	"context"
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// DemoPassword is the password of every seeded demo account.
const DemoPassword = "Passw0rd!"

// SeedDemo ensures a demo admin, supplier (with store and products) and customer exist.
// Safe to run on every startup.
func SeedDemo(ctx context.Context, db *sqlx.DB) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	ts := now()

	users := []struct{ ID, Email, First, Last, Role string }{
		{"u-admin", "admin@sweetindulgence.test", "Site", "Admin", "admin"},
		{"u-baker", "baker@sweetindulgence.test", "Bea", "Baker", "supplier"},
		{"u-carol", "carol@sweetindulgence.test", "Carol", "Customer", "customer"},
	}
	products := []struct {
		ID, Category, Name, Desc string
		Price                    string
		Stock                    int
		Featured                 bool
	}{
		{"p-sourdough", "breads", "Country Sourdough", "Naturally leavened loaf", "6.50", 20, true},
		{"p-croissant", "pastries", "Butter Croissant", "Laminated all-butter croissant", "3.25", 40, false},
		{"p-redvelvet", "cakes", "Red Velvet Cake", "Eight-inch layer cake with cream cheese frosting", "32.00", 4, true},
		{"p-chocchip", "cookies", "Chocolate Chip Cookie", "Brown butter and dark chocolate", "2.10", 60, false},
	}

	return InTx(ctx, db, func(tx *sqlx.Tx) error {
		for _, u := range users {
			if _, err := tx.ExecContext(ctx, tx.Rebind(`
				INSERT INTO users(user_id, email, password_hash, first_name, last_name, role, is_active, date_joined)
				VALUES(?, ?, ?, ?, ?, ?, TRUE, ?)
				ON CONFLICT(email) DO NOTHING
			`), u.ID, u.Email, string(hash), u.First, u.Last, u.Role, ts); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO stores(store_id, owner_id, name, description, address, city, phone, email,
			                   opening_hours, is_active, date_created, date_updated)
			VALUES('s-bea', 'u-baker', 'Bea''s Bakery', 'Small-batch breads and cakes', '12 Mill Lane', 'Springfield',
			       '555-0100', 'baker@sweetindulgence.test', '{"monday":"07:00-15:00"}', TRUE, ?, ?)
			ON CONFLICT(owner_id) DO NOTHING
		`), ts, ts); err != nil {
			return err
		}
		for _, p := range products {
			if _, err := tx.ExecContext(ctx, tx.Rebind(`
				INSERT INTO products(product_id, store_id, category_id, name, description, price,
				                     stock_quantity, is_featured, is_active, loyalty_points_earned, date_created, date_updated)
				VALUES(?, 's-bea', ?, ?, ?, ?, ?, ?, TRUE, 5, ?, ?)
				ON CONFLICT(product_id) DO NOTHING
			`), p.ID, p.Category, p.Name, p.Desc, p.Price, p.Stock, p.Featured, ts, ts); err != nil {
				return err
			}
		}
		log.Printf("[seed] demo accounts ensured (%d users, %d products)", len(users), len(products))
		return nil
	})
}
