package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"sweetindulgence/internal/domain"
)

type ImageRepo struct{ db sqlx.ExtContext }

func NewImageRepo(db sqlx.ExtContext) *ImageRepo { return &ImageRepo{db: db} }

func (r *ImageRepo) WithTx(tx *sqlx.Tx) *ImageRepo { return &ImageRepo{db: tx} }

// Add inserts an image. Marking it primary demotes the current primary first
// so idx_product_images_primary holds.
func (r *ImageRepo) Add(ctx context.Context, img *domain.ProductImage) error {
	if img.IsPrimary {
		if _, err := r.db.ExecContext(ctx, r.db.Rebind(`
			UPDATE product_images SET is_primary = FALSE WHERE product_id = ? AND is_primary = TRUE
		`), img.ProductID); err != nil {
			return err
		}
	}
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO product_images(image_id, product_id, image_url, is_primary, display_order)
		VALUES(?, ?, ?, ?, ?)
	`), img.ID, img.ProductID, img.ImageURL, img.IsPrimary, img.DisplayOrder)
	return err
}

func (r *ImageRepo) ByProduct(ctx context.Context, productID string) ([]domain.ProductImage, error) {
	out := []domain.ProductImage{}
	err := sqlx.SelectContext(ctx, r.db, &out, r.db.Rebind(`
		SELECT image_id, product_id, image_url, is_primary, display_order
		FROM product_images
		WHERE product_id = ?
		ORDER BY display_order, image_id
	`), productID)
	return out, err
}
