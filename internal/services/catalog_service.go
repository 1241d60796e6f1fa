package services

import (
	"bytes"
	"context"
	"errors"
	"log"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"sweetindulgence/internal/cache"
	"sweetindulgence/internal/domain"
	"sweetindulgence/internal/repos"
	"sweetindulgence/internal/storage"
	"sweetindulgence/internal/validate"
)

// ProductQuery is a public catalog listing request.
type ProductQuery struct {
	CategoryID string
	StoreID    string
	Search     string
	Featured   bool
	Sort       string
	Page       int
	Limit      int
}

// ProductForm is the raw multipart form of a new product; every value is
// parsed and checked by CreateProduct.
type ProductForm struct {
	Name                string
	Description         string
	Price               string
	SalePrice           string
	CategoryID          string
	StockQuantity       string
	IsFeatured          string
	IsActive            string
	LoyaltyPointsEarned string
}

// NullableMoney distinguishes an absent JSON field from an explicit null.
type NullableMoney struct {
	Set   bool
	Value decimal.NullDecimal
}

func (n *NullableMoney) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		n.Value = decimal.NullDecimal{}
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	n.Value = decimal.NewNullDecimal(d.Round(2))
	return nil
}

// ProductPatch is a partial product update; nil fields are kept.
type ProductPatch struct {
	Name                *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description         *string          `json:"description" validate:"omitempty,max=2000"`
	Price               *decimal.Decimal `json:"price"`
	SalePrice           NullableMoney    `json:"sale_price"`
	CategoryID          *string          `json:"category_id"`
	StockQuantity       *int             `json:"stock_quantity"`
	IsFeatured          *bool            `json:"is_featured"`
	IsActive            *bool            `json:"is_active"`
	LoyaltyPointsEarned *int             `json:"loyalty_points_earned"`
}

type CatalogService struct {
	DB     *sqlx.DB
	Cats   *repos.CategoryRepo
	Prods  *repos.ProductRepo
	Images *repos.ImageRepo
	Stores *repos.StoreRepo
	Media  *storage.Media
	Cache  *cache.ProductCache
}

func NewCatalogService(db *sqlx.DB, cats *repos.CategoryRepo, prods *repos.ProductRepo, images *repos.ImageRepo,
	stores *repos.StoreRepo, media *storage.Media, pc *cache.ProductCache) *CatalogService {
	return &CatalogService{DB: db, Cats: cats, Prods: prods, Images: images, Stores: stores, Media: media, Cache: pc}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.Cats.List(ctx)
}

func (s *CatalogService) ListProducts(ctx context.Context, q ProductQuery) ([]domain.ProductListing, domain.Page, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = 12
	}
	rows, total, err := s.Prods.List(ctx, repos.ProductFilter{
		CategoryID:   q.CategoryID,
		StoreID:      q.StoreID,
		Search:       validate.Q(q.Search),
		FeaturedOnly: q.Featured,
		Sort:         q.Sort,
		Limit:        q.Limit,
		Offset:       offset(q.Page, q.Limit),
	})
	if err != nil {
		return nil, domain.Page{}, err
	}
	return rows, domain.NewPage(total, q.Page, q.Limit), nil
}

func (s *CatalogService) loadDetail(ctx context.Context, id string) (*domain.ProductDetail, error) {
	l, err := s.Prods.Listing(ctx, id)
	if err != nil {
		return nil, err
	}
	if !l.IsActive {
		return nil, domain.NotFound("Product not found")
	}
	imgs, err := s.Images.ByProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.ProductDetail{ProductListing: *l, Images: imgs}, nil
}

// GetProduct returns an active product with its images, through the cache.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.ProductDetail, error) {
	return s.Cache.Get(ctx, id, s.loadDetail)
}

func (s *CatalogService) supplierStore(ctx context.Context, u *domain.User) (*domain.Store, error) {
	if u.Role != domain.RoleSupplier {
		return nil, domain.Forbidden("Only suppliers can manage products")
	}
	st, err := s.Stores.ByOwner(ctx, u.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound("Store not found. Please create a store first")
	}
	return st, err
}

func parseFlag(v string, def bool) bool {
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(v)))
	if err != nil {
		return def
	}
	return b
}

func (f ProductForm) product() (*domain.Product, error) {
	required := []struct{ field, value string }{
		{"name", f.Name}, {"description", f.Description}, {"price", f.Price},
		{"category_id", f.CategoryID}, {"stock_quantity", f.StockQuantity},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, domain.InvalidField(r.field, "Missing required field: "+r.field)
		}
	}

	bad := domain.Invalid("Invalid numeric values")
	p := &domain.Product{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		CategoryID:  strings.TrimSpace(f.CategoryID),
		IsFeatured:  parseFlag(f.IsFeatured, false),
		IsActive:    parseFlag(f.IsActive, true),
	}
	var err error
	if p.Price, err = domain.ParseMoney(f.Price); err != nil {
		return nil, bad
	}
	if strings.TrimSpace(f.SalePrice) != "" {
		sp, err := domain.ParseMoney(f.SalePrice)
		if err != nil {
			return nil, bad
		}
		p.SalePrice = decimal.NewNullDecimal(sp)
	}
	if p.StockQuantity, err = strconv.Atoi(strings.TrimSpace(f.StockQuantity)); err != nil {
		return nil, bad
	}
	if strings.TrimSpace(f.LoyaltyPointsEarned) != "" {
		if p.LoyaltyPointsEarned, err = strconv.Atoi(strings.TrimSpace(f.LoyaltyPointsEarned)); err != nil {
			return nil, bad
		}
	}
	return p, nil
}

func (s *CatalogService) requireCategory(ctx context.Context, id string) error {
	ok, err := s.Cats.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.InvalidField("category_id", "Invalid category")
	}
	return nil
}

// CreateProduct adds a product to the supplier's store. An uploaded image
// becomes the primary image; product and image rows commit together and the
// stored file is removed if they do not.
func (s *CatalogService) CreateProduct(ctx context.Context, u *domain.User, f ProductForm, image *multipart.FileHeader) (*domain.ProductDetail, error) {
	st, err := s.supplierStore(ctx, u)
	if err != nil {
		return nil, err
	}
	p, err := f.product()
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireCategory(ctx, p.CategoryID); err != nil {
		return nil, err
	}
	p.ID = uuid.NewString()
	p.StoreID = st.ID

	var url string
	if image != nil {
		if url, err = s.Media.SaveProductImage(image); err != nil {
			if errors.Is(err, storage.ErrImageType) || errors.Is(err, storage.ErrImageSize) {
				return nil, domain.InvalidField("image", err.Error())
			}
			return nil, err
		}
	}

	err = repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		if err := s.Prods.WithTx(tx).Create(ctx, p); err != nil {
			return err
		}
		if url == "" {
			return nil
		}
		return s.Images.WithTx(tx).Add(ctx, &domain.ProductImage{
			ID: uuid.NewString(), ProductID: p.ID, ImageURL: url, IsPrimary: true,
		})
	})
	if err != nil {
		if url != "" {
			if rmErr := s.Media.Remove(url); rmErr != nil {
				log.Printf("[media] orphaned upload %s: %v", url, rmErr)
			}
		}
		return nil, err
	}
	return s.loadDetail(ctx, p.ID)
}

// ownedProduct loads a product and checks it belongs to the caller's store.
func (s *CatalogService) ownedProduct(ctx context.Context, u *domain.User, id string) (*domain.Product, error) {
	p, err := s.Prods.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	st, err := s.Stores.ByOwner(ctx, u.ID)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && st.ID != p.StoreID) {
		return nil, domain.Forbidden("You can only modify your own products")
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProduct applies a partial patch. The row is re-read inside the
// transaction, and stock is written only when the patch sets it, so a
// checkout committing meanwhile keeps its decrement.
func (s *CatalogService) UpdateProduct(ctx context.Context, u *domain.User, id string, in ProductPatch) (*domain.Product, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	owned, err := s.ownedProduct(ctx, u, id)
	if err != nil {
		return nil, err
	}
	if in.CategoryID != nil && *in.CategoryID != owned.CategoryID {
		if err := s.requireCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
	}

	var p *domain.Product
	err = repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		prods := s.Prods.WithTx(tx)
		var err error
		if p, err = prods.GetForUpdate(ctx, id); err != nil {
			return err
		}
		in.apply(p)
		if err := p.Validate(); err != nil {
			return err
		}
		if err := prods.Update(ctx, p); err != nil {
			return err
		}
		if in.StockQuantity != nil {
			return prods.SetStock(ctx, p.ID, p.StockQuantity)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Cache.Invalidate(ctx, p.ID)
	return p, nil
}

func (in ProductPatch) apply(p *domain.Product) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		p.Price = in.Price.Round(2)
	}
	if in.SalePrice.Set {
		p.SalePrice = in.SalePrice.Value
	}
	if in.CategoryID != nil {
		p.CategoryID = *in.CategoryID
	}
	if in.StockQuantity != nil {
		p.StockQuantity = *in.StockQuantity
	}
	if in.IsFeatured != nil {
		p.IsFeatured = *in.IsFeatured
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if in.LoyaltyPointsEarned != nil {
		p.LoyaltyPointsEarned = *in.LoyaltyPointsEarned
	}
}

// DeleteProduct soft-deletes; order history keeps referencing the row.
func (s *CatalogService) DeleteProduct(ctx context.Context, u *domain.User, id string) error {
	p, err := s.ownedProduct(ctx, u, id)
	if err != nil {
		return err
	}
	if err := s.Prods.Deactivate(ctx, p.ID); err != nil {
		return err
	}
	s.Cache.Invalidate(ctx, p.ID)
	return nil
}

// Stats summarises the caller's store; a supplier without a store gets zeros.
func (s *CatalogService) Stats(ctx context.Context, u *domain.User) (domain.ProductStats, error) {
	st, err := s.Stores.ByOwner(ctx, u.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ProductStats{}, nil
	}
	if err != nil {
		return domain.ProductStats{}, err
	}
	return s.Prods.Stats(ctx, st.ID)
}

func (s *CatalogService) Featured(ctx context.Context, u *domain.User) ([]domain.ProductListing, error) {
	st, err := s.Stores.ByOwner(ctx, u.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return []domain.ProductListing{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.Prods.Featured(ctx, st.ID)
}
