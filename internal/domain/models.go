package domain

import "github.com/shopspring/decimal"

type Category struct {
	ID          string `db:"category_id" json:"category_id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	ImageURL    string `db:"image_url" json:"image_url"`
}

type Product struct {
	ID                  string              `db:"product_id" json:"product_id"`
	StoreID             string              `db:"store_id" json:"store_id"`
	CategoryID          string              `db:"category_id" json:"category_id"`
	Name                string              `db:"name" json:"name"`
	Description         string              `db:"description" json:"description"`
	Price               decimal.Decimal     `db:"price" json:"price"`
	SalePrice           decimal.NullDecimal `db:"sale_price" json:"sale_price"`
	StockQuantity       int                 `db:"stock_quantity" json:"stock_quantity"`
	IsFeatured          bool                `db:"is_featured" json:"is_featured"`
	IsActive            bool                `db:"is_active" json:"is_active"`
	LoyaltyPointsEarned int                 `db:"loyalty_points_earned" json:"loyalty_points_earned"`
	DateCreated         string              `db:"date_created" json:"date_created"`
	DateUpdated         string              `db:"date_updated" json:"date_updated"`
}

// EffectivePrice is the sale price when one is set, the list price otherwise.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice.Valid {
		return p.SalePrice.Decimal
	}
	return p.Price
}

// Validate checks the invariants every stored product must hold.
func (p Product) Validate() error {
	if p.Name == "" {
		return InvalidField("name", "Product name is required")
	}
	if !p.Price.IsPositive() {
		return InvalidField("price", "Price must be greater than zero")
	}
	if p.SalePrice.Valid {
		if p.SalePrice.Decimal.IsNegative() {
			return InvalidField("sale_price", "Sale price cannot be negative")
		}
		if p.SalePrice.Decimal.GreaterThanOrEqual(p.Price) {
			return InvalidField("sale_price", "Sale price must be less than regular price")
		}
	}
	if p.StockQuantity < 0 {
		return InvalidField("stock_quantity", "Stock quantity cannot be negative")
	}
	if p.LoyaltyPointsEarned < 0 {
		return InvalidField("loyalty_points_earned", "Loyalty points cannot be negative")
	}
	return nil
}

// ProductListing is a product row joined with its category, store and primary image.
type ProductListing struct {
	Product
	CategoryName string `db:"category_name" json:"category_name"`
	StoreName    string `db:"store_name" json:"store_name"`
	PrimaryImage string `db:"primary_image" json:"primary_image"`
}

type ProductDetail struct {
	ProductListing
	Images []ProductImage `json:"images"`
}

type ProductImage struct {
	ID           string `db:"image_id" json:"image_id"`
	ProductID    string `db:"product_id" json:"product_id"`
	ImageURL     string `db:"image_url" json:"image_url"`
	IsPrimary    bool   `db:"is_primary" json:"is_primary"`
	DisplayOrder int    `db:"display_order" json:"display_order"`
}

type ProductStats struct {
	Total      int             `db:"total" json:"total_products"`
	Active     int             `db:"active" json:"active_products"`
	Featured   int             `db:"featured" json:"featured_products"`
	OutOfStock int             `db:"out_of_stock" json:"out_of_stock"`
	LowStock   int             `db:"low_stock" json:"low_stock"`
	TotalValue decimal.Decimal `db:"total_value" json:"total_inventory_value"`
	AvgPrice   decimal.Decimal `db:"avg_price" json:"average_price"`
}

const (
	StockIn  = "IN_STOCK"
	StockLow = "LOW_STOCK"
	StockOut = "OUT_OF_STOCK"
)

type Availability struct {
	ProductID string `json:"product_id"`
	Status    string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty       int    `json:"qty"`
}

type WishlistItem struct {
	ItemID        string              `db:"item_id" json:"item_id"`
	ProductID     string              `db:"product_id" json:"product_id"`
	Name          string              `db:"name" json:"name"`
	Price         decimal.Decimal     `db:"price" json:"price"`
	SalePrice     decimal.NullDecimal `db:"sale_price" json:"sale_price"`
	StockQuantity int                 `db:"stock_quantity" json:"stock_quantity"`
	IsActive      bool                `db:"is_active" json:"is_active"`
	PrimaryImage  string              `db:"primary_image" json:"primary_image"`
	DateAdded     string              `db:"date_added" json:"date_added"`
}

type CartLine struct {
	ProductID string          `db:"product_id" json:"product_id"`
	StoreID   string          `db:"store_id" json:"store_id"`
	Name      string          `db:"name" json:"name"`
	Quantity  int             `db:"quantity" json:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unit_price"`
	Subtotal  decimal.Decimal `db:"-" json:"subtotal"`
}

type Cart struct {
	Items []CartLine      `json:"items"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"item_count"`
}

// Page describes one page of a total-count paginated listing.
type Page struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

func NewPage(total, page, limit int) Page {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Page{Total: total, Page: page, Limit: limit, Pages: pages}
}
