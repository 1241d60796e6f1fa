package domain

import "github.com/shopspring/decimal"

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

const (
	PayCashOnDelivery = "cash_on_delivery"
	PayCard           = "card"
	PayOnline         = "online"
)

var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusDelivered, StatusCancelled},
}

// ParseOrderStatus accepts only the known status values.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch st := OrderStatus(s); st {
	case StatusPending, StatusProcessing, StatusDelivered, StatusCancelled:
		return st, true
	}
	return "", false
}

// CanTransition reports whether an order may move from one status to another.
// Delivered and cancelled are terminal.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Order struct {
	ID              string          `db:"order_id" json:"order_id"`
	UserID          string          `db:"user_id" json:"user_id"`
	StoreID         string          `db:"store_id" json:"store_id"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"total_amount"`
	Status          OrderStatus     `db:"status" json:"status"`
	PaymentStatus   string          `db:"payment_status" json:"payment_status"`
	PaymentMethod   string          `db:"payment_method" json:"payment_method"`
	CustomerName    string          `db:"customer_name" json:"customer_name"`
	ShippingAddress string          `db:"shipping_address" json:"shipping_address"`
	ShippingCity    string          `db:"shipping_city" json:"shipping_city"`
	ShippingPhone   string          `db:"shipping_phone" json:"shipping_phone"`
	OrderNotes      string          `db:"order_notes" json:"order_notes"`
	DateCreated     string          `db:"date_created" json:"date_created"`
	DateUpdated     string          `db:"date_updated" json:"date_updated"`
}

type OrderItem struct {
	ID          string          `db:"order_item_id" json:"order_item_id"`
	OrderID     string          `db:"order_id" json:"order_id"`
	Line        int             `db:"line_no" json:"line"`
	ProductID   string          `db:"product_id" json:"product_id"`
	ProductName string          `db:"product_name" json:"product_name"`
	Quantity    int             `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
	TotalPrice  decimal.Decimal `db:"total_price" json:"total_price"`
}

// OrderSummary is an order row in listings, joined with store and buyer names.
type OrderSummary struct {
	Order
	StoreName string `db:"store_name" json:"store_name"`
	BuyerName string `db:"buyer_name" json:"buyer_name"`
	ItemCount int    `db:"item_count" json:"item_count"`
}

type OrderDetail struct {
	Order
	StoreName  string      `db:"store_name" json:"store_name"`
	BuyerName  string      `db:"buyer_name" json:"buyer_name"`
	BuyerEmail string      `db:"buyer_email" json:"buyer_email"`
	StoreOwner string      `db:"store_owner" json:"-"`
	Items      []OrderItem `db:"-" json:"items"`
}

type OrderStats struct {
	TotalOrders  int             `json:"total_orders"`
	Pending      int             `json:"pending_orders"`
	Processing   int             `json:"processing_orders"`
	Delivered    int             `json:"delivered_orders"`
	Cancelled    int             `json:"cancelled_orders"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}
