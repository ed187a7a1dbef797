package woocommerce

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart mirrors the platform's session cart.
type Cart struct {
	Items      []CartLine `json:"items"`
	ItemsCount int        `json:"items_count"`
	Totals     CartTotals `json:"totals"`
}

// IsEmpty reports whether the cart holds no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || (len(c.Items) == 0 && c.ItemsCount == 0)
}

// ProductQuantities sums line quantities per product id.
func (c *Cart) ProductQuantities() map[int64]int {
	out := map[int64]int{}
	if c == nil {
		return out
	}
	for _, line := range c.Items {
		out[line.ProductID] += line.Quantity
	}
	return out
}

// CartLine is a single remote cart line.
type CartLine struct {
	Key       string          `json:"key"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CartTotals holds the platform-computed totals in major units.
type CartTotals struct {
	Items    decimal.Decimal `json:"items"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
	Currency string          `json:"currency"`
}

// Customer is a platform customer account.
type Customer struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// CustomerInput creates a customer account.
type CustomerInput struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Order statuses used by the checkout flow.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusCancelled  = "cancelled"
)

// Order is a platform order as shown in order history.
type Order struct {
	ID            int64           `json:"id"`
	Number        string          `json:"number"`
	Status        string          `json:"status"`
	Currency      string          `json:"currency"`
	CreatedAt     *time.Time      `json:"created_at,omitempty"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	CustomerID    int64           `json:"customer_id"`
	Total         decimal.Decimal `json:"total"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	ShippingTotal decimal.Decimal `json:"shipping_total"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Lines         []OrderLine     `json:"lines"`
}

// OrderLine is one product line on an order.
type OrderLine struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
}

// OrderInput creates an order.
type OrderInput struct {
	CustomerID         int64           `json:"customer_id"`
	Status             string          `json:"status"`
	SetPaid            bool            `json:"set_paid"`
	PaymentMethod      string          `json:"payment_method"`
	PaymentMethodTitle string          `json:"payment_method_title"`
	Currency           string          `json:"currency,omitempty"`
	LineItems          []OrderLineItem `json:"line_items"`
	ShippingLines      []ShippingLine  `json:"shipping_lines,omitempty"`
	FeeLines           []FeeLine       `json:"fee_lines,omitempty"`
	MetaData           []MetaData      `json:"meta_data,omitempty"`
}

// OrderLineItem references a product and quantity on a new order.
type OrderLineItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// ShippingLine carries the flat delivery charge.
type ShippingLine struct {
	MethodID    string `json:"method_id"`
	MethodTitle string `json:"method_title"`
	Total       string `json:"total"`
}

// FeeLine carries client-computed charges such as VAT.
type FeeLine struct {
	Name      string `json:"name"`
	Total     string `json:"total"`
	TaxStatus string `json:"tax_status"`
}

// MetaData is a free-form key/value stored on the order.
type MetaData struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// OrderUpdate changes status and payment fields on an existing order.
type OrderUpdate struct {
	Status        string     `json:"status,omitempty"`
	SetPaid       *bool      `json:"set_paid,omitempty"`
	TransactionID string     `json:"transaction_id,omitempty"`
	MetaData      []MetaData `json:"meta_data,omitempty"`
}

// ProductFilter narrows a product listing.
type ProductFilter struct {
	Search      string
	SKU         string
	InStockOnly bool
	CategoryID  int64
	PerPage     int
}

// CategoryFilter narrows a category listing. ParentID -1 lists every category.
type CategoryFilter struct {
	ParentID int64
	PerPage  int
}

// Tag is a product tag.
type Tag struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}
