package woocommerce

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Raw response schemas. Every record is validated before it is mapped so
// callers never see a half-populated value.

type productRecord struct {
	ID               int64            `json:"id"`
	Name             string           `json:"name"`
	SKU              string           `json:"sku"`
	Permalink        string           `json:"permalink"`
	Price            string           `json:"price"`
	RegularPrice     string           `json:"regular_price"`
	StockStatus      string           `json:"stock_status"`
	Description      string           `json:"description"`
	ShortDescription string           `json:"short_description"`
	Images           []imageRecord    `json:"images"`
	Categories       []termRecord     `json:"categories"`
	Tags             []termRecord     `json:"tags"`
	Attributes       []attrRecord     `json:"attributes"`
	MetaData         []metaDataRecord `json:"meta_data"`
}

func (p productRecord) validate() error {
	if p.ID <= 0 {
		return fmt.Errorf("product id must be positive, got %d", p.ID)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product %d has no name", p.ID)
	}
	return nil
}

type imageRecord struct {
	Src string `json:"src"`
}

type termRecord struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type attrRecord struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

type metaDataRecord struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

type categoryRecord struct {
	ID     int64        `json:"id"`
	Name   string       `json:"name"`
	Slug   string       `json:"slug"`
	Parent int64        `json:"parent"`
	Count  int          `json:"count"`
	Image  *imageRecord `json:"image"`
}

func (c categoryRecord) validate() error {
	if c.ID <= 0 {
		return fmt.Errorf("category id must be positive, got %d", c.ID)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("category %d has no name", c.ID)
	}
	return nil
}

type tagRecord struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

type customerRecord struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

func (c customerRecord) validate() error {
	if c.ID <= 0 {
		return fmt.Errorf("customer id must be positive, got %d", c.ID)
	}
	return nil
}

type orderRecord struct {
	ID            int64             `json:"id"`
	Number        string            `json:"number"`
	Status        string            `json:"status"`
	Currency      string            `json:"currency"`
	DateCreated   string            `json:"date_created_gmt"`
	Total         string            `json:"total"`
	TotalTax      string            `json:"total_tax"`
	ShippingTotal string            `json:"shipping_total"`
	CustomerID    int64             `json:"customer_id"`
	SetPaid       bool              `json:"set_paid"`
	DatePaid      *string           `json:"date_paid_gmt"`
	TransactionID string            `json:"transaction_id"`
	LineItems     []orderLineRecord `json:"line_items"`
}

func (o orderRecord) validate() error {
	if o.ID <= 0 {
		return fmt.Errorf("order id must be positive, got %d", o.ID)
	}
	return nil
}

type orderLineRecord struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	SKU       string  `json:"sku"`
	Quantity  int     `json:"quantity"`
	Total     string  `json:"total"`
	Price     float64 `json:"price"`
}

type cartRecord struct {
	Items      []cartItemRecord `json:"items"`
	ItemsCount int              `json:"items_count"`
	Totals     cartTotalsRecord `json:"totals"`
}

func (c cartRecord) validate() error {
	for i, item := range c.Items {
		if strings.TrimSpace(item.Key) == "" {
			return fmt.Errorf("cart line %d has no key", i)
		}
		if item.ID <= 0 {
			return fmt.Errorf("cart line %q has invalid product id %d", item.Key, item.ID)
		}
		if item.Quantity < 0 {
			return fmt.Errorf("cart line %q has negative quantity", item.Key)
		}
	}
	return nil
}

type cartItemRecord struct {
	Key      string           `json:"key"`
	ID       int64            `json:"id"`
	Quantity int              `json:"quantity"`
	Name     string           `json:"name"`
	SKU      string           `json:"sku"`
	Prices   cartPricesRecord `json:"prices"`
}

type cartPricesRecord struct {
	Price             string `json:"price"`
	CurrencyMinorUnit int    `json:"currency_minor_unit"`
}

type cartTotalsRecord struct {
	TotalItems        string `json:"total_items"`
	TotalShipping     string `json:"total_shipping"`
	TotalTax          string `json:"total_tax"`
	TotalPrice        string `json:"total_price"`
	CurrencyCode      string `json:"currency_code"`
	CurrencyMinorUnit int    `json:"currency_minor_unit"`
}

// parseMoney reads a major-unit decimal string such as "12.50".
func parseMoney(raw string) (decimal.NullDecimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.NullDecimal{}, nil
	}
	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return decimal.NewNullDecimal(value), nil
}

// parseMinorUnits reads a Store API amount expressed in minor units ("1250" with unit 2).
func parseMinorUnits(raw string, minorUnit int) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, nil
	}
	n, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid minor-unit amount %q: %w", raw, err)
	}
	return decimal.NewFromInt(n).Shift(int32(-minorUnit)), nil
}
