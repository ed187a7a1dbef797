package woocommerce

import (
	"fmt"
	"strings"
	"time"

	"github.com/heatparts/storefront/pkg/types"
	"github.com/shopspring/decimal"
)

var (
	gcMetaKeys         = []string{"gc_numbers", "gc_number", "_gc_numbers", "_gc_number"}
	compatibleMetaKeys = []string{"compatible_with", "_compatible_with"}
)

func mapProduct(p productRecord) (types.Part, error) {
	if err := p.validate(); err != nil {
		return types.Part{}, err
	}

	price, err := parseMoney(p.Price)
	if err != nil {
		return types.Part{}, fmt.Errorf("product %d: %w", p.ID, err)
	}
	if !price.Valid {
		if price, err = parseMoney(p.RegularPrice); err != nil {
			return types.Part{}, fmt.Errorf("product %d: %w", p.ID, err)
		}
	}

	description := StripHTML(p.Description)
	if description == "" {
		description = StripHTML(p.ShortDescription)
	}

	part := types.Part{
		ID:             p.ID,
		PartNumber:     strings.TrimSpace(p.SKU),
		Name:           StripHTML(p.Name),
		Description:    description,
		Manufacturer:   inferManufacturer(p),
		Price:          price,
		InStock:        strings.EqualFold(p.StockStatus, "instock"),
		GCNumbers:      metaValues(p.MetaData, gcMetaKeys),
		CompatibleWith: metaValues(p.MetaData, compatibleMetaKeys),
		Permalink:      p.Permalink,
	}
	if part.Name == "" {
		part.Name = strings.TrimSpace(p.Name)
	}
	if cat := firstNonBrandCategory(p.Categories); cat != "" {
		part.Category = cat
	}
	for _, img := range p.Images {
		if src := strings.TrimSpace(img.Src); src != "" {
			part.ImageURLs = append(part.ImageURLs, src)
		}
	}
	if len(part.ImageURLs) > 0 {
		part.ImageURL = part.ImageURLs[0]
	}
	return part, nil
}

func firstNonBrandCategory(cats []termRecord) string {
	for _, c := range cats {
		if _, brand := MatchManufacturer(c.Name); brand {
			continue
		}
		if name := strings.TrimSpace(c.Name); name != "" {
			return name
		}
	}
	return ""
}

func metaValues(meta []metaDataRecord, keys []string) []string {
	for _, key := range keys {
		for _, m := range meta {
			if m.Key != key {
				continue
			}
			if values := ParseMultiValue(m.Value); len(values) > 0 {
				return values
			}
		}
	}
	return nil
}

func mapCategory(c categoryRecord) (types.Category, error) {
	if err := c.validate(); err != nil {
		return types.Category{}, err
	}
	out := types.Category{
		ID:       c.ID,
		Name:     StripHTML(c.Name),
		Slug:     c.Slug,
		ParentID: c.Parent,
		Count:    c.Count,
	}
	if c.Image != nil {
		out.ImageURL = strings.TrimSpace(c.Image.Src)
	}
	return out, nil
}

func mapCustomer(c customerRecord) (Customer, error) {
	if err := c.validate(); err != nil {
		return Customer{}, err
	}
	return Customer{ID: c.ID, Email: c.Email, Username: c.Username}, nil
}

func mapOrder(o orderRecord) (Order, error) {
	if err := o.validate(); err != nil {
		return Order{}, err
	}

	out := Order{
		ID:            o.ID,
		Number:        o.Number,
		Status:        o.Status,
		Currency:      o.Currency,
		CustomerID:    o.CustomerID,
		TransactionID: o.TransactionID,
	}
	if out.Number == "" {
		out.Number = fmt.Sprintf("%d", o.ID)
	}

	var err error
	if out.CreatedAt, err = parseGMT(o.DateCreated); err != nil {
		return Order{}, fmt.Errorf("order %d: %w", o.ID, err)
	}
	if o.DatePaid != nil {
		if out.PaidAt, err = parseGMT(*o.DatePaid); err != nil {
			return Order{}, fmt.Errorf("order %d: %w", o.ID, err)
		}
	}

	amounts := []struct {
		raw string
		dst *decimal.Decimal
	}{
		{o.Total, &out.Total},
		{o.TotalTax, &out.TotalTax},
		{o.ShippingTotal, &out.ShippingTotal},
	}
	for _, a := range amounts {
		v, err := parseMoney(a.raw)
		if err != nil {
			return Order{}, fmt.Errorf("order %d: %w", o.ID, err)
		}
		*a.dst = v.Decimal
	}

	for _, line := range o.LineItems {
		total, err := parseMoney(line.Total)
		if err != nil {
			return Order{}, fmt.Errorf("order %d line %d: %w", o.ID, line.ID, err)
		}
		out.Lines = append(out.Lines, OrderLine{
			ProductID: line.ProductID,
			Name:      line.Name,
			SKU:       line.SKU,
			Quantity:  line.Quantity,
			Total:     total.Decimal,
		})
	}
	return out, nil
}

// parseGMT reads the platform's timezone-less GMT timestamps.
func parseGMT(raw string) (*time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, trimmed, time.UTC); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid timestamp %q", raw)
}

func mapCart(c cartRecord) (*Cart, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	cart := &Cart{ItemsCount: c.ItemsCount, Items: make([]CartLine, 0, len(c.Items))}
	for _, item := range c.Items {
		price, err := parseMinorUnits(item.Prices.Price, item.Prices.CurrencyMinorUnit)
		if err != nil {
			return nil, fmt.Errorf("cart line %q: %w", item.Key, err)
		}
		cart.Items = append(cart.Items, CartLine{
			Key:       item.Key,
			ProductID: item.ID,
			Quantity:  item.Quantity,
			Name:      item.Name,
			SKU:       item.SKU,
			UnitPrice: price,
		})
	}
	if cart.ItemsCount == 0 {
		for _, line := range cart.Items {
			cart.ItemsCount += line.Quantity
		}
	}

	t := c.Totals
	cart.Totals.Currency = t.CurrencyCode
	fields := []struct {
		raw string
		dst *decimal.Decimal
	}{
		{t.TotalItems, &cart.Totals.Items},
		{t.TotalShipping, &cart.Totals.Shipping},
		{t.TotalTax, &cart.Totals.Tax},
		{t.TotalPrice, &cart.Totals.Total},
	}
	for _, f := range fields {
		v, err := parseMinorUnits(f.raw, t.CurrencyMinorUnit)
		if err != nil {
			return nil, fmt.Errorf("cart totals: %w", err)
		}
		*f.dst = v
	}
	return cart, nil
}
