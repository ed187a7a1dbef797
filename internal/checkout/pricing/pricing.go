// Package pricing derives basket totals from unit prices, a flat delivery
// charge and a VAT rate. Amounts stay exact until they are displayed or
// converted to minor units for payment.
package pricing

import (
	"github.com/heatparts/storefront/pkg/config"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Rates are the externally configured pricing inputs.
type Rates struct {
	DeliveryCharge decimal.Decimal
	VATRate        decimal.Decimal // percent, 20 means 20%
}

// RatesFromConfig parses the configured delivery charge and VAT rate.
func RatesFromConfig(cfg config.PricingConfig) (Rates, error) {
	delivery, err := cfg.DeliveryCharge()
	if err != nil {
		return Rates{}, err
	}
	vat, err := cfg.VATRate()
	if err != nil {
		return Rates{}, err
	}
	return Rates{DeliveryCharge: delivery, VATRate: vat}, nil
}

// Line is one priced basket line. Lines without a price contribute nothing.
type Line struct {
	UnitPrice decimal.NullDecimal
	Quantity  int
}

// Totals are the derived checkout figures.
type Totals struct {
	ItemCount            int
	Subtotal             decimal.Decimal
	DeliveryCharge       decimal.Decimal
	SubtotalWithDelivery decimal.Decimal
	VATRate              decimal.Decimal
	VAT                  decimal.Decimal
	GrandTotal           decimal.Decimal
}

// Compute applies
//
//	subtotal             = Σ price × qty
//	subtotalWithDelivery = subtotal + delivery
//	vat                  = subtotalWithDelivery × rate / 100
//	grandTotal           = subtotalWithDelivery + vat
//
// without intermediate rounding.
func Compute(lines []Line, rates Rates) Totals {
	subtotal := decimal.Zero
	count := 0
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		count += line.Quantity
		if !line.UnitPrice.Valid {
			continue
		}
		subtotal = subtotal.Add(line.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	withDelivery := subtotal.Add(rates.DeliveryCharge)
	vat := withDelivery.Mul(rates.VATRate).Div(hundred)

	return Totals{
		ItemCount:            count,
		Subtotal:             subtotal,
		DeliveryCharge:       rates.DeliveryCharge,
		SubtotalWithDelivery: withDelivery,
		VATRate:              rates.VATRate,
		VAT:                  vat,
		GrandTotal:           withDelivery.Add(vat),
	}
}

// Display is Totals rendered with two decimal places.
type Display struct {
	ItemCount            int    `json:"item_count"`
	Subtotal             string `json:"subtotal"`
	DeliveryCharge       string `json:"delivery_charge"`
	SubtotalWithDelivery string `json:"subtotal_with_delivery"`
	VATRate              string `json:"vat_rate"`
	VAT                  string `json:"vat"`
	GrandTotal           string `json:"grand_total"`
}

// Display formats the totals for presentation.
func (t Totals) Display() Display {
	return Display{
		ItemCount:            t.ItemCount,
		Subtotal:             t.Subtotal.StringFixed(2),
		DeliveryCharge:       t.DeliveryCharge.StringFixed(2),
		SubtotalWithDelivery: t.SubtotalWithDelivery.StringFixed(2),
		VATRate:              t.VATRate.String(),
		VAT:                  t.VAT.StringFixed(2),
		GrandTotal:           t.GrandTotal.StringFixed(2),
	}
}

// MinorUnits converts a major-unit amount to integer minor units (pence),
// rounding half away from zero.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}
