package types

import (
	"github.com/shopspring/decimal"
)

// Part is the storefront's view of a catalog product.
type Part struct {
	ID             int64               `json:"id"`
	PartNumber     string              `json:"part_number"`
	Name           string              `json:"name"`
	Description    string              `json:"description,omitempty"`
	Manufacturer   string              `json:"manufacturer"`
	Category       string              `json:"category,omitempty"`
	Price          decimal.NullDecimal `json:"price"`
	InStock        bool                `json:"in_stock"`
	ImageURL       string              `json:"image_url,omitempty"`
	ImageURLs      []string            `json:"image_urls,omitempty"`
	GCNumbers      []string            `json:"gc_numbers,omitempty"`
	CompatibleWith []string            `json:"compatible_with,omitempty"`
	Permalink      string              `json:"permalink,omitempty"`
}

// PrimaryGCNumber returns the first GC code, or "" when the part has none.
func (p Part) PrimaryGCNumber() string {
	if len(p.GCNumbers) == 0 {
		return ""
	}
	return p.GCNumbers[0]
}

// Category mirrors a platform product category.
type Category struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	ParentID int64  `json:"parent_id"`
	Count    int    `json:"count"`
	ImageURL string `json:"image_url,omitempty"`
}

// Appliance is a boiler or heating appliance model that parts are grouped under.
type Appliance struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Manufacturer string `json:"manufacturer"`
	PartCount    int    `json:"part_count"`
	ImageURL     string `json:"image_url,omitempty"`
}
