package woocommerce

import "strings"

// UnknownManufacturer is used when no known brand can be inferred.
const UnknownManufacturer = "Unknown"

// KnownManufacturers are the boiler brands the storefront groups parts under.
var KnownManufacturers = []string{
	"Alpha",
	"Ariston",
	"Baxi",
	"Biasi",
	"Ferroli",
	"Glow-worm",
	"Grant",
	"Ideal",
	"Intergas",
	"Keston",
	"Main",
	"Potterton",
	"Ravenheat",
	"Remeha",
	"Saunier Duval",
	"Vaillant",
	"Viessmann",
	"Vokera",
	"Worcester Bosch",
}

// MatchManufacturer returns the canonical brand name for a term, if it is one.
func MatchManufacturer(term string) (string, bool) {
	needle := canonicalBrand(term)
	if needle == "" {
		return "", false
	}
	for _, brand := range KnownManufacturers {
		if canonicalBrand(brand) == needle {
			return brand, true
		}
	}
	// "Worcester" and "Bosch" tags both mean Worcester Bosch.
	if needle == "worcester" || needle == "bosch" {
		return "Worcester Bosch", true
	}
	return "", false
}

func canonicalBrand(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// inferManufacturer checks tags, then categories, then a brand attribute.
func inferManufacturer(p productRecord) string {
	for _, tag := range p.Tags {
		if brand, ok := MatchManufacturer(tag.Name); ok {
			return brand
		}
	}
	for _, cat := range p.Categories {
		if brand, ok := MatchManufacturer(cat.Name); ok {
			return brand
		}
	}
	for _, attr := range p.Attributes {
		name := strings.ToLower(strings.TrimSpace(attr.Name))
		if name != "manufacturer" && name != "brand" {
			continue
		}
		for _, opt := range attr.Options {
			if brand, ok := MatchManufacturer(opt); ok {
				return brand
			}
			if trimmed := strings.TrimSpace(opt); trimmed != "" {
				return trimmed
			}
		}
	}
	return UnknownManufacturer
}
