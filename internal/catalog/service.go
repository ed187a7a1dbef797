package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/heatparts/storefront/internal/woocommerce"
	pkgerrors "github.com/heatparts/storefront/pkg/errors"
	"github.com/heatparts/storefront/pkg/types"
)

const manufacturersKey = "all"

// Source is the remote catalog.
type Source interface {
	ListProducts(ctx context.Context, filter woocommerce.ProductFilter) ([]types.Part, error)
	GetProduct(ctx context.Context, id int64) (types.Part, error)
	ListCategories(ctx context.Context, filter woocommerce.CategoryFilter) ([]types.Category, error)
	ListTags(ctx context.Context) ([]woocommerce.Tag, error)
}

// Manufacturer is a boiler brand that has parts in the catalog.
type Manufacturer struct {
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	TagID     int64  `json:"tag_id"`
	PartCount int    `json:"part_count"`
}

// Service answers catalog browsing queries.
type Service struct {
	source Source
	cache  *Cache
}

// NewService builds the catalog service over a shared cache.
func NewService(source Source, c *Cache) (*Service, error) {
	if source == nil {
		return nil, fmt.Errorf("catalog source required")
	}
	if c == nil {
		return nil, fmt.Errorf("catalog cache required")
	}
	return &Service{source: source, cache: c}, nil
}

// ProductQuery filters a product listing.
type ProductQuery struct {
	CategoryID  int64
	InStockOnly bool
	PerPage     int
}

// Products lists parts, optionally within a category.
func (s *Service) Products(ctx context.Context, q ProductQuery) ([]types.Part, error) {
	if q.CategoryID < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id must not be negative")
	}
	return s.source.ListProducts(ctx, woocommerce.ProductFilter{
		CategoryID:  q.CategoryID,
		InStockOnly: q.InStockOnly,
		PerPage:     q.PerPage,
	})
}

// Product fetches a part by id.
func (s *Service) Product(ctx context.Context, id int64) (types.Part, error) {
	return s.source.GetProduct(ctx, id)
}

// ProductBySKU returns the part whose part number matches sku exactly.
func (s *Service) ProductBySKU(ctx context.Context, sku string) (types.Part, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return types.Part{}, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	parts, err := s.source.ListProducts(ctx, woocommerce.ProductFilter{SKU: sku})
	if err != nil {
		return types.Part{}, err
	}
	for _, p := range parts {
		if strings.EqualFold(p.PartNumber, sku) {
			return p, nil
		}
	}
	return types.Part{}, pkgerrors.New(pkgerrors.CodeNotFound, "no part with that part number").
		WithDetails(map[string]any{"sku": sku})
}

// Categories lists categories under parent (0 for top level, -1 for all).
func (s *Service) Categories(ctx context.Context, parent int64) ([]types.Category, error) {
	return s.cache.categories.GetOrLoad(ctx, parent, func(ctx context.Context) ([]types.Category, error) {
		return s.source.ListCategories(ctx, woocommerce.CategoryFilter{ParentID: parent})
	})
}

// Manufacturers lists the known boiler brands present as product tags.
func (s *Service) Manufacturers(ctx context.Context) ([]Manufacturer, error) {
	return s.cache.manufacturers.GetOrLoad(ctx, manufacturersKey, func(ctx context.Context) ([]Manufacturer, error) {
		tags, err := s.source.ListTags(ctx)
		if err != nil {
			return nil, err
		}

		byName := map[string]Manufacturer{}
		for _, tag := range tags {
			brand, ok := woocommerce.MatchManufacturer(tag.Name)
			if !ok {
				continue
			}
			m := byName[brand]
			if m.Name == "" {
				m = Manufacturer{Name: brand, Slug: tag.Slug, TagID: tag.ID}
			}
			m.PartCount += tag.Count
			byName[brand] = m
		}

		out := make([]Manufacturer, 0, len(byName))
		for _, m := range byName {
			out = append(out, m)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return out, nil
	})
}

// Appliances lists the appliance models filed under a parent category.
func (s *Service) Appliances(ctx context.Context, parent int64) ([]types.Appliance, error) {
	if parent <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "parent category id must be positive")
	}
	return s.cache.appliances.GetOrLoad(ctx, parent, func(ctx context.Context) ([]types.Appliance, error) {
		cats, err := s.Categories(ctx, parent)
		if err != nil {
			return nil, err
		}
		parentBrand := s.parentBrand(ctx, parent)

		out := make([]types.Appliance, 0, len(cats))
		for _, c := range cats {
			brand := brandPrefix(c.Name)
			if brand == "" {
				brand = parentBrand
			}
			out = append(out, types.Appliance{
				ID:           c.ID,
				Name:         c.Name,
				Slug:         c.Slug,
				Manufacturer: brand,
				PartCount:    c.Count,
				ImageURL:     c.ImageURL,
			})
		}
		return out, nil
	})
}

// parentBrand looks the parent up among all categories; failures fall back to Unknown.
func (s *Service) parentBrand(ctx context.Context, parent int64) string {
	all, err := s.Categories(ctx, -1)
	if err != nil {
		return woocommerce.UnknownManufacturer
	}
	for _, c := range all {
		if c.ID != parent {
			continue
		}
		if brand, ok := woocommerce.MatchManufacturer(c.Name); ok {
			return brand
		}
		if brand := brandPrefix(c.Name); brand != "" {
			return brand
		}
	}
	return woocommerce.UnknownManufacturer
}

// brandPrefix matches the first one or two words of name against the known brands.
func brandPrefix(name string) string {
	words := strings.Fields(name)
	for n := 2; n >= 1; n-- {
		if len(words) < n {
			continue
		}
		if brand, ok := woocommerce.MatchManufacturer(strings.Join(words[:n], " ")); ok {
			return brand
		}
	}
	return ""
}

// Refresh drops cached lookups so the next read hits the platform.
func (s *Service) Refresh() {
	s.cache.Purge()
}
