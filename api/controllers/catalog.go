package controllers

import (
	"context"
	"net/http"

	"github.com/heatparts/storefront/api/responses"
	"github.com/heatparts/storefront/api/validators"
	"github.com/heatparts/storefront/internal/catalog"
	"github.com/heatparts/storefront/pkg/logger"
	"github.com/heatparts/storefront/pkg/types"
)

type CatalogService interface {
	Products(ctx context.Context, q catalog.ProductQuery) ([]types.Part, error)
	Product(ctx context.Context, id int64) (types.Part, error)
	ProductBySKU(ctx context.Context, sku string) (types.Part, error)
	Categories(ctx context.Context, parent int64) ([]types.Category, error)
	Manufacturers(ctx context.Context) ([]catalog.Manufacturer, error)
	Appliances(ctx context.Context, parent int64) ([]types.Appliance, error)
	Refresh()
}

// CatalogRefresh drops cached categories, manufacturers and appliances.
// POST /catalog/refresh, sent on pull-to-refresh.
func CatalogRefresh(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc.Refresh()
		responses.WriteNoContent(w)
	}
}

// CatalogProducts lists parts. GET /catalog/products?category=&in_stock=&per_page=
func CatalogProducts(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category, err := validators.ParseQueryInt(r, "category", 0, 0, 1<<31-1)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		perPage, err := validators.ParseQueryInt(r, "per_page", 0, 0, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		inStock, err := validators.ParseQueryBool(r, "in_stock", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		parts, err := svc.Products(r.Context(), catalog.ProductQuery{
			CategoryID:  int64(category),
			InStockOnly: inStock,
			PerPage:     perPage,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, parts)
	}
}

func CatalogProduct(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		part, err := svc.Product(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, part)
	}
}

func CatalogProductBySKU(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		part, err := svc.ProductBySKU(r.Context(), validators.SanitizeString(r.URL.Query().Get("sku"), maxQueryLength))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, part)
	}
}

// CatalogCategories lists categories; parent defaults to the top level.
func CatalogCategories(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parent, err := validators.ParseQueryInt(r, "parent", 0, -1, 1<<31-1)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cats, err := svc.Categories(r.Context(), int64(parent))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cats)
	}
}

func CatalogManufacturers(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.Manufacturers(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func CatalogAppliances(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parent, err := validators.ParsePathID(r, "categoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.Appliances(r.Context(), parent)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
