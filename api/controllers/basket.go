package controllers

import (
	"context"
	"net/http"

	"github.com/heatparts/storefront/api/responses"
	"github.com/heatparts/storefront/api/validators"
	"github.com/heatparts/storefront/internal/basket"
	"github.com/heatparts/storefront/pkg/logger"
	"github.com/heatparts/storefront/pkg/types"
)

type BasketService interface {
	Summary(ctx context.Context) (basket.Summary, error)
	Add(ctx context.Context, part types.Part, quantity int) (basket.Item, error)
	UpdateQuantity(ctx context.Context, productID int64, quantity int) (basket.Item, bool, error)
	Remove(ctx context.Context, productID int64) error
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}

type PartLookup interface {
	Product(ctx context.Context, id int64) (types.Part, error)
}

func BasketGet(svc BasketService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Summary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

type basketCountResponse struct {
	Count int64 `json:"count"`
}

func BasketCount(svc BasketService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := svc.Count(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, basketCountResponse{Count: n})
	}
}

type addToBasketRequest struct {
	ProductID int64 `json:"product_id" validate:"required,min=1"`
	Quantity  int   `json:"quantity" validate:"required,min=1,max=999"`
}

// BasketAdd adds a part by id. The part snapshot (name, price, image) is
// read from the catalog, not trusted from the client.
func BasketAdd(svc BasketService, parts PartLookup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addToBasketRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		part, err := parts.Product(r.Context(), payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Add(r.Context(), part, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,max=999"`
}

// BasketUpdate sets a line quantity; zero removes the line.
func BasketUpdate(svc BasketService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, kept, err := svc.UpdateQuantity(r.Context(), id, *payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !kept {
			responses.WriteNoContent(w)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func BasketRemove(svc BasketService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Remove(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func BasketClear(svc BasketService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Clear(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
