package controllers

import (
	"context"
	"net/http"

	"github.com/heatparts/storefront/api/responses"
	"github.com/heatparts/storefront/internal/woocommerce"
	"github.com/heatparts/storefront/pkg/db/models"
	"github.com/heatparts/storefront/pkg/logger"
)

type CartService interface {
	GetCart(ctx context.Context) (*woocommerce.Cart, error)
	SyncBasket(ctx context.Context, items []models.BasketItem) (*woocommerce.Cart, error)
	ClearCart(ctx context.Context) error
}

type BasketItems interface {
	Items(ctx context.Context) ([]models.BasketItem, error)
}

// CartGet returns the remote cart for the stored token.
func CartGet(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cart, err := svc.GetCart(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

// CartSync rebuilds the remote cart from the local basket.
func CartSync(svc CartService, items BasketItems, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := items.Items(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cart, err := svc.SyncBasket(r.Context(), rows)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

// CartClear empties the remote cart and forgets the token.
func CartClear(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.ClearCart(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
