package controllers

import (
	"context"
	"net/http"

	"github.com/heatparts/storefront/api/responses"
	"github.com/heatparts/storefront/api/validators"
	"github.com/heatparts/storefront/internal/woocommerce"
	"github.com/heatparts/storefront/pkg/logger"
)

type OrdersService interface {
	List(ctx context.Context) ([]woocommerce.Order, error)
	Get(ctx context.Context, id int64) (woocommerce.Order, error)
}

func OrdersList(svc OrdersService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

func OrderGet(svc OrdersService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
