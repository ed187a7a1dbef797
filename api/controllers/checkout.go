package controllers

import (
	"context"
	"net/http"

	"github.com/heatparts/storefront/api/responses"
	"github.com/heatparts/storefront/api/validators"
	"github.com/heatparts/storefront/internal/checkout"
	"github.com/heatparts/storefront/internal/checkout/pricing"
	"github.com/heatparts/storefront/internal/woocommerce"
	"github.com/heatparts/storefront/pkg/logger"
)

type CheckoutService interface {
	Totals(ctx context.Context) (pricing.Totals, error)
	StartPaymentSheet(ctx context.Context) (checkout.PaymentSheet, error)
	CompletePaymentSheet(ctx context.Context, orderID int64, intentID string) (woocommerce.Order, error)
	CancelPaymentSheet(ctx context.Context, orderID int64, reason string)
	StartWebCheckout(ctx context.Context) (checkout.WebCheckout, error)
	CompleteWebCheckout(ctx context.Context) error
}

func CheckoutTotals(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		totals, err := svc.Totals(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, totals.Display())
	}
}

func PaymentSheetStart(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sheet, err := svc.StartPaymentSheet(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, sheet)
	}
}

type completePaymentSheetRequest struct {
	OrderID         int64  `json:"order_id" validate:"required,min=1"`
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
}

func PaymentSheetComplete(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload completePaymentSheetRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.CompletePaymentSheet(r.Context(), payload.OrderID, payload.PaymentIntentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type cancelPaymentSheetRequest struct {
	OrderID int64  `json:"order_id" validate:"required,min=1"`
	Reason  string `json:"reason" validate:"omitempty,max=200"`
}

func PaymentSheetCancel(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload cancelPaymentSheetRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		svc.CancelPaymentSheet(r.Context(), payload.OrderID, validators.SanitizeString(payload.Reason, 200))
		responses.WriteNoContent(w)
	}
}

func WebCheckoutStart(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.StartWebCheckout(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func WebCheckoutComplete(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.CompleteWebCheckout(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
