// Package checkout sequences the two ways a basket becomes an order: an
// in-app payment sheet backed by a payment intent, or a hand-off to the
// store's own web checkout carrying the cart token.
package checkout

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/heatparts/storefront/internal/carttoken"
	"github.com/heatparts/storefront/internal/checkout/pricing"
	"github.com/heatparts/storefront/internal/woocommerce"
	"github.com/heatparts/storefront/pkg/db/models"
	pkgerrors "github.com/heatparts/storefront/pkg/errors"
	"github.com/heatparts/storefront/pkg/logger"
	pkgstripe "github.com/heatparts/storefront/pkg/stripe"
	"github.com/stripe/stripe-go/v84"
)

const (
	paymentMethod      = "stripe"
	paymentMethodTitle = "Card"
	shippingMethodID   = "flat_rate"
	shippingTitle      = "Delivery"
	metaOrderID        = "order_id"
	metaIntentID       = "_payment_intent_id"
)

// Basket is the local basket as seen by checkout.
type Basket interface {
	Items(ctx context.Context) ([]models.BasketItem, error)
	Rates() pricing.Rates
	Clear(ctx context.Context) error
	ClearLocal(ctx context.Context) error
}

// Guests resolves the device's guest customer.
type Guests interface {
	EnsureGuest(ctx context.Context) (int64, error)
}

// Orders creates and updates remote orders.
type Orders interface {
	CreateOrder(ctx context.Context, input woocommerce.OrderInput) (woocommerce.Order, error)
	UpdateOrder(ctx context.Context, id int64, update woocommerce.OrderUpdate) (woocommerce.Order, error)
}

// CartSync pushes the basket into the remote cart.
type CartSync interface {
	SyncBasket(ctx context.Context, items []models.BasketItem) (*woocommerce.Cart, error)
}

// Tokens exposes the persisted cart token.
type Tokens interface {
	Current(ctx context.Context) (carttoken.State, error)
	Clear(ctx context.Context) error
}

// Preflighter primes the web checkout session with a cart token.
type Preflighter interface {
	PreflightCheckout(ctx context.Context, pageURL, token string) error
}

// PaymentSettings are the client-visible payment parameters.
type PaymentSettings struct {
	PublishableKey string
	Currency       string
}

// WebSettings control the web checkout hand-off.
type WebSettings struct {
	BaseURL   string
	Path      string
	Preflight bool
}

// ServiceParams groups the checkout dependencies. Payments may be nil when
// no payment secret is configured; the payment sheet then reports a
// configuration error.
type ServiceParams struct {
	Basket    Basket
	Guests    Guests
	Orders    Orders
	Cart      CartSync
	Tokens    Tokens
	Preflight Preflighter
	Payments  pkgstripe.PaymentIntents
	Payment   PaymentSettings
	Web       WebSettings
	Logger    *logger.Logger
}

type Service struct {
	basket    Basket
	guests    Guests
	orders    Orders
	cart      CartSync
	tokens    Tokens
	preflight Preflighter
	payments  pkgstripe.PaymentIntents
	payment   PaymentSettings
	web       WebSettings
	logg      *logger.Logger
}

func NewService(p ServiceParams) (*Service, error) {
	switch {
	case p.Basket == nil:
		return nil, fmt.Errorf("basket required")
	case p.Guests == nil:
		return nil, fmt.Errorf("guest customers required")
	case p.Orders == nil:
		return nil, fmt.Errorf("orders client required")
	case p.Cart == nil:
		return nil, fmt.Errorf("cart sync required")
	case p.Tokens == nil:
		return nil, fmt.Errorf("cart tokens required")
	case p.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}
	if p.Payment.Currency == "" {
		p.Payment.Currency = "gbp"
	}
	if p.Web.Path == "" {
		p.Web.Path = "/checkout/"
	}
	return &Service{
		basket:    p.Basket,
		guests:    p.Guests,
		orders:    p.Orders,
		cart:      p.Cart,
		tokens:    p.Tokens,
		preflight: p.Preflight,
		payments:  p.Payments,
		payment:   p.Payment,
		web:       p.Web,
		logg:      p.Logger,
	}, nil
}

// Totals prices the current basket.
func (s *Service) Totals(ctx context.Context) (pricing.Totals, error) {
	_, totals, err := s.load(ctx, false)
	return totals, err
}

func (s *Service) load(ctx context.Context, requireItems bool) ([]models.BasketItem, pricing.Totals, error) {
	items, err := s.basket.Items(ctx)
	if err != nil {
		return nil, pricing.Totals{}, err
	}
	if requireItems && len(items) == 0 {
		return nil, pricing.Totals{}, pkgerrors.New(pkgerrors.CodeValidation, "basket is empty")
	}
	lines := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, pricing.Line{UnitPrice: it.Price, Quantity: it.Quantity})
	}
	return items, pricing.Compute(lines, s.basket.Rates()), nil
}

// PaymentSheet is what the client needs to present a payment sheet.
type PaymentSheet struct {
	OrderID        int64           `json:"order_id"`
	OrderNumber    string          `json:"order_number"`
	IntentID       string          `json:"payment_intent_id"`
	ClientSecret   string          `json:"client_secret"`
	PublishableKey string          `json:"publishable_key"`
	Currency       string          `json:"currency"`
	AmountMinor    int64           `json:"amount_minor"`
	Totals         pricing.Display `json:"totals"`
}

// StartPaymentSheet creates a pending order for the basket and a payment
// intent for its grand total.
func (s *Service) StartPaymentSheet(ctx context.Context) (PaymentSheet, error) {
	ctx = s.logg.WithOperation(ctx, "checkout.payment_sheet.start")
	if s.payments == nil {
		return PaymentSheet{}, pkgerrors.New(pkgerrors.CodeConfiguration, "payments are not configured")
	}

	items, totals, err := s.load(ctx, true)
	if err != nil {
		return PaymentSheet{}, err
	}
	for _, it := range items {
		if !it.Price.Valid {
			return PaymentSheet{}, pkgerrors.New(pkgerrors.CodeValidation, "basket contains an unpriced item").
				WithDetails(map[string]any{"product_id": it.ProductID})
		}
	}

	customerID, err := s.guests.EnsureGuest(ctx)
	if err != nil {
		return PaymentSheet{}, err
	}

	order, err := s.orders.CreateOrder(ctx, s.orderInput(customerID, items, totals))
	if err != nil {
		return PaymentSheet{}, err
	}
	ctx = s.logg.WithField(ctx, "order_id", order.ID)

	amount := pricing.MinorUnits(totals.GrandTotal)
	intent, err := s.payments.Create(ctx, pkgstripe.IntentInput{
		AmountMinor: amount,
		Currency:    s.payment.Currency,
		Description: fmt.Sprintf("Order %s", orderNumber(order)),
		Metadata:    map[string]string{metaOrderID: strconv.FormatInt(order.ID, 10)},
	})
	if err != nil {
		s.cancelOrder(ctx, order.ID)
		return PaymentSheet{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment intent")
	}

	s.logg.Info(ctx, "payment sheet started")
	return PaymentSheet{
		OrderID:        order.ID,
		OrderNumber:    orderNumber(order),
		IntentID:       intent.ID,
		ClientSecret:   intent.ClientSecret,
		PublishableKey: s.payment.PublishableKey,
		Currency:       s.payment.Currency,
		AmountMinor:    amount,
		Totals:         totals.Display(),
	}, nil
}

func (s *Service) orderInput(customerID int64, items []models.BasketItem, totals pricing.Totals) woocommerce.OrderInput {
	lines := make([]woocommerce.OrderLineItem, 0, len(items))
	for _, it := range items {
		lines = append(lines, woocommerce.OrderLineItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return woocommerce.OrderInput{
		CustomerID:         customerID,
		Status:             woocommerce.OrderStatusPending,
		PaymentMethod:      paymentMethod,
		PaymentMethodTitle: paymentMethodTitle,
		Currency:           strings.ToUpper(s.payment.Currency),
		LineItems:          lines,
		ShippingLines: []woocommerce.ShippingLine{{
			MethodID:    shippingMethodID,
			MethodTitle: shippingTitle,
			Total:       totals.DeliveryCharge.StringFixed(2),
		}},
		FeeLines: []woocommerce.FeeLine{{
			Name:      fmt.Sprintf("VAT (%s%%)", totals.VATRate.String()),
			Total:     totals.VAT.StringFixed(2),
			TaxStatus: "none",
		}},
	}
}

func (s *Service) cancelOrder(ctx context.Context, orderID int64) {
	if _, err := s.orders.UpdateOrder(ctx, orderID, woocommerce.OrderUpdate{Status: woocommerce.OrderStatusCancelled}); err != nil {
		s.logg.WarnErr(ctx, "cancel orphaned order failed", err)
	}
}

// CompletePaymentSheet marks the order paid once the intent has succeeded.
func (s *Service) CompletePaymentSheet(ctx context.Context, orderID int64, intentID string) (woocommerce.Order, error) {
	ctx = s.logg.WithOperation(ctx, "checkout.payment_sheet.complete")
	if orderID <= 0 {
		return woocommerce.Order{}, pkgerrors.New(pkgerrors.CodeValidation, "order id must be positive")
	}
	intentID = strings.TrimSpace(intentID)
	if intentID == "" {
		return woocommerce.Order{}, pkgerrors.New(pkgerrors.CodeValidation, "payment intent id is required")
	}
	if s.payments == nil {
		return woocommerce.Order{}, pkgerrors.New(pkgerrors.CodeConfiguration, "payments are not configured")
	}
	ctx = s.logg.WithFields(ctx, map[string]any{"order_id": orderID, "payment_intent_id": intentID})

	intent, err := s.payments.Get(ctx, intentID)
	if err != nil {
		return woocommerce.Order{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read payment intent")
	}
	if ref, ok := intent.Metadata[metaOrderID]; ok && ref != strconv.FormatInt(orderID, 10) {
		return woocommerce.Order{}, pkgerrors.New(pkgerrors.CodeStateConflict, "payment intent belongs to another order")
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return woocommerce.Order{}, pkgerrors.New(pkgerrors.CodeStateConflict, "payment has not succeeded").
			WithDetails(map[string]any{"status": string(intent.Status)})
	}

	paid := true
	order, err := s.orders.UpdateOrder(ctx, orderID, woocommerce.OrderUpdate{
		Status:        woocommerce.OrderStatusProcessing,
		SetPaid:       &paid,
		TransactionID: intentID,
		MetaData:      []woocommerce.MetaData{{Key: metaIntentID, Value: intentID}},
	})
	if err != nil {
		return woocommerce.Order{}, err
	}

	if err := s.basket.Clear(ctx); err != nil {
		s.logg.WarnErr(ctx, "clear basket after payment failed", err)
	}
	s.logg.Info(ctx, "payment sheet completed")
	return order, nil
}

// CancelPaymentSheet records an aborted or failed sheet. The order is left
// as it is.
func (s *Service) CancelPaymentSheet(ctx context.Context, orderID int64, reason string) {
	ctx = s.logg.WithOperation(ctx, "checkout.payment_sheet.cancel")
	ctx = s.logg.WithFields(ctx, map[string]any{"order_id": orderID, "reason": reason})
	s.logg.Info(ctx, "payment sheet cancelled")
}

// WebCheckout is the hand-off to the store's checkout pages.
type WebCheckout struct {
	URL       string          `json:"url"`
	CartToken string          `json:"cart_token"`
	Bridged   bool            `json:"bridged"`
	Totals    pricing.Display `json:"totals"`
}

// StartWebCheckout syncs the basket into the remote cart, empties the local
// basket and returns the checkout URL carrying the cart token.
func (s *Service) StartWebCheckout(ctx context.Context) (WebCheckout, error) {
	ctx = s.logg.WithOperation(ctx, "checkout.web.start")
	items, totals, err := s.load(ctx, true)
	if err != nil {
		return WebCheckout{}, err
	}
	// A bad checkout URL must fail before the basket is touched.
	page, err := s.checkoutBase()
	if err != nil {
		return WebCheckout{}, err
	}
	if _, err := s.cart.SyncBasket(ctx, items); err != nil {
		return WebCheckout{}, err
	}

	state, err := s.tokens.Current(ctx)
	if err != nil {
		return WebCheckout{}, err
	}
	token, ok := state.Token()
	if !ok {
		return WebCheckout{}, pkgerrors.New(pkgerrors.CodeIntegrity, "no cart token after sync")
	}

	pageURL := withCartToken(page, token)

	if err := s.basket.ClearLocal(ctx); err != nil {
		s.logg.WarnErr(ctx, "clear local basket failed", err)
	}

	bridged := false
	if s.web.Preflight && s.preflight != nil {
		if err := s.preflight.PreflightCheckout(ctx, s.checkoutPage(), token); err != nil {
			s.logg.WarnErr(ctx, "checkout preflight failed", err)
		} else {
			bridged = true
		}
	}

	return WebCheckout{URL: pageURL, CartToken: token, Bridged: bridged, Totals: totals.Display()}, nil
}

// CompleteWebCheckout forgets the cart token once the web checkout is done.
func (s *Service) CompleteWebCheckout(ctx context.Context) error {
	ctx = s.logg.WithOperation(ctx, "checkout.web.complete")
	if err := s.tokens.Clear(ctx); err != nil {
		return err
	}
	s.logg.Info(ctx, "web checkout completed")
	return nil
}

func (s *Service) checkoutPage() string {
	return strings.TrimRight(s.web.BaseURL, "/") + "/" + strings.TrimLeft(s.web.Path, "/")
}

// checkoutBase parses the configured checkout page. It must be an absolute
// http(s) URL.
func (s *Service) checkoutBase() (*url.URL, error) {
	if strings.TrimSpace(s.web.BaseURL) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeConfiguration, "store base url is not configured")
	}
	u, err := url.Parse(s.checkoutPage())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConfiguration, err, "invalid checkout url")
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, pkgerrors.New(pkgerrors.CodeConfiguration, "checkout url must be absolute http(s)").
			WithDetails(map[string]any{"url": u.String()})
	}
	return u, nil
}

func withCartToken(page *url.URL, token string) string {
	u := *page
	q := u.Query()
	q.Set("cart_token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

func orderNumber(o woocommerce.Order) string {
	if o.Number != "" {
		return o.Number
	}
	return strconv.FormatInt(o.ID, 10)
}
