package woocommerce

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/heatparts/storefront/pkg/config"
	pkgerrors "github.com/heatparts/storefront/pkg/errors"
	"github.com/heatparts/storefront/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(config.StoreConfig{
		BaseURL:        srv.URL,
		ConsumerKey:    "ck_test",
		ConsumerSecret: "cs_test",
		PerPage:        25,
	}, opts...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(config.StoreConfig{BaseURL: "https://shop.test"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestListProductsSendsFiltersAndSignsRequest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wp-json/wc/v3/products" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "ck_test" || pass != "cs_test" {
			t.Fatalf("missing basic auth")
		}
		q := r.URL.Query()
		if q.Get("search") != "pump" || q.Get("sku") != "7-0123" || q.Get("stock_status") != "instock" {
			t.Fatalf("unexpected query %v", q)
		}
		if q.Get("category") != "12" || q.Get("per_page") != "25" {
			t.Fatalf("unexpected paging/category %v", q)
		}
		_, _ = io.WriteString(w, `[
			{"id":7,"name":"Pump","sku":"7-0123","price":"84.50","stock_status":"instock"},
			{"id":0,"name":"broken"},
			{"id":8,"name":"","sku":"x"}
		]`)
	})

	parts, err := client.ListProducts(context.Background(), ProductFilter{
		Search:      "pump",
		SKU:         "7-0123",
		InStockOnly: true,
		CategoryID:  12,
	})
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(parts) != 1 || parts[0].ID != 7 || !parts[0].InStock {
		t.Fatalf("unexpected parts %+v", parts)
	}
	if parts[0].Price.Decimal.String() != "84.5" {
		t.Fatalf("unexpected price %s", parts[0].Price.Decimal)
	}
}

func TestGetProductNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"code":"woocommerce_rest_product_invalid_id","message":"Invalid ID.","data":{"status":404}}`)
	})

	_, err := client.GetProduct(context.Background(), 99)
	if !pkgerrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServerErrorMapsToDependencyAndRecordsFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewRemoteCallMetrics(reg)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, WithMetrics(m))

	_, err := client.ListCategories(context.Background(), CategoryFilter{ParentID: -1})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if got := counterValue(families, "remote_call_failure", "categories.list"); got != 1 {
		t.Fatalf("expected one recorded failure, got %v", got)
	}
}

func counterValue(families []*dto.MetricFamily, name, endpoint string) float64 {
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "endpoint" && label.GetValue() == endpoint {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestAddItemPassesTokenAndReturnsRotatedToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wp-json/wc/store/v1/cart/add-item" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get(CartTokenHeader) != "tok-1" {
			t.Fatalf("expected presented token, got %q", r.Header.Get(CartTokenHeader))
		}
		if _, _, ok := r.BasicAuth(); ok {
			t.Fatalf("store api calls must not be signed")
		}
		var body addItemRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.ID != 7 || body.Quantity != 2 {
			t.Fatalf("unexpected body %+v", body)
		}
		w.Header().Set(CartTokenHeader, "tok-2")
		_, _ = io.WriteString(w, `{
			"items":[{"key":"abc","id":7,"quantity":2,"name":"Pump","prices":{"price":"8450","currency_minor_unit":2}}],
			"items_count":2,
			"totals":{"total_items":"16900","total_price":"16900","currency_code":"GBP","currency_minor_unit":2}
		}`)
	})

	cart, token, err := client.AddItem(context.Background(), "tok-1", 7, 2)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if token != "tok-2" {
		t.Fatalf("expected rotated token, got %q", token)
	}
	if len(cart.Items) != 1 || cart.Items[0].Key != "abc" || cart.ItemsCount != 2 {
		t.Fatalf("unexpected cart %+v", cart)
	}
	if cart.Items[0].UnitPrice.StringFixed(2) != "84.50" || cart.Totals.Total.StringFixed(2) != "169.00" {
		t.Fatalf("unexpected amounts %+v", cart)
	}
}

func TestCartRejectsLineWithoutKey(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"items":[{"key":"","id":7,"quantity":1}]}`)
	})

	_, _, err := client.GetCart(context.Background(), "")
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error for invalid cart, got %v", err)
	}
}

func TestRemoveItemInvalidKeyIsNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"code":"woocommerce_rest_cart_invalid_key","message":"Cart item no longer exists.","data":{"status":409}}`)
	})

	_, _, err := client.RemoveItem(context.Background(), "tok", "gone")
	if !pkgerrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateOrderAndUpdate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/wp-json/wc/v3/orders":
			var input OrderInput
			if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if input.CustomerID != 42 || len(input.LineItems) != 1 || input.Status != OrderStatusPending {
				t.Fatalf("unexpected order input %+v", input)
			}
			_, _ = io.WriteString(w, `{"id":501,"number":"501","status":"pending","total":"30.00","date_created_gmt":"2026-10-16T09:30:00","customer_id":42}`)
		case r.Method == http.MethodPut && r.URL.Path == "/wp-json/wc/v3/orders/501":
			_, _ = io.WriteString(w, `{"id":501,"status":"processing","total":"30.00","date_paid_gmt":"2026-10-16T09:31:00","transaction_id":"pi_1"}`)
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	order, err := client.CreateOrder(context.Background(), OrderInput{
		CustomerID: 42,
		Status:     OrderStatusPending,
		LineItems:  []OrderLineItem{{ProductID: 7, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.ID != 501 || order.CreatedAt == nil || order.CreatedAt.Hour() != 9 {
		t.Fatalf("unexpected order %+v", order)
	}

	paid := true
	updated, err := client.UpdateOrder(context.Background(), 501, OrderUpdate{Status: OrderStatusProcessing, SetPaid: &paid, TransactionID: "pi_1"})
	if err != nil {
		t.Fatalf("update order: %v", err)
	}
	if updated.Status != OrderStatusProcessing || updated.PaidAt == nil || updated.Number != "501" {
		t.Fatalf("unexpected updated order %+v", updated)
	}
}

func TestPreflightCheckoutSendsToken(t *testing.T) {
	var seen string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(CartTokenHeader)
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, "<html></html>")
	})

	if err := client.PreflightCheckout(context.Background(), client.BaseURL()+"/checkout/", "tok-9"); err != nil {
		t.Fatalf("preflight: %v", err)
	}
	if seen != "tok-9" {
		t.Fatalf("expected token header, got %q", seen)
	}
}

func TestUnavailableClientFailsWithConfigurationError(t *testing.T) {
	_, cfgErr := NewClient(config.StoreConfig{})
	client := Unavailable(cfgErr)

	_, err := client.ListProducts(context.Background(), ProductFilter{Search: "valve"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	_, _, err = client.GetCart(context.Background(), "")
	if !pkgerrors.IsCode(err, pkgerrors.CodeConfiguration) {
		t.Fatalf("expected configuration error from cart call, got %v", err)
	}
}

func TestIsTokenRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"code":"woocommerce_rest_cart_token_invalid","message":"Invalid token.","data":{"status":401}}`)
	})

	_, _, err := client.GetCart(context.Background(), "expired")
	if !IsTokenRejected(err) {
		t.Fatalf("expected token rejection, got %v", err)
	}
	if IsTokenRejected(pkgerrors.New(pkgerrors.CodeDependency, "down")) {
		t.Fatal("plain dependency errors are not token rejections")
	}
}
