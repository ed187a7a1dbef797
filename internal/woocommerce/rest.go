package woocommerce

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	pkgerrors "github.com/heatparts/storefront/pkg/errors"
	"github.com/heatparts/storefront/pkg/types"
)

// ListProducts queries the signed products endpoint. Records that fail
// validation are skipped and logged.
func (c *Client) ListProducts(ctx context.Context, filter ProductFilter) ([]types.Part, error) {
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(c.pageSize(filter.PerPage)))
	query.Set("status", "publish")
	if s := strings.TrimSpace(filter.Search); s != "" {
		query.Set("search", s)
	}
	if sku := strings.TrimSpace(filter.SKU); sku != "" {
		query.Set("sku", sku)
	}
	if filter.InStockOnly {
		query.Set("stock_status", "instock")
	}
	if filter.CategoryID > 0 {
		query.Set("category", strconv.FormatInt(filter.CategoryID, 10))
	}

	var records []productRecord
	if _, err := c.do(ctx, call{
		endpoint: "products.list",
		method:   http.MethodGet,
		url:      c.restURL("products"),
		query:    query,
		signed:   true,
	}, &records); err != nil {
		return nil, err
	}

	parts := make([]types.Part, 0, len(records))
	for _, rec := range records {
		part, err := mapProduct(rec)
		if err != nil {
			c.warnSkipped(ctx, "product", err)
			continue
		}
		parts = append(parts, part)
	}
	return parts, nil
}

// GetProduct fetches a single product by id.
func (c *Client) GetProduct(ctx context.Context, id int64) (types.Part, error) {
	if id <= 0 {
		return types.Part{}, pkgerrors.New(pkgerrors.CodeValidation, "product id must be positive")
	}

	var rec productRecord
	if _, err := c.do(ctx, call{
		endpoint: "products.get",
		method:   http.MethodGet,
		url:      c.restURL(fmt.Sprintf("products/%d", id)),
		signed:   true,
	}, &rec); err != nil {
		return types.Part{}, err
	}

	part, err := mapProduct(rec)
	if err != nil {
		return types.Part{}, invalidRecord("product", err)
	}
	return part, nil
}

// ListCategories lists product categories, optionally under a parent.
func (c *Client) ListCategories(ctx context.Context, filter CategoryFilter) ([]types.Category, error) {
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(c.pageSize(filter.PerPage)))
	query.Set("hide_empty", "true")
	if filter.ParentID >= 0 {
		query.Set("parent", strconv.FormatInt(filter.ParentID, 10))
	}

	var records []categoryRecord
	if _, err := c.do(ctx, call{
		endpoint: "categories.list",
		method:   http.MethodGet,
		url:      c.restURL("products/categories"),
		query:    query,
		signed:   true,
	}, &records); err != nil {
		return nil, err
	}

	out := make([]types.Category, 0, len(records))
	for _, rec := range records {
		cat, err := mapCategory(rec)
		if err != nil {
			c.warnSkipped(ctx, "category", err)
			continue
		}
		out = append(out, cat)
	}
	return out, nil
}

// ListTags lists product tags.
func (c *Client) ListTags(ctx context.Context) ([]Tag, error) {
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(maxPerPage))
	query.Set("hide_empty", "true")

	var records []tagRecord
	if _, err := c.do(ctx, call{
		endpoint: "tags.list",
		method:   http.MethodGet,
		url:      c.restURL("products/tags"),
		query:    query,
		signed:   true,
	}, &records); err != nil {
		return nil, err
	}

	out := make([]Tag, 0, len(records))
	for _, rec := range records {
		if rec.ID <= 0 || strings.TrimSpace(rec.Name) == "" {
			c.warnSkipped(ctx, "tag", fmt.Errorf("tag %d has no name", rec.ID))
			continue
		}
		out = append(out, Tag{ID: rec.ID, Name: strings.TrimSpace(rec.Name), Slug: rec.Slug, Count: rec.Count})
	}
	return out, nil
}

// CreateCustomer registers a customer account.
func (c *Client) CreateCustomer(ctx context.Context, input CustomerInput) (Customer, error) {
	if strings.TrimSpace(input.Email) == "" {
		return Customer{}, pkgerrors.New(pkgerrors.CodeValidation, "customer email is required")
	}

	var rec customerRecord
	if _, err := c.do(ctx, call{
		endpoint: "customers.create",
		method:   http.MethodPost,
		url:      c.restURL("customers"),
		body:     input,
		signed:   true,
	}, &rec); err != nil {
		return Customer{}, err
	}

	customer, err := mapCustomer(rec)
	if err != nil {
		return Customer{}, invalidRecord("customer", err)
	}
	return customer, nil
}

// ListOrders returns a customer's orders, newest first.
func (c *Client) ListOrders(ctx context.Context, customerID int64) ([]Order, error) {
	if customerID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id must be positive")
	}

	query := url.Values{}
	query.Set("customer", strconv.FormatInt(customerID, 10))
	query.Set("per_page", strconv.Itoa(c.perPage))
	query.Set("orderby", "date")
	query.Set("order", "desc")

	var records []orderRecord
	if _, err := c.do(ctx, call{
		endpoint: "orders.list",
		method:   http.MethodGet,
		url:      c.restURL("orders"),
		query:    query,
		signed:   true,
	}, &records); err != nil {
		return nil, err
	}

	out := make([]Order, 0, len(records))
	for _, rec := range records {
		order, err := mapOrder(rec)
		if err != nil {
			c.warnSkipped(ctx, "order", err)
			continue
		}
		out = append(out, order)
	}
	return out, nil
}

// GetOrder fetches one order.
func (c *Client) GetOrder(ctx context.Context, id int64) (Order, error) {
	if id <= 0 {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, "order id must be positive")
	}
	var rec orderRecord
	if _, err := c.do(ctx, call{
		endpoint: "orders.get",
		method:   http.MethodGet,
		url:      c.restURL(fmt.Sprintf("orders/%d", id)),
		signed:   true,
	}, &rec); err != nil {
		return Order{}, err
	}
	return c.orderFrom(rec)
}

// CreateOrder creates an order.
func (c *Client) CreateOrder(ctx context.Context, input OrderInput) (Order, error) {
	if len(input.LineItems) == 0 {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one line item")
	}
	var rec orderRecord
	if _, err := c.do(ctx, call{
		endpoint: "orders.create",
		method:   http.MethodPost,
		url:      c.restURL("orders"),
		body:     input,
		signed:   true,
	}, &rec); err != nil {
		return Order{}, err
	}
	return c.orderFrom(rec)
}

// UpdateOrder applies status and payment changes to an order.
func (c *Client) UpdateOrder(ctx context.Context, id int64, update OrderUpdate) (Order, error) {
	if id <= 0 {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, "order id must be positive")
	}
	var rec orderRecord
	if _, err := c.do(ctx, call{
		endpoint: "orders.update",
		method:   http.MethodPut,
		url:      c.restURL(fmt.Sprintf("orders/%d", id)),
		body:     update,
		signed:   true,
	}, &rec); err != nil {
		return Order{}, err
	}
	return c.orderFrom(rec)
}

// PreflightCheckout requests a storefront page with the cart token so the web
// session picks up the cart before the shopper lands on it.
func (c *Client) PreflightCheckout(ctx context.Context, pageURL, token string) error {
	if strings.TrimSpace(token) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart token is required")
	}
	_, err := c.do(ctx, call{
		endpoint:  "checkout.preflight",
		method:    http.MethodGet,
		url:       pageURL,
		cartToken: token,
	}, nil)
	return err
}

func (c *Client) orderFrom(rec orderRecord) (Order, error) {
	order, err := mapOrder(rec)
	if err != nil {
		return Order{}, invalidRecord("order", err)
	}
	return order, nil
}

func (c *Client) pageSize(requested int) int {
	if requested > 0 {
		return normalizePerPage(requested)
	}
	return c.perPage
}

func invalidRecord(kind string, err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("store returned an invalid %s", kind)).
		WithDetails(map[string]any{"record": kind})
}
