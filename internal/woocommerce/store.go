package woocommerce

import (
	"context"
	"net/http"
	"strings"

	pkgerrors "github.com/heatparts/storefront/pkg/errors"
)

// Store API calls are session scoped. Each returns the Cart-Token the
// platform sent back, which may differ from the one presented.

type addItemRequest struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"quantity"`
}

type updateItemRequest struct {
	Key      string `json:"key"`
	Quantity int    `json:"quantity"`
}

type removeItemRequest struct {
	Key string `json:"key"`
}

// GetCart fetches the cart. An empty token starts a new session.
func (c *Client) GetCart(ctx context.Context, token string) (*Cart, string, error) {
	return c.cartCall(ctx, call{
		endpoint:  "cart.get",
		method:    http.MethodGet,
		url:       c.storeURL("cart"),
		cartToken: token,
	})
}

// AddItem adds quantity of a product to the cart.
func (c *Client) AddItem(ctx context.Context, token string, productID int64, quantity int) (*Cart, string, error) {
	if productID <= 0 || quantity < 1 {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "product id and quantity must be positive")
	}
	return c.cartCall(ctx, call{
		endpoint:  "cart.add_item",
		method:    http.MethodPost,
		url:       c.storeURL("cart/add-item"),
		body:      addItemRequest{ID: productID, Quantity: quantity},
		cartToken: token,
	})
}

// UpdateItem sets the quantity of a cart line.
func (c *Client) UpdateItem(ctx context.Context, token, key string, quantity int) (*Cart, string, error) {
	if strings.TrimSpace(key) == "" || quantity < 0 {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "line key and non-negative quantity are required")
	}
	return c.cartCall(ctx, call{
		endpoint:  "cart.update_item",
		method:    http.MethodPost,
		url:       c.storeURL("cart/update-item"),
		body:      updateItemRequest{Key: key, Quantity: quantity},
		cartToken: token,
	})
}

// RemoveItem deletes a cart line.
func (c *Client) RemoveItem(ctx context.Context, token, key string) (*Cart, string, error) {
	if strings.TrimSpace(key) == "" {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "line key is required")
	}
	return c.cartCall(ctx, call{
		endpoint:  "cart.remove_item",
		method:    http.MethodPost,
		url:       c.storeURL("cart/remove-item"),
		body:      removeItemRequest{Key: key},
		cartToken: token,
	})
}

func (c *Client) cartCall(ctx context.Context, cl call) (*Cart, string, error) {
	var rec cartRecord
	header, err := c.do(ctx, cl, &rec)
	if err != nil {
		return nil, "", err
	}

	cart, err := mapCart(rec)
	if err != nil {
		return nil, "", invalidRecord("cart", err)
	}
	return cart, strings.TrimSpace(header.Get(CartTokenHeader)), nil
}
