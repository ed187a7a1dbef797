package cartsync

import (
	"context"
	"fmt"
	"sort"

	"github.com/heatparts/storefront/internal/carttoken"
	"github.com/heatparts/storefront/internal/woocommerce"
	"github.com/heatparts/storefront/pkg/db/models"
	pkgerrors "github.com/heatparts/storefront/pkg/errors"
	"github.com/heatparts/storefront/pkg/logger"
	"go.uber.org/multierr"
)

// CartAPI is the session-scoped Store API surface.
type CartAPI interface {
	GetCart(ctx context.Context, token string) (*woocommerce.Cart, string, error)
	AddItem(ctx context.Context, token string, productID int64, quantity int) (*woocommerce.Cart, string, error)
	UpdateItem(ctx context.Context, token, key string, quantity int) (*woocommerce.Cart, string, error)
	RemoveItem(ctx context.Context, token, key string) (*woocommerce.Cart, string, error)
}

// TokenManager owns the persisted cart token.
type TokenManager interface {
	Current(ctx context.Context) (carttoken.State, error)
	Observe(ctx context.Context, current carttoken.State, responseToken string) (carttoken.State, error)
	Clear(ctx context.Context) error
}

// KeyWriter records remote line keys against local basket lines.
type KeyWriter interface {
	SetCartItemKeys(ctx context.Context, keys map[int64]string) error
}

// ErrEmptyAfterSync is the message carried when a sync leaves the remote cart empty.
const ErrEmptyAfterSync = "sync completed but cart is empty"

// Service keeps the remote cart in step with the local basket.
type Service struct {
	api    CartAPI
	tokens TokenManager
	keys   KeyWriter
	logg   *logger.Logger
}

// NewService wires the synchronizer. keys may be nil.
func NewService(api CartAPI, tokens TokenManager, keys KeyWriter, logg *logger.Logger) (*Service, error) {
	if api == nil {
		return nil, fmt.Errorf("cart api required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{api: api, tokens: tokens, keys: keys, logg: logg}, nil
}

// SetKeyWriter attaches the basket after construction; the basket itself
// depends on this service.
func (s *Service) SetKeyWriter(keys KeyWriter) {
	s.keys = keys
}

// EnsureToken returns the persisted token without validating it. When none
// is stored it fetches the cart only to harvest a fresh token.
func (s *Service) EnsureToken(ctx context.Context) (carttoken.State, error) {
	state, err := s.tokens.Current(ctx)
	if err != nil {
		return carttoken.Absent(), err
	}
	if state.IsActive() {
		return state, nil
	}

	_, responseToken, err := s.api.GetCart(ctx, "")
	if err != nil {
		return carttoken.Absent(), err
	}
	state, err = s.tokens.Observe(ctx, state, responseToken)
	if err != nil {
		return carttoken.Absent(), err
	}
	if !state.IsActive() {
		return carttoken.Absent(), pkgerrors.New(pkgerrors.CodeDependency, "store did not issue a cart token")
	}
	return state, nil
}

type cartCall func(token string) (*woocommerce.Cart, string, error)

// withToken runs fn with the current token and persists the token it returns.
// A rejected token is discarded and the call retried once with a fresh one.
func (s *Service) withToken(ctx context.Context, fn cartCall) (*woocommerce.Cart, error) {
	state, err := s.EnsureToken(ctx)
	if err != nil {
		return nil, err
	}

	token, _ := state.Token()
	cart, responseToken, err := fn(token)
	if woocommerce.IsTokenRejected(err) {
		s.logg.WarnErr(ctx, "cart token rejected; starting a new session", err)
		if err := s.tokens.Clear(ctx); err != nil {
			return nil, err
		}
		if state, err = s.EnsureToken(ctx); err != nil {
			return nil, err
		}
		token, _ = state.Token()
		cart, responseToken, err = fn(token)
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.tokens.Observe(ctx, state, responseToken); err != nil {
		return nil, err
	}
	return cart, nil
}

// GetCart returns the remote cart. With no token stored the cart is empty
// and no call is made.
func (s *Service) GetCart(ctx context.Context) (*woocommerce.Cart, error) {
	state, err := s.tokens.Current(ctx)
	if err != nil {
		return nil, err
	}
	if !state.IsActive() {
		return &woocommerce.Cart{Items: []woocommerce.CartLine{}}, nil
	}
	return s.fetch(ctx)
}

func (s *Service) fetch(ctx context.Context) (*woocommerce.Cart, error) {
	return s.withToken(ctx, func(token string) (*woocommerce.Cart, string, error) {
		return s.api.GetCart(ctx, token)
	})
}

// AddItem adds quantity of a product to the remote cart.
func (s *Service) AddItem(ctx context.Context, productID int64, quantity int) (*woocommerce.Cart, error) {
	return s.withToken(ctx, func(token string) (*woocommerce.Cart, string, error) {
		return s.api.AddItem(ctx, token, productID, quantity)
	})
}

// UpdateItemQuantity sets a line's quantity; zero removes the line.
func (s *Service) UpdateItemQuantity(ctx context.Context, lineKey string, quantity int) (*woocommerce.Cart, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, lineKey)
	}
	return s.withToken(ctx, func(token string) (*woocommerce.Cart, string, error) {
		return s.api.UpdateItem(ctx, token, lineKey, quantity)
	})
}

// RemoveItem removes a line, then re-reads the cart and runs a full clear
// when nothing is left so no token outlives its cart.
func (s *Service) RemoveItem(ctx context.Context, lineKey string) (*woocommerce.Cart, error) {
	cart, err := s.withToken(ctx, func(token string) (*woocommerce.Cart, string, error) {
		return s.api.RemoveItem(ctx, token, lineKey)
	})
	if err != nil {
		return nil, err
	}

	current, err := s.fetch(ctx)
	if err != nil {
		s.logg.WarnErr(ctx, "cart re-read after removal failed", err)
		return cart, nil
	}
	if current.IsEmpty() {
		if err := s.ClearCart(ctx); err != nil {
			return nil, err
		}
	}
	return current, nil
}

// ClearCart removes every remote line and then deletes the token. The token
// is deleted even when the cart was already gone or removals failed.
func (s *Service) ClearCart(ctx context.Context) error {
	ctx = s.logg.WithOperation(ctx, "cart.clear")

	state, err := s.tokens.Current(ctx)
	if err != nil {
		return err
	}
	if token, ok := state.Token(); ok {
		cart, responseToken, err := s.api.GetCart(ctx, token)
		switch {
		case pkgerrors.IsNotFound(err):
		case err != nil:
			s.logg.WarnErr(ctx, "cart fetch before clear failed", err)
		default:
			if next, obsErr := s.tokens.Observe(ctx, state, responseToken); obsErr == nil {
				state = next
			}
			if err := s.removeLines(ctx, state, cart); err != nil {
				s.logg.WarnErr(ctx, "cart line removal failed", err)
			}
		}
	}

	return s.tokens.Clear(ctx)
}

// removeLines removes every line, following token rotations. Missing lines
// count as removed; other failures are collected and do not stop the batch.
func (s *Service) removeLines(ctx context.Context, state carttoken.State, cart *woocommerce.Cart) error {
	if cart == nil {
		return nil
	}
	var errs error
	for _, line := range cart.Items {
		token, _ := state.Token()
		_, responseToken, err := s.api.RemoveItem(ctx, token, line.Key)
		if err != nil {
			if !pkgerrors.IsNotFound(err) {
				errs = multierr.Append(errs, fmt.Errorf("remove line %s: %w", line.Key, err))
			}
			continue
		}
		next, err := s.tokens.Observe(ctx, state, responseToken)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		state = next
	}
	return errs
}

// mismatch describes product ids present on only one side.
type mismatch struct {
	missing []int64
	extra   []int64
}

func (m mismatch) empty() bool { return len(m.missing) == 0 && len(m.extra) == 0 }

func compare(items []models.BasketItem, cart *woocommerce.Cart) mismatch {
	local := map[int64]struct{}{}
	for _, item := range items {
		local[item.ProductID] = struct{}{}
	}
	remote := cart.ProductQuantities()

	var m mismatch
	for id := range local {
		if _, ok := remote[id]; !ok {
			m.missing = append(m.missing, id)
		}
	}
	for id := range remote {
		if _, ok := local[id]; !ok {
			m.extra = append(m.extra, id)
		}
	}
	sort.Slice(m.missing, func(i, j int) bool { return m.missing[i] < m.missing[j] })
	sort.Slice(m.extra, func(i, j int) bool { return m.extra[i] < m.extra[j] })
	return m
}

// SyncBasket replaces the remote cart's contents with the local basket.
// It fails with an integrity error when the result is empty or, after one
// clear-and-resync, still disagrees with the basket.
func (s *Service) SyncBasket(ctx context.Context, items []models.BasketItem) (*woocommerce.Cart, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "basket is empty")
	}
	ctx = s.logg.WithOperation(ctx, "cart.sync")

	cart, diff, err := s.syncOnce(ctx, items)
	if err != nil {
		return nil, err
	}
	if !diff.empty() {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"missing": diff.missing,
			"extra":   diff.extra,
		}), "remote cart does not match basket; clearing and resyncing")

		if err := s.ClearCart(ctx); err != nil {
			return nil, err
		}
		if cart, diff, err = s.syncOnce(ctx, items); err != nil {
			return nil, err
		}
		if !diff.empty() {
			return nil, pkgerrors.New(pkgerrors.CodeIntegrity, "remote cart does not match basket after resync").
				WithDetails(map[string]any{"missing": diff.missing, "extra": diff.extra})
		}
	}

	if s.keys != nil {
		keys := make(map[int64]string, len(cart.Items))
		for _, line := range cart.Items {
			keys[line.ProductID] = line.Key
		}
		if err := s.keys.SetCartItemKeys(ctx, keys); err != nil {
			s.logg.WarnErr(ctx, "store cart item keys failed", err)
		}
	}
	return cart, nil
}

func (s *Service) syncOnce(ctx context.Context, items []models.BasketItem) (*woocommerce.Cart, mismatch, error) {
	cart, err := s.fetch(ctx)
	if err != nil {
		return nil, mismatch{}, err
	}

	for attempt := 0; attempt < 2 && !cart.IsEmpty(); attempt++ {
		state, err := s.tokens.Current(ctx)
		if err != nil {
			return nil, mismatch{}, err
		}
		if err := s.removeLines(ctx, state, cart); err != nil {
			s.logg.WarnErr(ctx, "cart line removal failed", err)
		}
		if cart, err = s.fetch(ctx); err != nil {
			return nil, mismatch{}, err
		}
	}
	if !cart.IsEmpty() {
		s.logg.Warn(ctx, "cart still holds lines after removal retry")
	}

	// Each add may rotate the token; the token from the last add is authoritative.
	for _, item := range items {
		if cart, err = s.AddItem(ctx, item.ProductID, item.Quantity); err != nil {
			return nil, mismatch{}, err
		}
	}

	if cart.IsEmpty() {
		return nil, mismatch{}, pkgerrors.New(pkgerrors.CodeIntegrity, ErrEmptyAfterSync).
			WithDetails(map[string]any{"basket_lines": len(items)})
	}
	return cart, compare(items, cart), nil
}
