package basket

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/heatparts/storefront/internal/checkout/pricing"
	"github.com/heatparts/storefront/internal/woocommerce"
	"github.com/heatparts/storefront/pkg/db/models"
	pkgerrors "github.com/heatparts/storefront/pkg/errors"
	"github.com/heatparts/storefront/pkg/logger"
	"github.com/heatparts/storefront/pkg/types"
)

// CartMirror forwards basket changes to the remote cart.
type CartMirror interface {
	AddItem(ctx context.Context, productID int64, quantity int) (*woocommerce.Cart, error)
	UpdateItemQuantity(ctx context.Context, lineKey string, quantity int) (*woocommerce.Cart, error)
	RemoveItem(ctx context.Context, lineKey string) (*woocommerce.Cart, error)
	ClearCart(ctx context.Context) error
}

// Item is a basket line as returned to callers.
type Item struct {
	ProductID    int64     `json:"id"`
	PartNumber   string    `json:"part_number"`
	Name         string    `json:"name"`
	Price        *string   `json:"price"`
	Quantity     int       `json:"quantity"`
	ImageURL     *string   `json:"image_url,omitempty"`
	Manufacturer string    `json:"manufacturer"`
	CartItemKey  *string   `json:"cart_item_key,omitempty"`
	AddedAt      time.Time `json:"added_at"`
}

// Summary is the basket with its derived totals.
type Summary struct {
	Items  []Item          `json:"items"`
	Totals pricing.Display `json:"totals"`
}

// Service owns the local basket. The local rows are authoritative; the remote
// cart is mirrored best-effort and its failures never fail a basket call.
type Service struct {
	repo   *Repository
	mirror CartMirror
	rates  pricing.Rates
	logg   *logger.Logger
	now    func() time.Time
}

// ServiceParams groups the basket service dependencies.
type ServiceParams struct {
	Repo   *Repository
	Mirror CartMirror
	Rates  pricing.Rates
	Logger *logger.Logger
	Now    func() time.Time
}

// NewService builds the basket service. Mirror may be nil.
func NewService(p ServiceParams) (*Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("basket repository required")
	}
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := p.Now
	if now == nil {
		now = time.Now
	}
	return &Service{repo: p.Repo, mirror: p.Mirror, rates: p.Rates, logg: p.Logger, now: now}, nil
}

// Rates returns the pricing inputs used for totals.
func (s *Service) Rates() pricing.Rates {
	return s.rates
}

// Add creates the line on first add, otherwise increases its quantity.
func (s *Service) Add(ctx context.Context, part types.Part, quantity int) (Item, error) {
	if quantity < 1 {
		return Item{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if part.ID <= 0 {
		return Item{}, pkgerrors.New(pkgerrors.CodeValidation, "product id must be positive")
	}
	if strings.TrimSpace(part.Name) == "" {
		return Item{}, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}

	existing, err := s.repo.Get(ctx, part.ID)
	switch {
	case err == nil:
		existing.Quantity += quantity
		if err := s.repo.SetQuantity(ctx, part.ID, existing.Quantity); err != nil {
			return Item{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update basket quantity")
		}
	case isNotFound(err):
		existing = &models.BasketItem{
			ProductID:    part.ID,
			PartNumber:   part.PartNumber,
			Name:         part.Name,
			Price:        part.Price,
			Quantity:     quantity,
			ImageURL:     optional(part.ImageURL),
			Manufacturer: part.Manufacturer,
			AddedAt:      s.now().UTC(),
		}
		if err := s.repo.Upsert(ctx, existing); err != nil {
			return Item{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert basket item")
		}
	default:
		return Item{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load basket item")
	}

	if s.mirror != nil {
		ctx := s.logg.WithOperation(ctx, "basket.add")
		cart, err := s.mirror.AddItem(ctx, part.ID, quantity)
		if err != nil {
			s.logg.WarnErr(ctx, "remote cart add failed", err)
		} else {
			existing.CartItemKey = s.recordLineKey(ctx, part.ID, cart)
		}
	}
	return toItem(*existing), nil
}

// UpdateQuantity sets a line's quantity. Zero or less removes the line and
// returns (Item{}, false, nil).
func (s *Service) UpdateQuantity(ctx context.Context, productID int64, quantity int) (Item, bool, error) {
	existing, err := s.repo.Get(ctx, productID)
	if isNotFound(err) {
		return Item{}, false, notInBasket(productID)
	}
	if err != nil {
		return Item{}, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load basket item")
	}

	if quantity <= 0 {
		return Item{}, false, s.remove(ctx, existing)
	}

	if err := s.repo.SetQuantity(ctx, productID, quantity); err != nil {
		return Item{}, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update basket quantity")
	}
	existing.Quantity = quantity

	if s.mirror != nil {
		ctx := s.logg.WithOperation(ctx, "basket.update_quantity")
		var cart *woocommerce.Cart
		if existing.CartItemKey != nil {
			cart, err = s.mirror.UpdateItemQuantity(ctx, *existing.CartItemKey, quantity)
			if pkgerrors.IsNotFound(err) {
				// stale key: the line is gone remotely, so add it afresh
				cart, err = s.mirror.AddItem(ctx, productID, quantity)
			}
		} else {
			cart, err = s.mirror.AddItem(ctx, productID, quantity)
		}
		if err != nil {
			s.logg.WarnErr(ctx, "remote cart quantity update failed", err)
		} else {
			existing.CartItemKey = s.recordLineKey(ctx, productID, cart)
		}
	}
	return toItem(*existing), true, nil
}

// Remove deletes a line.
func (s *Service) Remove(ctx context.Context, productID int64) error {
	existing, err := s.repo.Get(ctx, productID)
	if isNotFound(err) {
		return notInBasket(productID)
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load basket item")
	}
	return s.remove(ctx, existing)
}

func (s *Service) remove(ctx context.Context, item *models.BasketItem) error {
	if _, err := s.repo.Delete(ctx, item.ProductID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete basket item")
	}
	if s.mirror == nil || item.CartItemKey == nil {
		return nil
	}
	ctx = s.logg.WithOperation(ctx, "basket.remove")
	if _, err := s.mirror.RemoveItem(ctx, *item.CartItemKey); err != nil {
		s.logg.WarnErr(ctx, "remote cart remove failed", err)
	}
	return nil
}

// Clear empties the local basket and clears the remote cart.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.ClearLocal(ctx); err != nil {
		return err
	}
	if s.mirror == nil {
		return nil
	}
	ctx = s.logg.WithOperation(ctx, "basket.clear")
	if err := s.mirror.ClearCart(ctx); err != nil {
		s.logg.WarnErr(ctx, "remote cart clear failed", err)
	}
	return nil
}

// ClearLocal empties the local basket only.
func (s *Service) ClearLocal(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear basket")
	}
	return nil
}

// Items returns the raw basket rows in insertion order.
func (s *Service) Items(ctx context.Context) ([]models.BasketItem, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list basket")
	}
	return items, nil
}

// Count returns the number of distinct lines, used for the basket badge.
func (s *Service) Count(ctx context.Context) (int64, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count basket lines")
	}
	return n, nil
}

// Summary returns the basket lines and their totals.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	rows, err := s.Items(ctx)
	if err != nil {
		return Summary{}, err
	}
	out := Summary{Items: make([]Item, 0, len(rows))}
	for _, row := range rows {
		out.Items = append(out.Items, toItem(row))
	}
	out.Totals = pricing.Compute(Lines(rows), s.rates).Display()
	return out, nil
}

// SetCartItemKeys refreshes every line's remote key after a full sync.
func (s *Service) SetCartItemKeys(ctx context.Context, keys map[int64]string) error {
	if err := s.repo.SetCartItemKeys(ctx, keys); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store cart item keys")
	}
	return nil
}

func (s *Service) recordLineKey(ctx context.Context, productID int64, cart *woocommerce.Cart) *string {
	if cart == nil {
		return nil
	}
	for _, line := range cart.Items {
		if line.ProductID != productID {
			continue
		}
		key := line.Key
		if err := s.repo.SetCartItemKey(ctx, productID, &key); err != nil {
			s.logg.WarnErr(ctx, "store cart item key failed", err)
		}
		return &key
	}
	return nil
}

// Lines converts basket rows into pricing lines.
func Lines(rows []models.BasketItem) []pricing.Line {
	lines := make([]pricing.Line, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, pricing.Line{UnitPrice: row.Price, Quantity: row.Quantity})
	}
	return lines
}

func toItem(row models.BasketItem) Item {
	item := Item{
		ProductID:    row.ProductID,
		PartNumber:   row.PartNumber,
		Name:         row.Name,
		Quantity:     row.Quantity,
		ImageURL:     row.ImageURL,
		Manufacturer: row.Manufacturer,
		CartItemKey:  row.CartItemKey,
		AddedAt:      row.AddedAt,
	}
	if row.Price.Valid {
		p := row.Price.Decimal.StringFixed(2)
		item.Price = &p
	}
	return item
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func notInBasket(productID int64) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "item not in basket").
		WithDetails(map[string]any{"product_id": productID})
}
