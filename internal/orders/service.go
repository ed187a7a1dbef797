package orders

import (
	"context"
	"fmt"

	"github.com/heatparts/storefront/internal/woocommerce"
	pkgerrors "github.com/heatparts/storefront/pkg/errors"
)

// Source reads orders from the platform.
type Source interface {
	ListOrders(ctx context.Context, customerID int64) ([]woocommerce.Order, error)
	GetOrder(ctx context.Context, id int64) (woocommerce.Order, error)
}

// CustomerLookup resolves this device's guest customer without creating one.
type CustomerLookup interface {
	StoredID(ctx context.Context) (int64, error)
}

// Service lists the device's order history.
type Service struct {
	source    Source
	customers CustomerLookup
}

// NewService builds the order history service.
func NewService(source Source, customers CustomerLookup) (*Service, error) {
	if source == nil {
		return nil, fmt.Errorf("order source required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer lookup required")
	}
	return &Service{source: source, customers: customers}, nil
}

// List returns the guest customer's orders, newest first. A device that
// never checked out has no orders.
func (s *Service) List(ctx context.Context) ([]woocommerce.Order, error) {
	customerID, err := s.customers.StoredID(ctx)
	if err != nil {
		return nil, err
	}
	if customerID == 0 {
		return []woocommerce.Order{}, nil
	}
	return s.source.ListOrders(ctx, customerID)
}

// Get returns one order when it belongs to this device's customer.
func (s *Service) Get(ctx context.Context, id int64) (woocommerce.Order, error) {
	if id <= 0 {
		return woocommerce.Order{}, pkgerrors.New(pkgerrors.CodeValidation, "order id must be positive")
	}
	customerID, err := s.customers.StoredID(ctx)
	if err != nil {
		return woocommerce.Order{}, err
	}
	if customerID == 0 {
		return woocommerce.Order{}, orderNotFound(id)
	}

	order, err := s.source.GetOrder(ctx, id)
	if err != nil {
		return woocommerce.Order{}, err
	}
	if order.CustomerID != customerID {
		return woocommerce.Order{}, orderNotFound(id)
	}
	return order, nil
}

func orderNotFound(id int64) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "order not found").
		WithDetails(map[string]any{"order_id": id})
}
