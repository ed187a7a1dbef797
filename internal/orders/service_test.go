package orders

import (
	"context"
	"testing"

	"github.com/heatparts/storefront/internal/woocommerce"
	pkgerrors "github.com/heatparts/storefront/pkg/errors"
)

type stubSource struct {
	listCalls int
	orders    map[int64]woocommerce.Order
}

func (s *stubSource) ListOrders(_ context.Context, customerID int64) ([]woocommerce.Order, error) {
	s.listCalls++
	var out []woocommerce.Order
	for _, o := range s.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *stubSource) GetOrder(_ context.Context, id int64) (woocommerce.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return woocommerce.Order{}, pkgerrors.New(pkgerrors.CodeNotFound, "missing")
	}
	return o, nil
}

type stubCustomer int64

func (s stubCustomer) StoredID(context.Context) (int64, error) { return int64(s), nil }

func TestListWithoutGuestSkipsRemote(t *testing.T) {
	src := &stubSource{}
	svc, err := NewService(src, stubCustomer(0))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	orders, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orders) != 0 || src.listCalls != 0 {
		t.Fatalf("expected empty list without remote call, got %v calls=%d", orders, src.listCalls)
	}
}

func TestGetScopesToGuestCustomer(t *testing.T) {
	src := &stubSource{orders: map[int64]woocommerce.Order{
		10: {ID: 10, CustomerID: 42},
		11: {ID: 11, CustomerID: 7},
	}}
	svc, _ := NewService(src, stubCustomer(42))

	if o, err := svc.Get(context.Background(), 10); err != nil || o.ID != 10 {
		t.Fatalf("expected own order, got %+v %v", o, err)
	}
	if _, err := svc.Get(context.Background(), 11); !pkgerrors.IsNotFound(err) {
		t.Fatalf("expected not found for foreign order, got %v", err)
	}
	list, err := svc.List(context.Background())
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one order, got %v %v", list, err)
	}
}
