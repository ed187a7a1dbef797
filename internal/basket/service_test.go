package basket

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/heatparts/storefront/internal/checkout/pricing"
	"github.com/heatparts/storefront/internal/woocommerce"
	"github.com/heatparts/storefront/pkg/db/testdb"
	pkgerrors "github.com/heatparts/storefront/pkg/errors"
	"github.com/heatparts/storefront/pkg/logger"
	"github.com/heatparts/storefront/pkg/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMirror struct {
	addCalls    []int
	updateCalls []string
	removeCalls []string
	clearCalls  int
	addErr      error
	updateErr   error
	clearErr    error
}

func (m *stubMirror) AddItem(_ context.Context, productID int64, quantity int) (*woocommerce.Cart, error) {
	m.addCalls = append(m.addCalls, quantity)
	if m.addErr != nil {
		return nil, m.addErr
	}
	return &woocommerce.Cart{Items: []woocommerce.CartLine{{Key: "line-7", ProductID: productID, Quantity: quantity}}}, nil
}

func (m *stubMirror) UpdateItemQuantity(_ context.Context, key string, quantity int) (*woocommerce.Cart, error) {
	m.updateCalls = append(m.updateCalls, key)
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return &woocommerce.Cart{Items: []woocommerce.CartLine{{Key: key, ProductID: 7, Quantity: quantity}}}, nil
}

func (m *stubMirror) RemoveItem(_ context.Context, key string) (*woocommerce.Cart, error) {
	m.removeCalls = append(m.removeCalls, key)
	return &woocommerce.Cart{}, nil
}

func (m *stubMirror) ClearCart(context.Context) error {
	m.clearCalls++
	return m.clearErr
}

func newTestService(t *testing.T, mirror CartMirror) *Service {
	t.Helper()
	clock := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	svc, err := NewService(ServiceParams{
		Repo:   NewRepository(testdb.Open(t)),
		Mirror: mirror,
		Rates: pricing.Rates{
			DeliveryCharge: decimal.RequireFromString("5.00"),
			VATRate:        decimal.NewFromInt(20),
		},
		Logger: logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
	})
	require.NoError(t, err)
	return svc
}

func testPart(id int64, price string) types.Part {
	return types.Part{
		ID:           id,
		PartNumber:   "PN-1",
		Name:         "Diverter valve",
		Manufacturer: "Baxi",
		Price:        decimal.NewNullDecimal(decimal.RequireFromString(price)),
	}
}

func TestAddCreatesThenIncrements(t *testing.T) {
	ctx := context.Background()
	mirror := &stubMirror{}
	svc := newTestService(t, mirror)

	item, err := svc.Add(ctx, testPart(7, "10.00"), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)
	require.NotNil(t, item.CartItemKey)
	assert.Equal(t, "line-7", *item.CartItemKey)

	item, err = svc.Add(ctx, testPart(7, "10.00"), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, []int{1, 1}, mirror.addCalls)

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, "20.00", summary.Totals.Subtotal)
	assert.Equal(t, "5.00", summary.Totals.VAT)
	assert.Equal(t, "30.00", summary.Totals.GrandTotal)
}

func TestAddRejectsNonPositiveQuantity(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.Add(context.Background(), testPart(7, "1"), 0)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestAddSucceedsWhenRemoteFails(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &stubMirror{addErr: errors.New("boom")})

	item, err := svc.Add(ctx, testPart(7, "3.00"), 2)
	require.NoError(t, err)
	assert.Nil(t, item.CartItemKey)

	items, err := svc.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestUpdateQuantityZeroDeletesAndRemovesRemoteLine(t *testing.T) {
	ctx := context.Background()
	mirror := &stubMirror{}
	svc := newTestService(t, mirror)

	_, err := svc.Add(ctx, testPart(7, "3.00"), 1)
	require.NoError(t, err)

	_, kept, err := svc.UpdateQuantity(ctx, 7, 0)
	require.NoError(t, err)
	assert.False(t, kept)
	assert.Equal(t, []string{"line-7"}, mirror.removeCalls)

	items, err := svc.Items(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestUpdateQuantityFallsBackToAddOnStaleKey(t *testing.T) {
	ctx := context.Background()
	mirror := &stubMirror{}
	svc := newTestService(t, mirror)

	_, err := svc.Add(ctx, testPart(7, "3.00"), 1)
	require.NoError(t, err)

	mirror.updateErr = pkgerrors.New(pkgerrors.CodeNotFound, "gone")
	item, kept, err := svc.UpdateQuantity(ctx, 7, 4)
	require.NoError(t, err)
	assert.True(t, kept)
	assert.Equal(t, 4, item.Quantity)
	assert.Equal(t, []int{1, 4}, mirror.addCalls)
}

func TestUpdateQuantityUnknownItem(t *testing.T) {
	svc := newTestService(t, nil)
	_, _, err := svc.UpdateQuantity(context.Background(), 99, 2)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestClearIgnoresRemoteFailure(t *testing.T) {
	ctx := context.Background()
	mirror := &stubMirror{clearErr: errors.New("offline")}
	svc := newTestService(t, mirror)

	_, err := svc.Add(ctx, testPart(7, "3.00"), 1)
	require.NoError(t, err)
	_, err = svc.Add(ctx, testPart(8, "4.00"), 1)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx))
	assert.Equal(t, 1, mirror.clearCalls)

	items, err := svc.Items(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSetCartItemKeysClearsMissing(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	_, err := svc.Add(ctx, testPart(7, "3.00"), 1)
	require.NoError(t, err)
	_, err = svc.Add(ctx, testPart(8, "4.00"), 1)
	require.NoError(t, err)

	require.NoError(t, svc.SetCartItemKeys(ctx, map[int64]string{8: "k8"}))

	items, err := svc.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(7), items[0].ProductID)
	assert.Nil(t, items[0].CartItemKey)
	require.NotNil(t, items[1].CartItemKey)
	assert.Equal(t, "k8", *items[1].CartItemKey)
}

func TestCountTracksDistinctLines(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	n, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = svc.Add(ctx, testPart(7, "10.00"), 3)
	require.NoError(t, err)
	_, err = svc.Add(ctx, testPart(9, "4.50"), 1)
	require.NoError(t, err)
	_, err = svc.Add(ctx, testPart(7, "10.00"), 1)
	require.NoError(t, err)

	n, err = svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
