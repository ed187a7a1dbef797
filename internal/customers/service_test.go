package customers

import (
	"context"
	"io"
	"testing"

	"github.com/heatparts/storefront/internal/settings"
	"github.com/heatparts/storefront/internal/woocommerce"
	"github.com/heatparts/storefront/pkg/db/testdb"
	pkgerrors "github.com/heatparts/storefront/pkg/errors"
	"github.com/heatparts/storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCreator struct {
	inputs []woocommerce.CustomerInput
	id     int64
}

func (s *stubCreator) CreateCustomer(_ context.Context, in woocommerce.CustomerInput) (woocommerce.Customer, error) {
	s.inputs = append(s.inputs, in)
	return woocommerce.Customer{ID: s.id, Email: in.Email}, nil
}

func newTestService(t *testing.T, creator *stubCreator) (*Service, *settings.Repository) {
	t.Helper()
	repo := settings.NewRepository(testdb.Open(t))
	svc, err := NewService(repo, creator, "guest.example.test", logger.New(logger.Options{Output: io.Discard}))
	require.NoError(t, err)
	svc.newID = func() string { return "fixed" }
	return svc, repo
}

func TestEnsureGuestCreatesOnce(t *testing.T) {
	ctx := context.Background()
	creator := &stubCreator{id: 42}
	svc, _ := newTestService(t, creator)

	id, err := svc.EnsureGuest(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	id, err = svc.EnsureGuest(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	require.Len(t, creator.inputs, 1)
	assert.Equal(t, "guest-fixed@guest.example.test", creator.inputs[0].Email)
	assert.Equal(t, "guest-fixed", creator.inputs[0].Username)
}

func TestStoredIDRejectsCorruptValue(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t, &stubCreator{id: 1})
	require.NoError(t, repo.Set(ctx, settings.KeyGuestCustomerID, "abc"))

	_, err := svc.EnsureGuest(ctx)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeIntegrity))

	require.NoError(t, repo.Set(ctx, settings.KeyGuestCustomerID, "-4"))
	_, err = svc.StoredID(ctx)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeIntegrity))
}

func TestEnsureGuestRejectsInvalidRemoteID(t *testing.T) {
	svc, _ := newTestService(t, &stubCreator{id: 0})
	_, err := svc.EnsureGuest(context.Background())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeIntegrity))
}

func TestStoredIDAbsent(t *testing.T) {
	svc, _ := newTestService(t, &stubCreator{id: 1})
	id, err := svc.StoredID(context.Background())
	require.NoError(t, err)
	assert.Zero(t, id)
}
