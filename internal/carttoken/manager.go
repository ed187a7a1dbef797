package carttoken

import (
	"context"
	"fmt"

	pkgerrors "github.com/heatparts/storefront/pkg/errors"
	"github.com/heatparts/storefront/pkg/metrics"
)

// Manager loads the token state and applies transition effects to a Store.
// Writes are not serialized; concurrent observers race and the last write wins.
type Manager struct {
	store   Store
	metrics *metrics.RemoteCallMetrics
}

// NewManager builds a manager over store. m may be nil.
func NewManager(store Store, m *metrics.RemoteCallMetrics) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("cart token store required")
	}
	return &Manager{store: store, metrics: m}, nil
}

// Current loads the persisted state.
func (m *Manager) Current(ctx context.Context) (State, error) {
	token, found, err := m.store.Get(ctx)
	if err != nil {
		return Absent(), pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart token")
	}
	if !found {
		return Absent(), nil
	}
	return Active(token), nil
}

// Observe applies a response token to current and persists any change.
func (m *Manager) Observe(ctx context.Context, current State, responseToken string) (State, error) {
	next, effect := current.Observe(responseToken)
	if err := m.apply(ctx, next, effect); err != nil {
		return current, err
	}
	if effect == EffectPersist && current.IsActive() {
		m.metrics.IncTokenRotation()
	}
	return next, nil
}

// Clear deletes the persisted token.
func (m *Manager) Clear(ctx context.Context) error {
	next, effect := Absent().Clear()
	return m.apply(ctx, next, effect)
}

func (m *Manager) apply(ctx context.Context, next State, effect Effect) error {
	switch effect {
	case EffectPersist:
		token, _ := next.Token()
		if err := m.store.Set(ctx, token); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist cart token")
		}
	case EffectDelete:
		if err := m.store.Delete(ctx); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete cart token")
		}
	}
	return nil
}
