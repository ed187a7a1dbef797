package customers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/heatparts/storefront/internal/settings"
	"github.com/heatparts/storefront/internal/woocommerce"
	pkgerrors "github.com/heatparts/storefront/pkg/errors"
	"github.com/heatparts/storefront/pkg/logger"
)

// Creator registers customer accounts on the platform.
type Creator interface {
	CreateCustomer(ctx context.Context, input woocommerce.CustomerInput) (woocommerce.Customer, error)
}

// Service scopes orders to this device through a lazily created guest account.
type Service struct {
	kv          settings.Store
	creator     Creator
	emailDomain string
	logg        *logger.Logger
	newID       func() string
}

// NewService builds the guest customer service.
func NewService(kv settings.Store, creator Creator, emailDomain string, logg *logger.Logger) (*Service, error) {
	if kv == nil {
		return nil, fmt.Errorf("settings store required")
	}
	if creator == nil {
		return nil, fmt.Errorf("customer creator required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	domain := strings.TrimSpace(emailDomain)
	if domain == "" {
		return nil, pkgerrors.New(pkgerrors.CodeConfiguration, "guest email domain is required")
	}
	return &Service{
		kv:          kv,
		creator:     creator,
		emailDomain: domain,
		logg:        logg,
		newID:       func() string { return uuid.NewString() },
	}, nil
}

// StoredID returns the persisted guest id, or 0 when none exists.
func (s *Service) StoredID(ctx context.Context) (int64, error) {
	raw, found, err := s.kv.Get(ctx, settings.KeyGuestCustomerID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load guest customer id")
	}
	if !found {
		return 0, nil
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeIntegrity, "stored guest customer id is not a positive integer").
			WithDetails(map[string]any{"value": raw})
	}
	return id, nil
}

// EnsureGuest returns the stored guest id, creating the account on first use.
func (s *Service) EnsureGuest(ctx context.Context) (int64, error) {
	id, err := s.StoredID(ctx)
	if err != nil || id > 0 {
		return id, err
	}

	handle := "guest-" + s.newID()
	customer, err := s.creator.CreateCustomer(ctx, woocommerce.CustomerInput{
		Email:     fmt.Sprintf("%s@%s", handle, s.emailDomain),
		Username:  handle,
		FirstName: "Guest",
		LastName:  "Customer",
	})
	if err != nil {
		return 0, err
	}
	if customer.ID <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeIntegrity, "store returned an invalid customer id").
			WithDetails(map[string]any{"value": customer.ID})
	}

	if err := s.kv.Set(ctx, settings.KeyGuestCustomerID, strconv.FormatInt(customer.ID, 10)); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist guest customer id")
	}
	s.logg.Info(s.logg.WithField(ctx, "customer_id", customer.ID), "guest customer created")
	return customer.ID, nil
}
