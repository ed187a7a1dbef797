package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/paymentintent"

	"github.com/heatparts/storefront/pkg/config"
	"github.com/heatparts/storefront/pkg/enums"
	pkgerrors "github.com/heatparts/storefront/pkg/errors"
	"github.com/heatparts/storefront/pkg/logger"
)

const (
	testEnv = "test"
	liveEnv = "live"
)

var (
	errAPIKeyRequired   = errors.New("stripe secret key is required")
	errInvalidStripeEnv = fmt.Errorf("stripe environment must be %q or %q", testEnv, liveEnv)
)

// Client holds the env-checked Stripe credentials.
type Client struct {
	environment    string
	publishableKey string
	currency       string
}

// NewClient initializes Stripe once with the configured secret and env.
func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger) (*Client, error) {
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConfiguration, err, "invalid stripe environment")
	}

	apiKey := strings.TrimSpace(cfg.SecretKey)
	if apiKey == "" {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConfiguration, errAPIKeyRequired, "stripe not configured")
	}
	if err := validateAPIKey(env, apiKey); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConfiguration, err, "stripe key does not match environment")
	}
	publishable := strings.TrimSpace(cfg.PublishableKey)
	if err := validatePublishableKey(env, publishable); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConfiguration, err, "stripe publishable key does not match environment")
	}

	currency, err := enums.ParseCurrency(cfg.Currency)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConfiguration, err, "unsupported payment currency")
	}

	stripe.Key = apiKey

	if logg != nil {
		logg.Info(ctx, fmt.Sprintf("stripe client initialized (%s)", env))
	}

	return &Client{environment: env, publishableKey: publishable, currency: currency.String()}, nil
}

// Environment reports the normalized Stripe environment in use.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// PublishableKey is handed to the payment sheet.
func (c *Client) PublishableKey() string {
	if c == nil {
		return ""
	}
	return c.publishableKey
}

// Currency is the lower-case ISO currency charged.
func (c *Client) Currency() string {
	if c == nil {
		return ""
	}
	return c.currency
}

// IntentInput describes a payment intent to create.
type IntentInput struct {
	AmountMinor int64
	Currency    string
	Description string
	Metadata    map[string]string
}

// PaymentIntents is the subset of the Stripe API the checkout uses.
type PaymentIntents interface {
	Create(ctx context.Context, in IntentInput) (*stripe.PaymentIntent, error)
	Get(ctx context.Context, id string) (*stripe.PaymentIntent, error)
}

type paymentIntentClient struct{}

// NewPaymentIntents returns the live PaymentIntent API. The client must
// have been constructed so the secret key is set.
func NewPaymentIntents(c *Client) PaymentIntents {
	if c == nil {
		return nil
	}
	return paymentIntentClient{}
}

func (paymentIntentClient) Create(ctx context.Context, in IntentInput) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(in.AmountMinor),
		Currency: stripe.String(in.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if in.Description != "" {
		params.Description = stripe.String(in.Description)
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx
	return paymentintent.New(params)
}

func (paymentIntentClient) Get(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	return paymentintent.Get(id, params)
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = testEnv
	}
	switch env {
	case testEnv, liveEnv:
		return env, nil
	default:
		return "", errInvalidStripeEnv
	}
}

func validateAPIKey(env, key string) error {
	switch env {
	case testEnv:
		if strings.HasPrefix(key, "sk_test") || strings.HasPrefix(key, "rk_test") {
			return nil
		}
		return fmt.Errorf("stripe environment %q requires a test secret key (sk_test/rk_test)", testEnv)
	case liveEnv:
		if strings.HasPrefix(key, "sk_live") || strings.HasPrefix(key, "rk_live") {
			return nil
		}
		return fmt.Errorf("stripe environment %q requires a live secret key (sk_live/rk_live)", liveEnv)
	default:
		return errInvalidStripeEnv
	}
}

func validatePublishableKey(env, key string) error {
	if key == "" {
		return errors.New("stripe publishable key is required")
	}
	if !strings.HasPrefix(key, "pk_"+env) {
		return fmt.Errorf("stripe environment %q requires a pk_%s publishable key", env, env)
	}
	return nil
}
