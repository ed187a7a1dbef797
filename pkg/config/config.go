package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/heatparts/storefront/pkg/errors"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	Store     StoreConfig
	Stripe    StripeConfig
	Pricing   PricingConfig
	Checkout  CheckoutConfig
	Cache     CacheConfig
	CartToken CartTokenConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if _, err := cfg.Pricing.DeliveryCharge(); err != nil {
		return nil, err
	}
	if _, err := cfg.Pricing.VATRate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"HEATPARTS_APP_ENV" default:"dev"`
	Port         string   `envconfig:"HEATPARTS_APP_PORT" default:"8080"`
	LogLevel     string   `envconfig:"HEATPARTS_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"HEATPARTS_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"HEATPARTS_CORS_ORIGINS"`
	AutoMigrate  bool     `envconfig:"HEATPARTS_AUTO_MIGRATE" default:"true"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	Driver string `envconfig:"HEATPARTS_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"HEATPARTS_DB_DSN"`
	Path   string `envconfig:"HEATPARTS_DB_PATH" default:"heatparts.db"`

	MaxOpenConns    int           `envconfig:"HEATPARTS_DB_MAX_OPEN_CONNS" default:"1"`
	MaxIdleConns    int           `envconfig:"HEATPARTS_DB_MAX_IDLE_CONNS" default:"1"`
	ConnMaxLifetime time.Duration `envconfig:"HEATPARTS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"HEATPARTS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the embedded store is selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"HEATPARTS_REDIS_URL"`
	Address      string        `envconfig:"HEATPARTS_REDIS_ADDR"`
	Password     string        `envconfig:"HEATPARTS_REDIS_PASSWORD"`
	DB           int           `envconfig:"HEATPARTS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HEATPARTS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HEATPARTS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HEATPARTS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HEATPARTS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HEATPARTS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

// StoreConfig points at the e-commerce platform.
type StoreConfig struct {
	BaseURL        string        `envconfig:"HEATPARTS_STORE_BASE_URL"`
	ConsumerKey    string        `envconfig:"HEATPARTS_STORE_CONSUMER_KEY"`
	ConsumerSecret string        `envconfig:"HEATPARTS_STORE_CONSUMER_SECRET"`
	Timeout        time.Duration `envconfig:"HEATPARTS_STORE_TIMEOUT" default:"15s"`
	PerPage        int           `envconfig:"HEATPARTS_STORE_PER_PAGE" default:"50"`
}

// Validate returns a configuration error when the platform cannot be reached.
func (s StoreConfig) Validate() error {
	missing := []string{}
	if strings.TrimSpace(s.BaseURL) == "" {
		missing = append(missing, EnvStoreBaseURL)
	}
	if strings.TrimSpace(s.ConsumerKey) == "" {
		missing = append(missing, EnvStoreConsumerKey)
	}
	if strings.TrimSpace(s.ConsumerSecret) == "" {
		missing = append(missing, EnvStoreConsumerSecret)
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeConfiguration, "store platform credentials missing").
			WithDetails(map[string]any{"missing": missing})
	}
	if _, err := url.ParseRequestURI(s.BaseURL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeConfiguration, err, "invalid store base url")
	}
	return nil
}

type StripeConfig struct {
	SecretKey      string `envconfig:"HEATPARTS_STRIPE_SECRET_KEY"`
	PublishableKey string `envconfig:"HEATPARTS_STRIPE_PUBLISHABLE_KEY"`
	Env            string `envconfig:"HEATPARTS_STRIPE_ENV" default:"test"`
	Currency       string `envconfig:"HEATPARTS_STRIPE_CURRENCY" default:"gbp"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

// Enabled reports whether a payment secret was supplied.
func (s StripeConfig) Enabled() bool {
	return strings.TrimSpace(s.SecretKey) != ""
}

// PricingConfig carries the externally configured monetary inputs.
type PricingConfig struct {
	DeliveryChargeRaw string `envconfig:"HEATPARTS_DELIVERY_CHARGE" default:"0"`
	VATRateRaw        string `envconfig:"HEATPARTS_VAT_RATE" default:"20"`
}

func (p PricingConfig) DeliveryCharge() (decimal.Decimal, error) {
	return parseNonNegative(EnvDeliveryCharge, p.DeliveryChargeRaw)
}

func (p PricingConfig) VATRate() (decimal.Decimal, error) {
	return parseNonNegative(EnvVATRate, p.VATRateRaw)
}

type CheckoutConfig struct {
	WebCheckoutPath  string `envconfig:"HEATPARTS_WEB_CHECKOUT_PATH" default:"/checkout/"`
	WebPreflight     bool   `envconfig:"HEATPARTS_WEB_CHECKOUT_PREFLIGHT" default:"true"`
	GuestEmailDomain string `envconfig:"HEATPARTS_GUEST_EMAIL_DOMAIN" default:"guest.heatparts.app"`
}

type CacheConfig struct {
	CatalogTTL time.Duration `envconfig:"HEATPARTS_CATALOG_CACHE_TTL" default:"30m"`
}

type CartTokenConfig struct {
	Backend  string        `envconfig:"HEATPARTS_CART_TOKEN_BACKEND" default:"sqlite"`
	DeviceID string        `envconfig:"HEATPARTS_DEVICE_ID" default:"default"`
	RedisTTL time.Duration `envconfig:"HEATPARTS_CART_TOKEN_TTL" default:"48h"`
}

// UsesRedis reports whether the cart token lives in Redis instead of the device store.
func (c CartTokenConfig) UsesRedis() bool {
	return strings.EqualFold(strings.TrimSpace(c.Backend), CartTokenBackendRedis)
}

func parseNonNegative(name, raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeConfiguration, err, fmt.Sprintf("%s must be a decimal", name))
	}
	if value.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeConfiguration, fmt.Sprintf("%s must be non-negative", name))
	}
	return value, nil
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(db.Driver)) {
	case DBDriverSQLite:
		path := strings.TrimSpace(db.Path)
		if path == "" {
			return fmt.Errorf("%s is required for the sqlite driver", EnvDBPath)
		}
		db.DSN = fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
		return nil
	case DBDriverPostgres:
		return fmt.Errorf("%s is required for the postgres driver", EnvDBDSN)
	default:
		return fmt.Errorf("unsupported %s %q", EnvDBDriver, db.Driver)
	}
}
