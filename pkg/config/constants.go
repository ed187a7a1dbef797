package config

const EnvPrefix = "HEATPARTS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"

	CartTokenBackendSQLite = "sqlite"
	CartTokenBackendRedis  = "redis"
)

const (
	EnvAppEnv              = "HEATPARTS_APP_ENV"
	EnvPort                = "HEATPARTS_APP_PORT"
	EnvDBDriver            = "HEATPARTS_DB_DRIVER"
	EnvDBDSN               = "HEATPARTS_DB_DSN"
	EnvDBPath              = "HEATPARTS_DB_PATH"
	EnvRedisURL            = "HEATPARTS_REDIS_URL"
	EnvStoreBaseURL        = "HEATPARTS_STORE_BASE_URL"
	EnvStoreConsumerKey    = "HEATPARTS_STORE_CONSUMER_KEY"
	EnvStoreConsumerSecret = "HEATPARTS_STORE_CONSUMER_SECRET"
	EnvStripeSecretKey     = "HEATPARTS_STRIPE_SECRET_KEY"
	EnvDeliveryCharge      = "HEATPARTS_DELIVERY_CHARGE"
	EnvVATRate             = "HEATPARTS_VAT_RATE"
	EnvCartTokenBackend    = "HEATPARTS_CART_TOKEN_BACKEND"
)
