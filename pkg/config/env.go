package config

// EnvPrefix namespaces every variable read by Load.
const EnvPrefix = "BAZAAR"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "BAZAAR_APP_ENV"
	EnvPort     = "BAZAAR_APP_PORT"
	EnvLogLevel = "BAZAAR_LOG_LEVEL"

	EnvDBDSN      = "BAZAAR_DB_DSN"
	EnvDBDriver   = "BAZAAR_DB_DRIVER"
	EnvDBHost     = "BAZAAR_DB_HOST"
	EnvDBPort     = "BAZAAR_DB_PORT"
	EnvDBUser     = "BAZAAR_DB_USER"
	EnvDBPassword = "BAZAAR_DB_PASSWORD"
	EnvDBName     = "BAZAAR_DB_NAME"
	EnvDBSSLMode  = "BAZAAR_DB_SSLMODE"

	EnvRedisURL  = "BAZAAR_REDIS_URL"
	EnvRedisAddr = "BAZAAR_REDIS_ADDR"

	EnvJWTSecret  = "BAZAAR_JWT_SECRET"
	EnvJWTIssuer  = "BAZAAR_JWT_ISSUER"
	EnvJWTExpMins = "BAZAAR_JWT_EXPIRATION_MINUTES"

	EnvUseSQLite   = "BAZAAR_USE_SQLITE"
	EnvAutoMigrate = "BAZAAR_AUTO_MIGRATE"
	EnvCartLock    = "BAZAAR_FEATURE_CART_LOCK"

	EnvPlatformFee       = "BAZAAR_PRICING_PLATFORM_FEE"
	EnvShippingFee       = "BAZAAR_PRICING_SHIPPING_FEE"
	EnvLookupConcurrency = "BAZAAR_PRICING_LOOKUP_CONCURRENCY"
	EnvCartLockTTL       = "BAZAAR_PRICING_CART_LOCK_TTL"

	EnvGCPProjectID       = "BAZAAR_GCP_PROJECT_ID"
	EnvPubSubCartTopic    = "BAZAAR_PUBSUB_CART_TOPIC"
	EnvOutboxBatchSize    = "BAZAAR_OUTBOX_PUBLISH_BATCH_SIZE"
	EnvOutboxPollMS       = "BAZAAR_OUTBOX_PUBLISH_POLL_MS"
	EnvOutboxMaxAttempts  = "BAZAAR_OUTBOX_MAX_ATTEMPTS"
)

// legacyDBEnvVars must all be set when no DSN is given.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
