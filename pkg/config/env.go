package config

const (
	EnvPrefix = "STOREFRONT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	MediaBackendLocal = "local"
	MediaBackendGCS   = "gcs"

	defaultDevJWTSecret = "dev-storefront-secret"
)

const (
	EnvAppEnv         = "STOREFRONT_APP_ENV"
	EnvPort           = "STOREFRONT_APP_PORT"
	EnvLogLevel       = "STOREFRONT_LOG_LEVEL"
	EnvCORSOrigins    = "STOREFRONT_CORS_ORIGINS"
	EnvDBDSN          = "STOREFRONT_DB_DSN"
	EnvDBHost         = "STOREFRONT_DB_HOST"
	EnvDBUser         = "STOREFRONT_DB_USER"
	EnvDBName         = "STOREFRONT_DB_NAME"
	EnvRedisURL       = "STOREFRONT_REDIS_URL"
	EnvJWTSecret      = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer      = "STOREFRONT_JWT_ISSUER"
	EnvJWTExpMins     = "STOREFRONT_JWT_EXPIRATION_MINUTES"
	EnvCartTTLDays    = "STOREFRONT_CART_SLOT_TTL_DAYS"
	EnvUseSQLite      = "STOREFRONT_USE_SQLITE"
	EnvGCPProjectID   = "STOREFRONT_GCP_PROJECT_ID"
	EnvMediaBackend   = "STOREFRONT_MEDIA_BACKEND"
	EnvMediaGCSBucket = "STOREFRONT_GCS_BUCKET_NAME"
	EnvUPIID          = "STOREFRONT_UPI_ID"
)

var dbPartEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
