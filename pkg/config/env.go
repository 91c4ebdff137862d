package config

// EnvPrefix namespaces every variable read by envconfig.
const EnvPrefix = "OGSODA"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv    = "OGSODA_APP_ENV"
	EnvPort      = "OGSODA_APP_PORT"
	EnvLogLevel  = "OGSODA_LOG_LEVEL"
	EnvLogFormat = "OGSODA_LOG_FORMAT"

	EnvDBDSN    = "OGSODA_DB_DSN"
	EnvDBDriver = "OGSODA_DB_DRIVER"
	EnvDBHost   = "OGSODA_DB_HOST"
	EnvDBPort   = "OGSODA_DB_PORT"
	EnvDBUser   = "OGSODA_DB_USER"
	EnvDBPass   = "OGSODA_DB_PASSWORD"
	EnvDBName   = "OGSODA_DB_NAME"
	EnvDBSSL    = "OGSODA_DB_SSLMODE"

	EnvRedisURL  = "OGSODA_REDIS_URL"
	EnvRedisAddr = "OGSODA_REDIS_ADDR"

	EnvJWTSecret              = "OGSODA_JWT_SECRET"
	EnvJWTIssuer              = "OGSODA_JWT_ISSUER"
	EnvJWTExpMins             = "OGSODA_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "OGSODA_REFRESH_TOKEN_TTL_MINUTES"

	EnvBcryptCost           = "OGSODA_BCRYPT_COST"
	EnvAllowLegacyPlaintext = "OGSODA_ALLOW_LEGACY_PLAINTEXT"

	EnvUseSQLite   = "OGSODA_USE_SQLITE"
	EnvAutoMigrate = "OGSODA_AUTO_MIGRATE"
)

// legacyDBEnvVars must all be set when no DSN is supplied.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
