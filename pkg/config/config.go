package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	CORS          CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Password.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"OGSODA_APP_ENV" required:"true"`
	Port         string `envconfig:"OGSODA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"OGSODA_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"OGSODA_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"OGSODA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DBConfig struct {
	DSN        string `envconfig:"OGSODA_DB_DSN"`
	Driver     string `envconfig:"OGSODA_DB_DRIVER" default:"postgres"`
	SQLitePath string `envconfig:"OGSODA_SQLITE_PATH" default:"ogsoda.db"`

	LegacyHost     string `envconfig:"OGSODA_DB_HOST"`
	LegacyPort     int    `envconfig:"OGSODA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"OGSODA_DB_USER"`
	LegacyPassword string `envconfig:"OGSODA_DB_PASSWORD"`
	LegacyName     string `envconfig:"OGSODA_DB_NAME"`
	LegacySSLMode  string `envconfig:"OGSODA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"OGSODA_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"OGSODA_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"OGSODA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"OGSODA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"OGSODA_REDIS_URL"`
	Address      string        `envconfig:"OGSODA_REDIS_ADDR"`
	Password     string        `envconfig:"OGSODA_REDIS_PASSWORD"`
	DB           int           `envconfig:"OGSODA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"OGSODA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"OGSODA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"OGSODA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"OGSODA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"OGSODA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"OGSODA_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"OGSODA_JWT_ISSUER" default:"og-soda"`
	ExpirationMinutes      int    `envconfig:"OGSODA_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"OGSODA_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

// PasswordConfig drives the credential hasher.
//
// AllowLegacyPlaintext keeps login working for accounts whose stored password
// predates hashing. Turn it off once every row has been migrated.
type PasswordConfig struct {
	BcryptCost           int  `envconfig:"OGSODA_BCRYPT_COST" default:"12"`
	AllowLegacyPlaintext bool `envconfig:"OGSODA_ALLOW_LEGACY_PLAINTEXT" default:"true"`
	MinLength            int  `envconfig:"OGSODA_PASSWORD_MIN_LENGTH" default:"6"`
}

func (p PasswordConfig) validate() error {
	// 4..31 is the range accepted by bcrypt.
	if p.BcryptCost < 4 || p.BcryptCost > 31 {
		return fmt.Errorf("%s must be between 4 and 31, got %d", EnvBcryptCost, p.BcryptCost)
	}
	return nil
}

type AuthRateLimitConfig struct {
	LoginWindow          time.Duration `envconfig:"OGSODA_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIdentifierLimit int           `envconfig:"OGSODA_AUTH_RATE_LIMIT_LOGIN_IDENTIFIER_LIMIT" default:"5"`
	LoginIPLimit         int           `envconfig:"OGSODA_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"OGSODA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"OGSODA_AUTO_MIGRATE" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"OGSODA_CORS_ALLOWED_ORIGINS" default:"*"`
}

func (db *DBConfig) ensureDSN() error {
	if strings.EqualFold(db.Driver, DriverSQLite) {
		db.Driver = DriverSQLite
		if db.DSN == "" {
			db.DSN = db.SQLitePath
		}
		return nil
	}
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
