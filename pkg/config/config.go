package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Pricing      PricingConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	Preflight    PreflightConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Pricing.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"RENTKIT_APP_ENV" required:"true"`
	Port         string   `envconfig:"RENTKIT_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"RENTKIT_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"RENTKIT_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"RENTKIT_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"RENTKIT_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"RENTKIT_DB_DSN"`
	Driver string `envconfig:"RENTKIT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"RENTKIT_DB_HOST"`
	LegacyPort     int    `envconfig:"RENTKIT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"RENTKIT_DB_USER"`
	LegacyPassword string `envconfig:"RENTKIT_DB_PASSWORD"`
	LegacyName     string `envconfig:"RENTKIT_DB_NAME"`
	LegacySSLMode  string `envconfig:"RENTKIT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RENTKIT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RENTKIT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RENTKIT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RENTKIT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"RENTKIT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"RENTKIT_REDIS_ADDR"`
	Password     string        `envconfig:"RENTKIT_REDIS_PASSWORD"`
	DB           int           `envconfig:"RENTKIT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RENTKIT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RENTKIT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RENTKIT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RENTKIT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RENTKIT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// PricingConfig carries business defaults for the pricing subsystem.
// FallbackMode is the pricing mode the fix-pricing-mode repair assigns when
// neither the product nor its store defines one.
type PricingConfig struct {
	FallbackMode string `envconfig:"RENTKIT_PRICING_FALLBACK_MODE" default:"day"`
}

func (p PricingConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(p.FallbackMode)) {
	case "hour", "day", "week":
		return nil
	}
	return fmt.Errorf("invalid %s value %q (want hour, day or week)", EnvPricingFallbackMode, p.FallbackMode)
}

// RateLimitConfig throttles write traffic on the store-scoped API. A zero
// window or limit disables the middleware.
type RateLimitConfig struct {
	WriteWindow  time.Duration `envconfig:"RENTKIT_RATE_LIMIT_WRITE_WINDOW" default:"1m"`
	WriteIPLimit int           `envconfig:"RENTKIT_RATE_LIMIT_WRITE_IP_LIMIT" default:"60"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"RENTKIT_AUTO_MIGRATE" default:"false"`
}

// PreflightConfig tunes the pricing-preflight batch scan.
type PreflightConfig struct {
	TierChunkSize   int `envconfig:"RENTKIT_PREFLIGHT_TIER_CHUNK_SIZE" default:"500"`
	PreviewProducts int `envconfig:"RENTKIT_PREFLIGHT_PREVIEW_PRODUCTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
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
