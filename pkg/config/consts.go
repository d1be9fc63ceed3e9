package config

// EnvPrefix is the envconfig prefix shared by every service binary.
const EnvPrefix = "rentkit"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv = "RENTKIT_APP_ENV"
	EnvPort   = "RENTKIT_APP_PORT"

	EnvDBDSN  = "RENTKIT_DB_DSN"
	EnvDBHost = "RENTKIT_DB_HOST"
	EnvDBUser = "RENTKIT_DB_USER"
	EnvDBName = "RENTKIT_DB_NAME"

	EnvRedisURL = "RENTKIT_REDIS_URL"

	EnvPricingFallbackMode = "RENTKIT_PRICING_FALLBACK_MODE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
