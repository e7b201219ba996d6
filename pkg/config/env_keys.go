package config

// EnvPrefix is passed to envconfig; individual keys carry the full name so the
// prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv    = "KAINAN_APP_ENV"
	EnvPort      = "KAINAN_APP_PORT"
	EnvDBDSN     = "KAINAN_DB_DSN"
	EnvDBHost    = "KAINAN_DB_HOST"
	EnvDBUser    = "KAINAN_DB_USER"
	EnvDBName    = "KAINAN_DB_NAME"
	EnvRedisURL  = "KAINAN_REDIS_URL"
	EnvJWTSecret = "KAINAN_JWT_SECRET"
	EnvJWTIssuer = "KAINAN_JWT_ISSUER"
	EnvJWTExp    = "KAINAN_JWT_EXPIRATION_MINUTES"

	EnvGatewayWebhookToken = "KAINAN_GATEWAY_WEBHOOK_TOKEN"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
