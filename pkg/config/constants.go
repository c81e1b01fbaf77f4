package config

// EnvPrefix namespaces every environment variable consumed by the service.
const EnvPrefix = "RXSUPPLY"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv      = "RXSUPPLY_APP_ENV"
	EnvPort        = "RXSUPPLY_APP_PORT"
	EnvDBDSN       = "RXSUPPLY_DB_DSN"
	EnvDBHost      = "RXSUPPLY_DB_HOST"
	EnvDBUser      = "RXSUPPLY_DB_USER"
	EnvDBName      = "RXSUPPLY_DB_NAME"
	EnvRedisURL    = "RXSUPPLY_REDIS_URL"
	EnvJWTSecret   = "RXSUPPLY_JWT_SECRET"
	EnvJWTIssuer   = "RXSUPPLY_JWT_ISSUER"
	EnvJWTExpMins  = "RXSUPPLY_JWT_EXPIRATION_MINUTES"
	EnvGatewayBase = "RXSUPPLY_GATEWAY_BASE_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
