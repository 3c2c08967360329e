package config

const (
	EnvPrefix = "STOCKWISE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "STOCKWISE_APP_ENV"
	EnvPort     = "STOCKWISE_APP_PORT"
	EnvDBDSN    = "STOCKWISE_DB_DSN"
	EnvDBHost   = "STOCKWISE_DB_HOST"
	EnvDBPort   = "STOCKWISE_DB_PORT"
	EnvDBUser   = "STOCKWISE_DB_USER"
	EnvDBPass   = "STOCKWISE_DB_PASSWORD"
	EnvDBName   = "STOCKWISE_DB_NAME"
	EnvRedisURL = "STOCKWISE_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
