package config

const (
	EnvPrefix = "PLACESHARE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv    = "PLACESHARE_APP_ENV"
	EnvPort      = "PLACESHARE_APP_PORT"
	EnvLogLevel  = "PLACESHARE_LOG_LEVEL"
	EnvDBDSN     = "PLACESHARE_DB_DSN"
	EnvDBHost    = "PLACESHARE_DB_HOST"
	EnvDBPort    = "PLACESHARE_DB_PORT"
	EnvDBUser    = "PLACESHARE_DB_USER"
	EnvDBPass    = "PLACESHARE_DB_PASSWORD"
	EnvDBName    = "PLACESHARE_DB_NAME"
	EnvRedisURL  = "PLACESHARE_REDIS_URL"
	EnvJWTSecret = "PLACESHARE_JWT_SECRET"
	EnvJWTIssuer = "PLACESHARE_JWT_ISSUER"
	EnvJWTExp    = "PLACESHARE_JWT_EXPIRATION_MINUTES"
	EnvSMTPHost  = "PLACESHARE_SMTP_HOST"
	EnvMailAdmin = "PLACESHARE_MAIL_ADMIN_EMAIL"
	EnvCORS      = "PLACESHARE_CORS_ALLOWED_ORIGINS"
)

var discreteDBEnvVars = []string{
	EnvDBHost,
	EnvDBUser,
	EnvDBName,
}
