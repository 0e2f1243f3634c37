package config

// EnvPrefix is the envconfig prefix; individual fields carry explicit names so
// the prefix mostly matters for error messages.
const EnvPrefix = "DAFTAR"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv                 = "DAFTAR_APP_ENV"
	EnvPort                   = "DAFTAR_APP_PORT"
	EnvDBDSN                  = "DAFTAR_DB_DSN"
	EnvDBHost                 = "DAFTAR_DB_HOST"
	EnvDBUser                 = "DAFTAR_DB_USER"
	EnvDBName                 = "DAFTAR_DB_NAME"
	EnvRedisURL               = "DAFTAR_REDIS_URL"
	EnvJWTSecret              = "DAFTAR_JWT_SECRET"
	EnvJWTIssuer              = "DAFTAR_JWT_ISSUER"
	EnvJWTExpMins             = "DAFTAR_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "DAFTAR_REFRESH_TOKEN_TTL_MINUTES"
	EnvAdminEmails            = "DAFTAR_ADMIN_EMAILS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
