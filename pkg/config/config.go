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
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Admin         AdminConfig
	Records       RecordsConfig
	Cron          CronConfig
	Support       SupportConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DAFTAR_APP_ENV" required:"true"`
	Port         string `envconfig:"DAFTAR_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DAFTAR_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DAFTAR_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"DAFTAR_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"DAFTAR_DB_DSN"`
	Driver string `envconfig:"DAFTAR_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DAFTAR_DB_HOST"`
	LegacyPort     int    `envconfig:"DAFTAR_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DAFTAR_DB_USER"`
	LegacyPassword string `envconfig:"DAFTAR_DB_PASSWORD"`
	LegacyName     string `envconfig:"DAFTAR_DB_NAME"`
	LegacySSLMode  string `envconfig:"DAFTAR_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DAFTAR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DAFTAR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DAFTAR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DAFTAR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DAFTAR_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DAFTAR_REDIS_ADDR"`
	Password     string        `envconfig:"DAFTAR_REDIS_PASSWORD"`
	DB           int           `envconfig:"DAFTAR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DAFTAR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DAFTAR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DAFTAR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DAFTAR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DAFTAR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"DAFTAR_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"DAFTAR_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"DAFTAR_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"DAFTAR_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	// LegacySHA256 switches new hashes to the unsalted hex SHA-256 scheme kept
	// for parity with digests already stored by earlier deployments.
	LegacySHA256     bool `envconfig:"DAFTAR_PASSWORD_LEGACY_SHA256" default:"false"`
	ArgonMemoryKB    int  `envconfig:"DAFTAR_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int  `envconfig:"DAFTAR_ARGON_TIME" default:"3"`
	ArgonParallelism int  `envconfig:"DAFTAR_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int  `envconfig:"DAFTAR_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int  `envconfig:"DAFTAR_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"DAFTAR_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"DAFTAR_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"DAFTAR_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"DAFTAR_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"DAFTAR_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"DAFTAR_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"DAFTAR_AUTO_MIGRATE" default:"false"`
}

type AdminConfig struct {
	// Emails always resolved as super-admin even without a stored profile.
	Emails    []string `envconfig:"DAFTAR_ADMIN_EMAILS"`
	SeedEmail string   `envconfig:"DAFTAR_ADMIN_SEED_EMAIL" default:"admin@daftar.local"`
	SeedName  string   `envconfig:"DAFTAR_ADMIN_SEED_NAME" default:"System Administrator"`
}

// IsAdminEmail reports whether the email is on the configured allow-list.
func (a AdminConfig) IsAdminEmail(email string) bool {
	needle := strings.ToLower(strings.TrimSpace(email))
	if needle == "" {
		return false
	}
	for _, candidate := range a.Emails {
		if strings.ToLower(strings.TrimSpace(candidate)) == needle {
			return true
		}
	}
	return false
}

type RecordsConfig struct {
	ListTimeout time.Duration `envconfig:"DAFTAR_RECORDS_LIST_TIMEOUT" default:"5s"`
}

type CronConfig struct {
	Interval        time.Duration `envconfig:"DAFTAR_CRON_INTERVAL" default:"24h"`
	ExpiryWarnDays  int           `envconfig:"DAFTAR_CRON_EXPIRY_WARN_DAYS" default:"7"`
	ExpiredLookback time.Duration `envconfig:"DAFTAR_CRON_EXPIRED_LOOKBACK" default:"168h"`
}

type SupportConfig struct {
	Phone    string `envconfig:"DAFTAR_SUPPORT_PHONE" default:""`
	WhatsApp string `envconfig:"DAFTAR_SUPPORT_WHATSAPP" default:""`
	Email    string `envconfig:"DAFTAR_SUPPORT_EMAIL" default:""`
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
