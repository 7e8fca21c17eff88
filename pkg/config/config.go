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
	Cloudinary    CloudinaryConfig
	Mail          MailConfig
	Listing       ListingConfig
	CORS          CORSConfig
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
	Env          string `envconfig:"PLACESHARE_APP_ENV" required:"true"`
	Port         string `envconfig:"PLACESHARE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PLACESHARE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PLACESHARE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"PLACESHARE_DB_DSN"`

	Host     string `envconfig:"PLACESHARE_DB_HOST"`
	Port     int    `envconfig:"PLACESHARE_DB_PORT" default:"5432"`
	User     string `envconfig:"PLACESHARE_DB_USER"`
	Password string `envconfig:"PLACESHARE_DB_PASSWORD"`
	Name     string `envconfig:"PLACESHARE_DB_NAME"`
	SSLMode  string `envconfig:"PLACESHARE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PLACESHARE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PLACESHARE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PLACESHARE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PLACESHARE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PLACESHARE_REDIS_URL"`
	Address      string        `envconfig:"PLACESHARE_REDIS_ADDR"`
	Password     string        `envconfig:"PLACESHARE_REDIS_PASSWORD"`
	DB           int           `envconfig:"PLACESHARE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PLACESHARE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PLACESHARE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PLACESHARE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PLACESHARE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PLACESHARE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"PLACESHARE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PLACESHARE_JWT_ISSUER" default:"placeshare"`
	ExpirationMinutes int    `envconfig:"PLACESHARE_JWT_EXPIRATION_MINUTES" default:"43200"`
}

// TTL returns the access token lifetime.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PLACESHARE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PLACESHARE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PLACESHARE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PLACESHARE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PLACESHARE_ARGON_KEY_LEN" default:"32"`
	MinLength        int `envconfig:"PLACESHARE_PASSWORD_MIN_LENGTH" default:"6"`
}

type AuthRateLimitConfig struct {
	LoginWindow      time.Duration `envconfig:"PLACESHARE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit  int           `envconfig:"PLACESHARE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit     int           `envconfig:"PLACESHARE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	SignupWindow     time.Duration `envconfig:"PLACESHARE_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignupEmailLimit int           `envconfig:"PLACESHARE_AUTH_RATE_LIMIT_SIGNUP_EMAIL_LIMIT" default:"3"`
	SignupIPLimit    int           `envconfig:"PLACESHARE_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PLACESHARE_AUTO_MIGRATE" default:"false"`
}

type CloudinaryConfig struct {
	URL          string `envconfig:"PLACESHARE_CLOUDINARY_URL"`
	PlacesFolder string `envconfig:"PLACESHARE_CLOUDINARY_PLACES_FOLDER" default:"placeshare/places"`
	AvatarFolder string `envconfig:"PLACESHARE_CLOUDINARY_AVATAR_FOLDER" default:"placeshare/avatars"`
	MaxUploadMB  int    `envconfig:"PLACESHARE_MAX_UPLOAD_MB" default:"10"`
	MaxPhotos    int    `envconfig:"PLACESHARE_MAX_PHOTOS" default:"10"`
}

// MaxUploadBytes returns the size limit for a single uploaded file.
func (c CloudinaryConfig) MaxUploadBytes() int64 {
	mb := c.MaxUploadMB
	if mb <= 0 {
		mb = 10
	}
	return int64(mb) << 20
}

type MailConfig struct {
	Host       string        `envconfig:"PLACESHARE_SMTP_HOST"`
	Port       int           `envconfig:"PLACESHARE_SMTP_PORT" default:"587"`
	Username   string        `envconfig:"PLACESHARE_SMTP_USERNAME"`
	Password   string        `envconfig:"PLACESHARE_SMTP_PASSWORD"`
	From       string        `envconfig:"PLACESHARE_MAIL_FROM" default:"no-reply@placeshare.local"`
	AdminEmail string        `envconfig:"PLACESHARE_MAIL_ADMIN_EMAIL"`
	Timeout    time.Duration `envconfig:"PLACESHARE_SMTP_TIMEOUT" default:"10s"`
}

// Enabled reports whether signup notices can be delivered.
func (m MailConfig) Enabled() bool {
	return strings.TrimSpace(m.Host) != "" && strings.TrimSpace(m.AdminEmail) != ""
}

type ListingConfig struct {
	DefaultRadiusKm float64 `envconfig:"PLACESHARE_LISTING_DEFAULT_RADIUS_KM" default:"10"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"PLACESHARE_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
