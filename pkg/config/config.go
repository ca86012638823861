package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Gateway      GatewayConfig
	FeatureFlags FeatureFlagsConfig
	Webhook      WebhookConfig
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
	Env          string `envconfig:"SPICETRADE_APP_ENV" required:"true"`
	Port         string `envconfig:"SPICETRADE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SPICETRADE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SPICETRADE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SPICETRADE_DB_DSN"`
	Driver string `envconfig:"SPICETRADE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"SPICETRADE_DB_HOST"`
	Port     int    `envconfig:"SPICETRADE_DB_PORT" default:"5432"`
	User     string `envconfig:"SPICETRADE_DB_USER"`
	Password string `envconfig:"SPICETRADE_DB_PASSWORD"`
	Name     string `envconfig:"SPICETRADE_DB_NAME"`
	SSLMode  string `envconfig:"SPICETRADE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SPICETRADE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SPICETRADE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SPICETRADE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SPICETRADE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SPICETRADE_REDIS_URL"`
	Address      string        `envconfig:"SPICETRADE_REDIS_ADDR"`
	Password     string        `envconfig:"SPICETRADE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SPICETRADE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SPICETRADE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SPICETRADE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SPICETRADE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SPICETRADE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SPICETRADE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SPICETRADE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SPICETRADE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SPICETRADE_JWT_EXPIRATION_MINUTES" default:"60"`
}

type GatewayConfig struct {
	APIKey     string `envconfig:"SPICETRADE_GATEWAY_API_KEY"`
	Secret     string `envconfig:"SPICETRADE_GATEWAY_WEBHOOK_SECRET"`
	Env        string `envconfig:"SPICETRADE_GATEWAY_ENV" default:"test"`
	Currency   string `envconfig:"SPICETRADE_GATEWAY_CURRENCY" default:"lkr"`
	SuccessURL string `envconfig:"SPICETRADE_GATEWAY_SUCCESS_URL" default:"http://localhost:3000/payment/success"`
	CancelURL  string `envconfig:"SPICETRADE_GATEWAY_CANCEL_URL" default:"http://localhost:3000/payment/cancel"`
}

// Environment returns the normalized gateway environment (test/live).
func (g GatewayConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(g.Env))
	if env == "" {
		return "test"
	}
	return env
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SPICETRADE_AUTO_MIGRATE" default:"false"`
}

type WebhookConfig struct {
	IdempotencyTTL time.Duration `envconfig:"SPICETRADE_WEBHOOK_IDEMPOTENCY_TTL" default:"720h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	parts := map[string]string{
		"SPICETRADE_DB_HOST": db.Host,
		"SPICETRADE_DB_USER": db.User,
		"SPICETRADE_DB_NAME": db.Name,
	}
	for _, key := range []string{"SPICETRADE_DB_HOST", "SPICETRADE_DB_USER", "SPICETRADE_DB_NAME"} {
		if parts[key] == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either SPICETRADE_DB_DSN or %s are required", strings.Join(missing, ", "))
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
