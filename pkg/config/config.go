package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App     AppConfig
	DB      DBConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Billing BillingConfig
	Gateway GatewayConfig
	Orders  OrdersConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Billing.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"KAINAN_APP_ENV" required:"true"`
	Port         string `envconfig:"KAINAN_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"KAINAN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KAINAN_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"KAINAN_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"KAINAN_DB_DSN"`
	Driver string `envconfig:"KAINAN_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"KAINAN_DB_HOST"`
	LegacyPort     int    `envconfig:"KAINAN_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"KAINAN_DB_USER"`
	LegacyPassword string `envconfig:"KAINAN_DB_PASSWORD"`
	LegacyName     string `envconfig:"KAINAN_DB_NAME"`
	LegacySSLMode  string `envconfig:"KAINAN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KAINAN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KAINAN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KAINAN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KAINAN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"KAINAN_REDIS_URL" required:"true"`
	Address      string        `envconfig:"KAINAN_REDIS_ADDR"`
	Password     string        `envconfig:"KAINAN_REDIS_PASSWORD"`
	DB           int           `envconfig:"KAINAN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KAINAN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KAINAN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KAINAN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KAINAN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KAINAN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"KAINAN_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"KAINAN_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"KAINAN_JWT_EXPIRATION_MINUTES" required:"true"`
}

// BillingConfig carries the statutory and house discount rates plus the flat
// tax amount applied per order when the client does not provide one.
type BillingConfig struct {
	PwdSeniorRate   string `envconfig:"KAINAN_BILLING_PWD_SENIOR_RATE" default:"0.20"`
	EmployeeRate    string `envconfig:"KAINAN_BILLING_EMPLOYEE_RATE" default:"0.10"`
	ShareholderRate string `envconfig:"KAINAN_BILLING_SHAREHOLDER_RATE" default:"0.05"`
}

func (b BillingConfig) validate() error {
	for name, raw := range map[string]string{
		"pwd_senior_rate":  b.PwdSeniorRate,
		"employee_rate":    b.EmployeeRate,
		"shareholder_rate": b.ShareholderRate,
	} {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("invalid billing %s %q: %w", name, raw, err)
		}
		if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("billing %s must be within [0,1], got %s", name, rate)
		}
	}
	return nil
}

// PwdSenior returns the parsed PWD/Senior statutory rate.
func (b BillingConfig) PwdSenior() decimal.Decimal {
	return mustRate(b.PwdSeniorRate)
}

// Employee returns the parsed employee discount rate.
func (b BillingConfig) Employee() decimal.Decimal {
	return mustRate(b.EmployeeRate)
}

// Shareholder returns the parsed shareholder discount rate.
func (b BillingConfig) Shareholder() decimal.Decimal {
	return mustRate(b.ShareholderRate)
}

func mustRate(raw string) decimal.Decimal {
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return rate
}

// GatewayConfig authenticates settlement events pushed by the payment gateway
// collaborator. Signature verification happens upstream; the webhook endpoint
// only checks this shared token.
type GatewayConfig struct {
	WebhookToken string `envconfig:"KAINAN_GATEWAY_WEBHOOK_TOKEN" required:"true"`
}

type OrdersConfig struct {
	CreateRetries int `envconfig:"KAINAN_ORDERS_CREATE_RETRIES" default:"3"`
	WriteRetries  int `envconfig:"KAINAN_ORDERS_WRITE_RETRIES" default:"3"`
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
