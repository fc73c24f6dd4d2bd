package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "lifecert"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "LIFECERT_DB_DSN"
	EnvDBHost = "LIFECERT_DB_HOST"
	EnvDBUser = "LIFECERT_DB_USER"
	EnvDBName = "LIFECERT_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Ledger       LedgerConfig
	Platform     PlatformConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Ledger.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LIFECERT_APP_ENV" required:"true"`
	Port         string `envconfig:"LIFECERT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LIFECERT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LIFECERT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LIFECERT_DB_DSN"`
	Driver string `envconfig:"LIFECERT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LIFECERT_DB_HOST"`
	LegacyPort     int    `envconfig:"LIFECERT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LIFECERT_DB_USER"`
	LegacyPassword string `envconfig:"LIFECERT_DB_PASSWORD"`
	LegacyName     string `envconfig:"LIFECERT_DB_NAME"`
	LegacySSLMode  string `envconfig:"LIFECERT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LIFECERT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LIFECERT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LIFECERT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LIFECERT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LIFECERT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LIFECERT_REDIS_ADDR"`
	Password     string        `envconfig:"LIFECERT_REDIS_PASSWORD"`
	DB           int           `envconfig:"LIFECERT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LIFECERT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LIFECERT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LIFECERT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LIFECERT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LIFECERT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"LIFECERT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"LIFECERT_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"LIFECERT_JWT_EXPIRATION_MINUTES" default:"60"`
}

// LedgerConfig carries the bounds the admin settings must respect plus the
// fixed settlement fee percentages.
type LedgerConfig struct {
	MaxPriceCents        int64         `envconfig:"LIFECERT_LEDGER_MAX_PRICE_CENTS" default:"100000"`
	MintFeePercent       int64         `envconfig:"LIFECERT_LEDGER_MINT_FEE_PERCENT" default:"10"`
	AppendFeePercent     int64         `envconfig:"LIFECERT_LEDGER_APPEND_FEE_PERCENT" default:"2"`
	ReplayPrecheckTTL    time.Duration `envconfig:"LIFECERT_LEDGER_REPLAY_PRECHECK_TTL" default:"720h"`
	ReplayPrecheckEnable bool          `envconfig:"LIFECERT_LEDGER_REPLAY_PRECHECK_ENABLE" default:"true"`
}

func (l LedgerConfig) validate() error {
	if l.MaxPriceCents <= 0 {
		return fmt.Errorf("ledger max price must be positive")
	}
	if l.MintFeePercent < 0 || l.MintFeePercent > 100 {
		return fmt.Errorf("mint fee percent out of range")
	}
	if l.AppendFeePercent < 0 || l.AppendFeePercent > 100 {
		return fmt.Errorf("append fee percent out of range")
	}
	return nil
}

// PlatformConfig seeds the singleton settings row on first boot. The treasury
// id is required before any paid mutation can settle, so deployments set it
// here and EnsureDefaults picks it up.
type PlatformConfig struct {
	SeedTreasuryUserID string `envconfig:"LIFECERT_PLATFORM_TREASURY_USER_ID"`
	SeedMintPriceCents int64  `envconfig:"LIFECERT_PLATFORM_SEED_MINT_PRICE_CENTS" default:"1000"`
	SeedAppendCents    int64  `envconfig:"LIFECERT_PLATFORM_SEED_APPEND_PRICE_CENTS" default:"100"`
	Name               string `envconfig:"LIFECERT_PLATFORM_NAME" default:"LifeCert"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"LIFECERT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"LIFECERT_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"LIFECERT_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	LedgerTopic string `envconfig:"LIFECERT_PUBSUB_LEDGER_TOPIC" default:"lifecert-ledger-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"LIFECERT_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"LIFECERT_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"LIFECERT_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
