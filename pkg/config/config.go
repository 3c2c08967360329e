package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Auth         AuthConfig
	RateLimit    RateLimitConfig
	Assistant    AssistantConfig
	LLM          LLMConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"STOCKWISE_APP_ENV" required:"true"`
	Port         string `envconfig:"STOCKWISE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOCKWISE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOCKWISE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"STOCKWISE_DB_DSN"`
	Driver string `envconfig:"STOCKWISE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STOCKWISE_DB_HOST"`
	LegacyPort     int    `envconfig:"STOCKWISE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOCKWISE_DB_USER"`
	LegacyPassword string `envconfig:"STOCKWISE_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOCKWISE_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOCKWISE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOCKWISE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOCKWISE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOCKWISE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOCKWISE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOCKWISE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STOCKWISE_REDIS_ADDR"`
	Password     string        `envconfig:"STOCKWISE_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOCKWISE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOCKWISE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOCKWISE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOCKWISE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOCKWISE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOCKWISE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"STOCKWISE_JWT_SECRET"`
	Issuer            string `envconfig:"STOCKWISE_JWT_ISSUER" default:"stockwise"`
	ExpirationMinutes int    `envconfig:"STOCKWISE_JWT_EXPIRATION_MINUTES" default:"60"`
}

// AuthConfig controls the credential checks in front of the assistant
// endpoint. When APIKey is empty and no hashed keys exist in the store,
// requests pass unauthenticated (dev behavior).
type AuthConfig struct {
	APIKey string `envconfig:"STOCKWISE_API_KEY"`
}

type RateLimitConfig struct {
	Window   time.Duration `envconfig:"STOCKWISE_RATE_LIMIT_WINDOW" default:"1m"`
	Requests int           `envconfig:"STOCKWISE_RATE_LIMIT_REQUESTS" default:"10"`
}

// AssistantConfig carries the pipeline thresholds.
type AssistantConfig struct {
	MaxQueryLen       int           `envconfig:"STOCKWISE_ASSISTANT_MAX_QUERY_LEN" default:"500"`
	SalesWindowDays   int           `envconfig:"STOCKWISE_ASSISTANT_SALES_WINDOW_DAYS" default:"30"`
	TrendWindowDays   int           `envconfig:"STOCKWISE_ASSISTANT_TREND_WINDOW_DAYS" default:"30"`
	LowStockThreshold int           `envconfig:"STOCKWISE_ASSISTANT_LOW_STOCK_THRESHOLD" default:"10"`
	FuzzyCutoff       float64       `envconfig:"STOCKWISE_ASSISTANT_FUZZY_CUTOFF" default:"0.3"`
	CategoryCutoff    float64       `envconfig:"STOCKWISE_ASSISTANT_CATEGORY_CUTOFF" default:"0.4"`
	MaxFuzzyRows      int           `envconfig:"STOCKWISE_ASSISTANT_MAX_FUZZY_ROWS" default:"100"`
	TopCategories     int           `envconfig:"STOCKWISE_ASSISTANT_TOP_CATEGORIES" default:"5"`
	TrendCacheTTL     time.Duration `envconfig:"STOCKWISE_ASSISTANT_TREND_CACHE_TTL" default:"1h"`
}

type LLMConfig struct {
	BaseURL     string        `envconfig:"STOCKWISE_LLM_BASE_URL" default:"http://localhost:11434/api/generate"`
	Model       string        `envconfig:"STOCKWISE_LLM_MODEL" default:"stockwise-model"`
	Timeout     time.Duration `envconfig:"STOCKWISE_LLM_TIMEOUT" default:"60s"`
	Temperature float64       `envconfig:"STOCKWISE_LLM_TEMPERATURE" default:"0.1"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"STOCKWISE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"STOCKWISE_AUTO_MIGRATE" default:"false"`
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
