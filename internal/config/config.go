package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName        = "FreshCart"
	defaultAppEnv         = "development"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultLogFormat      = "json"
	defaultUserStore      = UserStoreMongo
	defaultMongoDatabase  = "freshcart"
	defaultShutdownDelay  = 10 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour
	defaultTokenTTL       = 7 * 24 * time.Hour
	defaultCheckoutTTL    = 30 * time.Minute
	defaultBcryptCost     = 10
	defaultLoginRateLimit = 5
	defaultCurrency       = "INR"
)

// Supported credential store backends.
const (
	UserStoreMongo    = "mongo"
	UserStorePostgres = "postgres"
	UserStoreMemory   = "memory"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	LogFormat      string
	UserStore      string
	DatabaseURL    string
	MongoURL       string
	MongoDatabase  string
	RedisURL       string
	RabbitMQURL    string
	JWTSecret      string
	TokenTTL       time.Duration
	BcryptCost     int
	LoginRateLimit int
	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration
	SnapshotTTL    time.Duration
	CheckoutTTL    time.Duration
	PaymentKeyID   string
	Currency       string
	StoreName      string
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:       getEnv("APP_NAME", defaultAppName),
		AppEnv:        getEnv("APP_ENV", defaultAppEnv),
		Port:          getEnv("PORT", defaultPort),
		LogLevel:      strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		LogFormat:     strings.ToLower(getEnv("LOG_FORMAT", defaultLogFormat)),
		UserStore:     strings.ToLower(getEnv("USER_STORE", defaultUserStore)),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		MongoURL:      os.Getenv("MONGO_URL"),
		MongoDatabase: getEnv("MONGO_DATABASE", defaultMongoDatabase),
		RedisURL:      os.Getenv("REDIS_URL"),
		RabbitMQURL:   os.Getenv("RABBITMQ_URL"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		PaymentKeyID:  os.Getenv("PAYMENT_KEY_ID"),
		Currency:      strings.ToUpper(getEnv("PAYMENT_CURRENCY", defaultCurrency)),
		StoreName:     getEnv("STORE_NAME", defaultAppName),
	}

	var err error
	if cfg.ShutdownPeriod, err = durationEnv("SHUTDOWN_TIMEOUT", defaultShutdownDelay); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationEnv("IDEMPOTENCY_TTL", defaultIdempotencyTTL); err != nil {
		return Config{}, err
	}
	if cfg.TokenTTL, err = durationEnv("TOKEN_TTL", defaultTokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.SnapshotTTL, err = durationEnv("SNAPSHOT_TTL", 0); err != nil {
		return Config{}, err
	}
	if cfg.CheckoutTTL, err = durationEnv("CHECKOUT_TTL", defaultCheckoutTTL); err != nil {
		return Config{}, err
	}
	if cfg.BcryptCost, err = intEnv("BCRYPT_COST", defaultBcryptCost); err != nil {
		return Config{}, err
	}
	if cfg.LoginRateLimit, err = intEnv("LOGIN_RATE_LIMIT", defaultLoginRateLimit); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}

	switch c.UserStore {
	case UserStoreMongo:
		if c.MongoURL == "" {
			return fmt.Errorf("MONGO_URL must be set when USER_STORE=%s", c.UserStore)
		}
	case UserStorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must be set when USER_STORE=%s", c.UserStore)
		}
	case UserStoreMemory:
		if !c.IsDev() {
			return fmt.Errorf("USER_STORE=%s is only allowed in development", c.UserStore)
		}
	default:
		return fmt.Errorf("unknown USER_STORE %q", c.UserStore)
	}

	if c.RedisURL == "" && !c.IsDev() {
		return fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", c.AppEnv)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	return nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the app runs in a local development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// durationEnv reads KEY_SECONDS as an integer first, then KEY as a Go duration.
func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	secondsKey := key + "_SECONDS"
	if v := os.Getenv(secondsKey); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", secondsKey, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		return d, nil
	}
	return fallback, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
