package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	StoreSQLite = "sqlite"
	StoreFile   = "file"
	StoreMemory = "memory"

	BusLocal = "local"
	BusRedis = "redis"
)

type Config struct {
	AppURL                      string
	Env                         string
	StoreDriver                 string
	DatabaseDSN                 string
	DataDir                     string
	BusDriver                   string
	RedisAddr                   string
	RedisChannelPrefix          string
	RateLimit                   int
	ShutdownTimeoutSeconds      int
	LogReconcileIntervalSeconds int
	LogRetention                string
}

func Load() (Config, error) {
	appHost := getEnv("APP_HOST", "127.0.0.1")
	appPort := getEnv("APP_PORT", "8080")
	redisHost := getEnv("REDIS_HOST", "127.0.0.1")
	redisPort := getEnv("REDIS_PORT", "6379")

	rateLimit, err := getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60)
	if err != nil {
		return Config{}, err
	}
	shutdownTimeout, err := getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 20)
	if err != nil {
		return Config{}, err
	}
	reconcileInterval, err := getEnvAsInt("LOG_RECONCILE_INTERVAL_SECONDS", 0)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppURL:                      fmt.Sprintf("%s:%s", appHost, appPort),
		Env:                         getEnv("APP_ENV", "production"),
		StoreDriver:                 getEnv("STORE_DRIVER", StoreSQLite),
		DatabaseDSN:                 getEnv("DATABASE_DSN", "equipcare.db"),
		DataDir:                     getEnv("DATA_DIR", "data"),
		BusDriver:                   getEnv("BUS_DRIVER", BusLocal),
		RedisAddr:                   fmt.Sprintf("%s:%s", redisHost, redisPort),
		RedisChannelPrefix:          getEnv("REDIS_CHANNEL_PREFIX", "equipcare"),
		RateLimit:                   rateLimit,
		ShutdownTimeoutSeconds:      shutdownTimeout,
		LogReconcileIntervalSeconds: reconcileInterval,
		LogRetention:                getEnv("LOG_RETENTION", "retain"),
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	switch cfg.StoreDriver {
	case StoreSQLite:
		if cfg.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN must not be empty")
		}
	case StoreFile:
		if cfg.DataDir == "" {
			return fmt.Errorf("DATA_DIR must not be empty")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be one of sqlite, file, memory (got %q)", cfg.StoreDriver)
	}

	switch cfg.BusDriver {
	case BusLocal, BusRedis:
	default:
		return fmt.Errorf("BUS_DRIVER must be local or redis (got %q)", cfg.BusDriver)
	}
	if cfg.BusDriver == BusRedis && cfg.RedisChannelPrefix == "" {
		return fmt.Errorf("REDIS_CHANNEL_PREFIX must not be empty")
	}

	if cfg.LogRetention != "retain" && cfg.LogRetention != "cascade" {
		return fmt.Errorf("LOG_RETENTION must be retain or cascade (got %q)", cfg.LogRetention)
	}
	if cfg.Env != "production" && cfg.Env != "development" {
		return fmt.Errorf("APP_ENV must be production or development (got %q)", cfg.Env)
	}
	if cfg.RateLimit <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be greater than 0")
	}
	if cfg.ShutdownTimeoutSeconds <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT_SECONDS must be greater than 0")
	}
	if cfg.LogReconcileIntervalSeconds < 0 {
		return fmt.Errorf("LOG_RECONCILE_INTERVAL_SECONDS must not be negative")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) (int, error) {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid integer value for %s: %q", key, v)
		}
		return i, nil
	}
	return defaultVal, nil
}
