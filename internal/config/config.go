package config

import (
	"os"
	"strings"
	"time"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	defaultDSN = "host=localhost user=postgres password=postgres dbname=employee_management port=5432 sslmode=disable"
)

// Config holds the API process settings. Values come from the environment;
// cmd/api loads a .env file first so local overrides work.
type Config struct {
	Port         string
	DSN          string
	StoreDriver  string
	RedisAddr    string
	KafkaBroker  string
	UploadsDir   string
	CORSOrigin   string
	AppEnv       string
	LogLevel     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

func Load() Config {
	driver := strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres))
	if driver != StoreDriverMemory {
		driver = StoreDriverPostgres
	}

	return Config{
		Port:         getEnv("PORT", "5000"),
		DSN:          getEnv("DB_DSN", defaultDSN),
		StoreDriver:  driver,
		RedisAddr:    getEnv("REDIS_ADDR", ""),
		KafkaBroker:  getEnv("KAFKA_BROKER", ""),
		UploadsDir:   getEnv("UPLOADS_DIR", "./uploads"),
		CORSOrigin:   getEnv("CORS_ORIGIN", "*"),
		AppEnv:       strings.ToLower(getEnv("APP_ENV", "development")),
		LogLevel:     strings.ToLower(getEnv("LOG_LEVEL", "info")),
		ReadTimeout:  getDuration("HTTP_READ_TIMEOUT", 5*time.Second),
		WriteTimeout: getDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
		IdleTimeout:  getDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
	}
}

// IsProduction reports whether logs should be JSON.
func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// getDuration reads values like "15s". Unparsable or non-positive values
// keep the fallback.
func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
