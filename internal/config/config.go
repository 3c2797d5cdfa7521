package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"

	ExportLocal = "local"
	ExportMinio = "minio"
)

type Config struct {
	Env      string
	Addr     string
	LogLevel string

	StoreDriver string
	SQLitePath  string
	DatabaseURL string
	RedisAddr   string

	JWTSecret      string
	RequireToken   bool
	AllowDevHeader bool

	CORSOrigins        []string
	RateLimitPerSecond int

	SessionTTL       time.Duration
	SessionCacheSize int
	SweepCron        string
	ShutdownTimeout  time.Duration

	ExportBackend string
	ExportDir     string
	Minio         Minio
}

type Minio struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Load reads the optional .env files (default ".env") and then the
// environment. Variables already set win over the file.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	cfg := &Config{
		Env:      GetEnvString("ENV", "development"),
		Addr:     GetEnvString("ADDR", ":8080"),
		LogLevel: GetEnvString("LOG_LEVEL", "info"),

		StoreDriver: GetEnvString("STORE_DRIVER", StoreSQLite),
		SQLitePath:  GetEnvString("SQLITE_PATH", "data/fmsp.db"),
		DatabaseURL: GetEnvString("DATABASE_URL", ""),
		RedisAddr:   GetEnvString("REDIS_ADDR", ""),

		JWTSecret:      GetEnvString("JWT_SECRET", "dev-secret-change-in-production"),
		RequireToken:   GetEnvBool("REQUIRE_TOKEN", false),
		AllowDevHeader: GetEnvBool("ALLOW_DEV_HEADER", true),

		CORSOrigins:        splitList(GetEnvString("CORS_ORIGINS", "*")),
		RateLimitPerSecond: GetEnvInt("RATE_LIMIT_PER_SECOND", 20),

		SessionTTL:       GetEnvDuration("SESSION_TTL", 2*time.Hour),
		SessionCacheSize: GetEnvInt("SESSION_CACHE_SIZE", 1024),
		SweepCron:        GetEnvString("SWEEP_CRON", "@every 1h"),
		ShutdownTimeout:  GetEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		ExportBackend: GetEnvString("EXPORT_BACKEND", ExportLocal),
		ExportDir:     GetEnvString("EXPORT_DIR", "data/exports"),
		Minio: Minio{
			Endpoint:  GetEnvString("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: GetEnvString("MINIO_ACCESS_KEY", ""),
			SecretKey: GetEnvString("MINIO_SECRET_KEY", ""),
			Bucket:    GetEnvString("MINIO_BUCKET", "fmsp-exports"),
			UseSSL:    GetEnvBool("MINIO_USE_SSL", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks combinations the process cannot start with
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.ExportBackend {
	case ExportLocal:
	case ExportMinio:
		if c.Minio.AccessKey == "" || c.Minio.SecretKey == "" {
			return errors.New("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for the minio backend")
		}
	default:
		return fmt.Errorf("unknown EXPORT_BACKEND %q", c.ExportBackend)
	}

	if c.RateLimitPerSecond < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_SECOND must not be negative")
	}
	return nil
}

func GetEnvString(key, defaultValue string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	return value
}

func GetEnvInt(key string, defaultValue int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return n
}

func GetEnvBool(key string, defaultValue bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return b
}

func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
