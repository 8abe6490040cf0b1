// Package config loads runtime settings and opens the backing stores.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel string
	Port     string

	DBDriver       string
	DBDSN          string
	DBAutoMigrate  bool
	DBMaxOpenConns int

	JWTSecret string
	JWTTTL    time.Duration

	CORSOrigins []string

	RedisAddr      string
	ReportCacheTTL time.Duration

	LowStockThreshold int
	LowStockCron      string
	FonnteToken       string
	AlertPhone        string

	Seed            bool
	ShutdownTimeout time.Duration
}

// Load reads the environment, optionally primed from a .env file.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file loaded, using process environment", "error", err)
	}

	return Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Port:     getEnv("PORT", "8080"),

		DBDriver:       strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBDSN:          getEnv("DB_DSN", "pos.db"),
		DBAutoMigrate:  getEnvBool("DB_AUTO_MIGRATE", true),
		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),

		JWTSecret: getEnv("JWT_SECRET", "change-me"),
		JWTTTL:    time.Duration(getEnvInt("JWT_TTL_HOURS", 24)) * time.Hour,

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),

		RedisAddr:      getEnv("REDIS_ADDR", ""),
		ReportCacheTTL: time.Duration(getEnvInt("REPORT_CACHE_TTL_SECONDS", 30)) * time.Second,

		LowStockThreshold: getEnvInt("LOW_STOCK_THRESHOLD", 10),
		LowStockCron:      getEnv("LOW_STOCK_CRON", "0 0 8 * * *"),
		FonnteToken:       getEnv("FONNTE_TOKEN", ""),
		AlertPhone:        getEnv("ALERT_PHONE", ""),

		Seed:            getEnvBool("SEED", false),
		ShutdownTimeout: time.Duration(getEnvInt("SHUTDOWN_TIMEOUT_SECONDS", 15)) * time.Second,
	}
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
