package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv       string
	HTTPAddr     string
	MetricsAddr  string
	MySQLDSN     string
	RedisAddr    string
	RedisDB      int
	RedisPass    string
	RateLimitRPS int
	CacheTTL     time.Duration
	CSVFile      string
}

func Load() Config {
	// optional .env for local development; real env always wins
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	return Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		// clientFoundRows so no-op updates still report a matched row
		MySQLDSN:     env("MYSQL_DSN", "root:root@tcp(localhost:3306)/tatler?parseTime=true&clientFoundRows=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:    env("REDIS_ADDR", "localhost:6379"),
		RedisPass:    env("REDIS_PASSWORD", ""),
		RedisDB:      atoi("REDIS_DB", 0),
		RateLimitRPS: atoi("RATE_LIMIT_RPS", 100),
		CacheTTL:     time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		CSVFile:      env("CSV_FILE", "resources/restaurants.csv"),
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
