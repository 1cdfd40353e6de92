package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr          string
	DatabaseDSN       string
	JWTSecret         string
	SessionTTL        time.Duration
	BootstrapUser     string
	BootstrapPassword string
	MaxRequestBytes   int64
}

func Load() Config {
	cfg := Config{
		HTTPAddr:          getEnv("OAR_HTTP_ADDR", ":8080"),
		DatabaseDSN:       getEnv("OAR_DB_DSN", "file:observe.db?cache=shared&mode=rwc"),
		JWTSecret:         getEnv("OAR_JWT_SECRET", "dev-secret-change"),
		SessionTTL:        getDuration("OAR_SESSION_TTL", 24*time.Hour),
		BootstrapUser:     getEnv("OAR_BOOTSTRAP_USER", "admin"),
		BootstrapPassword: getEnv("OAR_BOOTSTRAP_PASSWORD", "password123"),
		MaxRequestBytes:   getInt64("OAR_MAX_REQUEST_BYTES", 1<<20),
	}
	if cfg.JWTSecret == "dev-secret-change" {
		log.Println("WARNING: using development JWT secret; set OAR_JWT_SECRET")
	}
	return cfg
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt64(key string, def int64) int64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}
