package config

import (
	"database/sql"
	"log"
	"os"
	"strconv"

	"github.com/spf13/cast"
)

type Config struct {
	Port             int
	DatabaseURL      string
	RedisAddr        string
	UpstreamBaseURL  string
	PageDelayMs      int
	RequestTimeoutMs int
	PageLimit        int
}

func Load() *Config {
	return &Config{
		Port:             envInt("PORT", 8080),
		DatabaseURL:      env("DATABASE_URL", "postgres://vidvault:vidvault@db:5432/vidvault?sslmode=disable"),
		RedisAddr:        env("REDIS_ADDR", "redis:6379"),
		UpstreamBaseURL:  env("UPSTREAM_BASE_URL", "https://api.vidsrc.example/api/v1"),
		PageDelayMs:      envInt("PAGE_DELAY_MS", 500),
		RequestTimeoutMs: envInt("REQUEST_TIMEOUT_MS", 10000),
		PageLimit:        envInt("PAGE_LIMIT", 24),
	}
}

// MergeFromDB overlays persisted settings rows onto the env-derived config.
// A missing table or empty result is not an error; env values stand.
func (c *Config) MergeFromDB(db *sql.DB) {
	rows, err := db.Query("SELECT key, value FROM settings")
	if err != nil {
		log.Printf("config: skipping DB merge: %v", err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			continue
		}
		switch key {
		case "upstream_base_url":
			c.UpstreamBaseURL = value
		case "page_delay_ms":
			if v := cast.ToInt(value); v > 0 {
				c.PageDelayMs = v
			}
		case "request_timeout_ms":
			if v := cast.ToInt(value); v > 0 {
				c.RequestTimeoutMs = v
			}
		case "page_limit":
			if v := cast.ToInt(value); v > 0 {
				c.PageLimit = v
			}
		}
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
