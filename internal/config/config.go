package config

import (
	"os"
	"strconv"
	"time"
)

// StoreConfig configures the store node.
type StoreConfig struct {
	HTTPAddr           string
	MySQLDSN           string
	CentralBaseURL     string
	SyncEnabled        bool
	SyncInterval       time.Duration
	SyncMaxRetries     int
	SyncInitialBackoff time.Duration
	SyncClientTimeout  time.Duration
}

func LoadStore() *StoreConfig {
	return &StoreConfig{
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		MySQLDSN:           getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/store_inventory?parseTime=true"),
		CentralBaseURL:     getEnv("CENTRAL_BASE_URL", "http://localhost:8081"),
		SyncEnabled:        getEnvBool("SYNC_ENABLED", true),
		SyncInterval:       getEnvMillis("SYNC_INTERVAL_MS", 15*time.Minute),
		SyncMaxRetries:     getEnvInt("SYNC_MAX_RETRIES", 3),
		SyncInitialBackoff: getEnvMillis("SYNC_INITIAL_BACKOFF_MS", 200*time.Millisecond),
		SyncClientTimeout:  getEnvMillis("SYNC_CLIENT_TIMEOUT_MS", 10*time.Second),
	}
}

// CentralConfig configures the central node. An empty RedisAddr disables
// the snapshot cache.
type CentralConfig struct {
	HTTPAddr  string
	MySQLDSN  string
	RedisAddr string
}

func LoadCentral() *CentralConfig {
	return &CentralConfig{
		HTTPAddr:  getEnv("HTTP_ADDR", ":8081"),
		MySQLDSN:  getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/central_inventory?parseTime=true"),
		RedisAddr: os.Getenv("REDIS_ADDR"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvMillis(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Millisecond
		}
	}
	return fallback
}
