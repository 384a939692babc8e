package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config - настройки сервера, собранные из окружения
type Config struct {
	Addr              string
	Storage           string // memory | postgres | sqlite
	SQLitePath        string
	ThreadMaxDepth    int
	ReconcileInterval time.Duration
	CacheSize         int
	CacheTTL          time.Duration
}

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println(".env file not found")
	}
}

// GetEnv возвращает обязательную переменную, без нее сервер не стартует
func GetEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("environment variable %s is not set", key)
	}
	return value
}

// Load читает необязательные переменные с значениями по умолчанию
func Load() Config {
	return Config{
		Addr:              envString("ADDR", ":8080"),
		Storage:           envString("STORAGE", "memory"),
		SQLitePath:        envString("SQLITE_PATH", "threadly.db"),
		ThreadMaxDepth:    envInt("THREAD_MAX_DEPTH", 2),
		ReconcileInterval: envDuration("RECONCILE_INTERVAL", 10*time.Minute),
		CacheSize:         envInt("CACHE_SIZE", 500),
		CacheTTL:          envDuration("CACHE_TTL", 30*time.Second),
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		log.Printf("invalid %s=%q, using %d", key, v, def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		log.Printf("invalid %s=%q, using %s", key, v, def)
		return def
	}
	return d
}
