package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config holds application runtime configuration.
type Config struct {
	Env      string
	HTTPPort string

	StoreDriver   string
	DBPath        string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	StateKey      string

	// BackendURL is the spreadsheet web app endpoint; empty disables sync.
	BackendURL       string
	SyncInterval     time.Duration
	SyncTimeout      time.Duration
	MenuFetchOnStart bool

	JWTSecret    string
	AdminPINHash string
	TokenTTL     time.Duration

	DispatchOverdueAfter time.Duration
	SideItemID           string
	RequireInitialStock  bool

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Load reads environment variables and .env (if present).
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:                  getEnv("APP_ENV", "development"),
		HTTPPort:             getEnv("HTTP_PORT", "8080"),
		StoreDriver:          strings.ToLower(getEnv("STORE_DRIVER", DriverSQLite)),
		DBPath:               getEnv("DB_PATH", "data/grill.db"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		RedisDB:              getInt("REDIS_DB", 0),
		StateKey:             getEnv("STATE_KEY", "grill_state"),
		BackendURL:           os.Getenv("BACKEND_URL"),
		SyncInterval:         getDuration("SYNC_INTERVAL", 30*time.Second),
		SyncTimeout:          getDuration("SYNC_TIMEOUT", 15*time.Second),
		MenuFetchOnStart:     getBool("MENU_FETCH_ON_START", true),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		AdminPINHash:         os.Getenv("ADMIN_PIN_HASH"),
		TokenTTL:             getDuration("TOKEN_TTL", 12*time.Hour),
		DispatchOverdueAfter: getDuration("DISPATCH_OVERDUE_AFTER", 20*time.Minute),
		SideItemID:           getEnv("SIDE_ITEM_ID", "brambora"),
		RequireInitialStock:  getBool("REQUIRE_INITIAL_STOCK", true),
		ReadTimeout:          getDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:         getDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:          getDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:      getDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	switch cfg.StoreDriver {
	case DriverSQLite:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return cfg, errors.New("DATABASE_URL is required for the postgres store")
		}
	case DriverRedis:
	default:
		return cfg, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.JWTSecret == "" {
		return cfg, errors.New("JWT_SECRET is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func getInt(key string, fallback int) int {
	val, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return val
}

func getBool(key string, fallback bool) bool {
	val, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return val
}

func getDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		// Support seconds as integer without suffix.
		if secs, convErr := strconv.Atoi(val); convErr == nil {
			return time.Duration(secs) * time.Second
		}
		return fallback
	}
	return d
}
