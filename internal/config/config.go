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

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Backend  BackendConfig
	JWT      JWTConfig
	Scrape   ScrapeConfig
	WS       WSConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout time.Duration
	PoolMaxConns   int32
}

// Enabled reports whether enough connection details were supplied to open a pool.
func (c DatabaseConfig) Enabled() bool {
	return c.DBHost != "" && c.DBName != ""
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	TTL      time.Duration
}

type BackendConfig struct {
	WebappURL   string
	HTTPTimeout time.Duration
}

type JWTConfig struct {
	AccessSecret string
}

type ScrapeConfig struct {
	Headless         bool
	PollInitialDelay time.Duration
	PollInterval     time.Duration
	PollAttempts     int
	Workers          int
	SitesFile        string
	PageTimeout      time.Duration
	RefreshSpec      string
	RefreshLimit     int
}

type WSConfig struct {
	// AllowedOrigins may end in "*" to match a prefix. Empty allows any origin.
	AllowedOrigins []string
}

var (
	errMissingRequiredEnv = errors.New("missing required environment variables")
	errInvalidEnv         = errors.New("invalid environment variables")
)

// Load reads the server configuration. APP_NAME, APP_ENV and HTTP_PORT are
// required.
func Load() (Config, error) {
	return load(true)
}

// LoadTool reads the same variables but requires none of them, for one-shot
// command line tools.
func LoadTool() (Config, error) {
	return load(false)
}

func load(strict bool) (Config, error) {
	// .env is optional; real environment always wins.
	_ = godotenv.Load()

	cfg := Config{}

	var missing []string
	var invalid []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" && strict {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}
	optInt := func(key string, def int) int {
		raw := opt(key)
		if raw == "" {
			return def
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			invalid = append(invalid, key)
			return def
		}
		return v
	}
	optMillis := func(key string, def time.Duration) time.Duration {
		raw := opt(key)
		if raw == "" {
			return def
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			invalid = append(invalid, key)
			return def
		}
		return time.Duration(v) * time.Millisecond
	}
	optBool := func(key string, def bool) bool {
		raw := opt(key)
		if raw == "" {
			return def
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return v
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
	}

	cfg.Database = DatabaseConfig{
		DBHost:         opt("DB_HOST"),
		DBPort:         opt("DB_PORT"),
		DBName:         opt("DB_NAME"),
		DBUser:         opt("DB_USER"),
		DBPassword:     opt("DB_PASSWORD"),
		DBSSLMode:      opt("DB_SSL_MODE"),
		ConnectTimeout: time.Duration(optInt("DB_CONNECT_TIMEOUT_SECONDS", 5)) * time.Second,
		PoolMaxConns:   int32(optInt("DB_POOL_MAX_CONNS", 0)),
	}
	if cfg.Database.DBSSLMode == "" {
		cfg.Database.DBSSLMode = "disable"
	}

	cfg.Redis = RedisConfig{
		Host:     opt("REDIS_HOST"),
		Port:     opt("REDIS_PORT"),
		Password: opt("REDIS_PASSWORD"),
		TTL:      time.Duration(optInt("REDIS_TTL", 600)) * time.Second,
	}

	cfg.Backend = BackendConfig{
		WebappURL:   strings.TrimRight(opt("WEBAPP_URL"), "/"),
		HTTPTimeout: time.Duration(optInt("HTTP_TIMEOUT_SECONDS", 15)) * time.Second,
	}

	cfg.JWT = JWTConfig{
		AccessSecret: opt("JWT_ACCESS_SECRET"),
	}

	cfg.Scrape = ScrapeConfig{
		Headless:         optBool("SCRAPE_HEADLESS", false),
		PollInitialDelay: optMillis("SCRAPE_POLL_INITIAL_DELAY_MS", 500*time.Millisecond),
		PollInterval:     optMillis("SCRAPE_POLL_INTERVAL_MS", 700*time.Millisecond),
		PollAttempts:     optInt("SCRAPE_POLL_ATTEMPTS", 30),
		Workers:          optInt("SCRAPE_WORKERS", 4),
		SitesFile:        opt("SITES_FILE"),
		PageTimeout:      time.Duration(optInt("SCRAPE_PAGE_TIMEOUT_SECONDS", 45)) * time.Second,
		RefreshSpec:      opt("SCRAPE_REFRESH_SCHEDULE"),
		RefreshLimit:     optInt("SCRAPE_REFRESH_LIMIT", 20),
	}

	for _, o := range strings.Split(opt("WS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.WS.AllowedOrigins = append(cfg.WS.AllowedOrigins, o)
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errInvalidEnv, strings.Join(invalid, ", "))
	}

	return cfg, nil
}
