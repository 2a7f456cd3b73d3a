package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// RedisConfig holds settings for the exchange-rate cache tier.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// CurrencyPair is a from/to currency pair kept fresh by the refresher.
type CurrencyPair struct {
	From string
	To   string
}

func (p CurrencyPair) String() string {
	return p.From + "/" + p.To
}

// FXConfig holds settings for exchange-rate fetching and caching.
type FXConfig struct {
	APIURL            string        // JSON rate API, base currency appended
	HTMLURL           string        // Optional HTML rate table fallback
	HTMLQuoteCurrency string        // Currency the HTML table quotes against
	FetchTimeout      time.Duration // Timeout for a single external fetch
	MaxAge            time.Duration // Rates older than this are stale
	MaxRetries        int
	Retention         time.Duration // Rows older than this are pruned

	RefreshEnabled  bool
	RefreshSchedule string // Cron expression (e.g., "0 */6 * * *")
	RefreshPairs    []CurrencyPair
	RefreshTimeout  time.Duration
}

type Config struct {
	Env string // "development", "production"

	// Database
	DatabaseURL     string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool

	Redis RedisConfig
	FX    FXConfig

	// Comparison
	CompareMaxParallel int

	// Rate resolution
	AllowUnlinkedPreferential bool
}

// Load reads configuration from the environment, after loading .env if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Env: getEnv("ENV", "development"),

		// Database
		DatabaseURL:     getEnv("DATABASE_URL", "postgres://localhost:5432/landedcost?sslmode=disable"),
		MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		AutoMigrate:     getBoolEnv("AUTO_MIGRATE", true),

		Redis: RedisConfig{
			Enabled:  getBoolEnv("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getIntEnv("REDIS_DB", 0),
		},

		FX: FXConfig{
			APIURL:            getEnv("FX_API_URL", "https://api.exchangerate-api.com/v4/latest/"),
			HTMLURL:           os.Getenv("FX_HTML_URL"),
			HTMLQuoteCurrency: strings.ToUpper(getEnv("FX_HTML_QUOTE_CURRENCY", "SGD")),
			FetchTimeout:      getDurationEnv("FX_FETCH_TIMEOUT", 10*time.Second),
			MaxAge:            getDurationEnv("FX_MAX_AGE", 24*time.Hour),
			MaxRetries:        getIntEnv("FX_MAX_RETRIES", 3),
			Retention:         getDurationEnv("FX_RETENTION", 7*24*time.Hour),

			RefreshEnabled:  getBoolEnv("FX_REFRESH_ENABLED", true),
			RefreshSchedule: getEnv("FX_REFRESH_SCHEDULE", "0 */6 * * *"),
			RefreshPairs:    parsePairs(getEnv("FX_REFRESH_PAIRS", "USD/SGD,USD/EUR,USD/CNY,USD/JPY,USD/AUD")),
			RefreshTimeout:  getDurationEnv("FX_REFRESH_TIMEOUT", 2*time.Minute),
		},

		CompareMaxParallel:        getIntEnv("COMPARE_MAX_PARALLEL", 8),
		AllowUnlinkedPreferential: getBoolEnv("ALLOW_UNLINKED_PREFERENTIAL", false),
	}
}

// RedisAddr returns host:port for the Redis client.
func (c *Config) RedisAddr() string {
	return c.Redis.Host + ":" + c.Redis.Port
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// parsePairs parses "USD/SGD,EUR/JPY". Malformed entries are skipped.
func parsePairs(raw string) []CurrencyPair {
	var pairs []CurrencyPair
	for _, item := range strings.Split(raw, ",") {
		from, to, ok := strings.Cut(strings.TrimSpace(item), "/")
		if !ok {
			continue
		}
		from = strings.ToUpper(strings.TrimSpace(from))
		to = strings.ToUpper(strings.TrimSpace(to))
		if len(from) != 3 || len(to) != 3 || from == to {
			continue
		}
		pairs = append(pairs, CurrencyPair{From: from, To: to})
	}
	return pairs
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
