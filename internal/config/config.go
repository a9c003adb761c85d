package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	// PublicBaseURL is the storefront origin used to build buyer-facing
	// return links (download page, checkout cancel page).
	PublicBaseURL string
	// APIBaseURL is the externally reachable base URL of this service,
	// used to build gateway callback links.
	APIBaseURL string

	Currency    string
	DownloadTTL time.Duration

	OTLPEndpoint string

	AdminToken     string
	AdminTokenHash string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Cryptomus CryptomusConfig
	PayPal    PayPalConfig
}

// CryptomusConfig carries merchant credentials for the crypto gateway.
type CryptomusConfig struct {
	APIKey     string
	MerchantID string
}

// PayPalConfig carries PayPal REST credentials. WebhookID is optional; when
// empty, inbound webhook signature verification is skipped (trust downgrade).
type PayPalConfig struct {
	ClientID  string
	Secret    string
	WebhookID string
	Mode      string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "storefront"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: environment,
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		PublicBaseURL: strings.TrimRight(getenv("PUBLIC_BASE_URL", "http://localhost:5173"), "/"),
		APIBaseURL:    strings.TrimRight(getenv("API_BASE_URL", "http://localhost:8080"), "/"),

		Currency:    strings.ToUpper(getenv("CURRENCY", "USD")),
		DownloadTTL: getenvDuration("DOWNLOAD_TTL", 24*time.Hour),

		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),

		AdminToken:     strings.TrimSpace(getenv("ADMIN_TOKEN", "")),
		AdminTokenHash: strings.TrimSpace(getenv("ADMIN_TOKEN_HASH", "")),

		DBType:     getenv("DATABASE_TYPE", "postgres"),
		DBHost:     getenv("DATABASE_HOST", "localhost"),
		DBPort:     getenv("DATABASE_PORT", "5432"),
		DBName:     getenv("DATABASE_NAME", "storefront"),
		DBUser:     getenv("DATABASE_USER", "postgres"),
		DBPassword: getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:  getenv("DATABASE_SSLMODE", "disable"),

		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 600),

		Cryptomus: CryptomusConfig{
			APIKey:     strings.TrimSpace(getenv("CRYPTOMUS_API_KEY", "")),
			MerchantID: strings.TrimSpace(getenv("CRYPTOMUS_MERCHANT_ID", "")),
		},
		PayPal: PayPalConfig{
			ClientID:  strings.TrimSpace(getenv("PAYPAL_CLIENT_ID", "")),
			Secret:    strings.TrimSpace(getenv("PAYPAL_SECRET", "")),
			WebhookID: strings.TrimSpace(getenv("PAYPAL_WEBHOOK_ID", "")),
			Mode:      normalizePayPalMode(getenv("PAYPAL_MODE", "sandbox")),
		},
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func normalizePayPalMode(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "live" {
		return "live"
	}
	return "sandbox"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
