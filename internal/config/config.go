package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis (submission throttle; disabled when empty)
	RedisAddr         string
	ReportThrottleMax int
	ReportThrottleTTL time.Duration

	// JWT for moderator sessions
	JWTSecret       string
	JWTAccessExpiry time.Duration

	// Admin
	AdminEmail    string
	AdminPassword string
	AdminToken    string

	// Payments
	StripeSecretKey     string
	StripeWebhookSecret string
	CheckoutReturnURL   string
	ShowcasePriceCents  int64
	ShowcaseCurrency    string

	// Showcase lifecycle
	PostWindow      time.Duration
	FreeRepostLimit int

	// Logging
	LogRetention time.Duration

	// Server
	Port        string
	CORSOrigins string
	SentryDSN   string
	Environment string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "bairro_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:         getEnv("REDIS_ADDR", ""),
		ReportThrottleMax: parseInt(getEnv("REPORT_THROTTLE_MAX", "5"), 5),
		ReportThrottleTTL: parseDuration(getEnv("REPORT_THROTTLE_WINDOW", "10m"), 10*time.Minute),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTAccessExpiry: parseDuration(getEnv("JWT_ACCESS_EXPIRY", "12h"), 12*time.Hour),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminToken:    getEnv("ADMIN_TOKEN", ""),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		CheckoutReturnURL:   getEnv("CHECKOUT_RETURN_URL", "http://localhost:3000/vitrine/pagamento?session_id={CHECKOUT_SESSION_ID}"),
		ShowcasePriceCents:  int64(parseInt(getEnv("SHOWCASE_PRICE_CENTS", "990"), 990)),
		ShowcaseCurrency:    getEnv("SHOWCASE_CURRENCY", "brl"),

		PostWindow:      parseDuration(getEnv("SHOWCASE_POST_WINDOW", "48h"), 48*time.Hour),
		FreeRepostLimit: parseInt(getEnv("SHOWCASE_FREE_REPOST_LIMIT", "1"), 1),

		LogRetention: parseDuration(getEnv("LOG_RETENTION", "720h"), 30*24*time.Hour),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		SentryDSN:   getEnv("SENTRY_DSN", ""),
		Environment: getEnv("APP_ENV", "development"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
