package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	Port        string

	LogLevel  string
	LogFormat string

	AuthJWTSecret string

	OpenAIAPIKey string
	GeminiAPIKey string
	GeminiModel  string

	StripeSecretKey     string
	StripeWebhookSecret string
	CheckoutSuccessURL  string
	CheckoutCancelURL   string

	BeehiivAPIKey        string
	BeehiivPublicationID string

	SupabaseURL     string
	SupabaseAnonKey string

	RedisAddr     string
	RedisPassword string

	CORSAllowedOrigins []string

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
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "ytza"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: environment,
		Port:        getenv("PORT", "8080"),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "json"),

		AuthJWTSecret: strings.TrimSpace(getenv("AUTH_JWT_SECRET", "")),

		OpenAIAPIKey: strings.TrimSpace(getenv("OPENAI_API_KEY", "")),
		GeminiAPIKey: strings.TrimSpace(getenv("GEMINI_API_KEY", "")),
		GeminiModel:  getenv("GEMINI_MODEL", "gemini-2.0-flash"),

		StripeSecretKey:     strings.TrimSpace(getenv("STRIPE_SECRET_KEY", "")),
		StripeWebhookSecret: strings.TrimSpace(getenv("STRIPE_WEBHOOK_SECRET", "")),
		CheckoutSuccessURL:  getenv("CHECKOUT_SUCCESS_URL", "http://localhost:3000/dashboard?session_id={CHECKOUT_SESSION_ID}"),
		CheckoutCancelURL:   getenv("CHECKOUT_CANCEL_URL", "http://localhost:3000/pricing"),

		BeehiivAPIKey:        strings.TrimSpace(getenv("BEEHIIV_API_KEY", "")),
		BeehiivPublicationID: strings.TrimSpace(getenv("BEEHIIV_PUBLICATION_ID", "")),

		SupabaseURL:     strings.TrimSpace(getenv("NEXT_PUBLIC_SUPABASE_URL", "")),
		SupabaseAnonKey: strings.TrimSpace(getenv("NEXT_PUBLIC_SUPABASE_ANON_KEY", "")),

		RedisAddr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword: getenv("REDIS_PASSWORD", ""),

		CORSAllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "ytza"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
	}

	return cfg
}

// Feature enablement is derived from which provider keys are present. A missing
// key degrades the corresponding feature instead of crashing the process.
func (c Config) ThumbnailsEnabled() bool { return c.OpenAIAPIKey != "" }
func (c Config) ContentEnabled() bool    { return c.GeminiAPIKey != "" }
func (c Config) BillingEnabled() bool {
	return c.StripeSecretKey != "" && c.StripeWebhookSecret != ""
}
func (c Config) NewsletterEnabled() bool {
	return c.BeehiivAPIKey != "" && c.BeehiivPublicationID != ""
}

// MissingRequired reports which required environment variables are unset.
// Surfaced by the health endpoint as configValid=false.
func (c Config) MissingRequired() []string {
	var missing []string
	if c.OpenAIAPIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if c.GeminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if c.SupabaseURL == "" {
		missing = append(missing, "NEXT_PUBLIC_SUPABASE_URL")
	}
	if c.SupabaseAnonKey == "" {
		missing = append(missing, "NEXT_PUBLIC_SUPABASE_ANON_KEY")
	}
	return missing
}

func (c Config) Valid() bool {
	return len(c.MissingRequired()) == 0
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

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
