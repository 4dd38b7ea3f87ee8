package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	BaseURL   string // public site base URL, used for sitemap and payment redirects
	JWTKey    string
	SaltRound int

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	// Bootstrap seed only: the matching user is promoted to ADMIN once at startup.
	// Standing admin authority lives on the user record, never on this value.
	AdminEmail string

	AreebaBaseURL    string
	AreebaMerchantID string
	AreebaAPIKey     string
	AreebaReturnURL  string

	ZainCashBaseURL    string
	ZainCashMerchantID string
	ZainCashSecret     string
	ZainCashMsisdn     string
	ZainCashRedirect   string

	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string

	EmailSender   string
	EmailPassword string
}

// LoadConfig initializes configuration from the environment. Missing required
// variables are fatal: a half-configured process must not start serving.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	cfg := &Config{
		Port:      getEnv("PORT", "3000"),
		BaseURL:   getEnv("BASE_URL", "http://localhost:3000"),
		JWTKey:    mustEnv("JWT_SECRET_KEY"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     mustEnv("DB_NAME"),
		DBPort:     getEnv("DB_PORT", "5432"),

		AdminEmail: getEnv("ADMIN_EMAIL", ""),

		AreebaBaseURL:    getEnv("AREEBA_BASE_URL", "https://gateway.areeba.com"),
		AreebaMerchantID: mustEnv("AREEBA_MERCHANT_ID"),
		AreebaAPIKey:     mustEnv("AREEBA_API_KEY"),
		AreebaReturnURL:  getEnv("AREEBA_RETURN_URL", ""),

		ZainCashBaseURL:    getEnv("ZAINCASH_BASE_URL", "https://api.zaincash.iq"),
		ZainCashMerchantID: mustEnv("ZAINCASH_MERCHANT_ID"),
		ZainCashSecret:     mustEnv("ZAINCASH_SECRET"),
		ZainCashMsisdn:     mustEnv("ZAINCASH_MSISDN"),
		ZainCashRedirect:   getEnv("ZAINCASH_REDIRECT_URL", ""),

		S3Endpoint:  getEnv("S3_ENDPOINT_URL", ""),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3AccessKey: mustEnv("S3_ACCESS_KEY_ID"),
		S3SecretKey: mustEnv("S3_SECRET_ACCESS_KEY"),
		S3Bucket:    mustEnv("S3_BUCKET_NAME"),

		EmailSender:   getEnv("EMAIL_SENDER", ""),
		EmailPassword: getEnv("EMAIL_PASSWORD", ""),
	}

	if cfg.AreebaReturnURL == "" {
		cfg.AreebaReturnURL = cfg.BaseURL + "/api/payments/areeba/redirect"
	}
	if cfg.ZainCashRedirect == "" {
		cfg.ZainCashRedirect = cfg.BaseURL + "/api/payments/zaincash/redirect"
	}

	return cfg
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// mustEnv retrieves a required environment variable or halts the process
func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
