package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Placeholder shipped in the sample .env; a key id equal to it means payments are not set up.
const razorpayPlaceholderKeyID = "your_razorpay_key_id_here"

var ErrMissingJWTSecret = errors.New("JWT_SECRET environment variable is not set")

// This function will Load the ENVIORNMENT VARIABLES from .env if GO_ENV variable is not set
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		// A missing .env is fine in development, variables may come from the shell
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	return nil
}

type EnviornmentVariable struct {
	GO_ENV string
	PORT   int

	// Storage backend: "postgres" or "mongo"
	DB_DRIVER    string
	DB_USER_NAME string
	DB_PASSWORD  string
	DB_NAME      string
	DB_HOST      string
	DB_PORT      string
	DB_SSL_MODE  string
	// MongoDB Configuration
	MONGODB_URI      string
	MONGODB_DATABASE string

	// JWT Configuration
	JWT_SECRET string
	JWT_ISSUER string
	JWT_EXPIRY time.Duration

	// Redis Configuration
	REDIS_URL        string
	COURSE_CACHE_TTL time.Duration

	// Razorpay Configuration
	RAZORPAY_KEY_ID           string
	RAZORPAY_KEY_SECRET       string
	RAZORPAY_VERIFY_SIGNATURE bool
	PAYMENT_CURRENCY          string

	// Uploads: "local" or "spaces"
	UPLOAD_BACKEND string
	UPLOAD_DIR     string
	// DigitalOcean Spaces Configuration
	DO_SPACES_KEY      string
	DO_SPACES_SECRET   string
	DO_SPACES_BUCKET   string
	DO_SPACES_REGION   string
	DO_SPACES_ENDPOINT string
	DO_SPACES_CDN_URL  string

	ALLOWED_ORIGINS string
	ADMIN_EMAIL     string
	ADMIN_PASSWORD  string
	CRON_ENABLED    bool
}

func Get() (*EnviornmentVariable, error) {

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 5000
	}

	// Database defaults
	dbHost := getOrDefault("DB_HOST", "localhost")
	dbPort := getOrDefault("DB_PORT", "5432")

	envVariables := &EnviornmentVariable{
		GO_ENV: os.Getenv("GO_ENV"),
		PORT:   port,

		DB_DRIVER:    strings.ToLower(getOrDefault("DB_DRIVER", "postgres")),
		DB_USER_NAME: os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:  os.Getenv("DB_PASSWORD"),
		DB_NAME:      os.Getenv("DB_NAME"),
		DB_HOST:      dbHost,
		DB_PORT:      dbPort,
		DB_SSL_MODE:  getOrDefault("DB_SSL_MODE", "disable"),
		// Mongo
		MONGODB_URI:      getOrDefault("MONGODB_URI", "mongodb://localhost:27017"),
		MONGODB_DATABASE: getOrDefault("MONGODB_DATABASE", "skill_training"),
		// JWT
		JWT_SECRET: os.Getenv("JWT_SECRET"),
		JWT_ISSUER: getOrDefault("JWT_ISSUER", "skill-training-api"),
		JWT_EXPIRY: getDuration("JWT_EXPIRY", 7*24*time.Hour),
		// Redis
		REDIS_URL:        getOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		COURSE_CACHE_TTL: getDuration("COURSE_CACHE_TTL", 10*time.Minute),
		// Razorpay
		RAZORPAY_KEY_ID:           os.Getenv("RAZORPAY_KEY_ID"),
		RAZORPAY_KEY_SECRET:       os.Getenv("RAZORPAY_KEY_SECRET"),
		RAZORPAY_VERIFY_SIGNATURE: getBool("RAZORPAY_VERIFY_SIGNATURE", true),
		PAYMENT_CURRENCY:          getOrDefault("PAYMENT_CURRENCY", "INR"),
		// Uploads
		UPLOAD_BACKEND:     strings.ToLower(getOrDefault("UPLOAD_BACKEND", "local")),
		UPLOAD_DIR:         getOrDefault("UPLOAD_DIR", "uploads"),
		DO_SPACES_KEY:      os.Getenv("DO_SPACES_KEY"),
		DO_SPACES_SECRET:   os.Getenv("DO_SPACES_SECRET"),
		DO_SPACES_BUCKET:   os.Getenv("DO_SPACES_BUCKET"),
		DO_SPACES_REGION:   getOrDefault("DO_SPACES_REGION", "blr1"),
		DO_SPACES_ENDPOINT: os.Getenv("DO_SPACES_ENDPOINT"),
		DO_SPACES_CDN_URL:  os.Getenv("DO_SPACES_CDN_URL"),

		ALLOWED_ORIGINS: getOrDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		ADMIN_EMAIL:     os.Getenv("ADMIN_EMAIL"),
		ADMIN_PASSWORD:  os.Getenv("ADMIN_PASSWORD"),
		CRON_ENABLED:    getBool("CRON_ENABLED", false),
	}

	if envVariables.JWT_SECRET == "" {
		return nil, ErrMissingJWTSecret
	}

	return envVariables, nil
}

// IsProduction reports whether GO_ENV is production
func (e *EnviornmentVariable) IsProduction() bool {
	return e.GO_ENV == "production"
}

// PaymentsConfigured reports whether usable Razorpay credentials were supplied
func (e *EnviornmentVariable) PaymentsConfigured() bool {
	if e.RAZORPAY_KEY_ID == "" || e.RAZORPAY_KEY_SECRET == "" {
		return false
	}
	return e.RAZORPAY_KEY_ID != razorpayPlaceholderKeyID
}

func getOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
