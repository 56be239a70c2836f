package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode string // Set via flag, not env

	// MongoDB
	MongoURI    string
	MongoDbName string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// JWT
	JwtSecret string
	JwtTTL    time.Duration

	// Server
	ApiPort string

	// Twilio Verify (OTP delivery)
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioServiceSID string
	TwilioFromNumber string
	PhoneCountryCode string // prefixed to bare phone numbers, e.g. "+91"
	OtpTTL           time.Duration
	UnverifiedMaxAge time.Duration

	// Cloudinary (listing images)
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string
	ImageMaxDimension   int

	// OpenAI (farming assistant)
	OpenAIAPIKey string
	OpenAIModel  string

	// Rate Limiting Defaults
	RateLimitBucketSize int
	RateLimitRefillRate int // tokens per second
}

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	godotenv.Load()

	cfg := &Config{
		RunMode: runMode, // Set from flag
	}

	var err error

	// Helper function to get env var or default
	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	// Helper function to get required env var
	getRequiredEnv := func(key string) (string, error) {
		value, exists := os.LookupEnv(key)
		if !exists {
			return "", fmt.Errorf("missing required environment variable: %s", key)
		}
		return value, nil
	}

	cfg.MongoURI, err = getRequiredEnv("MONGO_URI")
	if err != nil {
		return nil, err
	}
	cfg.MongoDbName = getEnv("MONGO_DB_NAME", "kisanmarket")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.JwtSecret, err = getRequiredEnv("JWT_SECRET")
	if err != nil {
		return nil, err
	}
	cfg.ApiPort = getEnv("API_PORT", "5000")

	cfg.TwilioAccountSID = getEnv("TWILIO_SID", "")
	cfg.TwilioAuthToken = getEnv("TWILIO_AUTH_TOKEN", "")
	cfg.TwilioServiceSID = getEnv("TWILIO_SERVICE_ID", "")
	cfg.TwilioFromNumber = getEnv("TWILIO_FROM_NUMBER", "")
	cfg.PhoneCountryCode = getEnv("PHONE_COUNTRY_CODE", "+91")

	cfg.CloudinaryCloudName = getEnv("CLOUDINARY_CLOUD_NAME", "")
	cfg.CloudinaryAPIKey = getEnv("CLOUDINARY_API_KEY", "")
	cfg.CloudinaryAPISecret = getEnv("CLOUDINARY_API_SECRET", "")
	cfg.CloudinaryFolder = getEnv("CLOUDINARY_FOLDER", "kisanmarket")

	cfg.OpenAIAPIKey = getEnv("OPENAI_API_KEY", "")
	cfg.OpenAIModel = getEnv("OPENAI_MODEL", "gpt-4o-mini")

	cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	jwtTTLHours, err := strconv.ParseInt(getEnv("JWT_TTL_HOURS", "720"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL_HOURS: %w", err)
	}
	cfg.JwtTTL = time.Duration(jwtTTLHours) * time.Hour

	otpTTLSeconds, err := strconv.ParseInt(getEnv("OTP_TTL_SECONDS", "300"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid OTP_TTL_SECONDS: %w", err)
	}
	cfg.OtpTTL = time.Duration(otpTTLSeconds) * time.Second

	unverifiedMaxAgeSeconds, err := strconv.ParseInt(getEnv("UNVERIFIED_MAX_AGE_SECONDS", "172800"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid UNVERIFIED_MAX_AGE_SECONDS: %w", err)
	}
	cfg.UnverifiedMaxAge = time.Duration(unverifiedMaxAgeSeconds) * time.Second

	cfg.ImageMaxDimension, err = strconv.Atoi(getEnv("IMAGE_MAX_DIMENSION", "2048"))
	if err != nil {
		return nil, fmt.Errorf("invalid IMAGE_MAX_DIMENSION: %w", err)
	}

	cfg.RateLimitBucketSize, err = strconv.Atoi(getEnv("RATE_LIMIT_BUCKET_SIZE", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BUCKET_SIZE: %w", err)
	}
	cfg.RateLimitRefillRate, err = strconv.Atoi(getEnv("RATE_LIMIT_REFILL_RATE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REFILL_RATE: %w", err)
	}

	return cfg, nil
}
