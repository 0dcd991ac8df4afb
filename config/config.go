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
	JWTKey    string
	SaltRound int

	EmailSender string
	Password    string // SMTP Password

	MpesaEnv                string // sandbox or production
	MpesaShortcode          string
	MpesaPasskey            string
	MpesaConsumerKey        string
	MpesaConsumerSecret     string
	MpesaInitiatorName      string
	MpesaSecurityCredential string
	MpesaCallbackBaseURL    string

	DerivAppID    string
	DerivAPIToken string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:      getEnv("PORT", "5000"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		EmailSender: getEnv("EMAIL_SENDER", ""),
		Password:    getEnv("EMAIL_PASSWORD", ""),

		MpesaEnv:                getEnv("MPESA_ENV", "sandbox"),
		MpesaShortcode:          getEnv("MPESA_SHORTCODE", ""),
		MpesaPasskey:            getEnv("MPESA_PASSKEY", ""),
		MpesaConsumerKey:        getEnv("MPESA_CONSUMER_KEY", ""),
		MpesaConsumerSecret:     getEnv("MPESA_CONSUMER_SECRET", ""),
		MpesaInitiatorName:      getEnv("MPESA_INITIATOR_NAME", ""),
		MpesaSecurityCredential: getEnv("MPESA_SECURITY_CREDENTIAL", ""),
		MpesaCallbackBaseURL:    getEnv("MPESA_CALLBACK_BASE_URL", "http://localhost:5000"),

		DerivAppID:    getEnv("DERIV_APP_ID", "1089"),
		DerivAPIToken: getEnv("DERIV_API_TOKEN", ""),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.MpesaConsumerKey == "" {
		log.Println("Warning: MPESA_CONSUMER_KEY is not set. M-Pesa requests will fail.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
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
