package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Port               string
	GoEnv              string
	AllowedOrigin      string
	Auth0Domain        string
	Auth0Audience      string
	AWSRegion          string
	AWSS3Bucket        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	DynamoEndpoint     string
	UsersTable         string
	ProfessionalsTable string
	JobsTable          string
	ConversationsTable string
	ProductsTable      string
	SearchDatabaseURL  string
	OllamaBaseURL      string
	ChatModel          string
	VisionModel        string
	ServiceKeywordFile string
	LogLevel           string
}

var currentConfig *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	// Determine which environment file to load
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		// If environment-specific file doesn't exist, try .env
		if err := godotenv.Load(); err != nil {
			// In hosted environments the variables are set directly,
			// so it's okay if .env files don't exist
			log.Printf("No .env file found, using system environment variables")
		}
	} else {
		log.Printf("Loaded configuration from %s", envFile)
	}

	config := &Config{
		Port:               getEnv("PORT", "8080"),
		GoEnv:              getEnv("GO_ENV", "development"),
		AllowedOrigin:      getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
		Auth0Domain:        getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience:      getEnv("AUTH0_AUDIENCE", ""),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSS3Bucket:        getEnv("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoEndpoint:     getEnv("DYNAMODB_ENDPOINT", ""),
		UsersTable:         getEnv("USERS_TABLE", "users"),
		ProfessionalsTable: getEnv("PROFESSIONALS_TABLE", "professionals"),
		JobsTable:          getEnv("JOBS_TABLE", "jobs"),
		ConversationsTable: getEnv("CONVERSATIONS_TABLE", "conversations"),
		ProductsTable:      getEnv("PRODUCTS_TABLE", "products"),
		SearchDatabaseURL:  getEnv("SEARCH_DATABASE_URL", ""),
		OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		ChatModel:          getEnv("CHAT_MODEL", "llama3"),
		VisionModel:        getEnv("VISION_MODEL", "llava"),
		ServiceKeywordFile: getEnv("SERVICE_KEYWORD_FILE", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	currentConfig = config
	return config, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.SearchDatabaseURL == "" && c.GoEnv != "test" {
		return fmt.Errorf("SEARCH_DATABASE_URL is required")
	}
	return nil
}

// GetConfig returns the loaded configuration instance
func GetConfig() *Config {
	return currentConfig
}

// SetConfig sets the configuration instance (primarily for testing)
func SetConfig(c *Config) {
	currentConfig = c
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
