package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort     string
	DatabaseType   string
	DatabasePath   string
	DatabaseURL    string
	MigrationsPath string
	AssetsPath     string
	PolicyPath     string

	// Bearer tokens are issued by the external auth service and
	// verified here with this shared secret.
	AuthTokenSecret string

	// Classifier
	OpenAIAPIKey string
	OpenAIModel  string

	// Caregiver report email (disabled when SESFromEmail is empty)
	AWSRegion      string
	SESFromEmail   string
	SESFromName    string
	CaregiverEmail string

	Debug bool
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:      getEnv("PORT", "8080"),
		DatabaseType:    getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath:    getEnv("DB_PATH", "./emotionquest.db"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),
		AssetsPath:      getEnv("ASSETS_PATH", "./assets/questions"),
		PolicyPath:      getEnv("POLICY_PATH", ""),
		AuthTokenSecret: getEnv("AUTH_TOKEN_SECRET", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail:    getEnv("SES_FROM_EMAIL", ""),
		SESFromName:     getEnv("SES_FROM_NAME", "EmotionQuest"),
		CaregiverEmail:  getEnv("CAREGIVER_EMAIL", ""),
		Debug:           getEnv("DEBUG", "") != "",
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
