package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	apperrors "github.com/etoland/my-circle/backend/pkg/errors"
)

// Config holds all application configuration
type Config struct {
	// App
	Port string
	Env  string

	// Neo4j
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	// AWS / DynamoDB
	AWSRegion      string
	UsersTableName string

	// Matching
	MatchLimit        int
	MatchMinInterests int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("ENV", "development"),
		Neo4jURI:          getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:         getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:     getEnv("NEO4J_PASSWORD", "password"),
		AWSRegion:         getEnv("AWS_REGION", "eu-north-1"),
		UsersTableName:    getEnv("DYNAMO_USERS_TABLE", "my-circle-users"),
		MatchLimit:        getEnvInt("MATCH_LIMIT", 10),
		MatchMinInterests: getEnvInt("MATCH_MIN_INTERESTS", 2),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.Neo4jURI == "" {
		return apperrors.NewConfigMissingRequired("NEO4J_URI")
	}
	if c.Neo4jUser == "" {
		return apperrors.NewConfigMissingRequired("NEO4J_USER")
	}
	if c.Neo4jPassword == "" {
		return apperrors.NewConfigMissingRequired("NEO4J_PASSWORD")
	}
	if c.UsersTableName == "" {
		return apperrors.NewConfigMissingRequired("DYNAMO_USERS_TABLE")
	}
	if c.MatchLimit < 1 {
		return fmt.Errorf("MATCH_LIMIT must be at least 1")
	}
	if c.MatchMinInterests < 1 {
		return fmt.Errorf("MATCH_MIN_INTERESTS must be at least 1")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
