package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	FirecrawlAPIKey  string
	GroqAPIKey       string
	GroqModel        string
	FirecrawlBaseURL string
	GroqBaseURL      string
	DatabaseURL      string
	Port             string
	MaxDepth         int
	TimeLimit        int
	MaxURLs          int
	SourceLimit      int
}

func Load() *Config {
	return &Config{
		FirecrawlAPIKey:  getEnv("FIRECRAWL_API_KEY", ""),
		GroqAPIKey:       getEnv("GROQ_API_KEY", ""),
		GroqModel:        getEnv("GROQ_MODEL", "llama-3.1-70b-versatile"),
		FirecrawlBaseURL: getEnv("FIRECRAWL_BASE_URL", ""),
		GroqBaseURL:      getEnv("GROQ_BASE_URL", ""),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		Port:             getEnv("PORT", "3000"),
		MaxDepth:         getEnvAsInt("RESEARCH_MAX_DEPTH", 3),
		TimeLimit:        getEnvAsInt("RESEARCH_TIME_LIMIT", 180),
		MaxURLs:          getEnvAsInt("RESEARCH_MAX_URLS", 10),
		SourceLimit:      getEnvAsInt("SOURCE_LIMIT", 12),
	}
}

// Validate reports the first missing credential. Callers must not issue any
// network call while this returns an error.
func (c *Config) Validate() error {
	if c.FirecrawlAPIKey == "" {
		return fmt.Errorf("FIRECRAWL_API_KEY is not set")
	}
	if c.GroqAPIKey == "" {
		return fmt.Errorf("GROQ_API_KEY is not set")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
