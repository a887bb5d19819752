// Package config loads runtime configuration. Values come from an optional
// YAML file named by ARTISAN_CONFIG, with environment variables taking
// precedence over the file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Server
	Port string `yaml:"port"`

	// Database
	DBDriver string `yaml:"db_driver"` // "sqlite" | "postgres"
	DBPath   string `yaml:"db_path"`   // SQLite path
	DBUrl    string `yaml:"db_url"`    // Postgres DSN

	// Generation API
	FalBaseURL string `yaml:"fal_base_url"`
	FalAPIKey  string `yaml:"fal_api_key"`

	// LLM
	LLMProvider string `yaml:"llm_provider"` // "openai" | "anthropic"
	LLMModel    string `yaml:"llm_model"`
	LLMAPIKey   string `yaml:"llm_api_key"`
	LLMBaseURL  string `yaml:"llm_base_url"`

	// Object storage
	StorageEndpoint  string `yaml:"storage_endpoint"`
	StorageAccessKey string `yaml:"storage_access_key"`
	StorageSecretKey string `yaml:"storage_secret_key"`
	StorageBucket    string `yaml:"storage_bucket"`
	StorageBaseURL   string `yaml:"storage_base_url"` // public URL prefix for uploaded objects
	StorageUseSSL    bool   `yaml:"storage_use_ssl"`

	// Stream broker
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	// Agent loop
	MaxSteps int `yaml:"max_steps"`

	// Logging
	LogLevel string `yaml:"log_level"`
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        "8080",
		DBDriver:    "sqlite",
		DBPath:      "./data/artisan.db",
		FalBaseURL:  "https://fal.run",
		LLMProvider: "openai",
		LLMModel:    "gpt-4.1",
		RedisAddr:   "localhost:6379",
		MaxSteps:    20,
		LogLevel:    "info",
	}

	if path := os.Getenv("ARTISAN_CONFIG"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DBDriver = getEnv("ARTISAN_DB_DRIVER", cfg.DBDriver)
	cfg.DBPath = getEnv("ARTISAN_DB_PATH", cfg.DBPath)
	cfg.DBUrl = getEnv("ARTISAN_DATABASE_URL", cfg.DBUrl)
	cfg.FalBaseURL = getEnv("ARTISAN_FAL_BASE_URL", cfg.FalBaseURL)
	cfg.FalAPIKey = getEnv("ARTISAN_FAL_API_KEY", cfg.FalAPIKey)
	cfg.LLMProvider = getEnv("ARTISAN_LLM_PROVIDER", cfg.LLMProvider)
	cfg.LLMModel = getEnv("ARTISAN_LLM_MODEL", cfg.LLMModel)
	cfg.LLMAPIKey = getEnv("ARTISAN_LLM_API_KEY", cfg.LLMAPIKey)
	cfg.LLMBaseURL = getEnv("ARTISAN_LLM_BASE_URL", cfg.LLMBaseURL)
	cfg.StorageEndpoint = getEnv("ARTISAN_STORAGE_ENDPOINT", cfg.StorageEndpoint)
	cfg.StorageAccessKey = getEnv("ARTISAN_STORAGE_ACCESS_KEY", cfg.StorageAccessKey)
	cfg.StorageSecretKey = getEnv("ARTISAN_STORAGE_SECRET_KEY", cfg.StorageSecretKey)
	cfg.StorageBucket = getEnv("ARTISAN_STORAGE_BUCKET", cfg.StorageBucket)
	cfg.StorageBaseURL = getEnv("ARTISAN_STORAGE_BASE_URL", cfg.StorageBaseURL)
	cfg.StorageUseSSL = getEnvBool("ARTISAN_STORAGE_USE_SSL", cfg.StorageUseSSL)
	cfg.RedisAddr = getEnv("ARTISAN_REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnv("ARTISAN_REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = getEnvInt("ARTISAN_REDIS_DB", cfg.RedisDB)
	cfg.MaxSteps = getEnvInt("ARTISAN_MAX_STEPS", cfg.MaxSteps)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
