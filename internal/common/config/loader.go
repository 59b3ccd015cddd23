// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like BACKENDS_AWS_REGION
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment overlay, e.g. config.production.yaml
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig() // ignore error if not found

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the usual run locations.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}
	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "migration-assistant"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.OverallDeadlineMs == 0 {
		cfg.Server.OverallDeadlineMs = 45000
	}
	if cfg.Backends.AWSRegion == "" {
		cfg.Backends.AWSRegion = "us-east-1"
	}
	if cfg.Backends.Structured.TimeoutMs == 0 {
		cfg.Backends.Structured.TimeoutMs = 15000
	}
	if cfg.Backends.Semantic.TimeoutMs == 0 {
		cfg.Backends.Semantic.TimeoutMs = 20000
	}
	if cfg.Backends.Semantic.NumberOfResults == 0 {
		cfg.Backends.Semantic.NumberOfResults = 10
	}
	if cfg.Backends.RetryBackoffMs == 0 {
		cfg.Backends.RetryBackoffMs = 200
	}
	if cfg.Routing.CombinedDecisionThreshold == 0 {
		cfg.Routing.CombinedDecisionThreshold = 2
	}
	if len(cfg.Routing.StructuredKeywords) == 0 {
		cfg.Routing.StructuredKeywords = DefaultStructuredKeywords()
	}
	if len(cfg.Routing.SemanticKeywords) == 0 {
		cfg.Routing.SemanticKeywords = DefaultSemanticKeywords()
	}
	if cfg.Session.Redis.Address == "" {
		cfg.Session.Redis.Address = "localhost:6379"
	}
	if cfg.Session.TTLMinutes == 0 {
		cfg.Session.TTLMinutes = 120
	}
	if cfg.Session.MaxTurns == 0 {
		cfg.Session.MaxTurns = 50
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// DefaultStructuredKeywords lists phrasing that signals tabular lookups:
// territory, revenue and partner figures, counts, YTD reporting.
func DefaultStructuredKeywords() []string {
	return []string{
		"territory", "sfdc customer", "revenue realization", "partner performance",
		"migration status", "detailed report", "ytd revenue", "spend variance",
		"customer territory code", "engagement id", "migration delivered by",
		"ytd", "revenue", "list", "show", "count", "how many",
	}
}

// DefaultSemanticKeywords lists explanatory phrasing answered from the
// guidance documents.
func DefaultSemanticKeywords() []string {
	return []string{
		"explain", "how to", "what is", "describe", "summary", "overview",
		"best practices", "recommendations", "challenges", "insights",
		"why", "how should",
	}
}
