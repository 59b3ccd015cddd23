// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Backends BackendsConfig `mapstructure:"backends"`
	Routing  RoutingConfig  `mapstructure:"routing"`
	Session  SessionConfig  `mapstructure:"session"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address           string `mapstructure:"address"`
	OverallDeadlineMs int    `mapstructure:"overall_deadline_ms"` // hard per-question ceiling
}

// OverallDeadline returns the per-question wall-clock ceiling.
func (s ServerConfig) OverallDeadline() time.Duration {
	return time.Duration(s.OverallDeadlineMs) * time.Millisecond
}

// BackendsConfig holds the knowledge-system client settings. MaxRetries
// applies to timed-out calls only and is clamped to {0, 1}.
type BackendsConfig struct {
	AWSRegion      string                  `mapstructure:"aws_region"`
	Structured     StructuredBackendConfig `mapstructure:"structured"`
	Semantic       SemanticBackendConfig   `mapstructure:"semantic"`
	MaxRetries     int                     `mapstructure:"max_retries"`
	RetryBackoffMs int                     `mapstructure:"retry_backoff_ms"`
}

// RetryBackoff returns the fixed pause before the single timeout retry.
func (b BackendsConfig) RetryBackoff() time.Duration {
	return time.Duration(b.RetryBackoffMs) * time.Millisecond
}

type StructuredBackendConfig struct {
	ApplicationID string `mapstructure:"application_id"`
	TimeoutMs     int    `mapstructure:"timeout_ms"`
}

func (c StructuredBackendConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

type SemanticBackendConfig struct {
	KnowledgeBaseID string `mapstructure:"knowledge_base_id"`
	ModelARN        string `mapstructure:"model_arn"`
	NumberOfResults int32  `mapstructure:"number_of_results"`
	TimeoutMs       int    `mapstructure:"timeout_ms"`
}

func (c SemanticBackendConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// RoutingConfig seeds the intent classifier. The keyword lists and the
// combined-decision threshold are tunables, not fixed policy.
type RoutingConfig struct {
	StructuredKeywords        []string `mapstructure:"structured_keywords"`
	SemanticKeywords          []string `mapstructure:"semantic_keywords"`
	CombinedDecisionThreshold float64  `mapstructure:"combined_decision_threshold"`
}

type SessionConfig struct {
	Redis      RedisConfig `mapstructure:"redis"`
	TTLMinutes int         `mapstructure:"ttl_minutes"`
	MaxTurns   int         `mapstructure:"max_turns"`
}

func (s SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLMinutes) * time.Minute
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func validateConfig(cfg *Config) error {
	if cfg.Backends.Structured.ApplicationID == "" {
		return fmt.Errorf("backends.structured.application_id is required")
	}
	if cfg.Backends.Semantic.KnowledgeBaseID == "" {
		return fmt.Errorf("backends.semantic.knowledge_base_id is required")
	}
	if cfg.Backends.Semantic.ModelARN == "" {
		return fmt.Errorf("backends.semantic.model_arn is required")
	}
	if cfg.Backends.MaxRetries < 0 || cfg.Backends.MaxRetries > 1 {
		return fmt.Errorf("backends.max_retries must be 0 or 1, got %d", cfg.Backends.MaxRetries)
	}
	if cfg.Server.OverallDeadlineMs <= 0 {
		return fmt.Errorf("server.overall_deadline_ms must be positive")
	}
	return nil
}
