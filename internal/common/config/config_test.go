// internal/common/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTestConfig() *Config {
	return &Config{
		Server: ServerConfig{OverallDeadlineMs: 45000},
		Backends: BackendsConfig{
			Structured: StructuredBackendConfig{ApplicationID: "app-123"},
			Semantic: SemanticBackendConfig{
				KnowledgeBaseID: "kb-123",
				ModelARN:        "arn:aws:bedrock:us-east-1::foundation-model/test",
			},
			MaxRetries: 1,
		},
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 45*time.Second, cfg.Server.OverallDeadline())
	assert.Equal(t, 15*time.Second, cfg.Backends.Structured.Timeout())
	assert.Equal(t, 20*time.Second, cfg.Backends.Semantic.Timeout())
	assert.Equal(t, int32(10), cfg.Backends.Semantic.NumberOfResults)
	assert.Equal(t, 200*time.Millisecond, cfg.Backends.RetryBackoff())
	assert.Equal(t, float64(2), cfg.Routing.CombinedDecisionThreshold)
	assert.NotEmpty(t, cfg.Routing.StructuredKeywords)
	assert.NotEmpty(t, cfg.Routing.SemanticKeywords)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL())
	assert.Equal(t, 50, cfg.Session.MaxTurns)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestApplyDefaults_DoesNotOverrideExplicitValues(t *testing.T) {
	cfg := &Config{
		Server:  ServerConfig{Address: ":9090", OverallDeadlineMs: 10000},
		Routing: RoutingConfig{StructuredKeywords: []string{"revenue"}},
	}
	applyDefaults(cfg)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, 10000, cfg.Server.OverallDeadlineMs)
	assert.Equal(t, []string{"revenue"}, cfg.Routing.StructuredKeywords)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "valid config passes",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "missing application id",
			mutate:  func(cfg *Config) { cfg.Backends.Structured.ApplicationID = "" },
			wantErr: "application_id",
		},
		{
			name:    "missing knowledge base id",
			mutate:  func(cfg *Config) { cfg.Backends.Semantic.KnowledgeBaseID = "" },
			wantErr: "knowledge_base_id",
		},
		{
			name:    "missing model arn",
			mutate:  func(cfg *Config) { cfg.Backends.Semantic.ModelARN = "" },
			wantErr: "model_arn",
		},
		{
			name:    "retries above cap",
			mutate:  func(cfg *Config) { cfg.Backends.MaxRetries = 3 },
			wantErr: "max_retries",
		},
		{
			name:    "non-positive deadline",
			mutate:  func(cfg *Config) { cfg.Server.OverallDeadlineMs = 0 },
			wantErr: "overall_deadline_ms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(cfg)

			err := validateConfig(cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
