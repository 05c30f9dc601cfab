package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, 3, cfg.Pipeline.TopK)
	assert.Equal(t, 10*time.Second, cfg.Pipeline.EmbeddingTimeout)
	assert.Equal(t, 5*time.Second, cfg.Pipeline.VectorTimeout)
	assert.Equal(t, 60*time.Second, cfg.Pipeline.GenerationTimeout)
	assert.Equal(t, 200, cfg.Validation.MinSubmissionLength)
	assert.False(t, cfg.Validation.StrictRange)
	assert.Equal(t, 1536, cfg.Gemini.EmbeddingDimension)
	assert.Equal(t, ProviderGemini, cfg.Generator.Provider)
	assert.Empty(t, cfg.Redis.Address)
	assert.Equal(t, 24*time.Hour, cfg.Redis.CacheTTL)
	assert.Equal(t, 10*time.Minute, cfg.Worker.JobLease)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("ANTHROPIC_API_KEY", "anthropic-key")
	t.Setenv("GENERATOR_PROVIDER", " Anthropic ")
	t.Setenv("PIPELINE_TOP_K", "5")
	t.Setenv("GENERATION_TIMEOUT", "90s")
	t.Setenv("VALIDATION_STRICT_RANGE", "true")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderAnthropic, cfg.Generator.Provider)
	assert.Equal(t, 5, cfg.Pipeline.TopK)
	assert.Equal(t, 90*time.Second, cfg.Pipeline.GenerationTimeout)
	assert.True(t, cfg.Validation.StrictRange)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing gemini key",
			env:     map[string]string{"GEMINI_API_KEY": ""},
			wantErr: "GEMINI_API_KEY",
		},
		{
			name:    "anthropic without key",
			env:     map[string]string{"GEMINI_API_KEY": "k", "GENERATOR_PROVIDER": "anthropic", "ANTHROPIC_API_KEY": ""},
			wantErr: "ANTHROPIC_API_KEY",
		},
		{
			name:    "unknown provider",
			env:     map[string]string{"GEMINI_API_KEY": "k", "GENERATOR_PROVIDER": "openai"},
			wantErr: "unknown GENERATOR_PROVIDER",
		},
		{
			name:    "non positive top k",
			env:     map[string]string{"GEMINI_API_KEY": "k", "PIPELINE_TOP_K": "0"},
			wantErr: "PIPELINE_TOP_K",
		},
		{
			name:    "zero timeout",
			env:     map[string]string{"GEMINI_API_KEY": "k", "EMBEDDING_TIMEOUT": "0s"},
			wantErr: "timeouts",
		},
		{
			name:    "lease shorter than a run",
			env:     map[string]string{"GEMINI_API_KEY": "k", "WORKER_JOB_LEASE": "90s"},
			wantErr: "WORKER_JOB_LEASE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: "5432", User: "u", Password: "p", DBName: "ce", SSLMode: "disable",
	}}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=ce sslmode=disable", cfg.GetDatabaseDSN())
}
