package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiService_GenerateConfig(t *testing.T) {
	g := &geminiService{maxOutputTokens: 2048}

	cfg := g.generateConfig("Return only JSON.")

	require.NotNil(t, cfg.SystemInstruction)
	assert.Empty(t, cfg.SystemInstruction.Role)
	require.Len(t, cfg.SystemInstruction.Parts, 1)
	assert.Equal(t, "Return only JSON.", cfg.SystemInstruction.Parts[0].Text)

	require.NotNil(t, cfg.Temperature)
	assert.Equal(t, float32(0), *cfg.Temperature)
	assert.Equal(t, "application/json", cfg.ResponseMIMEType)
	assert.Equal(t, int32(2048), cfg.MaxOutputTokens)
}
