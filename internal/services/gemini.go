package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"areetampo/circular-economy/internal/config"
)

type GeminiService interface {
	Embedder
	ReasoningService
}

type geminiService struct {
	client          *genai.Client
	modelName       string
	embedModel      string
	dimension       int32
	maxOutputTokens int32
	log             *zap.Logger
}

func NewGeminiService(ctx context.Context, cfg config.GeminiConfig, log *zap.Logger) (GeminiService, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:          client,
		modelName:       cfg.Model,
		embedModel:      cfg.EmbeddingModel,
		dimension:       int32(cfg.EmbeddingDimension),
		maxOutputTokens: int32(cfg.MaxOutputTokens),
		log:             log,
	}, nil
}

// Embed implements Embedder. The text is sent as submitted so the vector
// matches the space the corpus was embedded in.
func (g *geminiService) Embed(ctx context.Context, text string) ([]float32, error) {
	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), &genai.EmbedContentConfig{
		OutputDimensionality: &g.dimension,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, errors.New("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// Complete implements ReasoningService.
func (g *geminiService) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(userPrompt), g.generateConfig(systemPrompt))
	if err != nil {
		g.log.Error("❌ Gemini API error", zap.Error(err))
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if resp == nil {
		return "", errors.New("no response generated (nil response)")
	}

	text := resp.Text()
	if text == "" {
		finish := ""
		if len(resp.Candidates) > 0 {
			finish = string(resp.Candidates[0].FinishReason)
		}
		g.log.Warn("⚠️ Gemini returned no text content", zap.String("finish_reason", finish))
	}

	g.log.Debug("📊 Gemini response received", zap.Int("length", len(text)))
	return text, nil
}

// generateConfig asks for deterministic JSON output.
func (g *geminiService) generateConfig(systemPrompt string) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(systemPrompt)}},
		Temperature:       genai.Ptr[float32](0),
		ResponseMIMEType:  "application/json",
		MaxOutputTokens:   g.maxOutputTokens,
	}
}
