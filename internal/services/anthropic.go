package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"areetampo/circular-economy/internal/config"
)

// AnthropicMessager is the slice of the Anthropic client used here.
type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

type anthropicService struct {
	messages  AnthropicMessager
	model     string
	maxTokens int64
	log       *zap.Logger
}

func NewAnthropicService(cfg config.AnthropicConfig, log *zap.Logger) (ReasoningService, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("ANTHROPIC_API_KEY not configured")
	}
	c := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	return newAnthropicService(&c.Messages, cfg, log), nil
}

func newAnthropicService(messages AnthropicMessager, cfg config.AnthropicConfig, log *zap.Logger) *anthropicService {
	return &anthropicService{
		messages:  messages,
		model:     cfg.Model,
		maxTokens: int64(cfg.MaxTokens),
		log:       log,
	}
}

// Complete implements ReasoningService.
func (a *anthropicService) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   a.maxTokens,
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt))},
		Temperature: anthropic.Float(0),
	})
	if err != nil {
		a.log.Error("❌ Anthropic API error", zap.Error(err))
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String(), nil
}
