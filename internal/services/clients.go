package services

import (
	"context"

	"areetampo/circular-economy/internal/models"
)

// Embedder turns text into a vector in the same space as the reference corpus.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorStore answers nearest-neighbour queries against the reference corpus.
type VectorStore interface {
	QueryNearest(ctx context.Context, vector []float32, k int) ([]models.RetrievedCase, error)
}

// ReasoningService completes a system/user prompt pair with temperature 0 and
// returns the raw text, which is expected to be a JSON object.
type ReasoningService interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
