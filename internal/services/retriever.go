package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"areetampo/circular-economy/internal/metrics"
	"areetampo/circular-economy/internal/models"
)

// DefaultTopK is the number of similar cases returned when the caller passes k <= 0.
const DefaultTopK = 3

type Retriever struct {
	embedder         Embedder
	store            VectorStore
	embeddingTimeout time.Duration
	vectorTimeout    time.Duration
	log              *zap.Logger
}

func NewRetriever(embedder Embedder, store VectorStore, embeddingTimeout, vectorTimeout time.Duration, log *zap.Logger) *Retriever {
	return &Retriever{
		embedder:         embedder,
		store:            store,
		embeddingTimeout: embeddingTimeout,
		vectorTimeout:    vectorTimeout,
		log:              log,
	}
}

// Retrieve embeds the idea and returns up to k reference cases ordered by
// descending similarity. Only an embedding failure is an error; a vector
// store failure degrades to an empty list.
func (r *Retriever) Retrieve(ctx context.Context, ideaText string, k int) ([]models.RetrievedCase, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	embedCtx, cancel := context.WithTimeout(ctx, r.embeddingTimeout)
	vector, err := r.embedder.Embed(embedCtx, ideaText)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingService, err)
	}

	queryCtx, cancel := context.WithTimeout(ctx, r.vectorTimeout)
	cases, err := r.store.QueryNearest(queryCtx, vector, k)
	cancel()
	if err != nil {
		metrics.RetrievalDegraded.Inc()
		r.log.Warn("⚠️ Vector store query failed, continuing without similar cases", zap.Error(err))
		return []models.RetrievedCase{}, nil
	}

	return rankCases(cases, k), nil
}

func rankCases(cases []models.RetrievedCase, k int) []models.RetrievedCase {
	out := make([]models.RetrievedCase, len(cases))
	for i, c := range cases {
		c.Similarity = clampSimilarity(c.Similarity)
		out[i] = c
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity > out[j].Similarity
	})
	if len(out) > k {
		out = out[:k]
	}
	return out
}

func clampSimilarity(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
