package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"areetampo/circular-economy/internal/metrics"
)

const embeddingKeyPrefix = "embedding:"

// cachedEmbedder memoizes embeddings in Redis keyed by a hash of the exact
// text. Cache failures fall through to the wrapped embedder.
type cachedEmbedder struct {
	next  Embedder
	rdb   *redis.Client
	ttl   time.Duration
	model string
	log   *zap.Logger
}

func NewCachedEmbedder(next Embedder, rdb *redis.Client, model string, ttl time.Duration, log *zap.Logger) Embedder {
	return &cachedEmbedder{
		next:  next,
		rdb:   rdb,
		ttl:   ttl,
		model: model,
		log:   log,
	}
}

func (c *cachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.key(text)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var vector []float32
		if jsonErr := json.Unmarshal(raw, &vector); jsonErr == nil && len(vector) > 0 {
			metrics.EmbeddingCache.WithLabelValues("hit").Inc()
			return vector, nil
		}
		c.log.Warn("⚠️ Discarding unreadable cached embedding", zap.String("key", key))
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn("⚠️ Embedding cache read failed", zap.Error(err))
	}
	metrics.EmbeddingCache.WithLabelValues("miss").Inc()

	vector, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(vector); err == nil {
		if err := c.rdb.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
			c.log.Warn("⚠️ Embedding cache write failed", zap.Error(err))
		}
	}
	return vector, nil
}

func (c *cachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(c.model + "\x00" + text))
	return embeddingKeyPrefix + hex.EncodeToString(sum[:])
}
