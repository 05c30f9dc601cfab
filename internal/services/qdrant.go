package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"areetampo/circular-economy/internal/models"
)

// QdrantService is a read-only view of the reference-case collection. The
// corpus is embedded and loaded out of band.
type QdrantService interface {
	VectorStore
	CheckCollection(ctx context.Context) error
	Close() error
}

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
	log            *zap.Logger
}

func NewQdrantService(urlStr, apiKey, collectionName string, log *zap.Logger) (QdrantService, error) {
	// Parse URL to extract host, port, and TLS usage
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantService{
		client:         client,
		collectionName: collectionName,
		log:            log,
	}, nil
}

// CheckCollection reports an error when the reference collection is absent.
func (q *qdrantService) CheckCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if !exists {
		return fmt.Errorf("collection %q does not exist", q.collectionName)
	}

	q.log.Info("✅ Qdrant collection found", zap.String("collection", q.collectionName))
	return nil
}

// QueryNearest implements VectorStore.
func (q *qdrantService) QueryNearest(ctx context.Context, vector []float32, k int) ([]models.RetrievedCase, error) {
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]models.RetrievedCase, 0, len(points))
	for _, point := range points {
		results = append(results, scoredPointToCase(point))
	}
	return results, nil
}

func (q *qdrantService) Close() error {
	return q.client.Close()
}

// scoredPointToCase reads "content" (or the older "text") as the case body and
// passes the remaining payload through as metadata.
func scoredPointToCase(point *qdrant.ScoredPoint) models.RetrievedCase {
	result := models.RetrievedCase{
		ID:         pointIDString(point.GetId()),
		Similarity: float64(point.GetScore()),
	}

	payload := point.GetPayload()
	contentKey := "content"
	if _, ok := payload[contentKey]; !ok {
		contentKey = "text"
	}

	metadata := make(map[string]interface{})
	for key, value := range payload {
		s, isString := value.GetKind().(*qdrant.Value_StringValue)
		switch {
		case key == contentKey && isString:
			result.Content = s.StringValue
		case key == "id" && isString:
			result.ID = s.StringValue
		default:
			metadata[key] = payloadValue(value)
		}
	}
	if len(metadata) > 0 {
		result.Metadata = metadata
	}
	return result
}

func pointIDString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	switch v := id.GetPointIdOptions().(type) {
	case *qdrant.PointId_Num:
		return strconv.FormatUint(v.Num, 10)
	case *qdrant.PointId_Uuid:
		return v.Uuid
	}
	return ""
}

func payloadValue(v *qdrant.Value) interface{} {
	switch kind := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	case *qdrant.Value_ListValue:
		values := kind.ListValue.GetValues()
		out := make([]interface{}, 0, len(values))
		for _, item := range values {
			out = append(out, payloadValue(item))
		}
		return out
	case *qdrant.Value_StructValue:
		fields := kind.StructValue.GetFields()
		out := make(map[string]interface{}, len(fields))
		for key, item := range fields {
			out[key] = payloadValue(item)
		}
		return out
	}
	return nil
}
