// Package vectors stores conversation memories in Qdrant for semantic
// recall.
package vectors

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/franklab/frank/internal/logging"
)

// Collection holding long-term conversation memories.
const CollectionMemories = "memories"

// Store wraps the Qdrant client for memory operations.
type Store struct {
	client     *qdrant.Client
	collection string
	log        *logging.Logger
}

// Config for the vector store.
type Config struct {
	Host       string // Qdrant host, default "localhost"
	Port       int    // Qdrant gRPC port, default 6334
	UseTLS     bool
	Collection string // default CollectionMemories
}

// NewStore connects to Qdrant.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	if cfg.Collection == "" {
		cfg.Collection = CollectionMemories
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant: %w", err)
	}

	return &Store{
		client:     client,
		collection: cfg.Collection,
		log:        logging.WithField("component", "vectors"),
	}, nil
}

// Close closes the Qdrant connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// EnsureCollection creates the memory collection if absent.
func (s *Store) EnsureCollection(ctx context.Context, dimension uint64) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection %s: %w", s.collection, err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", s.collection, err)
	}
	s.log.Info("created collection %s (dim %d)", s.collection, dimension)
	return nil
}

// Match is one recalled memory.
type Match struct {
	Text     string
	Metadata map[string]interface{}
	Score    float32
}

// Upsert stores one embedded memory. The text rides in the payload so
// recall needs no second lookup.
func (s *Store) Upsert(ctx context.Context, id string, vector []float32, text string, metadata map[string]interface{}) error {
	payload := make(map[string]interface{}, len(metadata)+1)
	for k, v := range metadata {
		payload[k] = v
	}
	payload["text"] = text

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewIDUUID(id),
			Vectors: qdrant.NewVectors(vector...),
			Payload: toQdrantPayload(payload),
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert memory: %w", err)
	}
	return nil
}

// Search returns up to limit memories scoring at least minScore.
func (s *Store) Search(ctx context.Context, vector []float32, limit uint64, minScore float32) ([]Match, error) {
	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(limit),
		ScoreThreshold: qdrant.PtrOf(minScore),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	matches := make([]Match, 0, len(results))
	for _, r := range results {
		payload := fromQdrantPayload(r.Payload)
		text, _ := payload["text"].(string)
		delete(payload, "text")
		matches = append(matches, Match{
			Text:     text,
			Metadata: payload,
			Score:    r.Score,
		})
	}
	return matches, nil
}

// Delete removes memories by id.
func (s *Store) Delete(ctx context.Context, ids []string) error {
	pointIDs := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = qdrant.NewIDUUID(id)
	}

	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{Ids: pointIDs},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	return nil
}

func toQdrantPayload(payload map[string]interface{}) map[string]*qdrant.Value {
	result := make(map[string]*qdrant.Value)
	for k, v := range payload {
		switch val := v.(type) {
		case string:
			result[k] = qdrant.NewValueString(val)
		case int:
			result[k] = qdrant.NewValueInt(int64(val))
		case int64:
			result[k] = qdrant.NewValueInt(val)
		case float64:
			result[k] = qdrant.NewValueDouble(val)
		case float32:
			result[k] = qdrant.NewValueDouble(float64(val))
		case bool:
			result[k] = qdrant.NewValueBool(val)
		}
	}
	return result
}

func fromQdrantPayload(payload map[string]*qdrant.Value) map[string]interface{} {
	result := make(map[string]interface{})
	for k, v := range payload {
		switch val := v.Kind.(type) {
		case *qdrant.Value_StringValue:
			result[k] = val.StringValue
		case *qdrant.Value_IntegerValue:
			result[k] = val.IntegerValue
		case *qdrant.Value_DoubleValue:
			result[k] = val.DoubleValue
		case *qdrant.Value_BoolValue:
			result[k] = val.BoolValue
		}
	}
	return result
}
