package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/franklab/frank/internal/embeddings"
	"github.com/franklab/frank/internal/logging"
	"github.com/franklab/frank/internal/vectors"
)

// Retrieval defaults tuned for nomic-embed-text cosine scores.
const (
	DefaultTopK     = 6
	DefaultMinScore = 0.25
)

// LongTerm recalls durable memories by semantic similarity.
type LongTerm struct {
	embed embeddings.Embedder
	store *vectors.Store
	log   *logging.Logger
}

// NewLongTerm wires the embedder to the vector store.
func NewLongTerm(embed embeddings.Embedder, store *vectors.Store) *LongTerm {
	return &LongTerm{
		embed: embed,
		store: store,
		log:   logging.WithField("component", "longterm"),
	}
}

// Add embeds and indexes one memory.
func (m *LongTerm) Add(ctx context.Context, text string, metadata map[string]interface{}) error {
	vec, err := m.embed.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to embed memory: %w", err)
	}
	return m.store.Upsert(ctx, uuid.NewString(), vec, text, metadata)
}

// Search returns up to k memories scoring at least minScore, formatted
// for injection into the planner prompt, deduplicated.
func (m *LongTerm) Search(ctx context.Context, query string, k uint64, minScore float32) []string {
	vec, err := m.embed.Embed(ctx, query)
	if err != nil {
		m.log.Warn("recall embedding failed: %v", err)
		return nil
	}

	matches, err := m.store.Search(ctx, vec, k, minScore)
	if err != nil {
		m.log.Warn("recall search failed: %v", err)
		return nil
	}

	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, match := range matches {
		line := formatMatch(match)
		if seen[line] {
			continue
		}
		seen[line] = true
		out = append(out, line)
	}
	return out
}

func formatMatch(m vectors.Match) string {
	role, _ := m.Metadata["role"].(string)
	if role == "" {
		role, _ = m.Metadata["kind"].(string)
	}
	if role == "" {
		role = "mem"
	}
	ts, _ := m.Metadata["ts"].(string)
	return strings.TrimSpace(fmt.Sprintf("[%s | %s | score=%.2f] %s", role, ts, m.Score, m.Text))
}
