// Package vector provides semantic search over persisted turn embeddings,
// backing the agent's vector_search tool.
package vector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/reyharighy/cba/ai/embedding"
	"github.com/reyharighy/cba/store"
)

const defaultTopK = 5

// Service embeds queries and searches stored turn vectors.
type Service struct {
	provider embedding.Provider
	store    *store.Store
}

// NewService creates a vector search Service.
func NewService(provider embedding.Provider, st *store.Store) *Service {
	return &Service{provider: provider, store: st}
}

// Index embeds a turn's summary and upserts it. Indexing is best effort:
// callers log failures and move on, since the turn itself is already durable.
func (s *Service) Index(ctx context.Context, turn *store.Turn) error {
	vec, err := s.provider.Embed(ctx, turn.Summary)
	if err != nil {
		return fmt.Errorf("embed turn %s: %w", turn.UID, err)
	}

	now := time.Now().Unix()
	_, err = s.store.UpsertTurnEmbedding(ctx, &store.TurnEmbedding{
		TurnUID:   turn.UID,
		ProjectID: turn.ProjectID,
		Embedding: vec,
		Model:     s.provider.Model(),
		CreatedTs: now,
		UpdatedTs: now,
	})
	if err != nil {
		return fmt.Errorf("upsert embedding for turn %s: %w", turn.UID, err)
	}

	slog.Debug("vector: turn indexed", "turn", turn.UID, "model", s.provider.Model())
	return nil
}

// Search returns the topK most similar past turns within a project.
func (s *Service) Search(ctx context.Context, projectID uuid.UUID, query string, topK int) ([]*store.TurnEmbeddingHit, error) {
	if topK <= 0 {
		topK = defaultTopK
	}

	vec, err := s.provider.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.store.SearchTurnEmbeddings(ctx, &store.SearchTurnEmbedding{
		ProjectID: projectID,
		Vector:    vec,
		Limit:     topK,
	})
	if err != nil {
		return nil, fmt.Errorf("search embeddings: %w", err)
	}
	return hits, nil
}
