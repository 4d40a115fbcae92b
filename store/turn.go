package store

import (
	"github.com/google/uuid"
)

// Turn is one completed user/assistant exchange attached to a project.
// A turn is immutable once persisted: it is only ever appended, never updated.
type Turn struct {
	UID       string
	ProjectID uuid.UUID
	UserID    uuid.UUID
	// Seq is unique per (project, user) and monotonically increases from 1.
	Seq      int32
	Query    string
	Response string
	// Summary is a condensed restatement of Response only, never of Query.
	Summary   string
	CreatedTs int64
	UpdatedTs int64
}

// FindTurn is the query input for fetching turns.
// With Seq set it identifies a single turn; without it, the full ordered
// history for (project, user).
type FindTurn struct {
	ProjectID uuid.UUID
	UserID    uuid.UUID
	Seq       *int32
}

// TurnEmbedding is a vector embedding of a turn's summary, used by the
// vector_search agent tool.
type TurnEmbedding struct {
	TurnUID   string
	ProjectID uuid.UUID
	Embedding []float32
	Model     string
	CreatedTs int64
	UpdatedTs int64
}

// SearchTurnEmbedding is the query input for vector similarity search.
type SearchTurnEmbedding struct {
	ProjectID uuid.UUID
	Vector    []float32
	Limit     int
}

// TurnEmbeddingHit is one vector search result.
type TurnEmbeddingHit struct {
	Turn  *Turn
	Score float32
}
