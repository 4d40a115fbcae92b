package postgres

import (
	"context"

	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/reyharighy/cba/store"
)

// UpsertTurnEmbedding inserts or updates a turn summary embedding.
func (d *DB) UpsertTurnEmbedding(ctx context.Context, upsert *store.TurnEmbedding) (*store.TurnEmbedding, error) {
	stmt := `
		INSERT INTO turn_embedding (turn_uid, project_id, embedding, model, created_ts, updated_ts)
		VALUES (` + placeholders(6) + `)
		ON CONFLICT (turn_uid, model)
		DO UPDATE SET
			embedding = EXCLUDED.embedding,
			updated_ts = EXCLUDED.updated_ts`

	vector := pgvector.NewVector(upsert.Embedding)
	if _, err := d.db.ExecContext(ctx, stmt,
		upsert.TurnUID,
		upsert.ProjectID,
		vector,
		upsert.Model,
		upsert.CreatedTs,
		upsert.UpdatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to upsert turn embedding")
	}

	return upsert, nil
}

// SearchTurnEmbeddings runs cosine-distance search over turn embeddings within
// a project and returns the matching turns, most similar first.
func (d *DB) SearchTurnEmbeddings(ctx context.Context, search *store.SearchTurnEmbedding) ([]*store.TurnEmbeddingHit, error) {
	limit := search.Limit
	if limit <= 0 {
		limit = 5
	}

	query := `
		SELECT
			t.uid, t.project_id, t.user_id, t.seq, t.query, t.response, t.summary, t.created_ts, t.updated_ts,
			1 - (e.embedding <=> ` + placeholder(1) + `) AS score
		FROM turn_embedding e
		JOIN turn t ON t.uid = e.turn_uid
		WHERE e.project_id = ` + placeholder(2) + `
		ORDER BY e.embedding <=> ` + placeholder(1) + `
		LIMIT ` + placeholder(3)

	vector := pgvector.NewVector(search.Vector)
	rows, err := d.db.QueryContext(ctx, query, vector, search.ProjectID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search turn embeddings")
	}
	defer rows.Close()

	hits := make([]*store.TurnEmbeddingHit, 0)
	for rows.Next() {
		turn := &store.Turn{}
		hit := &store.TurnEmbeddingHit{Turn: turn}
		if err := rows.Scan(
			&turn.UID,
			&turn.ProjectID,
			&turn.UserID,
			&turn.Seq,
			&turn.Query,
			&turn.Response,
			&turn.Summary,
			&turn.CreatedTs,
			&turn.UpdatedTs,
			&hit.Score,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan turn embedding hit")
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return hits, nil
}
