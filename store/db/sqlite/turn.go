package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/reyharighy/cba/store"
)

func (d *DB) CreateTurn(ctx context.Context, create *store.Turn) (*store.Turn, error) {
	fields := []string{"uid", "project_id", "user_id", "seq", "query", "response", "summary", "created_ts", "updated_ts"}
	args := []any{create.UID, create.ProjectID.String(), create.UserID.String(), create.Seq, create.Query, create.Response, create.Summary, create.CreatedTs, create.UpdatedTs}

	stmt := `INSERT INTO turn (` + strings.Join(fields, ", ") + `) VALUES (` + placeholders(len(args)) + `)`
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, errors.Wrap(err, "failed to create turn")
	}

	return create, nil
}

func (d *DB) GetTurn(ctx context.Context, find *store.FindTurn) (*store.Turn, error) {
	if find.Seq == nil {
		return nil, errors.New("seq required")
	}

	query := `
		SELECT uid, project_id, user_id, seq, query, response, summary, created_ts, updated_ts
		FROM turn
		WHERE project_id = ? AND user_id = ? AND seq = ?`

	row := d.db.QueryRowContext(ctx, query, find.ProjectID.String(), find.UserID.String(), *find.Seq)
	turn, err := scanTurn(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get turn")
	}

	return turn, nil
}

func (d *DB) ListTurns(ctx context.Context, find *store.FindTurn) ([]*store.Turn, error) {
	where, args := []string{"1 = 1"}, []any{}

	where, args = append(where, "project_id = ?"), append(args, find.ProjectID.String())
	where, args = append(where, "user_id = ?"), append(args, find.UserID.String())
	if find.Seq != nil {
		where, args = append(where, "seq = ?"), append(args, *find.Seq)
	}

	query := `
		SELECT uid, project_id, user_id, seq, query, response, summary, created_ts, updated_ts
		FROM turn
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY seq ASC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list turns")
	}
	defer rows.Close()

	list := make([]*store.Turn, 0)
	for rows.Next() {
		turn, err := scanTurn(rows.Scan)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan turn")
		}
		list = append(list, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

// UpsertTurnEmbedding is not supported on SQLite.
func (d *DB) UpsertTurnEmbedding(_ context.Context, _ *store.TurnEmbedding) (*store.TurnEmbedding, error) {
	return nil, errors.New("turn embeddings are not supported on sqlite; use the postgres driver")
}

// SearchTurnEmbeddings is not supported on SQLite.
func (d *DB) SearchTurnEmbeddings(_ context.Context, _ *store.SearchTurnEmbedding) ([]*store.TurnEmbeddingHit, error) {
	return nil, errors.New("vector search is not supported on sqlite; use the postgres driver")
}

func scanTurn(scan func(dest ...any) error) (*store.Turn, error) {
	var projectID, userID string
	turn := &store.Turn{}
	if err := scan(
		&turn.UID,
		&projectID,
		&userID,
		&turn.Seq,
		&turn.Query,
		&turn.Response,
		&turn.Summary,
		&turn.CreatedTs,
		&turn.UpdatedTs,
	); err != nil {
		return nil, err
	}

	var err error
	if turn.ProjectID, err = parseUUID(projectID); err != nil {
		return nil, err
	}
	if turn.UserID, err = parseUUID(userID); err != nil {
		return nil, err
	}
	return turn, nil
}

func parseUUID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, errors.Wrapf(err, "invalid uuid %q", s)
	}
	return id, nil
}

// placeholders returns a comma-joined list of n ? parameters.
func placeholders(n int) string {
	list := make([]string, n)
	for i := range list {
		list[i] = "?"
	}
	return strings.Join(list, ", ")
}
