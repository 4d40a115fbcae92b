package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/reyharighy/cba/store"
)

func (d *DB) CreateTurn(ctx context.Context, create *store.Turn) (*store.Turn, error) {
	fields := []string{"uid", "project_id", "user_id", "seq", "query", "response", "summary", "created_ts", "updated_ts"}
	args := []any{create.UID, create.ProjectID, create.UserID, create.Seq, create.Query, create.Response, create.Summary, create.CreatedTs, create.UpdatedTs}

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
		WHERE project_id = ` + placeholder(1) + ` AND user_id = ` + placeholder(2) + ` AND seq = ` + placeholder(3)

	turn := &store.Turn{}
	err := d.db.QueryRowContext(ctx, query, find.ProjectID, find.UserID, *find.Seq).Scan(
		&turn.UID,
		&turn.ProjectID,
		&turn.UserID,
		&turn.Seq,
		&turn.Query,
		&turn.Response,
		&turn.Summary,
		&turn.CreatedTs,
		&turn.UpdatedTs,
	)
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

	where, args = append(where, "project_id = "+placeholder(len(args)+1)), append(args, find.ProjectID)
	where, args = append(where, "user_id = "+placeholder(len(args)+1)), append(args, find.UserID)
	if find.Seq != nil {
		where, args = append(where, "seq = "+placeholder(len(args)+1)), append(args, *find.Seq)
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
		turn := &store.Turn{}
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
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan turn")
		}
		list = append(list, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}
