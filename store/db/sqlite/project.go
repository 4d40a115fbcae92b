package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/reyharighy/cba/store"
)

func (d *DB) CreateProject(ctx context.Context, create *store.Project) (*store.Project, error) {
	fields := []string{"project_id", "user_id", "title", "dataset_dir", "dataset_file", "created_ts", "updated_ts"}
	args := []any{create.ProjectID.String(), create.UserID.String(), create.Title, create.DatasetDir, create.DatasetFile, create.CreatedTs, create.UpdatedTs}

	stmt := `INSERT INTO project (` + strings.Join(fields, ", ") + `) VALUES (` + placeholders(len(args)) + `)`
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, errors.Wrap(err, "failed to create project")
	}

	return create, nil
}

func (d *DB) GetProject(ctx context.Context, find *store.FindProject) (*store.Project, error) {
	query := `
		SELECT project_id, user_id, title, dataset_dir, dataset_file, created_ts, updated_ts
		FROM project
		WHERE project_id = ?`

	var projectID, userID string
	project := &store.Project{}
	err := d.db.QueryRowContext(ctx, query, find.ProjectID.String()).Scan(
		&projectID,
		&userID,
		&project.Title,
		&project.DatasetDir,
		&project.DatasetFile,
		&project.CreatedTs,
		&project.UpdatedTs,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get project")
	}

	if project.ProjectID, err = parseUUID(projectID); err != nil {
		return nil, err
	}
	if project.UserID, err = parseUUID(userID); err != nil {
		return nil, err
	}

	return project, nil
}
