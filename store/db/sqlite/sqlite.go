package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	// Import the SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/reyharighy/cba/internal/profile"
	"github.com/reyharighy/cba/store"
)

// SQLite is supported on a best-effort basis for development and testing only.
// Vector search is not available: the vector_search tool requires postgres
// with pgvector, and SearchTurnEmbeddings returns a clear error here instead
// of a partial implementation.

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a database specified by the driver-specific data source name.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	db, err := sql.Open("sqlite", profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	// SQLite handles a single writer; more connections only add lock
	// contention for this workload.
	db.SetMaxOpenConns(1)

	driver := DB{db: db, profile: profile}
	return &driver, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS project (
	project_id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	title TEXT NOT NULL,
	dataset_dir TEXT NOT NULL,
	dataset_file TEXT NOT NULL,
	created_ts BIGINT NOT NULL,
	updated_ts BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS turn (
	uid TEXT PRIMARY KEY,
	project_id TEXT NOT NULL REFERENCES project (project_id),
	user_id TEXT NOT NULL,
	seq INTEGER NOT NULL CHECK (seq >= 1),
	query TEXT NOT NULL,
	response TEXT NOT NULL,
	summary TEXT NOT NULL,
	created_ts BIGINT NOT NULL,
	updated_ts BIGINT NOT NULL,
	UNIQUE (project_id, user_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_turn_project_user_seq ON turn (project_id, user_id, seq);
`

// Migrate applies the embedded schema. All statements are idempotent.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to apply schema")
	}
	return nil
}
