package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	// Import the PostgreSQL driver.
	_ "github.com/lib/pq"

	"github.com/reyharighy/cba/internal/profile"
	"github.com/reyharighy/cba/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a database specified by its connection string stored in the profile.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	db, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping db")
	}

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
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS project (
	project_id UUID PRIMARY KEY,
	user_id UUID NOT NULL,
	title TEXT NOT NULL,
	dataset_dir TEXT NOT NULL,
	dataset_file TEXT NOT NULL,
	created_ts BIGINT NOT NULL,
	updated_ts BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS turn (
	uid TEXT PRIMARY KEY,
	project_id UUID NOT NULL REFERENCES project (project_id),
	user_id UUID NOT NULL,
	seq INTEGER NOT NULL CHECK (seq >= 1),
	query TEXT NOT NULL,
	response TEXT NOT NULL,
	summary TEXT NOT NULL,
	created_ts BIGINT NOT NULL,
	updated_ts BIGINT NOT NULL,
	UNIQUE (project_id, user_id, seq)
);

CREATE TABLE IF NOT EXISTS turn_embedding (
	turn_uid TEXT NOT NULL REFERENCES turn (uid),
	project_id UUID NOT NULL,
	embedding vector(1024) NOT NULL,
	model TEXT NOT NULL,
	created_ts BIGINT NOT NULL,
	updated_ts BIGINT NOT NULL,
	PRIMARY KEY (turn_uid, model)
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

// placeholder returns the i-th positional parameter, e.g. $1.
func placeholder(i int) string {
	return "$" + fmt.Sprint(i)
}

// placeholders returns a comma-joined list of n positional parameters.
func placeholders(n int) string {
	list := make([]string, n)
	for i := range list {
		list[i] = placeholder(i + 1)
	}
	return strings.Join(list, ", ")
}
