package store

import (
	"context"
	"database/sql"

	"github.com/reyharighy/cba/internal/profile"
)

// Driver is an interface for database driver.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	// Migrate applies the embedded schema. It is idempotent.
	Migrate(ctx context.Context) error

	// Project store.
	CreateProject(ctx context.Context, create *Project) (*Project, error)
	GetProject(ctx context.Context, find *FindProject) (*Project, error)

	// Turn store. Turns are immutable once persisted: there is no update or
	// delete operation by design.
	CreateTurn(ctx context.Context, create *Turn) (*Turn, error)
	GetTurn(ctx context.Context, find *FindTurn) (*Turn, error)
	ListTurns(ctx context.Context, find *FindTurn) ([]*Turn, error)

	// Turn embedding store, backing the vector_search tool.
	UpsertTurnEmbedding(ctx context.Context, upsert *TurnEmbedding) (*TurnEmbedding, error)
	SearchTurnEmbeddings(ctx context.Context, search *SearchTurnEmbedding) ([]*TurnEmbeddingHit, error)
}

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

func (s *Store) CreateProject(ctx context.Context, create *Project) (*Project, error) {
	return s.driver.CreateProject(ctx, create)
}

func (s *Store) GetProject(ctx context.Context, find *FindProject) (*Project, error) {
	return s.driver.GetProject(ctx, find)
}

func (s *Store) CreateTurn(ctx context.Context, create *Turn) (*Turn, error) {
	return s.driver.CreateTurn(ctx, create)
}

func (s *Store) GetTurn(ctx context.Context, find *FindTurn) (*Turn, error) {
	return s.driver.GetTurn(ctx, find)
}

func (s *Store) ListTurns(ctx context.Context, find *FindTurn) ([]*Turn, error) {
	return s.driver.ListTurns(ctx, find)
}

func (s *Store) UpsertTurnEmbedding(ctx context.Context, upsert *TurnEmbedding) (*TurnEmbedding, error) {
	return s.driver.UpsertTurnEmbedding(ctx, upsert)
}

func (s *Store) SearchTurnEmbeddings(ctx context.Context, search *SearchTurnEmbedding) ([]*TurnEmbeddingHit, error) {
	return s.driver.SearchTurnEmbeddings(ctx, search)
}
