package store

import (
	"github.com/google/uuid"
)

// Project is a dataset workspace owned by a user. Every chat turn belongs to
// exactly one project.
type Project struct {
	ProjectID   uuid.UUID
	UserID      uuid.UUID
	Title       string
	DatasetDir  string
	DatasetFile string
	CreatedTs   int64
	UpdatedTs   int64
}

// DatasetPath returns the full path of the project dataset file.
func (p *Project) DatasetPath() string {
	return p.DatasetDir + p.DatasetFile
}

// FindProject is the query input for fetching a single project.
type FindProject struct {
	ProjectID uuid.UUID
}
