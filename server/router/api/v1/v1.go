// Package v1 implements the JSON API.
package v1

import (
	"sync"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/reyharighy/cba/ai"
	"github.com/reyharighy/cba/ai/agent"
	"github.com/reyharighy/cba/internal/profile"
	"github.com/reyharighy/cba/store"
)

// APIV1Service handles the /api/v1 routes.
type APIV1Service struct {
	Profile *profile.Profile
	Store   *store.Store
	AI      *ai.Config

	mu       sync.Mutex
	sessions map[sessionKey]*session
}

type sessionKey struct {
	ProjectID uuid.UUID
	UserID    uuid.UUID
}

// session is one live conversation. Its mutex enforces a single in-flight
// chat request per (project, user): the turn cycle is synchronous by design.
type session struct {
	mu           sync.Mutex
	orchestrator *agent.Orchestrator
}

// NewAPIV1Service creates the API service.
func NewAPIV1Service(p *profile.Profile, st *store.Store, aiConfig *ai.Config) *APIV1Service {
	return &APIV1Service{
		Profile:  p,
		Store:    st,
		AI:       aiConfig,
		sessions: make(map[sessionKey]*session),
	}
}

// Register mounts the v1 routes on the given group.
func (s *APIV1Service) Register(g *echo.Group) {
	g.POST("/projects", s.createProject)
	g.GET("/projects/:id", s.getProject)
	g.GET("/projects/:id/turns", s.listTurns)
	g.POST("/projects/:id/chat", s.chat)
}
