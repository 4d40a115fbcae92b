package v1

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/reyharighy/cba/ai/agent"
	"github.com/reyharighy/cba/ai/contextsel"
	"github.com/reyharighy/cba/ai/dataset"
	"github.com/reyharighy/cba/ai/memory"
	"github.com/reyharighy/cba/ai/vector"
	"github.com/reyharighy/cba/store"
)

type chatRequest struct {
	UserID string `json:"user_id"`
	Query  string `json:"query"`
}

type chatResponse struct {
	Response string `json:"response"`
	Summary  string `json:"summary"`
	Seq      int32  `json:"seq"`
}

func (s *APIV1Service) chat(c echo.Context) error {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid project id")
	}

	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request").SetInternal(err)
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user_id")
	}
	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}

	if !s.Profile.IsAIEnabled() {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "AI is not configured")
	}

	sess, err := s.getOrCreateSession(c.Request().Context(), projectID, userID)
	if err != nil {
		return err
	}

	// One in-flight chat per session. A second request while a turn is
	// running gets an immediate conflict rather than queueing.
	if !sess.mu.TryLock() {
		return echo.NewHTTPError(http.StatusConflict, "a chat request is already in progress for this project")
	}
	defer sess.mu.Unlock()

	response, summaryText, err := sess.orchestrator.RunTurn(c.Request().Context(), req.Query)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "turn failed, please try again").SetInternal(err)
	}

	return c.JSON(http.StatusOK, &chatResponse{
		Response: response,
		Summary:  summaryText,
		Seq:      sess.orchestrator.LastSeq(),
	})
}

func (s *APIV1Service) getOrCreateSession(ctx context.Context, projectID, userID uuid.UUID) (*session, error) {
	key := sessionKey{ProjectID: projectID, UserID: userID}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[key]; ok {
		return sess, nil
	}

	project, err := s.Store.GetProject(ctx, &store.FindProject{ProjectID: projectID})
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "failed to get project").SetInternal(err)
	}
	if project == nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "project not found")
	}

	orchestrator, err := s.buildOrchestrator(ctx, project, userID)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "failed to start session").SetInternal(err)
	}

	sess := &session{orchestrator: orchestrator}
	s.sessions[key] = sess
	return sess, nil
}

func (s *APIV1Service) buildOrchestrator(ctx context.Context, project *store.Project, userID uuid.UUID) (*agent.Orchestrator, error) {
	info, err := dataset.Load(project.DatasetPath())
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(project.DatasetPath())
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	if err := s.AI.Sandbox.UploadFile(ctx, project.DatasetFile, content); err != nil {
		return nil, fmt.Errorf("upload dataset to sandbox: %w", err)
	}

	tools := []agent.Tool{agent.NewExecuteCodeTool(s.AI.Sandbox)}

	var indexer agent.TurnIndexer
	// Vector search needs the pgvector-backed embedding store.
	if s.Profile.Driver == "postgres" && s.Profile.EmbeddingAPIKey != "" {
		vectorService := vector.NewService(s.AI.Embedding, s.Store)
		tools = append(tools, agent.NewVectorSearchTool(vectorService, project.ProjectID))
		indexer = vectorService
	}
	if s.Profile.WebSearchAPIKey != "" {
		tools = append(tools, agent.NewWebSearchTool(s.AI.WebSearch))
	}

	selector := contextsel.NewSelector(s.AI.Detector, s.AI.Translator, s.AI.Scorer, s.AI.Selector)

	orchestrator := agent.NewOrchestrator(&agent.OrchestratorConfig{
		Project:      project,
		UserID:       userID,
		LLM:          s.AI.LLM,
		Selector:     selector,
		Summarizer:   s.AI.Summarizer,
		Memory:       memory.New(),
		Store:        s.Store,
		Tools:        tools,
		Indexer:      indexer,
		DatasetAttrs: info.Attrs(),
	})

	if err := orchestrator.LoadHistory(ctx); err != nil {
		return nil, err
	}
	return orchestrator, nil
}
