package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"

	"github.com/reyharighy/cba/ai/contextsel"
	"github.com/reyharighy/cba/ai/core/llm"
	"github.com/reyharighy/cba/ai/memory"
	"github.com/reyharighy/cba/ai/metrics"
	"github.com/reyharighy/cba/ai/summary"
	"github.com/reyharighy/cba/store"
)

// Orchestrator owns one conversation session: a project, a user, an
// in-process turn history, and the collaborators needed to run a turn.
// A session processes one query at a time; the caller serializes requests.
type Orchestrator struct {
	project    *store.Project
	userID     uuid.UUID
	llm        llm.Service
	selector   *contextsel.Selector
	summarizer summary.Summarizer
	memory     *memory.TurnMemory
	store      *store.Store
	tools      []Tool
	indexer    TurnIndexer

	datasetAttrs string
}

// TurnIndexer receives completed turns for semantic indexing. Indexing is
// best effort and never fails a turn.
type TurnIndexer interface {
	Index(ctx context.Context, turn *store.Turn) error
}

// OrchestratorConfig carries the collaborators for a session.
type OrchestratorConfig struct {
	Project      *store.Project
	UserID       uuid.UUID
	LLM          llm.Service
	Selector     *contextsel.Selector
	Summarizer   summary.Summarizer
	Memory       *memory.TurnMemory
	Store        *store.Store
	Tools        []Tool
	Indexer      TurnIndexer
	DatasetAttrs string
}

// NewOrchestrator creates a session orchestrator.
func NewOrchestrator(cfg *OrchestratorConfig) *Orchestrator {
	return &Orchestrator{
		project:      cfg.Project,
		userID:       cfg.UserID,
		llm:          cfg.LLM,
		selector:     cfg.Selector,
		summarizer:   cfg.Summarizer,
		memory:       cfg.Memory,
		store:        cfg.Store,
		tools:        cfg.Tools,
		indexer:      cfg.Indexer,
		datasetAttrs: cfg.DatasetAttrs,
	}
}

// RunTurn processes one user query to completion: select relevant context,
// run the tool loop, summarize, persist, and append to memory. Any LLM,
// tool, or persistence failure aborts the turn with nothing persisted.
func (o *Orchestrator) RunTurn(ctx context.Context, query string) (response, summaryText string, err error) {
	history := o.memory.All()

	var historyBlock string
	if len(history) > 0 {
		selected, candidateErrs, serr := o.selector.Select(ctx, query, history)
		if serr != nil {
			return "", "", fmt.Errorf("context selection: %w", serr)
		}
		for _, cerr := range candidateErrs {
			slog.Warn("agent: candidate skipped during selection",
				"project", o.project.ProjectID,
				"seq", cerr.Seq,
				"stage", cerr.Stage,
				"error", cerr.Err,
			)
		}
		historyBlock = contextsel.FormatContext(selected)
	}

	systemPrompt := buildSystemPrompt(o.project.DatasetFile, o.datasetAttrs, historyBlock)
	messages := []llm.Message{
		llm.SystemPrompt(systemPrompt),
		llm.UserMessage(query),
	}

	response, err = runReActLoop(ctx, o.llm, messages, o.tools)
	if err != nil {
		return "", "", err
	}

	summaryText, err = o.summarizer.Summarize(ctx, query, response)
	if err != nil {
		return "", "", err
	}

	now := time.Now().Unix()
	turn, err := o.store.CreateTurn(ctx, &store.Turn{
		UID:       shortuuid.New(),
		ProjectID: o.project.ProjectID,
		UserID:    o.userID,
		Seq:       int32(o.memory.Len() + 1),
		Query:     query,
		Response:  response,
		Summary:   summaryText,
		CreatedTs: now,
		UpdatedTs: now,
	})
	if err != nil {
		return "", "", fmt.Errorf("persist turn: %w", err)
	}

	o.memory.Append(turn)
	metrics.TurnsCompleted.Inc()

	if o.indexer != nil {
		if ierr := o.indexer.Index(ctx, turn); ierr != nil {
			slog.Warn("agent: turn indexing failed", "turn", turn.UID, "error", ierr)
		}
	}

	slog.Info("agent: turn completed",
		"project", o.project.ProjectID,
		"user", o.userID,
		"seq", turn.Seq,
	)

	return response, summaryText, nil
}

// LastSeq returns the sequence number of the most recent completed turn,
// or 0 when the session has none.
func (o *Orchestrator) LastSeq() int32 {
	if last := o.memory.Last(); last != nil {
		return last.Seq
	}
	return 0
}

// LoadHistory primes the in-process memory from the store, once, at session
// start.
func (o *Orchestrator) LoadHistory(ctx context.Context) error {
	turns, err := o.store.ListTurns(ctx, &store.FindTurn{
		ProjectID: o.project.ProjectID,
		UserID:    o.userID,
	})
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	o.memory.Load(turns)
	return nil
}
