package production

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"studio/internal/progress"
)

// ErrRunNotFound reports an unknown run id.
var ErrRunNotFound = errors.New("production: run not found")

// Service owns the run registry on top of the orchestrator. It keeps
// snapshots published by the orchestrator, so readers never race with a run
// in flight. The registry is process-scoped; runs do not survive a restart.
type Service struct {
	orch   *Orchestrator
	logger zerolog.Logger

	mu   sync.RWMutex
	runs map[string]*ProductionRun
}

// NewService wires an orchestrator whose snapshots land in the registry.
func NewService(opts Options) *Service {
	s := &Service{
		logger: opts.Logger,
		runs:   make(map[string]*ProductionRun),
	}
	opts.Publish = s.store
	s.orch = NewOrchestrator(opts)
	return s
}

// StartProduction runs a production synchronously to completion.
func (s *Service) StartProduction(ctx context.Context, prompt string, selected []Modality) (*ProductionRun, error) {
	return s.orch.StartProduction(ctx, prompt, selected)
}

// StartAsync validates the request, registers the run, and completes it in
// the background. The returned run is the created-stage placeholder; poll
// progress or Get for the rest.
func (s *Service) StartAsync(ctx context.Context, prompt string, selected []Modality) (*ProductionRun, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}
	id := uuid.NewString()
	placeholder := &ProductionRun{
		ID:        id,
		Prompt:    prompt,
		Stage:     StageCreated,
		CreatedAt: time.Now().UTC(),
	}
	s.store(placeholder)
	s.orch.Tracker().Update(id, string(StageCreated), 0, "run accepted")

	runCtx := context.WithoutCancel(ctx)
	go func() {
		if _, err := s.orch.StartProductionWithID(runCtx, id, prompt, selected); err != nil {
			s.logger.Error().Err(err).Str("run_id", id).Msg("production: async run failed to start")
		}
	}()
	return placeholder, nil
}

// Get returns the latest snapshot of the run.
func (s *Service) Get(id string) (*ProductionRun, error) {
	s.mu.RLock()
	run, ok := s.runs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrRunNotFound
	}
	return run, nil
}

// Progress returns the latest progress event for the run.
func (s *Service) Progress(id string) (progress.Event, error) {
	if _, err := s.Get(id); err != nil {
		return progress.Event{}, err
	}
	ev, ok := s.orch.Tracker().Latest(id)
	if !ok {
		return progress.Event{}, ErrRunNotFound
	}
	return ev, nil
}

// ProgressHistory returns the full progress log for the run.
func (s *Service) ProgressHistory(id string) ([]progress.Event, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	return s.orch.Tracker().History(id), nil
}

func (s *Service) store(run *ProductionRun) {
	s.mu.Lock()
	s.runs[run.ID] = run
	s.mu.Unlock()
}
