package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/deptworks/go-editorial/internal/domain"
	"github.com/deptworks/go-editorial/pkg/interfaces"
)

var (
	// ErrUnknownEntityType indicates no workflow definition exists for the requested entity.
	ErrUnknownEntityType = errors.New("workflow: entity type not registered")
	// ErrInvalidTransition indicates the requested transition is not allowed.
	ErrInvalidTransition = errors.New("workflow: transition not allowed")
	// ErrMissingTransition indicates neither a transition name nor target state were supplied.
	ErrMissingTransition = errors.New("workflow: transition name or target state required")
	// ErrNilEntityID signals input validation failure.
	ErrNilEntityID = errors.New("workflow: entity id required")
)

// Engine is an in-memory workflow engine that executes deterministic state
// transitions. It ships pre-seeded with the news and research lifecycles.
type Engine struct {
	mu          sync.RWMutex
	definitions map[string]*compiledDefinition
	now         func() time.Time
}

// Option configures the engine.
type Option func(*Engine)

// WithClock overrides the clock used for transition timestamps (primarily for testing).
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.now = clock
		}
	}
}

// New constructs a workflow engine seeded with the default content lifecycles.
func New(opts ...Option) *Engine {
	engine := &Engine{
		definitions: make(map[string]*compiledDefinition),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(engine)
	}

	_ = engine.RegisterWorkflow(context.Background(), NewsDefinition())
	_ = engine.RegisterWorkflow(context.Background(), ResearchDefinition())

	return engine
}

// Transition applies a workflow transition for an entity.
func (e *Engine) Transition(ctx context.Context, input interfaces.TransitionInput) (*interfaces.TransitionResult, error) {
	if input.EntityID == uuid.Nil {
		return nil, ErrNilEntityID
	}

	definition, err := e.definitionFor(input.EntityType)
	if err != nil {
		return nil, err
	}

	current := toState(input.CurrentState, definition.definition.InitialState)
	transitionName := strings.TrimSpace(strings.ToLower(input.Transition))
	var target interfaces.WorkflowState
	if strings.TrimSpace(string(input.TargetState)) != "" {
		target = normalizeState(input.TargetState)
	}

	var transition interfaces.WorkflowTransition
	switch {
	case transitionName != "":
		transition, err = definition.lookupTransition(transitionName, current)
		if err != nil {
			return nil, err
		}
	case target != "":
		transition, err = definition.lookupByStates(current, target)
		if err != nil {
			return nil, err
		}
	default:
		return nil, ErrMissingTransition
	}

	return &interfaces.TransitionResult{
		EntityID:    input.EntityID,
		EntityType:  input.EntityType,
		Transition:  transition.Name,
		FromState:   current,
		ToState:     normalizeState(transition.To),
		CompletedAt: e.now(),
		ActorID:     input.ActorID,
		Metadata:    cloneMetadata(input.Metadata),
	}, nil
}

// AvailableTransitions returns the transitions reachable from the supplied state.
func (e *Engine) AvailableTransitions(ctx context.Context, query interfaces.TransitionQuery) ([]interfaces.WorkflowTransition, error) {
	definition, err := e.definitionFor(query.EntityType)
	if err != nil {
		return nil, err
	}
	state := toState(query.State, definition.definition.InitialState)
	transitions := definition.transitionsByState[state]
	result := make([]interfaces.WorkflowTransition, len(transitions))
	copy(result, transitions)
	return result, nil
}

// RegisterWorkflow installs a workflow definition for the supplied entity type.
func (e *Engine) RegisterWorkflow(ctx context.Context, definition interfaces.WorkflowDefinition) error {
	entity := strings.ToLower(strings.TrimSpace(definition.EntityType))
	if entity == "" {
		return fmt.Errorf("workflow: entity type required")
	}
	compiled := compileDefinition(definition)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.definitions[entity] = compiled
	return nil
}

func (e *Engine) definitionFor(entityType string) (*compiledDefinition, error) {
	key := strings.ToLower(strings.TrimSpace(entityType))
	e.mu.RLock()
	definition, ok := e.definitions[key]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntityType, entityType)
	}
	return definition, nil
}

type compiledDefinition struct {
	definition         interfaces.WorkflowDefinition
	transitions        map[string]interfaces.WorkflowTransition
	transitionsByState map[interfaces.WorkflowState][]interfaces.WorkflowTransition
}

func compileDefinition(definition interfaces.WorkflowDefinition) *compiledDefinition {
	compiled := &compiledDefinition{
		definition:         definition,
		transitions:        make(map[string]interfaces.WorkflowTransition),
		transitionsByState: make(map[interfaces.WorkflowState][]interfaces.WorkflowTransition),
	}
	for _, transition := range definition.Transitions {
		from := normalizeState(transition.From)
		to := normalizeState(transition.To)
		transition.From = from
		transition.To = to
		key := transitionKey(transition.Name, from)
		compiled.transitions[key] = transition
		compiled.transitionsByState[from] = append(compiled.transitionsByState[from], transition)
	}
	return compiled
}

func (d *compiledDefinition) lookupTransition(name string, state interfaces.WorkflowState) (interfaces.WorkflowTransition, error) {
	key := transitionKey(name, normalizeState(state))
	transition, ok := d.transitions[key]
	if !ok {
		return interfaces.WorkflowTransition{}, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, name, state)
	}
	return transition, nil
}

func (d *compiledDefinition) lookupByStates(from, to interfaces.WorkflowState) (interfaces.WorkflowTransition, error) {
	transitions := d.transitionsByState[normalizeState(from)]
	target := normalizeState(to)
	for _, candidate := range transitions {
		if normalizeState(candidate.To) == target {
			return candidate, nil
		}
	}
	return interfaces.WorkflowTransition{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

func transitionKey(name string, from interfaces.WorkflowState) string {
	return strings.TrimSpace(strings.ToLower(name)) + "::" + string(normalizeState(from))
}

func toState(state interfaces.WorkflowState, fallback interfaces.WorkflowState) interfaces.WorkflowState {
	if strings.TrimSpace(string(state)) == "" {
		return normalizeState(fallback)
	}
	return normalizeState(state)
}

func normalizeState(state interfaces.WorkflowState) interfaces.WorkflowState {
	trimmed := strings.ToLower(strings.TrimSpace(string(state)))
	if trimmed == "" {
		return interfaces.WorkflowState(domain.StatusDraft)
	}
	return interfaces.WorkflowState(trimmed)
}

func cloneMetadata(input map[string]any) map[string]any {
	if len(input) == 0 {
		return nil
	}
	clone := make(map[string]any, len(input))
	for k, v := range input {
		clone[k] = v
	}
	return clone
}
