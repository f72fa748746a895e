package workflow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/deptworks/go-editorial/internal/workflow"
	"github.com/deptworks/go-editorial/pkg/interfaces"
)

func newEngine() *workflow.Engine {
	fixed := time.Unix(1700000000, 0).UTC()
	return workflow.New(workflow.WithClock(func() time.Time { return fixed }))
}

func TestTransitionByName(t *testing.T) {
	engine := newEngine()
	entityID := uuid.New()

	result, err := engine.Transition(context.Background(), interfaces.TransitionInput{
		EntityID:     entityID,
		EntityType:   "news",
		CurrentState: "draft",
		Transition:   "schedule",
	})
	if err != nil {
		t.Fatalf("transition by name: %v", err)
	}
	if result.ToState != "scheduled" {
		t.Fatalf("expected scheduled, got %s", result.ToState)
	}
	if result.FromState != "draft" {
		t.Fatalf("expected from draft, got %s", result.FromState)
	}
	if result.EntityID != entityID {
		t.Fatalf("entity id mismatch")
	}
}

func TestTransitionByTargetState(t *testing.T) {
	engine := newEngine()

	result, err := engine.Transition(context.Background(), interfaces.TransitionInput{
		EntityID:     uuid.New(),
		EntityType:   "research",
		CurrentState: "draft",
		TargetState:  "active",
	})
	if err != nil {
		t.Fatalf("transition by target: %v", err)
	}
	if result.Transition != "activate" {
		t.Fatalf("expected activate, got %s", result.Transition)
	}
}

func TestTransitionMatrix(t *testing.T) {
	engine := newEngine()

	cases := []struct {
		entity     string
		from       string
		transition string
		to         string
		wantErr    bool
	}{
		{"news", "draft", "publish", "published", false},
		{"news", "scheduled", "publish", "published", false},
		{"news", "scheduled", "cancel_schedule", "draft", false},
		{"news", "published", "publish", "", true},
		{"news", "published", "schedule", "", true},
		{"news", "draft", "cancel_schedule", "", true},
		{"research", "active", "complete", "completed", false},
		{"research", "active", "archive", "archived", false},
		{"research", "completed", "archive", "archived", false},
		{"research", "draft", "complete", "", true},
		{"research", "draft", "archive", "", true},
		{"research", "archived", "activate", "", true},
		{"research", "completed", "activate", "", true},
	}

	for _, tc := range cases {
		result, err := engine.Transition(context.Background(), interfaces.TransitionInput{
			EntityID:     uuid.New(),
			EntityType:   tc.entity,
			CurrentState: interfaces.WorkflowState(tc.from),
			Transition:   tc.transition,
		})
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%s %s from %s: expected error", tc.entity, tc.transition, tc.from)
			}
			if !errors.Is(err, workflow.ErrInvalidTransition) {
				t.Fatalf("%s %s from %s: expected invalid transition, got %v", tc.entity, tc.transition, tc.from, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s %s from %s: %v", tc.entity, tc.transition, tc.from, err)
		}
		if string(result.ToState) != tc.to {
			t.Fatalf("%s %s from %s: expected %s, got %s", tc.entity, tc.transition, tc.from, tc.to, result.ToState)
		}
	}
}

func TestTransitionNormalizesInput(t *testing.T) {
	engine := newEngine()

	result, err := engine.Transition(context.Background(), interfaces.TransitionInput{
		EntityID:     uuid.New(),
		EntityType:   "News",
		CurrentState: "  Draft ",
		Transition:   " Publish ",
	})
	if err != nil {
		t.Fatalf("normalized transition: %v", err)
	}
	if result.ToState != "published" {
		t.Fatalf("expected published, got %s", result.ToState)
	}
}

func TestTransitionUnknownEntity(t *testing.T) {
	engine := newEngine()

	_, err := engine.Transition(context.Background(), interfaces.TransitionInput{
		EntityID:   uuid.New(),
		EntityType: "events",
		Transition: "publish",
	})
	if !errors.Is(err, workflow.ErrUnknownEntityType) {
		t.Fatalf("expected unknown entity error, got %v", err)
	}
}

func TestTransitionRequiresEntityID(t *testing.T) {
	engine := newEngine()

	_, err := engine.Transition(context.Background(), interfaces.TransitionInput{
		EntityType: "news",
		Transition: "publish",
	})
	if !errors.Is(err, workflow.ErrNilEntityID) {
		t.Fatalf("expected nil entity id error, got %v", err)
	}
}

func TestTransitionRequiresNameOrTarget(t *testing.T) {
	engine := newEngine()

	_, err := engine.Transition(context.Background(), interfaces.TransitionInput{
		EntityID:     uuid.New(),
		EntityType:   "news",
		CurrentState: "draft",
	})
	if !errors.Is(err, workflow.ErrMissingTransition) {
		t.Fatalf("expected missing transition error, got %v", err)
	}
}

func TestAvailableTransitions(t *testing.T) {
	engine := newEngine()

	transitions, err := engine.AvailableTransitions(context.Background(), interfaces.TransitionQuery{
		EntityType: "news",
		State:      "draft",
	})
	if err != nil {
		t.Fatalf("available transitions: %v", err)
	}
	if len(transitions) != 2 {
		t.Fatalf("expected 2 transitions from draft, got %d", len(transitions))
	}

	transitions, err = engine.AvailableTransitions(context.Background(), interfaces.TransitionQuery{
		EntityType: "research",
		State:      "archived",
	})
	if err != nil {
		t.Fatalf("available transitions: %v", err)
	}
	if len(transitions) != 0 {
		t.Fatalf("expected no transitions from archived, got %d", len(transitions))
	}
}

func TestRegisterWorkflowReplacesDefinition(t *testing.T) {
	engine := newEngine()

	err := engine.RegisterWorkflow(context.Background(), interfaces.WorkflowDefinition{
		EntityType:   "news",
		InitialState: "draft",
		Transitions: []interfaces.WorkflowTransition{
			{Name: "retract", From: "published", To: "draft"},
		},
	})
	if err != nil {
		t.Fatalf("register workflow: %v", err)
	}

	result, err := engine.Transition(context.Background(), interfaces.TransitionInput{
		EntityID:     uuid.New(),
		EntityType:   "news",
		CurrentState: "published",
		Transition:   "retract",
	})
	if err != nil {
		t.Fatalf("custom transition: %v", err)
	}
	if result.ToState != "draft" {
		t.Fatalf("expected draft, got %s", result.ToState)
	}

	_, err = engine.Transition(context.Background(), interfaces.TransitionInput{
		EntityID:     uuid.New(),
		EntityType:   "news",
		CurrentState: "draft",
		Transition:   "publish",
	})
	if !errors.Is(err, workflow.ErrInvalidTransition) {
		t.Fatalf("expected replaced definition to drop publish, got %v", err)
	}
}
