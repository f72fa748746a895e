// Package editorialcmd exposes go-command message types and handlers for the
// content lifecycle operations: transitions, duplication, deletion, and
// markdown import. Each handler opens a short-lived editing session on behalf
// of the acting user and delegates to the lifecycle service.
package editorialcmd

import (
	"context"
	"time"

	"github.com/deptworks/go-editorial/internal/commands"
	"github.com/deptworks/go-editorial/internal/domain"
	"github.com/deptworks/go-editorial/internal/lifecycle"
	"github.com/deptworks/go-editorial/internal/session"
	"github.com/deptworks/go-editorial/pkg/interfaces"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const transitionContentMessageType = "editorial.content.transition"

// TransitionContentCommand moves an item to a new lifecycle status.
type TransitionContentCommand struct {
	Kind       string              `json:"kind"`
	ItemID     uuid.UUID           `json:"item_id"`
	Target     string              `json:"target"`
	Token      domain.VersionToken `json:"token"`
	ScheduleAt *time.Time          `json:"schedule_at,omitempty"`
	StartAt    *time.Time          `json:"start_at,omitempty"`
	FinishAt   *time.Time          `json:"finish_at,omitempty"`
	ActorID    uuid.UUID           `json:"actor_id"`
}

// Type implements command.Message.
func (TransitionContentCommand) Type() string { return transitionContentMessageType }

// Validate ensures the message carries the required fields before reaching handlers.
func (m TransitionContentCommand) Validate() error {
	errs := validation.Errors{}
	if _, err := domain.ParseKind(m.Kind); err != nil {
		errs["kind"] = validation.NewError("editorial.content.transition.kind_invalid", "kind must be news or research")
	}
	if m.ItemID == uuid.Nil {
		errs["item_id"] = validation.NewError("editorial.content.transition.item_id_required", "item_id is required")
	}
	if m.Target == "" {
		errs["target"] = validation.NewError("editorial.content.transition.target_required", "target status is required")
	}
	if m.Token.IsZero() {
		errs["token"] = validation.NewError("editorial.content.transition.token_required", "version token is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// TransitionContentHandler applies lifecycle transitions via the content service.
type TransitionContentHandler struct {
	inner *commands.Handler[TransitionContentCommand]
}

// NewTransitionContentHandler constructs a handler wired to the provided lifecycle service.
func NewTransitionContentHandler(service lifecycle.Service, logger interfaces.Logger, opts ...commands.HandlerOption[TransitionContentCommand]) *TransitionContentHandler {
	exec := func(ctx context.Context, msg TransitionContentCommand) error {
		kind, err := domain.ParseKind(msg.Kind)
		if err != nil {
			return err
		}

		sess := session.New(msg.ActorID)
		defer sess.Close()

		extra := lifecycle.TransitionExtra{
			ScheduleAt: msg.ScheduleAt,
			StartAt:    msg.StartAt,
			FinishAt:   msg.FinishAt,
		}
		_, err = service.Transition(ctx, sess, kind, msg.ItemID, domain.NormalizeStatus(msg.Target), extra, msg.Token)
		return err
	}

	handlerOpts := []commands.HandlerOption[TransitionContentCommand]{
		commands.WithLogger[TransitionContentCommand](logger),
		commands.WithOperation[TransitionContentCommand]("content.transition"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &TransitionContentHandler{
		inner: commands.NewHandler[TransitionContentCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[TransitionContentCommand].Execute.
func (h *TransitionContentHandler) Execute(ctx context.Context, msg TransitionContentCommand) error {
	return h.inner.Execute(ctx, msg)
}
