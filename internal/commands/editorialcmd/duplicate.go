package editorialcmd

import (
	"context"

	"github.com/deptworks/go-editorial/internal/commands"
	"github.com/deptworks/go-editorial/internal/domain"
	"github.com/deptworks/go-editorial/internal/lifecycle"
	"github.com/deptworks/go-editorial/internal/session"
	"github.com/deptworks/go-editorial/pkg/interfaces"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const duplicateContentMessageType = "editorial.content.duplicate"

// DuplicateContentCommand clones an existing item into a fresh draft.
type DuplicateContentCommand struct {
	Kind    string    `json:"kind"`
	ItemID  uuid.UUID `json:"item_id"`
	ActorID uuid.UUID `json:"actor_id"`
}

// Type implements command.Message.
func (DuplicateContentCommand) Type() string { return duplicateContentMessageType }

// Validate ensures the message identifies the source item.
func (m DuplicateContentCommand) Validate() error {
	errs := validation.Errors{}
	if _, err := domain.ParseKind(m.Kind); err != nil {
		errs["kind"] = validation.NewError("editorial.content.duplicate.kind_invalid", "kind must be news or research")
	}
	if m.ItemID == uuid.Nil {
		errs["item_id"] = validation.NewError("editorial.content.duplicate.item_id_required", "item_id is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DuplicateContentHandler clones items via the content service.
type DuplicateContentHandler struct {
	inner *commands.Handler[DuplicateContentCommand]
}

// NewDuplicateContentHandler constructs a handler wired to the provided lifecycle service.
func NewDuplicateContentHandler(service lifecycle.Service, logger interfaces.Logger, opts ...commands.HandlerOption[DuplicateContentCommand]) *DuplicateContentHandler {
	exec := func(ctx context.Context, msg DuplicateContentCommand) error {
		kind, err := domain.ParseKind(msg.Kind)
		if err != nil {
			return err
		}

		sess := session.New(msg.ActorID)
		defer sess.Close()

		_, err = service.Duplicate(ctx, sess, kind, msg.ItemID)
		return err
	}

	handlerOpts := []commands.HandlerOption[DuplicateContentCommand]{
		commands.WithLogger[DuplicateContentCommand](logger),
		commands.WithOperation[DuplicateContentCommand]("content.duplicate"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &DuplicateContentHandler{
		inner: commands.NewHandler[DuplicateContentCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[DuplicateContentCommand].Execute.
func (h *DuplicateContentHandler) Execute(ctx context.Context, msg DuplicateContentCommand) error {
	return h.inner.Execute(ctx, msg)
}
