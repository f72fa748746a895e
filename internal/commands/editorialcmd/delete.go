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

const deleteContentMessageType = "editorial.content.delete"

// DeleteContentCommand retires an item and withdraws any pending publication.
type DeleteContentCommand struct {
	Kind    string    `json:"kind"`
	ItemID  uuid.UUID `json:"item_id"`
	ActorID uuid.UUID `json:"actor_id"`
}

// Type implements command.Message.
func (DeleteContentCommand) Type() string { return deleteContentMessageType }

// Validate ensures the message identifies the item to delete.
func (m DeleteContentCommand) Validate() error {
	errs := validation.Errors{}
	if _, err := domain.ParseKind(m.Kind); err != nil {
		errs["kind"] = validation.NewError("editorial.content.delete.kind_invalid", "kind must be news or research")
	}
	if m.ItemID == uuid.Nil {
		errs["item_id"] = validation.NewError("editorial.content.delete.item_id_required", "item_id is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DeleteContentHandler removes items via the content service.
type DeleteContentHandler struct {
	inner *commands.Handler[DeleteContentCommand]
}

// NewDeleteContentHandler constructs a handler wired to the provided lifecycle service.
func NewDeleteContentHandler(service lifecycle.Service, logger interfaces.Logger, opts ...commands.HandlerOption[DeleteContentCommand]) *DeleteContentHandler {
	exec := func(ctx context.Context, msg DeleteContentCommand) error {
		kind, err := domain.ParseKind(msg.Kind)
		if err != nil {
			return err
		}

		sess := session.New(msg.ActorID)
		defer sess.Close()

		return service.Delete(ctx, sess, kind, msg.ItemID)
	}

	handlerOpts := []commands.HandlerOption[DeleteContentCommand]{
		commands.WithLogger[DeleteContentCommand](logger),
		commands.WithOperation[DeleteContentCommand]("content.delete"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &DeleteContentHandler{
		inner: commands.NewHandler[DeleteContentCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[DeleteContentCommand].Execute.
func (h *DeleteContentHandler) Execute(ctx context.Context, msg DeleteContentCommand) error {
	return h.inner.Execute(ctx, msg)
}
