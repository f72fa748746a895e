package editorialcmd

import (
	"context"

	"github.com/deptworks/go-editorial/internal/commands"
	"github.com/deptworks/go-editorial/internal/domain"
	"github.com/deptworks/go-editorial/internal/markdown"
	"github.com/deptworks/go-editorial/internal/session"
	"github.com/deptworks/go-editorial/pkg/interfaces"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const importMarkdownMessageType = "editorial.content.import_markdown"

// ImportMarkdownCommand ingests a markdown document with YAML front matter
// into the catalog as a draft item.
type ImportMarkdownCommand struct {
	Kind    string    `json:"kind"`
	Source  []byte    `json:"source"`
	ActorID uuid.UUID `json:"actor_id"`
}

// Type implements command.Message.
func (ImportMarkdownCommand) Type() string { return importMarkdownMessageType }

// Validate ensures the message carries a document to import.
func (m ImportMarkdownCommand) Validate() error {
	errs := validation.Errors{}
	if _, err := domain.ParseKind(m.Kind); err != nil {
		errs["kind"] = validation.NewError("editorial.content.import_markdown.kind_invalid", "kind must be news or research")
	}
	if len(m.Source) == 0 {
		errs["source"] = validation.NewError("editorial.content.import_markdown.source_required", "source document is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ImportMarkdownHandler imports markdown documents via the importer.
type ImportMarkdownHandler struct {
	inner *commands.Handler[ImportMarkdownCommand]
}

// NewImportMarkdownHandler constructs a handler wired to the provided importer.
func NewImportMarkdownHandler(importer *markdown.Importer, logger interfaces.Logger, opts ...commands.HandlerOption[ImportMarkdownCommand]) *ImportMarkdownHandler {
	exec := func(ctx context.Context, msg ImportMarkdownCommand) error {
		kind, err := domain.ParseKind(msg.Kind)
		if err != nil {
			return err
		}

		sess := session.New(msg.ActorID)
		defer sess.Close()

		_, err = importer.Import(ctx, sess, kind, msg.Source)
		return err
	}

	handlerOpts := []commands.HandlerOption[ImportMarkdownCommand]{
		commands.WithLogger[ImportMarkdownCommand](logger),
		commands.WithOperation[ImportMarkdownCommand]("content.import_markdown"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ImportMarkdownHandler{
		inner: commands.NewHandler[ImportMarkdownCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ImportMarkdownCommand].Execute.
func (h *ImportMarkdownHandler) Execute(ctx context.Context, msg ImportMarkdownCommand) error {
	return h.inner.Execute(ctx, msg)
}
