// Package commands provides the shared execution foundation for editorial
// command handlers: message validation, context discipline, structured
// logging, and error wrapping around go-command message types.
package commands

import (
	"context"
	"time"

	"github.com/deptworks/go-editorial/internal/logging"
	"github.com/deptworks/go-editorial/pkg/interfaces"
	"github.com/goliatone/go-command"
)

const defaultHandlerTimeout = 30 * time.Second

// Handler wraps a command execution function with validation, timeout
// enforcement, and logging shared by every editorial command.
type Handler[T command.Message] struct {
	exec      command.CommandFunc[T]
	logger    interfaces.Logger
	timeout   time.Duration
	operation string
}

// HandlerOption customizes handler behavior.
type HandlerOption[T command.Message] func(*Handler[T])

// WithTimeout overrides the default execution timeout. Zero disables the
// deadline entirely.
func WithTimeout[T command.Message](timeout time.Duration) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.timeout = timeout
	}
}

// WithLogger attaches a logger used for command telemetry.
func WithLogger[T command.Message](logger interfaces.Logger) HandlerOption[T] {
	return func(h *Handler[T]) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithOperation names the operation for log correlation.
func WithOperation[T command.Message](operation string) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.operation = operation
	}
}

// NewHandler builds a handler around the provided execution function.
func NewHandler[T command.Message](exec command.CommandFunc[T], opts ...HandlerOption[T]) *Handler[T] {
	if exec == nil {
		panic("commands: handler requires an execution function")
	}

	handler := &Handler[T]{
		exec:    exec,
		logger:  logging.NoOp(),
		timeout: defaultHandlerTimeout,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(handler)
		}
	}

	return handler
}

// Execute validates the message, applies the timeout, and runs the wrapped
// function. Returned errors are normalized through the command error wrappers.
func (h *Handler[T]) Execute(ctx context.Context, msg T) error {
	if err := command.ValidateMessage(msg); err != nil {
		return wrapValidationError(err)
	}

	ctx = h.ensureContext(ctx)

	if err := ctx.Err(); err != nil {
		return wrapContextError(err)
	}

	ctx, cancel := h.withTimeout(ctx)
	defer cancel()

	logger := logging.WithFields(h.logger, map[string]any{
		"command":   command.GetMessageType(msg),
		"operation": h.operation,
	})
	logger.Debug("command execution started")

	if err := h.exec(ctx, msg); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			logger.Error("command execution aborted", "error", ctxErr)
			return wrapContextError(ctxErr)
		}
		logger.Error("command execution failed", "error", err)
		return wrapExecuteError(err)
	}

	logger.Info("command execution succeeded")
	return nil
}

func (h *Handler[T]) ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func (h *Handler[T]) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, h.timeout)
}
