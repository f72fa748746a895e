package lifecycle

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"

	"github.com/deptworks/go-editorial/internal/catalog"
	validationrules "github.com/deptworks/go-editorial/internal/validation"
)

const (
	codeValidationFailed = "CONTENT_VALIDATION_FAILED"
	codeVersionConflict  = "CONTENT_VERSION_CONFLICT"
	codeTransitionDenied = "CONTENT_TRANSITION_DENIED"
	codeStorageFailed    = "CONTENT_STORAGE_FAILED"
	codeSessionClosed    = "CONTENT_SESSION_CLOSED"
)

// Sentinel errors for input problems independent of draft content.
var (
	ErrTokenRequired = errors.New("lifecycle: version token required")
	ErrNilDraft      = errors.New("lifecycle: draft required")
)

// ValidationError carries the field-keyed rule failures for a rejected draft.
type ValidationError struct {
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "lifecycle: validation failed"
	}
	return "lifecycle: validation failed: " + e.Fields.Error()
}

// FieldErrors extracts the field-keyed failure map from a service error.
// Returns nil when the error is not a validation failure.
func FieldErrors(err error) validation.Errors {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}

// IsValidation reports whether the error is a rejected-draft failure.
func IsValidation(err error) bool {
	return goerrors.IsCategory(err, goerrors.CategoryValidation)
}

// IsConflict reports whether the error is a stale version token failure.
func IsConflict(err error) bool {
	return catalog.IsConflict(err)
}

// IsNotFound reports whether the error means the target item does not exist.
func IsNotFound(err error) bool {
	return catalog.IsNotFound(err)
}

func wrapValidation(fields validation.Errors) error {
	return goerrors.Wrap(&ValidationError{Fields: fields}, goerrors.CategoryValidation, "content validation failed").
		WithTextCode(codeValidationFailed)
}

func fieldFailure(field, message string) error {
	return wrapValidation(validation.Errors{
		field: validation.NewError("editorial.validation.field", message),
	})
}

func wrapSessionError(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryCommand, "editing session unusable").
		WithTextCode(codeSessionClosed)
}

func wrapTransitionError(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryCommand, "status transition denied").
		WithTextCode(codeTransitionDenied)
}

// wrapRepositoryError maps storage failures onto the service taxonomy. Slug
// conflicts become slug field failures, version conflicts keep their typed
// cause so callers can reload-and-retry, and not-found passes through typed.
func wrapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	var slugConflict *catalog.SlugConflictError
	if errors.As(err, &slugConflict) {
		return wrapValidation(validation.Errors{
			validationrules.FieldSlug: validation.NewError(
				"editorial.validation.slug_taken",
				"slug already in use for this content kind"),
		})
	}
	if catalog.IsConflict(err) {
		return goerrors.Wrap(err, goerrors.CategoryCommand, "stale version token").
			WithTextCode(codeVersionConflict)
	}
	if catalog.IsNotFound(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "content storage failed").
		WithTextCode(codeStorageFailed)
}
