package resolve

import (
	"errors"
	"fmt"

	"github.com/udisondev/ttmgo/internal/model"
)

// Error kinds. Match them with errors.Is.
var (
	// ErrNotFound means the requested id itself does not exist.
	ErrNotFound = errors.New("content not found")
	// ErrMalformedReference means a record holds neither content nor an
	// import reference.
	ErrMalformedReference = errors.New("record has neither content nor import reference")
	// ErrUnresolvableChain means an import reference points at a record that
	// no longer exists.
	ErrUnresolvableChain = errors.New("import chain points at missing content")
	// ErrCycleOrDepthExceeded means the chain revisits a record or is longer
	// than the configured maximum depth.
	ErrCycleOrDepthExceeded = errors.New("import chain has a cycle or exceeds max depth")
)

// Error is a resolution failure tagged with the offending record.
type Error struct {
	Kind      error
	Type      model.ContentType
	ContentID model.ContentID
	// Cause carries extra context, for example the id that started the walk.
	Cause error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("resolving %s %s: %v", e.Type, e.ContentID, e.Kind)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func newError(kind error, typ model.ContentType, id model.ContentID, cause error) *Error {
	return &Error{Kind: kind, Type: typ, ContentID: id, Cause: cause}
}
