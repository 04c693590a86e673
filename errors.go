package layoutpdf

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the layoutpdf packages.
var (
	ErrNotFound              = errors.New("layoutpdf: not found")
	ErrInvalidParam          = errors.New("layoutpdf: invalid parameter")
	ErrUnsupported           = errors.New("layoutpdf: unsupported operation")
	ErrNoSource              = errors.New("layoutpdf: no source resolved")
	ErrCapabilityUnavailable = errors.New("layoutpdf: capability unavailable")
	ErrDecode                = errors.New("layoutpdf: cannot decode")
)

// Error represents a failure during a specific layoutpdf operation.
// It wraps an underlying error and carries the operation name for context.
type Error struct {
	Op  string // operation name, e.g. "render", "store.Get"
	Err error  // underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("layoutpdf.%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("layoutpdf.%s: unknown error", e.Op)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap returns err annotated with op. A nil err stays nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// Errorf wraps a sentinel with a formatted detail message.
//
//	layoutpdf.Errorf("design.Validate", layoutpdf.ErrInvalidParam, "element %q has no id", name)
func Errorf(op string, sentinel error, format string, args ...any) error {
	return &Error{Op: op, Err: fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))}
}
