package errors

import (
	stderrors "errors"

	pkgerrors "github.com/pkg/errors"
)

// Error is a constant string error usable in const blocks.
type Error string

func (e Error) Error() string { return string(e) }

// Error kinds the engine distinguishes. Concrete sites wrap these with
// context via Wrap/Wrapf so callers can still match with Is.
const (
	ErrSchema    Error = "schema violation"
	ErrValue     Error = "value violation"
	ErrDecode    Error = "malformed record bytes"
	ErrPageFull  Error = "not enough space in page"
	ErrNotFound  Error = "not found"
	ErrIO        Error = "io failure"
	ErrParse     Error = "unsupported sql"
	ErrInvariant Error = "internal invariant violated"
)

func Wrap(err error, msg string) error {
	return pkgerrors.Wrap(err, msg)
}

func Wrapf(err error, format string, args ...interface{}) error {
	return pkgerrors.Wrapf(err, format, args...)
}

func New(msg string) error {
	return pkgerrors.New(msg)
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}
