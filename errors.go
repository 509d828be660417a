package auth

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// ErrRecordNotFound is returned by stores when a lookup matches nothing
var ErrRecordNotFound = errors.New("record not found")

// ErrNoEmptyString is returned when hashing an empty password
var ErrNoEmptyString = errors.New("empty string not allowed")

// ErrMismatchedHashAndPassword password does not match hash
var ErrMismatchedHashAndPassword = errors.New("password does not match hash")

// ErrInvalidRememberMe is returned when a remember-me credential cannot be
// decoded or verified
var ErrInvalidRememberMe = errors.New("invalid remember-me credential")

// IsRecordNotFound reports whether err is, or wraps, ErrRecordNotFound
func IsRecordNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}

// unexpected wraps a failure that must not be folded into an Outcome,
// such as an unavailable store.
func unexpected(err error, message string, metadata ...map[string]any) error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr
	}

	wrapped := goerrors.Wrap(err, goerrors.CategoryInternal, message).
		WithCode(goerrors.CodeInternal)
	if len(metadata) > 0 && metadata[0] != nil {
		wrapped = wrapped.WithMetadata(metadata[0])
	}
	return wrapped
}
