package auth

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// DefaultOutcomeCode is the status an Outcome reports until a workflow
// sets a specific code.
const DefaultOutcomeCode = http.StatusInternalServerError

// Outcome accumulates the result of a single workflow call. It carries a
// status code, an ordered list of user facing error messages and an
// optional informational message. An Outcome is successful as long as no
// error was recorded.
//
// Outcome values are created per call and must not be shared.
type Outcome struct {
	code    int
	errors  []string
	message string
}

// NewOutcome returns an empty Outcome. The optional argument overrides
// DefaultOutcomeCode.
func NewOutcome(defaultCode ...int) *Outcome {
	code := DefaultOutcomeCode
	if len(defaultCode) > 0 && defaultCode[0] > 0 {
		code = defaultCode[0]
	}
	return &Outcome{code: code}
}

// AssertTrue records message with code when condition is false. It returns
// condition so checks can be chained with &&.
func (o *Outcome) AssertTrue(condition bool, code int, message string) bool {
	if !condition {
		o.errors = append(o.errors, message)
		o.code = code
	}
	return condition
}

// AssertFalse is the complement of AssertTrue.
func (o *Outcome) AssertFalse(condition bool, code int, message string) bool {
	return o.AssertTrue(!condition, code, message)
}

// Fail records an error unconditionally.
func (o *Outcome) Fail(code int, message string) {
	o.AssertTrue(false, code, message)
}

// Success reports whether no error was recorded.
func (o *Outcome) Success() bool {
	return len(o.errors) == 0
}

// Succeed marks the outcome as a 200 with the given message. It is a no-op
// once an error was recorded.
func (o *Outcome) Succeed(message string) {
	if !o.Success() {
		return
	}
	o.code = http.StatusOK
	o.message = message
}

// SetMessage sets the informational message.
func (o *Outcome) SetMessage(message string) {
	o.message = message
}

// SetCode overrides the status code.
func (o *Outcome) SetCode(code int) {
	o.code = code
}

// Message returns the informational message.
func (o *Outcome) Message() string {
	return o.message
}

// Code returns the status code.
func (o *Outcome) Code() int {
	return o.code
}

// Errors returns a copy of the accumulated error messages.
func (o *Outcome) Errors() []string {
	out := make([]string, len(o.errors))
	copy(out, o.errors)
	return out
}

// Err converts a failed outcome into a rich error. It returns nil for a
// successful outcome.
func (o *Outcome) Err() error {
	if o.Success() {
		return nil
	}

	return goerrors.New(strings.Join(o.errors, "; "), categoryForCode(o.code)).
		WithCode(o.code).
		WithMetadata(map[string]any{
			"errors": o.Errors(),
		})
}

// OutcomeView is the serializable form of an Outcome.
type OutcomeView struct {
	Code    int      `json:"code"`
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// View returns a snapshot suitable for JSON encoding or templates.
func (o *Outcome) View() OutcomeView {
	return OutcomeView{
		Code:    o.code,
		Success: o.Success(),
		Message: o.message,
		Errors:  o.Errors(),
	}
}

func categoryForCode(code int) goerrors.Category {
	switch {
	case code == http.StatusBadRequest:
		return goerrors.CategoryValidation
	case code == http.StatusUnauthorized:
		return goerrors.CategoryAuth
	case code == http.StatusForbidden:
		return goerrors.CategoryAuthz
	case code == http.StatusNotFound:
		return goerrors.CategoryNotFound
	case code == http.StatusMethodNotAllowed, code == http.StatusConflict:
		return goerrors.CategoryConflict
	default:
		return goerrors.CategoryInternal
	}
}
