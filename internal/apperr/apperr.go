// Package apperr defines the error vocabulary shared by the API services and
// workers. Every error crossing a service boundary carries a Kind so the HTTP
// layer can map it to a status code without inspecting message strings.
package apperr

import "errors"

type Kind int

const (
	// Internal is the zero value: anything unclassified is an internal error.
	Internal Kind = iota
	InvalidRequest
	Unauthenticated
	NotFound
	Conflict
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Invalid(msg string) error {
	return &Error{Kind: InvalidRequest, Message: msg}
}

func Unauthorized() error {
	return &Error{Kind: Unauthenticated, Message: "Unauthorized"}
}

func NotFoundErr(msg string) error {
	return &Error{Kind: NotFound, Message: msg}
}

func Conflicting(msg string) error {
	return &Error{Kind: Conflict, Message: msg}
}

func Wrap(msg string, err error) error {
	return &Error{Kind: Internal, Message: msg, Err: err}
}

// KindOf classifies an arbitrary error. Errors that don't carry a Kind are
// treated as Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// PublicMessage is the message safe to return to the caller. Internal errors
// are reported generically; their detail belongs in operator logs only.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		return e.Message
	}
	return "Internal Server Error"
}

func IsKind(err error, k Kind) bool { return KindOf(err) == k }
