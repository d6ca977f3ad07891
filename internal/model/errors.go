package model

import "errors"

// ErrNotFound is returned by stores when no matching row exists.
var ErrNotFound = errors.New("not found")

// ErrorKind classifies an AuthError for boundary status mapping.
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindUnauthorized
	KindConflict
	KindNotFound
)

// AuthError is a classified, user-facing failure of an auth operation.
// It propagates unmodified to the transport boundary, where Kind selects
// a status code and Message becomes the response body. Anything that is
// not an AuthError surfaces generically without leaking internals.
type AuthError struct {
	Kind    ErrorKind
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

func NewValidationError(message string) *AuthError {
	return &AuthError{Kind: KindValidation, Message: message}
}

func NewUnauthorizedError(message string) *AuthError {
	return &AuthError{Kind: KindUnauthorized, Message: message}
}

func NewConflictError(message string) *AuthError {
	return &AuthError{Kind: KindConflict, Message: message}
}

func NewNotFoundError(message string) *AuthError {
	return &AuthError{Kind: KindNotFound, Message: message}
}

// AsAuthError unwraps err into an *AuthError if it is one.
func AsAuthError(err error) (*AuthError, bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}
