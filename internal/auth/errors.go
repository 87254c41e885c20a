package auth

import "fmt"

// Failure kinds returned by the use cases. Transport maps these onto
// status codes; anything that is not an *Error is an infrastructure
// fault and must surface as a generic server error.
const (
	KindInvalidCredentials = "invalid_credentials"
	KindEmailTaken         = "email_already_registered"
	KindValidation         = "validation_failed"
)

// Wrong email, unknown email, wrong password, and inactive account all
// share this message so callers cannot probe which emails exist.
const invalidCredentialsMessage = "invalid email or password"

// Error is a classified business failure. The message is always safe
// to show to the end user.
type Error struct {
	Kind    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func errInvalidCredentials() *Error {
	return newError(KindInvalidCredentials, invalidCredentialsMessage)
}

// IsKind reports whether err is a classified failure of the given kind.
func IsKind(err error, kind string) bool {
	authErr, ok := err.(*Error)
	return ok && authErr.Kind == kind
}
