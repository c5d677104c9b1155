package backendapi

import "errors"

var (
	// ErrMissingAccessToken indicates a successful exchange response carried no access token.
	ErrMissingAccessToken = errors.New("backendapi: response missing access token")

	// ErrMissingLoginURL indicates a successful login-URL response carried no URL.
	ErrMissingLoginURL = errors.New("backendapi: response missing login url")
)

// Error is a backend-reported application error from a non-2xx response.
// Detail is surfaced to the user verbatim when the backend provides one.
type Error struct {
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	return e.Detail
}
