package authflow

import "errors"

var (
	// ErrLoginInProgress indicates a login was initiated while another one
	// is still redirecting to the identity provider.
	ErrLoginInProgress = errors.New("authflow: login already in progress")

	// ErrMissingCode indicates the callback carried no authorization code.
	ErrMissingCode = errors.New("authflow: authorization code not provided")
)
