package auth

import "errors"

// Failures produced while resolving a caller. Resolve returns exactly one of
// these (possibly wrapped) whenever it does not return an identity.
var (
	// ErrMissingCredentials indicates the Authorization header is absent or
	// uses a scheme other than Bearer or Basic.
	ErrMissingCredentials = errors.New("missing credentials")

	// ErrAuthenticationFailed indicates the identity provider rejected the
	// credentials or could not be asked.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrMetadataMissing indicates the caller authenticated but the provider
	// has no client_id or role recorded for them.
	ErrMetadataMissing = errors.New("client id or role not found in identity metadata")

	// ErrNotPermitted indicates the caller's role may not perform the action.
	ErrNotPermitted = errors.New("not permitted")
)
