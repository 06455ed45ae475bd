package security

import (
	"errors"
	"net/http"
)

// Rejection reasons. They are logged by the gate and never written to the response body.
var (
	// ErrMissingCredential is returned when no bearer token is presented.
	ErrMissingCredential = errors.New("missing credential")
	// ErrMalformedToken is returned when the bearer token cannot be decoded.
	ErrMalformedToken = errors.New("malformed token")
	// ErrAudienceMismatch is returned when the aud claim differs from the expected audience.
	ErrAudienceMismatch = errors.New("audience mismatch")
	// ErrAuthorizedPartyMismatch is returned when the azp claim differs from the expected authorized party.
	ErrAuthorizedPartyMismatch = errors.New("authorized party mismatch")
	// ErrMissingPrincipal is returned when the client principal header is absent.
	ErrMissingPrincipal = errors.New("missing client principal")
	// ErrMalformedPrincipal is returned when the client principal header cannot be decoded.
	ErrMalformedPrincipal = errors.New("malformed client principal")
	// ErrClientMismatch is returned when the principal does not carry the expected client id.
	ErrClientMismatch = errors.New("client id mismatch")
)

// Authorizer decides whether an inbound extension call may reach its handler.
// A nil error means authorized; any error is one of the rejection reasons above.
// Implementations are safe for concurrent use.
type Authorizer interface {
	Authorize(r *http.Request) error
}

// AuthorizerFunc adapts a function into an Authorizer.
type AuthorizerFunc func(r *http.Request) error

// Authorize satisfies the Authorizer interface.
func (f AuthorizerFunc) Authorize(r *http.Request) error {
	return f(r)
}

// AllowAll authorizes every request.
var AllowAll Authorizer = AuthorizerFunc(func(*http.Request) error { return nil })

// Reason returns a short, stable label for a rejection error, for logs and metrics.
func Reason(err error) string {
	switch {
	case err == nil:
		return "authorized"
	case errors.Is(err, ErrMissingCredential):
		return "missing_credential"
	case errors.Is(err, ErrMalformedToken):
		return "malformed_token"
	case errors.Is(err, ErrAudienceMismatch):
		return "audience_mismatch"
	case errors.Is(err, ErrAuthorizedPartyMismatch):
		return "authorized_party_mismatch"
	case errors.Is(err, ErrMissingPrincipal):
		return "missing_principal"
	case errors.Is(err, ErrMalformedPrincipal):
		return "malformed_principal"
	case errors.Is(err, ErrClientMismatch):
		return "client_mismatch"
	default:
		return "unauthorized"
	}
}
