package security

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
)

const (
	// DefaultPrincipalHeader is the header App Service authentication injects with the caller's claims.
	DefaultPrincipalHeader = "X-MS-CLIENT-PRINCIPAL"
	// DefaultExpectedClientID is the app id the identity platform uses when calling custom authentication extensions.
	DefaultExpectedClientID = "99045fe1-7639-4a75-9d4a-577b6ca3810f"
)

// LegacyPolicy is the read-only claims-header policy.
type LegacyPolicy struct {
	Enabled          bool
	Header           string
	ExpectedClientID string
}

// ClientPrincipal is the decoded claims header.
type ClientPrincipal struct {
	AuthType string           `json:"auth_typ"`
	Claims   []PrincipalClaim `json:"claims"`
	NameType string           `json:"name_typ,omitempty"`
	RoleType string           `json:"role_typ,omitempty"`
}

// PrincipalClaim is one typ/val pair of a ClientPrincipal.
type PrincipalClaim struct {
	Type  string `json:"typ"`
	Value string `json:"val"`
}

// Claim returns the first value for typ, or "" when absent.
func (p *ClientPrincipal) Claim(typ string) string {
	for _, c := range p.Claims {
		if c.Type == typ {
			return c.Value
		}
	}
	return ""
}

// ClientID returns azp, falling back to appid for v1 tokens.
func (p *ClientPrincipal) ClientID() string {
	if v := p.Claim("azp"); v != "" {
		return v
	}
	return p.Claim("appid")
}

// DecodePrincipal decodes a base64 (standard or URL alphabet) JSON client principal.
func DecodePrincipal(value string) (*ClientPrincipal, error) {
	value = strings.TrimSpace(value)
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		raw, err = base64.RawURLEncoding.DecodeString(strings.TrimRight(value, "="))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPrincipal, err)
		}
	}
	var p ClientPrincipal
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPrincipal, err)
	}
	return &p, nil
}

// HeaderAuthorizer gates requests on a platform-injected client principal header.
type HeaderAuthorizer struct {
	policy LegacyPolicy
}

// NewHeaderAuthorizer returns an Authorizer for policy. An empty header name falls back to DefaultPrincipalHeader.
func NewHeaderAuthorizer(policy LegacyPolicy) *HeaderAuthorizer {
	if policy.Header == "" {
		policy.Header = DefaultPrincipalHeader
	}
	return &HeaderAuthorizer{policy: policy}
}

// Authorize satisfies the Authorizer interface.
func (a *HeaderAuthorizer) Authorize(r *http.Request) error {
	if !a.policy.Enabled {
		return nil
	}
	value := r.Header.Get(a.policy.Header)
	if value == "" {
		log.Printf("auth: missing %s header", a.policy.Header)
		return ErrMissingPrincipal
	}
	p, err := DecodePrincipal(value)
	if err != nil {
		log.Printf("auth: error decoding %s header: %v", a.policy.Header, err)
		return err
	}
	got := p.ClientID()
	if got == "" || got != a.policy.ExpectedClientID {
		log.Printf("auth: client principal mismatch, expected=%q actual=%q", a.policy.ExpectedClientID, got)
		return ErrClientMismatch
	}
	return nil
}
