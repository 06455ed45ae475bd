package security

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const bearerPrefix = "bearer "

// BearerPolicy is the read-only bearer-token policy shared by all requests.
// An empty expected value skips that claim check.
type BearerPolicy struct {
	Enabled                 bool
	ExpectedAudience        string
	ExpectedAuthorizedParty string
}

// InspectedClaims are the claims read from a bearer token.
// Claims of an unexpected JSON type read as "".
type InspectedClaims struct {
	// Audience is aud, or its first element when aud is an array.
	Audience        string
	AuthorizedParty string
	Issuer          string
	// Raw is the full decoded claim set.
	Raw map[string]any
}

// DecodeClaims reads the claim set of a compact JWT without verifying its signature.
//
// No signature, algorithm, expiry, or issuer check is made and registered claims are not
// type-checked. This is a known limitation, not a trust decision: the caller's authenticity
// must be established outside this service (mTLS, App Service authentication, network
// policy). The result is only fit for comparing claim values.
// ErrMalformedToken is returned only for a bad structure, bad base64url or bad JSON.
func DecodeClaims(token string) (*InspectedClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: token has %d segments, want 3", ErrMalformedToken, len(parts))
	}
	p := jwt.NewParser()
	if _, err := decodeObject(p, parts[0]); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformedToken, err)
	}
	raw, err := decodeObject(p, parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrMalformedToken, err)
	}
	return &InspectedClaims{
		Audience:        firstString(raw["aud"]),
		AuthorizedParty: firstString(raw["azp"]),
		Issuer:          firstString(raw["iss"]),
		Raw:             raw,
	}, nil
}

// decodeObject base64url-decodes seg and unmarshals it as a JSON object.
func decodeObject(p *jwt.Parser, seg string) (map[string]any, error) {
	b, err := p.DecodeSegment(seg)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.New("not a JSON object")
	}
	return m, nil
}

// firstString returns v when it is a string, the first element when it is an array
// starting with a string, and "" otherwise.
func firstString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		if len(t) > 0 {
			if s, ok := t[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

// Inspect checks the raw Authorization header value against policy.
// It returns nil when the caller is authorized, or ErrMissingCredential, ErrMalformedToken,
// ErrAudienceMismatch or ErrAuthorizedPartyMismatch.
func Inspect(header string, policy BearerPolicy) error {
	if !policy.Enabled {
		log.Printf("auth: bearer authentication disabled, skipping validation")
		return nil
	}

	token := extractBearer(header)
	if token == "" {
		log.Printf("auth: missing or invalid bearer token")
		return ErrMissingCredential
	}

	claims, err := DecodeClaims(token)
	if err != nil {
		log.Printf("auth: error decoding token: %v", err)
		return err
	}
	log.Printf("auth: token decoded, aud=%q azp=%q iss=%q", claims.Audience, claims.AuthorizedParty, claims.Issuer)

	if policy.ExpectedAudience != "" {
		if got := claims.Audience; got != policy.ExpectedAudience {
			log.Printf("auth: aud claim mismatch, expected=%q actual=%q", policy.ExpectedAudience, got)
			return ErrAudienceMismatch
		}
		log.Printf("auth: aud claim matched %q", policy.ExpectedAudience)
	} else {
		log.Printf("auth: aud claim validation skipped (no expected value configured)")
	}

	if policy.ExpectedAuthorizedParty != "" {
		if claims.AuthorizedParty != policy.ExpectedAuthorizedParty {
			log.Printf("auth: azp claim mismatch, expected=%q actual=%q", policy.ExpectedAuthorizedParty, claims.AuthorizedParty)
			return ErrAuthorizedPartyMismatch
		}
		log.Printf("auth: azp claim matched %q", policy.ExpectedAuthorizedParty)
	} else {
		log.Printf("auth: azp claim validation skipped (no expected value configured)")
	}

	return nil
}

// BearerAuthorizer gates requests on the Authorization header using a fixed policy snapshot.
type BearerAuthorizer struct {
	policy BearerPolicy
}

// NewBearerAuthorizer returns an Authorizer for policy. The policy is copied and never changes.
func NewBearerAuthorizer(policy BearerPolicy) *BearerAuthorizer {
	return &BearerAuthorizer{policy: policy}
}

// Authorize satisfies the Authorizer interface.
func (a *BearerAuthorizer) Authorize(r *http.Request) error {
	return Inspect(r.Header.Get("Authorization"), a.policy)
}

// Policy returns the policy snapshot.
func (a *BearerAuthorizer) Policy() BearerPolicy {
	return a.policy
}

// extractBearer returns the token after a case-insensitive "Bearer " prefix, or "" if missing or malformed.
// Any other scheme (e.g. Basic) therefore reads as a missing credential, not a malformed token.
func extractBearer(header string) string {
	v := strings.TrimSpace(header)
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
