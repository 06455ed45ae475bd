package security

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
)

func encodePrincipal(t *testing.T, p ClientPrincipal) string {
	t.Helper()
	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func TestHeaderAuthorizer_Disabled(t *testing.T) {
	a := NewHeaderAuthorizer(LegacyPolicy{Enabled: false, ExpectedClientID: DefaultExpectedClientID})
	req := httptest.NewRequest("POST", "/api/attributecollectionstart", nil)
	if err := a.Authorize(req); err != nil {
		t.Errorf("Authorize = %v, want nil when disabled", err)
	}
}

func TestHeaderAuthorizer_Enabled(t *testing.T) {
	a := NewHeaderAuthorizer(LegacyPolicy{Enabled: true, ExpectedClientID: DefaultExpectedClientID})

	tests := []struct {
		name    string
		header  string
		wantErr error
	}{
		{"absent", "", ErrMissingPrincipal},
		{"not base64", "%%%", ErrMalformedPrincipal},
		{"not json", base64.StdEncoding.EncodeToString([]byte("hello")), ErrMalformedPrincipal},
		{"azp matches", encodePrincipal(t, ClientPrincipal{AuthType: "aad", Claims: []PrincipalClaim{{Type: "azp", Value: DefaultExpectedClientID}}}), nil},
		{"appid matches", encodePrincipal(t, ClientPrincipal{AuthType: "aad", Claims: []PrincipalClaim{{Type: "appid", Value: DefaultExpectedClientID}}}), nil},
		{"azp differs", encodePrincipal(t, ClientPrincipal{Claims: []PrincipalClaim{{Type: "azp", Value: "someone-else"}}}), ErrClientMismatch},
		{"no client claim", encodePrincipal(t, ClientPrincipal{Claims: []PrincipalClaim{{Type: "aud", Value: DefaultExpectedClientID}}}), ErrClientMismatch},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/attributecollectionstart", nil)
			if tc.header != "" {
				req.Header.Set(DefaultPrincipalHeader, tc.header)
			}
			err := a.Authorize(req)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Authorize = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestHeaderAuthorizer_CustomHeader(t *testing.T) {
	a := NewHeaderAuthorizer(LegacyPolicy{Enabled: true, Header: "X-Client-Principal", ExpectedClientID: "client-1"})
	req := httptest.NewRequest("POST", "/", nil)
	req.Header.Set(DefaultPrincipalHeader, encodePrincipal(t, ClientPrincipal{Claims: []PrincipalClaim{{Type: "azp", Value: "client-1"}}}))
	if err := a.Authorize(req); !errors.Is(err, ErrMissingPrincipal) {
		t.Errorf("default header ignored: Authorize = %v, want ErrMissingPrincipal", err)
	}
	req.Header.Set("X-Client-Principal", encodePrincipal(t, ClientPrincipal{Claims: []PrincipalClaim{{Type: "azp", Value: "client-1"}}}))
	if err := a.Authorize(req); err != nil {
		t.Errorf("custom header: Authorize = %v, want nil", err)
	}
}

func TestDecodePrincipal_URLAlphabet(t *testing.T) {
	raw := []byte(`{"auth_typ":"aad","claims":[{"typ":"azp","val":"abc"}]}`)
	p, err := DecodePrincipal(base64.RawURLEncoding.EncodeToString(raw))
	if err != nil {
		t.Fatalf("DecodePrincipal: %v", err)
	}
	if p.ClientID() != "abc" {
		t.Errorf("ClientID = %q, want abc", p.ClientID())
	}
	if p.AuthType != "aad" {
		t.Errorf("AuthType = %q, want aad", p.AuthType)
	}
}

func TestAuthorizersAreInterchangeable(t *testing.T) {
	var gates = []Authorizer{
		NewBearerAuthorizer(BearerPolicy{Enabled: false}),
		NewHeaderAuthorizer(LegacyPolicy{Enabled: false}),
		AllowAll,
	}
	req := httptest.NewRequest("POST", "/", nil)
	for i, g := range gates {
		if err := g.Authorize(req); err != nil {
			t.Errorf("gate %d: Authorize = %v, want nil", i, err)
		}
	}
}
