package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNewResponse_SetPrefillValuesWireShape(t *testing.T) {
	resp := NewResponse(AttributeCollectionStart, SetPrefillValues{Inputs: PrefillInputs{Country: "es", PromoCode: "Promo code #4000"}})
	b, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"data":{"@odata.type":"microsoft.graph.onAttributeCollectionStartResponseData","actions":[` +
		`{"@odata.type":"microsoft.graph.attributeCollectionStart.setPrefillValues","inputs":{"country":"es","promoCode":"Promo code #4000"}}]}}`
	if string(b) != want {
		t.Errorf("json =\n%s\nwant\n%s", b, want)
	}
}

func TestNewResponse_ContinueTagsPerPoint(t *testing.T) {
	tests := []struct {
		point    ExtensionPoint
		dataType string
		action   string
	}{
		{AttributeCollectionSubmit, "microsoft.graph.onAttributeCollectionSubmitResponseData", "microsoft.graph.attributeCollectionSubmit.continueWithDefaultBehavior"},
		{OtpSend, "microsoft.graph.OnOtpSendResponseData", "microsoft.graph.OtpSend.continueWithDefaultBehavior"},
		{AttributeCollectionStart, "microsoft.graph.onAttributeCollectionStartResponseData", "microsoft.graph.attributeCollectionStart.continueWithDefaultBehavior"},
	}
	for _, tc := range tests {
		t.Run(string(tc.point), func(t *testing.T) {
			b, err := json.Marshal(NewResponse(tc.point, ContinueWithDefaultBehavior{Point: tc.point}))
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			want := `{"data":{"@odata.type":"` + tc.dataType + `","actions":[{"@odata.type":"` + tc.action + `"}]}}`
			if string(b) != want {
				t.Errorf("json = %s, want %s", b, want)
			}
		})
	}
}

func TestProvideClaimsForToken_EmptyClaimsObject(t *testing.T) {
	b, err := json.Marshal(NewResponse(TokenIssuanceStart, ProvideClaimsForToken{}))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"data":{"@odata.type":"microsoft.graph.onTokenIssuanceStartResponseData","actions":[` +
		`{"@odata.type":"microsoft.graph.tokenIssuanceStart.provideClaimsForToken","claims":{}}]}}`
	if string(b) != want {
		t.Errorf("json = %s, want %s", b, want)
	}
}

func TestProvideClaimsForToken_ClaimNames(t *testing.T) {
	a := ProvideClaimsForToken{Claims: TokenClaims{
		CorrelationID: "c1",
		APIVersion:    "1.0.0",
		LoyaltyNumber: "123467",
		LoyaltySince:  "01 March 2026",
		LoyaltyTier:   "Gold",
		CustomRoles:   []string{"Writer", "Editor"},
	}}
	b, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for _, key := range []string{`"CorrelationId":"c1"`, `"ApiVersion":"1.0.0"`, `"LoyaltyNumber":"123467"`,
		`"LoyaltySince":"01 March 2026"`, `"LoyaltyTier":"Gold"`, `"CustomRoles":["Writer","Editor"]`} {
		if !strings.Contains(string(b), key) {
			t.Errorf("json %s missing %s", b, key)
		}
	}
}

func TestResponse_RoundTripThroughDiscriminator(t *testing.T) {
	actions := []struct {
		point  ExtensionPoint
		action Action
	}{
		{AttributeCollectionStart, SetPrefillValues{Inputs: PrefillInputs{Country: "es", City: "Madrid", PromoCode: "Promo code #1236"}}},
		{AttributeCollectionSubmit, ContinueWithDefaultBehavior{Point: AttributeCollectionSubmit}},
		{OtpSend, ContinueWithDefaultBehavior{Point: OtpSend}},
		{TokenIssuanceStart, ProvideClaimsForToken{Claims: TokenClaims{LoyaltyTier: "Silver"}}},
	}
	for _, tc := range actions {
		b, err := json.Marshal(NewResponse(tc.point, tc.action))
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		var got Response
		if err := json.Unmarshal(b, &got); err != nil {
			t.Fatalf("Unmarshal(%s): %v", b, err)
		}
		if got.Data.ODataType != tc.point.ResponseDataType() {
			t.Errorf("data type = %q, want %q", got.Data.ODataType, tc.point.ResponseDataType())
		}
		if len(got.Data.Actions) != 1 {
			t.Fatalf("actions = %d, want 1", len(got.Data.Actions))
		}
		if got.Action().ActionType() != tc.action.ActionType() {
			t.Errorf("action type = %q, want %q", got.Action().ActionType(), tc.action.ActionType())
		}
	}
}

func TestParseAction_UnknownTag(t *testing.T) {
	for _, raw := range []string{
		`{"@odata.type":"microsoft.graph.somethingElse"}`,
		`{"@odata.type":"microsoft.graph.unknownPoint.continueWithDefaultBehavior"}`,
		`{}`,
	} {
		if _, err := ParseAction(json.RawMessage(raw)); !errors.Is(err, ErrUnknownAction) {
			t.Errorf("ParseAction(%s) = %v, want ErrUnknownAction", raw, err)
		}
	}
}

func TestResponse_ActionOnEmpty(t *testing.T) {
	if (Response{}).Action() != nil {
		t.Error("Action on empty response should be nil")
	}
}

func TestRequest_DecodesOtpPayload(t *testing.T) {
	body := `{
		"type": "microsoft.graph.authenticationEvent.emailOtpSend",
		"source": "/tenants/t1/applications/a1",
		"data": {
			"@odata.type": "microsoft.graph.onOtpSendCalloutData",
			"tenantId": "t1",
			"authenticationEventListenerId": "l1",
			"customAuthenticationExtensionId": "x1",
			"authenticationContext": {
				"correlationId": "corr-1",
				"client": {"ip": "203.0.113.9", "locale": "en-us", "market": "en-us"},
				"protocol": "OAUTH2.0"
			},
			"otpContext": {"identifier": "user@example.com", "onetimecode": "123456"}
		}
	}`
	var req Request[OtpSendData]
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if req.Data.OtpContext.Identifier != "user@example.com" || req.Data.OtpContext.OneTimeCode != "123456" {
		t.Errorf("otpContext = %+v", req.Data.OtpContext)
	}
	c := req.Data.Callout()
	if c.TenantID != "t1" || c.AuthenticationContext.CorrelationID != "corr-1" || c.AuthenticationContext.Client.IP != "203.0.113.9" {
		t.Errorf("callout = %+v", c)
	}
}

func TestRequest_DecodesSubmitAttributes(t *testing.T) {
	body := `{"data":{"userSignUpInfo":{"attributes":{"city":{"value":"Madrid","attributeType":"builtIn"}},` +
		`"identities":[{"signInType":"email","issuer":"contoso","issuerAssignedId":"a@b.c"}]}}}`
	var req Request[AttributeCollectionSubmitData]
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	info := req.Data.UserSignUpInfo
	if info == nil || info.Attributes["city"].Value != "Madrid" {
		t.Fatalf("userSignUpInfo = %+v", info)
	}
	if len(info.Identities) != 1 || info.Identities[0].IssuerAssignedID != "a@b.c" {
		t.Errorf("identities = %+v", info.Identities)
	}
}
