package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ActionType is the @odata.type discriminator of an action.
type ActionType string

const actionTypePrefix = "microsoft.graph."

const (
	ActionSetPrefillValues      ActionType = "microsoft.graph.attributeCollectionStart.setPrefillValues"
	ActionProvideClaimsForToken ActionType = "microsoft.graph.tokenIssuanceStart.provideClaimsForToken"

	continueWithDefaultBehavior = "continueWithDefaultBehavior"
)

// ContinueActionType returns the continueWithDefaultBehavior tag for p.
func ContinueActionType(p ExtensionPoint) ActionType {
	return ActionType(actionTypePrefix + string(p) + "." + continueWithDefaultBehavior)
}

// Action is one instruction to the platform. The set of variants is closed:
// SetPrefillValues, ContinueWithDefaultBehavior and ProvideClaimsForToken.
type Action interface {
	ActionType() ActionType
	isAction()
}

// SetPrefillValues pre-fills attribute collection inputs.
type SetPrefillValues struct {
	Inputs PrefillInputs
}

// PrefillInputs are the attribute values offered to the user.
type PrefillInputs struct {
	Country   string `json:"country,omitempty"`
	City      string `json:"city,omitempty"`
	PromoCode string `json:"promoCode,omitempty"`
}

func (SetPrefillValues) ActionType() ActionType { return ActionSetPrefillValues }
func (SetPrefillValues) isAction()              {}

func (a SetPrefillValues) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   ActionType    `json:"@odata.type"`
		Inputs PrefillInputs `json:"inputs"`
	}{a.ActionType(), a.Inputs})
}

// ContinueWithDefaultBehavior lets the flow proceed unchanged. The tag is scoped to the extension point.
type ContinueWithDefaultBehavior struct {
	Point ExtensionPoint
}

func (a ContinueWithDefaultBehavior) ActionType() ActionType { return ContinueActionType(a.Point) }
func (ContinueWithDefaultBehavior) isAction()                {}

func (a ContinueWithDefaultBehavior) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type ActionType `json:"@odata.type"`
	}{a.ActionType()})
}

// ProvideClaimsForToken adds custom claims to the token being issued.
type ProvideClaimsForToken struct {
	Claims TokenClaims
}

// TokenClaims are the custom claims returned at token issuance start. Empty fields are not sent.
type TokenClaims struct {
	CorrelationID string   `json:"CorrelationId,omitempty"`
	APIVersion    string   `json:"ApiVersion,omitempty"`
	LoyaltyNumber string   `json:"LoyaltyNumber,omitempty"`
	LoyaltySince  string   `json:"LoyaltySince,omitempty"`
	LoyaltyTier   string   `json:"LoyaltyTier,omitempty"`
	CustomRoles   []string `json:"CustomRoles,omitempty"`
}

func (ProvideClaimsForToken) ActionType() ActionType { return ActionProvideClaimsForToken }
func (ProvideClaimsForToken) isAction()              {}

func (a ProvideClaimsForToken) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   ActionType  `json:"@odata.type"`
		Claims TokenClaims `json:"claims"`
	}{a.ActionType(), a.Claims})
}

// ParseAction decodes a single action object by its @odata.type.
func ParseAction(raw json.RawMessage) (Action, error) {
	var head struct {
		Type ActionType `json:"@odata.type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}
	switch head.Type {
	case ActionSetPrefillValues:
		var body struct {
			Inputs PrefillInputs `json:"inputs"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		return SetPrefillValues{Inputs: body.Inputs}, nil
	case ActionProvideClaimsForToken:
		var body struct {
			Claims TokenClaims `json:"claims"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		return ProvideClaimsForToken{Claims: body.Claims}, nil
	}
	if strings.HasSuffix(string(head.Type), "."+continueWithDefaultBehavior) {
		for _, p := range ExtensionPoints {
			if ContinueActionType(p) == head.Type {
				return ContinueWithDefaultBehavior{Point: p}, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, head.Type)
}
