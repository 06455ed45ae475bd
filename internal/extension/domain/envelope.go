// Package domain holds the request and response envelopes exchanged with the identity
// platform at each custom authentication extension point.
package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ExtensionPoint names a moment in a flow where the platform calls out to this service.
// The value is the namespace the platform uses in action type tags.
type ExtensionPoint string

const (
	AttributeCollectionStart  ExtensionPoint = "attributeCollectionStart"
	AttributeCollectionSubmit ExtensionPoint = "attributeCollectionSubmit"
	OtpSend                   ExtensionPoint = "OtpSend"
	TokenIssuanceStart        ExtensionPoint = "tokenIssuanceStart"
)

// ExtensionPoints lists every supported point.
var ExtensionPoints = []ExtensionPoint{
	AttributeCollectionStart,
	AttributeCollectionSubmit,
	OtpSend,
	TokenIssuanceStart,
}

var responseDataTypes = map[ExtensionPoint]string{
	AttributeCollectionStart:  "microsoft.graph.onAttributeCollectionStartResponseData",
	AttributeCollectionSubmit: "microsoft.graph.onAttributeCollectionSubmitResponseData",
	OtpSend:                   "microsoft.graph.OnOtpSendResponseData",
	TokenIssuanceStart:        "microsoft.graph.onTokenIssuanceStartResponseData",
}

// ResponseDataType returns the @odata.type of the response data object for p.
func (p ExtensionPoint) ResponseDataType() string {
	return responseDataTypes[p]
}

// Request is the inbound envelope. T is the extension-point specific data payload.
type Request[T any] struct {
	Type   string `json:"type,omitempty"`
	Source string `json:"source,omitempty"`
	Data   T      `json:"data"`
}

// Response is the outbound envelope.
type Response struct {
	Data ResponseData `json:"data"`
}

// ResponseData carries the actions for the platform. Every current handler
// populates exactly one action; readers must not assume more.
type ResponseData struct {
	ODataType string   `json:"@odata.type,omitempty"`
	Actions   []Action `json:"actions"`
}

// NewResponse returns the envelope for p carrying the single action a.
func NewResponse(p ExtensionPoint, a Action) Response {
	return Response{Data: ResponseData{
		ODataType: p.ResponseDataType(),
		Actions:   []Action{a},
	}}
}

// Action returns the first action, or nil when there is none.
func (r Response) Action() Action {
	if len(r.Data.Actions) == 0 {
		return nil
	}
	return r.Data.Actions[0]
}

// UnmarshalJSON decodes actions through their @odata.type discriminator.
func (d *ResponseData) UnmarshalJSON(b []byte) error {
	var raw struct {
		ODataType string            `json:"@odata.type"`
		Actions   []json.RawMessage `json:"actions"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	actions := make([]Action, 0, len(raw.Actions))
	for i, ra := range raw.Actions {
		a, err := ParseAction(ra)
		if err != nil {
			return fmt.Errorf("actions[%d]: %w", i, err)
		}
		actions = append(actions, a)
	}
	d.ODataType = raw.ODataType
	d.Actions = actions
	return nil
}

// ErrUnknownAction is returned when an action's @odata.type is not a known variant.
var ErrUnknownAction = errors.New("unknown action type")
