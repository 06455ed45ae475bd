package domain

// CalloutData is the part of every request payload that identifies the tenant, the
// listener and the authentication context of the call.
type CalloutData struct {
	ODataType                       string                `json:"@odata.type,omitempty"`
	TenantID                        string                `json:"tenantId,omitempty"`
	AuthenticationEventListenerID   string                `json:"authenticationEventListenerId,omitempty"`
	CustomAuthenticationExtensionID string                `json:"customAuthenticationExtensionId,omitempty"`
	AuthenticationContext           AuthenticationContext `json:"authenticationContext"`
}

// AuthenticationContext describes the sign-in or sign-up in progress.
type AuthenticationContext struct {
	CorrelationID            string            `json:"correlationId,omitempty"`
	Client                   ClientContext     `json:"client"`
	Protocol                 string            `json:"protocol,omitempty"`
	ClientServicePrincipal   *ServicePrincipal `json:"clientServicePrincipal,omitempty"`
	ResourceServicePrincipal *ServicePrincipal `json:"resourceServicePrincipal,omitempty"`
	User                     *User             `json:"user,omitempty"`
}

// ClientContext is the end-user's client as seen by the platform.
type ClientContext struct {
	IP     string `json:"ip,omitempty"`
	Locale string `json:"locale,omitempty"`
	Market string `json:"market,omitempty"`
}

// ServicePrincipal identifies an application registration in the tenant.
type ServicePrincipal struct {
	ID             string `json:"id,omitempty"`
	AppID          string `json:"appId,omitempty"`
	AppDisplayName string `json:"appDisplayName,omitempty"`
	DisplayName    string `json:"displayName,omitempty"`
}

// User is the directory user, when one already exists.
type User struct {
	ID                string `json:"id,omitempty"`
	DisplayName       string `json:"displayName,omitempty"`
	GivenName         string `json:"givenName,omitempty"`
	Surname           string `json:"surname,omitempty"`
	Mail              string `json:"mail,omitempty"`
	UserPrincipalName string `json:"userPrincipalName,omitempty"`
	UserType          string `json:"userType,omitempty"`
	PreferredLanguage string `json:"preferredLanguage,omitempty"`
	CompanyName       string `json:"companyName,omitempty"`
	CreatedDateTime   string `json:"createdDateTime,omitempty"`
}

// AttributeCollectionStartData is the payload at attribute collection start.
type AttributeCollectionStartData struct {
	CalloutData
	UserSignUpInfo *UserSignUpInfo `json:"userSignUpInfo,omitempty"`
}

// AttributeCollectionSubmitData is the payload at attribute collection submit.
type AttributeCollectionSubmitData struct {
	CalloutData
	UserSignUpInfo *UserSignUpInfo `json:"userSignUpInfo,omitempty"`
}

// UserSignUpInfo carries the attributes and identities collected so far.
type UserSignUpInfo struct {
	Attributes map[string]AttributeValue `json:"attributes,omitempty"`
	Identities []Identity                `json:"identities,omitempty"`
}

// AttributeValue is one collected attribute.
type AttributeValue struct {
	ODataType     string `json:"@odata.type,omitempty"`
	Value         any    `json:"value,omitempty"`
	AttributeType string `json:"attributeType,omitempty"`
}

// Identity is a sign-in identity of the user being created.
type Identity struct {
	SignInType       string `json:"signInType,omitempty"`
	Issuer           string `json:"issuer,omitempty"`
	IssuerAssignedID string `json:"issuerAssignedId,omitempty"`
}

// OtpSendData is the payload when a one-time code must be delivered.
type OtpSendData struct {
	CalloutData
	OtpContext OtpContext `json:"otpContext"`
}

// OtpContext names the recipient and the code.
type OtpContext struct {
	Identifier  string `json:"identifier"`
	OneTimeCode string `json:"onetimecode"`
}

// TokenIssuanceStartData is the payload when a token is about to be issued.
type TokenIssuanceStartData struct {
	CalloutData
}

// Callout returns the shared part of any payload.
func (d CalloutData) Callout() CalloutData { return d }

// Payload is satisfied by every request payload type.
type Payload interface {
	Callout() CalloutData
}

// OtpNotification is what an OTP notifier receives for one OtpSend call.
type OtpNotification struct {
	TenantID      string
	CorrelationID string
	ClientIP      string
	Identifier    string
	Code          string
}

// Notification returns the OtpNotification for d.
func (d OtpSendData) Notification() OtpNotification {
	return OtpNotification{
		TenantID:      d.TenantID,
		CorrelationID: d.AuthenticationContext.CorrelationID,
		ClientIP:      d.AuthenticationContext.Client.IP,
		Identifier:    d.OtpContext.Identifier,
		Code:          d.OtpContext.OneTimeCode,
	}
}
