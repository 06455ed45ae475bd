package security

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnsupportedKey is returned when a signer is neither RSA nor ECDSA.
var ErrUnsupportedKey = errors.New("unsupported signing key")

// Issuer mints bearer tokens shaped like the ones the identity platform presents
// (aud, azp, iss, exp). Used by cmd/devtoken and tests to exercise the extension endpoints.
type Issuer struct {
	signer crypto.Signer
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// issuedClaims is the claim set Issue signs.
type issuedClaims struct {
	jwt.RegisteredClaims
	AuthorizedParty string `json:"azp,omitempty"`
}

// NewIssuer returns an Issuer that signs with signer (RS256 for RSA, ES256 for ECDSA).
func NewIssuer(signer crypto.Signer, issuer string, ttl time.Duration) *Issuer {
	return &Issuer{
		signer: signer,
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue returns a signed token carrying audience and authorizedParty, and its expiry.
// Empty values are omitted from the claim set.
func (i *Issuer) Issue(audience, authorizedParty string) (token string, expiresAt time.Time, err error) {
	jti, err := generateJTI()
	if err != nil {
		return "", time.Time{}, err
	}
	now := i.now().UTC()
	expiresAt = now.Add(i.ttl)
	claims := issuedClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		AuthorizedParty: authorizedParty,
	}
	if audience != "" {
		claims.Audience = jwt.ClaimStrings{audience}
	}
	token, err = i.sign(claims)
	return token, expiresAt, err
}

func (i *Issuer) sign(claims jwt.Claims) (string, error) {
	var method jwt.SigningMethod
	switch i.signer.Public().(type) {
	case *rsa.PublicKey:
		method = jwt.SigningMethodRS256
	case *ecdsa.PublicKey:
		method = jwt.SigningMethodES256
	default:
		return "", ErrUnsupportedKey
	}
	t := jwt.NewWithClaims(method, claims)
	return t.SignedString(i.signer)
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
