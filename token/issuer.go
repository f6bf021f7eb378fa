package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Subject is the identity a session token is minted for
type Subject struct {
	ID          string
	Username    string
	DisplayName string
	Role        string
}

// Claims are the fields read back from a session token
type Claims struct {
	Username    string `json:"username"`
	DisplayName string `json:"name"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer mints the opaque bearer tokens handed out by the demo login.
// Every call yields a distinct token because each carries a fresh jti.
type Issuer struct {
	signer Signer
	issuer string
	ttl    time.Duration
}

// NewIssuer creates an Issuer signing with HS256
func NewIssuer(secret, issuer string, ttl time.Duration) *Issuer {
	return &Issuer{
		signer: NewHMACSigner(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

// Mint issues a token for subject, returning it with its expiry
func (i *Issuer) Mint(subject Subject) (string, time.Time, error) {
	now := NowTimeFunc()
	claims := jwt.MapClaims{
		"iss":      i.issuer,
		"sub":      subject.ID,
		"username": subject.Username,
		"name":     subject.DisplayName,
		"role":     subject.Role,
		"iat":      now.Unix(),
		"jti":      uuid.New().String(),
	}

	var expiresAt time.Time
	if i.ttl > 0 {
		expiresAt = now.Add(i.ttl)
		claims["exp"] = expiresAt.Unix()
	}

	signed, err := i.signer.Sign(claims)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "minting session token")
	}
	return signed, expiresAt, nil
}

// Parse verifies a token minted by this Issuer
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, i.signer.GetVerificationKey,
		jwt.WithIssuer(i.issuer),
		jwt.WithTimeFunc(NowTimeFunc),
		jwt.WithValidMethods([]string{i.signer.GetSigningMethod().Alg()}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "parsing session token")
	}
	return claims, nil
}
