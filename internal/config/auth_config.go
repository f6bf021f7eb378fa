package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	authProviderVar     = "AUTH_PROVIDER"
	oidcIssuerVar       = "OIDC_ISSUER"
	oidcClientIDVar     = "OIDC_CLIENT_ID"
	oidcClientSecretVar = "OIDC_CLIENT_SECRET"
	tokenSecretVar      = "TOKEN_SECRET"
	tokenIssuerVar      = "TOKEN_ISSUER"
	tokenTTLVar         = "TOKEN_TTL"

	defaultTokenTTL = 8 * time.Hour
)

const (
	AuthProviderDemo   = "demo"
	AuthProviderRemote = "remote"
)

type AuthConfig interface {
	GetAuthProvider() string
	GetOIDCIssuer() string
	GetOIDCClientID() string
	GetOIDCClientSecret() string
	GetTokenSecret() string
	GetTokenIssuer() string
	GetTokenTTL() time.Duration
}

type Auth struct {
	v *viper.Viper
}

var _ AuthConfig = Auth{}

func (a Auth) GetAuthProvider() string {
	return strings.ToLower(a.v.GetString(authProviderVar))
}

func (a Auth) GetOIDCIssuer() string {
	return a.v.GetString(oidcIssuerVar)
}

func (a Auth) GetOIDCClientID() string {
	return a.v.GetString(oidcClientIDVar)
}

func (a Auth) GetOIDCClientSecret() string {
	return a.v.GetString(oidcClientSecretVar)
}

// GetTokenSecret signs demo-mode session tokens. A random secret is generated when unset.
func (a Auth) GetTokenSecret() string {
	return a.v.GetString(tokenSecretVar)
}

func (a Auth) GetTokenIssuer() string {
	return a.v.GetString(tokenIssuerVar)
}

func (a Auth) GetTokenTTL() time.Duration {
	ttl := a.v.GetDuration(tokenTTLVar)
	if ttl <= 0 {
		return defaultTokenTTL
	}
	return ttl
}
