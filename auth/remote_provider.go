package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	apperrors "github.com/jrsteele09/npl-portal/internal/errors"
	"github.com/jrsteele09/npl-portal/sessions"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// RemoteConfig locates the identity provider used in place of the demo set
type RemoteConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	HTTPClient   *http.Client // optional
}

// RemoteProvider authenticates with the resource-owner password grant against
// an OIDC provider and verifies the returned ID token.
type RemoteProvider struct {
	oauth      *oauth2.Config
	verifier   *oidc.IDTokenVerifier
	httpClient *http.Client
}

func NewRemoteProvider(ctx context.Context, cfg RemoteConfig) (*RemoteProvider, error) {
	if cfg.Issuer == "" || cfg.ClientID == "" {
		return nil, fmt.Errorf("remote auth provider requires an issuer and client id")
	}
	if cfg.HTTPClient != nil {
		ctx = oidc.ClientContext(ctx, cfg.HTTPClient)
	}

	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	return &RemoteProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile"},
		},
		verifier: provider.Verifier(&oidc.Config{
			ClientID: cfg.ClientID,
		}),
		httpClient: cfg.HTTPClient,
	}, nil
}

func (p *RemoteProvider) Authenticate(ctx context.Context, creds Credentials) (Grant, error) {
	if err := creds.Check(); err != nil {
		return Grant{}, err
	}
	if p.httpClient != nil {
		ctx = oidc.ClientContext(ctx, p.httpClient)
	}

	oauth2Token, err := p.oauth.PasswordCredentialsToken(ctx, creds.Username, creds.Password)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if apperrors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			switch retrieveErr.Response.StatusCode {
			case http.StatusBadRequest, http.StatusUnauthorized:
				return Grant{}, apperrors.ErrInvalidCredentials
			}
		}
		log.Err(err).Str("user", creds.Username).Msg("Password grant failed")
		return Grant{}, apperrors.Wrapf(apperrors.ErrUnreachable, "password grant: %v", err)
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return Grant{}, fmt.Errorf("no ID token in token response")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return Grant{}, fmt.Errorf("ID token verification failed: %w", err)
	}

	var claims struct {
		Sub               string `json:"sub"`
		PreferredUsername string `json:"preferred_username"`
		Name              string `json:"name"`
		Role              string `json:"role"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return Grant{}, fmt.Errorf("failed to extract claims: %w", err)
	}

	username := claims.PreferredUsername
	if username == "" {
		username = creds.Username
	}
	displayName := claims.Name
	if displayName == "" {
		displayName = username
	}

	return Grant{
		User: sessions.User{
			ID:          claims.Sub,
			Username:    username,
			DisplayName: displayName,
			Role:        claims.Role,
		},
		Token:     oauth2Token.AccessToken,
		ExpiresAt: oauth2Token.Expiry,
	}, nil
}
