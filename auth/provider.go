package auth

import (
	"context"
	"time"

	"github.com/jrsteele09/npl-portal/sessions"
	"github.com/jrsteele09/npl-portal/token"
	"github.com/jrsteele09/npl-portal/users"
)

// Grant is the result of a successful authentication
type Grant struct {
	User      sessions.User
	Token     string
	ExpiresAt time.Time // zero when the token does not expire
}

// Provider turns credentials into a Grant. Implementations return
// ErrMissingCredentials or ErrInvalidCredentials for rejected input.
type Provider interface {
	Authenticate(ctx context.Context, creds Credentials) (Grant, error)
}

// StaticDemoProvider authenticates against the fixed demo identity set
type StaticDemoProvider struct {
	identities []users.Identity
	issuer     *token.Issuer
}

func NewStaticDemoProvider(issuer *token.Issuer) (*StaticDemoProvider, error) {
	identities, err := users.DemoIdentities()
	if err != nil {
		return nil, err
	}
	return &StaticDemoProvider{identities: identities, issuer: issuer}, nil
}

func (p *StaticDemoProvider) Authenticate(_ context.Context, creds Credentials) (Grant, error) {
	identity, err := ValidateCredentials(creds, p.identities)
	if err != nil {
		return Grant{}, err
	}

	user := sessions.User{
		ID:          identity.ID,
		Username:    identity.Username,
		DisplayName: identity.DisplayName,
		Role:        string(identity.Role),
	}
	tok, expiresAt, err := p.issuer.Mint(token.Subject{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Role:        user.Role,
	})
	if err != nil {
		return Grant{}, err
	}
	return Grant{User: user, Token: tok, ExpiresAt: expiresAt}, nil
}
