package auth

import (
	"strings"

	apperrors "github.com/jrsteele09/npl-portal/internal/errors"
	"github.com/jrsteele09/npl-portal/users"
)

// Credentials is a username/password pair submitted on the login form
type Credentials struct {
	Username string
	Password string
}

// Normalize trims surrounding whitespace from the username. Passwords are
// taken verbatim.
func (c Credentials) Normalize() Credentials {
	c.Username = strings.TrimSpace(c.Username)
	return c
}

// Check short-circuits empty input before any identity lookup
func (c Credentials) Check() error {
	if c.Normalize().Username == "" || c.Password == "" {
		return apperrors.ErrMissingCredentials
	}
	return nil
}

// ValidateCredentials matches creds against a known identity set. It has no
// side effects: empty input yields ErrMissingCredentials without consulting
// the set, and no match yields ErrInvalidCredentials.
func ValidateCredentials(creds Credentials, identities []users.Identity) (users.Identity, error) {
	creds = creds.Normalize()
	if err := creds.Check(); err != nil {
		return users.Identity{}, err
	}

	for _, identity := range identities {
		if identity.Username != creds.Username {
			continue
		}
		if identity.CheckPassword(creds.Password) {
			return identity, nil
		}
		break
	}
	return users.Identity{}, apperrors.ErrInvalidCredentials
}
