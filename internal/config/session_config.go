package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	sessionStoreVar  = "SESSION_STORE"
	sessionDirVar    = "SESSION_DIR"
	sessionDSNVar    = "SESSION_DSN"
	sessionMaxAgeVar = "SESSION_MAX_AGE"
	cookieSecureVar  = "COOKIE_SECURE"

	defaultSessionMaxAge = 8 * time.Hour
)

// Session store media
const (
	SessionStoreMemory   = "memory"
	SessionStoreFile     = "file"
	SessionStoreKeyring  = "keyring"
	SessionStoreSQLite   = "sqlite"
	SessionStorePostgres = "postgres"
)

type SessionConfig interface {
	GetSessionStore() string
	GetSessionDir() string
	GetSessionDSN() string
	GetSessionMaxAge() time.Duration
	GetCookieSecure() bool
}

type Session struct {
	v *viper.Viper
}

var _ SessionConfig = Session{}

func (s Session) GetSessionStore() string {
	return strings.ToLower(s.v.GetString(sessionStoreVar))
}

// GetSessionDir is used by the file and keyring media.
func (s Session) GetSessionDir() string {
	return s.v.GetString(sessionDirVar)
}

// GetSessionDSN is the database location for the sqlite and postgres media.
func (s Session) GetSessionDSN() string {
	return s.v.GetString(sessionDSNVar)
}

func (s Session) GetSessionMaxAge() time.Duration {
	age := s.v.GetDuration(sessionMaxAgeVar)
	if age <= 0 {
		return defaultSessionMaxAge
	}
	return age
}

func (s Session) GetCookieSecure() bool {
	return s.v.GetBool(cookieSecureVar)
}
