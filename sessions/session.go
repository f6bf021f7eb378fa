package sessions

import (
	"encoding/json"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/npl-portal/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// User is the identity snapshot held by a session
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"name"`
	Role        string `json:"role"`
}

// Session is the client-held proof of authentication. Views only ever see copies.
type Session struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Validate reports ErrMalformedSession when the record can't authenticate anything.
func (s Session) Validate() error {
	switch {
	case s.Token == "":
		return fmt.Errorf("%w: empty token", apperrors.ErrMalformedSession)
	case s.User.ID == "":
		return fmt.Errorf("%w: empty user id", apperrors.ErrMalformedSession)
	case s.User.Username == "":
		return fmt.Errorf("%w: empty username", apperrors.ErrMalformedSession)
	}
	return nil
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Encode serialises a session into its persisted record form
func Encode(s Session) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding session: %w", err)
	}
	return data, nil
}

// Decode parses a persisted record. Any failure wraps ErrMalformedSession.
func Decode(data []byte) (Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("%w: %v", apperrors.ErrMalformedSession, err)
	}
	if err := s.Validate(); err != nil {
		return Session{}, err
	}
	return s, nil
}
