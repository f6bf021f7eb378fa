package sessions

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/rs/zerolog/log"
)

// Store persists one session record per key. Implementations never surface
// malformed or unreadable records from Load: they are discarded and reported
// as absent.
type Store interface {
	// Load returns the stored session, or false when absent, expired or malformed
	Load(ctx context.Context, key string) (Session, bool)

	// Save overwrites any prior record for key
	Save(ctx context.Context, key string, session Session) error

	// Clear removes the record for key; clearing an absent record is not an error
	Clear(ctx context.Context, key string) error
}

var ErrInvalidKey = errors.New("invalid session key")

var validKey = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

func checkKey(key string) error {
	if !validKey.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// decodeRecord applies the shared discard policy to a raw record read from a medium.
func decodeRecord(ctx context.Context, medium string, store Store, key string, data []byte) (Session, bool) {
	s, err := Decode(data)
	if err != nil {
		log.Warn().Err(err).Str("store", medium).Msg("Discarding malformed session record")
		if clearErr := store.Clear(ctx, key); clearErr != nil {
			log.Err(clearErr).Str("store", medium).Msg("Failed to discard malformed session record")
		}
		return Session{}, false
	}
	if s.Expired(NowTimeFunc()) {
		if clearErr := store.Clear(ctx, key); clearErr != nil {
			log.Err(clearErr).Str("store", medium).Msg("Failed to clear expired session")
		}
		return Session{}, false
	}
	return s, true
}
