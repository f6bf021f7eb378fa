package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore keeps session records in a local SQLite database
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) the database at dsn and ensures the sessions table exists.
func NewSQLiteStore(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	const schema = `CREATE TABLE IF NOT EXISTS portal_sessions (
		session_key TEXT PRIMARY KEY,
		payload     TEXT NOT NULL,
		updated_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating sessions table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Load(ctx context.Context, key string) (Session, bool) {
	if checkKey(key) != nil {
		return Session{}, false
	}
	var payload string
	err := s.db.GetContext(ctx, &payload, `SELECT payload FROM portal_sessions WHERE session_key = ?`, key)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Err(err).Str("store", "sqlite").Msg("Failed to read session record")
		}
		return Session{}, false
	}
	return decodeRecord(ctx, "sqlite", s, key, []byte(payload))
}

func (s *SQLiteStore) Save(ctx context.Context, key string, session Session) error {
	if err := checkKey(key); err != nil {
		return err
	}
	data, err := Encode(session)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO portal_sessions (session_key, payload, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(session_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		key, string(data))
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM portal_sessions WHERE session_key = ?`, key); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}
