package sessions

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var _ Store = (*PostgresStore)(nil)

// PostgresStore keeps session records in Postgres so several portal replicas share them
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to databaseURL and ensures the sessions table exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Close releases database resources.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	const stmt = `CREATE TABLE IF NOT EXISTS portal_sessions (
		session_key TEXT PRIMARY KEY,
		payload     TEXT NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`
	if _, err := s.pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("migrate sessions table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, key string) (Session, bool) {
	if checkKey(key) != nil {
		return Session{}, false
	}
	var payload string
	err := s.pool.QueryRow(ctx, `SELECT payload FROM portal_sessions WHERE session_key = $1`, key).Scan(&payload)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			log.Err(err).Str("store", "postgres").Msg("Failed to read session record")
		}
		return Session{}, false
	}
	return decodeRecord(ctx, "postgres", s, key, []byte(payload))
}

func (s *PostgresStore) Save(ctx context.Context, key string, session Session) error {
	if err := checkKey(key); err != nil {
		return err
	}
	data, err := Encode(session)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO portal_sessions (session_key, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (session_key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		key, string(data))
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *PostgresStore) Clear(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM portal_sessions WHERE session_key = $1`, key); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
