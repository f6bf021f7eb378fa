package sessions

import "context"

// PutRaw stores an unvalidated record, simulating corruption of the medium.
func (r *InMemoryStore) PutRaw(key string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[key] = data
}

func (s *SQLiteStore) PutRaw(ctx context.Context, key, payload string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO portal_sessions (session_key, payload) VALUES (?, ?)`, key, payload)
	return err
}

func (s *PostgresStore) PutRaw(ctx context.Context, key, payload string) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO portal_sessions (session_key, payload) VALUES ($1, $2)
		ON CONFLICT (session_key) DO UPDATE SET payload = EXCLUDED.payload`, key, payload)
	return err
}
