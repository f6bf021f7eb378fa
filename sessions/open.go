package sessions

import (
	"context"
	"fmt"
)

// Media names accepted by Open
const (
	MediumMemory   = "memory"
	MediumFile     = "file"
	MediumKeyring  = "keyring"
	MediumSQLite   = "sqlite"
	MediumPostgres = "postgres"
)

// Options selects and configures a storage medium
type Options struct {
	Medium string
	Dir    string // file and keyring media
	DSN    string // sqlite and postgres media
	Secret string // keyring file-backend password
}

// Open builds the configured Store. The returned close function is never nil.
func Open(ctx context.Context, opts Options) (Store, func(), error) {
	noop := func() {}
	switch opts.Medium {
	case "", MediumMemory:
		return NewInMemoryStore(), noop, nil
	case MediumFile:
		s, err := NewFileStore(opts.Dir)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	case MediumKeyring:
		ring, err := OpenKeyring(opts.Dir, opts.Secret)
		if err != nil {
			return nil, noop, err
		}
		return NewKeyringStore(ring), noop, nil
	case MediumSQLite:
		dsn := opts.DSN
		if dsn == "" {
			dsn = "sessions.db"
		}
		s, err := NewSQLiteStore(ctx, dsn)
		if err != nil {
			return nil, noop, err
		}
		return s, func() { _ = s.Close() }, nil
	case MediumPostgres:
		if opts.DSN == "" {
			return nil, noop, fmt.Errorf("postgres session store requires a DSN")
		}
		s, err := NewPostgresStore(ctx, opts.DSN)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown session store %q", opts.Medium)
	}
}
