package sessions

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

var _ Store = (*FileStore)(nil)

// FileStore keeps one JSON file per session key in a directory
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating session directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *FileStore) Load(ctx context.Context, key string) (Session, bool) {
	if checkKey(key) != nil {
		return Session{}, false
	}
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Err(err).Str("store", "file").Msg("Failed to read session record")
		}
		return Session{}, false
	}
	return decodeRecord(ctx, "file", f, key, data)
}

func (f *FileStore) Save(_ context.Context, key string, session Session) error {
	if err := checkKey(key); err != nil {
		return err
	}
	data, err := Encode(session)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp session file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing session file: %w", err)
	}
	if err := os.Rename(tmpName, f.path(key)); err != nil {
		return fmt.Errorf("replacing session file: %w", err)
	}
	return nil
}

func (f *FileStore) Clear(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}
