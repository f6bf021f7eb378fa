package sessions

import (
	"context"
	"errors"
	"fmt"

	"github.com/99designs/keyring"
	"github.com/rs/zerolog/log"
)

const keyringServiceName = "npl-portal"

var _ Store = (*KeyringStore)(nil)

// KeyringStore keeps session records in the operating system keychain
type KeyringStore struct {
	ring keyring.Keyring
}

// OpenKeyring opens the system keyring, falling back to an encrypted file backend under fileDir.
func OpenKeyring(fileDir, filePassword string) (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: keyringServiceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  fileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt(filePassword),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

func NewKeyringStore(ring keyring.Keyring) *KeyringStore {
	return &KeyringStore{ring: ring}
}

func itemKey(key string) string {
	return "session:" + key
}

func (k *KeyringStore) Load(ctx context.Context, key string) (Session, bool) {
	if checkKey(key) != nil {
		return Session{}, false
	}
	item, err := k.ring.Get(itemKey(key))
	if err != nil {
		if !errors.Is(err, keyring.ErrKeyNotFound) {
			log.Err(err).Str("store", "keyring").Msg("Failed to read session record")
		}
		return Session{}, false
	}
	return decodeRecord(ctx, "keyring", k, key, item.Data)
}

func (k *KeyringStore) Save(_ context.Context, key string, session Session) error {
	if err := checkKey(key); err != nil {
		return err
	}
	data, err := Encode(session)
	if err != nil {
		return err
	}
	err = k.ring.Set(keyring.Item{
		Key:   itemKey(key),
		Data:  data,
		Label: "NPL portal session",
	})
	if err != nil {
		return fmt.Errorf("setting session %q: %w", key, err)
	}
	return nil
}

func (k *KeyringStore) Clear(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := k.ring.Remove(itemKey(key)); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting session %q: %w", key, err)
	}
	return nil
}
