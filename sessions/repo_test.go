package sessions_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/jrsteele09/npl-portal/sessions"
	"github.com/stretchr/testify/require"
)

const testKey = "7f1c2d3e-aaaa-bbbb-cccc-0123456789ab"

type storeUnderTest struct {
	name   string
	store  sessions.Store
	putRaw func(t *testing.T, key string, payload []byte)
}

func testSession(token string) sessions.Session {
	return sessions.Session{
		User: sessions.User{
			ID:          "agent_id",
			Username:    "agent",
			DisplayName: "Collection Agent",
			Role:        "agent",
		},
		Token:     token,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func storesUnderTest(t *testing.T) []storeUnderTest {
	t.Helper()
	ctx := context.Background()

	mem := sessions.NewInMemoryStore()

	dir := t.TempDir()
	files, err := sessions.NewFileStore(dir)
	require.NoError(t, err)

	ring := keyring.NewArrayKeyring(nil)

	lite, err := sessions.NewSQLiteStore(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, lite.Close()) })

	return []storeUnderTest{
		{
			name:  "memory",
			store: mem,
			putRaw: func(t *testing.T, key string, payload []byte) {
				mem.PutRaw(key, payload)
			},
		},
		{
			name:  "file",
			store: files,
			putRaw: func(t *testing.T, key string, payload []byte) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, key+".json"), payload, 0o600))
			},
		},
		{
			name:  "keyring",
			store: sessions.NewKeyringStore(ring),
			putRaw: func(t *testing.T, key string, payload []byte) {
				require.NoError(t, ring.Set(keyring.Item{Key: "session:" + key, Data: payload}))
			},
		},
		{
			name:  "sqlite",
			store: lite,
			putRaw: func(t *testing.T, key string, payload []byte) {
				require.NoError(t, lite.PutRaw(context.Background(), key, string(payload)))
			},
		},
	}
}

var malformedPayloads = map[string][]byte{
	"empty":            {},
	"truncated json":   []byte(`{"user":{"id":"agent_id"`),
	"json null":        []byte(`null`),
	"json string":      []byte(`"mock_jwt_token_1"`),
	"json array":       []byte(`[]`),
	"missing token":    []byte(`{"user":{"id":"agent_id","username":"agent"}}`),
	"missing user id":  []byte(`{"user":{"username":"agent"},"token":"t"}`),
	"user wrong shape": []byte(`{"user":"agent","token":"t"}`),
}

func TestStores(t *testing.T) {
	for _, sut := range storesUnderTest(t) {
		t.Run(sut.name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("load absent", func(t *testing.T) {
				_, ok := sut.store.Load(ctx, "absent-key")
				require.False(t, ok)
			})

			t.Run("save then load", func(t *testing.T) {
				want := testSession("token-1")
				require.NoError(t, sut.store.Save(ctx, testKey, want))

				got, ok := sut.store.Load(ctx, testKey)
				require.True(t, ok)
				require.Equal(t, want.User, got.User)
				require.Equal(t, want.Token, got.Token)
				require.True(t, want.CreatedAt.Equal(got.CreatedAt))
			})

			t.Run("save overwrites", func(t *testing.T) {
				require.NoError(t, sut.store.Save(ctx, testKey, testSession("token-1")))
				require.NoError(t, sut.store.Save(ctx, testKey, testSession("token-2")))

				got, ok := sut.store.Load(ctx, testKey)
				require.True(t, ok)
				require.Equal(t, "token-2", got.Token)
			})

			t.Run("clear", func(t *testing.T) {
				require.NoError(t, sut.store.Save(ctx, testKey, testSession("token-1")))
				require.NoError(t, sut.store.Clear(ctx, testKey))

				_, ok := sut.store.Load(ctx, testKey)
				require.False(t, ok)

				// Clearing twice is not an error
				require.NoError(t, sut.store.Clear(ctx, testKey))
			})

			t.Run("save rejects sessions without token", func(t *testing.T) {
				err := sut.store.Save(ctx, testKey, testSession(""))
				require.Error(t, err)
			})

			t.Run("save rejects unsafe keys", func(t *testing.T) {
				err := sut.store.Save(ctx, "../escape", testSession("t"))
				require.ErrorIs(t, err, sessions.ErrInvalidKey)
			})

			t.Run("expired sessions are discarded", func(t *testing.T) {
				s := testSession("token-old")
				s.ExpiresAt = time.Now().Add(-time.Minute)
				require.NoError(t, sut.store.Save(ctx, testKey, s))

				_, ok := sut.store.Load(ctx, testKey)
				require.False(t, ok)
			})

			for name, payload := range malformedPayloads {
				t.Run("malformed "+name, func(t *testing.T) {
					sut.putRaw(t, testKey, payload)

					require.NotPanics(t, func() {
						_, ok := sut.store.Load(ctx, testKey)
						require.False(t, ok)
					})

					// The record was discarded, so a fresh save and load works
					require.NoError(t, sut.store.Save(ctx, testKey, testSession("token-3")))
					got, ok := sut.store.Load(ctx, testKey)
					require.True(t, ok)
					require.Equal(t, "token-3", got.Token)
					require.NoError(t, sut.store.Clear(ctx, testKey))
				})
			}
		})
	}
}

func TestInMemoryStoreDiscardsMalformedRecord(t *testing.T) {
	store := sessions.NewInMemoryStore()
	store.PutRaw(testKey, []byte(`{broken`))
	require.Equal(t, 1, store.Len())

	_, ok := store.Load(context.Background(), testKey)
	require.False(t, ok)
	require.Equal(t, 0, store.Len())
}

func TestFileStoreDiscardsMalformedRecord(t *testing.T) {
	dir := t.TempDir()
	store, err := sessions.NewFileStore(dir)
	require.NoError(t, err)

	path := filepath.Join(dir, testKey+".json")
	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o600))

	_, ok := store.Load(context.Background(), testKey)
	require.False(t, ok)
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("memory by default", func(t *testing.T) {
		store, closeFn, err := sessions.Open(ctx, sessions.Options{})
		require.NoError(t, err)
		defer closeFn()
		require.IsType(t, &sessions.InMemoryStore{}, store)
	})

	t.Run("file", func(t *testing.T) {
		store, closeFn, err := sessions.Open(ctx, sessions.Options{Medium: sessions.MediumFile, Dir: t.TempDir()})
		require.NoError(t, err)
		defer closeFn()
		require.IsType(t, &sessions.FileStore{}, store)
	})

	t.Run("sqlite", func(t *testing.T) {
		store, closeFn, err := sessions.Open(ctx, sessions.Options{Medium: sessions.MediumSQLite, DSN: filepath.Join(t.TempDir(), "s.db")})
		require.NoError(t, err)
		defer closeFn()
		require.IsType(t, &sessions.SQLiteStore{}, store)
	})

	t.Run("postgres requires dsn", func(t *testing.T) {
		_, closeFn, err := sessions.Open(ctx, sessions.Options{Medium: sessions.MediumPostgres})
		require.Error(t, err)
		require.NotNil(t, closeFn)
	})

	t.Run("unknown medium", func(t *testing.T) {
		_, _, err := sessions.Open(ctx, sessions.Options{Medium: "cookie-jar"})
		require.Error(t, err)
	})
}
