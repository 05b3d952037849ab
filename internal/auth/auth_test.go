package auth

import (
	"context"
	"encoding/hex"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/tonearm/internal/shared"
	"github.com/desertthunder/tonearm/internal/subsonic"
)

func protocolCode(t *testing.T, err error) subsonic.Code {
	t.Helper()
	var e *subsonic.Error
	require.True(t, errors.As(err, &e), "expected protocol error, got %v", err)
	return e.Code
}

func TestGate(t *testing.T) {
	gate := NewGate(NewStore(map[string]shared.UserConfig{
		"alice": {Password: "sesame"},
	}))

	tc := []struct {
		name   string
		params url.Values
		user   string
		code   subsonic.Code
		fails  bool
	}{
		{
			name:   "salted token",
			params: url.Values{"u": {"alice"}, "s": {"c19b2d"}, "t": {Token("sesame", "c19b2d")}},
			user:   "alice",
		},
		{
			name:   "plain password",
			params: url.Values{"u": {"alice"}, "p": {"sesame"}},
			user:   "alice",
		},
		{
			name:   "hex password",
			params: url.Values{"u": {"alice"}, "p": {"enc:" + hex.EncodeToString([]byte("sesame"))}},
			user:   "alice",
		},
		{
			name:   "wrong token",
			params: url.Values{"u": {"alice"}, "s": {"c19b2d"}, "t": {Token("wrong", "c19b2d")}},
			code:   subsonic.InvalidAuth,
			fails:  true,
		},
		{
			name:   "wrong password",
			params: url.Values{"u": {"alice"}, "p": {"open"}},
			code:   subsonic.InvalidAuth,
			fails:  true,
		},
		{
			name:   "bad hex",
			params: url.Values{"u": {"alice"}, "p": {"enc:zz"}},
			code:   subsonic.InvalidAuth,
			fails:  true,
		},
		{
			name:   "unknown user",
			params: url.Values{"u": {"mallory"}, "p": {"sesame"}},
			code:   subsonic.InvalidAuth,
			fails:  true,
		},
		{
			name:   "missing user",
			params: url.Values{"p": {"sesame"}},
			code:   subsonic.MissingParameter,
			fails:  true,
		},
		{
			name:   "no credentials",
			params: url.Values{"u": {"alice"}},
			code:   subsonic.MissingParameter,
			fails:  true,
		},
		{
			name:   "token without salt",
			params: url.Values{"u": {"alice"}, "t": {Token("sesame", "x")}},
			code:   subsonic.MissingParameter,
			fails:  true,
		},
		{
			name:   "token wins over a correct password",
			params: url.Values{"u": {"alice"}, "s": {"salt"}, "t": {"bogus"}, "p": {"sesame"}},
			code:   subsonic.InvalidAuth,
			fails:  true,
		},
		{
			name:   "token wins over a wrong password",
			params: url.Values{"u": {"alice"}, "s": {"salt"}, "t": {Token("sesame", "salt")}, "p": {"nope"}},
			user:   "alice",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			user, err := gate.Authenticate(tt.params)
			if tt.fails {
				require.Error(t, err)
				assert.Equal(t, tt.code, protocolCode(t, err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.user, user)
		})
	}
}

func TestGateOpenMode(t *testing.T) {
	gate := NewGate(NewStore(nil))

	user, err := gate.Authenticate(url.Values{"u": {"anyone"}, "p": {"whatever"}})
	require.NoError(t, err)
	assert.Equal(t, "anyone", user)

	user, err = gate.Authenticate(url.Values{})
	require.NoError(t, err)
	assert.Empty(t, user)
}

func TestStore(t *testing.T) {
	t.Run("password file is trimmed and cached", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bob.secret")
		require.NoError(t, os.WriteFile(path, []byte("hunter2\r\n"), 0600))

		store := NewStore(map[string]shared.UserConfig{"bob": {PasswordFile: path, Scrobble: true}})

		secret, ok, err := store.Secret("bob")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "hunter2", secret)

		require.NoError(t, os.WriteFile(path, []byte("changed\n"), 0600))
		secret, _, err = store.Secret("bob")
		require.NoError(t, err)
		assert.Equal(t, "hunter2", secret, "cached secret should not be reloaded")

		gate := NewGate(store)
		user, err := gate.Authenticate(url.Values{"u": {"bob"}, "p": {"hunter2"}})
		require.NoError(t, err)
		assert.Equal(t, "bob", user)
	})

	t.Run("missing password file", func(t *testing.T) {
		store := NewStore(map[string]shared.UserConfig{"bob": {PasswordFile: filepath.Join(t.TempDir(), "nope")}})

		_, ok, err := store.Secret("bob")
		assert.True(t, ok)
		assert.Error(t, err)

		_, err = NewGate(store).Authenticate(url.Values{"u": {"bob"}, "p": {"x"}})
		assert.Equal(t, subsonic.GenericError, subsonic.AsError(err).Code)
	})

	t.Run("user settings", func(t *testing.T) {
		store := NewStore(map[string]shared.UserConfig{
			"carol": {Password: "x", Email: "carol@example.com", Scrobble: true},
			"alice": {Password: "y"},
		})

		u, ok := store.User("carol")
		require.True(t, ok)
		assert.True(t, u.Scrobble)
		assert.Equal(t, "carol@example.com", u.Email)

		_, ok = store.User("dave")
		assert.False(t, ok)

		assert.Equal(t, []string{"alice", "carol"}, store.Names())
		assert.False(t, store.Open())
	})
}

func TestUserContext(t *testing.T) {
	ctx := WithUser(context.Background(), "alice")
	assert.Equal(t, "alice", UserFrom(ctx))
	assert.Empty(t, UserFrom(context.Background()))
}
