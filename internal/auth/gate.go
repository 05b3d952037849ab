package auth

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/desertthunder/tonearm/internal/subsonic"
)

// Gate checks the credentials carried in request parameters.
type Gate struct {
	store *Store
}

// NewGate creates a Gate backed by store.
func NewGate(store *Store) *Gate {
	return &Gate{store: store}
}

// Authenticate returns the authenticated user name or a protocol error.
//
// With no users configured every request passes and the name is taken from u when present.
// Otherwise u is required and credentials are checked in this order: the salted token (t and s) when both
// are present, then the password p, which may be hex encoded behind an "enc:" prefix.
func (g *Gate) Authenticate(params url.Values) (string, error) {
	user := params.Get("u")
	if g.store.Open() {
		return user, nil
	}
	if user == "" {
		return "", subsonic.Missing("u")
	}

	token, salt, password := params.Get("t"), params.Get("s"), params.Get("p")
	if password == "" && (token == "" || salt == "") {
		return "", subsonic.NewError(subsonic.MissingParameter, "missing credentials: t and s, or p")
	}

	secret, ok, err := g.store.Secret(user)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", invalid()
	}

	if token != "" && salt != "" {
		if Token(secret, salt) != token {
			return "", invalid()
		}
		return user, nil
	}

	if strings.HasPrefix(password, "enc:") {
		decoded, err := hex.DecodeString(password[len("enc:"):])
		if err != nil {
			return "", invalid()
		}
		password = string(decoded)
	}
	if password != secret {
		return "", invalid()
	}
	return user, nil
}

// Token computes the salted token a client sends for secret: hex(md5(secret + salt)).
func Token(secret, salt string) string {
	sum := md5.Sum([]byte(secret + salt))
	return hex.EncodeToString(sum[:])
}

func invalid() *subsonic.Error {
	return subsonic.NewError(subsonic.InvalidAuth, "wrong username or password")
}

type userKey struct{}

// WithUser stores the authenticated user name on ctx.
func WithUser(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, userKey{}, name)
}

// UserFrom returns the authenticated user name stored on ctx.
func UserFrom(ctx context.Context) string {
	name, _ := ctx.Value(userKey{}).(string)
	return name
}
