package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/curriculo/apiserver/internal/store"
	"github.com/curriculo/apiserver/types"
)

// ErrUnauthenticated covers every credential failure: absent or malformed
// header, unknown token, expired token. Callers never learn which one, so
// a probe cannot distinguish a dead token from a nonexistent one.
var ErrUnauthenticated = errors.New("unauthenticated")

// UserSource resolves token owners. The production implementation is
// store.UserRepository.
type UserSource interface {
	GetByID(ctx context.Context, id int) (types.User, error)
}

// Authenticator resolves a raw Authorization header to a user. It is not
// read-only: presenting an expired token rotates it, and the request is
// still rejected because the caller holds the superseded value and must
// log in again to learn the new one.
type Authenticator struct {
	tokens TokenStore
	users  UserSource
	expiry *Evaluator
}

func NewAuthenticator(tokens TokenStore, users UserSource, expiry *Evaluator) *Authenticator {
	return &Authenticator{
		tokens: tokens,
		users:  users,
		expiry: expiry,
	}
}

func (a *Authenticator) Authenticate(ctx context.Context, header string) (types.User, error) {
	value, err := bearerToken(header)
	if err != nil {
		return types.User{}, ErrUnauthenticated
	}

	token, err := a.tokens.GetByValue(ctx, value)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrUnauthenticated
		}
		return types.User{}, err
	}

	user, err := a.users.GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrUnauthenticated
		}
		return types.User{}, err
	}

	_, rotated, err := a.expiry.EnsureFresh(ctx, token, user.Role)
	if err != nil {
		return types.User{}, err
	}
	if rotated {
		return types.User{}, ErrUnauthenticated
	}

	return user, nil
}

func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
