package auth

import (
	"context"
	"time"

	"github.com/curriculo/apiserver/types"
)

// TokenStore is the persistence contract the token lifecycle needs. The
// production implementation is store.TokenRepository.
type TokenStore interface {
	Create(ctx context.Context, userID int) (types.Token, error)
	GetByValue(ctx context.Context, value string) (types.Token, error)
	Delete(ctx context.Context, value string) error
	Rotate(ctx context.Context, userID int, stale string) (types.Token, error)
}

// Evaluator decides token liveness and performs lazy rotation. Expiry is
// never swept by a background job: an expired token is replaced the next
// time it is presented, and not before.
type Evaluator struct {
	policy *ExpiryPolicy
	tokens TokenStore
	now    func() time.Time
}

func NewEvaluator(policy *ExpiryPolicy, tokens TokenStore) *Evaluator {
	return &Evaluator{
		policy: policy,
		tokens: tokens,
		now:    time.Now,
	}
}

// Remaining returns the lifetime the token has left under its owner's role
// TTL. Negative once expired.
func (e *Evaluator) Remaining(token types.Token, role types.Role) time.Duration {
	return e.remainingAt(token, role, e.now())
}

// IsExpired reports whether the token has outlived its TTL. Equivalent to
// Remaining < 0 over the same clock sample.
func (e *Evaluator) IsExpired(token types.Token, role types.Role) bool {
	return e.remainingAt(token, role, e.now()) < 0
}

// remainingAt keeps expiry decisions on a single clock sample so a token at
// the TTL boundary cannot flip between checks within one call.
func (e *Evaluator) remainingAt(token types.Token, role types.Role, now time.Time) time.Duration {
	return e.policy.TTLFor(role) - now.Sub(token.CreatedAt)
}

// EnsureFresh replaces the token when it has expired, returning the live
// token and whether a rotation happened. Safe under concurrent duplicate
// invocation for the same token: the store's rotation is keyed on the stale
// value, so duplicates converge on the single replacement.
func (e *Evaluator) EnsureFresh(ctx context.Context, token types.Token, role types.Role) (types.Token, bool, error) {
	if e.remainingAt(token, role, e.now()) >= 0 {
		return token, false, nil
	}
	fresh, err := e.tokens.Rotate(ctx, token.UserID, token.Value)
	if err != nil {
		return types.Token{}, false, err
	}
	return fresh, true, nil
}
