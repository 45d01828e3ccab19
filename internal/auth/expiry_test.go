package auth

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/curriculo/apiserver/config"
	"github.com/curriculo/apiserver/internal/store"
	"github.com/curriculo/apiserver/types"
)

// memoryTokenStore mimics the database repository: one token per user,
// rotation conditional on the stale value.
type memoryTokenStore struct {
	mu      sync.Mutex
	byUser  map[int]types.Token
	seq     int
	rotates int
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{byUser: make(map[int]types.Token)}
}

func (s *memoryTokenStore) Create(ctx context.Context, userID int) (types.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byUser[userID]; ok {
		return types.Token{}, store.ErrConflict
	}
	token := s.mint(userID)
	s.byUser[userID] = token
	return token, nil
}

func (s *memoryTokenStore) GetByValue(ctx context.Context, value string) (types.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, token := range s.byUser {
		if token.Value == value {
			return token, nil
		}
	}
	return types.Token{}, store.ErrNotFound
}

func (s *memoryTokenStore) GetByUserID(ctx context.Context, userID int) (types.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.byUser[userID]
	if !ok {
		return types.Token{}, store.ErrNotFound
	}
	return token, nil
}

func (s *memoryTokenStore) Delete(ctx context.Context, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for userID, token := range s.byUser {
		if token.Value == value {
			delete(s.byUser, userID)
			return nil
		}
	}
	return nil
}

func (s *memoryTokenStore) Rotate(ctx context.Context, userID int, stale string) (types.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if live, ok := s.byUser[userID]; ok && live.Value != stale {
		return live, nil
	}
	token := s.mint(userID)
	s.byUser[userID] = token
	s.rotates++
	return token, nil
}

func (s *memoryTokenStore) mint(userID int) types.Token {
	s.seq++
	return types.Token{
		Value:     fmt.Sprintf("token-%d-%d", userID, s.seq),
		UserID:    userID,
		CreatedAt: time.Now(),
	}
}

func newTestEvaluator(tokens TokenStore, at time.Time) *Evaluator {
	evaluator := NewEvaluator(NewExpiryPolicy(config.AuthConfig{
		TokenTTL:      6 * time.Second,
		AdminTokenTTL: 3 * time.Second,
	}), tokens)
	evaluator.now = func() time.Time { return at }
	return evaluator
}

func TestRemainingAndIsExpiredAgree(t *testing.T) {
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	token := types.Token{Value: "t", UserID: 1, CreatedAt: base}
	role := types.Role{ID: 4, Name: "Padawan"}

	for _, elapsed := range []time.Duration{
		0, time.Second, 6 * time.Second, 6*time.Second + time.Nanosecond, time.Minute,
	} {
		evaluator := newTestEvaluator(newMemoryTokenStore(), base.Add(elapsed))
		remaining := evaluator.Remaining(token, role)
		expired := evaluator.IsExpired(token, role)
		if (remaining < 0) != expired {
			t.Fatalf("elapsed %v: Remaining=%v but IsExpired=%v", elapsed, remaining, expired)
		}
	}
}

func TestTokenExpiresExactlyAtTTL(t *testing.T) {
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	token := types.Token{Value: "t", UserID: 1, CreatedAt: base}
	role := types.Role{ID: 4, Name: "Padawan"}

	// Remaining 0 means still live: expiry is strictly after the TTL.
	at := newTestEvaluator(newMemoryTokenStore(), base.Add(6*time.Second))
	if at.IsExpired(token, role) {
		t.Fatalf("token at exactly TTL should not be expired")
	}
	past := newTestEvaluator(newMemoryTokenStore(), base.Add(6*time.Second+time.Millisecond))
	if !past.IsExpired(token, role) {
		t.Fatalf("token past TTL should be expired")
	}
}

func TestPrivilegedRoleExpiresSooner(t *testing.T) {
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	token := types.Token{Value: "t", UserID: 1, CreatedAt: base}
	evaluator := newTestEvaluator(newMemoryTokenStore(), base.Add(4*time.Second))

	admin := types.Role{ID: 2, Name: "Admin", IsPrivileged: true}
	regular := types.Role{ID: 4, Name: "Padawan"}
	if !evaluator.IsExpired(token, admin) {
		t.Fatalf("admin token should expire after 3s")
	}
	if evaluator.IsExpired(token, regular) {
		t.Fatalf("regular token should survive 4s of a 6s TTL")
	}
}

func TestEnsureFreshKeepsLiveToken(t *testing.T) {
	tokens := newMemoryTokenStore()
	token, err := tokens.Create(context.Background(), 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	evaluator := newTestEvaluator(tokens, token.CreatedAt.Add(time.Second))
	got, rotated, err := evaluator.EnsureFresh(context.Background(), token, types.Role{ID: 4})
	if err != nil {
		t.Fatalf("ensure fresh: %v", err)
	}
	if rotated {
		t.Fatalf("live token should not rotate")
	}
	if got.Value != token.Value {
		t.Fatalf("live token value changed: %q -> %q", token.Value, got.Value)
	}
	if tokens.rotates != 0 {
		t.Fatalf("store rotated %d times, want 0", tokens.rotates)
	}
}

func TestEnsureFreshRotatesExpiredToken(t *testing.T) {
	tokens := newMemoryTokenStore()
	token, err := tokens.Create(context.Background(), 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	evaluator := newTestEvaluator(tokens, token.CreatedAt.Add(time.Minute))
	fresh, rotated, err := evaluator.EnsureFresh(context.Background(), token, types.Role{ID: 4})
	if err != nil {
		t.Fatalf("ensure fresh: %v", err)
	}
	if !rotated {
		t.Fatalf("expired token should rotate")
	}
	if fresh.Value == token.Value {
		t.Fatalf("rotation must mint a new value")
	}

	// Presenting the old value again does not rotate a second time; the
	// store sees the live token no longer matches the stale value.
	again, rotated, err := evaluator.EnsureFresh(context.Background(), token, types.Role{ID: 4})
	if err != nil {
		t.Fatalf("ensure fresh again: %v", err)
	}
	if !rotated {
		t.Fatalf("stale token is still reported as rotated")
	}
	if again.Value != fresh.Value {
		t.Fatalf("duplicate rotation minted a second token: %q vs %q", again.Value, fresh.Value)
	}
	if tokens.rotates != 1 {
		t.Fatalf("store rotated %d times, want 1", tokens.rotates)
	}
}

func TestConcurrentExpiredValidationsConverge(t *testing.T) {
	tokens := newMemoryTokenStore()
	token, err := tokens.Create(context.Background(), 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	evaluator := newTestEvaluator(tokens, token.CreatedAt.Add(time.Minute))

	const callers = 16
	results := make([]types.Token, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			fresh, _, err := evaluator.EnsureFresh(context.Background(), token, types.Role{ID: 4})
			if err != nil {
				t.Errorf("ensure fresh: %v", err)
				return
			}
			results[i] = fresh
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		if results[i].Value != results[0].Value {
			t.Fatalf("callers diverged: %q vs %q", results[i].Value, results[0].Value)
		}
	}
	if tokens.rotates != 1 {
		t.Fatalf("store rotated %d times, want exactly 1", tokens.rotates)
	}
}
