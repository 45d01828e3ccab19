package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/curriculo/apiserver/config"
	"github.com/curriculo/apiserver/types"
)

func newTestCodeIssuer(at time.Time) *CodeIssuer {
	issuer := NewCodeIssuer(config.AuthConfig{
		Secret:        "test-secret",
		AccessCodeTTL: 15 * time.Minute,
	})
	issuer.now = func() time.Time { return at }
	return issuer
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	issuer := newTestCodeIssuer(now)
	user := types.User{ID: 7, Email: "ana@example.com"}

	code := issuer.Issue(user)
	if !issuer.Verify(user, code) {
		t.Fatalf("freshly issued code should verify")
	}
}

func TestCodeBoundToUser(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	issuer := newTestCodeIssuer(now)

	code := issuer.Issue(types.User{ID: 7})
	if issuer.Verify(types.User{ID: 8}, code) {
		t.Fatalf("code for one user must not verify for another")
	}
}

func TestLoginInvalidatesOlderCodes(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	issuer := newTestCodeIssuer(now)

	user := types.User{ID: 7}
	code := issuer.Issue(user)

	loggedIn := now.Add(time.Second)
	user.LastLogin = &loggedIn
	if issuer.Verify(user, code) {
		t.Fatalf("code issued before last-login change should be dead")
	}
}

func TestCodeExpiresAfterTTL(t *testing.T) {
	issued := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	issuer := newTestCodeIssuer(issued)
	user := types.User{ID: 7}
	code := issuer.Issue(user)

	issuer.now = func() time.Time { return issued.Add(15*time.Minute + time.Second) }
	if issuer.Verify(user, code) {
		t.Fatalf("code older than its TTL should not verify")
	}

	issuer.now = func() time.Time { return issued.Add(14 * time.Minute) }
	if !issuer.Verify(user, code) {
		t.Fatalf("code within its TTL should verify")
	}
}

func TestCodeFromTheFutureRejected(t *testing.T) {
	issued := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	issuer := newTestCodeIssuer(issued)
	user := types.User{ID: 7}
	code := issuer.Issue(user)

	issuer.now = func() time.Time { return issued.Add(-time.Minute) }
	if issuer.Verify(user, code) {
		t.Fatalf("code with a counter ahead of the clock should not verify")
	}
}

func TestVerifyRejectsMalformedCodes(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	issuer := newTestCodeIssuer(now)
	user := types.User{ID: 7}

	for _, code := range []string{"", "nodash", "-abc", "!!-abc", "zz-"} {
		if issuer.Verify(user, code) {
			t.Fatalf("malformed code %q verified", code)
		}
	}
}

func TestCodeShapeIsCounterDashMAC(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	issuer := newTestCodeIssuer(now)

	code := issuer.Issue(types.User{ID: 7})
	counter, mac, ok := strings.Cut(code, "-")
	if !ok || counter == "" {
		t.Fatalf("code %q missing counter part", code)
	}
	if len(mac) != codeMACBytes*2 {
		t.Fatalf("mac part is %d hex chars, want %d", len(mac), codeMACBytes*2)
	}
}

func TestReissueWithinSameSecondIsStable(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	issuer := newTestCodeIssuer(now)
	user := types.User{ID: 7}

	if issuer.Issue(user) != issuer.Issue(user) {
		t.Fatalf("same state and counter should yield the same code")
	}
}
