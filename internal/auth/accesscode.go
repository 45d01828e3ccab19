package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/curriculo/apiserver/config"
	"github.com/curriculo/apiserver/types"
	"golang.org/x/crypto/pbkdf2"
)

const (
	codeKeySalt       = "curriculo.auth.CodeIssuer"
	codeKeyIterations = 4096
	codeKeyLength     = 32
	codeMACBytes      = 10
)

// codeEpoch anchors the rolling counter embedded in every access code.
var codeEpoch = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// CodeIssuer mints and verifies one-time login codes. A code is derived
// from the user's id and last-login stamp plus a second counter, so it
// never needs to be stored: logging in moves last-login, which invalidates
// every code issued before it, and the counter bounds the code's lifetime
// independently of any token TTL.
type CodeIssuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewCodeIssuer(cfg config.AuthConfig) *CodeIssuer {
	return &CodeIssuer{
		key: pbkdf2.Key([]byte(cfg.Secret), []byte(codeKeySalt), codeKeyIterations, codeKeyLength, sha256.New),
		ttl: cfg.AccessCodeTTL,
		now: time.Now,
	}
}

// Issue returns the code for the user's current state and the current
// counter value. Reissuing within the same second yields the same code.
func (c *CodeIssuer) Issue(user types.User) string {
	return c.codeAt(user, c.counter(c.now()))
}

// Verify checks a presented code against the user's current state. The MAC
// comparison is constant time in the code length.
func (c *CodeIssuer) Verify(user types.User, code string) bool {
	counterPart, _, ok := strings.Cut(code, "-")
	if !ok {
		return false
	}
	issued, err := strconv.ParseInt(counterPart, 36, 64)
	if err != nil || issued < 0 {
		return false
	}

	now := c.counter(c.now())
	if issued > now || time.Duration(now-issued)*time.Second > c.ttl {
		return false
	}

	expected := c.codeAt(user, issued)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(code)) == 1
}

func (c *CodeIssuer) counter(at time.Time) int64 {
	return int64(at.Sub(codeEpoch) / time.Second)
}

func (c *CodeIssuer) codeAt(user types.User, counter int64) string {
	lastLogin := ""
	if user.LastLogin != nil {
		lastLogin = strconv.FormatInt(user.LastLogin.UnixNano(), 10)
	}
	state := fmt.Sprintf("%d|%s|%d", user.ID, lastLogin, counter)

	mac := hmac.New(sha256.New, c.key)
	mac.Write([]byte(state))
	digest := mac.Sum(nil)

	return strconv.FormatInt(counter, 36) + "-" + hex.EncodeToString(digest[:codeMACBytes])
}
