package types

import "time"

// Token is the single live bearer token of a user. The value is an opaque
// random string with no embedded structure; expiry is evaluated lazily from
// CreatedAt against the owner's role TTL. Tokens are never renewed in
// place: an expired or superseded token is deleted and replaced.
type Token struct {
	Value     string    `json:"token" db:"value"`
	UserID    int       `json:"-" db:"user_id"`
	CreatedAt time.Time `json:"-" db:"created_at"`
}
