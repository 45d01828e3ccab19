package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	"github.com/curriculo/apiserver/types"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// TokenRepository is the sole mutator of the tokens table. The table holds
// at most one live token per user; expired tokens are replaced, never
// renewed in place.
type TokenRepository struct {
	db *sql.DB
}

func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Create issues a fresh token for the user. Fails with ErrConflict when a
// live token already exists; callers holding a stale token must Rotate.
func (r *TokenRepository) Create(ctx context.Context, userID int) (types.Token, error) {
	token := types.Token{
		Value:     newTokenValue(),
		UserID:    userID,
		CreatedAt: time.Now(),
	}

	const query = `
		INSERT INTO tokens (value, user_id, created_at)
		VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, token.Value, token.UserID, token.CreatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return types.Token{}, ErrConflict
		}
		return types.Token{}, err
	}
	return token, nil
}

func (r *TokenRepository) GetByValue(ctx context.Context, value string) (types.Token, error) {
	const query = `
		SELECT value, user_id, created_at
		FROM tokens
		WHERE value = $1`
	var token types.Token
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&token.Value,
		&token.UserID,
		&token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Token{}, ErrNotFound
		}
		return types.Token{}, err
	}
	return token, nil
}

func (r *TokenRepository) GetByUserID(ctx context.Context, userID int) (types.Token, error) {
	const query = `
		SELECT value, user_id, created_at
		FROM tokens
		WHERE user_id = $1`
	var token types.Token
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&token.Value,
		&token.UserID,
		&token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Token{}, ErrNotFound
		}
		return types.Token{}, err
	}
	return token, nil
}

// Delete removes a token by value. Idempotent: deleting an already-removed
// token is not an error.
func (r *TokenRepository) Delete(ctx context.Context, value string) error {
	const query = `DELETE FROM tokens WHERE value = $1`
	_, err := r.db.ExecContext(ctx, query, value)
	return err
}

// Rotate atomically replaces the user's token: the delete and insert commit
// together, and the row lock on the user serializes concurrent rotations so
// two racing callers converge on a single surviving token. The stale value
// guards against duplicate rotation: when the live token no longer matches
// it, another caller already rotated and the live token is returned
// unchanged.
func (r *TokenRepository) Rotate(ctx context.Context, userID int, stale string) (types.Token, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Token{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID); err != nil {
		return types.Token{}, err
	}

	var live types.Token
	err = tx.QueryRowContext(ctx, `SELECT value, user_id, created_at FROM tokens WHERE user_id = $1`, userID).
		Scan(&live.Value, &live.UserID, &live.CreatedAt)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return types.Token{}, err
	}
	if err == nil && live.Value != stale {
		if err := tx.Commit(); err != nil {
			return types.Token{}, err
		}
		return live, nil
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM tokens WHERE user_id = $1`, userID); err != nil {
		return types.Token{}, err
	}

	token := types.Token{
		Value:     newTokenValue(),
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	const insert = `
		INSERT INTO tokens (value, user_id, created_at)
		VALUES ($1, $2, $3)`
	if _, err := tx.ExecContext(ctx, insert, token.Value, token.UserID, token.CreatedAt); err != nil {
		return types.Token{}, err
	}

	if err := tx.Commit(); err != nil {
		return types.Token{}, err
	}
	return token, nil
}

// newTokenValue returns 40 hex characters of cryptographic randomness.
func newTokenValue() string {
	var buf [20]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf[:])
}
