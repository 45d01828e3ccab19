package store

import (
	"context"
	"database/sql"
	"time"
)

// SessionRepository manages the framework session table. Sessions are
// written by collaborator web flows; the login flow only purges them.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// PurgeActive deletes every non-expired session belonging to the user.
// Run before rotating a token so stale browser sessions cannot ride on the
// fresh credential.
func (r *SessionRepository) PurgeActive(ctx context.Context, userID int) (int64, error) {
	const query = `DELETE FROM sessions WHERE user_id = $1 AND expire_date >= $2`
	result, err := r.db.ExecContext(ctx, query, userID, time.Now())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
