package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/curriculo/apiserver/types"
	"github.com/lib/pq"
)

// UserRepository handles persistence for users and their addresses.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
	u.id, u.email, u.name, u.paternal_surname, u.mothers_maiden_name,
	u.about_me, u.birthdate, u.phone, u.gender, u.photo_key, u.subscribed,
	u.status, u.role_id, u.address_id, u.hidden_fields, u.is_superuser,
	u.is_active, u.status_delete, u.last_login, u.date_joined,
	r.id, r.name, r.description, r.is_privileged, r.host`

func scanUser(row interface{ Scan(...any) error }) (types.User, error) {
	var user types.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PaternalSurname,
		&user.MothersMaidenName,
		&user.AboutMe,
		&user.Birthdate,
		&user.Phone,
		&user.Gender,
		&user.PhotoKey,
		&user.Subscribed,
		&user.Status,
		&user.RoleID,
		&user.AddressID,
		pq.Array(&user.HiddenFields),
		&user.IsSuperuser,
		&user.IsActive,
		&user.StatusDelete,
		&user.LastLogin,
		&user.DateJoined,
		&user.Role.ID,
		&user.Role.Name,
		&user.Role.Description,
		&user.Role.IsPrivileged,
		&user.Role.Host,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// GetByEmail resolves a user by email, preferring the live row when a
// soft-deleted duplicate exists. Callers decide what a deleted row means.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.email = $1
		ORDER BY u.status_delete, u.id DESC
		LIMIT 1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// List returns active, non-deleted, non-superuser users.
func (r *UserRepository) List(ctx context.Context, offset, limit int) ([]types.User, int, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.is_active AND NOT u.status_delete AND NOT u.is_superuser
		ORDER BY u.id
		OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []types.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	const countQuery = `
		SELECT COUNT(*)
		FROM users
		WHERE is_active AND NOT status_delete AND NOT is_superuser`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	user.IsActive = true
	user.DateJoined = time.Now()
	if user.HiddenFields == nil {
		user.HiddenFields = []string{}
	}

	const query = `
		INSERT INTO users (email, role_id, subscribed, is_active, date_joined, hidden_fields)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.db.QueryRowContext(
		ctx,
		query,
		user.Email,
		user.RoleID,
		user.Subscribed,
		user.IsActive,
		user.DateJoined,
		pq.Array(user.HiddenFields),
	).Scan(&user.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return types.User{}, ErrConflict
		}
		return types.User{}, err
	}
	return user, nil
}

// UpdateProfile writes the user-editable profile fields.
func (r *UserRepository) UpdateProfile(ctx context.Context, user types.User) error {
	const query = `
		UPDATE users
		SET name = $1,
			paternal_surname = $2,
			mothers_maiden_name = $3,
			about_me = $4,
			birthdate = $5,
			phone = $6,
			gender = $7,
			subscribed = $8,
			status = $9
		WHERE id = $10`
	return r.exec(ctx, query,
		user.Name,
		user.PaternalSurname,
		user.MothersMaidenName,
		user.AboutMe,
		user.Birthdate,
		user.Phone,
		user.Gender,
		user.Subscribed,
		user.Status,
		user.ID,
	)
}

func (r *UserRepository) SetAddress(ctx context.Context, userID, addressID int) error {
	return r.exec(ctx, `UPDATE users SET address_id = $1 WHERE id = $2`, addressID, userID)
}

func (r *UserRepository) SetPhotoKey(ctx context.Context, userID int, key string) error {
	return r.exec(ctx, `UPDATE users SET photo_key = $1 WHERE id = $2`, key, userID)
}

// UpdateLastLogin stamps the login instant. This also invalidates every
// access code derived from the previous last-login value.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID int, at time.Time) error {
	return r.exec(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at, userID)
}

func (r *UserRepository) SetHiddenFields(ctx context.Context, userID int, fields []string) error {
	if fields == nil {
		fields = []string{}
	}
	return r.exec(ctx, `UPDATE users SET hidden_fields = $1 WHERE id = $2`, pq.Array(fields), userID)
}

func (r *UserRepository) SoftDelete(ctx context.Context, userID int) error {
	return r.exec(ctx, `UPDATE users SET status_delete = TRUE WHERE id = $1`, userID)
}

func (r *UserRepository) exec(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
