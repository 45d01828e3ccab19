package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/curriculo/apiserver/types"
)

// RoleRepository handles persistence for roles.
type RoleRepository struct {
	db *sql.DB
}

func NewRoleRepository(db *sql.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) GetByID(ctx context.Context, id int) (types.Role, error) {
	const query = `
		SELECT id, name, description, is_privileged, host
		FROM roles
		WHERE id = $1 AND NOT status_delete`
	var role types.Role
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&role.ID,
		&role.Name,
		&role.Description,
		&role.IsPrivileged,
		&role.Host,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Role{}, ErrNotFound
		}
		return types.Role{}, err
	}
	return role, nil
}
