package services

import (
	"context"
	"errors"
	"strings"

	"github.com/curriculo/apiserver/internal/store"
	"github.com/curriculo/apiserver/types"
)

// RoleRepository defines persistence operations for roles.
type RoleRepository interface {
	GetByID(ctx context.Context, id int) (types.Role, error)
}

var (
	ErrRoleNotFound = errors.New("no existe el rol dado")
	ErrRoleHost     = errors.New("no está autorizado para este rol")
)

// RoleService encapsulates role use-cases.
type RoleService struct {
	repo RoleRepository
}

func NewRoleService(repo RoleRepository) *RoleService {
	return &RoleService{repo: repo}
}

func (s *RoleService) GetByID(ctx context.Context, id int) (types.Role, error) {
	return s.repo.GetByID(ctx, id)
}

// ValidateRoleEmail checks that the email's domain satisfies the role's
// host restriction. Registration-time precondition for every user.
func (s *RoleService) ValidateRoleEmail(ctx context.Context, email string, roleID int) (types.Role, error) {
	role, err := s.repo.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Role{}, ErrRoleNotFound
		}
		return types.Role{}, err
	}

	_, domain, ok := strings.Cut(email, "@")
	if !ok || !role.AllowsHost(domain) {
		return types.Role{}, ErrRoleHost
	}
	return role, nil
}
