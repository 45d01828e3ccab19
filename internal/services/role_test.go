package services

import (
	"context"
	"errors"
	"testing"

	"github.com/curriculo/apiserver/internal/store"
	"github.com/curriculo/apiserver/types"
)

type stubRoleRepo struct {
	roles map[int]types.Role
}

func (r *stubRoleRepo) GetByID(ctx context.Context, id int) (types.Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return types.Role{}, store.ErrNotFound
	}
	return role, nil
}

func newRoleService() *RoleService {
	return NewRoleService(&stubRoleRepo{roles: map[int]types.Role{
		3: {ID: 3, Name: "Company", Host: "acme.com"},
		4: {ID: 4, Name: "Padawan", Host: types.HostWildcard},
	}})
}

func TestValidateRoleEmailWildcard(t *testing.T) {
	service := newRoleService()
	role, err := service.ValidateRoleEmail(context.Background(), "ana@anywhere.org", 4)
	if err != nil {
		t.Fatalf("wildcard host rejected: %v", err)
	}
	if role.ID != 4 {
		t.Fatalf("returned role %d, want 4", role.ID)
	}
}

func TestValidateRoleEmailExactHost(t *testing.T) {
	service := newRoleService()
	if _, err := service.ValidateRoleEmail(context.Background(), "hr@acme.com", 3); err != nil {
		t.Fatalf("matching host rejected: %v", err)
	}
	if _, err := service.ValidateRoleEmail(context.Background(), "hr@other.com", 3); !errors.Is(err, ErrRoleHost) {
		t.Fatalf("got %v, want ErrRoleHost", err)
	}
}

func TestValidateRoleEmailUnknownRole(t *testing.T) {
	service := newRoleService()
	if _, err := service.ValidateRoleEmail(context.Background(), "ana@example.com", 42); !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("got %v, want ErrRoleNotFound", err)
	}
}

func TestValidateRoleEmailMalformedEmail(t *testing.T) {
	service := newRoleService()
	if _, err := service.ValidateRoleEmail(context.Background(), "not-an-email", 4); !errors.Is(err, ErrRoleHost) {
		t.Fatalf("got %v, want ErrRoleHost", err)
	}
}
