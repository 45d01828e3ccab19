package auth

import (
	"testing"
	"time"

	"github.com/curriculo/apiserver/config"
	"github.com/curriculo/apiserver/types"
)

func TestTTLForSelectsByPrivilege(t *testing.T) {
	policy := NewExpiryPolicy(config.AuthConfig{
		TokenTTL:      24 * time.Hour,
		AdminTokenTTL: time.Hour,
	})

	regular := types.Role{ID: 4, Name: "Padawan"}
	if got := policy.TTLFor(regular); got != 24*time.Hour {
		t.Fatalf("regular role TTL = %v, want %v", got, 24*time.Hour)
	}

	admin := types.Role{ID: 2, Name: "Admin", IsPrivileged: true}
	if got := policy.TTLFor(admin); got != time.Hour {
		t.Fatalf("privileged role TTL = %v, want %v", got, time.Hour)
	}
}

func TestTTLForIgnoresRoleIdentity(t *testing.T) {
	policy := NewExpiryPolicy(config.AuthConfig{
		TokenTTL:      10 * time.Minute,
		AdminTokenTTL: time.Minute,
	})

	// Two distinct privileged roles get the same lifetime; the policy
	// keys on the privilege flag, not the role id.
	superAdmin := types.Role{ID: 1, Name: "SuperAdmin", IsPrivileged: true}
	admin := types.Role{ID: 2, Name: "Admin", IsPrivileged: true}
	if policy.TTLFor(superAdmin) != policy.TTLFor(admin) {
		t.Fatalf("privileged roles should share a TTL")
	}
}
