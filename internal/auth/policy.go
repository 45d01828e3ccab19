package auth

import (
	"time"

	"github.com/curriculo/apiserver/config"
	"github.com/curriculo/apiserver/types"
)

// ExpiryPolicy maps a role to its token time-to-live. Privileged roles get
// their own configured lifetime; everyone else shares the default.
type ExpiryPolicy struct {
	tokenTTL      time.Duration
	adminTokenTTL time.Duration
}

func NewExpiryPolicy(cfg config.AuthConfig) *ExpiryPolicy {
	return &ExpiryPolicy{
		tokenTTL:      cfg.TokenTTL,
		adminTokenTTL: cfg.AdminTokenTTL,
	}
}

func (p *ExpiryPolicy) TTLFor(role types.Role) time.Duration {
	if role.IsPrivileged {
		return p.adminTokenTTL
	}
	return p.tokenTTL
}
