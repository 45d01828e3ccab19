package types

// HostWildcard allows a role to register under any email domain.
const HostWildcard = "*"

// Role is a coarse authorization tier. Host restricts which email domain
// may register under the role: either the wildcard or one exact domain.
type Role struct {
	ID           int    `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	Description  string `json:"description" db:"description"`
	IsPrivileged bool   `json:"-" db:"is_privileged"`
	Host         string `json:"-" db:"host"`
	StatusDelete bool   `json:"-" db:"status_delete"`
}

// AllowsHost reports whether an email domain satisfies the role's host
// restriction.
func (r Role) AllowsHost(domain string) bool {
	return r.Host == HostWildcard || r.Host == domain
}
