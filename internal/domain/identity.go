package domain

// Role is a permission class assigned to a caller by the identity provider.
type Role string

// Known roles. Any other role string is accepted from the provider but is
// granted nothing.
const (
	RoleAdmin         Role = "admin"
	RoleService       Role = "service"
	RoleCopytrustSite Role = "copytrust_site"
)

// Identity is the caller resolved for a single request. It is never persisted.
type Identity struct {
	ClientID string
	Role     Role
}
