// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which callers drive the application.
package primary

import "context"

// Access is the resolved authorization of one principal for one request.
// It is passed explicitly into every service call and never cached.
type Access struct {
	PrincipalID   string
	Role          string // 'owner', 'hr', 'executive_assistant', 'staff'
	CanManageTeam bool
}

// AccessService defines the primary port for role and permission resolution.
type AccessService interface {
	// Resolve returns the principal's role and delegated permissions.
	// Lookup failures close to staff with no permissions; Resolve never errors.
	Resolve(ctx context.Context, principalID string) Access
}

// PrincipalService defines the primary port for the principal registry.
type PrincipalService interface {
	// Register records a principal as verified by the external identity provider.
	Register(ctx context.Context, req RegisterPrincipalRequest) (*Principal, error)

	// Authenticate returns the principal for id, or an authentication error.
	Authenticate(ctx context.Context, principalID string) (*Principal, error)

	// ListPrincipals lists registered principals (team viewers only).
	ListPrincipals(ctx context.Context, access Access) ([]*Principal, error)
}

// RegisterPrincipalRequest contains parameters for registering a principal.
type RegisterPrincipalRequest struct {
	ID          string
	Email       string
	DisplayName string
}

// Principal represents an authenticated identity at the port boundary.
type Principal struct {
	ID          string
	Email       string
	DisplayName string
}

// RoleAdminService defines the primary port for owner-only role administration.
type RoleAdminService interface {
	// BootstrapOwner makes principalID the owner when the organization has none.
	BootstrapOwner(ctx context.Context, principalID string) error

	// AssignRole sets a principal's role. hr and executive_assistant are singletons.
	AssignRole(ctx context.Context, access Access, principalID, role string) error

	// RevokeRole drops a principal back to staff.
	RevokeRole(ctx context.Context, access Access, principalID string) error

	// SetCanManageTeam grants or revokes delegated team management.
	SetCanManageTeam(ctx context.Context, access Access, principalID string, canManage bool) error

	// ShowAccess resolves another principal's access (team viewers only).
	ShowAccess(ctx context.Context, access Access, principalID string) (*Access, error)
}
