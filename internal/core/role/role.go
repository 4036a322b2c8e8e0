// Package role contains the pure business logic for role and permission resolution.
// This is part of the Functional Core - no I/O, only pure functions.
package role

import "fmt"

// Role is an organization-level role held by a principal.
type Role string

const (
	Owner              Role = "owner"
	HR                 Role = "hr"
	ExecutiveAssistant Role = "executive_assistant"
	Staff              Role = "staff"
)

// Parse validates a role string.
func Parse(s string) (Role, error) {
	switch r := Role(s); r {
	case Owner, HR, ExecutiveAssistant, Staff:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q (want owner, hr, executive_assistant, or staff)", s)
}

// IsSingleton reports whether at most one principal may hold r.
func (r Role) IsSingleton() bool {
	return r == HR || r == ExecutiveAssistant
}

// Access is the resolved authorization for one principal, valid for one request.
type Access struct {
	PrincipalID   string
	Role          Role
	CanManageTeam bool
}

// ResolveInput holds pre-fetched lookups for Resolve.
// A nil pointer means "no row"; a non-nil error means the lookup failed.
type ResolveInput struct {
	PrincipalID   string
	AssignedRole  *Role
	RoleErr       error
	CanManageTeam *bool
	PermissionErr error
}

// Resolve computes Access from stored role and permission lookups.
// A missing role means staff and owners always manage. Any lookup error
// closes to staff with no permissions; the second return reports that fallback.
func Resolve(in ResolveInput) (Access, bool) {
	if in.RoleErr != nil {
		return Access{PrincipalID: in.PrincipalID, Role: Staff}, true
	}

	r := Staff
	if in.AssignedRole != nil {
		r = *in.AssignedRole
	}
	if r == Owner {
		return Access{PrincipalID: in.PrincipalID, Role: Owner, CanManageTeam: true}, false
	}

	if in.PermissionErr != nil {
		return Access{PrincipalID: in.PrincipalID, Role: Staff}, true
	}
	manage := in.CanManageTeam != nil && *in.CanManageTeam
	return Access{PrincipalID: in.PrincipalID, Role: r, CanManageTeam: manage}, false
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string // Human-readable reason (populated when not allowed)
}

// Error returns the guard result as an error if not allowed, nil otherwise.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

func deny(format string, args ...any) GuardResult {
	return GuardResult{Allowed: false, Reason: fmt.Sprintf(format, args...)}
}

// CanManageTeam evaluates whether a principal may act on other staff records.
func CanManageTeam(a Access) GuardResult {
	if a.CanManageTeam {
		return GuardResult{Allowed: true}
	}
	return deny("principal %s (role %s) cannot manage the team", a.PrincipalID, a.Role)
}

// CanViewTeam evaluates whether a principal may read team-wide data.
// Rule: managers, hr, and executive assistants may view.
func CanViewTeam(a Access) GuardResult {
	if a.CanManageTeam || a.Role == HR || a.Role == ExecutiveAssistant {
		return GuardResult{Allowed: true}
	}
	return deny("principal %s (role %s) cannot view team data", a.PrincipalID, a.Role)
}

// CanAdministerRoles evaluates whether a principal may assign roles and permissions.
// Rule: only owners.
func CanAdministerRoles(a Access) GuardResult {
	if a.Role == Owner {
		return GuardResult{Allowed: true}
	}
	return deny("only owners can administer roles (principal %s is %s)", a.PrincipalID, a.Role)
}

// AssignContext provides context for role assignment guards.
type AssignContext struct {
	Actor         Access
	TargetID      string
	NewRole       Role
	CurrentHolder string // principal currently holding NewRole when it is a singleton, "" if none
}

// CanAssignRole evaluates whether NewRole may be given to TargetID.
// Rule: owners only; singleton roles must be free or already held by the target.
func CanAssignRole(ctx AssignContext) GuardResult {
	if r := CanAdministerRoles(ctx.Actor); !r.Allowed {
		return r
	}
	if ctx.NewRole.IsSingleton() && ctx.CurrentHolder != "" && ctx.CurrentHolder != ctx.TargetID {
		return deny("role %s is already held by %s. Reassign it first", ctx.NewRole, ctx.CurrentHolder)
	}
	return GuardResult{Allowed: true}
}
