package app

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/example/pulse/internal/apperr"
)

// failingRoleRepository implements secondary.RoleRepository and fails every read.
type failingRoleRepository struct{}

func (failingRoleRepository) GetRole(ctx context.Context, principalID string) (string, bool, error) {
	return "", false, errors.New("database is locked")
}
func (failingRoleRepository) Assign(ctx context.Context, principalID, role string) error { return nil }
func (failingRoleRepository) Revoke(ctx context.Context, principalID string) error       { return nil }
func (failingRoleRepository) HolderOf(ctx context.Context, role string) (string, error) {
	return "", nil
}
func (failingRoleRepository) CountRole(ctx context.Context, role string) (int, error) { return 0, nil }

// ============================================================================
// Resolve Tests
// ============================================================================

func TestResolve_MissingRoleIsStaff(t *testing.T) {
	h := newHarness(t)
	h.register(t, "auth|new", "new@example.com")

	access := h.access.Resolve(context.Background(), "auth|new")

	if access.Role != "staff" || access.CanManageTeam {
		t.Errorf("expected staff without team management, got %+v", access)
	}
}

func TestResolve_OwnerAlwaysManages(t *testing.T) {
	h := newHarness(t)
	owner := h.owner(t, "auth|owner")

	if owner.Role != "owner" || !owner.CanManageTeam {
		t.Errorf("expected owner with team management, got %+v", owner)
	}

	// An explicit false permission row does not demote an owner.
	if err := h.permissionRepo.SetCanManageTeam(context.Background(), "auth|owner", false); err != nil {
		t.Fatalf("set permission: %v", err)
	}
	if again := h.access.Resolve(context.Background(), "auth|owner"); !again.CanManageTeam {
		t.Error("owner lost team management")
	}
}

func TestResolve_DelegatedManager(t *testing.T) {
	h := newHarness(t)
	owner := h.owner(t, "auth|owner")
	h.register(t, "auth|lead", "lead@example.com")
	ctx := context.Background()

	if err := h.roles.SetCanManageTeam(ctx, owner, "auth|lead", true); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if access := h.access.Resolve(ctx, "auth|lead"); access.Role != "staff" || !access.CanManageTeam {
		t.Errorf("expected delegated staff manager, got %+v", access)
	}

	if err := h.roles.SetCanManageTeam(ctx, owner, "auth|lead", false); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if access := h.access.Resolve(ctx, "auth|lead"); access.CanManageTeam {
		t.Error("revoked permission still effective")
	}
}

func TestResolve_LookupFailureClosesToStaff(t *testing.T) {
	h := newHarness(t)
	core, logs := observer.New(zapcore.WarnLevel)
	svc := NewAccessService(failingRoleRepository{}, h.permissionRepo, zap.New(core))

	access := svc.Resolve(context.Background(), "auth|owner")

	if access.Role != "staff" || access.CanManageTeam {
		t.Errorf("expected fail-closed staff access, got %+v", access)
	}
	if logs.Len() != 1 {
		t.Errorf("expected one warning, got %d", logs.Len())
	}
}

// ============================================================================
// RoleAdmin Tests
// ============================================================================

func TestBootstrapOwner_OnlyOnce(t *testing.T) {
	h := newHarness(t)
	h.owner(t, "auth|owner")
	h.register(t, "auth|other", "other@example.com")

	err := h.roles.BootstrapOwner(context.Background(), "auth|other")
	if !apperr.IsConflict(err) {
		t.Errorf("expected conflict for second owner, got %v", err)
	}
}

func TestAssignRole_SingletonRoles(t *testing.T) {
	h := newHarness(t)
	owner := h.owner(t, "auth|owner")
	h.register(t, "auth|hr1", "hr1@example.com")
	h.register(t, "auth|hr2", "hr2@example.com")
	ctx := context.Background()

	if err := h.roles.AssignRole(ctx, owner, "auth|hr1", "hr"); err != nil {
		t.Fatalf("first hr: %v", err)
	}
	if err := h.roles.AssignRole(ctx, owner, "auth|hr2", "hr"); !apperr.IsConflict(err) {
		t.Errorf("expected conflict for second hr, got %v", err)
	}
	// Re-assigning to the current holder is a no-op, not a conflict.
	if err := h.roles.AssignRole(ctx, owner, "auth|hr1", "hr"); err != nil {
		t.Errorf("reassign to holder: %v", err)
	}

	hr := h.access.Resolve(ctx, "auth|hr1")
	if hr.Role != "hr" || hr.CanManageTeam {
		t.Errorf("hr access = %+v", hr)
	}

	if err := h.roles.RevokeRole(ctx, owner, "auth|hr1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := h.roles.AssignRole(ctx, owner, "auth|hr2", "hr"); err != nil {
		t.Errorf("hr after revoke: %v", err)
	}
}

func TestAssignRole_Guards(t *testing.T) {
	h := newHarness(t)
	owner := h.owner(t, "auth|owner")
	h.register(t, "auth|staff", "staff@example.com")
	staff := h.access.Resolve(context.Background(), "auth|staff")
	ctx := context.Background()

	tests := []struct {
		name   string
		call   func() error
		wantFn func(error) bool
	}{
		{"staff cannot assign", func() error { return h.roles.AssignRole(ctx, staff, "auth|staff", "hr") }, apperr.IsAuthorization},
		{"unknown role", func() error { return h.roles.AssignRole(ctx, owner, "auth|staff", "ceo") }, apperr.IsValidation},
		{"owner not assignable", func() error { return h.roles.AssignRole(ctx, owner, "auth|staff", "owner") }, apperr.IsValidation},
		{"owner cannot demote self", func() error { return h.roles.AssignRole(ctx, owner, "auth|owner", "staff") }, apperr.IsAuthorization},
		{"unknown principal", func() error { return h.roles.AssignRole(ctx, owner, "auth|ghost", "staff") }, apperr.IsNotFound},
		{"staff cannot grant", func() error { return h.roles.SetCanManageTeam(ctx, staff, "auth|staff", true) }, apperr.IsAuthorization},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !tt.wantFn(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestShowAccess(t *testing.T) {
	h := newHarness(t)
	owner := h.owner(t, "auth|owner")
	h.register(t, "auth|a", "a@example.com")
	h.register(t, "auth|b", "b@example.com")
	a := h.access.Resolve(context.Background(), "auth|a")
	ctx := context.Background()

	got, err := h.roles.ShowAccess(ctx, owner, "auth|a")
	if err != nil || got.Role != "staff" {
		t.Errorf("owner ShowAccess = %+v, %v", got, err)
	}
	if _, err := h.roles.ShowAccess(ctx, a, "auth|a"); err != nil {
		t.Errorf("self ShowAccess: %v", err)
	}
	if _, err := h.roles.ShowAccess(ctx, a, "auth|b"); !apperr.IsAuthorization(err) {
		t.Errorf("staff viewing other = %v, want authorization", err)
	}
}

// ============================================================================
// Principal Tests
// ============================================================================

func TestAuthenticate(t *testing.T) {
	h := newHarness(t)
	h.register(t, "auth|a", "A@Example.com")
	ctx := context.Background()

	p, err := h.principals.Authenticate(ctx, "auth|a")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if p.Email != "a@example.com" {
		t.Errorf("email not normalized: %q", p.Email)
	}

	if _, err := h.principals.Authenticate(ctx, ""); !apperr.IsAuthentication(err) {
		t.Errorf("empty principal = %v", err)
	}
	if _, err := h.principals.Authenticate(ctx, "auth|ghost"); !apperr.IsAuthentication(err) {
		t.Errorf("unknown principal = %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.principals.Register(ctx, primaryRegister("", "a@example.com")); !apperr.IsValidation(err) {
		t.Errorf("missing id = %v", err)
	}
	if _, err := h.principals.Register(ctx, primaryRegister("auth|a", "not-an-email")); !apperr.IsValidation(err) {
		t.Errorf("bad email = %v", err)
	}
	h.register(t, "auth|a", "a@example.com")
	if _, err := h.principals.Register(ctx, primaryRegister("auth|a", "a@example.com")); !apperr.IsConflict(err) {
		t.Errorf("duplicate = %v", err)
	}
}
