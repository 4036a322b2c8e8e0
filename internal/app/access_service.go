package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/example/pulse/internal/apperr"
	"github.com/example/pulse/internal/core/role"
	"github.com/example/pulse/internal/ports/primary"
	"github.com/example/pulse/internal/ports/secondary"
)

// AccessServiceImpl implements the AccessService interface.
type AccessServiceImpl struct {
	roleRepo       secondary.RoleRepository
	permissionRepo secondary.PermissionRepository
	logger         *zap.Logger
}

// NewAccessService creates a new AccessService with injected dependencies.
func NewAccessService(roleRepo secondary.RoleRepository, permissionRepo secondary.PermissionRepository, logger *zap.Logger) *AccessServiceImpl {
	return &AccessServiceImpl{
		roleRepo:       roleRepo,
		permissionRepo: permissionRepo,
		logger:         logger.Named("access"),
	}
}

// Resolve returns the principal's role and delegated permissions, reading storage afresh.
func (s *AccessServiceImpl) Resolve(ctx context.Context, principalID string) primary.Access {
	in := role.ResolveInput{PrincipalID: principalID}

	assigned, found, err := s.roleRepo.GetRole(ctx, principalID)
	if err != nil {
		in.RoleErr = err
	} else if found {
		r := role.Role(assigned)
		in.AssignedRole = &r
	}

	if in.RoleErr == nil && (in.AssignedRole == nil || *in.AssignedRole != role.Owner) {
		canManage, found, err := s.permissionRepo.GetCanManageTeam(ctx, principalID)
		if err != nil {
			in.PermissionErr = err
		} else if found {
			in.CanManageTeam = &canManage
		}
	}

	access, degraded := role.Resolve(in)
	if degraded {
		s.logger.Warn("role lookup failed, closing to staff",
			zap.String("principal_id", principalID),
			zap.NamedError("role_error", in.RoleErr),
			zap.NamedError("permission_error", in.PermissionErr),
		)
	}
	return toPrimaryAccess(access)
}

// Ensure AccessServiceImpl implements the interface
var _ primary.AccessService = (*AccessServiceImpl)(nil)

func toPrimaryAccess(a role.Access) primary.Access {
	return primary.Access{PrincipalID: a.PrincipalID, Role: string(a.Role), CanManageTeam: a.CanManageTeam}
}

func toRoleAccess(a primary.Access) role.Access {
	return role.Access{PrincipalID: a.PrincipalID, Role: role.Role(a.Role), CanManageTeam: a.CanManageTeam}
}

// deny converts a failed guard into an authorization error.
func deny(err error) error {
	if err == nil {
		return nil
	}
	return apperr.Authorization("%s", err.Error())
}

// storageContext bounds the storage calls of one service operation.
// d <= 0 leaves ctx unbounded.
func storageContext(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// callerStaffID returns the staff record linked to principalID, or "" when none is.
func callerStaffID(ctx context.Context, staffRepo secondary.StaffRepository, principalID string) (string, error) {
	if principalID == "" {
		return "", nil
	}
	rec, err := staffRepo.GetByPrincipal(ctx, principalID)
	if apperr.IsNotFound(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}
