package app

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/example/pulse/internal/apperr"
	"github.com/example/pulse/internal/core/role"
	"github.com/example/pulse/internal/ports/primary"
	"github.com/example/pulse/internal/ports/secondary"
)

// RoleAdminServiceImpl implements the RoleAdminService interface.
type RoleAdminServiceImpl struct {
	principalRepo  secondary.PrincipalRepository
	roleRepo       secondary.RoleRepository
	permissionRepo secondary.PermissionRepository
	accessService  primary.AccessService
	auditWriter    secondary.AuditWriter
	logger         *zap.Logger
}

// NewRoleAdminService creates a new RoleAdminService with injected dependencies.
func NewRoleAdminService(
	principalRepo secondary.PrincipalRepository,
	roleRepo secondary.RoleRepository,
	permissionRepo secondary.PermissionRepository,
	accessService primary.AccessService,
	auditWriter secondary.AuditWriter,
	logger *zap.Logger,
) *RoleAdminServiceImpl {
	return &RoleAdminServiceImpl{
		principalRepo:  principalRepo,
		roleRepo:       roleRepo,
		permissionRepo: permissionRepo,
		accessService:  accessService,
		auditWriter:    auditWriter,
		logger:         logger.Named("roles"),
	}
}

// BootstrapOwner makes principalID the owner of an organization that has none.
func (s *RoleAdminServiceImpl) BootstrapOwner(ctx context.Context, principalID string) error {
	if _, err := s.principalRepo.GetByID(ctx, principalID); err != nil {
		return err
	}

	owners, err := s.roleRepo.CountRole(ctx, string(role.Owner))
	if err != nil {
		return fmt.Errorf("failed to count owners: %w", err)
	}
	if owners > 0 {
		return apperr.Conflict("organization already has an owner")
	}

	if err := s.roleRepo.Assign(ctx, principalID, string(role.Owner)); err != nil {
		return err
	}

	_ = s.auditWriter.LogUpdate(ctx, "role", principalID, "role", string(role.Staff), string(role.Owner))
	s.logger.Info("owner bootstrapped", zap.String("principal_id", principalID))
	return nil
}

// AssignRole sets a principal's role.
func (s *RoleAdminServiceImpl) AssignRole(ctx context.Context, access primary.Access, principalID, roleName string) error {
	newRole, err := role.Parse(roleName)
	if err != nil {
		return apperr.Validation("%s", err.Error())
	}
	actor := toRoleAccess(access)
	if err := deny(role.CanAdministerRoles(actor).Error()); err != nil {
		return err
	}
	if newRole == role.Owner {
		return apperr.Validation("the owner role is only granted by bootstrap")
	}
	if principalID == access.PrincipalID {
		return apperr.Authorization("owners cannot change their own role")
	}

	if _, err := s.principalRepo.GetByID(ctx, principalID); err != nil {
		return err
	}

	var holder string
	if newRole.IsSingleton() {
		if holder, err = s.roleRepo.HolderOf(ctx, string(newRole)); err != nil {
			return fmt.Errorf("failed to look up %s holder: %w", newRole, err)
		}
	}
	guard := role.CanAssignRole(role.AssignContext{
		Actor:         actor,
		TargetID:      principalID,
		NewRole:       newRole,
		CurrentHolder: holder,
	})
	if !guard.Allowed {
		return apperr.Conflict("%s", guard.Reason)
	}

	previous, found, err := s.roleRepo.GetRole(ctx, principalID)
	if err != nil {
		return fmt.Errorf("failed to read current role: %w", err)
	}
	if !found {
		previous = string(role.Staff)
	}

	// The singleton index is authoritative; a concurrent assignment surfaces here as a conflict.
	if err := s.roleRepo.Assign(ctx, principalID, string(newRole)); err != nil {
		return err
	}

	_ = s.auditWriter.LogUpdate(ctx, "role", principalID, "role", previous, string(newRole))
	s.logger.Info("role assigned",
		zap.String("principal_id", principalID),
		zap.String("role", string(newRole)),
		zap.String("by", access.PrincipalID),
	)
	return nil
}

// RevokeRole drops a principal back to staff.
func (s *RoleAdminServiceImpl) RevokeRole(ctx context.Context, access primary.Access, principalID string) error {
	if err := deny(role.CanAdministerRoles(toRoleAccess(access)).Error()); err != nil {
		return err
	}
	if principalID == access.PrincipalID {
		return apperr.Authorization("owners cannot change their own role")
	}

	previous, found, err := s.roleRepo.GetRole(ctx, principalID)
	if err != nil {
		return fmt.Errorf("failed to read current role: %w", err)
	}
	if !found {
		return nil
	}

	if err := s.roleRepo.Revoke(ctx, principalID); err != nil {
		return err
	}

	_ = s.auditWriter.LogUpdate(ctx, "role", principalID, "role", previous, string(role.Staff))
	return nil
}

// SetCanManageTeam grants or revokes delegated team management.
func (s *RoleAdminServiceImpl) SetCanManageTeam(ctx context.Context, access primary.Access, principalID string, canManage bool) error {
	if err := deny(role.CanAdministerRoles(toRoleAccess(access)).Error()); err != nil {
		return err
	}
	if _, err := s.principalRepo.GetByID(ctx, principalID); err != nil {
		return err
	}

	previous, _, err := s.permissionRepo.GetCanManageTeam(ctx, principalID)
	if err != nil {
		return fmt.Errorf("failed to read permission: %w", err)
	}

	if err := s.permissionRepo.SetCanManageTeam(ctx, principalID, canManage); err != nil {
		return err
	}

	_ = s.auditWriter.LogUpdate(ctx, "permission", principalID, "can_manage_team",
		strconv.FormatBool(previous), strconv.FormatBool(canManage))
	return nil
}

// ShowAccess resolves another principal's access.
func (s *RoleAdminServiceImpl) ShowAccess(ctx context.Context, access primary.Access, principalID string) (*primary.Access, error) {
	if principalID != access.PrincipalID {
		if err := deny(role.CanViewTeam(toRoleAccess(access)).Error()); err != nil {
			return nil, err
		}
	}
	if _, err := s.principalRepo.GetByID(ctx, principalID); err != nil {
		return nil, err
	}

	resolved := s.accessService.Resolve(ctx, principalID)
	return &resolved, nil
}

// Ensure RoleAdminServiceImpl implements the interface
var _ primary.RoleAdminService = (*RoleAdminServiceImpl)(nil)
