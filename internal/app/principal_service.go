package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/pulse/internal/apperr"
	"github.com/example/pulse/internal/core/identity"
	"github.com/example/pulse/internal/core/role"
	"github.com/example/pulse/internal/ports/primary"
	"github.com/example/pulse/internal/ports/secondary"
)

// PrincipalServiceImpl implements the PrincipalService interface.
type PrincipalServiceImpl struct {
	principalRepo secondary.PrincipalRepository
	auditWriter   secondary.AuditWriter
}

// NewPrincipalService creates a new PrincipalService with injected dependencies.
func NewPrincipalService(principalRepo secondary.PrincipalRepository, auditWriter secondary.AuditWriter) *PrincipalServiceImpl {
	return &PrincipalServiceImpl{
		principalRepo: principalRepo,
		auditWriter:   auditWriter,
	}
}

// Register records a principal verified by the identity provider.
func (s *PrincipalServiceImpl) Register(ctx context.Context, req primary.RegisterPrincipalRequest) (*primary.Principal, error) {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return nil, apperr.Validation("principal id is required")
	}
	if err := identity.ValidateEmail(req.Email); err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}

	record := &secondary.PrincipalRecord{
		ID:          id,
		Email:       identity.NormalizeEmail(req.Email),
		DisplayName: strings.TrimSpace(req.DisplayName),
	}
	if err := s.principalRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	_ = s.auditWriter.LogCreate(ctx, "principal", id)

	return s.recordToPrincipal(record), nil
}

// Authenticate returns the principal for id, or an authentication error.
func (s *PrincipalServiceImpl) Authenticate(ctx context.Context, principalID string) (*primary.Principal, error) {
	if strings.TrimSpace(principalID) == "" {
		return nil, apperr.Authentication("no principal given. Pass --principal or set PULSE_PRINCIPAL")
	}

	record, err := s.principalRepo.GetByID(ctx, principalID)
	if apperr.IsNotFound(err) {
		return nil, apperr.Authentication("unknown principal %s", principalID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}
	return s.recordToPrincipal(record), nil
}

// ListPrincipals lists registered principals.
func (s *PrincipalServiceImpl) ListPrincipals(ctx context.Context, access primary.Access) ([]*primary.Principal, error) {
	if err := deny(role.CanViewTeam(toRoleAccess(access)).Error()); err != nil {
		return nil, err
	}

	records, err := s.principalRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list principals: %w", err)
	}

	principals := make([]*primary.Principal, len(records))
	for i, r := range records {
		principals[i] = s.recordToPrincipal(r)
	}
	return principals, nil
}

func (s *PrincipalServiceImpl) recordToPrincipal(r *secondary.PrincipalRecord) *primary.Principal {
	return &primary.Principal{
		ID:          r.ID,
		Email:       r.Email,
		DisplayName: r.DisplayName,
	}
}

// Ensure PrincipalServiceImpl implements the interface
var _ primary.PrincipalService = (*PrincipalServiceImpl)(nil)
