package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/pulse/internal/apperr"
	"github.com/example/pulse/internal/core/identity"
	"github.com/example/pulse/internal/core/role"
	"github.com/example/pulse/internal/ports/primary"
	"github.com/example/pulse/internal/ports/secondary"
)

// LinkServiceImpl implements the LinkService interface.
type LinkServiceImpl struct {
	staffRepo     secondary.StaffRepository
	principalRepo secondary.PrincipalRepository
	roleRepo      secondary.RoleRepository
	auditWriter   secondary.AuditWriter
	logger        *zap.Logger
}

// NewLinkService creates a new LinkService with injected dependencies.
func NewLinkService(
	staffRepo secondary.StaffRepository,
	principalRepo secondary.PrincipalRepository,
	roleRepo secondary.RoleRepository,
	auditWriter secondary.AuditWriter,
	logger *zap.Logger,
) *LinkServiceImpl {
	return &LinkServiceImpl{
		staffRepo:     staffRepo,
		principalRepo: principalRepo,
		roleRepo:      roleRepo,
		auditWriter:   auditWriter,
		logger:        logger.Named("link"),
	}
}

// Link binds a principal to the single staff record matching its verified email.
// Contention outcomes (multiple matches, linked to someone else, race lost) are
// reported in the result; only storage failures return an error.
func (s *LinkServiceImpl) Link(ctx context.Context, principalID, verifiedEmail string) (*primary.LinkResult, error) {
	if err := identity.ValidateEmail(verifiedEmail); err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}

	in := identity.LinkInput{PrincipalID: principalID}

	assigned, _, err := s.roleRepo.GetRole(ctx, principalID)
	if err != nil {
		return nil, fmt.Errorf("failed to read role: %w", err)
	}
	in.IsOwner = assigned == string(role.Owner)

	if in.CurrentStaffID, err = callerStaffID(ctx, s.staffRepo, principalID); err != nil {
		return nil, fmt.Errorf("failed to read current link: %w", err)
	}

	if !in.IsOwner && in.CurrentStaffID == "" {
		matches, err := s.staffRepo.FindByEmail(ctx, identity.NormalizeEmail(verifiedEmail))
		if err != nil {
			return nil, fmt.Errorf("failed to match staff: %w", err)
		}
		for _, m := range matches {
			in.Matches = append(in.Matches, identity.Candidate{StaffID: m.ID, LinkedPrincipalID: m.LinkedPrincipalID})
		}
	}

	decision := identity.Decide(in)
	if decision.Attempt {
		rows, err := s.staffRepo.LinkIfUnlinked(ctx, decision.StaffID, principalID)
		if err != nil {
			return nil, err
		}
		decision = identity.AfterWrite(decision, rows)
	}

	if decision.Outcome == identity.OutcomeLinked {
		_ = s.auditWriter.LogAction(ctx, "staff", decision.StaffID, "link")
	}

	log := s.logger.Info
	if decision.Outcome.IsConflict() {
		log = s.logger.Warn
	}
	log("link attempt",
		zap.String("principal_id", principalID),
		zap.String("staff_id", decision.StaffID),
		zap.String("outcome", string(decision.Outcome)),
	)

	return &primary.LinkResult{
		PrincipalID: principalID,
		StaffID:     decision.StaffID,
		Outcome:     string(decision.Outcome),
	}, nil
}

// LinkAll attempts Link for every registered principal not yet linked.
// One principal's outcome never stops the others.
func (s *LinkServiceImpl) LinkAll(ctx context.Context, access primary.Access) ([]*primary.LinkResult, error) {
	if err := deny(role.CanManageTeam(toRoleAccess(access)).Error()); err != nil {
		return nil, err
	}

	principals, err := s.principalRepo.ListUnlinked(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list unlinked principals: %w", err)
	}

	results := make([]*primary.LinkResult, 0, len(principals))
	for _, p := range principals {
		result, err := s.Link(ctx, p.ID, p.Email)
		if err != nil {
			s.logger.Warn("link failed", zap.String("principal_id", p.ID), zap.Error(err))
			continue
		}
		results = append(results, result)
	}
	return results, nil
}

// Ensure LinkServiceImpl implements the interface
var _ primary.LinkService = (*LinkServiceImpl)(nil)
