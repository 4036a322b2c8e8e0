package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/pulse/internal/apperr"
	"github.com/example/pulse/internal/core/identity"
	"github.com/example/pulse/internal/core/role"
	corestaff "github.com/example/pulse/internal/core/staff"
	"github.com/example/pulse/internal/ports/primary"
	"github.com/example/pulse/internal/ports/secondary"
)

// StaffServiceImpl implements the StaffService interface.
type StaffServiceImpl struct {
	staffRepo   secondary.StaffRepository
	auditWriter secondary.AuditWriter
}

// NewStaffService creates a new StaffService with injected dependencies.
func NewStaffService(staffRepo secondary.StaffRepository, auditWriter secondary.AuditWriter) *StaffServiceImpl {
	return &StaffServiceImpl{
		staffRepo:   staffRepo,
		auditWriter: auditWriter,
	}
}

// CreateStaff creates a new staff record.
func (s *StaffServiceImpl) CreateStaff(ctx context.Context, access primary.Access, req primary.CreateStaffRequest) (*primary.Staff, error) {
	if err := deny(role.CanManageTeam(toRoleAccess(access)).Error()); err != nil {
		return nil, err
	}
	return s.create(ctx, req)
}

func (s *StaffServiceImpl) create(ctx context.Context, req primary.CreateStaffRequest) (*primary.Staff, error) {
	profile := corestaff.Profile{
		Name:       strings.TrimSpace(req.Name),
		Email:      identity.NormalizeEmail(req.Email),
		Title:      strings.TrimSpace(req.Title),
		Department: strings.TrimSpace(req.Department),
		Targets:    req.Targets,
	}
	if err := corestaff.ValidateProfile(profile); err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}

	nextID, err := s.staffRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate staff ID: %w", err)
	}

	record := &secondary.StaffRecord{
		ID:         nextID,
		Name:       profile.Name,
		Email:      profile.Email,
		Title:      profile.Title,
		Department: profile.Department,
		Targets:    profile.Targets,
	}
	if err := s.staffRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	_ = s.auditWriter.LogCreate(ctx, "staff", nextID)

	created, err := s.staffRepo.GetByID(ctx, nextID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created staff: %w", err)
	}
	return s.recordToStaff(created), nil
}

// GetStaff retrieves a staff record.
func (s *StaffServiceImpl) GetStaff(ctx context.Context, access primary.Access, staffID string) (*primary.Staff, error) {
	if !role.CanViewTeam(toRoleAccess(access)).Allowed {
		mine, err := callerStaffID(ctx, s.staffRepo, access.PrincipalID)
		if err != nil {
			return nil, err
		}
		if mine != staffID {
			return nil, apperr.Authorization("principal %s cannot view staff %s", access.PrincipalID, staffID)
		}
	}

	record, err := s.staffRepo.GetByID(ctx, staffID)
	if err != nil {
		return nil, err
	}
	return s.recordToStaff(record), nil
}

// GetMyStaff retrieves the staff record linked to the caller.
func (s *StaffServiceImpl) GetMyStaff(ctx context.Context, access primary.Access) (*primary.Staff, error) {
	record, err := s.staffRepo.GetByPrincipal(ctx, access.PrincipalID)
	if apperr.IsNotFound(err) {
		return nil, apperr.NotFound("principal %s is not linked to a staff record. Link first with: pulse link", access.PrincipalID)
	}
	if err != nil {
		return nil, err
	}
	return s.recordToStaff(record), nil
}

// ListStaff lists staff records.
func (s *StaffServiceImpl) ListStaff(ctx context.Context, access primary.Access, filters primary.StaffFilters) ([]*primary.Staff, error) {
	if err := deny(role.CanViewTeam(toRoleAccess(access)).Error()); err != nil {
		return nil, err
	}

	records, err := s.staffRepo.List(ctx, secondary.StaffFilters{
		Department: filters.Department,
		LinkedOnly: filters.LinkedOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}

	staff := make([]*primary.Staff, len(records))
	for i, r := range records {
		staff[i] = s.recordToStaff(r)
	}
	return staff, nil
}

// DeleteStaff deletes a staff record and, by cascade, its check-ins, analyses,
// reports and reminder logs.
func (s *StaffServiceImpl) DeleteStaff(ctx context.Context, access primary.Access, staffID string) error {
	if err := deny(role.CanManageTeam(toRoleAccess(access)).Error()); err != nil {
		return err
	}

	if err := s.staffRepo.Delete(ctx, staffID); err != nil {
		return err
	}

	_ = s.auditWriter.LogDelete(ctx, "staff", staffID)
	return nil
}

// ImportStaff creates staff records in bulk. Entries whose email is already on
// file are skipped; the first invalid entry aborts the import.
func (s *StaffServiceImpl) ImportStaff(ctx context.Context, access primary.Access, reqs []primary.CreateStaffRequest) (*primary.ImportStaffResponse, error) {
	if err := deny(role.CanManageTeam(toRoleAccess(access)).Error()); err != nil {
		return nil, err
	}

	for i, req := range reqs {
		profile := corestaff.Profile{Name: req.Name, Email: req.Email, Targets: req.Targets}
		if err := corestaff.ValidateProfile(profile); err != nil {
			return nil, apperr.Validation("roster entry %d: %s", i+1, err.Error())
		}
	}

	resp := &primary.ImportStaffResponse{}
	seen := make(map[string]bool)
	for _, req := range reqs {
		email := identity.NormalizeEmail(req.Email)
		if email != "" {
			if seen[email] {
				resp.Skipped = append(resp.Skipped, email)
				continue
			}
			seen[email] = true

			existing, err := s.staffRepo.FindByEmail(ctx, email)
			if err != nil {
				return resp, fmt.Errorf("failed to check %s: %w", email, err)
			}
			if len(existing) > 0 {
				resp.Skipped = append(resp.Skipped, email)
				continue
			}
		}

		created, err := s.create(ctx, req)
		if err != nil {
			return resp, err
		}
		resp.Created = append(resp.Created, created)
	}
	return resp, nil
}

func (s *StaffServiceImpl) recordToStaff(r *secondary.StaffRecord) *primary.Staff {
	return &primary.Staff{
		ID:                r.ID,
		Name:              r.Name,
		Email:             r.Email,
		Title:             r.Title,
		Department:        r.Department,
		Targets:           r.Targets,
		LinkedPrincipalID: r.LinkedPrincipalID,
		CreatedAt:         r.CreatedAt,
	}
}

// Ensure StaffServiceImpl implements the interface
var _ primary.StaffService = (*StaffServiceImpl)(nil)
