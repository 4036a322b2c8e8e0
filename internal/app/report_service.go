package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/pulse/internal/apperr"
	"github.com/example/pulse/internal/core/checkin"
	"github.com/example/pulse/internal/core/report"
	"github.com/example/pulse/internal/ports/primary"
	"github.com/example/pulse/internal/ports/secondary"
)

// ReportServiceImpl implements the ReportService interface.
type ReportServiceImpl struct {
	reportRepo  secondary.ReportRepository
	staffRepo   secondary.StaffRepository
	auditWriter secondary.AuditWriter
	opts        ReportOptions
	now         func() time.Time
}

// ReportOptions tunes the ReportService.
type ReportOptions struct {
	Location       *time.Location // defines the calendar day stamped on each report
	StorageTimeout time.Duration  // bound on the storage calls of one operation
}

// NewReportService creates a new ReportService with injected dependencies.
func NewReportService(reportRepo secondary.ReportRepository, staffRepo secondary.StaffRepository, auditWriter secondary.AuditWriter, opts ReportOptions) *ReportServiceImpl {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &ReportServiceImpl{
		reportRepo:  reportRepo,
		staffRepo:   staffRepo,
		auditWriter: auditWriter,
		opts:        opts,
		now:         time.Now,
	}
}

func (s *ReportServiceImpl) actor(ctx context.Context, access primary.Access) (report.ActorContext, error) {
	mine, err := callerStaffID(ctx, s.staffRepo, access.PrincipalID)
	if err != nil {
		return report.ActorContext{}, err
	}
	return report.ActorContext{Access: toRoleAccess(access), CallerStaffID: mine}, nil
}

// SubmitReport creates an unread report.
func (s *ReportServiceImpl) SubmitReport(ctx context.Context, access primary.Access, req primary.SubmitReportRequest) (*primary.Report, error) {
	ctx, cancel := storageContext(ctx, s.opts.StorageTimeout)
	defer cancel()

	direction, err := report.ParseDirection(req.Direction)
	if err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}
	if err := report.ValidateBody(req.Body); err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}

	actor, err := s.actor(ctx, access)
	if err != nil {
		return nil, err
	}

	staffID := req.StaffID
	if staffID == "" && direction == report.FromStaff {
		staffID = actor.CallerStaffID
	}
	if staffID == "" {
		return nil, apperr.Validation("staff id is required")
	}

	guard := report.CanSubmit(report.SubmitContext{ActorContext: actor, Direction: direction, StaffID: staffID})
	if err := deny(guard.Error()); err != nil {
		return nil, err
	}

	if _, err := s.staffRepo.GetByID(ctx, staffID); err != nil {
		return nil, err
	}

	now := s.now()
	record := &secondary.ReportRecord{
		ID:                "RPT-" + uuid.NewString(),
		StaffID:           staffID,
		SenderPrincipalID: access.PrincipalID,
		Body:              strings.TrimSpace(req.Body),
		Direction:         string(direction),
		ReportDate:        checkin.Today(now, s.opts.Location),
		CreatedAt:         now,
	}
	if direction == report.FromManager {
		record.RecipientStaffID = staffID
	}

	if err := s.reportRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	_ = s.auditWriter.LogCreate(ctx, "report", record.ID)

	return s.recordToReport(record), nil
}

// ListUnreadForManager lists unread staff reports across all staff, newest first.
func (s *ReportServiceImpl) ListUnreadForManager(ctx context.Context, access primary.Access) ([]*primary.Report, error) {
	ctx, cancel := storageContext(ctx, s.opts.StorageTimeout)
	defer cancel()

	actor, err := s.actor(ctx, access)
	if err != nil {
		return nil, err
	}
	if err := deny(report.CanReadInbox(actor).Error()); err != nil {
		return nil, err
	}

	records, err := s.reportRepo.ListUnreadFromStaff(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox: %w", err)
	}
	return s.recordsToReports(records), nil
}

// ListForStaff lists reports sent by staffID and manager reports addressed to
// staffID, merged newest first.
func (s *ReportServiceImpl) ListForStaff(ctx context.Context, access primary.Access, staffID string) ([]*primary.Report, error) {
	ctx, cancel := storageContext(ctx, s.opts.StorageTimeout)
	defer cancel()

	actor, err := s.actor(ctx, access)
	if err != nil {
		return nil, err
	}
	if staffID == "" {
		staffID = actor.CallerStaffID
	}
	if err := deny(report.CanListForStaff(actor, staffID).Error()); err != nil {
		return nil, err
	}

	sent, err := s.reportRepo.ListSentByStaff(ctx, staffID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sent reports: %w", err)
	}
	received, err := s.reportRepo.ListAddressedToStaff(ctx, staffID)
	if err != nil {
		return nil, fmt.Errorf("failed to list received reports: %w", err)
	}

	merged := append(sent, received...)
	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].CreatedAt.Equal(merged[j].CreatedAt) {
			return merged[i].CreatedAt.After(merged[j].CreatedAt)
		}
		return merged[i].ID < merged[j].ID
	})
	return s.recordsToReports(merged), nil
}

// MarkRead marks reports read. Every id is checked before any is changed, so
// one unknown or foreign id leaves the whole batch untouched.
func (s *ReportServiceImpl) MarkRead(ctx context.Context, access primary.Access, reportIDs ...string) (int, error) {
	ctx, cancel := storageContext(ctx, s.opts.StorageTimeout)
	defer cancel()

	if len(reportIDs) == 0 {
		return 0, apperr.Validation("at least one report id is required")
	}

	actor, err := s.actor(ctx, access)
	if err != nil {
		return 0, err
	}

	for _, id := range reportIDs {
		record, err := s.reportRepo.GetByID(ctx, id)
		if err != nil {
			return 0, err
		}
		guard := report.CanMarkRead(report.MessageContext{
			ActorContext: actor,
			ReportID:     record.ID,
			Direction:    report.Direction(record.Direction),
			StaffID:      record.StaffID,
		})
		if err := deny(guard.Error()); err != nil {
			return 0, err
		}
	}

	changed := 0
	for _, id := range reportIDs {
		ok, err := s.reportRepo.MarkRead(ctx, id)
		if err != nil {
			return changed, err
		}
		if ok {
			changed++
			_ = s.auditWriter.LogAction(ctx, "report", id, "read")
		}
	}
	return changed, nil
}

// DeleteReport permanently removes a report.
func (s *ReportServiceImpl) DeleteReport(ctx context.Context, access primary.Access, reportID string) error {
	ctx, cancel := storageContext(ctx, s.opts.StorageTimeout)
	defer cancel()

	record, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return err
	}

	actor, err := s.actor(ctx, access)
	if err != nil {
		return err
	}
	guard := report.CanDelete(report.MessageContext{
		ActorContext: actor,
		ReportID:     record.ID,
		Direction:    report.Direction(record.Direction),
		StaffID:      record.StaffID,
	})
	if err := deny(guard.Error()); err != nil {
		return err
	}

	if err := s.reportRepo.Delete(ctx, reportID); err != nil {
		return err
	}

	_ = s.auditWriter.LogDelete(ctx, "report", reportID)
	return nil
}

func (s *ReportServiceImpl) recordsToReports(records []*secondary.ReportRecord) []*primary.Report {
	reports := make([]*primary.Report, len(records))
	for i, r := range records {
		reports[i] = s.recordToReport(r)
	}
	return reports
}

func (s *ReportServiceImpl) recordToReport(r *secondary.ReportRecord) *primary.Report {
	return &primary.Report{
		ID:         r.ID,
		StaffID:    r.StaffID,
		Body:       r.Body,
		Direction:  r.Direction,
		Read:       r.Read,
		ReportDate: r.ReportDate,
		CreatedAt:  r.CreatedAt,
	}
}

// Ensure ReportServiceImpl implements the interface
var _ primary.ReportService = (*ReportServiceImpl)(nil)
