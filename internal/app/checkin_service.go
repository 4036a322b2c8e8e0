package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/pulse/internal/apperr"
	"github.com/example/pulse/internal/core/checkin"
	"github.com/example/pulse/internal/core/role"
	"github.com/example/pulse/internal/ports/primary"
	"github.com/example/pulse/internal/ports/secondary"
)

// CheckInOptions tunes the CheckInService.
type CheckInOptions struct {
	Location        *time.Location // organization timezone defining "today"
	AnalysisTimeout time.Duration  // bound on the post-commit analysis
}

// CheckInServiceImpl implements the CheckInService interface.
type CheckInServiceImpl struct {
	checkInRepo     secondary.CheckInRepository
	analysisRepo    secondary.AnalysisRepository
	staffRepo       secondary.StaffRepository
	analysisService primary.AnalysisService
	auditWriter     secondary.AuditWriter
	opts            CheckInOptions
	logger          *zap.Logger
	now             func() time.Time
}

// NewCheckInService creates a new CheckInService with injected dependencies.
func NewCheckInService(
	checkInRepo secondary.CheckInRepository,
	analysisRepo secondary.AnalysisRepository,
	staffRepo secondary.StaffRepository,
	analysisService primary.AnalysisService,
	auditWriter secondary.AuditWriter,
	opts CheckInOptions,
	logger *zap.Logger,
) *CheckInServiceImpl {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &CheckInServiceImpl{
		checkInRepo:     checkInRepo,
		analysisRepo:    analysisRepo,
		staffRepo:       staffRepo,
		analysisService: analysisService,
		auditWriter:     auditWriter,
		opts:            opts,
		logger:          logger.Named("checkin"),
		now:             time.Now,
	}
}

// SubmitCheckIn upserts the check-in for (staff, date), then analyzes it.
// The analysis runs after the write commits and is detached from the caller's
// cancellation; its failure leaves the check-in pending, not rejected.
func (s *CheckInServiceImpl) SubmitCheckIn(ctx context.Context, access primary.Access, req primary.SubmitCheckInRequest) (*primary.SubmitCheckInResponse, error) {
	mine, err := callerStaffID(ctx, s.staffRepo, access.PrincipalID)
	if err != nil {
		return nil, err
	}

	sub := checkin.Submission{StaffID: req.StaffID, Metrics: req.Metrics, Notes: req.Notes, Date: req.Date}
	if sub.StaffID == "" {
		sub.StaffID = mine
	}
	if err := checkin.Validate(sub); err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}

	guard := checkin.CanSubmit(checkin.OwnershipContext{
		Access:        toRoleAccess(access),
		StaffID:       sub.StaffID,
		CallerStaffID: mine,
	})
	if err := deny(guard.Error()); err != nil {
		return nil, err
	}

	if _, err := s.staffRepo.GetByID(ctx, sub.StaffID); err != nil {
		return nil, err
	}

	now := s.now()
	date := checkin.Today(now, s.opts.Location)
	if sub.Date != "" {
		date, _ = checkin.ParseDate(sub.Date)
	}

	stored, created, err := s.checkInRepo.Upsert(ctx, &secondary.CheckInRecord{
		ID:          "CHK-" + uuid.NewString(),
		StaffID:     sub.StaffID,
		Date:        date,
		Metrics:     sub.Metrics,
		Notes:       sub.Notes,
		SubmittedAt: now,
	})
	if err != nil {
		return nil, err
	}

	if created {
		_ = s.auditWriter.LogCreate(ctx, "check_in", stored.ID)
	} else {
		_ = s.auditWriter.LogUpdate(ctx, "check_in", stored.ID, "submitted_at", "", stored.SubmittedAt.Format(time.RFC3339))
	}
	s.logger.Info("check-in stored",
		zap.String("check_in_id", stored.ID),
		zap.String("staff_id", stored.StaffID),
		zap.String("date", stored.Date),
		zap.Bool("created", created),
	)

	resp := &primary.SubmitCheckInResponse{
		CheckIn: recordToCheckIn(stored, nil),
		Created: created,
	}

	actx := context.WithoutCancel(ctx)
	if s.opts.AnalysisTimeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(actx, s.opts.AnalysisTimeout)
		defer cancel()
	}
	analyzed, err := s.analysisService.Analyze(actx, primary.AnalyzeRequest{CheckInID: stored.ID})
	if err != nil {
		resp.AnalysisError = err
		return resp, nil
	}
	resp.Analysis = analyzed.Analysis
	resp.CheckIn.Analysis = analyzed.Analysis
	return resp, nil
}

// GetCheckIn retrieves a check-in with its analysis, if any.
func (s *CheckInServiceImpl) GetCheckIn(ctx context.Context, access primary.Access, checkInID string) (*primary.CheckIn, error) {
	record, err := s.checkInRepo.GetByID(ctx, checkInID)
	if err != nil {
		return nil, err
	}

	mine, err := callerStaffID(ctx, s.staffRepo, access.PrincipalID)
	if err != nil {
		return nil, err
	}
	guard := checkin.CanView(checkin.OwnershipContext{
		Access:        toRoleAccess(access),
		StaffID:       record.StaffID,
		CallerStaffID: mine,
	})
	if err := deny(guard.Error()); err != nil {
		return nil, err
	}

	a, err := s.analysisRepo.GetByCheckIn(ctx, record.ID)
	if err != nil && !apperr.IsNotFound(err) {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	return recordToCheckIn(record, a), nil
}

// ListCheckIns lists check-ins. Callers without team view see only their own.
func (s *CheckInServiceImpl) ListCheckIns(ctx context.Context, access primary.Access, filters primary.CheckInFilters) ([]*primary.CheckIn, error) {
	if !role.CanViewTeam(toRoleAccess(access)).Allowed {
		mine, err := callerStaffID(ctx, s.staffRepo, access.PrincipalID)
		if err != nil {
			return nil, err
		}
		if filters.StaffID == "" {
			filters.StaffID = mine
		}
		guard := checkin.CanView(checkin.OwnershipContext{
			Access:        toRoleAccess(access),
			StaffID:       filters.StaffID,
			CallerStaffID: mine,
		})
		if err := deny(guard.Error()); err != nil {
			return nil, err
		}
	}

	records, err := s.checkInRepo.List(ctx, secondary.CheckInFilters{
		StaffID: filters.StaffID,
		From:    filters.From,
		To:      filters.To,
		Limit:   filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}

	checkIns := make([]*primary.CheckIn, len(records))
	for i, r := range records {
		a, err := s.analysisRepo.GetByCheckIn(ctx, r.ID)
		if err != nil && !apperr.IsNotFound(err) {
			return nil, fmt.Errorf("failed to get analysis: %w", err)
		}
		checkIns[i] = recordToCheckIn(r, a)
	}
	return checkIns, nil
}

// Ensure CheckInServiceImpl implements the interface
var _ primary.CheckInService = (*CheckInServiceImpl)(nil)
