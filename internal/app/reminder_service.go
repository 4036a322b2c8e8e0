package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/pulse/internal/apperr"
	"github.com/example/pulse/internal/core/checkin"
	"github.com/example/pulse/internal/core/effects"
	"github.com/example/pulse/internal/core/reminder"
	"github.com/example/pulse/internal/core/role"
	"github.com/example/pulse/internal/ports/primary"
	"github.com/example/pulse/internal/ports/secondary"
)

// ReminderOptions tunes the ReminderService.
type ReminderOptions struct {
	Location       *time.Location // organization timezone defining "today"
	Concurrency    int            // parallel sends per run
	StorageTimeout time.Duration  // bound on reading the eligible, submitted and reminded sets
}

// ReminderServiceImpl implements the ReminderService interface.
type ReminderServiceImpl struct {
	staffRepo       secondary.StaffRepository
	checkInRepo     secondary.CheckInRepository
	reportRepo      secondary.ReportRepository
	reminderLogRepo secondary.ReminderLogRepository
	executor        EffectExecutor
	opts            ReminderOptions
	logger          *zap.Logger
	now             func() time.Time
}

// NewReminderService creates a new ReminderService with injected dependencies.
func NewReminderService(
	staffRepo secondary.StaffRepository,
	checkInRepo secondary.CheckInRepository,
	reportRepo secondary.ReportRepository,
	reminderLogRepo secondary.ReminderLogRepository,
	executor EffectExecutor,
	opts ReminderOptions,
	logger *zap.Logger,
) *ReminderServiceImpl {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &ReminderServiceImpl{
		staffRepo:       staffRepo,
		checkInRepo:     checkInRepo,
		reportRepo:      reportRepo,
		reminderLogRepo: reminderLogRepo,
		executor:        executor,
		opts:            opts,
		logger:          logger.Named("reminder"),
		now:             time.Now,
	}
}

// Run reminds every linked staff member with neither a check-in nor a staff
// report on date who has not been reminded for it yet. A failed send leaves no
// log row, so the next run retries that person. Only failing to read the
// eligible, submitted or reminded sets fails the run as a whole.
func (s *ReminderServiceImpl) Run(ctx context.Context, date string) (*primary.RunSummary, error) {
	if date == "" {
		date = checkin.Today(s.now(), s.opts.Location)
	}
	date, err := checkin.ParseDate(date)
	if err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}

	input, err := s.gather(ctx, date)
	if err != nil {
		return nil, err
	}
	plan := reminder.GeneratePlan(input)

	summary := &primary.RunSummary{
		Date:             date,
		Eligible:         plan.Eligible,
		AlreadySubmitted: plan.AlreadySubmitted,
		AlreadyReminded:  plan.AlreadyReminded,
		Targeted:         len(plan.Targets) + len(plan.NoAddress),
		SkippedNoAddress: len(plan.NoAddress),
		Errors:           make(map[string]string),
	}

	for _, t := range plan.NoAddress {
		_ = s.executor.Execute(ctx, []effects.Effect{t.Effect})
	}

	if plan.NothingToDo() {
		s.logger.Info("no reminders due", zap.String("date", date), zap.Int("eligible", plan.Eligible))
	} else {
		s.send(ctx, plan, summary)
	}

	s.logger.Info("reminder run finished",
		zap.String("date", summary.Date),
		zap.Int("eligible", summary.Eligible),
		zap.Int("already_submitted", summary.AlreadySubmitted),
		zap.Int("already_reminded", summary.AlreadyReminded),
		zap.Int("sent", summary.Sent),
		zap.Int("skipped_no_address", summary.SkippedNoAddress),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

// send executes every addressed target under the concurrency limit, counting
// outcomes into summary. One failure never stops the others.
func (s *ReminderServiceImpl) send(ctx context.Context, plan reminder.Plan, summary *primary.RunSummary) {
	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(s.opts.Concurrency)
	for _, t := range plan.Targets {
		g.Go(func() error {
			err := s.executor.Execute(ctx, []effects.Effect{t.Effect})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Failed++
				summary.Errors[t.StaffID] = err.Error()
				s.logger.Warn("reminder failed", zap.String("staff_id", t.StaffID), zap.String("date", plan.Date), zap.Error(err))
				return nil
			}
			summary.Sent++
			s.logger.Info("reminder sent", zap.String("staff_id", t.StaffID), zap.String("date", plan.Date))
			return nil
		})
	}
	_ = g.Wait()
}

// gather reads E, S and R for date.
func (s *ReminderServiceImpl) gather(ctx context.Context, date string) (reminder.PlanInput, error) {
	ctx, cancel := storageContext(ctx, s.opts.StorageTimeout)
	defer cancel()
	in := reminder.PlanInput{Date: date}

	eligible, err := s.staffRepo.ListReminderEligible(ctx)
	if err != nil {
		return in, fmt.Errorf("failed to read eligible staff: %w", err)
	}
	for _, e := range eligible {
		in.Eligible = append(in.Eligible, reminder.EligibleStaff{StaffID: e.StaffID, Name: e.Name, Address: e.Address})
	}

	checkedIn, err := s.checkInRepo.StaffIDsForDate(ctx, date)
	if err != nil {
		return in, fmt.Errorf("failed to read check-ins for %s: %w", date, err)
	}
	reported, err := s.reportRepo.StaffIDsForDate(ctx, date)
	if err != nil {
		return in, fmt.Errorf("failed to read reports for %s: %w", date, err)
	}
	in.Submitted = append(checkedIn, reported...)

	if in.Reminded, err = s.reminderLogRepo.StaffIDsForDate(ctx, date); err != nil {
		return in, fmt.Errorf("failed to read reminder log for %s: %w", date, err)
	}
	return in, nil
}

// TriggerRun is Run started manually by a manager.
func (s *ReminderServiceImpl) TriggerRun(ctx context.Context, access primary.Access, date string) (*primary.RunSummary, error) {
	if err := deny(role.CanManageTeam(toRoleAccess(access)).Error()); err != nil {
		return nil, err
	}
	return s.Run(ctx, date)
}

// Ensure ReminderServiceImpl implements the interface
var _ primary.ReminderService = (*ReminderServiceImpl)(nil)
