package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/pulse/internal/apperr"
	"github.com/example/pulse/internal/core/analysis"
	"github.com/example/pulse/internal/core/role"
	"github.com/example/pulse/internal/ports/primary"
	"github.com/example/pulse/internal/ports/secondary"
)

// AnalysisOptions tunes the AnalysisService.
type AnalysisOptions struct {
	Language      string        // default language of oracle messages
	OracleTimeout time.Duration // bound on one oracle call, retries included
	Concurrency   int           // parallel oracle calls in RetryPending
}

// AnalysisServiceImpl implements the AnalysisService interface.
type AnalysisServiceImpl struct {
	checkInRepo  secondary.CheckInRepository
	analysisRepo secondary.AnalysisRepository
	staffRepo    secondary.StaffRepository
	oracle       secondary.ScoringOracle
	opts         AnalysisOptions
	logger       *zap.Logger
	now          func() time.Time
}

// NewAnalysisService creates a new AnalysisService with injected dependencies.
func NewAnalysisService(
	checkInRepo secondary.CheckInRepository,
	analysisRepo secondary.AnalysisRepository,
	staffRepo secondary.StaffRepository,
	oracle secondary.ScoringOracle,
	opts AnalysisOptions,
	logger *zap.Logger,
) *AnalysisServiceImpl {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &AnalysisServiceImpl{
		checkInRepo:  checkInRepo,
		analysisRepo: analysisRepo,
		staffRepo:    staffRepo,
		oracle:       oracle,
		opts:         opts,
		logger:       logger.Named("analysis"),
		now:          time.Now,
	}
}

// Analyze scores a stored check-in. An existing analysis short-circuits the
// oracle call; a concurrent winner is returned as AlreadyAnalyzed.
func (s *AnalysisServiceImpl) Analyze(ctx context.Context, req primary.AnalyzeRequest) (*primary.AnalyzeResponse, error) {
	checkIn, err := s.checkInRepo.GetByID(ctx, req.CheckInID)
	if err != nil {
		return nil, err
	}

	if existing, err := s.analysisRepo.GetByCheckIn(ctx, checkIn.ID); err == nil {
		return &primary.AnalyzeResponse{Analysis: recordToAnalysis(existing), AlreadyAnalyzed: true}, nil
	} else if !apperr.IsNotFound(err) {
		return nil, fmt.Errorf("failed to check existing analysis: %w", err)
	}

	staff, err := s.staffRepo.GetByID(ctx, checkIn.StaffID)
	if err != nil {
		return nil, err
	}

	language := req.Language
	if language == "" {
		language = s.opts.Language
	}
	prompt, err := analysis.RenderPrompt(analysis.PromptInput{
		StaffName: staff.Name,
		Title:     staff.Title,
		Targets:   staff.Targets,
		Metrics:   checkIn.Metrics,
		Notes:     checkIn.Notes,
		Language:  language,
		Date:      checkIn.Date,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render prompt: %w", err)
	}

	reply, err := s.score(ctx, checkIn.ID, prompt)
	if err != nil {
		s.logger.Warn("oracle call failed", zap.String("check_in_id", checkIn.ID), zap.Error(err))
		return nil, apperr.Upstream(err, "scoring oracle unavailable for check-in %s", checkIn.ID)
	}

	result, err := analysis.Parse(reply.Text)
	if err != nil {
		s.logger.Warn("oracle reply rejected", zap.String("check_in_id", checkIn.ID), zap.Error(err))
		return nil, apperr.Wrap(apperr.KindParse, err, "invalid oracle reply for check-in %s", checkIn.ID)
	}

	record := &secondary.AnalysisRecord{
		ID:        "ANL-" + uuid.NewString(),
		CheckInID: checkIn.ID,
		Score:     string(result.Score),
		Blocker:   string(result.Blocker),
		Reason:    result.Reason,
		Message:   result.Message,
		NextStep:  result.NextStep,
		Model:     reply.Model,
		CreatedAt: s.now(),
	}
	if err := s.analysisRepo.Create(ctx, record); err != nil {
		if !apperr.IsConflict(err) {
			return nil, err
		}
		winner, getErr := s.analysisRepo.GetByCheckIn(ctx, checkIn.ID)
		if getErr != nil {
			return nil, fmt.Errorf("failed to fetch concurrent analysis: %w", getErr)
		}
		return &primary.AnalyzeResponse{Analysis: recordToAnalysis(winner), AlreadyAnalyzed: true}, nil
	}

	s.logger.Info("check-in analyzed",
		zap.String("check_in_id", checkIn.ID),
		zap.String("score", record.Score),
		zap.String("blocker", record.Blocker),
	)
	return &primary.AnalyzeResponse{Analysis: recordToAnalysis(record)}, nil
}

func (s *AnalysisServiceImpl) score(ctx context.Context, checkInID, prompt string) (*secondary.OracleReply, error) {
	if s.opts.OracleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.OracleTimeout)
		defer cancel()
	}
	return s.oracle.Score(ctx, secondary.OracleRequest{CheckInID: checkInID, Prompt: prompt})
}

// RunAnalysis is Analyze on behalf of a manager.
func (s *AnalysisServiceImpl) RunAnalysis(ctx context.Context, access primary.Access, checkInID string) (*primary.AnalyzeResponse, error) {
	if err := deny(role.CanManageTeam(toRoleAccess(access)).Error()); err != nil {
		return nil, err
	}
	return s.Analyze(ctx, primary.AnalyzeRequest{CheckInID: checkInID})
}

// ListPending lists check-ins that have no analysis yet.
func (s *AnalysisServiceImpl) ListPending(ctx context.Context, access primary.Access, limit int) ([]*primary.CheckIn, error) {
	if err := deny(role.CanManageTeam(toRoleAccess(access)).Error()); err != nil {
		return nil, err
	}

	records, err := s.checkInRepo.ListUnanalyzed(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending check-ins: %w", err)
	}

	checkIns := make([]*primary.CheckIn, len(records))
	for i, r := range records {
		checkIns[i] = recordToCheckIn(r, nil)
	}
	return checkIns, nil
}

// RetryPending re-invokes analysis for up to limit pending check-ins.
// Each check-in succeeds or fails on its own.
func (s *AnalysisServiceImpl) RetryPending(ctx context.Context, access primary.Access, limit int) (*primary.RetryPendingResponse, error) {
	if err := deny(role.CanManageTeam(toRoleAccess(access)).Error()); err != nil {
		return nil, err
	}

	pending, err := s.checkInRepo.ListUnanalyzed(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending check-ins: %w", err)
	}

	resp := &primary.RetryPendingResponse{
		Attempted: len(pending),
		Failed:    make(map[string]string),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for _, c := range pending {
		g.Go(func() error {
			_, err := s.Analyze(gctx, primary.AnalyzeRequest{CheckInID: c.ID})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				resp.Failed[c.ID] = err.Error()
				return nil
			}
			resp.Analyzed++
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info("pending sweep finished",
		zap.Int("attempted", resp.Attempted),
		zap.Int("analyzed", resp.Analyzed),
		zap.Int("failed", len(resp.Failed)),
	)
	return resp, nil
}

func recordToAnalysis(r *secondary.AnalysisRecord) *primary.Analysis {
	return &primary.Analysis{
		ID:        r.ID,
		CheckInID: r.CheckInID,
		Score:     r.Score,
		Blocker:   r.Blocker,
		Reason:    r.Reason,
		Message:   r.Message,
		NextStep:  r.NextStep,
		Model:     r.Model,
		CreatedAt: r.CreatedAt,
	}
}

func recordToCheckIn(r *secondary.CheckInRecord, a *secondary.AnalysisRecord) *primary.CheckIn {
	c := &primary.CheckIn{
		ID:          r.ID,
		StaffID:     r.StaffID,
		Date:        r.Date,
		Metrics:     r.Metrics,
		Notes:       r.Notes,
		SubmittedAt: r.SubmittedAt,
	}
	if a != nil {
		c.Analysis = recordToAnalysis(a)
	}
	return c
}

// Ensure AnalysisServiceImpl implements the interface
var _ primary.AnalysisService = (*AnalysisServiceImpl)(nil)
