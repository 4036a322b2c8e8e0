package app

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/example/pulse/internal/adapters/sqlite"
	"github.com/example/pulse/internal/db"
	"github.com/example/pulse/internal/ports/primary"
	"github.com/example/pulse/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// mockOracle implements secondary.ScoringOracle for testing.
// Replies are consumed in order; the last one repeats.
type mockOracle struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   int
	prompts []string
	block   chan struct{} // when set, Score waits for it to close
}

func newMockOracle(replies ...string) *mockOracle {
	return &mockOracle{replies: replies}
}

func (m *mockOracle) Score(ctx context.Context, req secondary.OracleRequest) (*secondary.OracleReply, error) {
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.prompts = append(m.prompts, req.Prompt)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.replies) == 0 {
		return nil, errors.New("no reply configured")
	}
	reply := m.replies[0]
	if len(m.replies) > 1 {
		m.replies = m.replies[1:]
	}
	return &secondary.OracleReply{Text: reply, Model: "mock-model"}, nil
}

func (m *mockOracle) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockGateway implements secondary.NotificationGateway for testing.
type mockGateway struct {
	mu     sync.Mutex
	sent   []secondary.Notification
	failTo map[string]error
}

func newMockGateway() *mockGateway {
	return &mockGateway{failTo: make(map[string]error)}
}

func (m *mockGateway) Send(ctx context.Context, n secondary.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failTo[n.To]; err != nil {
		return err
	}
	m.sent = append(m.sent, n)
	return nil
}

func (m *mockGateway) sentTo() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sent))
	for i, n := range m.sent {
		out[i] = n.To
	}
	return out
}

const greenReply = `{"score":"green","blocker":"NONE","reason":"On target","message":"Great day","nextStep":"Keep going"}`

const redReply = `Here is my assessment:
{"score":"red","blocker":"SYSTEM","reason":"Deploy pipeline down","message":"Rough day, the outage was not on you","nextStep":"Escalate the pipeline outage to platform"}
Let me know if you need more.`

// stallingStaffRepo blocks reminder eligibility reads until the context ends.
type stallingStaffRepo struct {
	*sqlite.StaffRepository
}

func (r stallingStaffRepo) ListReminderEligible(ctx context.Context) ([]*secondary.EligibleStaffRecord, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// stallingReportRepo blocks the manager inbox query until the context ends.
type stallingReportRepo struct {
	*sqlite.ReportRepository
}

func (r stallingReportRepo) ListUnreadFromStaff(ctx context.Context) ([]*secondary.ReportRecord, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// ============================================================================
// Test Harness
// ============================================================================

// harness wires every service against an in-memory database.
type harness struct {
	db      *sql.DB
	oracle  *mockOracle
	gateway *mockGateway
	clock   time.Time

	principalRepo   *sqlite.PrincipalRepository
	roleRepo        *sqlite.RoleRepository
	permissionRepo  *sqlite.PermissionRepository
	staffRepo       *sqlite.StaffRepository
	checkInRepo     *sqlite.CheckInRepository
	analysisRepo    *sqlite.AnalysisRepository
	reportRepo      *sqlite.ReportRepository
	reminderLogRepo *sqlite.ReminderLogRepository
	auditRepo       *sqlite.AuditLogRepository

	access     *AccessServiceImpl
	principals *PrincipalServiceImpl
	roles      *RoleAdminServiceImpl
	staff      *StaffServiceImpl
	links      *LinkServiceImpl
	analyses   *AnalysisServiceImpl
	checkIns   *CheckInServiceImpl
	reports    *ReportServiceImpl
	reminders  *ReminderServiceImpl
	audit      *AuditLogServiceImpl
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	h := &harness{
		db:      database,
		oracle:  newMockOracle(greenReply),
		gateway: newMockGateway(),
		clock:   time.Date(2025, 3, 14, 18, 30, 0, 0, time.UTC),

		principalRepo:   sqlite.NewPrincipalRepository(database),
		roleRepo:        sqlite.NewRoleRepository(database),
		permissionRepo:  sqlite.NewPermissionRepository(database),
		staffRepo:       sqlite.NewStaffRepository(database),
		checkInRepo:     sqlite.NewCheckInRepository(database),
		analysisRepo:    sqlite.NewAnalysisRepository(database),
		reportRepo:      sqlite.NewReportRepository(database),
		reminderLogRepo: sqlite.NewReminderLogRepository(database),
		auditRepo:       sqlite.NewAuditLogRepository(database),
	}
	now := func() time.Time { return h.clock }

	logger := zap.NewNop()
	auditWriter := sqlite.NewAuditWriterAdapter(h.auditRepo)

	h.access = NewAccessService(h.roleRepo, h.permissionRepo, logger)
	h.principals = NewPrincipalService(h.principalRepo, auditWriter)
	h.roles = NewRoleAdminService(h.principalRepo, h.roleRepo, h.permissionRepo, h.access, auditWriter, logger)
	h.staff = NewStaffService(h.staffRepo, auditWriter)
	h.links = NewLinkService(h.staffRepo, h.principalRepo, h.roleRepo, auditWriter, logger)

	h.analyses = NewAnalysisService(h.checkInRepo, h.analysisRepo, h.staffRepo, h.oracle,
		AnalysisOptions{Language: "English", OracleTimeout: time.Second, Concurrency: 2}, logger)
	h.analyses.now = now

	h.checkIns = NewCheckInService(h.checkInRepo, h.analysisRepo, h.staffRepo, h.analyses, auditWriter,
		CheckInOptions{Location: time.UTC, AnalysisTimeout: 2 * time.Second}, logger)
	h.checkIns.now = now

	h.reports = NewReportService(h.reportRepo, h.staffRepo, auditWriter, ReportOptions{Location: time.UTC, StorageTimeout: time.Second})
	h.reports.now = now

	executor := NewEffectExecutor(h.gateway, h.reminderLogRepo, time.Second, logger)
	h.reminders = NewReminderService(h.staffRepo, h.checkInRepo, h.reportRepo, h.reminderLogRepo, executor,
		ReminderOptions{Location: time.UTC, Concurrency: 3, StorageTimeout: time.Second}, logger)
	h.reminders.now = now

	h.audit = NewAuditLogService(h.auditRepo)
	return h
}

// register adds a principal.
func (h *harness) register(t *testing.T, id, email string) {
	t.Helper()
	if _, err := h.principals.Register(context.Background(), primary.RegisterPrincipalRequest{ID: id, Email: email}); err != nil {
		t.Fatalf("register %s: %v", id, err)
	}
}

// owner registers a principal, makes it the owner and returns its access.
func (h *harness) owner(t *testing.T, id string) primary.Access {
	t.Helper()
	h.register(t, id, id+"@example.com")
	if err := h.roles.BootstrapOwner(context.Background(), id); err != nil {
		t.Fatalf("bootstrap owner: %v", err)
	}
	return h.access.Resolve(context.Background(), id)
}

// addStaff creates a staff record as the given manager and returns its id.
func (h *harness) addStaff(t *testing.T, manager primary.Access, name, email string) string {
	t.Helper()
	s, err := h.staff.CreateStaff(context.Background(), manager, primary.CreateStaffRequest{
		Name:    name,
		Email:   email,
		Title:   "Support Agent",
		Targets: map[string]string{"tickets_closed": "40"},
	})
	if err != nil {
		t.Fatalf("create staff %s: %v", name, err)
	}
	return s.ID
}

// linkedStaff creates a staff record and a principal with the same email, links
// them, and returns the staff id and the principal's access.
func (h *harness) linkedStaff(t *testing.T, manager primary.Access, principalID, name, email string) (string, primary.Access) {
	t.Helper()
	staffID := h.addStaff(t, manager, name, email)
	h.register(t, principalID, email)
	res, err := h.links.Link(context.Background(), principalID, email)
	if err != nil || res.Outcome != "linked" {
		t.Fatalf("link %s: %+v, %v", principalID, res, err)
	}
	return staffID, h.access.Resolve(context.Background(), principalID)
}

func primaryRegister(id, email string) primary.RegisterPrincipalRequest {
	return primary.RegisterPrincipalRequest{ID: id, Email: email}
}

// addStaffCtx is addStaff with an explicit context, for audit actor checks.
func (h *harness) addStaffCtx(t *testing.T, ctx context.Context, manager primary.Access, name, email string) string {
	t.Helper()
	s, err := h.staff.CreateStaff(ctx, manager, primary.CreateStaffRequest{Name: name, Email: email})
	if err != nil {
		t.Fatalf("create staff %s: %v", name, err)
	}
	return s.ID
}
