// Package wire provides dependency injection for pulse.
// It creates singleton services with lazy initialization.
package wire

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	cliadapter "github.com/example/pulse/internal/adapters/cli"
	"github.com/example/pulse/internal/adapters/notify"
	"github.com/example/pulse/internal/adapters/oracle"
	"github.com/example/pulse/internal/adapters/sqlite"
	"github.com/example/pulse/internal/app"
	"github.com/example/pulse/internal/config"
	"github.com/example/pulse/internal/db"
	"github.com/example/pulse/internal/logging"
	"github.com/example/pulse/internal/ports/primary"
	"github.com/example/pulse/internal/ports/secondary"
)

var (
	cfg         *config.Config
	logger      *zap.Logger
	closeLogger func() error
	database    *sql.DB

	accessService    *app.AccessServiceImpl
	principalService primary.PrincipalService
	roleAdminService primary.RoleAdminService
	staffService     primary.StaffService
	linkService      primary.LinkService
	analysisService  primary.AnalysisService
	checkInService   primary.CheckInService
	reportService    primary.ReportService
	reminderService  primary.ReminderService
	auditLogService  primary.AuditLogService

	once    sync.Once
	initErr error
)

// Init loads configuration for dir and initializes every service.
// Later calls return the first call's result.
func Init(dir string) error {
	once.Do(func() { initErr = initServices(dir) })
	return initErr
}

// Close flushes the logger and closes the database.
func Close() error {
	var err error
	if database != nil {
		err = database.Close()
	}
	if closeLogger != nil {
		if cerr := closeLogger(); err == nil {
			err = cerr
		}
	}
	return err
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices(dir string) error {
	var err error
	if cfg, err = config.Load(dir); err != nil {
		return err
	}
	if logger, closeLogger, err = logging.New(cfg.Log); err != nil {
		return err
	}
	if database, err = db.Open(cfg.DBPath, cfg.Timeouts.Storage); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	principalRepo := sqlite.NewPrincipalRepository(database)
	roleRepo := sqlite.NewRoleRepository(database)
	permissionRepo := sqlite.NewPermissionRepository(database)
	staffRepo := sqlite.NewStaffRepository(database)
	checkInRepo := sqlite.NewCheckInRepository(database)
	analysisRepo := sqlite.NewAnalysisRepository(database)
	reportRepo := sqlite.NewReportRepository(database)
	reminderLogRepo := sqlite.NewReminderLogRepository(database)
	auditRepo := sqlite.NewAuditLogRepository(database)
	auditWriter := sqlite.NewAuditWriterAdapter(auditRepo)

	scoring := oracle.NewLazyOracle(buildOracle(cfg.Oracle))
	gateway := buildGateway(cfg.Notify, logger)
	loc := cfg.Location()

	// Create services (primary ports implementation)
	accessService = app.NewAccessService(roleRepo, permissionRepo, logger)
	principalService = app.NewPrincipalService(principalRepo, auditWriter)
	roleAdminService = app.NewRoleAdminService(principalRepo, roleRepo, permissionRepo, accessService, auditWriter, logger)
	staffService = app.NewStaffService(staffRepo, auditWriter)
	linkService = app.NewLinkService(staffRepo, principalRepo, roleRepo, auditWriter, logger)

	analyses := app.NewAnalysisService(checkInRepo, analysisRepo, staffRepo, scoring, app.AnalysisOptions{
		Language:      cfg.Org.Language,
		OracleTimeout: cfg.Timeouts.Oracle,
		Concurrency:   cfg.Scheduler.Concurrency,
	}, logger)
	analysisService = analyses
	checkInService = app.NewCheckInService(checkInRepo, analysisRepo, staffRepo, analyses, auditWriter, app.CheckInOptions{
		Location:        loc,
		AnalysisTimeout: cfg.Timeouts.Oracle,
	}, logger)
	reportService = app.NewReportService(reportRepo, staffRepo, auditWriter, app.ReportOptions{
		Location:       loc,
		StorageTimeout: cfg.Timeouts.Storage,
	})

	executor := app.NewEffectExecutor(gateway, reminderLogRepo, cfg.Timeouts.Notify, logger)
	reminderService = app.NewReminderService(staffRepo, checkInRepo, reportRepo, reminderLogRepo, executor, app.ReminderOptions{
		Location:       loc,
		Concurrency:    cfg.Scheduler.Concurrency,
		StorageTimeout: cfg.Timeouts.Storage,
	}, logger)
	auditLogService = app.NewAuditLogService(auditRepo)
	return nil
}

func buildOracle(oc config.OracleConfig) oracle.Builder {
	opts := oracle.Options{
		APIKey:     oc.APIKey,
		Model:      oc.Model,
		BaseURL:    oc.BaseURL,
		MaxRetries: oc.MaxRetries,
	}
	return func(ctx context.Context) (secondary.ScoringOracle, error) {
		if oc.Provider == config.OracleGemini {
			return oracle.NewGeminiOracle(ctx, opts)
		}
		return oracle.NewAnthropicOracle(opts)
	}
}

func buildGateway(nc config.NotifyConfig, logger *zap.Logger) secondary.NotificationGateway {
	if nc.Provider == config.NotifyWebhook {
		return notify.NewWebhookGateway(nc.Endpoint, nc.Token, nc.From)
	}
	return notify.NewLogGateway(logger)
}

// Config returns the effective configuration.
func Config() *config.Config { return cfg }

// Logger returns the process logger.
func Logger() *zap.Logger { return logger }

// AccessService returns the singleton AccessService instance.
func AccessService() primary.AccessService { return accessService }

// PrincipalService returns the singleton PrincipalService instance.
func PrincipalService() primary.PrincipalService { return principalService }

// RoleAdminService returns the singleton RoleAdminService instance.
func RoleAdminService() primary.RoleAdminService { return roleAdminService }

// AuditLogService returns the singleton AuditLogService instance.
func AuditLogService() primary.AuditLogService { return auditLogService }

// ReminderService returns the singleton ReminderService instance.
func ReminderService() primary.ReminderService { return reminderService }

// ReminderDaemon returns a daemon driving the reminder service on the configured schedule.
func ReminderDaemon() *app.ReminderDaemon {
	return app.NewReminderDaemon(reminderService, app.DaemonOptions{
		Location: cfg.Location(),
		Hour:     cfg.Scheduler.Hour,
		Interval: cfg.Scheduler.Interval,
		LockFile: cfg.Scheduler.LockFile,
	}, logger)
}

// CheckInAdapter returns a new CheckInAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func CheckInAdapter() *cliadapter.CheckInAdapter {
	return CheckInAdapterWithOutput(os.Stdout)
}

// CheckInAdapterWithOutput returns a new CheckInAdapter writing to the given output.
func CheckInAdapterWithOutput(out io.Writer) *cliadapter.CheckInAdapter {
	return cliadapter.NewCheckInAdapter(checkInService, analysisService, out)
}

// ReportAdapter returns a new ReportAdapter writing to stdout.
func ReportAdapter() *cliadapter.ReportAdapter {
	return cliadapter.NewReportAdapter(reportService, os.Stdout)
}

// StaffAdapter returns a new StaffAdapter writing to stdout.
func StaffAdapter() *cliadapter.StaffAdapter {
	return cliadapter.NewStaffAdapter(staffService, linkService, os.Stdout)
}

// ReminderAdapter returns a new ReminderAdapter writing to stdout.
func ReminderAdapter() *cliadapter.ReminderAdapter {
	return cliadapter.NewReminderAdapter(reminderService, os.Stdout)
}
