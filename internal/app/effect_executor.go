// Package app contains the application layer - service implementations and effect execution.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/pulse/internal/apperr"
	"github.com/example/pulse/internal/core/effects"
	"github.com/example/pulse/internal/ports/secondary"
)

// EffectExecutor interprets and executes effects.
// This is the "Imperative Shell" - the only place planned I/O happens.
type EffectExecutor interface {
	Execute(ctx context.Context, effs []effects.Effect) error
}

// DefaultEffectExecutor implements EffectExecutor with the notification
// gateway and the reminder log.
type DefaultEffectExecutor struct {
	gateway         secondary.NotificationGateway
	reminderLogRepo secondary.ReminderLogRepository
	notifyTimeout   time.Duration
	logger          *zap.Logger
	now             func() time.Time
}

// NewEffectExecutor creates a new DefaultEffectExecutor.
func NewEffectExecutor(gateway secondary.NotificationGateway, reminderLogRepo secondary.ReminderLogRepository, notifyTimeout time.Duration, logger *zap.Logger) *DefaultEffectExecutor {
	return &DefaultEffectExecutor{
		gateway:         gateway,
		reminderLogRepo: reminderLogRepo,
		notifyTimeout:   notifyTimeout,
		logger:          logger.Named("effects"),
		now:             time.Now,
	}
}

// Execute processes a slice of effects in sequence, stopping at the first failure.
func (e *DefaultEffectExecutor) Execute(ctx context.Context, effs []effects.Effect) error {
	for _, eff := range effs {
		if err := e.executeOne(ctx, eff); err != nil {
			return fmt.Errorf("failed to execute %s effect: %w", eff.EffectType(), err)
		}
	}
	return nil
}

func (e *DefaultEffectExecutor) executeOne(ctx context.Context, eff effects.Effect) error {
	switch typed := eff.(type) {
	case effects.NotifyEffect:
		return e.executeNotify(ctx, typed)
	case effects.PersistEffect:
		return e.executePersist(ctx, typed)
	case effects.CompositeEffect:
		return e.Execute(ctx, typed.Effects)
	case effects.NoEffect:
		return nil
	case effects.LogEffect:
		e.executeLog(typed)
		return nil
	default:
		return fmt.Errorf("unknown effect type: %T", eff)
	}
}

func (e *DefaultEffectExecutor) executeNotify(ctx context.Context, eff effects.NotifyEffect) error {
	if e.notifyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.notifyTimeout)
		defer cancel()
	}

	err := e.gateway.Send(ctx, secondary.Notification{
		To:      eff.Address,
		Subject: eff.Subject,
		Body:    eff.Body,
	})
	if err != nil {
		return apperr.Upstream(err, "notification to %s failed", eff.StaffID)
	}
	return nil
}

func (e *DefaultEffectExecutor) executePersist(ctx context.Context, eff effects.PersistEffect) error {
	switch eff.Entity {
	case effects.EntityReminderLog:
		return e.executeReminderLogOp(ctx, eff)
	default:
		return fmt.Errorf("unknown entity: %s", eff.Entity)
	}
}

func (e *DefaultEffectExecutor) executeReminderLogOp(ctx context.Context, eff effects.PersistEffect) error {
	switch eff.Operation {
	case "create":
		data, ok := eff.Data.(effects.ReminderLogData)
		if !ok {
			return fmt.Errorf("invalid reminder_log create data type: %T", eff.Data)
		}
		err := e.reminderLogRepo.Create(ctx, &secondary.ReminderLogRecord{
			ID:      "REM-" + uuid.NewString(),
			StaffID: data.StaffID,
			Date:    data.Date,
			Address: data.Address,
			SentAt:  e.now(),
		})
		if apperr.IsConflict(err) {
			// An overlapping run logged the same (staff, date) first.
			e.logger.Debug("reminder already logged", zap.String("staff_id", data.StaffID), zap.String("date", data.Date))
			return nil
		}
		return err
	default:
		return fmt.Errorf("unknown reminder_log operation: %s", eff.Operation)
	}
}

func (e *DefaultEffectExecutor) executeLog(eff effects.LogEffect) {
	fields := make([]zap.Field, 0, len(eff.Fields))
	for k, v := range eff.Fields {
		fields = append(fields, zap.Any(k, v))
	}
	switch eff.Level {
	case "debug":
		e.logger.Debug(eff.Message, fields...)
	case "warn":
		e.logger.Warn(eff.Message, fields...)
	case "error":
		e.logger.Error(eff.Message, fields...)
	default:
		e.logger.Info(eff.Message, fields...)
	}
}
