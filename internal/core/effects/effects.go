// Package effects describes side effects as plain values. Planners in the core
// return them; app.EffectExecutor performs them against the gateway and storage.
package effects

// Effect is one side effect awaiting execution.
type Effect interface {
	EffectType() string
}

// EntityReminderLog is the PersistEffect entity for reminder log rows.
const EntityReminderLog = "reminder_log"

// NotifyEffect sends one message through the notification gateway.
type NotifyEffect struct {
	StaffID string
	Address string
	Subject string
	Body    string
}

func (e NotifyEffect) EffectType() string { return "notify" }

// PersistEffect writes one row. Operation is "create"; rows are never updated.
type PersistEffect struct {
	Entity    string
	Operation string
	Data      any
}

func (e PersistEffect) EffectType() string { return "persist" }

// ReminderLogData is the PersistEffect payload for EntityReminderLog.
type ReminderLogData struct {
	StaffID string
	Date    string
	Address string
}

// LogEffect records a decision that needs no I/O beyond the process log,
// such as a reminder skipped for want of an address.
type LogEffect struct {
	Level   string
	Message string
	Fields  map[string]any
}

func (e LogEffect) EffectType() string { return "log" }

// CompositeEffect runs its effects in order and stops at the first failure,
// so a reminder is only logged after its message went out.
type CompositeEffect struct {
	Effects []Effect
}

func (e CompositeEffect) EffectType() string { return "composite" }

// NoEffect is the zero plan.
type NoEffect struct{}

func (e NoEffect) EffectType() string { return "none" }
