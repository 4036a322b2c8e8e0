package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete modern schema for fresh pulse installs.
// This schema reflects the current state after all migrations.
//
// # Schema Drift Protection
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. Repository tests
// load it through GetSchemaSQL(), so a column referenced by adapter code but
// missing here fails immediately with "no such column".
//
// # Serialization
//
// Constraints that concurrent writers rely on:
//   - staff.linked_principal_id UNIQUE (link CAS happens in the UPDATE's WHERE clause)
//   - check_ins UNIQUE(staff_id, date)
//   - analyses UNIQUE(check_in_id)
//   - reminder_logs UNIQUE(staff_id, date)
//   - role_assignments: at most one hr and one executive_assistant
const SchemaSQL = `
-- Principals (authenticated external identities)
CREATE TABLE IF NOT EXISTS principals (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL,
	display_name TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_principals_email ON principals(email COLLATE NOCASE);

-- Role assignments (absence of a row means staff)
CREATE TABLE IF NOT EXISTS role_assignments (
	principal_id TEXT PRIMARY KEY,
	role TEXT NOT NULL CHECK(role IN ('owner', 'hr', 'executive_assistant', 'staff')),
	assigned_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (principal_id) REFERENCES principals(id) ON DELETE CASCADE
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_role_assignments_singleton
	ON role_assignments(role) WHERE role IN ('hr', 'executive_assistant');

-- Delegated permissions (consulted for non-owner roles)
CREATE TABLE IF NOT EXISTS permissions (
	principal_id TEXT PRIMARY KEY,
	can_manage_team INTEGER NOT NULL DEFAULT 0,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (principal_id) REFERENCES principals(id) ON DELETE CASCADE
);

-- Staff records (tracked employees, optionally linked to a principal)
CREATE TABLE IF NOT EXISTS staff (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT,
	title TEXT,
	department TEXT,
	targets TEXT NOT NULL DEFAULT '{}',
	linked_principal_id TEXT UNIQUE,
	linked_at DATETIME,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (linked_principal_id) REFERENCES principals(id)
);

CREATE INDEX IF NOT EXISTS idx_staff_email ON staff(email COLLATE NOCASE);

-- Check-ins (one per staff per calendar day)
CREATE TABLE IF NOT EXISTS check_ins (
	id TEXT PRIMARY KEY,
	staff_id TEXT NOT NULL,
	date TEXT NOT NULL,
	metrics TEXT NOT NULL DEFAULT '{}',
	notes TEXT,
	submitted_at DATETIME NOT NULL,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (staff_id) REFERENCES staff(id) ON DELETE CASCADE,
	UNIQUE(staff_id, date)
);

CREATE INDEX IF NOT EXISTS idx_check_ins_date ON check_ins(date);

-- Analyses (oracle output, at most one per check-in, never mutated)
CREATE TABLE IF NOT EXISTS analyses (
	id TEXT PRIMARY KEY,
	check_in_id TEXT NOT NULL UNIQUE,
	score TEXT NOT NULL CHECK(score IN ('green', 'yellow', 'red')),
	blocker TEXT NOT NULL CHECK(blocker IN ('NONE', 'EMPLOYEE', 'SYSTEM', 'EXTERNAL')),
	reason TEXT NOT NULL,
	message TEXT NOT NULL,
	next_step TEXT NOT NULL,
	model TEXT,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (check_in_id) REFERENCES check_ins(id) ON DELETE CASCADE
);

-- Reports (manager <-> staff mailbox)
CREATE TABLE IF NOT EXISTS reports (
	id TEXT PRIMARY KEY,
	staff_id TEXT NOT NULL,
	recipient_staff_id TEXT,
	sender_principal_id TEXT,
	body TEXT NOT NULL,
	direction TEXT NOT NULL CHECK(direction IN ('from_staff', 'from_manager')),
	read INTEGER NOT NULL DEFAULT 0,
	report_date TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (staff_id) REFERENCES staff(id) ON DELETE CASCADE,
	FOREIGN KEY (recipient_staff_id) REFERENCES staff(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_reports_unread ON reports(direction, read);
CREATE INDEX IF NOT EXISTS idx_reports_staff ON reports(staff_id);
CREATE INDEX IF NOT EXISTS idx_reports_recipient ON reports(recipient_staff_id);

-- Reminder log (append-only; existence means "already reminded that day")
CREATE TABLE IF NOT EXISTS reminder_logs (
	id TEXT PRIMARY KEY,
	staff_id TEXT NOT NULL,
	date TEXT NOT NULL,
	address TEXT NOT NULL,
	sent_at DATETIME NOT NULL,
	FOREIGN KEY (staff_id) REFERENCES staff(id) ON DELETE CASCADE,
	UNIQUE(staff_id, date)
);

-- Audit log (append-only activity trail, prunable)
CREATE TABLE IF NOT EXISTS audit_logs (
	id TEXT PRIMARY KEY,
	timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
	actor_id TEXT,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	action TEXT NOT NULL,
	field_name TEXT,
	old_value TEXT,
	new_value TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_audit_logs_entity ON audit_logs(entity_type, entity_id);
CREATE INDEX IF NOT EXISTS idx_audit_logs_timestamp ON audit_logs(timestamp);
`

// InitSchema brings database to the current schema.
// A fresh database receives SchemaSQL directly and is stamped with every
// migration version; an existing one runs pending migrations.
func InitSchema(database *sql.DB) error {
	var tableCount int
	err := database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount > 0 {
		return RunMigrations(database)
	}

	if _, err := database.Exec(SchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if err := ensureVersionTable(database); err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := database.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return err
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
