// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() to ensure tests run against
// the authoritative schema, preventing drift between test and production.
//
// DO NOT hardcode CREATE TABLE statements in test files. Instead, use
// setupTestDB() and the seed* helpers.
package sqlite_test

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/pulse/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
// The pool is pinned to one connection: every SQLite :memory: connection is a
// separate database, and foreign keys are a per-connection pragma.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)

	if _, err := testDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	// Use the authoritative schema from schema.go
	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedPrincipal inserts a test principal and returns its ID.
func seedPrincipal(t *testing.T, db *sql.DB, id, email string) string {
	t.Helper()
	_, err := db.Exec("INSERT INTO principals (id, email) VALUES (?, ?)", id, email)
	if err != nil {
		t.Fatalf("failed to seed principal: %v", err)
	}
	return id
}

// seedStaff inserts a test staff record and returns its ID.
func seedStaff(t *testing.T, db *sql.DB, id, name, email string) string {
	t.Helper()
	if name == "" {
		name = "Test Staff"
	}
	var emailArg any
	if email != "" {
		emailArg = email
	}
	_, err := db.Exec("INSERT INTO staff (id, name, email, targets) VALUES (?, ?, ?, '{}')", id, name, emailArg)
	if err != nil {
		t.Fatalf("failed to seed staff: %v", err)
	}
	return id
}

// seedLinkedStaff inserts a principal and a staff record linked to it.
func seedLinkedStaff(t *testing.T, db *sql.DB, staffID, principalID, email string) string {
	t.Helper()
	seedPrincipal(t, db, principalID, email)
	seedStaff(t, db, staffID, "", email)
	if _, err := db.Exec("UPDATE staff SET linked_principal_id = ? WHERE id = ?", principalID, staffID); err != nil {
		t.Fatalf("failed to link staff: %v", err)
	}
	return staffID
}

// seedCheckIn inserts a test check-in and returns its ID.
func seedCheckIn(t *testing.T, db *sql.DB, id, staffID, date string) string {
	t.Helper()
	now := time.Now().UTC()
	_, err := db.Exec(
		"INSERT INTO check_ins (id, staff_id, date, metrics, submitted_at, created_at) VALUES (?, ?, ?, '{}', ?, ?)",
		id, staffID, date, now, now,
	)
	if err != nil {
		t.Fatalf("failed to seed check-in: %v", err)
	}
	return id
}

func countRows(t *testing.T, db *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	if err := db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return n
}

func mustExec(t *testing.T, db *sql.DB, query string, args ...any) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("exec failed: %v", err)
	}
}
