package primary

import (
	"context"
	"time"
)

// StaffService defines the primary port for the staff directory.
type StaffService interface {
	// CreateStaff creates a new staff record.
	CreateStaff(ctx context.Context, access Access, req CreateStaffRequest) (*Staff, error)

	// GetStaff retrieves a staff record (team viewers, or the linked principal).
	GetStaff(ctx context.Context, access Access, staffID string) (*Staff, error)

	// GetMyStaff retrieves the staff record linked to the caller.
	GetMyStaff(ctx context.Context, access Access) (*Staff, error)

	// ListStaff lists staff records (team viewers only).
	ListStaff(ctx context.Context, access Access, filters StaffFilters) ([]*Staff, error)

	// DeleteStaff deletes a staff record and everything recorded for it.
	DeleteStaff(ctx context.Context, access Access, staffID string) error

	// ImportStaff creates staff records in bulk, skipping emails already on file.
	ImportStaff(ctx context.Context, access Access, reqs []CreateStaffRequest) (*ImportStaffResponse, error)
}

// CreateStaffRequest contains parameters for creating a staff record.
type CreateStaffRequest struct {
	Name       string
	Email      string
	Title      string
	Department string
	Targets    map[string]string
}

// ImportStaffResponse summarizes a bulk import.
type ImportStaffResponse struct {
	Created []*Staff
	Skipped []string // emails already present
}

// StaffFilters contains filter options for listing staff.
type StaffFilters struct {
	Department string
	LinkedOnly bool
}

// Staff represents a staff record at the port boundary.
type Staff struct {
	ID                string
	Name              string
	Email             string
	Title             string
	Department        string
	Targets           map[string]string
	LinkedPrincipalID string
	CreatedAt         time.Time
}

// LinkService defines the primary port for identity linking.
type LinkService interface {
	// Link binds a principal to the single staff record matching its verified email.
	Link(ctx context.Context, principalID, verifiedEmail string) (*LinkResult, error)

	// LinkAll attempts Link for every registered, unlinked principal (managers only).
	LinkAll(ctx context.Context, access Access) ([]*LinkResult, error)
}

// LinkResult is the outcome of one link attempt.
type LinkResult struct {
	PrincipalID string
	StaffID     string
	Outcome     string // 'linked', 'no_match', 'multiple_matches', 'already_linked_self', 'already_linked_other', 'race_lost', 'skipped_owner'
}
