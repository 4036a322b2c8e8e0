// Package staff contains the pure business logic for staff records.
// This is part of the Functional Core - no I/O, only pure functions.
package staff

import (
	"fmt"
	"strings"
)

// GenerateStaffID generates a staff ID from the current max number.
// The format is STAFF-XXX where XXX is a zero-padded 3-digit number.
func GenerateStaffID(currentMax int) string {
	return fmt.Sprintf("STAFF-%03d", currentMax+1)
}

// ParseStaffNumber extracts the numeric portion from a staff ID.
// Returns -1 if the ID format is invalid.
func ParseStaffNumber(id string) int {
	var num int
	_, err := fmt.Sscanf(id, "STAFF-%d", &num)
	if err != nil {
		return -1
	}
	return num
}

// Profile is the editable part of a staff record.
type Profile struct {
	Name       string
	Email      string
	Title      string
	Department string
	Targets    map[string]string
}

// ValidateProfile checks a staff profile before create or import.
func ValidateProfile(p Profile) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("staff name is required")
	}
	if p.Email != "" && !strings.Contains(p.Email, "@") {
		return fmt.Errorf("invalid email %q for %s", p.Email, p.Name)
	}
	for metric := range p.Targets {
		if strings.TrimSpace(metric) == "" {
			return fmt.Errorf("target metric names must not be empty (staff %s)", p.Name)
		}
	}
	return nil
}
