package report

import (
	"strings"
	"testing"

	"github.com/example/pulse/internal/core/role"
)

var (
	manager = ActorContext{Access: role.Access{PrincipalID: "m", Role: role.Owner, CanManageTeam: true}}
	jordan  = ActorContext{Access: role.Access{PrincipalID: "j", Role: role.Staff}, CallerStaffID: "STAFF-001"}
	sam     = ActorContext{Access: role.Access{PrincipalID: "s", Role: role.Staff}, CallerStaffID: "STAFF-002"}
	hr      = ActorContext{Access: role.Access{PrincipalID: "h", Role: role.HR}}
	nobody  = ActorContext{Access: role.Access{PrincipalID: "n", Role: role.Staff}}
)

func TestCanSubmit(t *testing.T) {
	tests := []struct {
		name        string
		ctx         SubmitContext
		wantAllowed bool
	}{
		{"staff sends own report", SubmitContext{ActorContext: jordan, Direction: FromStaff, StaffID: "STAFF-001"}, true},
		{"staff cannot send as someone else", SubmitContext{ActorContext: jordan, Direction: FromStaff, StaffID: "STAFF-002"}, false},
		{"unlinked principal cannot send", SubmitContext{ActorContext: nobody, Direction: FromStaff, StaffID: ""}, false},
		{"manager messages staff", SubmitContext{ActorContext: manager, Direction: FromManager, StaffID: "STAFF-001"}, true},
		{"staff cannot message as manager", SubmitContext{ActorContext: jordan, Direction: FromManager, StaffID: "STAFF-002"}, false},
		{"hr without management cannot message", SubmitContext{ActorContext: hr, Direction: FromManager, StaffID: "STAFF-001"}, false},
		{"unknown direction", SubmitContext{ActorContext: manager, Direction: "sideways", StaffID: "STAFF-001"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanSubmit(tt.ctx)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("CanSubmit() Allowed = %v, want %v (reason %q)", result.Allowed, tt.wantAllowed, result.Reason)
			}
			if !result.Allowed && result.Reason == "" {
				t.Error("denied result must carry a reason")
			}
		})
	}
}

func TestCanListForStaff(t *testing.T) {
	tests := []struct {
		name        string
		ctx         ActorContext
		staffID     string
		wantAllowed bool
	}{
		{"manager lists anyone", manager, "STAFF-002", true},
		{"hr lists anyone", hr, "STAFF-002", true},
		{"staff lists own", jordan, "STAFF-001", true},
		{"staff cannot list others", jordan, "STAFF-002", false},
		{"unlinked cannot list", nobody, "STAFF-001", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanListForStaff(tt.ctx, tt.staffID).Allowed; got != tt.wantAllowed {
				t.Errorf("CanListForStaff() = %v, want %v", got, tt.wantAllowed)
			}
		})
	}
}

func TestCanReadInbox(t *testing.T) {
	if !CanReadInbox(manager).Allowed {
		t.Error("manager should read inbox")
	}
	if CanReadInbox(jordan).Allowed {
		t.Error("staff should not read inbox")
	}
}

func TestCanMarkRead(t *testing.T) {
	tests := []struct {
		name        string
		ctx         MessageContext
		wantAllowed bool
	}{
		{"manager reads staff report", MessageContext{ActorContext: manager, ReportID: "RPT-1", Direction: FromStaff, StaffID: "STAFF-001"}, true},
		{"sender cannot mark own report read", MessageContext{ActorContext: jordan, ReportID: "RPT-1", Direction: FromStaff, StaffID: "STAFF-001"}, false},
		{"addressed staff reads manager note", MessageContext{ActorContext: jordan, ReportID: "RPT-2", Direction: FromManager, StaffID: "STAFF-001"}, true},
		{"other staff cannot read manager note", MessageContext{ActorContext: sam, ReportID: "RPT-2", Direction: FromManager, StaffID: "STAFF-001"}, false},
		{"manager is not recipient of own note", MessageContext{ActorContext: manager, ReportID: "RPT-2", Direction: FromManager, StaffID: "STAFF-001"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanMarkRead(tt.ctx).Allowed; got != tt.wantAllowed {
				t.Errorf("CanMarkRead() = %v, want %v", got, tt.wantAllowed)
			}
		})
	}
}

func TestCanDelete(t *testing.T) {
	tests := []struct {
		name        string
		ctx         MessageContext
		wantAllowed bool
	}{
		{"manager deletes any", MessageContext{ActorContext: manager, ReportID: "RPT-1", Direction: FromStaff, StaffID: "STAFF-001"}, true},
		{"sender retracts own", MessageContext{ActorContext: jordan, ReportID: "RPT-1", Direction: FromStaff, StaffID: "STAFF-001"}, true},
		{"staff cannot delete manager note", MessageContext{ActorContext: jordan, ReportID: "RPT-2", Direction: FromManager, StaffID: "STAFF-001"}, false},
		{"staff cannot delete others", MessageContext{ActorContext: sam, ReportID: "RPT-1", Direction: FromStaff, StaffID: "STAFF-001"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanDelete(tt.ctx).Allowed; got != tt.wantAllowed {
				t.Errorf("CanDelete() = %v, want %v", got, tt.wantAllowed)
			}
		})
	}
}

func TestValidateBody(t *testing.T) {
	if err := ValidateBody("Deploy is blocked again."); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateBody("  \n"); err == nil {
		t.Error("expected error for blank body")
	}
	if err := ValidateBody(strings.Repeat("a", MaxBodyLength+1)); err == nil {
		t.Error("expected error for oversized body")
	}
}

func TestParseDirection(t *testing.T) {
	if d, err := ParseDirection("from_staff"); err != nil || d != FromStaff {
		t.Errorf("ParseDirection(from_staff) = %q, %v", d, err)
	}
	if _, err := ParseDirection("to_staff"); err == nil {
		t.Error("expected error for unknown direction")
	}
}
