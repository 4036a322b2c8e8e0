package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/example/pulse/internal/ports/primary"
)

// StaffAdapter translates CLI operations to StaffService and LinkService calls.
type StaffAdapter struct {
	staff primary.StaffService
	links primary.LinkService
	out   io.Writer
}

// NewStaffAdapter creates a new StaffAdapter.
func NewStaffAdapter(staff primary.StaffService, links primary.LinkService, out io.Writer) *StaffAdapter {
	return &StaffAdapter{
		staff: staff,
		links: links,
		out:   out,
	}
}

// Create adds a staff record.
func (a *StaffAdapter) Create(ctx context.Context, access primary.Access, req primary.CreateStaffRequest) (*primary.Staff, error) {
	s, err := a.staff.CreateStaff(ctx, access, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Created staff %s: %s\n", s.ID, s.Name)
	if s.Email == "" {
		fmt.Fprintln(a.out, "  No email on file: this record cannot be linked until one is added.")
	}
	return s, nil
}

// List prints the staff directory.
func (a *StaffAdapter) List(ctx context.Context, access primary.Access, filters primary.StaffFilters) ([]*primary.Staff, error) {
	staff, err := a.staff.ListStaff(ctx, access, filters)
	if err != nil {
		return nil, err
	}

	if len(staff) == 0 {
		fmt.Fprintln(a.out, "No staff found.")
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Add your first staff member:")
		fmt.Fprintln(a.out, "  pulse staff create \"Jordan Lee\" --email jordan@example.com")
		return staff, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tTITLE\tDEPARTMENT\tLINKED")
	fmt.Fprintln(w, "--\t----\t-----\t-----\t----------\t------")
	for _, s := range staff {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.Name, orDash(s.Email), orDash(s.Title), orDash(s.Department), orDash(s.LinkedPrincipalID))
	}
	w.Flush()
	return staff, nil
}

// Show prints one staff record. An empty id shows the caller's own record.
func (a *StaffAdapter) Show(ctx context.Context, access primary.Access, staffID string) (*primary.Staff, error) {
	var (
		s   *primary.Staff
		err error
	)
	if staffID == "" {
		s, err = a.staff.GetMyStaff(ctx, access)
	} else {
		s, err = a.staff.GetStaff(ctx, access, staffID)
	}
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "\nStaff: %s\n", s.ID)
	fmt.Fprintf(a.out, "Name:       %s\n", s.Name)
	fmt.Fprintf(a.out, "Email:      %s\n", orDash(s.Email))
	fmt.Fprintf(a.out, "Title:      %s\n", orDash(s.Title))
	fmt.Fprintf(a.out, "Department: %s\n", orDash(s.Department))
	fmt.Fprintf(a.out, "Targets:    %s\n", formatMetrics(s.Targets))
	fmt.Fprintf(a.out, "Linked to:  %s\n", orDash(s.LinkedPrincipalID))
	fmt.Fprintln(a.out)
	return s, nil
}

// Delete removes a staff record.
func (a *StaffAdapter) Delete(ctx context.Context, access primary.Access, staffID string) error {
	if err := a.staff.DeleteStaff(ctx, access, staffID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Staff %s deleted with its check-ins and reports\n", staffID)
	return nil
}

// Import creates staff from roster entries.
func (a *StaffAdapter) Import(ctx context.Context, access primary.Access, reqs []primary.CreateStaffRequest) (*primary.ImportStaffResponse, error) {
	resp, err := a.staff.ImportStaff(ctx, access, reqs)
	if err != nil {
		return resp, err
	}
	for _, s := range resp.Created {
		fmt.Fprintf(a.out, "✓ %s %s\n", s.ID, s.Name)
	}
	for _, email := range resp.Skipped {
		fmt.Fprintf(a.out, "  skipped %s (already on file)\n", email)
	}
	fmt.Fprintf(a.out, "Imported %d, skipped %d\n", len(resp.Created), len(resp.Skipped))
	return resp, nil
}

// Link links the caller to its staff record.
func (a *StaffAdapter) Link(ctx context.Context, principalID, email string) (*primary.LinkResult, error) {
	res, err := a.links.Link(ctx, principalID, email)
	if err != nil {
		return nil, err
	}
	a.printLink(res)
	return res, nil
}

// LinkAll links every unlinked principal.
func (a *StaffAdapter) LinkAll(ctx context.Context, access primary.Access) ([]*primary.LinkResult, error) {
	results, err := a.links.LinkAll(ctx, access)
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		fmt.Fprintln(a.out, "Every principal is already linked.")
		return results, nil
	}

	sort.Slice(results, func(i, j int) bool { return results[i].PrincipalID < results[j].PrincipalID })
	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "PRINCIPAL\tSTAFF\tOUTCOME")
	fmt.Fprintln(w, "---------\t-----\t-------")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.PrincipalID, orDash(r.StaffID), linkOutcome(r.Outcome))
	}
	w.Flush()
	return results, nil
}

func (a *StaffAdapter) printLink(res *primary.LinkResult) {
	switch res.Outcome {
	case "linked":
		fmt.Fprintf(a.out, "✓ %s linked to %s\n", res.PrincipalID, res.StaffID)
	case "already_linked_self":
		fmt.Fprintf(a.out, "%s is already linked to %s\n", res.PrincipalID, res.StaffID)
	case "no_match":
		fmt.Fprintf(a.out, "%s: no staff record has this email. Ask a manager to add you.\n", linkOutcome(res.Outcome))
	case "multiple_matches":
		fmt.Fprintf(a.out, "%s: several staff records share this email. Ask a manager to resolve it.\n", linkOutcome(res.Outcome))
	case "already_linked_other", "race_lost":
		fmt.Fprintf(a.out, "%s: %s belongs to another account.\n", linkOutcome(res.Outcome), res.StaffID)
	case "skipped_owner":
		fmt.Fprintf(a.out, "%s: owners are not linked to staff records.\n", linkOutcome(res.Outcome))
	default:
		fmt.Fprintf(a.out, "%s\n", linkOutcome(res.Outcome))
	}
}
