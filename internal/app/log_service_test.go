package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/pulse/internal/apperr"
	"github.com/example/pulse/internal/ctxutil"
	"github.com/example/pulse/internal/ports/primary"
)

func TestAuditLog_RecordsActorsAndGuards(t *testing.T) {
	h := newHarness(t)
	owner := h.owner(t, "auth|owner")
	ctx := ctxutil.WithPrincipalID(context.Background(), "auth|owner")

	staffID := h.addStaffCtx(t, ctx, owner, "Avery", "avery@example.com")

	entries, err := h.audit.ListLogs(context.Background(), owner, primary.LogFilters{EntityType: "staff", EntityID: staffID})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "create", entries[0].Action)
	assert.Equal(t, "auth|owner", entries[0].ActorID)

	got, err := h.audit.GetLog(context.Background(), owner, entries[0].ID)
	require.NoError(t, err)
	assert.Equal(t, staffID, got.EntityID)

	_, err = h.audit.GetLog(context.Background(), owner, "AUD-9999")
	assert.True(t, apperr.IsNotFound(err), "got %v", err)

	h.register(t, "auth|staff", "staff@example.com")
	staff := h.access.Resolve(context.Background(), "auth|staff")
	_, err = h.audit.ListLogs(context.Background(), staff, primary.LogFilters{})
	assert.True(t, apperr.IsAuthorization(err), "got %v", err)
}

func TestAuditLog_Prune(t *testing.T) {
	h := newHarness(t)
	owner := h.owner(t, "auth|owner")
	ctx := context.Background()

	_, err := h.audit.PruneLogs(ctx, owner, 0)
	assert.True(t, apperr.IsValidation(err), "got %v", err)

	h.register(t, "auth|hr", "hr@example.com")
	require.NoError(t, h.roles.AssignRole(ctx, owner, "auth|hr", "hr"))
	hr := h.access.Resolve(ctx, "auth|hr")
	_, err = h.audit.PruneLogs(ctx, hr, 30)
	assert.True(t, apperr.IsAuthorization(err), "got %v", err)

	removed, err := h.audit.PruneLogs(ctx, owner, 30)
	require.NoError(t, err)
	assert.Equal(t, 0, removed, "fresh entries are kept")
}
