package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mymoolah/walletcore/internal/domain"
)

func TestRenameAccountIsAuditedAndPublished(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	before, err := h.ledger.GetAccount(ctx, "4000")
	require.NoError(t, err)

	renamed, err := h.ledger.RenameAccount(ctx, "4000", "  Platform fee revenue  ")
	require.NoError(t, err)
	assert.Equal(t, "Platform fee revenue", renamed.Name)
	assert.Equal(t, before.Type, renamed.Type)

	logs, err := h.audit.GetByResourceID(ctx, domain.AggregateTypeAccount, before.ID)
	require.NoError(t, err)
	var actions []string
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	assert.Contains(t, actions, string(domain.AuditActionAccountRename))

	events, err := h.outbox.GetUnpublished(ctx, 1000, 0)
	require.NoError(t, err)
	var found *domain.OutboxEvent
	for _, e := range events {
		if e.EventType == domain.EventTypeAccountRenamed && e.AggregateID == before.ID {
			found = e
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, before.Name, found.Payload["old_name"])
	assert.Equal(t, "Platform fee revenue", found.Payload["name"])

	_, err = h.ledger.RenameAccount(ctx, "9999", "missing")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}
