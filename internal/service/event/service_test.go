package event

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/internal/testutil"
)

func TestRecordWritesAuditAndOutbox(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFixture(t)
	rx := f.Prescription(t, f.Alice, f.Bob)

	err := f.Store.WithinTx(ctx, func(tx repository.Repositories) error {
		return Record(ctx, tx, f.Bob, Change{
			Action:     model.AuditActionCreate,
			EntityType: model.AuditEntityPrescription,
			EntityID:   rx.ID,
			EventType:  model.EventPrescriptionCreated,
			Data:       rx,
			Notify:     &model.Notification{Recipient: "alice@hospital.test"},
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.AuditCount(t, model.AuditEntityPrescription))

	events, err := f.Store.Outbox().GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	var payload model.EventPayload
	require.NoError(t, json.Unmarshal(events[0].Payload, &payload))
	assert.Equal(t, f.Bob.IdentityID, payload.ActorID)
	require.NotNil(t, payload.Notify)
	assert.Equal(t, "alice@hospital.test", payload.Notify.Recipient)
}

func TestRecordRolledBackWithTx(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFixture(t)

	err := f.Store.WithinTx(ctx, func(tx repository.Repositories) error {
		if err := Record(ctx, tx, f.Sam, Change{
			Action:     model.AuditActionDelete,
			EntityType: model.AuditEntityBilling,
			EventType:  model.EventBillDeleted,
		}); err != nil {
			return err
		}
		return stderrors.New("later step failed")
	})
	require.Error(t, err)
	assert.Zero(t, f.AuditCount(t, model.AuditEntityBilling))

	events, err := f.Store.Outbox().GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}
