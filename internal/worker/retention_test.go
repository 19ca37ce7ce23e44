package worker

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository/memory"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
)

func TestRetentionCleanup(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	now := time.Now()

	require.NoError(t, store.Audit().Create(ctx, &model.AuditLog{
		IdentityID: uuid.New(), Action: model.AuditActionCreate, CreatedAt: now.AddDate(0, 0, -100),
	}))
	require.NoError(t, store.Audit().Create(ctx, &model.AuditLog{
		IdentityID: uuid.New(), Action: model.AuditActionCreate, CreatedAt: now.AddDate(0, 0, -1),
	}))

	done := &model.OutboxEvent{EventType: model.EventBillGenerated, Payload: []byte(`{}`)}
	require.NoError(t, store.Outbox().Create(ctx, done))
	require.NoError(t, store.Outbox().UpdateStatus(ctx, done.ID, model.OutboxStatusProcessed, nil))
	pending := &model.OutboxEvent{EventType: model.EventBillGenerated, Payload: []byte(`{}`)}
	require.NoError(t, store.Outbox().Create(ctx, pending))

	m := metrics.NewMetrics(prometheus.NewRegistry(), "test", "worker")
	w := NewRetentionWorker(store.Audit(), store.Outbox(), 90, time.Hour, time.Minute, zap.NewNop(), m)
	w.now = func() time.Time { return now.Add(2 * time.Hour) }

	require.NoError(t, w.cleanup(ctx))

	logs, err := store.Audit().List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuditLogsPurged))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxRowsPurged))

	events, err := store.Outbox().GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, pending.ID, events[0].ID)
}
