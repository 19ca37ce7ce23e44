package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
)

// RetentionWorker purges audit rows older than the retention window and processed outbox
// rows older than the outbox retention.
type RetentionWorker struct {
	audit           repository.AuditRepository
	outbox          repository.OutboxRepository
	retentionDays   int
	outboxRetention time.Duration
	cleanupInterval time.Duration
	logger          *zap.Logger
	metrics         *metrics.Metrics
	now             func() time.Time
}

func NewRetentionWorker(
	audit repository.AuditRepository,
	outbox repository.OutboxRepository,
	retentionDays int,
	outboxRetention time.Duration,
	cleanupInterval time.Duration,
	logger *zap.Logger,
	metrics *metrics.Metrics,
) *RetentionWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetentionWorker{
		audit:           audit,
		outbox:          outbox,
		retentionDays:   retentionDays,
		outboxRetention: outboxRetention,
		cleanupInterval: cleanupInterval,
		logger:          logger,
		metrics:         metrics,
		now:             time.Now,
	}
}

func (w *RetentionWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.cleanup(ctx); err != nil {
				w.logger.Error("retention cleanup failed", zap.Error(err))
			}
		}
	}
}

func (w *RetentionWorker) cleanup(ctx context.Context) error {
	now := w.now()

	if w.retentionDays > 0 {
		cutoff := now.AddDate(0, 0, -w.retentionDays)
		rows, err := w.audit.DeleteBefore(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("failed to cleanup audit logs: %w", err)
		}
		w.metrics.AuditLogsPurged.Add(float64(rows))
		w.logger.Info("cleaned up audit logs", zap.Int64("rows", rows), zap.Time("cutoff", cutoff))
	}

	if w.outboxRetention > 0 {
		cutoff := now.Add(-w.outboxRetention)
		rows, err := w.outbox.DeleteProcessedBefore(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("failed to cleanup outbox events: %w", err)
		}
		w.metrics.OutboxRowsPurged.Add(float64(rows))
		w.logger.Info("cleaned up outbox events", zap.Int64("rows", rows), zap.Time("cutoff", cutoff))
	}
	return nil
}
