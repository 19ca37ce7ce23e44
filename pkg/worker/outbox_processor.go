package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/jwalitptl/hospital-api/internal/email"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/pkg/messaging"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
)

type OutboxProcessorConfig struct {
	BatchSize    int
	PollInterval time.Duration
	// MaxRetries is the number of failed deliveries after which an event is parked as
	// FAILED.
	MaxRetries int
}

type OutboxProcessor struct {
	repo    repository.OutboxRepository
	broker  messaging.Broker
	mailer  email.Service
	config  OutboxProcessorConfig
	logger  *zap.Logger
	metrics *metrics.Metrics

	// published holds events whose broker publish succeeded but whose notification
	// mail has not gone out yet, so a retry only resends the mail.
	published map[uuid.UUID]struct{}
}

// NewOutboxProcessor validates config up front; a nil mailer disables notification
// emails.
func NewOutboxProcessor(
	repo repository.OutboxRepository,
	broker messaging.Broker,
	mailer email.Service,
	config OutboxProcessorConfig,
	logger *zap.Logger,
	metrics *metrics.Metrics,
) (*OutboxProcessor, error) {
	if config.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be greater than 0")
	}
	if config.PollInterval <= 0 {
		return nil, fmt.Errorf("poll interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return nil, fmt.Errorf("max retries must be greater than 0")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OutboxProcessor{
		repo:      repo,
		broker:    broker,
		mailer:    mailer,
		config:    config,
		logger:    logger,
		metrics:   metrics,
		published: make(map[uuid.UUID]struct{}),
	}, nil
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("starting outbox processor",
		zap.Int("batch_size", p.config.BatchSize),
		zap.Duration("poll_interval", p.config.PollInterval))

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("shutting down outbox processor")
			return
		case <-ticker.C:
			if _, err := p.processEvents(ctx); err != nil {
				p.logger.Error("failed to process events", zap.Error(err))
			}
		}
	}
}

// processEvents handles one batch and returns how many events were delivered.
func (p *OutboxProcessor) processEvents(ctx context.Context) (int, error) {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	events, err := p.repo.GetPendingEvents(ctx, p.config.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to get pending events: %w", err)
	}
	p.metrics.OutboxQueueSize.Set(float64(len(events)))

	delivered := 0
	for _, event := range events {
		if err := p.processEvent(ctx, event); err != nil {
			p.logger.Warn("failed to deliver event",
				zap.String("event_id", event.ID.String()),
				zap.String("event_type", event.EventType),
				zap.Int("retry_count", event.RetryCount),
				zap.Error(err))
			continue
		}
		delivered++
	}
	return delivered, nil
}

func (p *OutboxProcessor) processEvent(ctx context.Context, event *model.OutboxEvent) error {
	if err := p.deliver(ctx, event); err != nil {
		p.markFailure(ctx, event, err)
		return err
	}

	delete(p.published, event.ID)
	p.metrics.OutboxEventsProcessed.Inc()
	if err := p.repo.UpdateStatus(ctx, event.ID, model.OutboxStatusProcessed, nil); err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}
	return nil
}

// deliver publishes the event and sends its notification mail. Delivery is at least once:
// a mail failure does not republish on retry, but a restart in between does.
func (p *OutboxProcessor) deliver(ctx context.Context, event *model.OutboxEvent) error {
	if _, ok := p.published[event.ID]; !ok {
		if err := p.broker.Publish(ctx, messaging.Channel(event.EventType), event.Payload); err != nil {
			return err
		}
		p.published[event.ID] = struct{}{}
	}

	if p.mailer == nil {
		return nil
	}
	var payload model.EventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}
	if payload.Notify == nil || payload.Notify.Recipient == "" {
		return nil
	}

	if err := p.mailer.SendCustom(ctx, payload.Notify.Recipient, payload.Notify.Subject, payload.Notify.Body); err != nil {
		p.metrics.EmailsSent.WithLabelValues("error").Inc()
		return err
	}
	p.metrics.EmailsSent.WithLabelValues("sent").Inc()
	return nil
}

// markFailure keeps the event PENDING for another poll until MaxRetries deliveries have
// failed, then parks it as FAILED.
func (p *OutboxProcessor) markFailure(ctx context.Context, event *model.OutboxEvent, cause error) {
	p.metrics.OutboxRetries.WithLabelValues(event.EventType).Inc()

	status := model.OutboxStatusPending
	if event.RetryCount+1 >= p.config.MaxRetries {
		status = model.OutboxStatusFailed
		delete(p.published, event.ID)
		p.metrics.OutboxEventsFailed.Inc()
	}

	msg := cause.Error()
	if err := p.repo.UpdateStatus(ctx, event.ID, status, &msg); err != nil {
		p.logger.Error("failed to update event status",
			zap.String("event_id", event.ID.String()),
			zap.Error(err))
	}
}
