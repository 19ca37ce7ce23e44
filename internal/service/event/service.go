// Package event records the side effects every mutation leaves behind: an audit row and an
// outbox event, both written in the caller's transaction.
package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/internal/service/audit"
)

// Change describes one committed mutation.
type Change struct {
	Action     string
	EntityType string
	EntityID   uuid.UUID
	EventType  string
	Data       interface{}
	Notify     *model.Notification
}

// Record writes the audit log row and the outbox event for c using tx.
func Record(ctx context.Context, tx repository.Repositories, actor model.Principal, c Change) error {
	if err := audit.Log(ctx, tx.Audit(), actor, c.Action, c.EntityType, c.EntityID, &audit.LogOptions{Changes: c.Data}); err != nil {
		return err
	}

	payload, err := json.Marshal(model.EventPayload{
		ActorID: actor.IdentityID,
		Data:    c.Data,
		Notify:  c.Notify,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	event := &model.OutboxEvent{
		EventType: c.EventType,
		Payload:   payload,
		Status:    model.OutboxStatusPending,
	}
	if err := tx.Outbox().Create(ctx, event); err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}
