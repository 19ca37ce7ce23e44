package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "PENDING"
	OutboxStatusProcessed OutboxStatus = "PROCESSED"
	OutboxStatusFailed    OutboxStatus = "FAILED"
)

type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       OutboxStatus    `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	RetryCount   int             `db:"retry_count" json:"retry_count"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
}

// Event types written to the outbox.
const (
	EventAppointmentBooked        = "appointment.booked"
	EventAppointmentStatusChanged = "appointment.status_changed"
	EventAppointmentDeleted       = "appointment.deleted"
	EventPrescriptionCreated      = "prescription.created"
	EventPrescriptionUpdated      = "prescription.updated"
	EventPrescriptionDeleted      = "prescription.deleted"
	EventBillGenerated            = "billing.generated"
	EventBillDeleted              = "billing.deleted"
	EventInventoryChanged         = "inventory.changed"
	EventAccountCreated           = "account.created"
	EventAccountDeleted           = "account.deleted"
)

// Notification is the payload shape the worker turns into an email. Events without a
// recipient are only published.
type Notification struct {
	Recipient string `json:"recipient,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Body      string `json:"body,omitempty"`
}

// EventPayload is what services emit; Data is the entity snapshot.
type EventPayload struct {
	ActorID uuid.UUID     `json:"actor_id"`
	Data    interface{}   `json:"data"`
	Notify  *Notification `json:"notify,omitempty"`
}
