package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	IdentityID uuid.UUID       `json:"identity_id" db:"identity_id"`
	Role       RoleKind        `json:"role" db:"role"`
	Action     string          `json:"action" db:"action"`
	EntityType string          `json:"entity_type" db:"entity_type"`
	EntityID   uuid.UUID       `json:"entity_id" db:"entity_id"`
	Changes    json.RawMessage `json:"changes,omitempty" db:"changes"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

const (
	// Action types
	AuditActionCreate     = "create"
	AuditActionUpdate     = "update"
	AuditActionDelete     = "delete"
	AuditActionTransition = "transition"
	AuditActionLogin      = "login"
	AuditActionLogout     = "logout"

	// Entity types
	AuditEntityIdentity     = "identity"
	AuditEntityAppointment  = "appointment"
	AuditEntityPrescription = "prescription"
	AuditEntityBilling      = "billing"
	AuditEntityInventory    = "inventory"
)

type AuditFilters struct {
	IdentityID uuid.UUID
	EntityType string
	Limit      int
}
