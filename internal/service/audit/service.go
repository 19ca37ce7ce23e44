package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/policy"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

type Service struct {
	repo repository.AuditRepository
}

func NewService(repo repository.AuditRepository) *Service {
	return &Service{repo: repo}
}

type LogOptions struct {
	Changes interface{}
}

// Log creates an audit log entry through repo, which is usually the transaction-scoped
// repository of the mutation being audited.
func Log(ctx context.Context, repo repository.AuditRepository, actor model.Principal, action, entityType string, entityID uuid.UUID, opts *LogOptions) error {
	changes := json.RawMessage(`{}`)
	if opts != nil && opts.Changes != nil {
		raw, err := json.Marshal(opts.Changes)
		if err != nil {
			return fmt.Errorf("failed to marshal audit changes: %w", err)
		}
		changes = raw
	}

	entry := &model.AuditLog{
		ID:         uuid.New(),
		IdentityID: actor.IdentityID,
		Role:       actor.Role,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Changes:    changes,
	}
	if err := repo.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// List is restricted to staff.
func (s *Service) List(ctx context.Context, actor model.Principal, filters *model.AuditFilters) ([]*model.AuditLog, error) {
	if err := policy.Enforce(actor, policy.ViewAuditLog, policy.Resource{}); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, filters)
}
