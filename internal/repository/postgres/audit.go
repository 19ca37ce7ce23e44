package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hospital-api/internal/model"
)

type auditRepository struct {
	db sqlx.ExtContext
}

func (r *auditRepository) Create(ctx context.Context, log *model.AuditLog) error {
	query := `
		INSERT INTO audit_logs (
			id, identity_id, role, action, entity_type, entity_id, changes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	changes := log.Changes
	if len(changes) == 0 {
		changes = []byte("{}")
	}

	_, err := r.db.ExecContext(ctx, query,
		log.ID,
		log.IdentityID,
		log.Role,
		log.Action,
		log.EntityType,
		log.EntityID,
		[]byte(changes),
		log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

func (r *auditRepository) List(ctx context.Context, filters *model.AuditFilters) ([]*model.AuditLog, error) {
	query := `
		SELECT id, identity_id, role, action, entity_type, entity_id, changes, created_at
		FROM audit_logs
		WHERE 1=1
	`
	var args []interface{}
	limit := 100
	if filters != nil {
		if filters.IdentityID != uuid.Nil {
			args = append(args, filters.IdentityID)
			query += fmt.Sprintf(" AND identity_id = $%d", len(args))
		}
		if filters.EntityType != "" {
			args = append(args, filters.EntityType)
			query += fmt.Sprintf(" AND entity_type = $%d", len(args))
		}
		if filters.Limit > 0 {
			limit = filters.Limit
		}
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	var logs []*model.AuditLog
	if err := sqlx.SelectContext(ctx, r.db, &logs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, nil
}

func (r *auditRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup audit logs: %w", err)
	}
	return result.RowsAffected()
}
