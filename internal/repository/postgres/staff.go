package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/pkg/errors"
)

type staffRepository struct {
	db sqlx.ExtContext
}

const staffViewColumns = `
	s.id, s.identity_id, s.role, s.phone, s.created_at,
	i.username, i.first_name, i.last_name
`

func (r *staffRepository) Create(ctx context.Context, staff *model.Staff) error {
	query := `
		INSERT INTO staff (id, identity_id, role, phone, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if staff.ID == uuid.Nil {
		staff.ID = uuid.New()
	}
	staff.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		staff.ID,
		staff.IdentityID,
		staff.Role,
		staff.Phone,
		staff.CreatedAt,
	)
	if isUniqueViolation(err) {
		return errors.Conflict("identity already has a staff profile")
	}
	if err != nil {
		return fmt.Errorf("failed to create staff: %w", err)
	}
	return nil
}

func (r *staffRepository) Get(ctx context.Context, id uuid.UUID) (*model.StaffView, error) {
	query := `SELECT ` + staffViewColumns + `
		FROM staff s
		JOIN identities i ON i.id = s.identity_id
		WHERE s.id = $1
	`
	var staff model.StaffView
	if err := getOne(ctx, r.db, &staff, "staff", query, id); err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepository) GetByIdentity(ctx context.Context, identityID uuid.UUID) (*model.Staff, error) {
	query := `
		SELECT id, identity_id, role, phone, created_at
		FROM staff
		WHERE identity_id = $1
	`
	var staff model.Staff
	if err := getOne(ctx, r.db, &staff, "staff", query, identityID); err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepository) List(ctx context.Context) ([]*model.StaffView, error) {
	query := `SELECT ` + staffViewColumns + `
		FROM staff s
		JOIN identities i ON i.id = s.identity_id
		ORDER BY i.username
	`
	var staff []*model.StaffView
	if err := sqlx.SelectContext(ctx, r.db, &staff, query); err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return staff, nil
}
