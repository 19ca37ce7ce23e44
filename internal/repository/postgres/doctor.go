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

type doctorRepository struct {
	db sqlx.ExtContext
}

const doctorViewColumns = `
	d.id, d.identity_id, d.specialty, d.phone, d.created_at,
	i.username, i.first_name, i.last_name
`

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	query := `
		INSERT INTO doctors (id, identity_id, specialty, phone, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if doctor.ID == uuid.Nil {
		doctor.ID = uuid.New()
	}
	doctor.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		doctor.ID,
		doctor.IdentityID,
		doctor.Specialty,
		doctor.Phone,
		doctor.CreatedAt,
	)
	if isUniqueViolation(err) {
		return errors.Conflict("identity already has a doctor profile")
	}
	if err != nil {
		return fmt.Errorf("failed to create doctor: %w", err)
	}
	return nil
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.DoctorView, error) {
	query := `SELECT ` + doctorViewColumns + `
		FROM doctors d
		JOIN identities i ON i.id = d.identity_id
		WHERE d.id = $1
	`
	var doctor model.DoctorView
	if err := getOne(ctx, r.db, &doctor, "doctor", query, id); err != nil {
		return nil, err
	}
	return &doctor, nil
}

func (r *doctorRepository) GetByIdentity(ctx context.Context, identityID uuid.UUID) (*model.Doctor, error) {
	query := `
		SELECT id, identity_id, specialty, phone, created_at
		FROM doctors
		WHERE identity_id = $1
	`
	var doctor model.Doctor
	if err := getOne(ctx, r.db, &doctor, "doctor", query, identityID); err != nil {
		return nil, err
	}
	return &doctor, nil
}

func (r *doctorRepository) List(ctx context.Context) ([]*model.DoctorView, error) {
	query := `SELECT ` + doctorViewColumns + `
		FROM doctors d
		JOIN identities i ON i.id = d.identity_id
		ORDER BY i.username
	`
	var doctors []*model.DoctorView
	if err := sqlx.SelectContext(ctx, r.db, &doctors, query); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}
