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

type patientRepository struct {
	db sqlx.ExtContext
}

const patientViewColumns = `
	p.id, p.identity_id, p.dob, p.address, p.phone, p.medical_history, p.created_at,
	i.username, i.first_name, i.last_name, i.email
`

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (id, identity_id, dob, address, phone, medical_history, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if patient.ID == uuid.Nil {
		patient.ID = uuid.New()
	}
	patient.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.IdentityID,
		patient.DateOfBirth,
		patient.Address,
		patient.Phone,
		patient.MedicalHistory,
		patient.CreatedAt,
	)
	if isUniqueViolation(err) {
		return errors.Conflict("identity already has a patient profile")
	}
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.PatientView, error) {
	query := `SELECT ` + patientViewColumns + `
		FROM patients p
		JOIN identities i ON i.id = p.identity_id
		WHERE p.id = $1
	`
	var patient model.PatientView
	if err := getOne(ctx, r.db, &patient, "patient", query, id); err != nil {
		return nil, err
	}
	return &patient, nil
}

func (r *patientRepository) GetByIdentity(ctx context.Context, identityID uuid.UUID) (*model.Patient, error) {
	query := `
		SELECT id, identity_id, dob, address, phone, medical_history, created_at
		FROM patients
		WHERE identity_id = $1
	`
	var patient model.Patient
	if err := getOne(ctx, r.db, &patient, "patient", query, identityID); err != nil {
		return nil, err
	}
	return &patient, nil
}

func (r *patientRepository) List(ctx context.Context) ([]*model.PatientView, error) {
	query := `SELECT ` + patientViewColumns + `
		FROM patients p
		JOIN identities i ON i.id = p.identity_id
		ORDER BY i.username
	`
	var patients []*model.PatientView
	if err := sqlx.SelectContext(ctx, r.db, &patients, query); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}
