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

type prescriptionRepository struct {
	db sqlx.ExtContext
}

func (r *prescriptionRepository) Create(ctx context.Context, prescription *model.Prescription) error {
	query := `
		INSERT INTO prescriptions (id, patient_id, doctor_id, medicine, dosage, duration, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if prescription.ID == uuid.Nil {
		prescription.ID = uuid.New()
	}
	prescription.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		prescription.ID,
		prescription.PatientID,
		prescription.DoctorID,
		prescription.Medicine,
		prescription.Dosage,
		prescription.Duration,
		prescription.CreatedAt,
	)
	if isForeignKeyViolation(err) {
		return errors.NotFound("patient or doctor", err)
	}
	if err != nil {
		return fmt.Errorf("failed to create prescription: %w", err)
	}
	return nil
}

func (r *prescriptionRepository) Get(ctx context.Context, id uuid.UUID) (*model.Prescription, error) {
	query := `
		SELECT id, patient_id, doctor_id, medicine, dosage, duration, created_at
		FROM prescriptions
		WHERE id = $1
	`
	var prescription model.Prescription
	if err := getOne(ctx, r.db, &prescription, "prescription", query, id); err != nil {
		return nil, err
	}
	return &prescription, nil
}

// Update never touches created_at.
func (r *prescriptionRepository) Update(ctx context.Context, prescription *model.Prescription) error {
	query := `
		UPDATE prescriptions
		SET medicine = $1, dosage = $2, duration = $3
		WHERE id = $4
	`
	result, err := r.db.ExecContext(ctx, query,
		prescription.Medicine,
		prescription.Dosage,
		prescription.Duration,
		prescription.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update prescription: %w", err)
	}
	return expectAffected(result, "prescription")
}

func (r *prescriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM prescriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete prescription: %w", err)
	}
	return expectAffected(result, "prescription")
}

func (r *prescriptionRepository) List(ctx context.Context, filters *model.PrescriptionFilters) ([]*model.PrescriptionView, error) {
	query := `
		SELECT pr.id, pr.patient_id, pr.doctor_id, pr.medicine, pr.dosage, pr.duration, pr.created_at,
			   pi.username AS patient_username,
			   di.username AS doctor_username
		FROM prescriptions pr
		JOIN patients p ON p.id = pr.patient_id
		JOIN identities pi ON pi.id = p.identity_id
		JOIN doctors d ON d.id = pr.doctor_id
		JOIN identities di ON di.id = d.identity_id
		WHERE 1=1
	`
	var args []interface{}
	if filters != nil {
		if filters.PatientID != uuid.Nil {
			args = append(args, filters.PatientID)
			query += fmt.Sprintf(" AND pr.patient_id = $%d", len(args))
		}
		if filters.DoctorID != uuid.Nil {
			args = append(args, filters.DoctorID)
			query += fmt.Sprintf(" AND pr.doctor_id = $%d", len(args))
		}
	}
	query += " ORDER BY pr.created_at DESC"

	var prescriptions []*model.PrescriptionView
	if err := sqlx.SelectContext(ctx, r.db, &prescriptions, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return prescriptions, nil
}
