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

type appointmentRepository struct {
	db sqlx.ExtContext
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, doctor_id, date, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	if appointment.Status == "" {
		appointment.Status = model.AppointmentStatusScheduled
	}
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = appointment.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.Date,
		appointment.Status,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if isForeignKeyViolation(err) {
		return errors.NotFound("patient or doctor", err)
	}
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, patient_id, doctor_id, date, status, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var appointment model.Appointment
	if err := getOne(ctx, r.db, &appointment, "appointment", query, id); err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET date = $1, status = $2, updated_at = $3
		WHERE id = $4
	`
	appointment.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		appointment.Date,
		appointment.Status,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	return expectAffected(result, "appointment")
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	return expectAffected(result, "appointment")
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.AppointmentView, error) {
	query := `
		SELECT a.id, a.patient_id, a.doctor_id, a.date, a.status, a.created_at, a.updated_at,
			   pi.username AS patient_username,
			   di.username AS doctor_username,
			   d.specialty AS doctor_specialty
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		JOIN identities pi ON pi.id = p.identity_id
		JOIN doctors d ON d.id = a.doctor_id
		JOIN identities di ON di.id = d.identity_id
		WHERE 1=1
	`
	var args []interface{}
	if filters != nil {
		if filters.PatientID != uuid.Nil {
			args = append(args, filters.PatientID)
			query += fmt.Sprintf(" AND a.patient_id = $%d", len(args))
		}
		if filters.DoctorID != uuid.Nil {
			args = append(args, filters.DoctorID)
			query += fmt.Sprintf(" AND a.doctor_id = $%d", len(args))
		}
		if filters.Status != "" {
			args = append(args, filters.Status)
			query += fmt.Sprintf(" AND a.status = $%d", len(args))
		}
	}
	query += " ORDER BY a.date ASC"

	var appointments []*model.AppointmentView
	if err := sqlx.SelectContext(ctx, r.db, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) HasCareRelation(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM appointments WHERE doctor_id = $1 AND patient_id = $2)`
	var exists bool
	if err := sqlx.GetContext(ctx, r.db, &exists, query, doctorID, patientID); err != nil {
		return false, fmt.Errorf("failed to check care relation: %w", err)
	}
	return exists, nil
}
