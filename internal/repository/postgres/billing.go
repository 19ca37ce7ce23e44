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

type billingRepository struct {
	db sqlx.ExtContext
}

func (r *billingRepository) Create(ctx context.Context, bill *model.Billing) error {
	query := `
		INSERT INTO billing (id, patient_id, doctor_id, amount, date, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if bill.ID == uuid.Nil {
		bill.ID = uuid.New()
	}
	bill.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		bill.ID,
		bill.PatientID,
		bill.DoctorID,
		bill.Amount,
		bill.Date,
		bill.Description,
		bill.CreatedAt,
	)
	if isForeignKeyViolation(err) {
		return errors.NotFound("patient or doctor", err)
	}
	if err != nil {
		return fmt.Errorf("failed to create bill: %w", err)
	}
	return nil
}

func (r *billingRepository) Get(ctx context.Context, id uuid.UUID) (*model.Billing, error) {
	query := `
		SELECT id, patient_id, doctor_id, amount, date, description, created_at
		FROM billing
		WHERE id = $1
	`
	var bill model.Billing
	if err := getOne(ctx, r.db, &bill, "bill", query, id); err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *billingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM billing WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	return expectAffected(result, "bill")
}

func (r *billingRepository) List(ctx context.Context, filters *model.BillingFilters) ([]*model.BillingView, error) {
	query := `
		SELECT b.id, b.patient_id, b.doctor_id, b.amount, b.date, b.description, b.created_at,
			   pi.username AS patient_username,
			   di.username AS doctor_username
		FROM billing b
		JOIN patients p ON p.id = b.patient_id
		JOIN identities pi ON pi.id = p.identity_id
		JOIN doctors d ON d.id = b.doctor_id
		JOIN identities di ON di.id = d.identity_id
		WHERE 1=1
	`
	var args []interface{}
	if filters != nil && filters.PatientID != uuid.Nil {
		args = append(args, filters.PatientID)
		query += fmt.Sprintf(" AND b.patient_id = $%d", len(args))
	}
	query += " ORDER BY b.date DESC, b.created_at DESC"

	var bills []*model.BillingView
	if err := sqlx.SelectContext(ctx, r.db, &bills, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	return bills, nil
}
