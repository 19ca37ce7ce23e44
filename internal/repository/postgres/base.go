package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/pkg/errors"
)

// Store is the postgres-backed repository.Store. Outside WithinTx every repository runs
// against the pool; inside, against the transaction.
type Store struct {
	db *sqlx.DB
	repositories
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, repositories: repositories{db: db}}
}

// WithinTx executes fn within a transaction
func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Repositories) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(repositories{db: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// repositories binds every repository to one sqlx.ExtContext, either *sqlx.DB or *sqlx.Tx.
type repositories struct {
	db sqlx.ExtContext
}

func (r repositories) Identities() repository.IdentityRepository {
	return &identityRepository{db: r.db}
}

func (r repositories) Patients() repository.PatientRepository {
	return &patientRepository{db: r.db}
}

func (r repositories) Doctors() repository.DoctorRepository {
	return &doctorRepository{db: r.db}
}

func (r repositories) Staff() repository.StaffRepository {
	return &staffRepository{db: r.db}
}

func (r repositories) Appointments() repository.AppointmentRepository {
	return &appointmentRepository{db: r.db}
}

func (r repositories) Prescriptions() repository.PrescriptionRepository {
	return &prescriptionRepository{db: r.db}
}

func (r repositories) Billing() repository.BillingRepository {
	return &billingRepository{db: r.db}
}

func (r repositories) Inventory() repository.InventoryRepository {
	return &inventoryRepository{db: r.db}
}

func (r repositories) Audit() repository.AuditRepository {
	return &auditRepository{db: r.db}
}

func (r repositories) Outbox() repository.OutboxRepository {
	return &outboxRepository{db: r.db}
}

// getOne maps sql.ErrNoRows onto a not-found AppError.
func getOne(ctx context.Context, db sqlx.QueryerContext, dest interface{}, resource, query string, args ...interface{}) error {
	err := sqlx.GetContext(ctx, db, dest, query, args...)
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NotFound(resource, err)
	}
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", resource, err)
	}
	return nil
}

// expectAffected turns a zero-row update or delete into a not-found AppError.
func expectAffected(result sql.Result, resource string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return errors.NotFound(resource, nil)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return stderrors.As(err, &pqErr) && pqErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return stderrors.As(err, &pqErr) && pqErr.Code == "23503"
}
