package postgres

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/pkg/errors"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(sqlx.NewDb(db, "sqlmock")), mock
}

func createDoctorAccount(ctx context.Context, tx repository.Repositories) error {
	identity := &model.Identity{Username: "bob", PasswordHash: "hash"}
	if err := tx.Identities().Create(ctx, identity); err != nil {
		return err
	}
	return tx.Doctors().Create(ctx, &model.Doctor{IdentityID: identity.ID, Specialty: "Cardiology", Phone: "555"})
}

func TestWithinTxCommits(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO identities").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO doctors").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.WithinTx(context.Background(), func(tx repository.Repositories) error {
		return createDoctorAccount(context.Background(), tx)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTxRollsBackOnProfileFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO identities").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO doctors").WillReturnError(stderrors.New("disk full"))
	mock.ExpectRollback()

	err := store.WithinTx(context.Background(), func(tx repository.Repositories) error {
		return createDoctorAccount(context.Background(), tx)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create doctor")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTxRollsBackOnPanic(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = store.WithinTx(context.Background(), func(tx repository.Repositories) error {
			panic("boom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDuplicateUsernameIsConflict(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO identities").WillReturnError(&pq.Error{Code: "23505"})

	err := store.Identities().Create(context.Background(), &model.Identity{Username: "alice", PasswordHash: "x"})
	assert.True(t, errors.Is(err, errors.ErrConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMissingRowIsNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectQuery("FROM appointments").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "patient_id", "doctor_id", "date", "status", "created_at", "updated_at"}))

	_, err := store.Appointments().Get(context.Background(), id)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAppointment(t *testing.T) {
	store, mock := newMockStore(t)
	id, patientID, doctorID := uuid.New(), uuid.New(), uuid.New()
	date := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM appointments").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "patient_id", "doctor_id", "date", "status", "created_at", "updated_at"}).
			AddRow(id.String(), patientID.String(), doctorID.String(), date, "Completed", date, date))

	apt, err := store.Appointments().Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, patientID, apt.PatientID)
	assert.Equal(t, doctorID, apt.DoctorID)
	assert.Equal(t, model.AppointmentStatusCompleted, apt.Status)
}

func TestDeleteMissingRowIsNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM billing").WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Billing().Delete(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestHasCareRelation(t *testing.T) {
	store, mock := newMockStore(t)
	doctorID, patientID := uuid.New(), uuid.New()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(doctorID, patientID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := store.Appointments().HasCareRelation(context.Background(), doctorID, patientID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPrescriptionUpdateLeavesCreatedAt(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE prescriptions\s+SET medicine = \$1, dosage = \$2, duration = \$3\s+WHERE id = \$4`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Prescriptions().Update(context.Background(), &model.Prescription{
		Base:     model.Base{ID: uuid.New()},
		Medicine: "Ibuprofen",
		Dosage:   "200mg",
		Duration: "5 days",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
