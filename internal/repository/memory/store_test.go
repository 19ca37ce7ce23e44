package memory

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/pkg/errors"
)

func seed(t *testing.T) (*Store, *model.Patient, *model.Doctor, *model.Identity) {
	t.Helper()
	ctx := context.Background()
	s := NewStore()

	alice := &model.Identity{Username: "alice"}
	require.NoError(t, s.Identities().Create(ctx, alice))
	patient := &model.Patient{IdentityID: alice.ID, Address: "1 Main St", Phone: "555"}
	require.NoError(t, s.Patients().Create(ctx, patient))

	bob := &model.Identity{Username: "bob"}
	require.NoError(t, s.Identities().Create(ctx, bob))
	doctor := &model.Doctor{IdentityID: bob.ID, Specialty: "Cardiology", Phone: "555"}
	require.NoError(t, s.Doctors().Create(ctx, doctor))

	return s, patient, doctor, bob
}

func TestDuplicateUsername(t *testing.T) {
	s, _, _, _ := seed(t)

	err := s.Identities().Create(context.Background(), &model.Identity{Username: "alice"})
	assert.True(t, errors.Is(err, errors.ErrConflict))
}

func TestDeleteIdentityCascades(t *testing.T) {
	ctx := context.Background()
	s, patient, doctor, bob := seed(t)

	apt := &model.Appointment{PatientID: patient.ID, DoctorID: doctor.ID, Date: time.Now()}
	require.NoError(t, s.Appointments().Create(ctx, apt))
	rx := &model.Prescription{PatientID: patient.ID, DoctorID: doctor.ID, Medicine: "Aspirin"}
	require.NoError(t, s.Prescriptions().Create(ctx, rx))
	bill := &model.Billing{PatientID: patient.ID, DoctorID: doctor.ID, Amount: decimal.NewFromInt(10)}
	require.NoError(t, s.Billing().Create(ctx, bill))

	require.NoError(t, s.Identities().Delete(ctx, bob.ID))

	_, err := s.Doctors().Get(ctx, doctor.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	_, err = s.Appointments().Get(ctx, apt.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	_, err = s.Prescriptions().Get(ctx, rx.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	_, err = s.Billing().Get(ctx, bill.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	// the patient side is untouched
	_, err = s.Patients().Get(ctx, patient.ID)
	assert.NoError(t, err)
}

func TestWithinTxRestoresOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	err := s.WithinTx(ctx, func(tx repository.Repositories) error {
		identity := &model.Identity{Username: "carol"}
		if err := tx.Identities().Create(ctx, identity); err != nil {
			return err
		}
		return stderrors.New("profile write failed")
	})
	require.Error(t, err)

	_, err = s.Identities().GetByUsername(ctx, "carol")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestWithinTxRestoresOnPanic(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	assert.Panics(t, func() {
		_ = s.WithinTx(ctx, func(tx repository.Repositories) error {
			_ = tx.Inventory().Create(ctx, &model.Inventory{ItemName: "Gauze", Quantity: 3})
			panic("boom")
		})
	})

	items, err := s.Inventory().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRollbackKeepsWritesMadeOutsideTx(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	done := make(chan error, 1)
	err := s.WithinTx(ctx, func(tx repository.Repositories) error {
		require.NoError(t, tx.Inventory().Create(ctx, &model.Inventory{ItemName: "Gauze", Quantity: 3}))
		go func() {
			done <- s.Inventory().Create(ctx, &model.Inventory{ItemName: "Saline", Quantity: 5})
		}()
		return stderrors.New("rollback")
	})
	require.Error(t, err)
	require.NoError(t, <-done)

	items, err := s.Inventory().List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Saline", items[0].ItemName)
}

func TestAppointmentRequiresParties(t *testing.T) {
	s, patient, _, _ := seed(t)

	err := s.Appointments().Create(context.Background(), &model.Appointment{PatientID: patient.ID, Date: time.Now()})
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestPrescriptionUpdateKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	s, patient, doctor, _ := seed(t)

	rx := &model.Prescription{PatientID: patient.ID, DoctorID: doctor.ID, Medicine: "Aspirin", Dosage: "1", Duration: "1d"}
	require.NoError(t, s.Prescriptions().Create(ctx, rx))
	created := rx.CreatedAt

	update := &model.Prescription{Medicine: "Ibuprofen", Dosage: "2", Duration: "2d"}
	update.ID = rx.ID
	update.CreatedAt = created.Add(time.Hour)
	require.NoError(t, s.Prescriptions().Update(ctx, update))

	got, err := s.Prescriptions().Get(ctx, rx.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ibuprofen", got.Medicine)
	assert.True(t, created.Equal(got.CreatedAt))
}

func TestHasCareRelationAndViews(t *testing.T) {
	ctx := context.Background()
	s, patient, doctor, _ := seed(t)

	ok, err := s.Appointments().HasCareRelation(ctx, doctor.ID, patient.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Appointments().Create(ctx, &model.Appointment{PatientID: patient.ID, DoctorID: doctor.ID, Date: time.Now()}))

	ok, err = s.Appointments().HasCareRelation(ctx, doctor.ID, patient.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	views, err := s.Appointments().List(ctx, &model.AppointmentFilters{DoctorID: doctor.ID})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "alice", views[0].PatientUsername)
	assert.Equal(t, "bob", views[0].DoctorUsername)
	assert.Equal(t, "Cardiology", views[0].DoctorSpecialty)
	assert.Equal(t, model.AppointmentStatusScheduled, views[0].Status)
}

func TestAuditDeleteBefore(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	old := &model.AuditLog{Action: model.AuditActionCreate, CreatedAt: time.Now().Add(-48 * time.Hour)}
	recent := &model.AuditLog{Action: model.AuditActionDelete}
	require.NoError(t, s.Audit().Create(ctx, old))
	require.NoError(t, s.Audit().Create(ctx, recent))

	n, err := s.Audit().DeleteBefore(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	logs, err := s.Audit().List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, recent.ID, logs[0].ID)
}
