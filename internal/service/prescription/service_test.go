package prescription

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/testutil"
	"github.com/jwalitptl/hospital-api/pkg/errors"
)

func TestMain(m *testing.M) {
	middleware.RegisterValidators()
	os.Exit(m.Run())
}

var form = &model.PrescriptionForm{Medicine: "Ibuprofen", Dosage: "200mg", Duration: "5 days"}

func TestCreateRequiresCareRelation(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFixture(t)
	svc := NewService(f.Store)

	_, err := svc.Create(ctx, f.Bob, f.Alice.ProfileID, form)
	assert.True(t, errors.Is(err, errors.ErrForbidden))

	f.Appointment(t, f.Alice, f.Bob, model.AppointmentStatusScheduled)
	rx, err := svc.Create(ctx, f.Bob, f.Alice.ProfileID, form)
	require.NoError(t, err)
	assert.Equal(t, f.Bob.ProfileID, rx.DoctorID)
	assert.Equal(t, f.Alice.ProfileID, rx.PatientID)

	_, err = svc.Create(ctx, f.Sam, f.Alice.ProfileID, form)
	assert.True(t, errors.Is(err, errors.ErrForbidden))

	_, err = svc.Create(ctx, f.Bob, uuid.New(), form)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestCreateValidatesBeforeWriting(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFixture(t)
	svc := NewService(f.Store)
	f.Appointment(t, f.Alice, f.Bob, model.AppointmentStatusScheduled)

	_, err := svc.Create(ctx, f.Bob, f.Alice.ProfileID, &model.PrescriptionForm{Medicine: "  ", Dosage: "1"})
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrValidation, appErr.Code)
	assert.Contains(t, appErr.Fields, "medicine")
	assert.Contains(t, appErr.Fields, "duration")

	list, err := f.Store.Prescriptions().List(ctx, &model.PrescriptionFilters{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFormLengthsCountCharacters(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFixture(t)
	svc := NewService(f.Store)
	f.Appointment(t, f.Alice, f.Bob, model.AppointmentStatusScheduled)

	rx, err := svc.Create(ctx, f.Bob, f.Alice.ProfileID, &model.PrescriptionForm{
		Medicine: strings.Repeat("é", 200),
		Dosage:   "500 мг",
		Duration: "5 días",
	})
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", 200), rx.Medicine)

	_, err = svc.Update(ctx, f.Bob, uuid.Nil, rx.ID, &model.PrescriptionForm{
		Medicine: strings.Repeat("é", 256),
		Dosage:   "1",
		Duration: "1 day",
	})
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, "must be at most 255", appErr.Fields["medicine"])
}

func TestUpdateAuthorOnlyAndScoped(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFixture(t)
	svc := NewService(f.Store)
	rx := f.Prescription(t, f.Alice, f.Bob)

	_, err := svc.Update(ctx, f.Dave, f.Alice.ProfileID, rx.ID, form)
	assert.True(t, errors.Is(err, errors.ErrForbidden))

	_, err = svc.Update(ctx, f.Bob, f.Carol.ProfileID, rx.ID, form)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	updated, err := svc.Update(ctx, f.Bob, f.Alice.ProfileID, rx.ID, form)
	require.NoError(t, err)
	assert.Equal(t, "Ibuprofen", updated.Medicine)

	// standalone route: no patient scope
	_, err = svc.Update(ctx, f.Bob, uuid.Nil, rx.ID, &model.PrescriptionForm{Medicine: "Naproxen", Dosage: "250mg", Duration: "3 days"})
	require.NoError(t, err)
	stored, err := f.Store.Prescriptions().Get(ctx, rx.ID)
	require.NoError(t, err)
	assert.Equal(t, "Naproxen", stored.Medicine)
}

func TestDeletePermissions(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFixture(t)
	svc := NewService(f.Store)

	rx := f.Prescription(t, f.Alice, f.Bob)
	assert.True(t, errors.Is(svc.Delete(ctx, f.Carol, uuid.Nil, rx.ID), errors.ErrForbidden))
	assert.True(t, errors.Is(svc.Delete(ctx, f.Dave, uuid.Nil, rx.ID), errors.ErrForbidden))
	require.NoError(t, svc.Delete(ctx, f.Alice, uuid.Nil, rx.ID))

	rx = f.Prescription(t, f.Alice, f.Bob)
	require.NoError(t, svc.Delete(ctx, f.Bob, f.Alice.ProfileID, rx.ID))
}

func TestStaffDeletesForeignPrescription(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFixture(t)
	svc := NewService(f.Store)
	rx := f.Prescription(t, f.Carol, f.Dave)

	require.NoError(t, svc.Delete(ctx, f.Sam, uuid.Nil, rx.ID))
	_, err := f.Store.Prescriptions().Get(ctx, rx.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.Equal(t, 1, f.AuditCount(t, model.AuditEntityPrescription))
}

func TestListScopes(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFixture(t)
	svc := NewService(f.Store)
	f.Prescription(t, f.Alice, f.Bob)
	f.Prescription(t, f.Alice, f.Dave)
	f.Prescription(t, f.Carol, f.Bob)

	own, err := svc.List(ctx, f.Alice)
	require.NoError(t, err)
	assert.Len(t, own, 2)

	all, err := svc.List(ctx, f.Sam)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = svc.List(ctx, f.Bob)
	assert.True(t, errors.Is(err, errors.ErrForbidden))

	manage, err := svc.ListForPatient(ctx, f.Bob, f.Alice.ProfileID)
	require.NoError(t, err)
	assert.Equal(t, "alice", manage.Patient.Username)
	assert.Len(t, manage.Prescriptions, 1)
}
