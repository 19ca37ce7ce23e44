package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/testutil"
	"github.com/jwalitptl/hospital-api/pkg/errors"
)

func TestDashboards(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFixture(t)
	svc := NewService(f.Store)
	f.Appointment(t, f.Alice, f.Bob, model.AppointmentStatusScheduled)
	f.Appointment(t, f.Carol, f.Bob, model.AppointmentStatusScheduled)
	f.Prescription(t, f.Alice, f.Bob)

	got, err := svc.Get(ctx, f.Alice, model.RolePatient)
	require.NoError(t, err)
	patient := got.(*PatientDashboard)
	assert.Len(t, patient.Appointments, 1)
	assert.Len(t, patient.Prescriptions, 1)
	assert.Empty(t, patient.Bills)

	got, err = svc.Get(ctx, f.Bob, model.RoleDoctor)
	require.NoError(t, err)
	assert.Len(t, got.(*DoctorDashboard).Appointments, 2)

	got, err = svc.Get(ctx, f.Sam, model.RoleStaff)
	require.NoError(t, err)
	staff := got.(*StaffDashboard)
	assert.Len(t, staff.Patients, 2)
	assert.Len(t, staff.Doctors, 2)
	assert.Len(t, staff.Staff, 1)
	assert.Len(t, staff.Prescriptions, 1)
}

func TestDashboardOfAnotherRoleIsForbidden(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFixture(t)
	svc := NewService(f.Store)

	_, err := svc.Get(ctx, f.Alice, model.RoleStaff)
	assert.True(t, errors.Is(err, errors.ErrForbidden))
	_, err = svc.Get(ctx, model.Principal{}, model.RoleUnassigned)
	assert.True(t, errors.Is(err, errors.ErrForbidden))
}
