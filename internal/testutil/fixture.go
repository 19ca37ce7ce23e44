// Package testutil seeds an in-memory store with a small cast of accounts for service,
// handler and router tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository/memory"
	"github.com/jwalitptl/hospital-api/pkg/security"
)

// Password is the password of every seeded account.
const Password = "password123"

type Fixture struct {
	Store  *memory.Store
	Hasher security.PasswordHasher

	// Alice and Carol are patients, Bob and Dave doctors, Sam staff.
	Alice, Carol model.Principal
	Bob, Dave    model.Principal
	Sam          model.Principal
}

func NewFixture(t *testing.T) *Fixture {
	t.Helper()
	f := &Fixture{
		Store:  memory.NewStore(),
		Hasher: security.NewBcryptHasher(bcrypt.MinCost),
	}
	f.Alice = f.AddPatient(t, "alice", "Alice", "Smith")
	f.Carol = f.AddPatient(t, "carol", "Carol", "Jones")
	f.Bob = f.AddDoctor(t, "bob", "Bob", "Brown", "Cardiology")
	f.Dave = f.AddDoctor(t, "dave", "Dave", "Green", "Dermatology")
	f.Sam = f.AddStaff(t, "sam", "Sam", "White")
	return f
}

func (f *Fixture) identity(t *testing.T, username, first, last string) *model.Identity {
	t.Helper()
	hash, err := f.Hasher.Hash(Password)
	require.NoError(t, err)

	identity := &model.Identity{
		Username:     username,
		FirstName:    first,
		LastName:     last,
		Email:        username + "@hospital.test",
		PasswordHash: hash,
	}
	require.NoError(t, f.Store.Identities().Create(context.Background(), identity))
	return identity
}

func (f *Fixture) AddPatient(t *testing.T, username, first, last string) model.Principal {
	t.Helper()
	identity := f.identity(t, username, first, last)
	patient := &model.Patient{
		IdentityID:  identity.ID,
		DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Address:     "1 Main St",
		Phone:       "5550100",
	}
	require.NoError(t, f.Store.Patients().Create(context.Background(), patient))
	return model.Principal{IdentityID: identity.ID, Username: username, Role: model.RolePatient, ProfileID: patient.ID}
}

func (f *Fixture) AddDoctor(t *testing.T, username, first, last, specialty string) model.Principal {
	t.Helper()
	identity := f.identity(t, username, first, last)
	doctor := &model.Doctor{IdentityID: identity.ID, Specialty: specialty, Phone: "5550200"}
	require.NoError(t, f.Store.Doctors().Create(context.Background(), doctor))
	return model.Principal{IdentityID: identity.ID, Username: username, Role: model.RoleDoctor, ProfileID: doctor.ID}
}

func (f *Fixture) AddStaff(t *testing.T, username, first, last string) model.Principal {
	t.Helper()
	identity := f.identity(t, username, first, last)
	staff := &model.Staff{IdentityID: identity.ID, Role: "Reception", Phone: "5550300"}
	require.NoError(t, f.Store.Staff().Create(context.Background(), staff))
	return model.Principal{IdentityID: identity.ID, Username: username, Role: model.RoleStaff, ProfileID: staff.ID}
}

// Appointment books patient with doctor directly in the store.
func (f *Fixture) Appointment(t *testing.T, patient, doctor model.Principal, status model.AppointmentStatus) *model.Appointment {
	t.Helper()
	apt := &model.Appointment{
		PatientID: patient.ProfileID,
		DoctorID:  doctor.ProfileID,
		Date:      time.Now().Add(24 * time.Hour).Truncate(time.Minute),
		Status:    status,
	}
	require.NoError(t, f.Store.Appointments().Create(context.Background(), apt))
	return apt
}

func (f *Fixture) Prescription(t *testing.T, patient, doctor model.Principal) *model.Prescription {
	t.Helper()
	rx := &model.Prescription{
		PatientID: patient.ProfileID,
		DoctorID:  doctor.ProfileID,
		Medicine:  "Amoxicillin",
		Dosage:    "500mg",
		Duration:  "7 days",
	}
	require.NoError(t, f.Store.Prescriptions().Create(context.Background(), rx))
	return rx
}

// AuditCount returns how many audit rows exist for entityType.
func (f *Fixture) AuditCount(t *testing.T, entityType string) int {
	t.Helper()
	logs, err := f.Store.Audit().List(context.Background(), &model.AuditFilters{EntityType: entityType, Limit: 1000})
	require.NoError(t, err)
	return len(logs)
}
