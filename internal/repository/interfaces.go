package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
)

// All repository interfaces in one file. Get-style methods return an errors.ErrNotFound AppError
// when the row is missing; Delete and Update do the same when no row was affected.
type (
	IdentityRepository interface {
		Create(ctx context.Context, identity *model.Identity) error
		Get(ctx context.Context, id uuid.UUID) (*model.Identity, error)
		GetByUsername(ctx context.Context, username string) (*model.Identity, error)
		// Delete removes the identity together with its role profile and every row that
		// references the profile.
		Delete(ctx context.Context, id uuid.UUID) error
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.PatientView, error)
		GetByIdentity(ctx context.Context, identityID uuid.UUID) (*model.Patient, error)
		List(ctx context.Context) ([]*model.PatientView, error)
	}

	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id uuid.UUID) (*model.DoctorView, error)
		GetByIdentity(ctx context.Context, identityID uuid.UUID) (*model.Doctor, error)
		List(ctx context.Context) ([]*model.DoctorView, error)
	}

	StaffRepository interface {
		Create(ctx context.Context, staff *model.Staff) error
		Get(ctx context.Context, id uuid.UUID) (*model.StaffView, error)
		GetByIdentity(ctx context.Context, identityID uuid.UUID) (*model.Staff, error)
		List(ctx context.Context) ([]*model.StaffView, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.AppointmentView, error)
		// HasCareRelation reports whether the doctor has at least one appointment with the patient.
		HasCareRelation(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error)
	}

	PrescriptionRepository interface {
		Create(ctx context.Context, prescription *model.Prescription) error
		Get(ctx context.Context, id uuid.UUID) (*model.Prescription, error)
		// Update writes medicine, dosage and duration only.
		Update(ctx context.Context, prescription *model.Prescription) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.PrescriptionFilters) ([]*model.PrescriptionView, error)
	}

	BillingRepository interface {
		Create(ctx context.Context, bill *model.Billing) error
		Get(ctx context.Context, id uuid.UUID) (*model.Billing, error)
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.BillingFilters) ([]*model.BillingView, error)
	}

	InventoryRepository interface {
		Create(ctx context.Context, item *model.Inventory) error
		Get(ctx context.Context, id uuid.UUID) (*model.Inventory, error)
		Update(ctx context.Context, item *model.Inventory) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Inventory, error)
	}

	AuditRepository interface {
		Create(ctx context.Context, log *model.AuditLog) error
		List(ctx context.Context, filters *model.AuditFilters) ([]*model.AuditLog, error)
		DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)

// Repositories groups every repository bound to the same connection or transaction.
type Repositories interface {
	Identities() IdentityRepository
	Patients() PatientRepository
	Doctors() DoctorRepository
	Staff() StaffRepository
	Appointments() AppointmentRepository
	Prescriptions() PrescriptionRepository
	Billing() BillingRepository
	Inventory() InventoryRepository
	Audit() AuditRepository
	Outbox() OutboxRepository
}

// Store is the persistent store. WithinTx runs fn against repositories bound to a single
// transaction; it commits when fn returns nil and rolls back otherwise, including on panic.
type Store interface {
	Repositories
	WithinTx(ctx context.Context, fn func(tx Repositories) error) error
	Ping(ctx context.Context) error
	Close() error
}
