// Package memory is a process-local repository.Store for development and tests. Transactions
// are serialized and implemented by snapshot and restore.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

type tables struct {
	identities    map[uuid.UUID]model.Identity
	patients      map[uuid.UUID]model.Patient
	doctors       map[uuid.UUID]model.Doctor
	staff         map[uuid.UUID]model.Staff
	appointments  map[uuid.UUID]model.Appointment
	prescriptions map[uuid.UUID]model.Prescription
	billing       map[uuid.UUID]model.Billing
	inventory     map[uuid.UUID]model.Inventory
	audit         []model.AuditLog
	outbox        []model.OutboxEvent
}

func newTables() *tables {
	return &tables{
		identities:    make(map[uuid.UUID]model.Identity),
		patients:      make(map[uuid.UUID]model.Patient),
		doctors:       make(map[uuid.UUID]model.Doctor),
		staff:         make(map[uuid.UUID]model.Staff),
		appointments:  make(map[uuid.UUID]model.Appointment),
		prescriptions: make(map[uuid.UUID]model.Prescription),
		billing:       make(map[uuid.UUID]model.Billing),
		inventory:     make(map[uuid.UUID]model.Inventory),
	}
}

func (t *tables) clone() *tables {
	c := &tables{
		identities:    cloneMap(t.identities),
		patients:      cloneMap(t.patients),
		doctors:       cloneMap(t.doctors),
		staff:         cloneMap(t.staff),
		appointments:  cloneMap(t.appointments),
		prescriptions: cloneMap(t.prescriptions),
		billing:       cloneMap(t.billing),
		inventory:     cloneMap(t.inventory),
	}
	c.audit = append([]model.AuditLog(nil), t.audit...)
	c.outbox = append([]model.OutboxEvent(nil), t.outbox...)
	return c
}

func cloneMap[V any](m map[uuid.UUID]V) map[uuid.UUID]V {
	c := make(map[uuid.UUID]V, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

type state struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data *tables
}

// Store is the shared handle; the copy passed to a transaction callback has inTx set so its
// writes do not wait on the transaction they belong to.
type Store struct {
	*state
	inTx bool
}

func NewStore() *Store {
	return &Store{state: &state{data: newTables()}}
}

// lock takes the write lock. Outside a transaction it first waits for any running
// transaction, so a rollback never discards a concurrent write.
func (s *Store) lock() func() {
	if !s.inTx {
		s.txMu.Lock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if !s.inTx {
			s.txMu.Unlock()
		}
	}
}

// WithinTx runs fn with every write visible immediately; on error or panic the tables are
// restored to the state they had when fn started. Readers outside the transaction can see
// its uncommitted writes. A WithinTx call inside fn joins the running transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Repositories) error) error {
	if s.inTx {
		return fn(s)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	restore := func() {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
	}

	defer func() {
		if p := recover(); p != nil {
			restore()
			panic(p)
		}
	}()

	if err := fn(&Store{state: s.state, inTx: true}); err != nil {
		restore()
		return err
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) Identities() repository.IdentityRepository       { return identityRepository{s} }
func (s *Store) Patients() repository.PatientRepository           { return patientRepository{s} }
func (s *Store) Doctors() repository.DoctorRepository             { return doctorRepository{s} }
func (s *Store) Staff() repository.StaffRepository                { return staffRepository{s} }
func (s *Store) Appointments() repository.AppointmentRepository   { return appointmentRepository{s} }
func (s *Store) Prescriptions() repository.PrescriptionRepository { return prescriptionRepository{s} }
func (s *Store) Billing() repository.BillingRepository            { return billingRepository{s} }
func (s *Store) Inventory() repository.InventoryRepository        { return inventoryRepository{s} }
func (s *Store) Audit() repository.AuditRepository                { return auditRepository{s} }
func (s *Store) Outbox() repository.OutboxRepository              { return outboxRepository{s} }

// deletePatient and deleteDoctor mirror ON DELETE CASCADE. Callers hold s.mu.
func (t *tables) deletePatient(id uuid.UUID) {
	delete(t.patients, id)
	for k, v := range t.appointments {
		if v.PatientID == id {
			delete(t.appointments, k)
		}
	}
	for k, v := range t.prescriptions {
		if v.PatientID == id {
			delete(t.prescriptions, k)
		}
	}
	for k, v := range t.billing {
		if v.PatientID == id {
			delete(t.billing, k)
		}
	}
}

func (t *tables) deleteDoctor(id uuid.UUID) {
	delete(t.doctors, id)
	for k, v := range t.appointments {
		if v.DoctorID == id {
			delete(t.appointments, k)
		}
	}
	for k, v := range t.prescriptions {
		if v.DoctorID == id {
			delete(t.prescriptions, k)
		}
	}
	for k, v := range t.billing {
		if v.DoctorID == id {
			delete(t.billing, k)
		}
	}
}
