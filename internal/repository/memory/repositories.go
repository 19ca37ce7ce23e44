package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/pkg/errors"
)

type identityRepository struct{ s *Store }

func (r identityRepository) Create(ctx context.Context, identity *model.Identity) error {
	defer r.s.lock()()

	for _, existing := range r.s.data.identities {
		if existing.Username == identity.Username {
			return errors.Conflict("username already taken")
		}
	}
	if identity.ID == uuid.Nil {
		identity.ID = uuid.New()
	}
	identity.CreatedAt = time.Now()
	r.s.data.identities[identity.ID] = *identity
	return nil
}

func (r identityRepository) Get(ctx context.Context, id uuid.UUID) (*model.Identity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	identity, ok := r.s.data.identities[id]
	if !ok {
		return nil, errors.NotFound("identity", nil)
	}
	return &identity, nil
}

func (r identityRepository) GetByUsername(ctx context.Context, username string) (*model.Identity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, identity := range r.s.data.identities {
		if identity.Username == username {
			identity := identity
			return &identity, nil
		}
	}
	return nil, errors.NotFound("identity", nil)
}

func (r identityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock()()

	t := r.s.data
	if _, ok := t.identities[id]; !ok {
		return errors.NotFound("identity", nil)
	}
	delete(t.identities, id)
	for pid, p := range t.patients {
		if p.IdentityID == id {
			t.deletePatient(pid)
		}
	}
	for did, d := range t.doctors {
		if d.IdentityID == id {
			t.deleteDoctor(did)
		}
	}
	for sid, st := range t.staff {
		if st.IdentityID == id {
			delete(t.staff, sid)
		}
	}
	return nil
}

type patientRepository struct{ s *Store }

func (r patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	defer r.s.lock()()

	if _, ok := r.s.data.identities[patient.IdentityID]; !ok {
		return errors.NotFound("identity", nil)
	}
	for _, p := range r.s.data.patients {
		if p.IdentityID == patient.IdentityID {
			return errors.Conflict("identity already has a patient profile")
		}
	}
	if patient.ID == uuid.Nil {
		patient.ID = uuid.New()
	}
	patient.CreatedAt = time.Now()
	r.s.data.patients[patient.ID] = *patient
	return nil
}

func (r patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.PatientView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.data.patients[id]
	if !ok {
		return nil, errors.NotFound("patient", nil)
	}
	view := r.s.data.patientView(p)
	return &view, nil
}

func (r patientRepository) GetByIdentity(ctx context.Context, identityID uuid.UUID) (*model.Patient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.data.patients {
		if p.IdentityID == identityID {
			p := p
			return &p, nil
		}
	}
	return nil, errors.NotFound("patient", nil)
}

func (r patientRepository) List(ctx context.Context) ([]*model.PatientView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	patients := make([]*model.PatientView, 0, len(r.s.data.patients))
	for _, p := range r.s.data.patients {
		view := r.s.data.patientView(p)
		patients = append(patients, &view)
	}
	sort.Slice(patients, func(i, j int) bool { return patients[i].Username < patients[j].Username })
	return patients, nil
}

type doctorRepository struct{ s *Store }

func (r doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	defer r.s.lock()()

	if _, ok := r.s.data.identities[doctor.IdentityID]; !ok {
		return errors.NotFound("identity", nil)
	}
	for _, d := range r.s.data.doctors {
		if d.IdentityID == doctor.IdentityID {
			return errors.Conflict("identity already has a doctor profile")
		}
	}
	if doctor.ID == uuid.Nil {
		doctor.ID = uuid.New()
	}
	doctor.CreatedAt = time.Now()
	r.s.data.doctors[doctor.ID] = *doctor
	return nil
}

func (r doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.DoctorView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	d, ok := r.s.data.doctors[id]
	if !ok {
		return nil, errors.NotFound("doctor", nil)
	}
	view := r.s.data.doctorView(d)
	return &view, nil
}

func (r doctorRepository) GetByIdentity(ctx context.Context, identityID uuid.UUID) (*model.Doctor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, d := range r.s.data.doctors {
		if d.IdentityID == identityID {
			d := d
			return &d, nil
		}
	}
	return nil, errors.NotFound("doctor", nil)
}

func (r doctorRepository) List(ctx context.Context) ([]*model.DoctorView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	doctors := make([]*model.DoctorView, 0, len(r.s.data.doctors))
	for _, d := range r.s.data.doctors {
		view := r.s.data.doctorView(d)
		doctors = append(doctors, &view)
	}
	sort.Slice(doctors, func(i, j int) bool { return doctors[i].Username < doctors[j].Username })
	return doctors, nil
}

type staffRepository struct{ s *Store }

func (r staffRepository) Create(ctx context.Context, staff *model.Staff) error {
	defer r.s.lock()()

	if _, ok := r.s.data.identities[staff.IdentityID]; !ok {
		return errors.NotFound("identity", nil)
	}
	for _, st := range r.s.data.staff {
		if st.IdentityID == staff.IdentityID {
			return errors.Conflict("identity already has a staff profile")
		}
	}
	if staff.ID == uuid.Nil {
		staff.ID = uuid.New()
	}
	staff.CreatedAt = time.Now()
	r.s.data.staff[staff.ID] = *staff
	return nil
}

func (r staffRepository) Get(ctx context.Context, id uuid.UUID) (*model.StaffView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	st, ok := r.s.data.staff[id]
	if !ok {
		return nil, errors.NotFound("staff", nil)
	}
	view := r.s.data.staffView(st)
	return &view, nil
}

func (r staffRepository) GetByIdentity(ctx context.Context, identityID uuid.UUID) (*model.Staff, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, st := range r.s.data.staff {
		if st.IdentityID == identityID {
			st := st
			return &st, nil
		}
	}
	return nil, errors.NotFound("staff", nil)
}

func (r staffRepository) List(ctx context.Context) ([]*model.StaffView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	staff := make([]*model.StaffView, 0, len(r.s.data.staff))
	for _, st := range r.s.data.staff {
		view := r.s.data.staffView(st)
		staff = append(staff, &view)
	}
	sort.Slice(staff, func(i, j int) bool { return staff[i].Username < staff[j].Username })
	return staff, nil
}

type appointmentRepository struct{ s *Store }

func (r appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	defer r.s.lock()()

	if err := r.s.data.checkParties(appointment.PatientID, appointment.DoctorID); err != nil {
		return err
	}
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	if appointment.Status == "" {
		appointment.Status = model.AppointmentStatusScheduled
	}
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = appointment.CreatedAt
	r.s.data.appointments[appointment.ID] = *appointment
	return nil
}

func (r appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.data.appointments[id]
	if !ok {
		return nil, errors.NotFound("appointment", nil)
	}
	return &a, nil
}

func (r appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	defer r.s.lock()()

	existing, ok := r.s.data.appointments[appointment.ID]
	if !ok {
		return errors.NotFound("appointment", nil)
	}
	existing.Date = appointment.Date
	existing.Status = appointment.Status
	existing.UpdatedAt = time.Now()
	appointment.UpdatedAt = existing.UpdatedAt
	r.s.data.appointments[appointment.ID] = existing
	return nil
}

func (r appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock()()

	if _, ok := r.s.data.appointments[id]; !ok {
		return errors.NotFound("appointment", nil)
	}
	delete(r.s.data.appointments, id)
	return nil
}

func (r appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.AppointmentView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t := r.s.data
	var appointments []*model.AppointmentView
	for _, a := range t.appointments {
		if filters != nil {
			if filters.PatientID != uuid.Nil && a.PatientID != filters.PatientID {
				continue
			}
			if filters.DoctorID != uuid.Nil && a.DoctorID != filters.DoctorID {
				continue
			}
			if filters.Status != "" && a.Status != filters.Status {
				continue
			}
		}
		doctor := t.doctors[a.DoctorID]
		appointments = append(appointments, &model.AppointmentView{
			Appointment:     a,
			PatientUsername: t.patientUsername(a.PatientID),
			DoctorUsername:  t.doctorUsername(a.DoctorID),
			DoctorSpecialty: doctor.Specialty,
		})
	}
	sort.Slice(appointments, func(i, j int) bool { return appointments[i].Date.Before(appointments[j].Date) })
	return appointments, nil
}

func (r appointmentRepository) HasCareRelation(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, a := range r.s.data.appointments {
		if a.DoctorID == doctorID && a.PatientID == patientID {
			return true, nil
		}
	}
	return false, nil
}

type prescriptionRepository struct{ s *Store }

func (r prescriptionRepository) Create(ctx context.Context, prescription *model.Prescription) error {
	defer r.s.lock()()

	if err := r.s.data.checkParties(prescription.PatientID, prescription.DoctorID); err != nil {
		return err
	}
	if prescription.ID == uuid.Nil {
		prescription.ID = uuid.New()
	}
	prescription.CreatedAt = time.Now()
	r.s.data.prescriptions[prescription.ID] = *prescription
	return nil
}

func (r prescriptionRepository) Get(ctx context.Context, id uuid.UUID) (*model.Prescription, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.data.prescriptions[id]
	if !ok {
		return nil, errors.NotFound("prescription", nil)
	}
	return &p, nil
}

func (r prescriptionRepository) Update(ctx context.Context, prescription *model.Prescription) error {
	defer r.s.lock()()

	existing, ok := r.s.data.prescriptions[prescription.ID]
	if !ok {
		return errors.NotFound("prescription", nil)
	}
	existing.Medicine = prescription.Medicine
	existing.Dosage = prescription.Dosage
	existing.Duration = prescription.Duration
	r.s.data.prescriptions[prescription.ID] = existing
	return nil
}

func (r prescriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock()()

	if _, ok := r.s.data.prescriptions[id]; !ok {
		return errors.NotFound("prescription", nil)
	}
	delete(r.s.data.prescriptions, id)
	return nil
}

func (r prescriptionRepository) List(ctx context.Context, filters *model.PrescriptionFilters) ([]*model.PrescriptionView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t := r.s.data
	var prescriptions []*model.PrescriptionView
	for _, p := range t.prescriptions {
		if filters != nil {
			if filters.PatientID != uuid.Nil && p.PatientID != filters.PatientID {
				continue
			}
			if filters.DoctorID != uuid.Nil && p.DoctorID != filters.DoctorID {
				continue
			}
		}
		prescriptions = append(prescriptions, &model.PrescriptionView{
			Prescription:    p,
			PatientUsername: t.patientUsername(p.PatientID),
			DoctorUsername:  t.doctorUsername(p.DoctorID),
		})
	}
	sort.Slice(prescriptions, func(i, j int) bool {
		return prescriptions[i].CreatedAt.After(prescriptions[j].CreatedAt)
	})
	return prescriptions, nil
}

type billingRepository struct{ s *Store }

func (r billingRepository) Create(ctx context.Context, bill *model.Billing) error {
	defer r.s.lock()()

	if err := r.s.data.checkParties(bill.PatientID, bill.DoctorID); err != nil {
		return err
	}
	if bill.ID == uuid.Nil {
		bill.ID = uuid.New()
	}
	bill.CreatedAt = time.Now()
	r.s.data.billing[bill.ID] = *bill
	return nil
}

func (r billingRepository) Get(ctx context.Context, id uuid.UUID) (*model.Billing, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.data.billing[id]
	if !ok {
		return nil, errors.NotFound("bill", nil)
	}
	return &b, nil
}

func (r billingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock()()

	if _, ok := r.s.data.billing[id]; !ok {
		return errors.NotFound("bill", nil)
	}
	delete(r.s.data.billing, id)
	return nil
}

func (r billingRepository) List(ctx context.Context, filters *model.BillingFilters) ([]*model.BillingView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t := r.s.data
	var bills []*model.BillingView
	for _, b := range t.billing {
		if filters != nil && filters.PatientID != uuid.Nil && b.PatientID != filters.PatientID {
			continue
		}
		bills = append(bills, &model.BillingView{
			Billing:         b,
			PatientUsername: t.patientUsername(b.PatientID),
			DoctorUsername:  t.doctorUsername(b.DoctorID),
		})
	}
	sort.Slice(bills, func(i, j int) bool { return bills[i].CreatedAt.After(bills[j].CreatedAt) })
	return bills, nil
}

type inventoryRepository struct{ s *Store }

func (r inventoryRepository) Create(ctx context.Context, item *model.Inventory) error {
	defer r.s.lock()()

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	r.s.data.inventory[item.ID] = *item
	return nil
}

func (r inventoryRepository) Get(ctx context.Context, id uuid.UUID) (*model.Inventory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	item, ok := r.s.data.inventory[id]
	if !ok {
		return nil, errors.NotFound("inventory item", nil)
	}
	return &item, nil
}

func (r inventoryRepository) Update(ctx context.Context, item *model.Inventory) error {
	defer r.s.lock()()

	existing, ok := r.s.data.inventory[item.ID]
	if !ok {
		return errors.NotFound("inventory item", nil)
	}
	existing.ItemName = item.ItemName
	existing.Quantity = item.Quantity
	existing.Date = item.Date
	existing.UpdatedAt = time.Now()
	*item = existing
	r.s.data.inventory[item.ID] = existing
	return nil
}

func (r inventoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock()()

	if _, ok := r.s.data.inventory[id]; !ok {
		return errors.NotFound("inventory item", nil)
	}
	delete(r.s.data.inventory, id)
	return nil
}

func (r inventoryRepository) List(ctx context.Context) ([]*model.Inventory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := make([]*model.Inventory, 0, len(r.s.data.inventory))
	for _, item := range r.s.data.inventory {
		item := item
		items = append(items, &item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ItemName < items[j].ItemName })
	return items, nil
}

type auditRepository struct{ s *Store }

func (r auditRepository) Create(ctx context.Context, log *model.AuditLog) error {
	defer r.s.lock()()

	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	r.s.data.audit = append(r.s.data.audit, *log)
	return nil
}

func (r auditRepository) List(ctx context.Context, filters *model.AuditFilters) ([]*model.AuditLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	limit := 100
	if filters != nil && filters.Limit > 0 {
		limit = filters.Limit
	}

	var logs []*model.AuditLog
	for i := len(r.s.data.audit) - 1; i >= 0 && len(logs) < limit; i-- {
		entry := r.s.data.audit[i]
		if filters != nil {
			if filters.IdentityID != uuid.Nil && entry.IdentityID != filters.IdentityID {
				continue
			}
			if filters.EntityType != "" && entry.EntityType != filters.EntityType {
				continue
			}
		}
		logs = append(logs, &entry)
	}
	return logs, nil
}

func (r auditRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	defer r.s.lock()()

	kept := r.s.data.audit[:0]
	var deleted int64
	for _, entry := range r.s.data.audit {
		if entry.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, entry)
	}
	r.s.data.audit = kept
	return deleted, nil
}

type outboxRepository struct{ s *Store }

func (r outboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	defer r.s.lock()()

	event.ID = uuid.New()
	event.CreatedAt = time.Now()
	event.Status = model.OutboxStatusPending
	r.s.data.outbox = append(r.s.data.outbox, *event)
	return nil
}

func (r outboxRepository) GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var events []*model.OutboxEvent
	for _, event := range r.s.data.outbox {
		if len(events) >= limit {
			break
		}
		if event.Status == model.OutboxStatusPending {
			event := event
			events = append(events, &event)
		}
	}
	return events, nil
}

func (r outboxRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error {
	defer r.s.lock()()

	for i := range r.s.data.outbox {
		event := &r.s.data.outbox[i]
		if event.ID != id {
			continue
		}
		event.Status = status
		event.ErrorMessage = errMsg
		if errMsg != nil {
			event.RetryCount++
		}
		if status == model.OutboxStatusProcessed {
			now := time.Now()
			event.ProcessedAt = &now
		}
		return nil
	}
	return errors.NotFound("outbox event", nil)
}

func (r outboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	defer r.s.lock()()

	kept := r.s.data.outbox[:0]
	var deleted int64
	for _, event := range r.s.data.outbox {
		if event.Status == model.OutboxStatusProcessed && event.ProcessedAt != nil && event.ProcessedAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, event)
	}
	r.s.data.outbox = kept
	return deleted, nil
}

// helpers below assume the caller holds s.mu.

func (t *tables) checkParties(patientID, doctorID uuid.UUID) error {
	if _, ok := t.patients[patientID]; !ok {
		return errors.NotFound("patient", nil)
	}
	if _, ok := t.doctors[doctorID]; !ok {
		return errors.NotFound("doctor", nil)
	}
	return nil
}

func (t *tables) patientView(p model.Patient) model.PatientView {
	identity := t.identities[p.IdentityID]
	return model.PatientView{
		Patient:   p,
		Username:  identity.Username,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		Email:     identity.Email,
	}
}

func (t *tables) doctorView(d model.Doctor) model.DoctorView {
	identity := t.identities[d.IdentityID]
	return model.DoctorView{
		Doctor:    d,
		Username:  identity.Username,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
	}
}

func (t *tables) staffView(st model.Staff) model.StaffView {
	identity := t.identities[st.IdentityID]
	return model.StaffView{
		Staff:     st,
		Username:  identity.Username,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
	}
}

func (t *tables) patientUsername(id uuid.UUID) string {
	return t.identities[t.patients[id].IdentityID].Username
}

func (t *tables) doctorUsername(id uuid.UUID) string {
	return t.identities[t.doctors[id].IdentityID].Username
}
