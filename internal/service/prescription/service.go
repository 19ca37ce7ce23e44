package prescription

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/policy"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/internal/service/event"
	"github.com/jwalitptl/hospital-api/pkg/errors"
)

type Service struct {
	store repository.Store
}

func NewService(store repository.Store) *Service {
	return &Service{store: store}
}

// PatientPrescriptions is the doctor's manage view for one patient.
type PatientPrescriptions struct {
	Patient       *model.PatientView        `json:"patient"`
	Prescriptions []*model.PrescriptionView `json:"prescriptions"`
}

// ListForPatient returns what the acting doctor has prescribed to patientID.
func (s *Service) ListForPatient(ctx context.Context, actor model.Principal, patientID uuid.UUID) (*PatientPrescriptions, error) {
	if err := policy.Enforce(actor, policy.ManagePrescriptions, policy.Resource{}); err != nil {
		return nil, err
	}
	patient, err := s.store.Patients().Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	list, err := s.store.Prescriptions().List(ctx, &model.PrescriptionFilters{
		PatientID: patientID,
		DoctorID:  actor.ProfileID,
	})
	if err != nil {
		return nil, err
	}
	return &PatientPrescriptions{Patient: patient, Prescriptions: list}, nil
}

// List returns a patient's own prescriptions, or every prescription for staff.
func (s *Service) List(ctx context.Context, actor model.Principal) ([]*model.PrescriptionView, error) {
	if err := policy.Enforce(actor, policy.ViewPrescriptions, policy.Resource{}); err != nil {
		return nil, err
	}
	filters := &model.PrescriptionFilters{}
	if actor.IsPatient() {
		filters.PatientID = actor.ProfileID
	}
	return s.store.Prescriptions().List(ctx, filters)
}

// Create requires the acting doctor to have an appointment with the patient.
func (s *Service) Create(ctx context.Context, actor model.Principal, patientID uuid.UUID, form *model.PrescriptionForm) (*model.Prescription, error) {
	if err := validateForm(form); err != nil {
		return nil, err
	}

	rx := &model.Prescription{
		PatientID: patientID,
		DoctorID:  actor.ProfileID,
		Medicine:  form.Medicine,
		Dosage:    form.Dosage,
		Duration:  form.Duration,
	}

	err := s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		if _, err := tx.Patients().Get(ctx, patientID); err != nil {
			return err
		}
		cares := false
		if actor.IsDoctor() {
			var err error
			if cares, err = tx.Appointments().HasCareRelation(ctx, actor.ProfileID, patientID); err != nil {
				return err
			}
		}
		if err := policy.Enforce(actor, policy.CreatePrescription, policy.Resource{
			PatientID:    patientID,
			DoctorID:     actor.ProfileID,
			CareRelation: cares,
		}); err != nil {
			return err
		}

		if err := tx.Prescriptions().Create(ctx, rx); err != nil {
			return err
		}
		return event.Record(ctx, tx, actor, event.Change{
			Action:     model.AuditActionCreate,
			EntityType: model.AuditEntityPrescription,
			EntityID:   rx.ID,
			EventType:  model.EventPrescriptionCreated,
			Data:       rx,
		})
	})
	if err != nil {
		return nil, err
	}
	return rx, nil
}

// Update rewrites medicine, dosage and duration. A patientID other than uuid.Nil scopes the
// lookup to that patient's prescriptions.
func (s *Service) Update(ctx context.Context, actor model.Principal, patientID, id uuid.UUID, form *model.PrescriptionForm) (*model.Prescription, error) {
	if err := validateForm(form); err != nil {
		return nil, err
	}

	var rx *model.Prescription
	err := s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		var err error
		if rx, err = scopedGet(ctx, tx, patientID, id); err != nil {
			return err
		}
		if err := policy.Enforce(actor, policy.UpdatePrescription, policy.Resource{
			PatientID: rx.PatientID,
			DoctorID:  rx.DoctorID,
		}); err != nil {
			return err
		}

		rx.Medicine = form.Medicine
		rx.Dosage = form.Dosage
		rx.Duration = form.Duration
		if err := tx.Prescriptions().Update(ctx, rx); err != nil {
			return err
		}
		return event.Record(ctx, tx, actor, event.Change{
			Action:     model.AuditActionUpdate,
			EntityType: model.AuditEntityPrescription,
			EntityID:   rx.ID,
			EventType:  model.EventPrescriptionUpdated,
			Data:       rx,
		})
	})
	if err != nil {
		return nil, err
	}
	return rx, nil
}

// Delete is open to staff, the owning patient and the prescribing doctor.
func (s *Service) Delete(ctx context.Context, actor model.Principal, patientID, id uuid.UUID) error {
	return s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		rx, err := scopedGet(ctx, tx, patientID, id)
		if err != nil {
			return err
		}
		if err := policy.Enforce(actor, policy.DeletePrescription, policy.Resource{
			PatientID: rx.PatientID,
			DoctorID:  rx.DoctorID,
		}); err != nil {
			return err
		}

		if err := tx.Prescriptions().Delete(ctx, id); err != nil {
			return err
		}
		return event.Record(ctx, tx, actor, event.Change{
			Action:     model.AuditActionDelete,
			EntityType: model.AuditEntityPrescription,
			EntityID:   id,
			EventType:  model.EventPrescriptionDeleted,
			Data:       rx,
		})
	})
}

func scopedGet(ctx context.Context, tx repository.Repositories, patientID, id uuid.UUID) (*model.Prescription, error) {
	rx, err := tx.Prescriptions().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if patientID != uuid.Nil && rx.PatientID != patientID {
		return nil, errors.NotFound("prescription", nil)
	}
	return rx, nil
}

// validateForm trims the form in place and checks it against its binding tags on gin's
// validator, so lengths are counted in characters as the handlers count them.
func validateForm(form *model.PrescriptionForm) error {
	if form == nil {
		return errors.Validation("medicine", "is required")
	}
	form.Medicine = strings.TrimSpace(form.Medicine)
	form.Dosage = strings.TrimSpace(form.Dosage)
	form.Duration = strings.TrimSpace(form.Duration)
	return errors.FromValidator(binding.Validator.ValidateStruct(form))
}
