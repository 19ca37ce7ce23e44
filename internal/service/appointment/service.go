package appointment

import (
	"context"
	"fmt"
	"time"

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

// Book creates a Scheduled appointment for the acting patient.
func (s *Service) Book(ctx context.Context, actor model.Principal, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	if err := policy.Enforce(actor, policy.BookAppointment, policy.Resource{}); err != nil {
		return nil, err
	}

	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return nil, errors.Validation("doctor_id", "must be a valid id")
	}
	date, err := model.ParseDateTime(req.Date)
	if err != nil {
		return nil, errors.Validation("date", "must be an ISO-8601 date-time")
	}

	apt := &model.Appointment{
		PatientID: actor.ProfileID,
		DoctorID:  doctorID,
		Date:      date,
		Status:    model.AppointmentStatusScheduled,
	}

	err = s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		doctor, err := tx.Doctors().Get(ctx, doctorID)
		if err != nil {
			return err
		}
		if err := tx.Appointments().Create(ctx, apt); err != nil {
			return err
		}

		patient, err := tx.Patients().Get(ctx, actor.ProfileID)
		if err != nil {
			return err
		}
		return event.Record(ctx, tx, actor, event.Change{
			Action:     model.AuditActionCreate,
			EntityType: model.AuditEntityAppointment,
			EntityID:   apt.ID,
			EventType:  model.EventAppointmentBooked,
			Data:       apt,
			Notify: notify(patient.Email, "Appointment booked",
				fmt.Sprintf("Your appointment with Dr. %s on %s is scheduled.", doctorName(doctor), apt.Date.Format(time.RFC1123))),
		})
	})
	if err != nil {
		return nil, err
	}
	return apt, nil
}

// Manage applies a doctor's action to one of their appointments. Any validation failure
// leaves the appointment untouched.
func (s *Service) Manage(ctx context.Context, actor model.Principal, req *model.ManageAppointmentRequest) (*model.Appointment, error) {
	id, err := uuid.Parse(req.AppointmentID)
	if err != nil {
		return nil, errors.Validation("appointment_id", "must be a valid id")
	}
	action, err := model.ParseAppointmentAction(req.Action)
	if err != nil {
		return nil, errors.Validation("action", err.Error())
	}

	var apt *model.Appointment
	err = s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		apt, err = tx.Appointments().Get(ctx, id)
		if err != nil {
			return err
		}
		if err := policy.Enforce(actor, policy.ManageAppointment, policy.Resource{
			PatientID: apt.PatientID,
			DoctorID:  apt.DoctorID,
			Status:    apt.Status,
		}); err != nil {
			return err
		}

		var newDate *time.Time
		if action == model.AppointmentActionReschedule {
			if req.NewDate == "" {
				return errors.Validation("new_date", model.ErrRescheduleDateRequired.Error())
			}
			parsed, err := model.ParseDateTime(req.NewDate)
			if err != nil {
				return errors.Validation("new_date", "must be an ISO-8601 date-time")
			}
			newDate = &parsed
		}

		previous := apt.Status
		if err := apt.Apply(action, newDate); err != nil {
			return errors.Validation("action", err.Error())
		}
		if err := tx.Appointments().Update(ctx, apt); err != nil {
			return err
		}

		patient, err := tx.Patients().Get(ctx, apt.PatientID)
		if err != nil {
			return err
		}
		return event.Record(ctx, tx, actor, event.Change{
			Action:     model.AuditActionTransition,
			EntityType: model.AuditEntityAppointment,
			EntityID:   apt.ID,
			EventType:  model.EventAppointmentStatusChanged,
			Data: map[string]interface{}{
				"appointment": apt,
				"action":      action,
				"from":        previous,
			},
			Notify: notify(patient.Email, "Appointment "+string(apt.Status),
				fmt.Sprintf("Your appointment on %s is now %s.", apt.Date.Format(time.RFC1123), apt.Status)),
		})
	})
	if err != nil {
		return nil, err
	}
	return apt, nil
}

// Delete removes an appointment if the policy allows the actor to.
func (s *Service) Delete(ctx context.Context, actor model.Principal, id uuid.UUID) error {
	return s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		apt, err := tx.Appointments().Get(ctx, id)
		if err != nil {
			return err
		}
		if err := policy.Enforce(actor, policy.DeleteAppointment, policy.Resource{
			PatientID: apt.PatientID,
			DoctorID:  apt.DoctorID,
			Status:    apt.Status,
		}); err != nil {
			return err
		}

		if err := tx.Appointments().Delete(ctx, id); err != nil {
			return err
		}
		return event.Record(ctx, tx, actor, event.Change{
			Action:     model.AuditActionDelete,
			EntityType: model.AuditEntityAppointment,
			EntityID:   id,
			EventType:  model.EventAppointmentDeleted,
			Data:       apt,
		})
	})
}

// ListForDoctor returns the acting doctor's appointments for the manage view.
func (s *Service) ListForDoctor(ctx context.Context, actor model.Principal) ([]*model.AppointmentView, error) {
	if err := policy.Enforce(actor, policy.ListAppointments, policy.Resource{}); err != nil {
		return nil, err
	}
	return s.store.Appointments().List(ctx, &model.AppointmentFilters{DoctorID: actor.ProfileID})
}

func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentView, error) {
	return s.store.Appointments().List(ctx, &model.AppointmentFilters{PatientID: patientID})
}

func notify(recipient, subject, body string) *model.Notification {
	if recipient == "" {
		return nil
	}
	return &model.Notification{Recipient: recipient, Subject: subject, Body: body}
}

func doctorName(d *model.DoctorView) string {
	identity := model.Identity{Username: d.Username, FirstName: d.FirstName, LastName: d.LastName}
	return identity.FullName()
}
