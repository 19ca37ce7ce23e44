package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled   AppointmentStatus = "Scheduled"
	AppointmentStatusAccepted    AppointmentStatus = "Accepted"
	AppointmentStatusRescheduled AppointmentStatus = "Rescheduled"
	AppointmentStatusCanceled    AppointmentStatus = "Canceled"
	AppointmentStatusCompleted   AppointmentStatus = "Completed"
)

// AppointmentStatuses lists every value the status column may hold.
var AppointmentStatuses = []AppointmentStatus{
	AppointmentStatusScheduled,
	AppointmentStatusAccepted,
	AppointmentStatusRescheduled,
	AppointmentStatusCanceled,
	AppointmentStatusCompleted,
}

func (s AppointmentStatus) Valid() bool {
	for _, v := range AppointmentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// AppointmentAction is the tag a doctor sends to the manage-appointments operation.
type AppointmentAction string

const (
	AppointmentActionCancel     AppointmentAction = "Cancel"
	AppointmentActionReschedule AppointmentAction = "Reschedule"
	AppointmentActionAccept     AppointmentAction = "Accept"
	AppointmentActionComplete   AppointmentAction = "Complete"
)

// appointmentTransitions maps each action onto the status it produces. No action is blocked by
// the current status; every state can be re-entered, including from itself.
var appointmentTransitions = map[AppointmentAction]AppointmentStatus{
	AppointmentActionCancel:     AppointmentStatusCanceled,
	AppointmentActionReschedule: AppointmentStatusRescheduled,
	AppointmentActionAccept:     AppointmentStatusAccepted,
	AppointmentActionComplete:   AppointmentStatusCompleted,
}

var (
	ErrUnknownAppointmentAction = errors.New("unknown appointment action")
	ErrRescheduleDateRequired   = errors.New("a new date is required to reschedule")
)

func ParseAppointmentAction(s string) (AppointmentAction, error) {
	action := AppointmentAction(s)
	if _, ok := appointmentTransitions[action]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAppointmentAction, s)
	}
	return action, nil
}

type Appointment struct {
	Base
	PatientID uuid.UUID         `db:"patient_id" json:"patient_id"`
	DoctorID  uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	Date      time.Time         `db:"date" json:"date"`
	Status    AppointmentStatus `db:"status" json:"status"`
	UpdatedAt time.Time         `db:"updated_at" json:"updated_at"`
}

// Apply moves the appointment to the status produced by action. Reschedule also moves the
// date and needs newDate; on any error the appointment is left untouched.
func (a *Appointment) Apply(action AppointmentAction, newDate *time.Time) error {
	next, ok := appointmentTransitions[action]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAppointmentAction, action)
	}

	if action == AppointmentActionReschedule {
		if newDate == nil || newDate.IsZero() {
			return ErrRescheduleDateRequired
		}
		a.Date = *newDate
	}

	a.Status = next
	return nil
}

// AppointmentView adds the names shown on dashboards.
type AppointmentView struct {
	Appointment
	PatientUsername string `db:"patient_username" json:"patient_username"`
	DoctorUsername  string `db:"doctor_username" json:"doctor_username"`
	DoctorSpecialty string `db:"doctor_specialty" json:"doctor_specialty"`
}

type BookAppointmentRequest struct {
	DoctorID string `json:"doctor_id" binding:"required,uuid"`
	Date     string `json:"date" binding:"required"`
}

type ManageAppointmentRequest struct {
	AppointmentID string `json:"appointment_id" binding:"required,uuid"`
	Action        string `json:"action" binding:"required,appointment_action"`
	NewDate       string `json:"new_date"`
}

type AppointmentFilters struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	Status    AppointmentStatus
}
