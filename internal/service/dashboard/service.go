// Package dashboard assembles the per-role landing pages.
package dashboard

import (
	"context"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/policy"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/pkg/errors"
)

type PatientDashboard struct {
	Appointments  []*model.AppointmentView  `json:"appointments"`
	Prescriptions []*model.PrescriptionView `json:"prescriptions"`
	Bills         []*model.BillingView      `json:"bills"`
}

type DoctorDashboard struct {
	Appointments []*model.AppointmentView `json:"appointments"`
}

type StaffDashboard struct {
	Inventory     []*model.Inventory        `json:"inventory"`
	Prescriptions []*model.PrescriptionView `json:"prescriptions"`
	Bills         []*model.BillingView      `json:"bills"`
	Doctors       []*model.DoctorView       `json:"doctors"`
	Staff         []*model.StaffView        `json:"staff"`
	Patients      []*model.PatientView      `json:"patients"`
}

type Service struct {
	store repository.Store
}

func NewService(store repository.Store) *Service {
	return &Service{store: store}
}

// Get returns the dashboard for role, which must be the actor's own.
func (s *Service) Get(ctx context.Context, actor model.Principal, role model.RoleKind) (interface{}, error) {
	if err := policy.Enforce(actor, policy.ViewDashboard, policy.Resource{Dashboard: role}); err != nil {
		return nil, err
	}

	switch role {
	case model.RolePatient:
		return s.patient(ctx, actor)
	case model.RoleDoctor:
		return s.doctor(ctx, actor)
	case model.RoleStaff:
		return s.staff(ctx)
	}
	return nil, errors.NotFound("dashboard", nil)
}

func (s *Service) patient(ctx context.Context, actor model.Principal) (*PatientDashboard, error) {
	var (
		d   PatientDashboard
		err error
	)
	if d.Appointments, err = s.store.Appointments().List(ctx, &model.AppointmentFilters{PatientID: actor.ProfileID}); err != nil {
		return nil, err
	}
	if d.Prescriptions, err = s.store.Prescriptions().List(ctx, &model.PrescriptionFilters{PatientID: actor.ProfileID}); err != nil {
		return nil, err
	}
	if d.Bills, err = s.store.Billing().List(ctx, &model.BillingFilters{PatientID: actor.ProfileID}); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Service) doctor(ctx context.Context, actor model.Principal) (*DoctorDashboard, error) {
	appointments, err := s.store.Appointments().List(ctx, &model.AppointmentFilters{DoctorID: actor.ProfileID})
	if err != nil {
		return nil, err
	}
	return &DoctorDashboard{Appointments: appointments}, nil
}

func (s *Service) staff(ctx context.Context) (*StaffDashboard, error) {
	var (
		d   StaffDashboard
		err error
	)
	if d.Inventory, err = s.store.Inventory().List(ctx); err != nil {
		return nil, err
	}
	if d.Prescriptions, err = s.store.Prescriptions().List(ctx, &model.PrescriptionFilters{}); err != nil {
		return nil, err
	}
	if d.Bills, err = s.store.Billing().List(ctx, &model.BillingFilters{}); err != nil {
		return nil, err
	}
	if d.Doctors, err = s.store.Doctors().List(ctx); err != nil {
		return nil, err
	}
	if d.Staff, err = s.store.Staff().List(ctx); err != nil {
		return nil, err
	}
	if d.Patients, err = s.store.Patients().List(ctx); err != nil {
		return nil, err
	}
	return &d, nil
}
