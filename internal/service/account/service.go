package account

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/policy"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/internal/service/event"
	"github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/security"
)

// RegistrationRequest is implemented by the three role-specific registration forms.
type RegistrationRequest interface {
	Credentials() model.IdentityRequest
	RoleKind() model.RoleKind
}

// profileWriter stores the role profile for a freshly created identity and returns its id.
type profileWriter func(ctx context.Context, tx repository.Repositories, identityID uuid.UUID, req RegistrationRequest) (uuid.UUID, error)

type registration struct {
	newRequest func() RegistrationRequest
	write      profileWriter
}

var registrations = map[model.RoleKind]registration{
	model.RolePatient: {
		newRequest: func() RegistrationRequest { return &model.RegisterPatientRequest{} },
		write:      writePatient,
	},
	model.RoleDoctor: {
		newRequest: func() RegistrationRequest { return &model.RegisterDoctorRequest{} },
		write:      writeDoctor,
	},
	model.RoleStaff: {
		newRequest: func() RegistrationRequest { return &model.RegisterStaffRequest{} },
		write:      writeStaff,
	},
}

// NewRequest returns an empty form for role, ready for binding.
func NewRequest(role model.RoleKind) (RegistrationRequest, error) {
	reg, ok := registrations[role]
	if !ok {
		return nil, errors.Validation("role", fmt.Sprintf("unknown role %q", role))
	}
	return reg.newRequest(), nil
}

type Service struct {
	store  repository.Store
	hasher security.PasswordHasher
}

func NewService(store repository.Store, hasher security.PasswordHasher) *Service {
	return &Service{store: store, hasher: hasher}
}

// Register creates an identity and its role profile in one transaction. It backs public
// registration for every role.
func (s *Service) Register(ctx context.Context, req RegistrationRequest) (*model.AccountCreated, error) {
	reg, ok := registrations[req.RoleKind()]
	if !ok {
		return nil, errors.Validation("role", fmt.Sprintf("unknown role %q", req.RoleKind()))
	}

	creds := req.Credentials()
	if creds.Password != creds.PasswordConfirm {
		return nil, errors.Validation("password_confirm", "passwords do not match")
	}
	hash, err := s.hasher.Hash(creds.Password)
	if err != nil {
		if stderrors.Is(err, security.ErrPasswordTooShort) {
			return nil, errors.Validation("password", fmt.Sprintf("must be at least %d characters", security.MinPasswordLen))
		}
		return nil, errors.Internal(err)
	}

	identity := &model.Identity{
		Username:     creds.Username,
		FirstName:    creds.FirstName,
		LastName:     creds.LastName,
		Email:        creds.Email,
		PasswordHash: hash,
	}

	var created *model.AccountCreated
	err = s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		if err := tx.Identities().Create(ctx, identity); err != nil {
			return err
		}
		profileID, err := reg.write(ctx, tx, identity.ID, req)
		if err != nil {
			return err
		}

		created = &model.AccountCreated{
			IdentityID: identity.ID,
			ProfileID:  profileID,
			Username:   identity.Username,
			Role:       req.RoleKind(),
		}
		self := model.Principal{IdentityID: identity.ID, Username: identity.Username, Role: req.RoleKind(), ProfileID: profileID}
		return event.Record(ctx, tx, self, event.Change{
			Action:     model.AuditActionCreate,
			EntityType: model.AuditEntityIdentity,
			EntityID:   identity.ID,
			EventType:  model.EventAccountCreated,
			Data:       created,
			Notify:     welcome(identity),
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AddAccount is the staff-only way to create doctor and staff accounts.
func (s *Service) AddAccount(ctx context.Context, actor model.Principal, req RegistrationRequest) (*model.AccountCreated, error) {
	if err := policy.Enforce(actor, policy.ManageAccounts, policy.Resource{}); err != nil {
		return nil, err
	}
	if role := req.RoleKind(); role != model.RoleDoctor && role != model.RoleStaff {
		return nil, errors.Validation("role", "only doctor and staff accounts can be added")
	}
	return s.Register(ctx, req)
}

// DeleteDoctor removes the doctor's identity; the profile and everything referencing it
// goes with it.
func (s *Service) DeleteDoctor(ctx context.Context, actor model.Principal, doctorID uuid.UUID) error {
	if err := policy.Enforce(actor, policy.ManageAccounts, policy.Resource{}); err != nil {
		return err
	}
	return s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		doctor, err := tx.Doctors().Get(ctx, doctorID)
		if err != nil {
			return err
		}
		return s.deleteIdentity(ctx, tx, actor, doctor.IdentityID, doctor)
	})
}

func (s *Service) DeleteStaff(ctx context.Context, actor model.Principal, staffID uuid.UUID) error {
	if err := policy.Enforce(actor, policy.ManageAccounts, policy.Resource{}); err != nil {
		return err
	}
	return s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		staff, err := tx.Staff().Get(ctx, staffID)
		if err != nil {
			return err
		}
		return s.deleteIdentity(ctx, tx, actor, staff.IdentityID, staff)
	})
}

func (s *Service) deleteIdentity(ctx context.Context, tx repository.Repositories, actor model.Principal, identityID uuid.UUID, snapshot interface{}) error {
	if err := tx.Identities().Delete(ctx, identityID); err != nil {
		return err
	}
	return event.Record(ctx, tx, actor, event.Change{
		Action:     model.AuditActionDelete,
		EntityType: model.AuditEntityIdentity,
		EntityID:   identityID,
		EventType:  model.EventAccountDeleted,
		Data:       snapshot,
	})
}

func welcome(identity *model.Identity) *model.Notification {
	if identity.Email == "" {
		return nil
	}
	return &model.Notification{
		Recipient: identity.Email,
		Subject:   "Welcome to the hospital portal",
		Body:      fmt.Sprintf("Hello %s,\n\nYour account %q is ready.\n", identity.FullName(), identity.Username),
	}
}

func writePatient(ctx context.Context, tx repository.Repositories, identityID uuid.UUID, req RegistrationRequest) (uuid.UUID, error) {
	r := req.(*model.RegisterPatientRequest)
	dob, err := time.Parse(model.DateLayout, r.DateOfBirth)
	if err != nil {
		return uuid.Nil, errors.Validation("dob", "must be a date in YYYY-MM-DD format")
	}

	patient := &model.Patient{
		IdentityID:     identityID,
		DateOfBirth:    dob,
		Address:        r.Address,
		Phone:          r.Phone,
		MedicalHistory: r.MedicalHistory,
	}
	if err := tx.Patients().Create(ctx, patient); err != nil {
		return uuid.Nil, err
	}
	return patient.ID, nil
}

func writeDoctor(ctx context.Context, tx repository.Repositories, identityID uuid.UUID, req RegistrationRequest) (uuid.UUID, error) {
	r := req.(*model.RegisterDoctorRequest)
	doctor := &model.Doctor{
		IdentityID: identityID,
		Specialty:  r.Specialty,
		Phone:      r.Phone,
	}
	if err := tx.Doctors().Create(ctx, doctor); err != nil {
		return uuid.Nil, err
	}
	return doctor.ID, nil
}

func writeStaff(ctx context.Context, tx repository.Repositories, identityID uuid.UUID, req RegistrationRequest) (uuid.UUID, error) {
	r := req.(*model.RegisterStaffRequest)
	staff := &model.Staff{
		IdentityID: identityID,
		Role:       r.Role,
		Phone:      r.Phone,
	}
	if err := tx.Staff().Create(ctx, staff); err != nil {
		return uuid.Nil, err
	}
	return staff.ID, nil
}

// ListDoctors is the directory patients book from.
func (s *Service) ListDoctors(ctx context.Context) ([]*model.DoctorView, error) {
	return s.store.Doctors().List(ctx)
}
