// Package policy decides which role may perform which operation on which record. Authorize is
// a pure function of the actor, the operation and the ownership fields of the target.
package policy

import (
	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/pkg/errors"
)

type Operation string

const (
	BookAppointment     Operation = "appointment:book"
	DeleteAppointment   Operation = "appointment:delete"
	ManageAppointment   Operation = "appointment:manage"
	ListAppointments    Operation = "appointment:list"
	CreatePrescription  Operation = "prescription:create"
	UpdatePrescription  Operation = "prescription:update"
	DeletePrescription  Operation = "prescription:delete"
	ViewPrescriptions   Operation = "prescription:view"
	ManagePrescriptions Operation = "prescription:manage"
	GenerateBill        Operation = "billing:generate"
	ViewBills           Operation = "billing:view"
	DeleteBill          Operation = "billing:delete"
	ManageInventory     Operation = "inventory:manage"
	ManageAccounts      Operation = "account:manage"
	ViewAuditLog        Operation = "audit:view"
	ViewDashboard       Operation = "dashboard:view"
)

// Resource carries the ownership fields of the target record. Zero values mean "not
// applicable" for operations that do not target a single record.
type Resource struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	Status    model.AppointmentStatus
	// CareRelation is true when the acting doctor has an appointment with PatientID.
	CareRelation bool
	// Dashboard is the role whose dashboard is requested.
	Dashboard model.RoleKind
}

type Decision struct {
	Allowed bool
	Reason  string
}

func permit() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Reason: reason} }

// Authorize returns Permit or Deny for actor performing op on res.
func Authorize(actor model.Principal, op Operation, res Resource) Decision {
	rule, ok := rules[op]
	if !ok {
		return deny("unknown operation")
	}
	return rule(actor, res)
}

// Enforce is Authorize for callers that want a Forbidden error on denial.
func Enforce(actor model.Principal, op Operation, res Resource) error {
	if d := Authorize(actor, op, res); !d.Allowed {
		return errors.Forbidden(d.Reason)
	}
	return nil
}

type rule func(actor model.Principal, res Resource) Decision

var rules = map[Operation]rule{
	BookAppointment: func(a model.Principal, _ Resource) Decision {
		if a.IsPatient() {
			return permit()
		}
		return deny("only patients can book appointments")
	},

	DeleteAppointment: func(a model.Principal, r Resource) Decision {
		switch {
		case a.IsStaff():
			return permit()
		case a.IsPatient() && ownsPatient(a, r):
			return permit()
		case a.IsDoctor() && ownsDoctor(a, r) && r.Status == model.AppointmentStatusCompleted:
			return permit()
		case a.IsDoctor() && ownsDoctor(a, r):
			return deny("doctors can only delete completed appointments")
		}
		return deny("you are not authorized to delete this appointment")
	},

	ManageAppointment: func(a model.Principal, r Resource) Decision {
		if a.IsDoctor() && ownsDoctor(a, r) {
			return permit()
		}
		return deny("only the assigned doctor can manage this appointment")
	},

	ListAppointments: func(a model.Principal, _ Resource) Decision {
		if a.IsDoctor() {
			return permit()
		}
		return deny("only doctors can manage appointments")
	},

	CreatePrescription: func(a model.Principal, r Resource) Decision {
		if a.IsDoctor() && r.CareRelation {
			return permit()
		}
		return deny("only a doctor caring for this patient can prescribe")
	},

	UpdatePrescription: authorOnly("only the prescribing doctor can update this prescription"),

	DeletePrescription: func(a model.Principal, r Resource) Decision {
		switch {
		case a.IsStaff():
			return permit()
		case a.IsPatient() && ownsPatient(a, r):
			return permit()
		case a.IsDoctor() && ownsDoctor(a, r):
			return permit()
		}
		return deny("you are not authorized to delete this prescription")
	},

	ViewPrescriptions: func(a model.Principal, _ Resource) Decision {
		if a.IsPatient() || a.IsStaff() {
			return permit()
		}
		return deny("prescriptions are listed for patients and staff")
	},

	ManagePrescriptions: func(a model.Principal, _ Resource) Decision {
		if a.IsDoctor() {
			return permit()
		}
		return deny("only doctors can manage prescriptions")
	},

	// Narrower than "any signed-in account": patients and unrelated doctors cannot bill.
	GenerateBill: func(a model.Principal, r Resource) Decision {
		if a.IsStaff() || (a.IsDoctor() && ownsDoctor(a, r)) {
			return permit()
		}
		return deny("only staff or the prescribing doctor can generate a bill")
	},

	ViewBills: func(a model.Principal, _ Resource) Decision {
		if a.IsPatient() || a.IsStaff() {
			return permit()
		}
		return deny("bills are listed for patients and staff")
	},

	DeleteBill: func(a model.Principal, r Resource) Decision {
		if a.IsStaff() || (a.IsPatient() && ownsPatient(a, r)) {
			return permit()
		}
		return deny("you are not authorized to delete this bill")
	},

	ManageInventory: staffOnly("inventory is managed by staff"),
	ManageAccounts:  staffOnly("only staff can manage doctor and staff accounts"),
	ViewAuditLog:    staffOnly("only staff can view the audit log"),

	ViewDashboard: func(a model.Principal, r Resource) Decision {
		if a.Role != model.RoleUnassigned && a.Role == r.Dashboard {
			return permit()
		}
		return deny("this dashboard belongs to another role")
	},
}

func staffOnly(reason string) rule {
	return func(a model.Principal, _ Resource) Decision {
		if a.IsStaff() {
			return permit()
		}
		return deny(reason)
	}
}

func authorOnly(reason string) rule {
	return func(a model.Principal, r Resource) Decision {
		if a.IsDoctor() && ownsDoctor(a, r) {
			return permit()
		}
		return deny(reason)
	}
}

func ownsPatient(a model.Principal, r Resource) bool {
	return a.ProfileID != uuid.Nil && a.ProfileID == r.PatientID
}

func ownsDoctor(a model.Principal, r Resource) bool {
	return a.ProfileID != uuid.Nil && a.ProfileID == r.DoctorID
}
