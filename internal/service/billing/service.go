package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/policy"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/internal/service/event"
	"github.com/jwalitptl/hospital-api/pkg/errors"
)

// maxAmount mirrors NUMERIC(10,2).
var maxAmount = decimal.New(1, 8)

type Service struct {
	store repository.Store
	now   func() time.Time
}

func NewService(store repository.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// ParseAmount accepts a non-negative decimal with at most two fractional digits.
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, errors.Validation("amount", "must be a decimal number")
	}
	switch {
	case amount.IsNegative():
		return decimal.Decimal{}, errors.Validation("amount", "must not be negative")
	case amount.Exponent() < -2 && !amount.Equal(amount.Round(2)):
		return decimal.Decimal{}, errors.Validation("amount", "must have at most two decimal places")
	case amount.GreaterThanOrEqual(maxAmount):
		return decimal.Decimal{}, errors.Validation("amount", "is too large")
	}
	return amount.Round(2), nil
}

// Generate creates a bill from a prescription. Calling it twice creates two bills.
func (s *Service) Generate(ctx context.Context, actor model.Principal, prescriptionID uuid.UUID, req *model.GenerateBillRequest) (*model.Billing, error) {
	amount, err := ParseAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	var bill *model.Billing
	err = s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		rx, err := tx.Prescriptions().Get(ctx, prescriptionID)
		if err != nil {
			return err
		}
		if err := policy.Enforce(actor, policy.GenerateBill, policy.Resource{
			PatientID: rx.PatientID,
			DoctorID:  rx.DoctorID,
		}); err != nil {
			return err
		}

		patient, err := tx.Patients().Get(ctx, rx.PatientID)
		if err != nil {
			return err
		}
		doctor, err := tx.Doctors().Get(ctx, rx.DoctorID)
		if err != nil {
			return err
		}

		patientName := fullName(patient.Username, patient.FirstName, patient.LastName)
		now := s.now().UTC()
		bill = &model.Billing{
			PatientID:   rx.PatientID,
			DoctorID:    rx.DoctorID,
			Amount:      amount,
			Date:        time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
			Description: Description(patientName, fullName(doctor.Username, doctor.FirstName, doctor.LastName)),
		}
		if err := tx.Billing().Create(ctx, bill); err != nil {
			return err
		}

		var notify *model.Notification
		if patient.Email != "" {
			notify = &model.Notification{
				Recipient: patient.Email,
				Subject:   "New bill",
				Body:      fmt.Sprintf("Hello %s,\n\n%s. Amount due: %s.\n", patientName, bill.Description, bill.Amount.StringFixed(2)),
			}
		}
		return event.Record(ctx, tx, actor, event.Change{
			Action:     model.AuditActionCreate,
			EntityType: model.AuditEntityBilling,
			EntityID:   bill.ID,
			EventType:  model.EventBillGenerated,
			Data:       bill,
			Notify:     notify,
		})
	})
	if err != nil {
		return nil, err
	}
	return bill, nil
}

// Description is the text stored on generated bills.
func Description(patientName, doctorName string) string {
	return fmt.Sprintf("Bill generated for %s by Dr. %s", patientName, doctorName)
}

// List returns a patient's own bills, or every bill for staff.
func (s *Service) List(ctx context.Context, actor model.Principal) ([]*model.BillingView, error) {
	if err := policy.Enforce(actor, policy.ViewBills, policy.Resource{}); err != nil {
		return nil, err
	}
	filters := &model.BillingFilters{}
	if actor.IsPatient() {
		filters.PatientID = actor.ProfileID
	}
	return s.store.Billing().List(ctx, filters)
}

func (s *Service) Delete(ctx context.Context, actor model.Principal, id uuid.UUID) error {
	return s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		bill, err := tx.Billing().Get(ctx, id)
		if err != nil {
			return err
		}
		if err := policy.Enforce(actor, policy.DeleteBill, policy.Resource{
			PatientID: bill.PatientID,
			DoctorID:  bill.DoctorID,
		}); err != nil {
			return err
		}

		if err := tx.Billing().Delete(ctx, id); err != nil {
			return err
		}
		return event.Record(ctx, tx, actor, event.Change{
			Action:     model.AuditActionDelete,
			EntityType: model.AuditEntityBilling,
			EntityID:   id,
			EventType:  model.EventBillDeleted,
			Data:       bill,
		})
	})
}

func fullName(username, first, last string) string {
	identity := model.Identity{Username: username, FirstName: first, LastName: last}
	return identity.FullName()
}
