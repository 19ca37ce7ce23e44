package model

import (
	"fmt"

	"github.com/google/uuid"
)

// Prescription.CreatedAt is written once on insert and never updated.
type Prescription struct {
	Base
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Medicine  string    `db:"medicine" json:"medicine"`
	Dosage    string    `db:"dosage" json:"dosage"`
	Duration  string    `db:"duration" json:"duration"`
}

type PrescriptionView struct {
	Prescription
	PatientUsername string `db:"patient_username" json:"patient_username"`
	DoctorUsername  string `db:"doctor_username" json:"doctor_username"`
}

// PrescriptionAction selects the sub-operation of the manage-prescriptions route.
type PrescriptionAction string

const (
	PrescriptionActionCreate PrescriptionAction = "create"
	PrescriptionActionUpdate PrescriptionAction = "update"
	PrescriptionActionDelete PrescriptionAction = "delete"
)

func ParsePrescriptionAction(s string) (PrescriptionAction, error) {
	switch PrescriptionAction(s) {
	case PrescriptionActionCreate, PrescriptionActionUpdate, PrescriptionActionDelete:
		return PrescriptionAction(s), nil
	}
	return "", fmt.Errorf("unknown prescription action %q", s)
}

// PrescriptionForm holds the editable fields.
type PrescriptionForm struct {
	Medicine string `json:"medicine" binding:"required,max=255"`
	Dosage   string `json:"dosage" binding:"required,max=100"`
	Duration string `json:"duration" binding:"required,max=50"`
}

// ManagePrescriptionRequest multiplexes create/update/delete; the form is only bound for
// create and update.
type ManagePrescriptionRequest struct {
	Action         string `json:"action" binding:"required,prescription_action"`
	PrescriptionID string `json:"prescription_id" binding:"omitempty,uuid"`
}

type PrescriptionFilters struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
}
