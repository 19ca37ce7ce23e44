package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Billing struct {
	Base
	PatientID   uuid.UUID       `db:"patient_id" json:"patient_id"`
	DoctorID    uuid.UUID       `db:"doctor_id" json:"doctor_id"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Date        time.Time       `db:"date" json:"date"`
	Description string          `db:"description" json:"description"`
}

type BillingView struct {
	Billing
	PatientUsername string `db:"patient_username" json:"patient_username"`
	DoctorUsername  string `db:"doctor_username" json:"doctor_username"`
}

type GenerateBillRequest struct {
	Amount string `json:"amount" binding:"required"`
}

type BillingFilters struct {
	PatientID uuid.UUID
}
