package model

import (
	"time"

	"github.com/google/uuid"
)

type Patient struct {
	Base
	IdentityID     uuid.UUID `db:"identity_id" json:"identity_id"`
	DateOfBirth    time.Time `db:"dob" json:"dob"`
	Address        string    `db:"address" json:"address"`
	Phone          string    `db:"phone" json:"phone"`
	MedicalHistory string    `db:"medical_history" json:"medical_history"`
}

type Doctor struct {
	Base
	IdentityID uuid.UUID `db:"identity_id" json:"identity_id"`
	Specialty  string    `db:"specialty" json:"specialty"`
	Phone      string    `db:"phone" json:"phone"`
}

type Staff struct {
	Base
	IdentityID uuid.UUID `db:"identity_id" json:"identity_id"`
	Role       string    `db:"role" json:"role"`
	Phone      string    `db:"phone" json:"phone"`
}

// PatientView, DoctorView and StaffView join a profile with its identity for listings.
type PatientView struct {
	Patient
	Username  string `db:"username" json:"username"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Email     string `db:"email" json:"email"`
}

type DoctorView struct {
	Doctor
	Username  string `db:"username" json:"username"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
}

type StaffView struct {
	Staff
	Username  string `db:"username" json:"username"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
}
