package model

import (
	"strings"

	"github.com/google/uuid"
)

// Identity is an authenticated account, independent of its role profile.
type Identity struct {
	Base
	Username     string `json:"username" db:"username"`
	FirstName    string `json:"first_name" db:"first_name"`
	LastName     string `json:"last_name" db:"last_name"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
}

// FullName falls back to the username when no name was given.
func (i *Identity) FullName() string {
	name := strings.TrimSpace(i.FirstName + " " + i.LastName)
	if name == "" {
		return i.Username
	}
	return name
}

// IdentityRequest is the account half of every registration form.
type IdentityRequest struct {
	Username        string `json:"username" binding:"required,max=150"`
	FirstName       string `json:"first_name" binding:"max=150"`
	LastName        string `json:"last_name" binding:"max=150"`
	Email           string `json:"email" binding:"omitempty,email"`
	Password        string `json:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" binding:"required,eqfield=Password"`
}

// RegisterPatientRequest creates an identity with a patient profile.
type RegisterPatientRequest struct {
	IdentityRequest
	DateOfBirth    string `json:"dob" binding:"required,datetime=2006-01-02"`
	Address        string `json:"address" binding:"required"`
	Phone          string `json:"phone" binding:"required,max=15"`
	MedicalHistory string `json:"medical_history"`
}

// RegisterDoctorRequest creates an identity with a doctor profile.
type RegisterDoctorRequest struct {
	IdentityRequest
	Specialty string `json:"specialty" binding:"required,max=100"`
	Phone     string `json:"phone" binding:"required,max=15"`
}

// RegisterStaffRequest creates an identity with a staff profile.
type RegisterStaffRequest struct {
	IdentityRequest
	Role  string `json:"role" binding:"required,max=100"`
	Phone string `json:"phone" binding:"required,max=15"`
}

func (r *RegisterPatientRequest) Credentials() IdentityRequest { return r.IdentityRequest }
func (r *RegisterPatientRequest) RoleKind() RoleKind           { return RolePatient }

func (r *RegisterDoctorRequest) Credentials() IdentityRequest { return r.IdentityRequest }
func (r *RegisterDoctorRequest) RoleKind() RoleKind           { return RoleDoctor }

func (r *RegisterStaffRequest) Credentials() IdentityRequest { return r.IdentityRequest }
func (r *RegisterStaffRequest) RoleKind() RoleKind           { return RoleStaff }

// AccountCreated is returned by registration and by the staff-only add doctor/staff operations.
type AccountCreated struct {
	IdentityID uuid.UUID `json:"identity_id"`
	ProfileID  uuid.UUID `json:"profile_id"`
	Username   string    `json:"username"`
	Role       RoleKind  `json:"role"`
}
