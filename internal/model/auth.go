package model

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// RoleKind tags which role profile is attached to an identity.
type RoleKind string

const (
	RoleUnassigned RoleKind = ""
	RolePatient    RoleKind = "patient"
	RoleDoctor     RoleKind = "doctor"
	RoleStaff      RoleKind = "staff"
)

// ParseRoleKind accepts only the three assignable roles.
func ParseRoleKind(s string) (RoleKind, error) {
	switch RoleKind(s) {
	case RolePatient, RoleDoctor, RoleStaff:
		return RoleKind(s), nil
	}
	return RoleUnassigned, fmt.Errorf("unknown role %q", s)
}

// Principal is the acting identity together with its resolved role. It is decided once at
// login and carried in the session; nothing probes for profiles after that.
type Principal struct {
	IdentityID uuid.UUID `json:"identity_id"`
	Username   string    `json:"username"`
	Role       RoleKind  `json:"role"`
	ProfileID  uuid.UUID `json:"profile_id"`
	SessionID  string    `json:"-"`
}

func (p Principal) IsPatient() bool { return p.Role == RolePatient }
func (p Principal) IsDoctor() bool  { return p.Role == RoleDoctor }
func (p Principal) IsStaff() bool   { return p.Role == RoleStaff }

// DashboardPath is where a denied or freshly logged-in actor is sent.
func (p Principal) DashboardPath() string {
	switch p.Role {
	case RolePatient, RoleDoctor, RoleStaff:
		return "/api/v1/dashboard/" + string(p.Role)
	}
	return HomePath
}

// HomePath is the neutral landing route.
const HomePath = "/api/v1/"

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the access token and the dashboard to go to.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	Role        RoleKind  `json:"role"`
	ProfileID   uuid.UUID `json:"profile_id"`
	Redirect    string    `json:"redirect"`
}

// TokenClaims represents JWT claims
type TokenClaims struct {
	jwt.RegisteredClaims
	Username  string    `json:"username"`
	Role      RoleKind  `json:"role"`
	ProfileID uuid.UUID `json:"profile_id"`
}

// Session is what the session store keeps per login.
type Session struct {
	ID         string    `json:"id"`
	IdentityID uuid.UUID `json:"identity_id"`
	Role       RoleKind  `json:"role"`
	ProfileID  uuid.UUID `json:"profile_id"`
}
