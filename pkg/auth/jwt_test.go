package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewJWTService("secret", "hospital-api", time.Hour)
	principal := model.Principal{
		IdentityID: uuid.New(),
		Username:   "bob",
		Role:       model.RoleDoctor,
		ProfileID:  uuid.New(),
	}

	token, err := svc.GenerateAccessToken(principal, "session-1")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, principal.IdentityID.String(), claims.Subject)
	assert.Equal(t, "session-1", claims.ID)
	assert.Equal(t, model.RoleDoctor, claims.Role)
	assert.Equal(t, principal.ProfileID, claims.ProfileID)
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	token, err := NewJWTService("other", "hospital-api", time.Hour).
		GenerateAccessToken(model.Principal{IdentityID: uuid.New()}, "s")
	require.NoError(t, err)

	_, err = NewJWTService("secret", "hospital-api", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpired(t *testing.T) {
	svc := NewJWTService("secret", "hospital-api", -time.Minute)
	token, err := svc.GenerateAccessToken(model.Principal{IdentityID: uuid.New()}, "s")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
