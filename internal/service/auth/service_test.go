package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/session"
	"github.com/jwalitptl/hospital-api/internal/testutil"
	"github.com/jwalitptl/hospital-api/pkg/auth"
	"github.com/jwalitptl/hospital-api/pkg/errors"
)

func newService(t *testing.T) (*Service, *testutil.Fixture) {
	t.Helper()
	f := testutil.NewFixture(t)
	jwtSvc := auth.NewJWTService("secret", "hospital-api", time.Hour)
	return NewService(f.Store, jwtSvc, session.NewMemoryStore(time.Hour), f.Hasher), f
}

func TestLoginResolvesRoleOnce(t *testing.T) {
	ctx := context.Background()
	svc, f := newService(t)

	resp, err := svc.Login(ctx, "bob", testutil.Password)
	require.NoError(t, err)
	assert.Equal(t, model.RoleDoctor, resp.Role)
	assert.Equal(t, f.Bob.ProfileID, resp.ProfileID)
	assert.Equal(t, "/api/v1/dashboard/doctor", resp.Redirect)

	principal, err := svc.Authenticate(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, f.Bob.IdentityID, principal.IdentityID)
	assert.Equal(t, "bob", principal.Username)
	assert.True(t, principal.IsDoctor())
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	_, err := svc.Login(ctx, "bob", "wrong-password")
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))

	_, err = svc.Login(ctx, "nobody", testutil.Password)
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}

func TestIdentityWithoutProfileIsUnassigned(t *testing.T) {
	ctx := context.Background()
	svc, f := newService(t)

	hash, err := f.Hasher.Hash(testutil.Password)
	require.NoError(t, err)
	require.NoError(t, f.Store.Identities().Create(ctx, &model.Identity{Username: "ghost", PasswordHash: hash}))

	resp, err := svc.Login(ctx, "ghost", testutil.Password)
	require.NoError(t, err)
	assert.Equal(t, model.RoleUnassigned, resp.Role)
	assert.Equal(t, model.HomePath, resp.Redirect)
}

func TestLogoutRevokesToken(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	resp, err := svc.Login(ctx, "alice", testutil.Password)
	require.NoError(t, err)
	principal, err := svc.Authenticate(ctx, resp.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, principal))

	_, err = svc.Authenticate(ctx, resp.AccessToken)
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Authenticate(context.Background(), "not-a-token")
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}

func TestDeletedAccountLosesSession(t *testing.T) {
	ctx := context.Background()
	svc, f := newService(t)

	resp, err := svc.Login(ctx, "dave", testutil.Password)
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, resp.AccessToken)
	require.NoError(t, err)

	require.NoError(t, f.Store.Identities().Delete(ctx, f.Dave.IdentityID))

	_, err = svc.Authenticate(ctx, resp.AccessToken)
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}
