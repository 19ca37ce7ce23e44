package audit

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/testutil"
	"github.com/jwalitptl/hospital-api/pkg/errors"
)

func TestLogAndList(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFixture(t)
	svc := NewService(f.Store.Audit())
	entity := uuid.New()

	require.NoError(t, Log(ctx, f.Store.Audit(), f.Sam, model.AuditActionCreate, model.AuditEntityInventory, entity,
		&LogOptions{Changes: map[string]int{"quantity": 3}}))
	require.NoError(t, Log(ctx, f.Store.Audit(), f.Bob, model.AuditActionLogin, model.AuditEntityIdentity, f.Bob.IdentityID, nil))

	logs, err := svc.List(ctx, f.Sam, &model.AuditFilters{EntityType: model.AuditEntityInventory})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.RoleStaff, logs[0].Role)
	assert.Equal(t, entity, logs[0].EntityID)

	var changes map[string]int
	require.NoError(t, json.Unmarshal(logs[0].Changes, &changes))
	assert.Equal(t, 3, changes["quantity"])

	logs, err = svc.List(ctx, f.Sam, &model.AuditFilters{IdentityID: f.Bob.IdentityID})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.JSONEq(t, `{}`, string(logs[0].Changes))
}

func TestListStaffOnly(t *testing.T) {
	f := testutil.NewFixture(t)
	_, err := NewService(f.Store.Audit()).List(context.Background(), f.Alice, nil)
	assert.True(t, errors.Is(err, errors.ErrForbidden))
}
