package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/testutil"
	"github.com/jwalitptl/hospital-api/pkg/errors"
)

func qty(n int) *int { return &n }

func TestInventoryCRUD(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFixture(t)
	svc := NewService(f.Store)

	item, err := svc.Create(ctx, f.Sam, &model.InventoryRequest{ItemName: "Gauze", Quantity: qty(40), Date: "2024-07-01"})
	require.NoError(t, err)
	assert.Equal(t, 40, item.Quantity)

	item, err = svc.Update(ctx, f.Sam, item.ID, &model.InventoryRequest{ItemName: "Gauze", Quantity: qty(0), Date: "2024-07-02"})
	require.NoError(t, err)
	assert.Equal(t, 0, item.Quantity)

	items, err := svc.List(ctx, f.Sam)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, svc.Delete(ctx, f.Sam, item.ID))
	assert.True(t, errors.Is(svc.Delete(ctx, f.Sam, item.ID), errors.ErrNotFound))
	assert.Equal(t, 3, f.AuditCount(t, model.AuditEntityInventory))
}

func TestInventoryStaffOnly(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFixture(t)
	svc := NewService(f.Store)

	for _, actor := range []model.Principal{f.Alice, f.Bob, {}} {
		_, err := svc.List(ctx, actor)
		assert.True(t, errors.Is(err, errors.ErrForbidden))
		_, err = svc.Create(ctx, actor, &model.InventoryRequest{ItemName: "x", Quantity: qty(1), Date: "2024-07-01"})
		assert.True(t, errors.Is(err, errors.ErrForbidden))
		assert.True(t, errors.Is(svc.Delete(ctx, actor, uuid.New()), errors.ErrForbidden))
	}
}

func TestInventoryValidation(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFixture(t)
	svc := NewService(f.Store)

	item, err := svc.Create(ctx, f.Sam, &model.InventoryRequest{ItemName: "Syringes", Quantity: qty(5), Date: "2024-07-01"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, f.Sam, item.ID, &model.InventoryRequest{ItemName: "", Quantity: qty(-1), Date: "yesterday"})
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrValidation, appErr.Code)
	assert.Len(t, appErr.Fields, 3)

	stored, err := f.Store.Inventory().Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Syringes", stored.ItemName)
	assert.Equal(t, 5, stored.Quantity)
}
