package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/testutil"
	"github.com/jwalitptl/hospital-api/pkg/errors"
)

func TestGenerateTwiceCreatesTwoBills(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFixture(t)
	svc := NewService(f.Store)
	svc.now = func() time.Time { return time.Date(2024, 7, 1, 15, 30, 0, 0, time.UTC) }
	rx := f.Prescription(t, f.Alice, f.Bob)

	first, err := svc.Generate(ctx, f.Sam, rx.ID, &model.GenerateBillRequest{Amount: "120.50"})
	require.NoError(t, err)
	second, err := svc.Generate(ctx, f.Sam, rx.ID, &model.GenerateBillRequest{Amount: "120.50"})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	for _, bill := range []*model.Billing{first, second} {
		assert.Equal(t, rx.PatientID, bill.PatientID)
		assert.Equal(t, rx.DoctorID, bill.DoctorID)
		assert.True(t, decimal.RequireFromString("120.50").Equal(bill.Amount))
		assert.Equal(t, "Bill generated for Alice Smith by Dr. Bob Brown", bill.Description)
		assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), bill.Date)
	}

	bills, err := svc.List(ctx, f.Alice)
	require.NoError(t, err)
	assert.Len(t, bills, 2)
}

func TestGenerateAuthorization(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFixture(t)
	svc := NewService(f.Store)
	rx := f.Prescription(t, f.Alice, f.Bob)
	req := &model.GenerateBillRequest{Amount: "10"}

	_, err := svc.Generate(ctx, f.Bob, rx.ID, req)
	assert.NoError(t, err)

	_, err = svc.Generate(ctx, f.Dave, rx.ID, req)
	assert.True(t, errors.Is(err, errors.ErrForbidden))

	_, err = svc.Generate(ctx, f.Alice, rx.ID, req)
	assert.True(t, errors.Is(err, errors.ErrForbidden))

	_, err = svc.Generate(ctx, f.Sam, uuid.New(), req)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestParseAmount(t *testing.T) {
	for _, raw := range []string{"0", "10", "10.5", "10.50", " 99.99 "} {
		_, err := ParseAmount(raw)
		assert.NoError(t, err, raw)
	}
	for _, raw := range []string{"", "abc", "-1", "1.005", "100000000"} {
		_, err := ParseAmount(raw)
		assert.True(t, errors.Is(err, errors.ErrValidation), raw)
	}
}

func TestDeleteBill(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFixture(t)
	svc := NewService(f.Store)
	rx := f.Prescription(t, f.Carol, f.Dave)

	bill, err := svc.Generate(ctx, f.Sam, rx.ID, &model.GenerateBillRequest{Amount: "5"})
	require.NoError(t, err)

	assert.True(t, errors.Is(svc.Delete(ctx, f.Alice, bill.ID), errors.ErrForbidden))
	assert.True(t, errors.Is(svc.Delete(ctx, f.Dave, bill.ID), errors.ErrForbidden))
	require.NoError(t, svc.Delete(ctx, f.Carol, bill.ID))

	bill, err = svc.Generate(ctx, f.Sam, rx.ID, &model.GenerateBillRequest{Amount: "5"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, f.Sam, bill.ID))

	assert.True(t, errors.Is(svc.Delete(ctx, f.Sam, bill.ID), errors.ErrNotFound))
}

func TestListRestrictedToPatientsAndStaff(t *testing.T) {
	f := testutil.NewFixture(t)
	_, err := NewService(f.Store).List(context.Background(), f.Bob)
	assert.True(t, errors.Is(err, errors.ErrForbidden))
}
