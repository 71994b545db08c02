package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wheeldeal/wheeldeal-backend/internal/model"
)

func newTestDriveFixture(t *testing.T) (TestDriveService, *fakeConvRepo, *fakeTestDriveRepo) {
	t.Helper()
	conv := newFakeConvRepo()
	conv.add(&model.Conversation{ID: 1, VehicleID: 7, SellerUID: sellerUID, BuyerUID: buyerUID})
	tdRepo := newFakeTestDriveRepo(conv)
	return NewTestDriveService(tdRepo, conv, &fakeNotifier{}), conv, tdRepo
}

func TestTestDriveRequestAndConfirm(t *testing.T) {
	svc, conv, _ := newTestDriveFixture(t)
	ctx := context.Background()
	slot := time.Now().Add(48 * time.Hour)

	td, err := svc.Request(ctx, 1, buyerUID, slot)
	require.NoError(t, err)
	assert.Equal(t, model.TestDriveStatusPending, td.Status)

	confirmed, err := svc.Respond(ctx, 1, td.ID, sellerUID, true)
	require.NoError(t, err)
	assert.Equal(t, model.TestDriveStatusConfirmed, confirmed.Status)

	msgs, _ := conv.ListMessages(ctx, 1)
	require.Len(t, msgs, 2)
	assert.Equal(t, model.MessageKindTestDrive, msgs[0].Kind)
	assert.Equal(t, model.MessageKindSystem, msgs[1].Kind)
}

func TestTestDriveAuthorization(t *testing.T) {
	svc, _, _ := newTestDriveFixture(t)
	ctx := context.Background()
	slot := time.Now().Add(48 * time.Hour)

	_, err := svc.Request(ctx, 1, sellerUID, slot)
	require.ErrorIs(t, err, ErrForbidden)

	td, err := svc.Request(ctx, 1, buyerUID, slot)
	require.NoError(t, err)

	_, err = svc.Respond(ctx, 1, td.ID, buyerUID, true)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestTestDriveRejectsPastSlot(t *testing.T) {
	svc, _, _ := newTestDriveFixture(t)
	_, err := svc.Request(context.Background(), 1, buyerUID, time.Now().Add(-time.Hour))
	require.Error(t, err)
}

func TestTestDriveDoubleRespond(t *testing.T) {
	svc, _, _ := newTestDriveFixture(t)
	ctx := context.Background()

	td, err := svc.Request(ctx, 1, buyerUID, time.Now().Add(24*time.Hour))
	require.NoError(t, err)

	_, err = svc.Respond(ctx, 1, td.ID, sellerUID, false)
	require.NoError(t, err)
	_, err = svc.Respond(ctx, 1, td.ID, sellerUID, true)
	require.ErrorIs(t, err, ErrTestDriveResolved)
}
