package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wheeldeal/wheeldeal-backend/internal/model"
	"github.com/wheeldeal/wheeldeal-backend/internal/negotiation"
)

const (
	buyerUID  = "buyer-1"
	sellerUID = "seller-1"
)

type offerFixture struct {
	svc      OfferService
	conv     *fakeConvRepo
	offers   *fakeOfferRepo
	vehicles *fakeVehicleRepo
	notifier *fakeNotifier
	cv       *model.Conversation
}

func newOfferFixture(t *testing.T) *offerFixture {
	t.Helper()
	conv := newFakeConvRepo()
	offers := newFakeOfferRepo(conv)
	vehicles := newFakeVehicleRepo()
	notifier := &fakeNotifier{}

	v := &model.Vehicle{SellerUID: sellerUID, Title: "2019 Maruti Swift VXI", Price: 600000, Status: model.VehicleStatusActive}
	require.NoError(t, vehicles.Create(context.Background(), v))
	cv := conv.add(&model.Conversation{ID: 1, VehicleID: v.ID, SellerUID: sellerUID, BuyerUID: buyerUID})

	return &offerFixture{
		svc:      NewOfferService(offers, conv, vehicles, notifier),
		conv:     conv,
		offers:   offers,
		vehicles: vehicles,
		notifier: notifier,
		cv:       cv,
	}
}

func TestOfferServiceCreate(t *testing.T) {
	f := newOfferFixture(t)
	ctx := context.Background()

	off, err := f.svc.Create(ctx, f.cv.ID, buyerUID, 500000)
	require.NoError(t, err)
	assert.Equal(t, model.OfferStatusPending, off.Status)
	assert.Equal(t, int64(500000), off.Price)
	assert.Nil(t, off.CounterPrice)

	msgs, _ := f.conv.ListMessages(ctx, f.cv.ID)
	require.Len(t, msgs, 1)
	assert.Equal(t, model.MessageKindOffer, msgs[0].Kind)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, sellerUID, f.notifier.sent[0].UserUID)
	assert.Equal(t, "offer_received", f.notifier.sent[0].Type)
}

func TestOfferServiceCreateRejectsBadInput(t *testing.T) {
	f := newOfferFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.cv.ID, buyerUID, 0)
	require.ErrorIs(t, err, negotiation.ErrInvalidPrice)

	_, err = f.svc.Create(ctx, f.cv.ID, buyerUID, -500)
	require.ErrorIs(t, err, negotiation.ErrInvalidPrice)

	_, err = f.svc.Create(ctx, f.cv.ID, "stranger", 500000)
	require.ErrorIs(t, err, ErrForbidden)

	// Nothing was appended by any of the failed attempts.
	msgs, _ := f.conv.ListMessages(ctx, f.cv.ID)
	assert.Empty(t, msgs)
}

func TestOfferServiceCreateRefusesSecondPending(t *testing.T) {
	f := newOfferFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.cv.ID, buyerUID, 500000)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.cv.ID, buyerUID, 520000)
	require.ErrorIs(t, err, ErrOfferPending)
}

func TestOfferServiceAccept(t *testing.T) {
	f := newOfferFixture(t)
	ctx := context.Background()

	off, err := f.svc.Create(ctx, f.cv.ID, buyerUID, 500000)
	require.NoError(t, err)

	accepted, err := f.svc.Respond(ctx, f.cv.ID, off.ID, sellerUID, negotiation.ActionAccept, 0)
	require.NoError(t, err)
	assert.Equal(t, model.OfferStatusAccepted, accepted.Status)
	assert.NotEmpty(t, accepted.DealCode)

	// Accepting reserves the vehicle and drops a system message.
	v, _ := f.vehicles.FindByID(ctx, f.cv.VehicleID)
	assert.Equal(t, model.VehicleStatusReserved, v.Status)
	msgs, _ := f.conv.ListMessages(ctx, f.cv.ID)
	require.Len(t, msgs, 2)
	assert.Equal(t, model.MessageKindSystem, msgs[1].Kind)
}

func TestOfferServiceSenderCannotActOnOwnOffer(t *testing.T) {
	f := newOfferFixture(t)
	ctx := context.Background()

	off, err := f.svc.Create(ctx, f.cv.ID, buyerUID, 500000)
	require.NoError(t, err)

	_, err = f.svc.Respond(ctx, f.cv.ID, off.ID, buyerUID, negotiation.ActionAccept, 0)
	require.ErrorIs(t, err, ErrForbidden)

	stored, _ := f.offers.FindByID(ctx, off.ID)
	assert.Equal(t, model.OfferStatusPending, stored.Status)
}

func TestOfferServiceCounter(t *testing.T) {
	f := newOfferFixture(t)
	ctx := context.Background()

	off, err := f.svc.Create(ctx, f.cv.ID, buyerUID, 500000)
	require.NoError(t, err)

	next, err := f.svc.Respond(ctx, f.cv.ID, off.ID, sellerUID, negotiation.ActionCounter, 550000)
	require.NoError(t, err)
	assert.Equal(t, model.OfferStatusPending, next.Status)
	assert.Equal(t, int64(550000), next.Price)
	require.NotNil(t, next.CounterPrice)
	assert.Equal(t, int64(500000), *next.CounterPrice)
	require.NotNil(t, next.SupersedesID)
	assert.Equal(t, off.ID, *next.SupersedesID)

	prev, _ := f.offers.FindByID(ctx, off.ID)
	assert.Equal(t, model.OfferStatusCountered, prev.Status)

	// Exactly one new offer message was appended.
	msgs, _ := f.conv.ListMessages(ctx, f.cv.ID)
	require.Len(t, msgs, 2)
	assert.Equal(t, model.MessageKindOffer, msgs[1].Kind)

	// The buyer now faces the counter with accept/reject only.
	view, err := f.svc.LatestView(ctx, f.cv.ID, buyerUID)
	require.NoError(t, err)
	assert.Equal(t, []negotiation.Action{negotiation.ActionAccept, negotiation.ActionReject}, view.View.Actions)
	assert.Equal(t, "₹5,00,000", view.View.CounterPriceLabel)
}

func TestOfferServiceBuyerCannotCounter(t *testing.T) {
	f := newOfferFixture(t)
	ctx := context.Background()

	off, err := f.svc.Create(ctx, f.cv.ID, buyerUID, 500000)
	require.NoError(t, err)
	counter, err := f.svc.Respond(ctx, f.cv.ID, off.ID, sellerUID, negotiation.ActionCounter, 550000)
	require.NoError(t, err)

	_, err = f.svc.Respond(ctx, f.cv.ID, counter.ID, buyerUID, negotiation.ActionCounter, 520000)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestOfferServiceCounterValidation(t *testing.T) {
	f := newOfferFixture(t)
	ctx := context.Background()

	off, err := f.svc.Create(ctx, f.cv.ID, buyerUID, 500000)
	require.NoError(t, err)

	_, err = f.svc.Respond(ctx, f.cv.ID, off.ID, sellerUID, negotiation.ActionCounter, -1)
	require.ErrorIs(t, err, negotiation.ErrInvalidPrice)
	_, err = f.svc.Respond(ctx, f.cv.ID, off.ID, sellerUID, negotiation.ActionCounter, 500000)
	require.ErrorIs(t, err, negotiation.ErrCounterUnchanged)

	msgs, _ := f.conv.ListMessages(ctx, f.cv.ID)
	assert.Len(t, msgs, 1)
}

func TestOfferServiceRepeatRejectIsNoOp(t *testing.T) {
	f := newOfferFixture(t)
	ctx := context.Background()

	off, err := f.svc.Create(ctx, f.cv.ID, buyerUID, 500000)
	require.NoError(t, err)

	_, err = f.svc.Respond(ctx, f.cv.ID, off.ID, sellerUID, negotiation.ActionReject, 0)
	require.NoError(t, err)
	before, _ := f.conv.ListMessages(ctx, f.cv.ID)

	_, err = f.svc.Respond(ctx, f.cv.ID, off.ID, sellerUID, negotiation.ActionReject, 0)
	require.ErrorIs(t, err, ErrOfferResolved)

	after, _ := f.conv.ListMessages(ctx, f.cv.ID)
	assert.Len(t, after, len(before))
	stored, _ := f.offers.FindByID(ctx, off.ID)
	assert.Equal(t, model.OfferStatusRejected, stored.Status)
}

func TestOfferServiceStaleRace(t *testing.T) {
	f := newOfferFixture(t)
	ctx := context.Background()

	off, err := f.svc.Create(ctx, f.cv.ID, buyerUID, 500000)
	require.NoError(t, err)

	// The seller resolves the offer between the buyer's read and write: the
	// buyer's stale counter view must fail cleanly, not clobber the accept.
	_, err = f.svc.Respond(ctx, f.cv.ID, off.ID, sellerUID, negotiation.ActionAccept, 0)
	require.NoError(t, err)
	_, err = f.svc.Respond(ctx, f.cv.ID, off.ID, buyerUID, negotiation.ActionReject, 0)
	require.ErrorIs(t, err, ErrOfferResolved)

	stored, _ := f.offers.FindByID(ctx, off.ID)
	assert.Equal(t, model.OfferStatusAccepted, stored.Status)
}

func TestOfferServiceAcceptSurvivesSystemMessageFailure(t *testing.T) {
	f := newOfferFixture(t)
	ctx := context.Background()

	off, err := f.svc.Create(ctx, f.cv.ID, buyerUID, 500000)
	require.NoError(t, err)

	// The status write is the transition; the trailing system message and
	// read stamp are best-effort and must not fail the accept.
	f.conv.appendErr = errors.New("insert failed")
	accepted, err := f.svc.Respond(ctx, f.cv.ID, off.ID, sellerUID, negotiation.ActionAccept, 0)
	require.NoError(t, err)
	assert.Equal(t, model.OfferStatusAccepted, accepted.Status)
	assert.NotEmpty(t, accepted.DealCode)

	stored, _ := f.offers.FindByID(ctx, off.ID)
	assert.Equal(t, model.OfferStatusAccepted, stored.Status)
}

func TestOfferServiceLatestViewForSenderHasNoActions(t *testing.T) {
	f := newOfferFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.cv.ID, buyerUID, 500000)
	require.NoError(t, err)

	view, err := f.svc.LatestView(ctx, f.cv.ID, buyerUID)
	require.NoError(t, err)
	assert.Empty(t, view.View.Actions)
	assert.Equal(t, "Awaiting response", view.View.StatusLabel)
	assert.Equal(t, "₹6,00,000", view.View.ListingPriceLabel)

	sellerView, err := f.svc.LatestView(ctx, f.cv.ID, sellerUID)
	require.NoError(t, err)
	assert.Equal(t, []negotiation.Action{negotiation.ActionAccept, negotiation.ActionReject, negotiation.ActionCounter}, sellerView.View.Actions)
}

func TestOfferServiceUnreadFlipsToCounterpart(t *testing.T) {
	f := newOfferFixture(t)
	ctx := context.Background()

	off, err := f.svc.Create(ctx, f.cv.ID, buyerUID, 500000)
	require.NoError(t, err)

	sellerUnread, _ := f.conv.HasUnread(ctx, f.cv.ID, sellerUID)
	buyerUnread, _ := f.conv.HasUnread(ctx, f.cv.ID, buyerUID)
	assert.True(t, sellerUnread)
	assert.False(t, buyerUnread)

	_, err = f.svc.Respond(ctx, f.cv.ID, off.ID, sellerUID, negotiation.ActionAccept, 0)
	require.NoError(t, err)

	sellerUnread, _ = f.conv.HasUnread(ctx, f.cv.ID, sellerUID)
	buyerUnread, _ = f.conv.HasUnread(ctx, f.cv.ID, buyerUID)
	assert.False(t, sellerUnread)
	assert.True(t, buyerUnread)
}
