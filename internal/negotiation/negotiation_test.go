package negotiation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wheeldeal/wheeldeal-backend/internal/model"
)

func pendingFrom(sender Role, price int64) Offer {
	return Offer{SenderRole: sender, Status: model.OfferStatusPending, Price: price}
}

func TestActions(t *testing.T) {
	tests := []struct {
		name   string
		offer  Offer
		viewer Role
		want   []Action
	}{
		{"seller sees full set on buyer offer", pendingFrom(RoleBuyer, 500000), RoleSeller, []Action{ActionAccept, ActionReject, ActionCounter}},
		{"buyer cannot counter a counter-offer", pendingFrom(RoleSeller, 550000), RoleBuyer, []Action{ActionAccept, ActionReject}},
		{"sender gets nothing on own offer", pendingFrom(RoleBuyer, 500000), RoleBuyer, nil},
		{"accepted offer is inert", Offer{SenderRole: RoleBuyer, Status: model.OfferStatusAccepted, Price: 500000}, RoleSeller, nil},
		{"countered offer is inert", Offer{SenderRole: RoleBuyer, Status: model.OfferStatusCountered, Price: 500000}, RoleSeller, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Actions(tt.offer, tt.viewer))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name         string
		offer        Offer
		viewer       Role
		action       Action
		counterPrice int64
		wantErr      error
	}{
		{"seller accepts buyer offer", pendingFrom(RoleBuyer, 500000), RoleSeller, ActionAccept, 0, nil},
		{"buyer rejects seller counter", pendingFrom(RoleSeller, 550000), RoleBuyer, ActionReject, 0, nil},
		{"seller counters buyer offer", pendingFrom(RoleBuyer, 500000), RoleSeller, ActionCounter, 550000, nil},
		{"sender may not accept own offer", pendingFrom(RoleBuyer, 500000), RoleBuyer, ActionAccept, 0, ErrNotRecipient},
		{"resolved offer rejects accept", Offer{SenderRole: RoleBuyer, Status: model.OfferStatusRejected, Price: 500000}, RoleSeller, ActionAccept, 0, ErrOfferResolved},
		{"resolved offer rejects repeat reject", Offer{SenderRole: RoleBuyer, Status: model.OfferStatusRejected, Price: 500000}, RoleSeller, ActionReject, 0, ErrOfferResolved},
		{"resolved offer is stale even for its sender", Offer{SenderRole: RoleBuyer, Status: model.OfferStatusAccepted, Price: 500000}, RoleBuyer, ActionReject, 0, ErrOfferResolved},
		{"countered offer is stale for the counter sender", Offer{SenderRole: RoleSeller, Status: model.OfferStatusCountered, Price: 550000}, RoleSeller, ActionAccept, 0, ErrOfferResolved},
		{"buyer may not counter", pendingFrom(RoleSeller, 550000), RoleBuyer, ActionCounter, 520000, ErrCounterNotAllowed},
		{"counter needs positive price", pendingFrom(RoleBuyer, 500000), RoleSeller, ActionCounter, 0, ErrInvalidPrice},
		{"counter needs positive price negative", pendingFrom(RoleBuyer, 500000), RoleSeller, ActionCounter, -100, ErrInvalidPrice},
		{"counter at same price is pointless", pendingFrom(RoleBuyer, 500000), RoleSeller, ActionCounter, 500000, ErrCounterUnchanged},
		{"unknown action", pendingFrom(RoleBuyer, 500000), RoleSeller, Action("confirm"), 0, ErrUnknownAction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.offer, tt.viewer, tt.action, tt.counterPrice)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRecipient(t *testing.T) {
	assert.Equal(t, RoleSeller, Recipient(RoleBuyer))
	assert.Equal(t, RoleBuyer, Recipient(RoleSeller))
}

func TestResolve(t *testing.T) {
	assert.Equal(t, model.OfferStatusAccepted, Resolve(ActionAccept))
	assert.Equal(t, model.OfferStatusRejected, Resolve(ActionReject))
	assert.Equal(t, model.OfferStatusCountered, Resolve(ActionCounter))
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction("counter")
	require.NoError(t, err)
	assert.Equal(t, ActionCounter, a)

	_, err = ParseAction("approve")
	require.ErrorIs(t, err, ErrUnknownAction)
}

func TestBuildView(t *testing.T) {
	cp := int64(500000)
	o := Offer{SenderRole: RoleSeller, Status: model.OfferStatusPending, Price: 550000, CounterPrice: &cp}

	v := BuildView(o, RoleBuyer, 600000)
	assert.Equal(t, "Awaiting response", v.StatusLabel)
	assert.Equal(t, "₹5,50,000", v.PriceLabel)
	assert.Equal(t, "₹5,00,000", v.CounterPriceLabel)
	assert.Equal(t, "₹6,00,000", v.ListingPriceLabel)
	assert.Equal(t, []Action{ActionAccept, ActionReject}, v.Actions)

	// The sender of the pending counter sees state but no controls.
	sellerView := BuildView(o, RoleSeller, 600000)
	assert.Empty(t, sellerView.Actions)
}
