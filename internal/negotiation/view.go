package negotiation

import (
	"github.com/wheeldeal/wheeldeal-backend/internal/currency"
	"github.com/wheeldeal/wheeldeal-backend/internal/model"
)

// View is the read model a client renders for one offer: labels plus the action
// set for this viewer. Building it mutates nothing.
type View struct {
	Status            model.OfferStatus `json:"status"`
	StatusLabel       string            `json:"statusLabel"`
	PriceLabel        string            `json:"priceLabel"`
	CounterPriceLabel string            `json:"counterPriceLabel,omitempty"`
	ListingPriceLabel string            `json:"listingPriceLabel"`
	Actions           []Action          `json:"actions"`
}

var statusLabels = map[model.OfferStatus]string{
	model.OfferStatusPending:   "Awaiting response",
	model.OfferStatusAccepted:  "Accepted",
	model.OfferStatusRejected:  "Rejected",
	model.OfferStatusCountered: "Countered",
}

// BuildView projects an offer into its display model for the given viewer.
func BuildView(o Offer, viewer Role, listingPrice int64) View {
	v := View{
		Status:            o.Status,
		StatusLabel:       statusLabels[o.Status],
		PriceLabel:        currency.FormatINR(o.Price),
		ListingPriceLabel: currency.FormatINR(listingPrice),
		Actions:           Actions(o, viewer),
	}
	if o.CounterPrice != nil {
		v.CounterPriceLabel = currency.FormatINR(*o.CounterPrice)
	}
	return v
}
