package ai

import (
	"fmt"
	"strings"

	"github.com/wheeldeal/wheeldeal-backend/internal/model"
)

const priceSuggestPrompt = `You are a used-car pricing estimator for an Indian vehicle marketplace.
From the vehicle attributes below, estimate a fair asking price in whole Indian rupees.
Return exactly one number wrapped in dollar signs, e.g. $550000$.
No explanation, no currency symbol, no separators inside the envelope.
If you cannot estimate, return $0$.`

// BuildPricePrompt renders the vehicle attributes for the pricing estimator.
func BuildPricePrompt(v *model.Vehicle) string {
	var b strings.Builder
	b.WriteString(priceSuggestPrompt)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Title: %s\n", v.Title)
	fmt.Fprintf(&b, "Make: %s\nModel: %s\nYear: %d\n", v.Make, v.Model, v.Year)
	fmt.Fprintf(&b, "Mileage: %d km\nFuel: %s\nTransmission: %s\nCity: %s\n", v.MileageKM, v.FuelType, v.Transmission, v.City)
	fmt.Fprintf(&b, "Listed price: %d\n", v.Price)
	if v.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", v.Description)
	}
	return b.String()
}

const replySuggestPrompt = `You are an assistant helping the seller on an Indian used-vehicle marketplace
respond to a buyer's price negotiation. Be polite, concise, and realistic.
Respond in JSON matching this schema:
{"decision": "ACCEPT"|"REJECT"|"COUNTER", "counterPrice": <integer rupees, 0 unless COUNTER>, "reasoning": "<one sentence>", "reply": "<message to send the buyer>"}`

// BuildReplyPrompt renders the negotiation context for the reply assistant.
func BuildReplyPrompt(listingPrice, offerPrice int64, history []HistoryEntry) string {
	var b strings.Builder
	b.WriteString(replySuggestPrompt)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Listing price: %d\nCurrent offer: %d\n\nConversation so far:\n", listingPrice, offerPrice)
	for _, h := range history {
		fmt.Fprintf(&b, "- %s: %s\n", h.Sender, h.Text)
	}
	return b.String()
}

// HistoryEntry is one prior message shown to the reply assistant.
type HistoryEntry struct {
	Sender string
	Text   string
}
