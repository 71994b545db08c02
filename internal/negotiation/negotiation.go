// Package negotiation holds the offer state machine: which party may act on a
// pending offer and which transitions are legal. It performs no I/O; services
// feed it snapshots of stored offers and enforce its verdict before writing.
package negotiation

import (
	"errors"

	"github.com/wheeldeal/wheeldeal-backend/internal/model"
)

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

type Action string

const (
	ActionAccept  Action = "accept"
	ActionReject  Action = "reject"
	ActionCounter Action = "counter"
)

var (
	ErrNotRecipient      = errors.New("only the recipient may act on an offer")
	ErrOfferResolved     = errors.New("offer is no longer pending")
	ErrInvalidPrice      = errors.New("price must be a positive amount")
	ErrCounterNotAllowed = errors.New("counter-offers are a seller action")
	ErrCounterUnchanged  = errors.New("counter price must differ from the offer price")
	ErrUnknownAction     = errors.New("unknown action")
)

// Offer is the snapshot the machine reasons about.
type Offer struct {
	SenderRole   Role
	Status       model.OfferStatus
	Price        int64
	CounterPrice *int64
}

// Recipient returns the party entitled to act on an offer sent by the given role.
func Recipient(sender Role) Role {
	if sender == RoleBuyer {
		return RoleSeller
	}
	return RoleBuyer
}

// ParseAction maps a wire string onto an Action.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionAccept, ActionReject, ActionCounter:
		return Action(s), nil
	}
	return "", ErrUnknownAction
}

// Actions lists the legal next moves for viewer on the offer. Non-recipients and
// resolved offers get none. Countering stays a seller-only move: a buyer facing a
// counter-offer may only accept or reject it.
func Actions(o Offer, viewer Role) []Action {
	if o.Status != model.OfferStatusPending || viewer == o.SenderRole {
		return nil
	}
	acts := []Action{ActionAccept, ActionReject}
	if viewer == RoleSeller {
		acts = append(acts, ActionCounter)
	}
	return acts
}

// Validate enforces the transition rules at dispatch time, independent of what
// any client chose to render. counterPrice is only consulted for ActionCounter.
func Validate(o Offer, viewer Role, action Action, counterPrice int64) error {
	switch action {
	case ActionAccept, ActionReject, ActionCounter:
	default:
		return ErrUnknownAction
	}
	// A resolved offer is inert for everyone, sender included, so staleness
	// is reported before recipient-ship.
	if o.Status != model.OfferStatusPending {
		return ErrOfferResolved
	}
	if viewer == o.SenderRole {
		return ErrNotRecipient
	}
	if action == ActionCounter {
		if viewer != RoleSeller {
			return ErrCounterNotAllowed
		}
		if counterPrice <= 0 {
			return ErrInvalidPrice
		}
		if counterPrice == o.Price {
			return ErrCounterUnchanged
		}
	}
	return nil
}

// ValidateNewOffer checks an opening (or superseding) offer amount.
func ValidateNewOffer(price int64) error {
	if price <= 0 {
		return ErrInvalidPrice
	}
	return nil
}

// Resolve returns the status the offer moves to under the action. Callers must
// have validated first; an unknown action keeps the current status.
func Resolve(action Action) model.OfferStatus {
	switch action {
	case ActionAccept:
		return model.OfferStatusAccepted
	case ActionReject:
		return model.OfferStatusRejected
	case ActionCounter:
		return model.OfferStatusCountered
	}
	return model.OfferStatusPending
}
