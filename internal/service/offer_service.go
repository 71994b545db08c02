package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/oklog/ulid/v2"
	"github.com/wheeldeal/wheeldeal-backend/internal/currency"
	"github.com/wheeldeal/wheeldeal-backend/internal/model"
	"github.com/wheeldeal/wheeldeal-backend/internal/negotiation"
	"github.com/wheeldeal/wheeldeal-backend/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrForbidden     = errors.New("forbidden")
	ErrOfferResolved = errors.New("offer was already resolved")
	ErrOfferPending  = errors.New("a pending offer already exists")
)

// OfferView pairs the stored offer with the caller-specific read model.
type OfferView struct {
	Offer model.Offer      `json:"offer"`
	View  negotiation.View `json:"view"`
}

// OfferService is the response dispatcher: every UI intent becomes exactly one
// guarded store mutation, validated here regardless of what the client rendered.
type OfferService interface {
	Create(ctx context.Context, convID uint64, uid string, price int64) (*model.Offer, error)
	LatestView(ctx context.Context, convID uint64, uid string) (*OfferView, error)
	Respond(ctx context.Context, convID, offerID uint64, uid string, action negotiation.Action, counterPrice int64) (*model.Offer, error)
}

type offerService struct {
	offerRepo   repository.OfferRepository
	convRepo    repository.ConversationRepository
	vehicleRepo repository.VehicleRepository
	notifier    NotificationService
}

func NewOfferService(offerRepo repository.OfferRepository, convRepo repository.ConversationRepository, vehicleRepo repository.VehicleRepository, notifier NotificationService) OfferService {
	return &offerService{offerRepo: offerRepo, convRepo: convRepo, vehicleRepo: vehicleRepo, notifier: notifier}
}

func (s *offerService) conversation(ctx context.Context, convID uint64, uid string) (*model.Conversation, negotiation.Role, error) {
	cv, err := s.convRepo.FindByID(ctx, convID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	if !cv.Participant(uid) {
		return nil, "", ErrForbidden
	}
	role := negotiation.RoleSeller
	if uid == cv.BuyerUID {
		role = negotiation.RoleBuyer
	}
	return cv, role, nil
}

func (s *offerService) roleOf(cv *model.Conversation, uid string) negotiation.Role {
	if uid == cv.BuyerUID {
		return negotiation.RoleBuyer
	}
	return negotiation.RoleSeller
}

func (s *offerService) Create(ctx context.Context, convID uint64, uid string, price int64) (*model.Offer, error) {
	if err := negotiation.ValidateNewOffer(price); err != nil {
		return nil, err
	}
	cv, _, err := s.conversation(ctx, convID, uid)
	if err != nil {
		return nil, err
	}
	if pending, err := s.offerRepo.PendingByConversation(ctx, convID); err != nil {
		return nil, err
	} else if pending != nil {
		return nil, ErrOfferPending
	}

	msg := &model.Message{
		ConversationID: convID,
		SenderUID:      uid,
		Kind:           model.MessageKindOffer,
		Body:           fmt.Sprintf("Offered %s", currency.FormatINR(price)),
	}
	off := &model.Offer{
		ConversationID: convID,
		SenderUID:      uid,
		Price:          price,
		Status:         model.OfferStatusPending,
	}
	if err := s.offerRepo.CreateWithMessage(ctx, msg, off); err != nil {
		return nil, err
	}
	if err := s.convRepo.MarkRead(ctx, convID, uid); err != nil {
		log.Printf("[offer] conv=%d mark read failed: %v", convID, err)
	}
	s.notifier.Notify(ctx, cv.OtherParty(uid), "offer_received", "New offer",
		fmt.Sprintf("You received an offer of %s", currency.FormatINR(price)),
		&cv.VehicleID, &convID, &off.ID)
	return off, nil
}

func (s *offerService) LatestView(ctx context.Context, convID uint64, uid string) (*OfferView, error) {
	cv, role, err := s.conversation(ctx, convID, uid)
	if err != nil {
		return nil, err
	}
	off, err := s.offerRepo.LatestByConversation(ctx, convID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	listingPrice := int64(0)
	if v, err := s.vehicleRepo.FindByID(ctx, cv.VehicleID); err == nil {
		listingPrice = v.Price
	}
	snap := negotiation.Offer{
		SenderRole:   s.roleOf(cv, off.SenderUID),
		Status:       off.Status,
		Price:        off.Price,
		CounterPrice: off.CounterPrice,
	}
	return &OfferView{
		Offer: *off,
		View:  negotiation.BuildView(snap, role, listingPrice),
	}, nil
}

func (s *offerService) Respond(ctx context.Context, convID, offerID uint64, uid string, action negotiation.Action, counterPrice int64) (*model.Offer, error) {
	cv, role, err := s.conversation(ctx, convID, uid)
	if err != nil {
		return nil, err
	}
	off, err := s.offerRepo.FindByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if off.ConversationID != convID {
		return nil, ErrNotFound
	}

	snap := negotiation.Offer{
		SenderRole:   s.roleOf(cv, off.SenderUID),
		Status:       off.Status,
		Price:        off.Price,
		CounterPrice: off.CounterPrice,
	}
	if err := negotiation.Validate(snap, role, action, counterPrice); err != nil {
		if errors.Is(err, negotiation.ErrOfferResolved) {
			return nil, ErrOfferResolved
		}
		if errors.Is(err, negotiation.ErrNotRecipient) || errors.Is(err, negotiation.ErrCounterNotAllowed) {
			return nil, ErrForbidden
		}
		return nil, err
	}

	switch action {
	case negotiation.ActionCounter:
		return s.counter(ctx, cv, off, uid, counterPrice)
	default:
		return s.resolve(ctx, cv, off, uid, action)
	}
}

func (s *offerService) resolve(ctx context.Context, cv *model.Conversation, off *model.Offer, uid string, action negotiation.Action) (*model.Offer, error) {
	status := negotiation.Resolve(action)
	dealCode := ""
	if status == model.OfferStatusAccepted {
		dealCode = ulid.Make().String()
	}
	rows, err := s.offerRepo.ResolveIfPending(ctx, off.ID, off.Revision, status, dealCode)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// The other party got there first; report, don't clobber.
		return nil, ErrOfferResolved
	}
	off.Status = status
	off.Revision++
	off.DealCode = dealCode

	body := fmt.Sprintf("Offer of %s was rejected", currency.FormatINR(off.Price))
	notifType := "offer_rejected"
	if status == model.OfferStatusAccepted {
		body = fmt.Sprintf("Offer of %s was accepted. Deal reference %s", currency.FormatINR(off.Price), dealCode)
		notifType = "offer_accepted"
		if err := s.vehicleRepo.UpdateStatus(ctx, cv.VehicleID, model.VehicleStatusReserved); err != nil {
			log.Printf("[offer] conv=%d offer=%d reserve vehicle failed: %v", cv.ID, off.ID, err)
		}
	}
	if err := s.convRepo.AppendMessage(ctx, &model.Message{
		ConversationID: cv.ID,
		SenderUID:      uid,
		Kind:           model.MessageKindSystem,
		Body:           body,
	}); err != nil {
		log.Printf("[offer] conv=%d offer=%d system message failed: %v", cv.ID, off.ID, err)
	}
	if err := s.convRepo.MarkRead(ctx, cv.ID, uid); err != nil {
		log.Printf("[offer] conv=%d mark read failed: %v", cv.ID, err)
	}
	s.notifier.Notify(ctx, cv.OtherParty(uid), notifType, "Offer update", body, &cv.VehicleID, &cv.ID, &off.ID)
	return off, nil
}

func (s *offerService) counter(ctx context.Context, cv *model.Conversation, off *model.Offer, uid string, counterPrice int64) (*model.Offer, error) {
	prevPrice := off.Price
	msg := &model.Message{
		ConversationID: cv.ID,
		SenderUID:      uid,
		Kind:           model.MessageKindOffer,
		Body:           fmt.Sprintf("Countered %s with %s", currency.FormatINR(prevPrice), currency.FormatINR(counterPrice)),
	}
	next := &model.Offer{
		ConversationID: cv.ID,
		SenderUID:      uid,
		Price:          counterPrice,
		CounterPrice:   &prevPrice,
		SupersedesID:   &off.ID,
		Status:         model.OfferStatusPending,
	}
	if err := s.offerRepo.Counter(ctx, off, msg, next); err != nil {
		if errors.Is(err, repository.ErrStaleOffer) {
			return nil, ErrOfferResolved
		}
		return nil, err
	}
	if err := s.convRepo.MarkRead(ctx, cv.ID, uid); err != nil {
		log.Printf("[offer] conv=%d mark read failed: %v", cv.ID, err)
	}
	s.notifier.Notify(ctx, cv.OtherParty(uid), "offer_countered", "Counter-offer",
		fmt.Sprintf("Seller countered with %s", currency.FormatINR(counterPrice)),
		&cv.VehicleID, &cv.ID, &next.ID)
	return next, nil
}
