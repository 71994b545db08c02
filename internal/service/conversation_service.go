package service

import (
	"context"
	"errors"

	"github.com/wheeldeal/wheeldeal-backend/internal/model"
	"github.com/wheeldeal/wheeldeal-backend/internal/repository"
	"gorm.io/gorm"
)

// ConversationWithUnread pairs a thread with the caller's unread state.
type ConversationWithUnread struct {
	Conversation model.Conversation
	HasUnread    bool
}

type ConversationService interface {
	CreateOrGet(ctx context.Context, vehicleID uint64, buyerUID string) (*model.Conversation, error)
	ListByUser(ctx context.Context, uid string) ([]ConversationWithUnread, error)
	Get(ctx context.Context, convID uint64, uid string) (*model.Conversation, error)
	ListMessages(ctx context.Context, convID uint64, uid string) ([]model.Message, error)
	PostMessage(ctx context.Context, convID uint64, uid, body string) (*model.Message, error)
	MarkRead(ctx context.Context, convID uint64, uid string) error
	Flag(ctx context.Context, convID uint64, reason string) error
}

type conversationService struct {
	convRepo    repository.ConversationRepository
	vehicleRepo repository.VehicleRepository
}

func NewConversationService(convRepo repository.ConversationRepository, vehicleRepo repository.VehicleRepository) ConversationService {
	return &conversationService{convRepo: convRepo, vehicleRepo: vehicleRepo}
}

func (s *conversationService) CreateOrGet(ctx context.Context, vehicleID uint64, buyerUID string) (*model.Conversation, error) {
	v, err := s.vehicleRepo.FindByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if v.SellerUID == "" {
		return nil, errors.New("vehicle has no seller")
	}
	if v.SellerUID == buyerUID {
		return nil, errors.New("cannot enquire about your own vehicle")
	}
	return s.convRepo.FindOrCreate(ctx, vehicleID, v.SellerUID, buyerUID)
}

func (s *conversationService) ListByUser(ctx context.Context, uid string) ([]ConversationWithUnread, error) {
	convs, err := s.convRepo.FindByUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	out := make([]ConversationWithUnread, 0, len(convs))
	for _, cv := range convs {
		unread, err := s.convRepo.HasUnread(ctx, cv.ID, uid)
		if err != nil {
			return nil, err
		}
		out = append(out, ConversationWithUnread{Conversation: cv, HasUnread: unread})
	}
	return out, nil
}

func (s *conversationService) Get(ctx context.Context, convID uint64, uid string) (*model.Conversation, error) {
	cv, err := s.convRepo.FindByID(ctx, convID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !cv.Participant(uid) {
		return nil, ErrForbidden
	}
	return cv, nil
}

func (s *conversationService) ListMessages(ctx context.Context, convID uint64, uid string) ([]model.Message, error) {
	if _, err := s.Get(ctx, convID, uid); err != nil {
		return nil, err
	}
	return s.convRepo.ListMessages(ctx, convID)
}

func (s *conversationService) PostMessage(ctx context.Context, convID uint64, uid, body string) (*model.Message, error) {
	if body == "" {
		return nil, errors.New("body is required")
	}
	if _, err := s.Get(ctx, convID, uid); err != nil {
		return nil, err
	}
	msg := &model.Message{
		ConversationID: convID,
		SenderUID:      uid,
		Kind:           model.MessageKindChat,
		Body:           body,
	}
	if err := s.convRepo.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}
	// The sender has obviously read their own message.
	_ = s.convRepo.MarkRead(ctx, convID, uid)
	return msg, nil
}

func (s *conversationService) MarkRead(ctx context.Context, convID uint64, uid string) error {
	if _, err := s.Get(ctx, convID, uid); err != nil {
		return err
	}
	return s.convRepo.MarkRead(ctx, convID, uid)
}

func (s *conversationService) Flag(ctx context.Context, convID uint64, reason string) error {
	if _, err := s.convRepo.FindByID(ctx, convID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.convRepo.Flag(ctx, convID, reason)
}
