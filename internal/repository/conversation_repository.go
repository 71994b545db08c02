package repository

import (
	"context"
	"errors"
	"time"

	"github.com/wheeldeal/wheeldeal-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConversationRepository interface {
	FindOrCreate(ctx context.Context, vehicleID uint64, sellerUID, buyerUID string) (*model.Conversation, error)
	FindByUser(ctx context.Context, uid string) ([]model.Conversation, error)
	FindByID(ctx context.Context, id uint64) (*model.Conversation, error)
	AppendMessage(ctx context.Context, msg *model.Message) error
	ListMessages(ctx context.Context, convID uint64) ([]model.Message, error)
	Flag(ctx context.Context, id uint64, reason string) error
	MarkRead(ctx context.Context, convID uint64, uid string) error
	HasUnread(ctx context.Context, convID uint64, uid string) (bool, error)
	SetDB(db *gorm.DB)
}

type conversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) SetDB(db *gorm.DB) {
	r.db = db
}

func (r *conversationRepository) FindOrCreate(ctx context.Context, vehicleID uint64, sellerUID, buyerUID string) (*model.Conversation, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	cv := model.Conversation{VehicleID: vehicleID, SellerUID: sellerUID, BuyerUID: buyerUID}
	if err := r.db.WithContext(ctx).
		Where("vehicle_id = ? AND buyer_uid = ?", vehicleID, buyerUID).
		FirstOrCreate(&cv).Error; err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *conversationRepository) FindByUser(ctx context.Context, uid string) ([]model.Conversation, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Conversation
	if err := r.db.WithContext(ctx).
		Where("seller_uid = ? OR buyer_uid = ?", uid, uid).
		Order("last_message_at DESC, id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *conversationRepository) FindByID(ctx context.Context, id uint64) (*model.Conversation, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var cv model.Conversation
	if err := r.db.WithContext(ctx).First(&cv, id).Error; err != nil {
		return nil, err
	}
	return &cv, nil
}

// AppendMessage inserts the message and bumps the thread's last-message stamp.
// Messages are never updated or deleted afterwards.
func (r *conversationRepository) AppendMessage(ctx context.Context, msg *model.Message) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&model.Conversation{}).
			Where("id = ?", msg.ConversationID).
			Update("last_message_at", time.Now()).Error
	})
}

func (r *conversationRepository) ListMessages(ctx context.Context, convID uint64) ([]model.Message, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var msgs []model.Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Order("id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *conversationRepository) Flag(ctx context.Context, id uint64, reason string) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"flagged":     true,
			"flag_reason": reason,
		}).Error
}

func (r *conversationRepository) MarkRead(ctx context.Context, convID uint64, uid string) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	st := model.ConversationState{
		ConversationID: convID,
		UID:            uid,
		LastReadAt:     time.Now(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "conversation_id"}, {Name: "uid"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_read_at"}),
		}).
		Create(&st).Error
}

// HasUnread reports whether the counterpart appended a message after uid's
// last-read mark. A missing state row means everything is unread.
func (r *conversationRepository) HasUnread(ctx context.Context, convID uint64, uid string) (bool, error) {
	if r.db == nil {
		return false, ErrDBNotReady
	}
	var st model.ConversationState
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND uid = ?", convID, uid).
		First(&st).Error
	lastRead := time.Time{}
	if err == nil {
		lastRead = st.LastReadAt
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("conversation_id = ? AND sender_uid <> ? AND created_at > ?", convID, uid, lastRead).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}
