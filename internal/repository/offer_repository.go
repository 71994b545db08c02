package repository

import (
	"context"
	"errors"
	"time"

	"github.com/wheeldeal/wheeldeal-backend/internal/model"
	"gorm.io/gorm"
)

// ErrStaleOffer is returned when a guarded status write matches no row: the
// offer was resolved (or revised) by the other party first.
var ErrStaleOffer = errors.New("offer was already resolved")

type OfferRepository interface {
	// CreateWithMessage inserts the offer message and its payload row in one
	// transaction and bumps the thread's last-message stamp.
	CreateWithMessage(ctx context.Context, msg *model.Message, off *model.Offer) error
	FindByID(ctx context.Context, id uint64) (*model.Offer, error)
	LatestByConversation(ctx context.Context, convID uint64) (*model.Offer, error)
	PendingByConversation(ctx context.Context, convID uint64) (*model.Offer, error)
	// ResolveIfPending moves the offer out of pending iff it is still at the
	// given revision. Returns rows affected; zero means the caller lost the race.
	ResolveIfPending(ctx context.Context, id uint64, revision int, status model.OfferStatus, dealCode string) (int64, error)
	// Counter atomically marks prev countered and appends the superseding
	// message + offer. Fails with ErrStaleOffer when prev is no longer pending.
	Counter(ctx context.Context, prev *model.Offer, msg *model.Message, next *model.Offer) error
	SetDB(db *gorm.DB)
}

type offerRepository struct {
	db *gorm.DB
}

func NewOfferRepository(db *gorm.DB) OfferRepository {
	return &offerRepository{db: db}
}

func (r *offerRepository) SetDB(db *gorm.DB) {
	r.db = db
}

func (r *offerRepository) CreateWithMessage(ctx context.Context, msg *model.Message, off *model.Offer) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		off.MessageID = msg.ID
		if err := tx.Create(off).Error; err != nil {
			return err
		}
		return tx.Model(&model.Conversation{}).
			Where("id = ?", msg.ConversationID).
			Update("last_message_at", time.Now()).Error
	})
}

func (r *offerRepository) FindByID(ctx context.Context, id uint64) (*model.Offer, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var off model.Offer
	if err := r.db.WithContext(ctx).First(&off, id).Error; err != nil {
		return nil, err
	}
	return &off, nil
}

func (r *offerRepository) LatestByConversation(ctx context.Context, convID uint64) (*model.Offer, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var off model.Offer
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Order("id DESC").
		First(&off).Error; err != nil {
		return nil, err
	}
	return &off, nil
}

func (r *offerRepository) PendingByConversation(ctx context.Context, convID uint64) (*model.Offer, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var off model.Offer
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND status = ?", convID, model.OfferStatusPending).
		Order("id DESC").
		First(&off).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &off, nil
}

func (r *offerRepository) ResolveIfPending(ctx context.Context, id uint64, revision int, status model.OfferStatus, dealCode string) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	updates := map[string]interface{}{
		"status":   status,
		"revision": revision + 1,
	}
	if dealCode != "" {
		updates["deal_code"] = dealCode
	}
	res := r.db.WithContext(ctx).
		Model(&model.Offer{}).
		Where("id = ? AND status = ? AND revision = ?", id, model.OfferStatusPending, revision).
		Updates(updates)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *offerRepository) Counter(ctx context.Context, prev *model.Offer, msg *model.Message, next *model.Offer) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Offer{}).
			Where("id = ? AND status = ? AND revision = ?", prev.ID, model.OfferStatusPending, prev.Revision).
			Updates(map[string]interface{}{
				"status":   model.OfferStatusCountered,
				"revision": prev.Revision + 1,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleOffer
		}
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		next.MessageID = msg.ID
		if err := tx.Create(next).Error; err != nil {
			return err
		}
		return tx.Model(&model.Conversation{}).
			Where("id = ?", msg.ConversationID).
			Update("last_message_at", time.Now()).Error
	})
}
